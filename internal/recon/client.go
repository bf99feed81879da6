package recon

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client безопасный HTTP клиент для предварительной загрузки страницы.
// Только GET, без редиректов, тело ограничено, приватные сети недоступны.
type Client struct {
	httpClient *http.Client
	config     ClientConfig
}

// ClientConfig конфигурация клиента
type ClientConfig struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string

	// AllowPrivateNetworks disables the loopback / private / link-local guard
	AllowPrivateNetworks bool
}

// Page - result of fetching the analysed URL
type Page struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       string
	Truncated  bool
	Duration   time.Duration
}

// NewClient создает клиент с дефолтами
func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = 512 << 10
	}
	if config.UserAgent == "" {
		config.UserAgent = "SecurityCenter-Recon/1.0"
	}

	dialer := &net.Dialer{Timeout: config.Timeout, KeepAlive: 30 * time.Second}
	if !config.AllowPrivateNetworks {
		dialer.Control = dialControl
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	// Прокси из окружения обошел бы проверку адреса
	transport.Proxy = nil

	return &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		config: config,
	}
}

// Fetch performs a single GET of target
func (c *Client) Fetch(ctx context.Context, target string) (*Page, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url %q has no host", target)
	}

	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	// +1 byte to detect truncation
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	truncated := int64(len(body)) > c.config.MaxBodyBytes
	if truncated {
		body = body[:c.config.MaxBodyBytes]
	}

	return &Page{
		URL:        u.String(),
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		Body:       string(body),
		Truncated:  truncated,
		Duration:   time.Since(startTime),
	}, nil
}

// IsHTML reports whether the page declares an HTML content type
func (p *Page) IsHTML() bool {
	ct := strings.ToLower(p.Headers.Get("Content-Type"))
	return ct == "" || strings.Contains(ct, "html")
}
