package recon

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Prefetcher builds the page context passed to the URL analysis flow
type Prefetcher struct {
	client    *Client
	extractor *Extractor
}

func NewPrefetcher(client *Client) *Prefetcher {
	return &Prefetcher{
		client:    client,
		extractor: NewExtractor(),
	}
}

// PageContext fetches target and renders status, header fingerprint,
// detected technologies and the HTML security extract as plain text
func (p *Prefetcher) PageContext(ctx context.Context, target string) (string, error) {
	page, err := p.client.Fetch(ctx, target)
	if err != nil {
		return "", fmt.Errorf("prefetch %s: %w", target, err)
	}

	log.Printf("🌐 Prefetched %s: status=%d, %d bytes in %v", page.URL, page.StatusCode, len(page.Body), page.Duration)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[STATUS] %d\n", page.StatusCode)
	if loc := page.Headers.Get("Location"); loc != "" {
		fmt.Fprintf(&sb, "[REDIRECT] %s\n", loc)
	}

	fp := FingerprintHeaders(page.Headers, strings.HasPrefix(page.URL, "https://"))
	if s := fp.String(); s != "" {
		sb.WriteString(s + "\n")
	}

	body := ""
	if page.IsHTML() {
		body = page.Body
	}
	if s := FormatTechnologies(DetectTechnologies(page.Headers, body)); s != "" {
		sb.WriteString(s + "\n")
	}

	if page.IsHTML() && page.Body != "" {
		sb.WriteString(p.extractor.Extract(page.Body))
		if page.Truncated {
			sb.WriteString("\n[body truncated]")
		}
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}
