package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM          LLMConfig          `yaml:"llm"`
	Web          WebConfig          `yaml:"web"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Storage      StorageConfig      `yaml:"storage"`
	Subscription SubscriptionConfig `yaml:"subscription"`
	Recon        ReconConfig        `yaml:"recon"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"baseUrl"`
	ApiKey   string `yaml:"apiKey"`
}

// ModelName returns the genkit model reference ("provider/model")
func (c LLMConfig) ModelName() string {
	if strings.Contains(c.Model, "/") {
		return c.Model
	}
	provider := c.Provider
	if provider == "gemini" {
		provider = "googleai"
	}
	return provider + "/" + c.Model
}

type WebConfig struct {
	ListenAddr     string        `yaml:"listen_addr"`
	RateLimit      float64       `yaml:"rate_limit"`
	RateBurst      int           `yaml:"rate_burst"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

type StorageConfig struct {
	// SQLitePath - empty means in-memory history
	SQLitePath string `yaml:"sqlite_path"`
	MaxHistory int    `yaml:"max_history"`
}

type SubscriptionConfig struct {
	// DatabaseURL - Postgres DSN of the profile database (Supabase)
	DatabaseURL string   `yaml:"database_url"`
	PremiumUser []string `yaml:"premium_users"`
}

type ReconConfig struct {
	PrefetchURL bool          `yaml:"prefetch_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
		},
		Web: WebConfig{
			ListenAddr:     ":8081",
			RateLimit:      1,
			RateBurst:      5,
			RequestTimeout: 5 * time.Minute,
			MaxBodyBytes:   2 << 20,
		},
		Metrics: MetricsConfig{
			ListenAddr: ":9090",
		},
		Storage: StorageConfig{
			MaxHistory: 200,
		},
		Recon: ReconConfig{
			PrefetchURL: false,
			Timeout:     10 * time.Second,
		},
	}
}

// Load reads .env (if present), an optional YAML file from CONFIG_FILE and
// finally the environment. Environment values win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.BaseURL, "LLM_URL")
	setString(&c.LLM.ApiKey, "API_KEY")
	if c.LLM.ApiKey == "" {
		if status := Credentials(); status.Configured {
			c.LLM.ApiKey = os.Getenv(status.Name)
		}
	}

	setString(&c.Web.ListenAddr, "WEB_LISTEN_ADDR")
	setString(&c.Metrics.ListenAddr, "METRICS_LISTEN_ADDR")
	setString(&c.Storage.SQLitePath, "STORAGE_SQLITE_PATH")
	setString(&c.Subscription.DatabaseURL, "SUBSCRIPTION_DATABASE_URL")
	if v := os.Getenv("PREMIUM_USERS"); v != "" {
		c.Subscription.PremiumUser = splitList(v)
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.Web.RateLimit = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.Web.RateBurst = burst
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
		c.Web.RequestTimeout = d
	}
	if v := os.Getenv("STORAGE_MAX_HISTORY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STORAGE_MAX_HISTORY: %w", err)
		}
		c.Storage.MaxHistory = n
	}
	if v := os.Getenv("URL_PREFETCH"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("URL_PREFETCH: %w", err)
		}
		c.Recon.PrefetchURL = enabled
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
