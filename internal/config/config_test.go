package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, ":8081", cfg.Web.ListenAddr)
	assert.Equal(t, 200, cfg.Storage.MaxHistory)
	assert.False(t, cfg.Recon.PrefetchURL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	yamlContent := `
llm:
  provider: openai
  model: gpt-4o
  baseUrl: https://api.openai.com/v1
web:
  listen_addr: ":9000"
  request_timeout: 2m
storage:
  max_history: 10
recon:
  prefetch_url: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("PREMIUM_USERS", "u1, u2,,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model, "env must override file")
	assert.Equal(t, ":9000", cfg.Web.ListenAddr)
	assert.Equal(t, 2*time.Minute, cfg.Web.RequestTimeout)
	assert.Equal(t, 2.5, cfg.Web.RateLimit)
	assert.Equal(t, 10, cfg.Storage.MaxHistory)
	assert.True(t, cfg.Recon.PrefetchURL)
	assert.Equal(t, []string{"u1", "u2"}, cfg.Subscription.PremiumUser)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("URL_PREFETCH", "maybe")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestModelName(t *testing.T) {
	tests := []struct {
		name string
		cfg  LLMConfig
		want string
	}{
		{"gemini maps to googleai", LLMConfig{Provider: "gemini", Model: "gemini-2.5-flash"}, "googleai/gemini-2.5-flash"},
		{"compat provider", LLMConfig{Provider: "ollama", Model: "llama3.1"}, "ollama/llama3.1"},
		{"already qualified", LLMConfig{Provider: "openai", Model: "openai/gpt-4o"}, "openai/gpt-4o"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ModelName())
		})
	}
}

func TestCredentialsFrom(t *testing.T) {
	env := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}

	status := credentialsFrom(env(map[string]string{}))
	assert.Equal(t, GoogleAPIKeyEnv, status.Name)
	assert.False(t, status.Configured)

	status = credentialsFrom(env(map[string]string{GoogleAPIKeyEnv: "YOUR_GOOGLE_AI_API_KEY_HERE"}))
	assert.Equal(t, GoogleAPIKeyEnv, status.Name)
	assert.False(t, status.Configured)

	status = credentialsFrom(env(map[string]string{GeminiAPIKeyEnv: "AIza-real", GoogleAPIKeyEnv: "x"}))
	assert.Equal(t, GeminiAPIKeyEnv, status.Name)
	assert.True(t, status.Configured)
}

func TestIsPlaceholderKey(t *testing.T) {
	assert.True(t, IsPlaceholderKey(""))
	assert.True(t, IsPlaceholderKey("   "))
	assert.True(t, IsPlaceholderKey("tu_clave_api_aqui"))
	assert.True(t, IsPlaceholderKey("your_api_key_here"))
	assert.False(t, IsPlaceholderKey("AIzaSyExample"))
}

func TestConfigCredentialStatus(t *testing.T) {
	t.Setenv(GeminiAPIKeyEnv, "")
	t.Setenv(GoogleAPIKeyEnv, "")

	cfg := Default()
	status := cfg.CredentialStatus()
	assert.Equal(t, GoogleAPIKeyEnv, status.Name)
	assert.False(t, status.Configured)

	cfg.LLM.Provider = "ollama"
	assert.True(t, cfg.CredentialStatus().Configured)

	cfg.LLM.Provider = "openai"
	status = cfg.CredentialStatus()
	assert.Equal(t, APIKeyEnv, status.Name)
	assert.False(t, status.Configured)

	cfg.LLM.ApiKey = "sk-live"
	assert.True(t, cfg.CredentialStatus().Configured)
}
