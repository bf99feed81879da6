package config

import (
	"os"
	"strings"
)

// Credential variables consulted by the Gemini plugin, in lookup order
const (
	GeminiAPIKeyEnv = "GEMINI_API_KEY"
	GoogleAPIKeyEnv = "GOOGLE_API_KEY"
)

var placeholderKeys = []string{
	"YOUR_GOOGLE_AI_API_KEY_HERE",
	"YOUR_API_KEY_HERE",
	"your_api_key_here",
	"tu_clave_api_aqui",
}

// CredentialStatus describes the AI credential as seen by the process.
// Only used to name the misconfigured variable in user-facing errors.
type CredentialStatus struct {
	// Name of the variable that is (or should be) set
	Name string
	// Configured is false when the value is missing, blank or a placeholder
	Configured bool
}

// Credentials inspects the environment the same way the Gemini plugin does:
// GEMINI_API_KEY first, then GOOGLE_API_KEY.
func Credentials() CredentialStatus {
	return credentialsFrom(os.Getenv)
}

func credentialsFrom(getenv func(string) string) CredentialStatus {
	name := GoogleAPIKeyEnv
	value := getenv(GoogleAPIKeyEnv)
	if v := getenv(GeminiAPIKeyEnv); v != "" {
		name, value = GeminiAPIKeyEnv, v
	}
	return CredentialStatus{
		Name:       name,
		Configured: !IsPlaceholderKey(value),
	}
}

// IsPlaceholderKey is true for empty keys and the sample values shipped in docs
func IsPlaceholderKey(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return true
	}
	for _, p := range placeholderKeys {
		if strings.EqualFold(v, p) {
			return true
		}
	}
	return false
}

// APIKeyEnv - generic credential variable for OpenAI-compatible providers
const APIKeyEnv = "API_KEY"

// CredentialStatus reports the credential relevant to the configured provider.
// Local providers (ollama, localai, lm-studio) need no key.
func (c *Config) CredentialStatus() CredentialStatus {
	switch c.LLM.Provider {
	case "gemini", "googleai", "":
		status := Credentials()
		if !status.Configured && !IsPlaceholderKey(c.LLM.ApiKey) {
			status.Configured = true
		}
		return status
	case "ollama", "localai", "lm-studio":
		return CredentialStatus{Name: APIKeyEnv, Configured: true}
	default:
		return CredentialStatus{Name: APIKeyEnv, Configured: !IsPlaceholderKey(c.LLM.ApiKey)}
	}
}
