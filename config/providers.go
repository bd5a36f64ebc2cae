package config

import (
	"fmt"
	"slices"
)

// KnownProviders lists every provider id the adapter factory understands.
var KnownProviders = []string{"gemini", "perplexity", "openai", "openrouter", "mistral", "anthropic", "ollama"}

// IsKnownProvider reports whether id is a supported provider.
func IsKnownProvider(id string) bool {
	return slices.Contains(KnownProviders, id)
}

// RequiresAPIKey reports whether the provider needs a credential.
func RequiresAPIKey(id string) bool {
	return id != "ollama"
}

func DefaultProviders() []ProviderConfig {
	providers := make([]ProviderConfig, 0, len(KnownProviders))
	for _, id := range KnownProviders {
		providers = append(providers, ProviderConfig{
			ID:      id,
			Name:    ProviderDisplayName(id),
			BaseURL: DefaultBaseURL(id),
			Enabled: id != "ollama",
		})
	}
	return providers
}

// ProviderDisplayName returns the display name for a provider
func ProviderDisplayName(providerID string) string {
	switch providerID {
	case "gemini":
		return "Google Gemini"
	case "perplexity":
		return "Perplexity"
	case "openai":
		return "OpenAI"
	case "openrouter":
		return "OpenRouter"
	case "mistral":
		return "Mistral"
	case "anthropic":
		return "Anthropic"
	case "ollama":
		return "Ollama"
	default:
		return providerID
	}
}

// DefaultBaseURL returns the default base URL for a provider
func DefaultBaseURL(providerID string) string {
	switch providerID {
	case "perplexity":
		return "https://api.perplexity.ai"
	case "openai":
		return "https://api.openai.com/v1"
	case "openrouter":
		return "https://openrouter.ai/api/v1"
	case "mistral":
		return "https://api.mistral.ai/v1"
	case "anthropic":
		return "https://api.anthropic.com"
	case "ollama":
		return "http://localhost:11434"
	default:
		return ""
	}
}

// SetAPIKey stores and persists the API key for a provider.
func (c *Config) SetAPIKey(providerID, key string) error {
	if !IsKnownProvider(providerID) {
		return fmt.Errorf("unknown provider: %s", providerID)
	}
	if !RequiresAPIKey(providerID) {
		return fmt.Errorf("%s does not use an API key", providerID)
	}
	if c.CredentialStore == nil {
		c.CredentialStore = NewCredentialStore()
	}
	if key == "" {
		c.CredentialStore.Delete(providerID)
	} else {
		c.CredentialStore.Set(providerID, key)
	}
	if err := c.CredentialStore.Save(c.DataDir()); err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}

	if DebugLog != nil {
		DebugLog.Printf("[Config] API key updated for %s (set=%v)", providerID, key != "")
	}
	return nil
}

// UpdateProviderField updates a single provider configuration field and
// saves the user config. Fields: "base_url", "enabled".
func UpdateProviderField(dataDir, providerID, fieldName, value string) error {
	if !IsKnownProvider(providerID) {
		return fmt.Errorf("unknown provider: %s", providerID)
	}

	cfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	idx := -1
	for i := range cfg.Providers {
		if cfg.Providers[i].ID == providerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		cfg.Providers = append(cfg.Providers, ProviderConfig{
			ID:      providerID,
			Name:    ProviderDisplayName(providerID),
			BaseURL: DefaultBaseURL(providerID),
			Enabled: true,
		})
		idx = len(cfg.Providers) - 1
	}

	switch fieldName {
	case "base_url":
		cfg.Providers[idx].BaseURL = value
	case "enabled":
		cfg.Providers[idx].Enabled = value == "true"
	default:
		return fmt.Errorf("unknown field for %s: %s", providerID, fieldName)
	}

	if err := SaveUserConfig(cfg, dataDir); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
