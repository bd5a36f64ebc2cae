package provider

import (
	"testing"

	"paradox/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		wantID      string
	}{
		{
			name:   "ollama provider with defaults",
			config: Config{Type: ProviderTypeOllama},
			wantID: "ollama",
		},
		{
			name: "gemini provider",
			config: Config{
				Type:   ProviderTypeGemini,
				Model:  "gemini-2.0-flash",
				APIKey: "test-key",
			},
			wantID: "gemini",
		},
		{
			name: "perplexity provider",
			config: Config{
				Type:   ProviderTypePerplexity,
				APIKey: "test-key",
			},
			wantID: "perplexity",
		},
		{
			name: "mistral provider",
			config: Config{
				Type:   ProviderTypeMistral,
				APIKey: "test-key",
			},
			wantID: "mistral",
		},
		{
			name: "openrouter provider",
			config: Config{
				Type:    ProviderTypeOpenRouter,
				BaseURL: "https://openrouter.ai/api/v1",
				APIKey:  "test-key",
			},
			wantID: "openrouter",
		},
		{
			name: "anthropic provider",
			config: Config{
				Type:    ProviderTypeAnthropic,
				BaseURL: "https://api.anthropic.com",
				Model:   "claude-sonnet-4-5-20250929",
				APIKey:  "test-key",
			},
			wantID: "anthropic",
		},
		{
			name:        "gemini without key",
			config:      Config{Type: ProviderTypeGemini},
			expectError: true,
		},
		{
			name:        "openai without key",
			config:      Config{Type: ProviderTypeOpenAI},
			expectError: true,
		},
		{
			name:        "unknown provider type",
			config:      Config{Type: ProviderType("unknown"), APIKey: "k"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)

			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				if p != nil {
					t.Error("expected nil provider, got non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.ID() != tt.wantID {
				t.Errorf("ID() = %q, want %q", p.ID(), tt.wantID)
			}
		})
	}
}

func TestOpenAICompatDefaults(t *testing.T) {
	p, err := NewOpenAICompatProvider(ProviderTypeMistral, "", "k", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.baseURL != "https://api.mistral.ai/v1" {
		t.Errorf("base url: got %q", p.baseURL)
	}
	if p.model != "mistral-small-latest" {
		t.Errorf("model: got %q", p.model)
	}

	if _, err := NewOpenAICompatProvider(ProviderTypeGemini, "", "k", ""); err == nil {
		t.Error("expected error for non OpenAI-compatible type")
	}
}

func TestProvidersImplementInterface(t *testing.T) {
	var _ model.Provider = (*GeminiProvider)(nil)
	var _ model.Provider = (*OpenAICompatProvider)(nil)
	var _ model.Provider = (*AnthropicProvider)(nil)
	var _ model.Provider = (*OllamaProvider)(nil)
}
