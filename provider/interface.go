// Package provider implements the upstream LLM backends and the adapters
// the orchestrator streams through.
//
// Paradox talks to several providers (Gemini, Perplexity, OpenAI,
// OpenRouter, Mistral, Anthropic, Ollama) through the common
// model.Provider interface. Every provider yields raw text tokens through a
// pull-based iterator; providers that expose reasoning on a separate
// channel inject the <think> and </think> markers as standalone tokens so
// downstream code sees a single in-band convention.
//
// # Architecture
//
//   - model.Provider defines the contract (interface)
//   - provider.GeminiProvider uses google.golang.org/genai
//   - provider.OpenAICompatProvider covers every OpenAI-compatible API
//     (OpenAI, OpenRouter, Perplexity, Mistral) through openai-go
//   - provider.AnthropicProvider uses anthropic-sdk-go
//   - provider.OllamaProvider wraps ollama.Client
//   - provider.NewProvider() creates providers from Config
//   - provider.Adapter binds a provider to a variant (model, system
//     prompt, sampling, timeout) and is what the orchestrator calls
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:   provider.ProviderTypeGemini,
//	    APIKey: key,
//	    Model:  "gemini-2.0-flash",
//	})
//	if err != nil {
//	    // handle error
//	}
//	a := provider.NewAdapter(p, provider.Variant{Name: "generation"})
//	for tok, err := range a.Send(ctx, provider.SendRequest{Message: "hi"}) {
//	    ...
//	}
package provider

// Note: The Provider interface is defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeGemini     ProviderType = "gemini"
	ProviderTypePerplexity ProviderType = "perplexity"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeMistral    ProviderType = "mistral"
	ProviderTypeAnthropic  ProviderType = "anthropic"
	ProviderTypeOllama     ProviderType = "ollama"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // unused for Ollama
}
