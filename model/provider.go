package model

import (
	"context"
	"iter"
)

// Depth selects between plain generation and a reasoning pass.
type Depth int

const (
	DepthPlain Depth = iota
	DepthReasoning
)

func (d Depth) String() string {
	if d == DepthReasoning {
		return "reasoning"
	}
	return "plain"
}

// Sampling carries optional generation parameters. Nil fields use the
// provider default.
type Sampling struct {
	Temperature *float64
	TopP        *float64
	TopK        *int
}

// Request is everything a provider needs for one streamed completion.
type Request struct {
	Model        string
	SystemPrompt string
	Depth        Depth
	Sampling     Sampling

	// History is the context window, oldest first. The new user turn is
	// carried separately in Message and Attachments.
	History     Window
	Message     string
	Attachments *Attachments
}

// Provider abstracts one upstream LLM API (Gemini, Perplexity, OpenAI,
// Anthropic, Ollama...) behind a pull-based token stream.
//
// This interface is defined in the model package (not provider package) to
// avoid import cycles: provider implementations import model, and the
// orchestrator can depend on the contract alone.
type Provider interface {
	// Stream starts a completion and yields raw text tokens in order.
	// Concatenating every token gives the full raw response. The sequence
	// must be ranged over once; a non-nil error ends it.
	Stream(ctx context.Context, req Request) iter.Seq2[string, error]

	// ID returns the provider type identifier (e.g. "gemini").
	ID() string

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}
