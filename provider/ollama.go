package provider

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/ollama/ollama/api"

	"paradox/config"
	"paradox/model"
	"paradox/ollama"
)

// errStopped aborts a callback-driven stream when the consumer stops
// ranging.
var errStopped = errors.New("stream consumer stopped")

// OllamaProvider wraps ollama.Client to implement the Provider interface.
//
// Ollama reports reasoning on Message.Thinking; it is wrapped in the
// thinking markers so it reaches the demultiplexer in-band.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Returns an error if the baseURL is invalid.
func NewOllamaProvider(baseURL, modelName string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	return &OllamaProvider{client: client}, nil
}

func (p *OllamaProvider) ID() string { return string(ProviderTypeOllama) }

// Stream implements Provider.Stream by bridging the callback API to an
// iterator.
func (p *OllamaProvider) Stream(ctx context.Context, req model.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		opts := ollama.ChatOptions{
			Model:   req.Model,
			Think:   req.Depth == model.DepthReasoning,
			Options: ollamaOptions(req.Sampling),
		}

		var tracker thinkTracker
		emit := func(toks []string) error {
			for _, tok := range toks {
				if !yield(tok, nil) {
					return errStopped
				}
			}
			return nil
		}

		err := p.client.Chat(ctx, ConvertToOllamaMessages(req), opts, func(content, thinking string) error {
			if err := emit(tracker.tokens(thinking, true)); err != nil {
				return err
			}
			return emit(tracker.tokens(content, false))
		})
		if errors.Is(err, errStopped) {
			return
		}
		if err != nil {
			yield("", fmt.Errorf("Ollama streaming error: %w", err))
			return
		}
		emit(tracker.finish())
	}
}

// Ping implements Provider.Ping (direct passthrough).
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func ollamaOptions(s model.Sampling) map[string]any {
	opts := map[string]any{}
	if s.Temperature != nil {
		opts["temperature"] = *s.Temperature
	}
	if s.TopP != nil {
		opts["top_p"] = *s.TopP
	}
	if s.TopK != nil {
		opts["top_k"] = *s.TopK
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}

// ConvertToOllamaMessages converts a request to Ollama api.Message values.
//
// The system prompt becomes a leading system message. Images are attached
// to the final user message as raw bytes; Ollama has no document input so
// PDFs are skipped.
func ConvertToOllamaMessages(req model.Request) []api.Message {
	result := make([]api.Message, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		result = append(result, api.Message{Role: string(model.RoleSystem), Content: req.SystemPrompt})
	}
	for _, m := range req.History {
		result = append(result, api.Message{
			Role:    string(m.Role),
			Content: historyText(m),
		})
	}

	last := api.Message{Role: string(model.RoleUser), Content: req.Message}
	for _, img := range imagesOf(req.Attachments) {
		data, err := img.Bytes()
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Ollama] skipping image: %v", err)
			}
			continue
		}
		last.Images = append(last.Images, api.ImageData(data))
	}
	if n := len(pdfsOf(req.Attachments)); n > 0 && config.DebugLog != nil {
		config.DebugLog.Printf("[Ollama] skipping %d PDF attachment(s), not supported", n)
	}
	return append(result, last)
}
