package provider

import (
	"context"
	"fmt"
	"iter"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"paradox/model"
)

const (
	anthropicMaxTokens      = 8192
	anthropicThinkingBudget = 4096
)

// AnthropicProvider implements the Provider interface using Anthropic's official API.
// Extended thinking deltas are wrapped in the thinking markers.
type AnthropicProvider struct {
	client  *anthropic.Client
	model   anthropic.Model
	baseURL string
}

// NewAnthropicProvider creates a new Anthropic provider instance.
//
// Returns an error if the API key is missing.
func NewAnthropicProvider(baseURL, apiKey, modelName string) (*AnthropicProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	anthropicModel := anthropic.ModelClaudeSonnet4_5_20250929
	if modelName != "" {
		anthropicModel = anthropic.Model(modelName)
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{
		client:  &client,
		model:   anthropicModel,
		baseURL: baseURL,
	}, nil
}

func (p *AnthropicProvider) ID() string { return string(ProviderTypeAnthropic) }

// Stream implements Provider.Stream.
func (p *AnthropicProvider) Stream(ctx context.Context, req model.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream := p.client.Messages.NewStreaming(ctx, p.params(req))
		defer stream.Close()

		var tracker thinkTracker
		for stream.Next() {
			event := stream.Current()

			delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}

			var toks []string
			switch d := delta.Delta.AsAny().(type) {
			case anthropic.ThinkingDelta:
				toks = tracker.tokens(d.Thinking, true)
			case anthropic.TextDelta:
				toks = tracker.tokens(d.Text, false)
			}
			for _, tok := range toks {
				if !yield(tok, nil) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			yield("", fmt.Errorf("Anthropic streaming error: %w", err))
			return
		}
		for _, tok := range tracker.finish() {
			if !yield(tok, nil) {
				return
			}
		}
	}
}

// Ping implements Provider.Ping by attempting to create a minimal request.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("Anthropic ping failed: %w", err)
	}
	return nil
}

func (p *AnthropicProvider) params(req model.Request) anthropic.MessageNewParams {
	m := p.model
	if req.Model != "" {
		m = anthropic.Model(req.Model)
	}

	params := anthropic.MessageNewParams{
		Model:     m,
		Messages:  convertToAnthropicMessages(req),
		MaxTokens: anthropicMaxTokens,
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	// Extended thinking rejects custom sampling.
	if req.Depth == model.DepthReasoning {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(anthropicThinkingBudget)
		return params
	}
	if t := req.Sampling.Temperature; t != nil {
		params.Temperature = anthropic.Float(*t)
	}
	if tp := req.Sampling.TopP; tp != nil {
		params.TopP = anthropic.Float(*tp)
	}
	if tk := req.Sampling.TopK; tk != nil {
		params.TopK = anthropic.Int(int64(*tk))
	}
	return params
}

// convertToAnthropicMessages converts the request to Anthropic messages.
// System-role history entries are dropped; the system prompt travels in
// the separate system parameter.
func convertToAnthropicMessages(req model.Request) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, m := range req.History {
		text := historyText(m)
		if text == "" {
			continue
		}
		switch m.Role {
		case model.RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		case model.RoleUser:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
	}

	var blocks []anthropic.ContentBlockParamUnion
	for _, img := range imagesOf(req.Attachments) {
		blocks = append(blocks, anthropic.NewImageBlockBase64(img.MIMEType, img.Base64))
	}
	for _, pdf := range pdfsOf(req.Attachments) {
		blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: pdf.Base64}))
	}
	if req.Message != "" {
		blocks = append(blocks, anthropic.NewTextBlock(req.Message))
	}
	return append(msgs, anthropic.NewUserMessage(blocks...))
}
