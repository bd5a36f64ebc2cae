package provider

import (
	"context"
	"fmt"
	"iter"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"paradox/config"
	"paradox/model"
)

// OpenAICompatProvider implements the Provider interface for every
// OpenAI-compatible chat completions API (OpenAI, OpenRouter, Perplexity,
// Mistral) using the official OpenAI Go SDK with a custom base URL.
//
// Reasoning models served this way (Perplexity sonar-reasoning, DeepSeek
// R1 on OpenRouter) emit <think> markers in-band, so deltas are passed
// through untouched.
type OpenAICompatProvider struct {
	client  openai.Client
	id      ProviderType
	model   string
	baseURL string
}

var openAICompatDefaults = map[ProviderType]struct{ name, model string }{
	ProviderTypeOpenAI:     {"OpenAI", "gpt-4o-mini"},
	ProviderTypeOpenRouter: {"OpenRouter", "meta-llama/llama-3.2-90b-instruct"},
	ProviderTypePerplexity: {"Perplexity", "sonar"},
	ProviderTypeMistral:    {"Mistral", "mistral-small-latest"},
}

// NewOpenAICompatProvider creates a provider for one of the
// OpenAI-compatible provider types.
func NewOpenAICompatProvider(id ProviderType, baseURL, apiKey, modelName string) (*OpenAICompatProvider, error) {
	defaults, ok := openAICompatDefaults[id]
	if !ok {
		return nil, fmt.Errorf("%s is not an OpenAI-compatible provider", id)
	}
	if baseURL == "" {
		baseURL = config.DefaultBaseURL(string(id))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", defaults.name)
	}
	if modelName == "" {
		modelName = defaults.model
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAICompatProvider{
		client:  client,
		id:      id,
		model:   modelName,
		baseURL: baseURL,
	}, nil
}

func (p *OpenAICompatProvider) ID() string { return string(p.id) }

// Stream implements Provider.Stream with streaming chat completions.
func (p *OpenAICompatProvider) Stream(ctx context.Context, req model.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		params := p.params(req)

		stream := p.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			content := chunk.Choices[0].Delta.Content
			if content == "" {
				continue
			}
			if !yield(content, nil) {
				return
			}
		}

		if err := stream.Err(); err != nil {
			yield("", fmt.Errorf("%s streaming error: %w", openAICompatDefaults[p.id].name, err))
		}
	}
}

// Ping implements Provider.Ping by listing models.
func (p *OpenAICompatProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", openAICompatDefaults[p.id].name, err)
	}
	return nil
}

func (p *OpenAICompatProvider) params(req model.Request) openai.ChatCompletionNewParams {
	modelName := req.Model
	if modelName == "" {
		modelName = p.model
	}

	params := openai.ChatCompletionNewParams{
		Messages: convertToOpenAIMessages(req),
		Model:    openai.ChatModel(modelName),
	}
	if t := req.Sampling.Temperature; t != nil {
		params.Temperature = openai.Float(*t)
	}
	if tp := req.Sampling.TopP; tp != nil {
		params.TopP = openai.Float(*tp)
	}
	return params
}

// convertToOpenAIMessages maps the request to chat completion messages.
// Attachments become image_url and file content parts of the final user
// message.
func convertToOpenAIMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.History {
		text := historyText(m)
		if text == "" {
			continue
		}
		switch m.Role {
		case model.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(text))
		case model.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(text))
		default:
			msgs = append(msgs, openai.UserMessage(text))
		}
	}

	if req.Attachments.Empty() {
		return append(msgs, openai.UserMessage(req.Message))
	}

	parts := []openai.ChatCompletionContentPartUnionParam{}
	if req.Message != "" {
		parts = append(parts, openai.TextContentPart(req.Message))
	}
	for _, img := range imagesOf(req.Attachments) {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: img.DataURL(),
		}))
	}
	for _, pdf := range pdfsOf(req.Attachments) {
		parts = append(parts, openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
			FileData: openai.String(pdf.DataURL()),
			Filename: openai.String(pdf.Name),
		}))
	}
	return append(msgs, openai.UserMessage(parts))
}
