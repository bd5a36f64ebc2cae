package provider

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"paradox/config"
	"paradox/model"
)

// GeminiProvider implements the Provider interface using Google's genai SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini provider. baseURL may be empty to use
// the public endpoint.
func NewGeminiProvider(baseURL, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: modelName}, nil
}

func (p *GeminiProvider) ID() string { return string(ProviderTypeGemini) }

// Stream implements Provider.Stream. Thought parts are wrapped in the
// thinking markers.
func (p *GeminiProvider) Stream(ctx context.Context, req model.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		modelName := req.Model
		if modelName == "" {
			modelName = p.model
		}

		contents := convertToGeminiContents(req)
		cfg := geminiConfig(req)

		var tracker thinkTracker
		for resp, err := range p.client.Models.GenerateContentStream(ctx, modelName, contents, cfg) {
			if err != nil {
				yield("", fmt.Errorf("Gemini streaming error: %w", err))
				return
			}
			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if part == nil {
						continue
					}
					for _, tok := range tracker.tokens(part.Text, part.Thought) {
						if !yield(tok, nil) {
							return
						}
					}
				}
			}
		}
		for _, tok := range tracker.finish() {
			if !yield(tok, nil) {
				return
			}
		}
	}
}

// Ping implements Provider.Ping by fetching the configured model.
func (p *GeminiProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.Get(ctx, p.model, nil); err != nil {
		return fmt.Errorf("Gemini ping failed: %w", err)
	}
	return nil
}

func geminiConfig(req model.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if t := req.Sampling.Temperature; t != nil {
		cfg.Temperature = genai.Ptr(float32(*t))
	}
	if tp := req.Sampling.TopP; tp != nil {
		cfg.TopP = genai.Ptr(float32(*tp))
	}
	if tk := req.Sampling.TopK; tk != nil {
		cfg.TopK = genai.Ptr(float32(*tk))
	}
	if req.Depth == model.DepthReasoning {
		cfg.ThinkingConfig = &genai.ThinkingConfig{IncludeThoughts: true}
	}
	return cfg
}

// convertToGeminiContents maps the window and the new turn to genai
// contents. Assistant turns use the "model" role.
func convertToGeminiContents(req model.Request) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		role := genai.RoleUser
		if m.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		text := historyText(m)
		if text == "" {
			continue
		}
		contents = append(contents, genai.NewContentFromText(text, role))
	}

	files := append(imagesOf(req.Attachments), pdfsOf(req.Attachments)...)
	parts := make([]*genai.Part, 0, 1+len(files))
	if req.Message != "" {
		parts = append(parts, genai.NewPartFromText(req.Message))
	}
	for _, d := range files {
		data, err := d.Bytes()
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Gemini] skipping attachment: %v", err)
			}
			continue
		}
		parts = append(parts, genai.NewPartFromBytes(data, d.MIMEType))
	}
	contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	return contents
}
