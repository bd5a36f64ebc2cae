package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

type Client struct {
	client  *api.Client
	model   string
	baseURL string
}

// StreamCallback receives each streamed chunk. thinking carries text from
// the model's reasoning channel, content the answer text.
type StreamCallback func(content, thinking string) error

func NewClient(baseURL, model string) (*Client, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &Client{
		client:  api.NewClient(parsedURL, http.DefaultClient),
		model:   model,
		baseURL: baseURL,
	}, nil
}

// ChatOptions are the per-request knobs passed through to Ollama.
type ChatOptions struct {
	Model   string // overrides the client model when set
	Think   bool
	Options map[string]any
}

// Chat streams a chat completion through callback.
func (c *Client) Chat(ctx context.Context, messages []api.Message, opts ChatOptions, callback StreamCallback) error {
	modelName := opts.Model
	if modelName == "" {
		modelName = c.model
	}

	req := &api.ChatRequest{
		Model:    modelName,
		Messages: messages,
		Stream:   func(b bool) *bool { return &b }(true),
		Options:  opts.Options,
	}
	if opts.Think {
		req.Think = &api.ThinkValue{Value: true}
	}

	respFunc := func(resp api.ChatResponse) error {
		if callback != nil {
			return callback(resp.Message.Content, resp.Message.Thinking)
		}
		return nil
	}

	return c.client.Chat(ctx, req, respFunc)
}

func (c *Client) GetModel() string {
	return c.model
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.client.List(ctx)
	return err
}
