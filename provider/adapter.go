package provider

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"paradox/config"
	"paradox/model"
)

// Variant is the configuration that distinguishes one adapter from another
// over the same streaming protocol.
type Variant struct {
	// Name labels the route in logs ("generation", "search", "developer").
	Name string

	Model string
	// ReasoningModel replaces Model for DepthReasoning requests when set.
	ReasoningModel string
	// SystemPrompt is sent ahead of the conversation when non-empty.
	SystemPrompt string
	Sampling     model.Sampling

	// Timeout bounds a whole exchange. Zero means no limit.
	Timeout time.Duration
}

// SendRequest is one exchange as seen by an adapter.
type SendRequest struct {
	Message     string
	Window      model.Window
	Attachments *model.Attachments
	Depth       model.Depth
}

// Adapter streams a response from one provider under a fixed Variant.
// It holds no per-exchange state and is safe for concurrent use.
type Adapter struct {
	Variant
	provider model.Provider
}

// NewAdapter binds p to v.
func NewAdapter(p model.Provider, v Variant) *Adapter {
	return &Adapter{Variant: v, provider: p}
}

// ProviderID returns the id of the underlying provider.
func (a *Adapter) ProviderID() string {
	return a.provider.ID()
}

// ModelFor returns the model used for depth.
func (a *Adapter) ModelFor(depth model.Depth) string {
	if depth == model.DepthReasoning && a.ReasoningModel != "" {
		return a.ReasoningModel
	}
	return a.Model
}

// Send streams the raw response tokens for req, in order.
//
// Provider failures and timeouts are yielded as *model.UpstreamError and
// end the sequence; tokens yielded before stay delivered. Cancellation of
// ctx by the caller is yielded as the context error.
func (a *Adapter) Send(ctx context.Context, req SendRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		sendCtx := ctx
		if a.Timeout > 0 {
			var cancel context.CancelFunc
			sendCtx, cancel = context.WithTimeout(ctx, a.Timeout)
			defer cancel()
		}

		preq := model.Request{
			Model:        a.ModelFor(req.Depth),
			SystemPrompt: a.SystemPrompt,
			Depth:        req.Depth,
			Sampling:     a.Sampling,
			History:      req.Window,
			Message:      req.Message,
			Attachments:  req.Attachments,
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("[Adapter] %s: provider=%s model=%s depth=%s window=%d",
				a.Name, a.provider.ID(), preq.Model, req.Depth, len(req.Window))
		}

		for tok, err := range a.provider.Stream(sendCtx, preq) {
			if err != nil {
				yield("", a.classify(ctx, sendCtx, err))
				return
			}
			if !yield(tok, nil) {
				return
			}
		}

		// Some SDKs end the stream quietly on deadline.
		if ctx.Err() == nil && errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
			yield("", a.timeoutError())
		}
	}
}

func (a *Adapter) classify(parent, sendCtx context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
		return a.timeoutError()
	}
	return model.AsUpstream(a.provider.ID(), err)
}

func (a *Adapter) timeoutError() error {
	return &model.UpstreamError{
		Provider: a.provider.ID(),
		Err:      fmt.Errorf("no complete response within %s: %w", a.Timeout, context.DeadlineExceeded),
	}
}
