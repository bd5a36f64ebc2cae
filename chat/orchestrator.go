// Package chat drives one user submission through validation, adapter
// selection and streaming into the conversation store.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"paradox/config"
	"paradox/model"
	"paradox/provider"
	"paradox/stream"
)

// Phase is the lifecycle state of the current exchange.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseDispatching
	PhaseStreaming
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseValidating:
		return "validating"
	case PhaseDispatching:
		return "dispatching"
	case PhaseStreaming:
		return "streaming"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Route names the adapter an exchange was dispatched to.
type Route string

const (
	RouteDeveloper  Route = "developer"
	RouteSearch     Route = "search"
	RouteGeneration Route = "generation"
)

// Store is the conversation the orchestrator writes to.
type Store interface {
	Append(msg model.Message) model.MessageID
	Replace(id model.MessageID, msg model.Message) error
	ReplaceLast(msg model.Message) error
	Remove(id model.MessageID) error
	// Window returns a deep copy of the trailing n messages.
	Window(n int) model.Window
}

// Recorder persists a summary of each finished exchange.
type Recorder interface {
	Record(ctx context.Context, ex model.Exchange) error
}

// Submission is one user turn plus the requested mode flags. The UI keeps
// the flags mutually exclusive; when several are set, developer wins over
// search/reasoning, which wins over plain generation.
type Submission struct {
	Message     string
	Attachments *model.Attachments
	Developer   bool
	WebSearch   bool
	Reasoning   bool
}

// Result describes a completed exchange.
type Result struct {
	UserID    model.MessageID
	Message   model.Message // final assistant message
	Route     Route
	Provider  string
	Model     string
	Tokens    int
	Duration  time.Duration
}

// Options configures an Orchestrator.
type Options struct {
	WindowSize     int
	MarkerLookback bool
	SessionID      string
	Recorder       Recorder
	// FollowUpTimeout bounds follow-up generation. Zero uses a default.
	FollowUpTimeout time.Duration
}

const defaultFollowUpTimeout = 30 * time.Second

// Orchestrator runs submissions against a Store, one at a time.
type Orchestrator struct {
	store Store
	opts  Options

	mu       sync.RWMutex
	adapters provider.Adapters

	inFlight atomic.Bool
	phase    atomic.Int32

	// OnPhase, if set, is called synchronously on every phase change.
	OnPhase func(Phase)
}

// NewOrchestrator creates an orchestrator writing to store.
func NewOrchestrator(store Store, adapters provider.Adapters, opts Options) *Orchestrator {
	if opts.WindowSize <= 0 {
		opts.WindowSize = config.DefaultWindowSize
	}
	if opts.FollowUpTimeout <= 0 {
		opts.FollowUpTimeout = defaultFollowUpTimeout
	}
	return &Orchestrator{store: store, adapters: adapters, opts: opts}
}

// SetAdapters swaps the adapter set, typically after an API key change.
// Exchanges already in flight keep the adapter they started with.
func (o *Orchestrator) SetAdapters(a provider.Adapters) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.adapters = a
}

// Adapters returns the current adapter set.
func (o *Orchestrator) Adapters() provider.Adapters {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.adapters
}

// SetSessionID changes the session id stamped on recorded exchanges.
func (o *Orchestrator) SetSessionID(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opts.SessionID = id
}

// Phase returns the phase of the current or most recent exchange.
func (o *Orchestrator) Phase() Phase {
	return Phase(o.phase.Load())
}

// Busy reports whether an exchange is in flight.
func (o *Orchestrator) Busy() bool {
	return o.inFlight.Load()
}

func (o *Orchestrator) setPhase(p Phase) {
	o.phase.Store(int32(p))
	if o.OnPhase != nil {
		o.OnPhase(p)
	}
}

// Submit runs one exchange to completion.
//
// The user message and an empty assistant placeholder are appended before
// the first token is requested; the placeholder is replaced after every
// token. On failure, including cancellation of ctx, the placeholder is
// removed and the user message kept. Errors are *ValidationError,
// *ConcurrentSubmissionError, *model.UpstreamError or a context error;
// use UserMessage to render them.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, &ConcurrentSubmissionError{}
	}
	defer o.inFlight.Store(false)

	started := time.Now()

	o.setPhase(PhaseValidating)
	o.mu.RLock()
	adapters := o.adapters
	sessionID := o.opts.SessionID
	o.mu.RUnlock()

	route, adapter, depth, err := selectRoute(sub, adapters)
	if err != nil {
		o.setPhase(PhaseFailed)
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Chat] Validation failed: %v", err)
		}
		return nil, err
	}

	o.setPhase(PhaseDispatching)
	window := o.store.Window(o.opts.WindowSize)
	modelName := adapter.ModelFor(depth)
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Chat] Dispatching to %s (provider=%s model=%s depth=%s window=%d)",
			route, adapter.ProviderID(), modelName, depth, len(window))
	}

	userMsg := model.NewUserMessage(sub.Message, sub.Attachments)
	userID := o.store.Append(userMsg)
	placeholder := model.NewPlaceholder()
	assistantID := o.store.Append(placeholder)

	o.setPhase(PhaseStreaming)

	ex := model.Exchange{
		ID:        assistantID,
		SessionID: sessionID,
		Route:     string(route),
		Provider:  adapter.ProviderID(),
		Model:     modelName,
		StartedAt: started,
	}

	acc := stream.NewAccumulator(placeholder, o.opts.MarkerLookback)
	tokens := 0
	sawThinking := false

	publish := func(u stream.Update) error {
		sawThinking = sawThinking || u.Boundary
		if err := o.store.Replace(assistantID, u.Message); err != nil {
			return fmt.Errorf("failed to publish message: %w", err)
		}
		return nil
	}

	streamErr := func() error {
		req := provider.SendRequest{
			Message:     sub.Message,
			Window:      window,
			Attachments: sub.Attachments,
			Depth:       depth,
		}
		for tok, err := range adapter.Send(ctx, req) {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			tokens++
			if err := publish(acc.Push(tok)); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if u, ok := acc.Flush(); ok {
			return publish(u)
		}
		return nil
	}()

	ex.Tokens = tokens
	ex.Thinking = sawThinking
	ex.Duration = time.Since(started)

	if streamErr != nil {
		if rmErr := o.store.Remove(assistantID); rmErr != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Chat] Failed to remove placeholder %s: %v", assistantID, rmErr)
		}
		o.setPhase(PhaseFailed)
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Chat] Exchange failed after %d tokens: %v", tokens, streamErr)
		}
		ex.Status = model.ExchangeFailed
		ex.Error = streamErr.Error()
		o.record(ex)
		return nil, streamErr
	}

	final := acc.Message()
	o.setPhase(PhaseCompleted)
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Chat] Exchange completed: %d tokens in %s", tokens, ex.Duration)
	}

	ex.Status = model.ExchangeCompleted
	o.record(ex)

	res := &Result{
		UserID:   userID,
		Message:  final,
		Route:    route,
		Provider: adapter.ProviderID(),
		Model:    modelName,
		Tokens:   tokens,
		Duration: ex.Duration,
	}
	return res, nil
}

// selectRoute validates sub and picks the adapter by priority.
func selectRoute(sub Submission, a provider.Adapters) (Route, *provider.Adapter, model.Depth, error) {
	if strings.TrimSpace(sub.Message) == "" && sub.Attachments.Empty() {
		return "", nil, model.DepthPlain, &ValidationError{Reason: "Please enter a message or attach a file."}
	}

	// A search mode without its provider is rejected even when developer
	// mode would take priority.
	if (sub.WebSearch || sub.Reasoning) && a.Search == nil {
		return "", nil, model.DepthPlain, &ValidationError{
			Reason: "Web search and reasoning need an API key for the search provider. Set one with /key.",
		}
	}

	if sub.Developer && a.Developer != nil {
		return RouteDeveloper, a.Developer, model.DepthPlain, nil
	}

	if sub.WebSearch || sub.Reasoning {
		depth := model.DepthPlain
		if sub.Reasoning {
			depth = model.DepthReasoning
		}
		return RouteSearch, a.Search, depth, nil
	}

	if a.Generate == nil {
		return "", nil, model.DepthPlain, &ValidationError{
			Reason: "No API key configured for the generation provider. Set one with /key.",
		}
	}
	return RouteGeneration, a.Generate, model.DepthPlain, nil
}

// FollowUps suggests questions for the turn after a completed exchange.
// It runs outside Submit so a slow suggestion never holds back the next
// submission. Failures are logged and yield no suggestions, as does a
// missing follow-up adapter.
func (o *Orchestrator) FollowUps(ctx context.Context, question, answer string) []string {
	o.mu.RLock()
	a := o.adapters.FollowUp
	o.mu.RUnlock()
	if a == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, o.opts.FollowUpTimeout)
	defer cancel()

	qs, err := GenerateFollowUps(ctx, a, question, answer)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Chat] Follow-up generation skipped: %v", err)
		}
		return nil
	}
	return qs
}

func (o *Orchestrator) record(ex model.Exchange) {
	if o.opts.Recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.opts.Recorder.Record(ctx, ex); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[Chat] Failed to record exchange: %v", err)
	}
}
