package testutil

import (
	"context"
	"iter"
	"sync"

	"paradox/model"
)

// MockProvider implements model.Provider for testing
type MockProvider struct {
	// Configurable responses
	StreamFunc func(ctx context.Context, req model.Request) iter.Seq2[string, error]
	PingFunc   func(ctx context.Context) error

	id string

	mu       sync.Mutex
	requests []model.Request
}

// NewMockProvider creates a mock provider that streams tokens and then
// finishes cleanly.
func NewMockProvider(id string, tokens ...string) *MockProvider {
	mock := &MockProvider{id: id}
	mock.StreamFunc = func(ctx context.Context, req model.Request) iter.Seq2[string, error] {
		return Tokens(tokens...)
	}
	mock.PingFunc = func(ctx context.Context) error { return nil }
	return mock
}

func (m *MockProvider) Stream(ctx context.Context, req model.Request) iter.Seq2[string, error] {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.StreamFunc(ctx, req)
}

func (m *MockProvider) ID() string { return m.id }

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

// Requests returns the requests received so far.
func (m *MockProvider) Requests() []model.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Request(nil), m.requests...)
}

// Tokens yields each token in order, then ends.
func Tokens(tokens ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, tok := range tokens {
			if !yield(tok, nil) {
				return
			}
		}
	}
}

// TokensThenError yields tokens, then err.
func TokensThenError(err error, tokens ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, tok := range tokens {
			if !yield(tok, nil) {
				return
			}
		}
		yield("", err)
	}
}

// Blocking yields tokens, then waits for release to be closed or ctx to end
// before yielding the tail. It lets tests hold an exchange in flight.
func Blocking(ctx context.Context, release <-chan struct{}, head []string, tail ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, tok := range head {
			if !yield(tok, nil) {
				return
			}
		}
		select {
		case <-release:
		case <-ctx.Done():
			yield("", ctx.Err())
			return
		}
		for _, tok := range tail {
			if !yield(tok, nil) {
				return
			}
		}
	}
}
