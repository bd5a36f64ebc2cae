package provider_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"paradox/model"
	"paradox/provider/testutil"
)

// TestProviderContract defines the contract all providers must satisfy.
func TestProviderContract(t *testing.T) {
	tests := []struct {
		name     string
		provider model.Provider
	}{
		{"Mock", testutil.NewMockProvider("mock", "Hello", " world")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Run("Stream", func(t *testing.T) {
				testProviderStream(t, tt.provider)
			})
			t.Run("StopEarly", func(t *testing.T) {
				testProviderStopEarly(t, tt.provider)
			})
			t.Run("HealthCheck", func(t *testing.T) {
				testProviderHealthCheck(t, tt.provider)
			})
		})
	}
}

func testProviderStream(t *testing.T, p model.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var b strings.Builder
	for tok, err := range p.Stream(ctx, model.Request{Message: "Hello"}) {
		if err != nil {
			t.Fatalf("Stream() error = %v", err)
		}
		b.WriteString(tok)
	}

	if b.Len() == 0 {
		t.Error("Stream() did not yield any tokens")
	}
}

func testProviderStopEarly(t *testing.T, p model.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n := 0
	for _, err := range p.Stream(ctx, model.Request{Message: "Hello"}) {
		if err != nil {
			t.Fatalf("Stream() error = %v", err)
		}
		n++
		break
	}
	if n != 1 {
		t.Errorf("expected to stop after one token, got %d", n)
	}
}

func testProviderHealthCheck(t *testing.T, p model.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

// TestMockProviderImplementsInterface ensures mock provider implements the interface
func TestMockProviderImplementsInterface(t *testing.T) {
	var _ model.Provider = (*testutil.MockProvider)(nil)
}
