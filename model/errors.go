package model

import (
	"errors"
	"fmt"
)

// UpstreamError reports a failure talking to a provider: network errors,
// non-2xx statuses, malformed stream framing, provider error payloads and
// adapter timeouts.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("upstream error: %v", e.Err)
	}
	return fmt.Sprintf("%s upstream error: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// AsUpstream wraps err as an UpstreamError unless it already is one.
func AsUpstream(provider string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Provider: provider, Err: err}
}
