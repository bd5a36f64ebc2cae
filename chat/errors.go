package chat

import (
	"context"
	"errors"
	"fmt"

	"paradox/model"
)

// ValidationError rejects a submission before any network call. Reason is
// shown to the user verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// ConcurrentSubmissionError is returned when Submit is called while another
// exchange is still in flight.
type ConcurrentSubmissionError struct{}

func (e *ConcurrentSubmissionError) Error() string {
	return "a submission is already in flight"
}

const genericFailure = "Failed to generate response. Please try again."

// UserMessage translates an error returned by Submit into the text shown
// to the user. It is the only place errors become user-facing strings.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}

	var ce *ConcurrentSubmissionError
	if errors.As(err, &ce) {
		return "A response is still being generated. Please wait for it to finish."
	}

	if errors.Is(err, context.Canceled) {
		return "Request cancelled."
	}

	var ue *model.UpstreamError
	if errors.As(err, &ue) && ue.Err != nil {
		return fmt.Sprintf("%s (%v)", genericFailure, ue.Err)
	}

	return genericFailure
}
