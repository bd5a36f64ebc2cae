package model

import "time"

// ExchangeStatus is the terminal state of one exchange.
type ExchangeStatus string

const (
	ExchangeCompleted ExchangeStatus = "completed"
	ExchangeFailed    ExchangeStatus = "failed"
)

// Exchange summarizes one submission for the exchange log.
type Exchange struct {
	ID        MessageID // assistant message handle
	SessionID string
	Route     string
	Provider  string
	Model     string
	Status    ExchangeStatus
	Tokens    int
	Thinking  bool
	StartedAt time.Time
	Duration  time.Duration
	Error     string
}
