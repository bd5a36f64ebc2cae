package stream

import "paradox/model"

// Fold renders the in-progress assistant message for state st.
//
// While thinking, the content is the open thinking segment alone; any
// answer text seen before the thinking began is dropped. Once thinking has
// closed, the closed segment prefixes the growing answer.
func Fold(msg model.Message, st State) model.Message {
	out := msg
	if st.Thinking {
		out.Content = OpenMarker + st.ThinkingBuffer + CloseMarker
		return out
	}
	out.Content = Compose(st.ClosedThinking, st.AnswerBuffer)
	return out
}

// Update describes the effect of one token on the accumulated message.
type Update struct {
	Message  model.Message
	Emission Emission
	// Content is true when the token carried text, false for control
	// tokens and held fragments.
	Content bool
	// Boundary is true when the token opened or closed a thinking segment.
	Boundary bool
}

// Accumulator owns the evolving assistant message of one exchange.
type Accumulator struct {
	demux Demux
	msg   model.Message
}

// NewAccumulator starts accumulating into placeholder.
func NewAccumulator(placeholder model.Message, lookback bool) *Accumulator {
	return &Accumulator{
		demux: Demux{Lookback: lookback},
		msg:   placeholder,
	}
}

// Push folds one raw token into the message.
func (a *Accumulator) Push(token string) Update {
	before := a.demux.State().Thinking
	em, ok := a.demux.Push(token)
	return a.apply(em, ok, before)
}

// Flush folds any fragment still held back by marker lookback.
func (a *Accumulator) Flush() (Update, bool) {
	before := a.demux.State().Thinking
	em, ok := a.demux.Flush()
	if !ok {
		return Update{}, false
	}
	return a.apply(em, ok, before), true
}

func (a *Accumulator) apply(em Emission, ok, wasThinking bool) Update {
	st := a.demux.State()
	a.msg = Fold(a.msg, st)
	return Update{
		Message:  a.msg,
		Emission: em,
		Content:  ok,
		Boundary: !ok && st.Thinking != wasThinking,
	}
}

// Message returns the current accumulated message.
func (a *Accumulator) Message() model.Message {
	return a.msg
}

// Thinking reports whether a thinking segment is currently open.
func (a *Accumulator) Thinking() bool {
	return a.demux.State().Thinking
}
