package stream

import "strings"

// Kind classifies demultiplexed text.
type Kind int

const (
	KindAnswer Kind = iota
	KindThinking
)

func (k Kind) String() string {
	if k == KindThinking {
		return "thinking"
	}
	return "answer"
}

// Emission is a piece of classified content produced by Step.
type Emission struct {
	Kind Kind
	Text string
}

// State is the per-exchange demultiplexer state.
//
// ThinkingBuffer and AnswerBuffer hold the text received since the last
// marker. ClosedThinking keeps the thinking segment that the most recent
// close marker ended, so the answer can be prefixed with it.
type State struct {
	Thinking       bool
	ThinkingBuffer string
	AnswerBuffer   string
	ClosedThinking string
}

// Step advances the demultiplexer by one raw token.
//
// A token containing a marker is a pure control signal: its text is
// discarded, both buffers are cleared and nothing is emitted. When a token
// carries both markers the one occurring last decides the new state.
// Any other token is appended verbatim to the buffer selected by the
// current state and emitted with the matching kind.
//
// Marker detection is per token; a marker split across two tokens is not
// recognized. See Demux for the lookback variant.
func Step(prev State, token string) (State, Emission, bool) {
	open := strings.LastIndex(token, OpenMarker)
	closing := strings.LastIndex(token, CloseMarker)

	if open >= 0 || closing >= 0 {
		next := State{ClosedThinking: prev.ClosedThinking}
		switch {
		case open > closing:
			next.Thinking = true
			next.ClosedThinking = ""
		case prev.Thinking:
			next.ClosedThinking = prev.ThinkingBuffer
		}
		return next, Emission{}, false
	}

	next := prev
	if prev.Thinking {
		next.ThinkingBuffer += token
		return next, Emission{Kind: KindThinking, Text: token}, true
	}
	next.AnswerBuffer += token
	return next, Emission{Kind: KindAnswer, Text: token}, true
}

// Demux is a stateful wrapper around Step.
//
// With Lookback enabled, a trailing fragment that could be the start of a
// marker is held back and prepended to the next token, so markers split
// across token boundaries are still recognized. Flush releases any held
// fragment at end of stream. Lookback is off by default, which keeps the
// plain per-token behavior of Step.
type Demux struct {
	Lookback bool

	state State
	carry string
}

// State returns the current demultiplexer state.
func (d *Demux) State() State {
	return d.state
}

// Push feeds one raw token. It reports whether the token was treated as
// content (true) or as a control signal / held fragment (false).
func (d *Demux) Push(token string) (Emission, bool) {
	text := token
	if d.Lookback {
		text = d.carry + token
		d.carry = ""
		if !strings.Contains(text, OpenMarker) && !strings.Contains(text, CloseMarker) {
			if n := partialMarkerSuffix(text); n > 0 {
				d.carry = text[len(text)-n:]
				text = text[:len(text)-n]
				if text == "" {
					return Emission{}, false
				}
			}
		}
	}

	next, em, ok := Step(d.state, text)
	d.state = next
	return em, ok
}

// Flush releases a fragment held back by lookback. It is a no-op when
// nothing is pending.
func (d *Demux) Flush() (Emission, bool) {
	if d.carry == "" {
		return Emission{}, false
	}
	text := d.carry
	d.carry = ""
	next, em, ok := Step(d.state, text)
	d.state = next
	return em, ok
}
