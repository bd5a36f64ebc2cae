// Package stream turns a raw token stream into an incrementally rendered
// assistant message.
//
// Providers emit reasoning ("thinking") text in-band, wrapped in the
// <think> and </think> sentinel markers. The demultiplexer classifies each
// token as thinking or answer text, and the accumulator folds the
// classified stream into a single serialized content string of the form
//
//	<think>reasoning</think>answer
//
// which is what gets stored in the conversation and re-split by renderers
// with SplitThinking.
package stream

import "strings"

// Sentinel markers delimiting the thinking segment.
const (
	OpenMarker  = "<think>"
	CloseMarker = "</think>"
)

// Split is the result of separating stored content into its thinking
// segment and visible answer.
type Split struct {
	Thinking    string
	HasThinking bool
	Answer      string
}

// SplitThinking separates the first closed <think>...</think> segment of
// content from the rest. Text is returned verbatim; renderers trim as they
// see fit. An unterminated open marker is not a thinking segment.
func SplitThinking(content string) Split {
	start := strings.Index(content, OpenMarker)
	if start < 0 {
		return Split{Answer: content}
	}
	body := content[start+len(OpenMarker):]
	end := strings.Index(body, CloseMarker)
	if end < 0 {
		return Split{Answer: content}
	}
	return Split{
		Thinking:    body[:end],
		HasThinking: true,
		Answer:      content[:start] + body[end+len(CloseMarker):],
	}
}

// Compose serializes a thinking segment and an answer. An empty thinking
// segment is omitted.
func Compose(thinking, answer string) string {
	if thinking == "" {
		return answer
	}
	return OpenMarker + thinking + CloseMarker + answer
}

// StripThinking returns content without its thinking segment.
func StripThinking(content string) string {
	return SplitThinking(content).Answer
}

// partialMarkerSuffix returns the length of the longest suffix of s that is
// a proper prefix of one of the markers.
func partialMarkerSuffix(s string) int {
	longest := 0
	for _, m := range []string{OpenMarker, CloseMarker} {
		for n := len(m) - 1; n > longest; n-- {
			if strings.HasSuffix(s, m[:n]) {
				longest = n
				break
			}
		}
	}
	return longest
}
