package stream

import (
	"strings"
	"testing"

	"paradox/model"
)

func run(tokens []string, lookback bool) (*Accumulator, []Update) {
	acc := NewAccumulator(model.NewPlaceholder(), lookback)
	var updates []Update
	for _, tok := range tokens {
		updates = append(updates, acc.Push(tok))
	}
	if u, ok := acc.Flush(); ok {
		updates = append(updates, u)
	}
	return acc, updates
}

func TestAccumulatorScenarios(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []string
		lookback bool
		want     string
	}{
		{
			name:   "plain answer",
			tokens: []string{"Hello", " world"},
			want:   "Hello world",
		},
		{
			name:   "thinking then answer",
			tokens: []string{"<think>", "step 1", "</think>", "answer"},
			want:   "<think>step 1</think>answer",
		},
		{
			name:   "multi token thinking",
			tokens: []string{"<think>", "a", " b", "</think>", "x", "y"},
			want:   "<think>a b</think>xy",
		},
		{
			name:   "open marker only",
			tokens: []string{"<think>"},
			want:   "<think></think>",
		},
		{
			name:   "empty thinking segment is omitted",
			tokens: []string{"<think>", "</think>", "answer"},
			want:   "answer",
		},
		{
			name:   "marker text glued to content is discarded",
			tokens: []string{"<think>lost", "kept", "</think>gone", "answer"},
			want:   "<think>kept</think>answer",
		},
		{
			name:   "answer before thinking is dropped",
			tokens: []string{"early", "<think>", "t", "</think>", "late"},
			want:   "<think>t</think>late",
		},
		{
			name:   "split markers are not recognized by default",
			tokens: []string{"<thi", "nk>", "plan"},
			want:   "<think>plan",
		},
		{
			name:     "split markers recognized with lookback",
			tokens:   []string{"<thi", "nk>", "plan", "</th", "ink>", "done"},
			lookback: true,
			want:     "<think>plan</think>done",
		},
		{
			name:     "lookback flushes trailing fragment",
			tokens:   []string{"a <", "b", " <"},
			lookback: true,
			want:     "a <b <",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, _ := run(tt.tokens, tt.lookback)
			if got := acc.Message().Content; got != tt.want {
				t.Errorf("content: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenMarkerOnlyStaysThinking(t *testing.T) {
	acc, _ := run([]string{"<think>", "still going"}, false)

	if !acc.Thinking() {
		t.Fatal("expected accumulator to remain in thinking state")
	}
	split := SplitThinking(acc.Message().Content)
	if split.Answer != "" {
		t.Errorf("answer: got %q, want empty", split.Answer)
	}
	if split.Thinking != "still going" {
		t.Errorf("thinking: got %q, want %q", split.Thinking, "still going")
	}
}

func TestReconstructionProperty(t *testing.T) {
	tests := []struct {
		name     string
		thinking []string
		after    []string
	}{
		{"no markers", nil, []string{"one ", "two ", "three"}},
		{"whitespace preserved", []string{" lead", "ing ", "\n"}, []string{"\tanswer "}},
		{"long thinking", []string{"x", "y", "z", "w"}, []string{"!"}},
		{"thinking only", []string{"only thoughts"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokens []string
			if tt.thinking != nil {
				tokens = append(tokens, OpenMarker)
				tokens = append(tokens, tt.thinking...)
				tokens = append(tokens, CloseMarker)
			}
			tokens = append(tokens, tt.after...)

			acc, _ := run(tokens, false)
			split := SplitThinking(acc.Message().Content)

			wantThinking := strings.Join(tt.thinking, "")
			wantAnswer := strings.Join(tt.after, "")
			if split.Thinking != wantThinking {
				t.Errorf("thinking: got %q, want %q", split.Thinking, wantThinking)
			}
			if split.Answer != wantAnswer {
				t.Errorf("answer: got %q, want %q", split.Answer, wantAnswer)
			}
		})
	}
}

func TestReplayIsIdempotent(t *testing.T) {
	tokens := []string{"<think>", "consider ", "options", "</think>", "Use ", "**Go**", "."}

	first, _ := run(tokens, false)
	second, _ := run(tokens, false)

	if first.Message().Content != second.Message().Content {
		t.Errorf("replay differs: %q vs %q", first.Message().Content, second.Message().Content)
	}
}

func TestClosedThinkingNeverShrinks(t *testing.T) {
	tokens := []string{"<think>", "reason", "</think>", "a", "b", "c"}
	_, updates := run(tokens, false)

	closedAt := 2
	for i := closedAt; i < len(updates); i++ {
		split := SplitThinking(updates[i].Message.Content)
		if split.Thinking != "reason" {
			t.Errorf("update %d: thinking %q, want %q", i, split.Thinking, "reason")
		}
	}
}

func TestBoundaryUpdates(t *testing.T) {
	_, updates := run([]string{"<think>", "t", "</think>", "a"}, false)

	wantBoundary := []bool{true, false, true, false}
	wantContent := []bool{false, true, false, true}
	for i, u := range updates {
		if u.Boundary != wantBoundary[i] {
			t.Errorf("update %d boundary: got %v, want %v", i, u.Boundary, wantBoundary[i])
		}
		if u.Content != wantContent[i] {
			t.Errorf("update %d content: got %v, want %v", i, u.Content, wantContent[i])
		}
	}
	if updates[1].Emission.Kind != KindThinking {
		t.Errorf("update 1 kind: got %v, want thinking", updates[1].Emission.Kind)
	}
	if updates[3].Emission.Kind != KindAnswer {
		t.Errorf("update 3 kind: got %v, want answer", updates[3].Emission.Kind)
	}
}

func TestStepBothMarkersLastWins(t *testing.T) {
	st, _, ok := Step(State{}, "<think>x</think>")
	if ok || st.Thinking {
		t.Errorf("close last: got thinking=%v ok=%v, want false/false", st.Thinking, ok)
	}

	st, _, ok = Step(State{}, "</think><think>")
	if ok || !st.Thinking {
		t.Errorf("open last: got thinking=%v ok=%v, want true/false", st.Thinking, ok)
	}
}

func TestFoldKeepsMessageIdentity(t *testing.T) {
	msg := model.NewPlaceholder()
	out := Fold(msg, State{AnswerBuffer: "hi"})
	if out.ID != msg.ID || out.Role != model.RoleAssistant {
		t.Errorf("fold changed identity: %+v", out)
	}
}

func TestSplitThinking(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Split
	}{
		{"no markers", "plain", Split{Answer: "plain"}},
		{"leading segment", "<think>t</think>a", Split{Thinking: "t", HasThinking: true, Answer: "a"}},
		{"untrimmed", "<think> t </think> a ", Split{Thinking: " t ", HasThinking: true, Answer: " a "}},
		{"unterminated", "<think>t", Split{Answer: "<think>t"}},
		{"first segment only", "<think>1</think>x<think>2</think>", Split{Thinking: "1", HasThinking: true, Answer: "x<think>2</think>"}},
		{"empty segment", "<think></think>a", Split{HasThinking: true, Answer: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitThinking(tt.content); got != tt.want {
				t.Errorf("SplitThinking(%q) = %+v, want %+v", tt.content, got, tt.want)
			}
		})
	}
}

func TestPartialMarkerSuffix(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"abc", 0},
		{"abc<", 1},
		{"abc<thi", 4},
		{"abc</", 2},
		{"abc</think", 7},
		{"<think", 6},
	}
	for _, tt := range tests {
		if got := partialMarkerSuffix(tt.in); got != tt.want {
			t.Errorf("partialMarkerSuffix(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
