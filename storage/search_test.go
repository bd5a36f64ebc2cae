package storage

import (
	"testing"

	"paradox/model"
)

func TestSearchMessages(t *testing.T) {
	msgs := []model.Message{
		{ID: "sys", Role: model.RoleSystem, Content: "golang expert"},
		{ID: "u1", Role: model.RoleUser, Content: "How do goroutines work?"},
		{ID: "a1", Role: model.RoleAssistant, Content: "<think>goroutines goroutines</think>They are lightweight threads.\nSchedule with go."},
		{ID: "u2", Role: model.RoleUser, Content: "thanks"},
	}

	tests := []struct {
		name  string
		query string
		want  []model.MessageID
	}{
		{"empty query", "  ", nil},
		{"system messages skipped", "expert", nil},
		{"thinking not searched", "goroutines", []model.MessageID{"u1"}},
		{"one hit per message", "th", []model.MessageID{"u2", "a1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchMessages(msgs, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d matches (%+v), want %d", len(got), got, len(tt.want))
			}
			ids := map[model.MessageID]bool{}
			for _, m := range got {
				ids[m.MessageID] = true
			}
			for _, id := range tt.want {
				if !ids[id] {
					t.Errorf("missing match for %s", id)
				}
			}
		})
	}
}

func TestSearchPreviewTruncated(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "needle "
	}
	got := SearchMessages([]model.Message{{ID: "x", Role: model.RoleUser, Content: long}}, "needle")
	if len(got) != 1 {
		t.Fatalf("got %d matches", len(got))
	}
	if r := []rune(got[0].Preview); len(r) != previewLength+3 {
		t.Errorf("preview length: got %d", len(r))
	}
}

func TestSearchAllSessions(t *testing.T) {
	s := newTestStorage(t)
	idx := NewSearchIndex(s)

	recipes := &Session{Name: "Pasta recipes", Messages: []model.Message{
		{ID: "m1", Role: model.RoleUser, Content: "carbonara please"},
	}}
	code := &Session{Name: "Go help", Messages: []model.Message{
		{ID: "m2", Role: model.RoleAssistant, Content: "Use a channel for that."},
	}}
	for _, sess := range []*Session{recipes, code} {
		if err := s.Save(sess); err != nil {
			t.Fatal(err)
		}
	}

	got, err := idx.SearchAllSessions("carbonara")
	if err != nil {
		t.Fatalf("SearchAllSessions: %v", err)
	}
	if len(got) != 1 || got[0].SessionID != recipes.ID || got[0].MessageID != "m1" {
		t.Errorf("message hit: %+v", got)
	}

	got, _ = idx.SearchAllSessions("pasta")
	if len(got) == 0 || got[0].SessionID != recipes.ID || got[0].MessageID != "" {
		t.Errorf("session name hit: %+v", got)
	}

	got, _ = idx.SearchAllSessions("")
	if len(got) != 0 {
		t.Errorf("empty query: %+v", got)
	}
}
