package storage

import (
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"paradox/model"
	"paradox/stream"
)

const (
	maxSearchResults = 50
	previewLength    = 100
)

// MessageMatch is a search hit inside one conversation.
type MessageMatch struct {
	MessageID model.MessageID
	Role      model.Role
	Preview   string
	Timestamp time.Time
	Score     int
}

// SessionMessageMatch is a search hit across saved sessions. MessageID is
// empty when the session name matched.
type SessionMessageMatch struct {
	SessionID   string
	SessionName string
	MessageMatch
}

// searchLine is one searchable line of a message.
type searchLine struct {
	msg  int
	text string
}

type lineSource []searchLine

func (s lineSource) String(i int) string { return s[i].text }
func (s lineSource) Len() int            { return len(s) }

// searchLines splits messages into searchable lines. Thinking is excluded
// so hits point at visible text.
func searchLines(messages []model.Message) lineSource {
	var src lineSource
	for i, msg := range messages {
		if msg.Role == model.RoleSystem {
			continue
		}
		for _, line := range strings.Split(stream.StripThinking(msg.Content), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			src = append(src, searchLine{msg: i, text: line})
		}
	}
	return src
}

func preview(s string) string {
	if r := []rune(s); len(r) > previewLength {
		return string(r[:previewLength]) + "..."
	}
	return s
}

// SearchMessages fuzzy-searches messages, best match first, one hit per
// message.
func SearchMessages(messages []model.Message, query string) []MessageMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		return []MessageMatch{}
	}

	src := searchLines(messages)
	seen := make(map[int]bool)
	matches := []MessageMatch{}

	for _, m := range fuzzy.FindFrom(query, src) {
		line := src[m.Index]
		if seen[line.msg] {
			continue
		}
		seen[line.msg] = true

		msg := messages[line.msg]
		matches = append(matches, MessageMatch{
			MessageID: msg.ID,
			Role:      msg.Role,
			Preview:   preview(line.text),
			Timestamp: msg.Timestamp,
			Score:     m.Score,
		})
		if len(matches) == maxSearchResults {
			break
		}
	}

	return matches
}

// SearchIndex searches across all saved sessions.
type SearchIndex struct {
	storage *SessionStorage
}

func NewSearchIndex(storage *SessionStorage) *SearchIndex {
	return &SearchIndex{storage: storage}
}

// SearchAllSessions matches query against session names and message text,
// best match first.
func (si *SearchIndex) SearchAllSessions(query string) ([]SessionMessageMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SessionMessageMatch{}, nil
	}

	sessionList, err := si.storage.List()
	if err != nil {
		return nil, err
	}

	var matches []SessionMessageMatch

	names := make([]string, len(sessionList))
	for i, meta := range sessionList {
		names[i] = meta.Name
	}
	for _, m := range fuzzy.Find(query, names) {
		meta := sessionList[m.Index]
		matches = append(matches, SessionMessageMatch{
			SessionID:   meta.ID,
			SessionName: meta.Name,
			MessageMatch: MessageMatch{
				Preview:   preview(meta.Name),
				Timestamp: meta.UpdatedAt,
				Score:     m.Score,
			},
		})
	}

	for _, meta := range sessionList {
		session, err := si.storage.Load(meta.ID)
		if err != nil {
			continue
		}
		for _, mm := range SearchMessages(session.Messages, query) {
			matches = append(matches, SessionMessageMatch{
				SessionID:    session.ID,
				SessionName:  session.Name,
				MessageMatch: mm,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > maxSearchResults {
		matches = matches[:maxSearchResults]
	}

	return matches, nil
}
