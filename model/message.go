package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// MessageID is a stable handle for a message in a conversation.
// Updates address messages by ID instead of by position so a late write
// can never land on an unrelated message.
type MessageID string

// NewMessageID returns a fresh random message handle.
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

// PDF is an attached PDF document. Data is a data URL or bare base64.
type PDF struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Attachments holds the files sent along with a user message, in the
// order the user selected them.
type Attachments struct {
	Images []string `json:"images,omitempty"` // data URLs or bare base64
	PDFs   []PDF    `json:"pdfs,omitempty"`
}

// Empty reports whether no attachment is present.
func (a *Attachments) Empty() bool {
	return a == nil || (len(a.Images) == 0 && len(a.PDFs) == 0)
}

// Clone returns a deep copy, or nil for an empty set.
func (a *Attachments) Clone() *Attachments {
	if a.Empty() {
		return nil
	}
	c := &Attachments{}
	if len(a.Images) > 0 {
		c.Images = append([]string(nil), a.Images...)
	}
	if len(a.PDFs) > 0 {
		c.PDFs = append([]PDF(nil), a.PDFs...)
	}
	return c
}

// Message represents a chat message in the conversation.
//
// Assistant content may embed a single thinking segment wrapped in
// <think>...</think> ahead of the visible answer. Use stream.SplitThinking
// to separate the two.
type Message struct {
	ID          MessageID    `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Attachments *Attachments `json:"attachments,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Clone returns a copy that shares no mutable state with m.
func (m Message) Clone() Message {
	m.Attachments = m.Attachments.Clone()
	return m
}

// NewUserMessage builds a user message with a fresh handle.
func NewUserMessage(content string, attachments *Attachments) Message {
	return Message{
		ID:          NewMessageID(),
		Role:        RoleUser,
		Content:     content,
		Attachments: attachments.Clone(),
		Timestamp:   time.Now(),
	}
}

// NewPlaceholder builds the empty assistant message that is filled in
// while a response streams.
func NewPlaceholder() Message {
	return Message{
		ID:        NewMessageID(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
	}
}

// Window is a read-only snapshot of the most recent messages, oldest first,
// passed to providers as conversation context.
type Window []Message

// Snapshot deep-copies the trailing n messages of msgs into a Window.
// A non-positive n yields an empty window.
func Snapshot(msgs []Message, n int) Window {
	if n <= 0 || len(msgs) == 0 {
		return Window{}
	}
	start := len(msgs) - n
	if start < 0 {
		start = 0
	}
	w := make(Window, 0, len(msgs)-start)
	for _, m := range msgs[start:] {
		w = append(w, m.Clone())
	}
	return w
}
