package storage

import (
	"errors"
	"sync"
	"time"

	"paradox/model"
)

var (
	ErrMessageNotFound   = errors.New("message not found")
	ErrEmptyConversation = errors.New("conversation is empty")
)

// EventKind says what changed in a Conversation.
type EventKind int

const (
	EventAppended EventKind = iota
	EventReplaced
	EventRemoved
	EventReset
)

// Event is delivered to subscribers after every mutation.
type Event struct {
	Kind    EventKind
	ID      model.MessageID
	Message model.Message // zero for EventRemoved and EventReset
}

// Conversation is the in-memory, ordered message history of the active
// session. It is safe for concurrent use; readers get copies.
type Conversation struct {
	mu   sync.RWMutex
	msgs []model.Message

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
	// notifyMu keeps deliveries in mutation order.
	notifyMu sync.Mutex
}

// NewConversation creates a conversation seeded with msgs.
func NewConversation(msgs ...model.Message) *Conversation {
	c := &Conversation{subs: make(map[int]func(Event))}
	for _, m := range msgs {
		c.msgs = append(c.msgs, normalize(m))
	}
	return c
}

func normalize(m model.Message) model.Message {
	if m.ID == "" {
		m.ID = model.NewMessageID()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	return m.Clone()
}

// Subscribe registers fn for every subsequent mutation. fn runs on the
// mutating goroutine after the store lock is released, so it may read the
// conversation.
func (c *Conversation) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Conversation) notify(ev Event) {
	c.subMu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Append adds msg at the end and returns its handle. A message without an
// ID is given one.
func (c *Conversation) Append(msg model.Message) model.MessageID {
	msg = normalize(msg)

	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()

	c.notify(Event{Kind: EventAppended, ID: msg.ID, Message: msg.Clone()})
	return msg.ID
}

// Replace overwrites the message with handle id. The stored message keeps
// id regardless of msg.ID.
func (c *Conversation) Replace(id model.MessageID, msg model.Message) error {
	msg = msg.Clone()
	msg.ID = id

	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return ErrMessageNotFound
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = c.msgs[i].Timestamp
	}
	c.msgs[i] = msg
	c.mu.Unlock()

	c.notify(Event{Kind: EventReplaced, ID: id, Message: msg.Clone()})
	return nil
}

// ReplaceLast overwrites the trailing message, keeping its handle.
func (c *Conversation) ReplaceLast(msg model.Message) error {
	c.mu.RLock()
	if len(c.msgs) == 0 {
		c.mu.RUnlock()
		return ErrEmptyConversation
	}
	id := c.msgs[len(c.msgs)-1].ID
	c.mu.RUnlock()

	return c.Replace(id, msg)
}

// Remove deletes the message with handle id.
func (c *Conversation) Remove(id model.MessageID) error {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return ErrMessageNotFound
	}
	c.msgs = append(c.msgs[:i], c.msgs[i+1:]...)
	c.mu.Unlock()

	c.notify(Event{Kind: EventRemoved, ID: id})
	return nil
}

// Reset replaces the whole history, e.g. when a session is loaded.
func (c *Conversation) Reset(msgs []model.Message) {
	fresh := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		fresh = append(fresh, normalize(m))
	}

	c.mu.Lock()
	c.msgs = fresh
	c.mu.Unlock()

	c.notify(Event{Kind: EventReset})
}

// Window returns a deep copy of the trailing n messages, oldest first.
func (c *Conversation) Window(n int) model.Window {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return model.Snapshot(c.msgs, n)
}

// Messages returns a deep copy of the whole history.
func (c *Conversation) Messages() []model.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Message, len(c.msgs))
	for i, m := range c.msgs {
		out[i] = m.Clone()
	}
	return out
}

// Get returns the message with handle id.
func (c *Conversation) Get(id model.MessageID) (model.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexLocked(id)
	if i < 0 {
		return model.Message{}, false
	}
	return c.msgs[i].Clone(), true
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.msgs)
}

// indexLocked searches from the end, where updates land.
func (c *Conversation) indexLocked(id model.MessageID) int {
	for i := len(c.msgs) - 1; i >= 0; i-- {
		if c.msgs[i].ID == id {
			return i
		}
	}
	return -1
}
