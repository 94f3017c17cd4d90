package update

import (
	"sync"
	"time"

	"github.com/clubworks/hookconf/pkg/types"
)

// ChangeEvent describes one applied configuration change. Events are
// delivered synchronously to in-process subscribers.
type ChangeEvent struct {
	UpdateID  string      `json:"updateId"`
	Type      Type        `json:"type"`
	Path      string      `json:"path,omitempty"`
	OldValue  interface{} `json:"oldValue"`
	NewValue  interface{} `json:"newValue"`
	Timestamp time.Time   `json:"timestamp"`
	Author    string      `json:"author,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// Handler consumes change events.
type Handler func(ChangeEvent)

// Bus is a typed, in-process publish/subscribe channel for configuration
// change events.
type Bus struct {
	mu       sync.Mutex
	handlers map[int]Handler
	nextID   int
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers a handler and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish delivers the event to every subscriber, synchronously, in
// unspecified order.
func (b *Bus) Publish(event ChangeEvent) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// RollbackPoint is an in-memory snapshot captured immediately before an
// update. Points live in a bounded stack and do not survive a process
// restart.
type RollbackPoint struct {
	UpdateID      string
	Configuration *types.SystemConfiguration
	Timestamp     time.Time
}

// HistoryEntry records one update in the bounded in-memory audit log.
type HistoryEntry struct {
	UpdateID   string    `json:"updateId"`
	Type       Type      `json:"type"`
	Path       string    `json:"path,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Author     string    `json:"author,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	RolledBack bool      `json:"rolledBack"`
}
