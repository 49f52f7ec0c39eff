package events

import (
	"sync"
)

// Hub fans events out to in-process subscribers. Handlers run on the
// publisher's goroutine and must not block.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]subscription
}

type subscription struct {
	boardID string
	fn      func(Event)
}

// NewHub returns an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]subscription)}
}

// Subscribe registers fn for events on boardID ("" = every board).
// The returned function removes the subscription and is safe to call twice.
func (h *Hub) Subscribe(boardID string, fn func(Event)) (unsubscribe func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = subscription{boardID: boardID, fn: fn}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Publish delivers ev to every matching subscriber
func (h *Hub) Publish(ev Event) error {
	h.mu.RLock()
	targets := make([]func(Event), 0, len(h.subs))
	for _, s := range h.subs {
		if ev.Matches(s.boardID) {
			targets = append(targets, s.fn)
		}
	}
	h.mu.RUnlock()

	for _, fn := range targets {
		fn(ev)
	}
	return nil
}

// Len returns the number of live subscriptions
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
