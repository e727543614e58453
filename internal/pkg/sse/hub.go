// Package sse fans in-app events out to per-recipient subscriber channels.
package sse

import (
	"sync"
)

// Event is one server-sent event addressed to a recipient.
type Event struct {
	RecipientID string
	Event       string
	Data        any
}

// Hub tracks subscribers per recipient. Publishing never blocks: a subscriber
// whose buffer is full misses the event.
type Hub struct {
	mu          sync.RWMutex
	closed      bool
	bufferSize  int
	subscribers map[string]map[chan Event]struct{}
}

func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 10
	}
	return &Hub{
		bufferSize:  bufferSize,
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a channel for recipientID. The returned cleanup
// unregisters and closes it; calling it more than once is safe.
func (h *Hub) Subscribe(recipientID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.bufferSize)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	if h.subscribers[recipientID] == nil {
		h.subscribers[recipientID] = make(map[chan Event]struct{})
	}
	h.subscribers[recipientID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			subs, ok := h.subscribers[recipientID]
			if !ok {
				return
			}
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(h.subscribers, recipientID)
			}
		})
	}

	return ch, cleanup
}

// Publish delivers event to every subscriber of event.RecipientID.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[event.RecipientID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of open subscriptions for a recipient.
func (h *Hub) SubscriberCount(recipientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[recipientID])
}

// Close ends every subscription. Later subscriptions receive a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for recipientID, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(h.subscribers, recipientID)
	}
}
