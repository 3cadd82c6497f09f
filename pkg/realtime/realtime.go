// Package realtime fans history events out to in-process listeners such as
// WebSocket sessions.
//
// Delivery is best effort: each listener has its own buffered channel and an
// event is dropped for a listener whose buffer is full. Nothing is persisted
// or replayed.
package realtime

import (
	"sync"

	"github.com/rubiojr/reposearch/pkg/history"
)

// Event is the envelope sent to listeners. Type is "history" for history
// mutations; other kinds can be added without changing channel types.
type Event struct {
	Type    string        `json:"type"`
	History history.Event `json:"history"`
}

// Hub is an in-memory fan-out dispatcher. It is safe for concurrent use.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan Event
	nextID    uint64
	bufSize   int
}

// NewHub returns a hub with the given per-listener buffer size (32 if <= 0).
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		listeners: make(map[uint64]chan Event),
		bufSize:   bufSize,
	}
}

// Register adds a listener. Callers must Unregister the returned id.
func (h *Hub) Register() (uint64, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes the listener and closes its channel. Unknown ids are
// ignored.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Broadcast delivers ev to every listener that has room for it.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
			// slow listener
		}
	}
}

// PublishHistory wraps a history event. It matches history.Observer.
func (h *Hub) PublishHistory(ev history.Event) {
	h.Broadcast(Event{Type: "history", History: ev})
}

// Size returns the number of registered listeners.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
