package service

import (
	"sync"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
)

// Hub fans session-change events out to subscribers. Every published event
// carries a monotonically increasing sequence; subscribers use it to discard
// stale deliveries. Delivery is synchronous and in publish order.
type Hub struct {
	mu     sync.Mutex
	seq    uint64
	nextID int
	subs   map[int]func(domain.AuthEvent)
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(domain.AuthEvent))}
}

// Subscribe registers fn and returns its release handle. The handle is
// idempotent.
func (h *Hub) Subscribe(fn func(domain.AuthEvent)) ports.Unsubscribe {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
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

// Publish assigns the next sequence to the event and delivers it to all
// current subscribers. Returns the assigned sequence.
func (h *Hub) Publish(eventType domain.AuthEventType, sess *domain.Session, user *domain.User) uint64 {
	h.mu.Lock()
	h.seq++
	ev := domain.AuthEvent{Type: eventType, Seq: h.seq, Session: sess, User: user}
	fns := make([]func(domain.AuthEvent), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
	return ev.Seq
}
