package stream

import (
	"sync"

	"backend/internal/metrics"
	"backend/internal/models"
)

// Event is the payload pushed over a notification stream.
type Event struct {
	Type  string                `json:"type"`
	Items []models.Notification `json:"items,omitempty"`
}

// Subscriber is one open stream for one user. Events arrive on C until
// Unsubscribe closes it.
type Subscriber struct {
	C      chan Event
	userID string
}

// Hub owns the userId -> open subscribers map. It is process-local and
// mutex-guarded; delivery is best-effort and never blocks the publisher.
// Handlers receive the hub by injection, there is no package-level instance.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscriber]struct{})}
}

// subscriberBuffer bounds how far a slow reader may fall behind before
// pushes to it are dropped.
const subscriberBuffer = 16

func (h *Hub) Subscribe(userID string) *Subscriber {
	sub := &Subscriber{
		C:      make(chan Event, subscriberBuffer),
		userID: userID,
	}

	h.mu.Lock()
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.subs[userID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	metrics.StreamConnections.Inc()
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Safe against
// concurrent Publish because both hold the hub mutex.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	set, ok := h.subs[sub.userID]
	if ok {
		if _, present := set[sub]; present {
			delete(set, sub)
			close(sub.C)
			metrics.StreamConnections.Dec()
		}
		if len(set) == 0 {
			delete(h.subs, sub.userID)
		}
	}
	h.mu.Unlock()
}

// Publish sends the event to every open stream of the user without
// blocking. A full subscriber channel or the absence of any stream counts
// as a dropped delivery; the persisted notification remains the source of
// truth either way.
func (h *Hub) Publish(userID string, ev Event) (delivered int) {
	h.mu.Lock()
	set := h.subs[userID]
	for sub := range set {
		select {
		case sub.C <- ev:
			delivered++
		default:
		}
	}
	h.mu.Unlock()

	if delivered > 0 {
		metrics.NotificationsPushed.Add(float64(delivered))
	} else {
		metrics.NotificationsDropped.Inc()
	}
	return delivered
}

// Connections reports the open stream count for one user.
func (h *Hub) Connections(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}
