// Package notify broadcasts record-change notifications. The dispatcher
// publishes an event after each persisted write; interface components
// subscribe to refresh their views. Subscriptions are explicit so the
// dispatcher's side effects stay enumerable and testable.
package notify

import (
	"sync"
	"time"
)

// Topics paired with each persisted-record write.
const (
	TopicBookings = "bookings_updated"
	TopicSchedule = "schedule_updated"
	TopicGoals    = "goals_updated"
	TopicPosts    = "posts_updated"
	TopicGroups   = "joined_groups_updated"
)

// Event is one record-change notification. A blank UserID marks a broadcast
// relevant to everyone (forum posts).
type Event struct {
	UserID string    `json:"user_id,omitempty"`
	Topic  string    `json:"topic"`
	At     time.Time `json:"at"`
}

// Hub fans events out to registered subscribers.
type Hub struct {
	mu     sync.RWMutex
	nextID int64
	subs   map[int64]chan Event
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int64]chan Event)}
}

// Subscribe registers a subscriber and returns its ID and receive channel.
// The channel is buffered; events are dropped for subscribers that fall
// behind rather than blocking the publisher.
func (h *Hub) Subscribe(buffer int) (int64, <-chan Event) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish delivers an event to all subscribers without blocking.
func (h *Hub) Publish(userID, topic string) {
	ev := Event{UserID: userID, Topic: topic, At: time.Now()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
