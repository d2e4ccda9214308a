package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

const (
	// TypeBookmarks carries the full bookmark set after it changed
	TypeBookmarks = "bookmarks"
	// TypeStatus announces a contest crossing a status boundary
	TypeStatus = "status"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 16

// Event is one message pushed to live clients.
type Event struct {
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload"`
}

// BookmarksPayload is the payload of TypeBookmarks events.
type BookmarksPayload struct {
	IDs []string `json:"ids"`
}

// StatusChange is the payload of TypeStatus events.
type StatusChange struct {
	ContestID string        `json:"contestId"`
	Name      string        `json:"name"`
	From      domain.Status `json:"from"`
	To        domain.Status `json:"to"`
}

// Hub fans events out to subscribers. A subscriber whose queue is full
// misses the event rather than blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]chan Event
	buffer int
	closed bool
	logger logger.Logger
	now    func() time.Time
}

// NewHub creates a hub. buffer <= 0 selects DefaultBuffer.
func NewHub(log logger.Logger, buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[string]chan Event),
		buffer: buffer,
		logger: log,
		now:    time.Now,
	}
}

// Subscribe registers a new subscriber and returns its id and queue.
// The queue is closed by Unsubscribe or Close.
func (h *Hub) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		return id, ch
	}
	h.subs[id] = ch

	h.logger.Debug("event subscriber added",
		logger.String("subscriber_id", id),
		logger.Int("subscribers", len(h.subs)))

	return id, ch
}

// Unsubscribe removes a subscriber. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(ch)

	h.logger.Debug("event subscriber removed",
		logger.String("subscriber_id", id),
		logger.Int("subscribers", len(h.subs)))
}

// Publish delivers e to every subscriber and returns how many received it.
func (h *Hub) Publish(e Event) int {
	if e.At.IsZero() {
		e.At = h.now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, ch := range h.subs {
		select {
		case ch <- e:
			delivered++
		default:
			h.logger.Warn("event dropped for slow subscriber",
				logger.String("subscriber_id", id),
				logger.String("type", e.Type))
		}
	}
	return delivered
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber. Later subscribers get a closed queue.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
