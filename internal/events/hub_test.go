package events

import (
	"testing"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

func TestPublishReachesSubscribers(t *testing.T) {
	h := NewHub(logger.New("error", false), 0)

	idA, a := h.Subscribe()
	_, b := h.Subscribe()
	if h.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", h.Count())
	}

	n := h.Publish(Event{Type: TypeBookmarks, Payload: BookmarksPayload{IDs: []string{"cf-1"}}})
	if n != 2 {
		t.Errorf("Publish() delivered to %d, want 2", n)
	}

	for _, ch := range []<-chan Event{a, b} {
		e := <-ch
		if e.Type != TypeBookmarks {
			t.Errorf("event type = %s", e.Type)
		}
		if e.At.IsZero() {
			t.Error("Publish() should stamp the event time")
		}
	}

	h.Unsubscribe(idA)
	if _, ok := <-a; ok {
		t.Error("unsubscribed queue should be closed")
	}
	if n := h.Publish(Event{Type: TypeStatus}); n != 1 {
		t.Errorf("Publish() after unsubscribe delivered to %d, want 1", n)
	}
}

func TestPublishDropsForSlowSubscriber(t *testing.T) {
	h := NewHub(logger.New("error", false), 1)
	_, ch := h.Subscribe()

	if n := h.Publish(Event{Type: TypeStatus}); n != 1 {
		t.Fatalf("first Publish() delivered to %d", n)
	}

	done := make(chan int)
	go func() { done <- h.Publish(Event{Type: TypeStatus}) }()

	select {
	case n := <-done:
		if n != 0 {
			t.Errorf("full queue should not receive, delivered = %d", n)
		}
	case <-time.After(time.Second):
		t.Fatal("Publish() blocked on a full subscriber")
	}

	if len(ch) != 1 {
		t.Errorf("queue length = %d, want 1", len(ch))
	}
}

func TestUnsubscribeUnknownAndTwice(t *testing.T) {
	h := NewHub(logger.New("error", false), 0)
	id, _ := h.Subscribe()

	h.Unsubscribe("nope")
	h.Unsubscribe(id)
	h.Unsubscribe(id)

	if h.Count() != 0 {
		t.Errorf("Count() = %d, want 0", h.Count())
	}
}

func TestClose(t *testing.T) {
	h := NewHub(logger.New("error", false), 0)
	_, ch := h.Subscribe()

	h.Close()
	h.Close()

	if _, ok := <-ch; ok {
		t.Error("Close() should close subscriber queues")
	}

	_, late := h.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribing to a closed hub should yield a closed queue")
	}
	if n := h.Publish(Event{Type: TypeStatus}); n != 0 {
		t.Errorf("Publish() on closed hub delivered to %d", n)
	}
}
