package scheduler

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/bookmarks"
	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/events"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
	"github.com/MrSnakeDoc/contesthub/internal/repository"
	"github.com/MrSnakeDoc/contesthub/internal/store/memory"
)

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func watchedBatch() []domain.Contest {
	return []domain.Contest{
		{ID: "cf-1", Name: "Round 1", Platform: domain.PlatformCodeforces,
			StartTime: epoch.Add(time.Minute), EndTime: epoch.Add(time.Hour)},
		{ID: "lc-1", Name: "Weekly 1", Platform: domain.PlatformLeetcode,
			StartTime: epoch.Add(-time.Hour), EndTime: epoch.Add(30 * time.Minute)},
	}
}

func TestStatusWatcher_PublishesOncePerCrossing(t *testing.T) {
	clock := &manualClock{t: epoch}
	var fail error
	latest := repository.NewLatest(func(ctx context.Context) ([]domain.Contest, error) {
		if fail != nil {
			return []domain.Contest{}, fail
		}
		return domain.DeriveAll(watchedBatch(), clock.Now()), nil
	})

	hub := events.NewHub(logger.New("error", false), 0)
	_, ch := hub.Subscribe()
	sw := NewStatusWatcher(latest, hub, logger.New("error", false), time.Hour)

	if changes := sw.Tick(context.Background()); len(changes) != 0 {
		t.Fatalf("first sample should only record, got %v", changes)
	}

	clock.Set(epoch.Add(time.Minute))
	changes := sw.Tick(context.Background())
	want := []events.StatusChange{{
		ContestID: "cf-1", Name: "Round 1",
		From: domain.StatusUpcoming, To: domain.StatusOngoing,
	}}
	if !reflect.DeepEqual(changes, want) {
		t.Fatalf("Tick() = %+v, want %+v", changes, want)
	}

	e := <-ch
	if e.Type != events.TypeStatus || !reflect.DeepEqual(e.Payload, want[0]) {
		t.Errorf("published %+v", e)
	}

	// Same instant again: nothing new.
	if changes := sw.Tick(context.Background()); len(changes) != 0 {
		t.Errorf("repeated sample produced %v", changes)
	}

	// A failing sample publishes nothing and keeps the recorded state.
	fail = errors.New("upstream down")
	clock.Set(epoch.Add(2 * time.Hour))
	if changes := sw.Tick(context.Background()); changes != nil {
		t.Errorf("failed sample produced %v", changes)
	}

	fail = nil
	changes = sw.Tick(context.Background())
	if len(changes) != 2 {
		t.Fatalf("expected both contests to complete, got %+v", changes)
	}
	for _, c := range changes {
		if c.To != domain.StatusCompleted {
			t.Errorf("%s moved to %s", c.ContestID, c.To)
		}
	}
	if len(ch) != 2 {
		t.Errorf("hub queue holds %d events, want 2", len(ch))
	}
}

func TestStatusWatcher_StartStop(t *testing.T) {
	latest := repository.NewLatest(func(ctx context.Context) ([]domain.Contest, error) {
		return domain.DeriveAll(watchedBatch(), epoch), nil
	})
	hub := events.NewHub(logger.New("error", false), 0)
	sw := NewStatusWatcher(latest, hub, logger.New("error", false), time.Millisecond)

	sw.Start(context.Background())
	sw.Stop()
	sw.Stop()
}

func TestStatusWatcher_SamplesAtBoundaries(t *testing.T) {
	base := time.Now()
	batch := []domain.Contest{{
		ID: "cf-1", Name: "Round 1", Platform: domain.PlatformCodeforces,
		StartTime: base.Add(60 * time.Millisecond), EndTime: base.Add(140 * time.Millisecond),
	}}
	latest := repository.NewLatest(func(ctx context.Context) ([]domain.Contest, error) {
		return domain.DeriveAll(batch, time.Now()), nil
	})

	log := logger.New("error", false)
	hub := events.NewHub(log, 0)
	_, ch := hub.Subscribe()

	// The fallback interval is far away: only the countdowns can cause samples.
	sw := NewStatusWatcher(latest, hub, log, time.Hour).
		WithCountdown(CountdownOptions{Interval: 5 * time.Millisecond})
	sw.Start(context.Background())
	defer sw.Stop()

	want := []domain.Status{domain.StatusOngoing, domain.StatusCompleted}
	for _, to := range want {
		select {
		case e := <-ch:
			change, ok := e.Payload.(events.StatusChange)
			if !ok || change.ContestID != "cf-1" || change.To != to {
				t.Fatalf("event = %+v, want cf-1 to %s", e.Payload, to)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("no status event toward %s", to)
		}
	}
}

func TestStatusWatcher_NoBoundaryLeft(t *testing.T) {
	clock := &manualClock{t: epoch.Add(48 * time.Hour)}
	latest := repository.NewLatest(func(ctx context.Context) ([]domain.Contest, error) {
		return domain.DeriveAll(watchedBatch(), clock.Now()), nil
	})
	sw := NewStatusWatcher(latest, events.NewHub(logger.New("error", false), 0), logger.New("error", false), time.Hour).
		WithCountdown(CountdownOptions{Interval: time.Millisecond, Now: clock.Now})

	if _, ok := domain.NextTransition(watchedBatch(), clock.Now()); ok {
		t.Fatal("fixture should have no boundary left")
	}
	sw.Start(context.Background())
	sw.Stop()
}

func TestBookmarkWatcher_ForwardsChanges(t *testing.T) {
	log := logger.New("error", false)
	store := bookmarks.NewStore(memory.NewKV(), "", log)
	hub := events.NewHub(log, 0)
	_, ch := hub.Subscribe()

	bw := NewBookmarkWatcher(store, hub, log)
	if err := bw.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer bw.Stop()

	if _, err := store.Toggle(context.Background(), "cf-1"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	select {
	case e := <-ch:
		if e.Type != events.TypeBookmarks {
			t.Fatalf("event type = %s", e.Type)
		}
		payload, ok := e.Payload.(events.BookmarksPayload)
		if !ok || !reflect.DeepEqual(payload.IDs, []string{"cf-1"}) {
			t.Errorf("payload = %+v", e.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no bookmarks event after toggle")
	}
}
