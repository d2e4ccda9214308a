package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
)

// steppingClock advances by step on every read.
type steppingClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCountdownTicksThenCompletesOnce(t *testing.T) {
	clock := &steppingClock{t: epoch, step: time.Second}

	var mu sync.Mutex
	var ticks []domain.Remaining
	var completes atomic.Int32

	c := StartCountdown(epoch.Add(3*time.Second),
		func(r domain.Remaining) {
			mu.Lock()
			ticks = append(ticks, r)
			mu.Unlock()
		},
		func() { completes.Add(1) },
		CountdownOptions{Interval: time.Millisecond, Now: clock.Now},
	)

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not complete")
	}
	c.Stop()

	mu.Lock()
	defer mu.Unlock()

	if len(ticks) != 3 {
		t.Fatalf("got %d ticks, want 3", len(ticks))
	}
	for i, want := range []int64{3, 2, 1} {
		if ticks[i].Seconds != want {
			t.Errorf("tick %d seconds = %d, want %d", i, ticks[i].Seconds, want)
		}
	}
	if got := completes.Load(); got != 1 {
		t.Errorf("onComplete fired %d times, want 1", got)
	}
}

func TestCountdownPastTargetCompletesImmediately(t *testing.T) {
	var ticks, completes atomic.Int32

	c := StartCountdown(epoch.Add(-time.Minute),
		func(domain.Remaining) { ticks.Add(1) },
		func() { completes.Add(1) },
		CountdownOptions{Interval: time.Millisecond, Now: func() time.Time { return epoch }},
	)
	<-c.Done()

	if ticks.Load() != 0 || completes.Load() != 1 {
		t.Errorf("ticks = %d, completes = %d, want 0 and 1", ticks.Load(), completes.Load())
	}
}

func TestCountdownStopSilencesCallbacks(t *testing.T) {
	var ticks, completes atomic.Int32

	c := StartCountdown(epoch.Add(time.Hour),
		func(domain.Remaining) { ticks.Add(1) },
		func() { completes.Add(1) },
		CountdownOptions{Interval: time.Millisecond, Now: func() time.Time { return epoch }},
	)

	waitFor(t, func() bool { return ticks.Load() >= 2 })
	c.Stop()
	c.Stop()

	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)

	if got := ticks.Load(); got != after {
		t.Errorf("ticks continued after Stop: %d -> %d", after, got)
	}
	if completes.Load() != 0 {
		t.Error("onComplete fired for a stopped countdown")
	}
}

func TestCountdownNilCallbacks(t *testing.T) {
	c := StartCountdown(epoch, nil, nil, CountdownOptions{Now: func() time.Time { return epoch }})
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("countdown with nil callbacks did not finish")
	}
}
