package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/events"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

// Publisher receives events for live clients.
type Publisher interface {
	Publish(e events.Event) int
}

// Refresher returns the newest contest batch, discarding superseded results.
type Refresher interface {
	Refresh(ctx context.Context) ([]domain.Contest, bool, error)
}

// StatusWatcher publishes one status event for every contest whose derived
// status changed since the last sample.
//
// Samples are taken when a countdown to the next start or end boundary of the
// batch completes, and on a coarse interval as a fallback for batches that
// change under it.
type StatusWatcher struct {
	source    Refresher
	hub       Publisher
	logger    logger.Logger
	interval  time.Duration
	countdown CountdownOptions
	wake      chan struct{}
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}

	mu   sync.Mutex
	last map[string]domain.Status
}

// NewStatusWatcher creates a watcher sampling source every interval
func NewStatusWatcher(source Refresher, hub Publisher, log logger.Logger, interval time.Duration) *StatusWatcher {
	return &StatusWatcher{
		source:   source,
		hub:      hub,
		logger:   log,
		interval: interval,
		wake:     make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// WithCountdown sets the options of the boundary countdowns. Call before Start.
func (sw *StatusWatcher) WithCountdown(opts CountdownOptions) *StatusWatcher {
	sw.countdown = opts
	return sw
}

func (sw *StatusWatcher) now() time.Time {
	if sw.countdown.Now != nil {
		return sw.countdown.Now()
	}
	return time.Now()
}

// Start takes a first sample and keeps sampling in the background
func (sw *StatusWatcher) Start(ctx context.Context) {
	contests, _, ok := sw.sample(ctx)

	ticker := time.NewTicker(sw.interval)
	go func() {
		defer close(sw.done)
		defer ticker.Stop()

		var (
			cd     *Countdown
			target time.Time
		)
		defer func() {
			if cd != nil {
				cd.Stop()
			}
		}()

		// arm points the countdown at the next boundary of the batch. A running
		// countdown to the same instant is left alone.
		arm := func(batch []domain.Contest) {
			next, found := domain.NextTransition(batch, sw.now())
			if cd != nil {
				select {
				case <-cd.Done():
				default:
					if found && next.Equal(target) {
						return
					}
				}
				cd.Stop()
				cd = nil
			}
			if !found {
				return
			}
			target = next
			cd = StartCountdown(next, nil, sw.signal, sw.countdown)
			sw.logger.Debug("next status boundary armed",
				logger.Time("at", next))
		}

		if ok {
			arm(contests)
		}

		for {
			select {
			case <-ticker.C:
			case <-sw.wake:
			case <-sw.stopCh:
				return
			case <-ctx.Done():
				return
			}
			if batch, _, ok := sw.sample(ctx); ok {
				arm(batch)
			}
		}
	}()
}

// signal runs on the countdown goroutine, so it only nudges the loop.
func (sw *StatusWatcher) signal() {
	select {
	case sw.wake <- struct{}{}:
	default:
	}
}

// Stop stops the watcher and waits for the loop to exit
func (sw *StatusWatcher) Stop() {
	sw.stopOnce.Do(func() { close(sw.stopCh) })
	<-sw.done
}

// Tick samples once and returns the transitions it published.
// Contests seen for the first time are recorded without an event.
func (sw *StatusWatcher) Tick(ctx context.Context) []events.StatusChange {
	_, changes, _ := sw.sample(ctx)
	return changes
}

// sample reports false when the result was an error or superseded.
func (sw *StatusWatcher) sample(ctx context.Context) ([]domain.Contest, []events.StatusChange, bool) {
	contests, adopted, err := sw.source.Refresh(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			sw.logger.Warn("status sample failed, keeping last known batch",
				logger.Error(err))
		}
		return nil, nil, false
	}
	if !adopted {
		sw.logger.Debug("status sample superseded by a newer one")
		return nil, nil, false
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	next := make(map[string]domain.Status, len(contests))
	var changes []events.StatusChange

	for _, c := range contests {
		next[c.ID] = c.Status
		prev, seen := sw.last[c.ID]
		if !seen || prev == c.Status {
			continue
		}
		changes = append(changes, events.StatusChange{
			ContestID: c.ID,
			Name:      c.Name,
			From:      prev,
			To:        c.Status,
		})
	}
	sw.last = next

	for _, change := range changes {
		sw.hub.Publish(events.Event{Type: events.TypeStatus, Payload: change})
		sw.logger.Info("contest status changed",
			logger.String("contest_id", change.ContestID),
			logger.String("from", string(change.From)),
			logger.String("to", string(change.To)))
	}

	return contests, changes, true
}
