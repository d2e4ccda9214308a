package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

// Reloader refills the contest batch from its source.
type Reloader interface {
	Reload(ctx context.Context) (int, error)
}

// ContestReloader reloads the contest batch on an interval and on demand
type ContestReloader struct {
	repo          Reloader
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger <-chan struct{}
	done          chan struct{}
}

// NewContestReloader creates a new contest reloader.
// manualTrigger may be nil when only periodic reloads are wanted.
func NewContestReloader(
	repo Reloader,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *ContestReloader {
	return &ContestReloader{
		repo:          repo,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		done:          make(chan struct{}),
	}
}

// Start loads the batch once, then keeps reloading in the background.
// A failing first load is returned so the caller can decide to abort.
func (cr *ContestReloader) Start(ctx context.Context) error {
	if err := cr.reload(ctx, "startup"); err != nil {
		close(cr.done)
		return fmt.Errorf("initial contest reload failed: %w", err)
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer close(cr.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cr.reload(ctx, "interval"); err != nil {
					cr.logger.Error("failed to reload contests",
						logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual contest reload triggered")
				if err := cr.reload(ctx, "manual"); err != nil {
					cr.logger.Error("failed to reload contests",
						logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader and waits for the loop to exit. Safe to call twice.
func (cr *ContestReloader) Stop() {
	cr.stopOnce.Do(func() { close(cr.stopCh) })
	<-cr.done
}

func (cr *ContestReloader) reload(ctx context.Context, reason string) error {
	start := time.Now()
	n, err := cr.repo.Reload(ctx)
	if err != nil {
		return err
	}

	cr.logger.Debug("contest reload finished",
		logger.String("reason", reason),
		logger.Int("count", n),
		logger.Duration("took", time.Since(start)))
	return nil
}
