package repository

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
)

// FetchFunc returns a contest batch, typically Repository.FetchAll.
type FetchFunc func(ctx context.Context) ([]domain.Contest, error)

// Latest guards against stale batches when fetches overlap. Every Refresh
// takes a sequence number when issued; a result is adopted only if no
// request issued later has already completed.
type Latest struct {
	fetch FetchFunc

	mu      sync.Mutex
	issued  uint64
	applied uint64
	current []domain.Contest
}

// NewLatest wraps fetch with supersession tracking.
func NewLatest(fetch FetchFunc) *Latest {
	return &Latest{fetch: fetch, current: []domain.Contest{}}
}

// Refresh runs one fetch. adopted is false when the result was discarded
// because a newer request completed first. On error the last-known batch is
// kept and returned alongside the error.
func (l *Latest) Refresh(ctx context.Context) (contests []domain.Contest, adopted bool, err error) {
	l.mu.Lock()
	l.issued++
	seq := l.issued
	l.mu.Unlock()

	batch, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if seq < l.applied {
		return l.current, false, nil
	}
	l.applied = seq

	if err != nil {
		return l.current, true, err
	}

	l.current = batch
	return batch, true, nil
}

// Current returns the last adopted batch.
func (l *Latest) Current() []domain.Contest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}
