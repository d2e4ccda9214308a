package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/index"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

// Source produces a raw contest batch (seed file, built-in mock, remote API).
type Source interface {
	Name() string
	Load(ctx context.Context) ([]domain.Contest, error)
}

// Options tune a Repository. Zero values are valid.
type Options struct {
	// Now samples the clock, defaults to time.Now.
	Now func() time.Time
	// Latency simulates a slow upstream on every FetchAll.
	Latency time.Duration
}

// Repository owns the canonical contest batch and derives statuses on read.
type Repository struct {
	source  Source
	index   *index.MemoryIndex
	logger  logger.Logger
	now     func() time.Time
	latency time.Duration
}

// New creates a repository over idx, refilled from source on Reload.
func New(source Source, idx *index.MemoryIndex, log logger.Logger, opts Options) *Repository {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Repository{
		source:  source,
		index:   idx,
		logger:  log,
		now:     opts.Now,
		latency: opts.Latency,
	}
}

// Now exposes the repository clock so callers derive views consistently.
func (r *Repository) Now() time.Time { return r.now() }

// Reload pulls a fresh batch from the source and swaps it into the index.
// On failure the previous batch stays in place.
func (r *Repository) Reload(ctx context.Context) (int, error) {
	contests, err := r.source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: source %s: %v", domain.ErrFetchFailed, r.source.Name(), err)
	}

	r.index.ReplaceContests(contests)
	r.logger.Info("contest batch replaced",
		logger.String("source", r.source.Name()),
		logger.Int("count", len(contests)))

	return len(contests), nil
}

// FetchAll returns the batch in source order with statuses derived at call
// time. On failure it returns an empty slice and an error wrapping
// domain.ErrFetchFailed.
func (r *Repository) FetchAll(ctx context.Context) ([]domain.Contest, error) {
	if r.latency > 0 {
		timer := time.NewTimer(r.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return []domain.Contest{}, fmt.Errorf("%w: %v", domain.ErrFetchFailed, ctx.Err())
		case <-timer.C:
		}
	}

	if r.index.GetLastReload().IsZero() {
		return []domain.Contest{}, fmt.Errorf("%w: no contest batch loaded yet", domain.ErrFetchFailed)
	}

	return domain.DeriveAll(r.index.Snapshot(), r.now()), nil
}

// Get returns a single contest with its status derived now.
func (r *Repository) Get(ctx context.Context, id string) (domain.Contest, error) {
	c, ok := r.index.GetContest(id)
	if !ok {
		return domain.Contest{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return c.At(r.now()), nil
}

// UpdateSolution attaches a solution link to a completed contest.
// Resubmitting the current link is a no-op success.
func (r *Repository) UpdateSolution(ctx context.Context, id, solutionURL string) error {
	solutionURL = strings.TrimSpace(solutionURL)
	if err := validateSolutionURL(solutionURL); err != nil {
		return err
	}

	c, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	if c.Status != domain.StatusCompleted {
		return fmt.Errorf("%w: %s is %s", domain.ErrNotCompleted, id, c.Status)
	}

	if c.SolutionURL == solutionURL {
		r.logger.Debug("solution unchanged",
			logger.String("contest_id", id))
		return nil
	}

	// The batch may have been replaced between Get and here.
	if !r.index.SetSolution(id, solutionURL) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	r.logger.Info("solution updated",
		logger.String("contest_id", id),
		logger.String("url", solutionURL))

	return nil
}

func validateSolutionURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: empty solution url", domain.ErrInvalidSolution)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q is not an absolute http(s) url", domain.ErrInvalidSolution, raw)
	}
	return nil
}
