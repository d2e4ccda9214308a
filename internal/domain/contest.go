package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Platform identifies the contest host.
type Platform string

const (
	PlatformCodeforces Platform = "codeforces"
	PlatformCodechef   Platform = "codechef"
	PlatformLeetcode   Platform = "leetcode"
)

// Platforms returns every known platform in display order.
func Platforms() []Platform {
	return []Platform{PlatformCodeforces, PlatformCodechef, PlatformLeetcode}
}

// ParsePlatform maps a label (case-insensitive) to a Platform.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PlatformCodeforces, PlatformCodechef, PlatformLeetcode:
		return p, true
	}
	return "", false
}

// Contest is one scheduled competitive-programming event.
//
// Contests are handled as values: a batch is fetched as a whole and Status is
// re-derived every time the clock is sampled.
type Contest struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is opaque and stable across refreshes.
	ID string `json:"id" yaml:"id"`

	// Name is the display string.
	// Example: Codeforces Round #924 (Div. 2)
	Name string `json:"name" yaml:"name"`

	// Platform hosting the contest.
	Platform Platform `json:"platform" yaml:"platform"`

	// URL is the canonical link to the contest page.
	URL string `json:"url" yaml:"url"`

	// ─────────────────────────────
	// Schedule
	// ─────────────────────────────

	StartTime time.Time `json:"startTime" yaml:"startTime"`
	EndTime   time.Time `json:"endTime" yaml:"endTime"`

	// DurationMinutes is derived from EndTime-StartTime on ingest.
	DurationMinutes int `json:"duration" yaml:"duration"`

	// ─────────────────────────────
	// Derived & editorial
	// ─────────────────────────────

	// Status is never ground truth, see DeriveStatus.
	Status Status `json:"status" yaml:"-"`

	// SolutionURL points to a solution video, only set for completed contests.
	SolutionURL string `json:"solutionUrl,omitempty" yaml:"solutionUrl,omitempty"`
}

// DurationMinutesBetween returns round((end-start)/1m).
func DurationMinutesBetween(start, end time.Time) int {
	return int(math.Round(float64(end.Sub(start)) / float64(time.Minute)))
}

// Validate checks the invariants a contest must hold before entering a batch.
func (c Contest) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidContest)
	}
	if _, ok := ParsePlatform(string(c.Platform)); !ok {
		return fmt.Errorf("%w: %s: unknown platform %q", ErrInvalidContest, c.ID, c.Platform)
	}
	if c.StartTime.IsZero() || c.EndTime.IsZero() {
		return fmt.Errorf("%w: %s: missing start or end time", ErrInvalidContest, c.ID)
	}
	if !c.EndTime.After(c.StartTime) {
		return fmt.Errorf("%w: %s: end time must be after start time", ErrInvalidContest, c.ID)
	}
	return nil
}
