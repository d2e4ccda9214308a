package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

var anchor = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMapperMapContests(t *testing.T) {
	config := Config{Contests: []ContestEntry{
		{
			ID:              "cf-1",
			Name:            "Codeforces Round #924 (Div. 2)",
			Platform:        "Codeforces",
			URL:             "https://codeforces.com/contests",
			Start:           "2025-03-01T14:35:00Z",
			End:             "2025-03-01T16:35:00Z",
			DurationMinutes: 999,
		},
		{
			ID:       "lc-2",
			Name:     "LeetCode Weekly Contest 355",
			Platform: "leetcode",
			StartIn:  "-72h",
			Duration: "1h30m",
			Solution: " https://youtu.be/x ",
		},
	}}

	contests, skipped, err := NewMapper().MapContests(config, anchor)
	if err != nil {
		t.Fatalf("MapContests() error = %v", err)
	}
	if skipped != nil {
		t.Errorf("unexpected skipped entries: %v", skipped)
	}
	if len(contests) != 2 {
		t.Fatalf("MapContests() returned %d contests, want 2", len(contests))
	}

	cf := contests[0]
	if cf.Platform != domain.PlatformCodeforces {
		t.Errorf("platform = %v", cf.Platform)
	}
	if cf.DurationMinutes != 120 {
		t.Errorf("duration should be derived from the schedule, got %d", cf.DurationMinutes)
	}

	lc := contests[1]
	if want := anchor.Add(-72 * time.Hour); !lc.StartTime.Equal(want) {
		t.Errorf("start = %v, want %v", lc.StartTime, want)
	}
	if lc.DurationMinutes != 90 {
		t.Errorf("duration = %d, want 90", lc.DurationMinutes)
	}
	if lc.SolutionURL != "https://youtu.be/x" {
		t.Errorf("solution = %q", lc.SolutionURL)
	}
}

func TestMapperSkipsInvalidEntries(t *testing.T) {
	config := Config{Contests: []ContestEntry{
		{ID: "bad-platform", Platform: "atcoder", StartIn: "1h", Duration: "1h"},
		{ID: "bad-window", Platform: "codechef", Start: "2025-03-01T16:00:00Z", End: "2025-03-01T15:00:00Z"},
		{ID: "bad-duration", Platform: "codechef", Duration: "soon"},
		{ID: "ok", Platform: "codechef", StartIn: "1h", Duration: "2h"},
	}}

	contests, skipped, err := NewMapper().MapContests(config, anchor)
	if err != nil {
		t.Fatalf("MapContests() error = %v", err)
	}
	if len(contests) != 1 || contests[0].ID != "ok" {
		t.Fatalf("expected only the valid entry, got %+v", contests)
	}

	errs := multierr.Errors(skipped)
	if len(errs) != 3 {
		t.Fatalf("expected 3 skipped errors, got %d: %v", len(errs), skipped)
	}
	for _, e := range errs {
		if !errors.Is(e, domain.ErrInvalidContest) {
			t.Errorf("skipped error %v should wrap ErrInvalidContest", e)
		}
	}
}

func TestMapperAllInvalid(t *testing.T) {
	config := Config{Contests: []ContestEntry{{ID: "x", Platform: "nope"}}}
	if _, _, err := NewMapper().MapContests(config, anchor); err == nil {
		t.Error("MapContests() should fail when nothing survives")
	}
}

func TestGenerateContestIDStable(t *testing.T) {
	a := generateContestID(domain.PlatformLeetcode, "Weekly 1", "https://leetcode.com/contest/weekly-1")
	b := generateContestID(domain.PlatformLeetcode, " Weekly 1 ", "https://leetcode.com/contest/weekly-1")
	c := generateContestID(domain.PlatformLeetcode, "Weekly 2", "https://leetcode.com/contest/weekly-2")

	if a != b {
		t.Errorf("IDs should be stable, got %s and %s", a, b)
	}
	if a == c {
		t.Error("different contests should not share an ID")
	}
}

func TestBuiltinSource(t *testing.T) {
	src := NewBuiltinSource(logger.New("error", false), anchor)

	contests, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(contests) != 7 {
		t.Fatalf("builtin batch has %d contests, want 7", len(contests))
	}

	counts := map[domain.Status]int{}
	for _, c := range domain.DeriveAll(contests, anchor) {
		counts[c.Status]++
	}
	if counts[domain.StatusUpcoming] != 3 || counts[domain.StatusOngoing] != 1 || counts[domain.StatusCompleted] != 3 {
		t.Errorf("unexpected status mix %v", counts)
	}
}
