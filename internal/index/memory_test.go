package index

import (
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
)

func contest(id string) domain.Contest {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.Contest{
		ID:        id,
		Name:      id,
		Platform:  domain.PlatformCodeforces,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
}

func TestNewMemoryIndex(t *testing.T) {
	idx := NewMemoryIndex()
	if idx == nil {
		t.Fatal("NewMemoryIndex() returned nil")
	}
	if n := len(idx.Snapshot()); n != 0 {
		t.Errorf("new index should be empty, got %d", n)
	}
	if !idx.GetLastReload().IsZero() {
		t.Error("new index should have zero last reload")
	}
}

func TestReplaceContestsKeepsOrder(t *testing.T) {
	idx := NewMemoryIndex()
	idx.ReplaceContests([]domain.Contest{contest("c"), contest("a"), contest("b")})

	got := idx.Snapshot()
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("Snapshot() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("Snapshot()[%d] = %s, want %s", i, got[i].ID, want[i])
		}
	}
	if idx.GetLastReload().IsZero() {
		t.Error("ReplaceContests() should set last reload")
	}
}

func TestReplaceContestsDropsDuplicates(t *testing.T) {
	idx := NewMemoryIndex()
	first := contest("a")
	second := contest("a")
	second.Name = "shadowed"
	idx.ReplaceContests([]domain.Contest{first, second})

	if idx.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", idx.Count())
	}
	got, _ := idx.GetContest("a")
	if got.Name != "a" {
		t.Errorf("first occurrence should win, got %q", got.Name)
	}
}

func TestSetSolution(t *testing.T) {
	idx := NewMemoryIndex()
	idx.ReplaceContests([]domain.Contest{contest("a")})

	if idx.SetSolution("missing", "https://youtu.be/x") {
		t.Error("SetSolution() on unknown ID should report false")
	}
	if !idx.SetSolution("a", "https://youtu.be/x") {
		t.Fatal("SetSolution() on known ID should report true")
	}

	got, ok := idx.GetContest("a")
	if !ok || got.SolutionURL != "https://youtu.be/x" {
		t.Errorf("GetContest() = %+v, %v", got, ok)
	}
}

func TestSolutionSurvivesReload(t *testing.T) {
	idx := NewMemoryIndex()
	seeded := contest("a")
	seeded.SolutionURL = "https://seed"
	idx.ReplaceContests([]domain.Contest{seeded})
	idx.SetSolution("a", "https://runtime")

	idx.ReplaceContests([]domain.Contest{seeded})

	if got := idx.Snapshot()[0].SolutionURL; got != "https://runtime" {
		t.Errorf("runtime solution should survive reload, got %q", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	idx := NewMemoryIndex()
	idx.ReplaceContests([]domain.Contest{contest("a")})

	snap := idx.Snapshot()
	snap[0].Name = "mutated"

	if got, _ := idx.GetContest("a"); got.Name != "a" {
		t.Errorf("Snapshot() leaked internal state, name = %q", got.Name)
	}
}

func TestConcurrentAccess(t *testing.T) {
	idx := NewMemoryIndex()
	idx.ReplaceContests([]domain.Contest{contest("a"), contest("b")})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = idx.Snapshot()
		}()
		go func() {
			defer wg.Done()
			idx.SetSolution("a", "https://x")
		}()
		go func() {
			defer wg.Done()
			idx.ReplaceContests([]domain.Contest{contest("a"), contest("b")})
		}()
	}
	wg.Wait()

	if idx.Count() != 2 {
		t.Errorf("Count() = %d, want 2", idx.Count())
	}
}
