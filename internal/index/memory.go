package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
)

// MemoryIndex holds the current contest batch in source order plus the
// solution links attached by an administrator.
// Solutions live beside the batch so a reload does not drop them.
type MemoryIndex struct {
	mu         sync.RWMutex
	contests   []domain.Contest  // batch in source order
	positions  map[string]int    // ID -> position in contests
	solutions  map[string]string // ID -> solution URL
	lastReload time.Time         // Timestamp of last batch replacement
}

// NewMemoryIndex creates an empty index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		positions: make(map[string]int),
		solutions: make(map[string]string),
	}
}

// ReplaceContests swaps the whole batch. Later duplicates of an ID are dropped.
func (idx *MemoryIndex) ReplaceContests(contests []domain.Contest) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	batch := make([]domain.Contest, 0, len(contests))
	positions := make(map[string]int, len(contests))
	for _, c := range contests {
		if _, dup := positions[c.ID]; dup {
			continue
		}
		positions[c.ID] = len(batch)
		batch = append(batch, c)

		// Seeded solutions win only when nothing was attached at runtime.
		if c.SolutionURL != "" {
			if _, ok := idx.solutions[c.ID]; !ok {
				idx.solutions[c.ID] = c.SolutionURL
			}
		}
	}

	idx.contests = batch
	idx.positions = positions
	idx.lastReload = time.Now()
}

// Snapshot returns a copy of the batch with solution links applied.
func (idx *MemoryIndex) Snapshot() []domain.Contest {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]domain.Contest, len(idx.contests))
	for i, c := range idx.contests {
		if url, ok := idx.solutions[c.ID]; ok {
			c.SolutionURL = url
		}
		out[i] = c
	}
	return out
}

// GetContest retrieves a contest by ID
func (idx *MemoryIndex) GetContest(id string) (domain.Contest, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	pos, ok := idx.positions[id]
	if !ok {
		return domain.Contest{}, false
	}
	c := idx.contests[pos]
	if url, ok := idx.solutions[id]; ok {
		c.SolutionURL = url
	}
	return c, true
}

// SetSolution attaches url to the contest. It reports false when the ID is
// not part of the current batch, in which case nothing is recorded.
func (idx *MemoryIndex) SetSolution(id, url string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.positions[id]; !ok {
		return false
	}
	idx.solutions[id] = url
	return true
}

// Count returns the number of contests in the batch
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.contests)
}

// GetLastReload returns the timestamp of the last batch replacement
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
