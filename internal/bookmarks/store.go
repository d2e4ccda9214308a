package bookmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

// DefaultKey is the storage key the bookmark set lives under.
const DefaultKey = "contestBookmarks"

// KV is the process-external key-value store holding the bookmark blob.
type KV interface {
	// Get returns nil, nil when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Subscribe signals every change of key, from any writer, until ctx ends.
	Subscribe(ctx context.Context, key string) (<-chan struct{}, error)
}

// Store is a persisted set of contest IDs.
//
// Writers replace the whole set (read-modify-write). Readers never cache:
// every query re-reads the key so changes made elsewhere are observed.
type Store struct {
	kv     KV
	key    string
	logger logger.Logger

	// mu serializes toggles issued from this process.
	mu sync.Mutex
}

// NewStore creates a bookmark store under key (DefaultKey when empty).
func NewStore(kv KV, key string, log logger.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key, logger: log}
}

// Key returns the storage key.
func (s *Store) Key() string { return s.key }

// Toggle flips membership of id and returns the resulting state.
func (s *Store) Toggle(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, fmt.Errorf("empty contest id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		// Writing now would clobber entries we could not read.
		return false, fmt.Errorf("failed to read bookmarks: %w", err)
	}

	ids, err := decode(data)
	if err != nil {
		s.logger.Warn("bookmark blob unreadable, starting from empty set",
			logger.String("key", s.key),
			logger.Error(err))
		ids = nil
	}

	next, added := toggle(ids, id)

	encoded, err := json.Marshal(next)
	if err != nil {
		return false, fmt.Errorf("failed to marshal bookmarks: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, encoded); err != nil {
		return false, fmt.Errorf("failed to save bookmarks: %w", err)
	}

	s.logger.Debug("bookmark toggled",
		logger.String("contest_id", id),
		logger.Bool("bookmarked", added))

	return added, nil
}

// IsBookmarked reports membership of id.
func (s *Store) IsBookmarked(ctx context.Context, id string) bool {
	for _, v := range s.read(ctx) {
		if v == id {
			return true
		}
	}
	return false
}

// List returns the current set, sorted.
func (s *Store) List(ctx context.Context) []string {
	ids := s.read(ctx)
	sort.Strings(ids)
	return ids
}

// Set returns the current set as a lookup map.
func (s *Store) Set(ctx context.Context) map[string]bool {
	ids := s.read(ctx)
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// Watch calls fn with a fresh read of the set after every change of the key.
// It returns once the subscription is established; delivery stops with ctx.
func (s *Store) Watch(ctx context.Context, fn func(ids []string)) error {
	changes, err := s.kv.Subscribe(ctx, s.key)
	if err != nil {
		return fmt.Errorf("failed to subscribe to bookmark changes: %w", err)
	}

	go func() {
		for range changes {
			fn(s.List(ctx))
		}
	}()

	return nil
}

// read never fails: transport errors and corrupt blobs read as empty.
func (s *Store) read(ctx context.Context) []string {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to read bookmarks, treating as empty",
			logger.String("key", s.key),
			logger.Error(err))
		return []string{}
	}

	ids, err := decode(data)
	if err != nil {
		s.logger.Warn("bookmark blob unreadable, treating as empty",
			logger.String("key", s.key),
			logger.Error(err))
		return []string{}
	}
	return ids
}

// decode parses the JSON array blob, dropping blanks and duplicates.
func decode(data []byte) ([]string, error) {
	if len(data) == 0 {
		return []string{}, nil
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceCorrupt, err)
	}

	seen := make(map[string]bool, len(raw))
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// toggle returns ids with id removed if present, appended otherwise.
func toggle(ids []string, id string) ([]string, bool) {
	out := make([]string, 0, len(ids)+1)
	found := false
	for _, v := range ids {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out, !found
}
