package bookmarks

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/logger"
	"github.com/MrSnakeDoc/contesthub/internal/store/memory"
)

type failingKV struct {
	*memory.KV
	getErr error
	sets   int
}

func (f *failingKV) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.KV.Get(ctx, key)
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	f.sets++
	return f.KV.Set(ctx, key, value)
}

func newTestStore(kv KV) *Store {
	return NewStore(kv, "", logger.New("error", false))
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(memory.NewKV())

	on, err := s.Toggle(ctx, "cf-1")
	if err != nil || !on {
		t.Fatalf("first Toggle() = %v, %v, want true, nil", on, err)
	}
	if !s.IsBookmarked(ctx, "cf-1") {
		t.Error("cf-1 should be bookmarked")
	}

	off, err := s.Toggle(ctx, "cf-1")
	if err != nil || off {
		t.Fatalf("second Toggle() = %v, %v, want false, nil", off, err)
	}
	if s.IsBookmarked(ctx, "cf-1") {
		t.Error("cf-1 should no longer be bookmarked")
	}
	if got := s.List(ctx); len(got) != 0 {
		t.Errorf("List() = %v, want empty", got)
	}
}

func TestListSortedAndPersisted(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV()
	s := newTestStore(kv)

	for _, id := range []string{"lc-1", "cc-2", "cf-1"} {
		if _, err := s.Toggle(ctx, id); err != nil {
			t.Fatalf("Toggle(%s) error = %v", id, err)
		}
	}

	want := []string{"cc-2", "cf-1", "lc-1"}
	if got := s.List(ctx); !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	// A second store over the same key sees the same set.
	other := newTestStore(kv)
	if got := other.List(ctx); !reflect.DeepEqual(got, want) {
		t.Errorf("second store List() = %v, want %v", got, want)
	}

	set := other.Set(ctx)
	if len(set) != 3 || !set["cf-1"] {
		t.Errorf("Set() = %v", set)
	}
}

func TestReadTolerance(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
		want []string
	}{
		{"missing key", nil, []string{}},
		{"empty array", []byte(`[]`), []string{}},
		{"corrupt blob", []byte(`{not json`), []string{}},
		{"wrong shape", []byte(`{"ids":["a"]}`), []string{}},
		{"duplicates and blanks", []byte(`["b","a","","b"]`), []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := memory.NewKV()
			if tt.blob != nil {
				_ = kv.Set(ctx, DefaultKey, tt.blob)
			}
			s := newTestStore(kv)

			if got := s.List(ctx); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("List() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToggleRecoversFromCorruptBlob(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV()
	_ = kv.Set(ctx, DefaultKey, []byte(`garbage`))
	s := newTestStore(kv)

	on, err := s.Toggle(ctx, "cf-1")
	if err != nil || !on {
		t.Fatalf("Toggle() = %v, %v, want true, nil", on, err)
	}

	raw, _ := kv.Get(ctx, DefaultKey)
	if string(raw) != `["cf-1"]` {
		t.Errorf("stored blob = %s, want [\"cf-1\"]", raw)
	}
}

func TestToggleRejectsEmptyID(t *testing.T) {
	s := newTestStore(memory.NewKV())
	if _, err := s.Toggle(context.Background(), "  "); err == nil {
		t.Error("Toggle() should reject a blank id")
	}
}

func TestToggleDoesNotWriteAfterReadFailure(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{KV: memory.NewKV(), getErr: errors.New("connection refused")}
	s := newTestStore(kv)

	if _, err := s.Toggle(ctx, "cf-1"); err == nil {
		t.Fatal("Toggle() should fail when the set cannot be read")
	}
	if kv.sets != 0 {
		t.Errorf("Toggle() wrote %d times after a failed read", kv.sets)
	}
	if got := s.List(ctx); len(got) != 0 {
		t.Errorf("List() = %v, want empty on read failure", got)
	}
}

func TestWatchObservesExternalWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv := memory.NewKV()
	s := newTestStore(kv)

	got := make(chan []string, 4)
	if err := s.Watch(ctx, func(ids []string) { got <- ids }); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// Another writer replaces the blob directly.
	_ = kv.Set(ctx, DefaultKey, []byte(`["lc-2","cf-1"]`))

	select {
	case ids := <-got:
		if want := []string{"cf-1", "lc-2"}; !reflect.DeepEqual(ids, want) {
			t.Errorf("Watch delivered %v, want %v", ids, want)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch callback was not invoked")
	}
}
