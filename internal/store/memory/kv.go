package memory

import (
	"context"
	"sync"
)

// KV is an in-process key-value store with change notification.
// It backs the bookmark store when Redis is not configured, and in tests.
type KV struct {
	mu          sync.RWMutex
	data        map[string][]byte
	subscribers map[string]map[chan struct{}]struct{}
}

// NewKV creates an empty store
func NewKV() *KV {
	return &KV{
		data:        make(map[string][]byte),
		subscribers: make(map[string]map[chan struct{}]struct{}),
	}
}

// Get returns a copy of the value, or nil when key is absent
func (kv *KV) Get(ctx context.Context, key string) ([]byte, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	v, ok := kv.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores value and notifies subscribers of key
func (kv *KV) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	kv.mu.Lock()
	defer kv.mu.Unlock()

	kv.data[key] = stored
	for ch := range kv.subscribers[key] {
		// Buffered by one: pending notifications coalesce.
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel signalled on every Set of key.
// The channel is closed once ctx is done.
func (kv *KV) Subscribe(ctx context.Context, key string) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	kv.mu.Lock()
	if kv.subscribers[key] == nil {
		kv.subscribers[key] = make(map[chan struct{}]struct{})
	}
	kv.subscribers[key][ch] = struct{}{}
	kv.mu.Unlock()

	go func() {
		<-ctx.Done()
		kv.mu.Lock()
		delete(kv.subscribers[key], ch)
		kv.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}
