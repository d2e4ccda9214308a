package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KV stores logical keys as plain Redis strings and announces every write on
// a pub/sub channel so other processes sharing the key can re-read it.
type KV struct {
	client *redis.Client
}

// NewKV creates a Redis-backed key-value store
func NewKV(client *redis.Client) *KV {
	return &KV{
		client: client,
	}
}

// Get returns the stored value, or nil when the key does not exist
func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, DataKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

// Set replaces the value and publishes a change notification.
// Value and notification go out in one pipeline.
func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, DataKey(key), value, 0)
	pipe.Publish(ctx, NotifyChannel(key), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Subscribe forwards change notifications of key until ctx is done.
// It returns after Redis confirmed the subscription.
func (s *KV) Subscribe(ctx context.Context, key string) (<-chan struct{}, error) {
	pubsub := s.client.Subscribe(ctx, NotifyChannel(key))

	// Wait for the subscription confirmation so no write is missed after return.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", key, err)
	}

	out := make(chan struct{}, 1)
	msgs := pubsub.Channel()

	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out, nil
}
