package scheduler

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/contesthub/internal/events"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

// BookmarkSource notifies about changes of the persisted bookmark set.
type BookmarkSource interface {
	Watch(ctx context.Context, fn func(ids []string)) error
}

// BookmarkWatcher forwards bookmark set changes, from this process or any
// other writer of the same key, to live clients.
type BookmarkWatcher struct {
	store  BookmarkSource
	hub    Publisher
	logger logger.Logger
	cancel context.CancelFunc
}

// NewBookmarkWatcher creates a new bookmark watcher
func NewBookmarkWatcher(store BookmarkSource, hub Publisher, log logger.Logger) *BookmarkWatcher {
	return &BookmarkWatcher{
		store:  store,
		hub:    hub,
		logger: log,
		cancel: func() {},
	}
}

// Start subscribes to bookmark changes until Stop or ctx end
func (bw *BookmarkWatcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	err := bw.store.Watch(ctx, func(ids []string) {
		n := bw.hub.Publish(events.Event{
			Type:    events.TypeBookmarks,
			Payload: events.BookmarksPayload{IDs: ids},
		})
		bw.logger.Debug("bookmark change forwarded",
			logger.Int("bookmarks", len(ids)),
			logger.Int("subscribers", n))
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to watch bookmarks: %w", err)
	}

	bw.cancel = cancel
	return nil
}

// Stop ends the subscription
func (bw *BookmarkWatcher) Stop() {
	bw.cancel()
}
