package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/contesthub/internal/config"
	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/events"
	"github.com/MrSnakeDoc/contesthub/internal/index"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
	"github.com/MrSnakeDoc/contesthub/internal/repository"
	"github.com/MrSnakeDoc/contesthub/internal/scheduler"
	"github.com/MrSnakeDoc/contesthub/internal/sources/seed"
)

func TestRunReleasesResourcesWhenFirstLoadFails(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	log := logger.New("error", false)

	missing := filepath.Join(t.TempDir(), "contests.yaml")
	repo := repository.New(seed.NewFileSource(missing, log, time.Now()), index.NewMemoryIndex(), log, repository.Options{})
	hub := events.NewHub(log, 0)

	a := &App{
		cfg: &config.Config{
			ListenPort:      ":0",
			ShutdownTimeout: time.Second,
			ReloadInterval:  time.Hour,
			TickInterval:    time.Second,
		},
		logger:      log,
		redisClient: client,
		hub:         hub,
		reloader:    scheduler.NewContestReloader(repo, log, time.Hour, nil),
	}

	err := a.Run()
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("Run() error = %v, want ErrFetchFailed", err)
	}

	if pingErr := client.Ping(context.Background()).Err(); !errors.Is(pingErr, goredis.ErrClosed) {
		t.Errorf("redis client still usable after failed start: %v", pingErr)
	}

	_, ch := hub.Subscribe()
	if _, open := <-ch; open {
		t.Error("hub should be closed after failed start")
	}

	// A second release is harmless.
	if err := a.release(); err != nil {
		t.Errorf("release() twice error = %v", err)
	}
}
