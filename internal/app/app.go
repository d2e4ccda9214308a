package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	"github.com/MrSnakeDoc/contesthub/internal/bookmarks"
	"github.com/MrSnakeDoc/contesthub/internal/config"
	"github.com/MrSnakeDoc/contesthub/internal/events"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/index"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
	"github.com/MrSnakeDoc/contesthub/internal/redis"
	"github.com/MrSnakeDoc/contesthub/internal/repository"
	"github.com/MrSnakeDoc/contesthub/internal/scheduler"
	"github.com/MrSnakeDoc/contesthub/internal/sources/seed"
	"github.com/MrSnakeDoc/contesthub/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/contesthub/internal/store/redis"
	"github.com/MrSnakeDoc/contesthub/internal/version"
)

type App struct {
	cfg             *config.Config
	logger          logger.Logger
	server          *httpserver.Server
	redisClient     *goredis.Client
	hub             *events.Hub
	reloader        *scheduler.ContestReloader
	statusWatcher   *scheduler.StatusWatcher
	bookmarkWatcher *scheduler.BookmarkWatcher
}

// statusFallbackInterval bounds how long a batch change can go unnoticed
// between boundary countdowns.
const statusFallbackInterval = 30 * time.Second

func New() *App {
	cfg := config.Load()

	loggerClient := newLogger(cfg)
	startTime := time.Now()

	// Bookmarks live in Redis when configured, in process memory otherwise.
	var (
		redisClient *goredis.Client
		kv          bookmarks.KV
	)
	if cfg.RedisEnabled() {
		client, err := redis.Connect(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		redisClient = client
		kv = redisstore.NewKV(client)
		loggerClient.Info("bookmarks stored in redis", logger.String("addr", cfg.RedisAddr))
	} else {
		kv = memory.NewKV()
		loggerClient.Info("redis not configured, bookmarks kept in process memory")
	}

	bookmarkStore := bookmarks.NewStore(kv, cfg.BookmarkKey, loggerClient)

	// Contest source: seed file if configured, built-in batch otherwise.
	// Relative schedules are anchored to process start.
	var source repository.Source
	if cfg.SeedFile != "" {
		loggerClient.Info("loading contests from seed file", logger.String("file", cfg.SeedFile))
		source = seed.NewFileSource(cfg.SeedFile, loggerClient, startTime)
	} else {
		loggerClient.Info("no seed file configured, using built-in contest batch")
		source = seed.NewBuiltinSource(loggerClient, startTime)
	}

	memIndex := index.NewMemoryIndex()
	repo := repository.New(source, memIndex, loggerClient, repository.Options{
		Now:     time.Now,
		Latency: cfg.FetchLatency,
	})

	hub := events.NewHub(loggerClient, events.DefaultBuffer)

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewContestReloader(repo, loggerClient, cfg.ReloadInterval, reloadTrigger)
	statusWatcher := scheduler.NewStatusWatcher(
		repository.NewLatest(repo.FetchAll),
		hub,
		loggerClient,
		statusFallbackInterval,
	).WithCountdown(scheduler.CountdownOptions{Interval: cfg.TickInterval})
	bookmarkWatcher := scheduler.NewBookmarkWatcher(bookmarkStore, hub, loggerClient)

	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          startTime,
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		TimeNow:            time.Now,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		TrustProxy:         cfg.TrustProxy,
		CORSOrigins:        cfg.CORSOrigins,
		Repository:         repo,
		Bookmarks:          bookmarkStore,
		Hub:                hub,
		MemoryIndex:        memIndex,
		RedisClient:        redisClient,
		ReloadTrigger:      reloadTrigger,
		RateLimitBurst:     cfg.RateLimitBurst,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}

	return &App{
		cfg:             cfg,
		logger:          loggerClient,
		server:          httpserver.New(cfg, loggerClient, d),
		redisClient:     redisClient,
		hub:             hub,
		reloader:        reloader,
		statusWatcher:   statusWatcher,
		bookmarkWatcher: bookmarkWatcher,
	}
}

func newLogger(cfg *config.Config) logger.Logger {
	if cfg.LogFile == "" {
		return logger.New(cfg.LogLevel, cfg.PrettyLog)
	}
	return logger.NewWithFile(cfg.LogLevel, cfg.PrettyLog, logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   true,
	})
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting contesthub %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Loads the first batch; without it there is nothing to serve.
	if err := a.reloader.Start(ctx); err != nil {
		return multierr.Append(
			fmt.Errorf("failed to start contest reloader: %w", err),
			a.release(),
		)
	}
	a.logger.Info("contest reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	a.statusWatcher.Start(ctx)
	a.logger.Info("status watcher started",
		logger.Duration("tick", a.cfg.TickInterval),
		logger.Duration("fallback", statusFallbackInterval))

	if err := a.bookmarkWatcher.Start(ctx); err != nil {
		a.logger.Warn("bookmark changes will not be pushed to live clients",
			logger.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	return multierr.Append(runErr, a.shutdown())
}

// shutdown stops every component and collects their errors.
func (a *App) shutdown() error {
	a.reloader.Stop()
	a.statusWatcher.Stop()
	a.bookmarkWatcher.Stop()

	// Ends open event streams before the server waits for idle connections.
	a.hub.Close()

	var err error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if stopErr := a.server.Stop(shutdownCtx); stopErr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to stop server: %w", stopErr))
	}

	err = multierr.Append(err, a.release())
	if err == nil {
		a.logger.Info("✅ contesthub stopped cleanly")
	}
	return err
}

// release frees what New acquired: the hub, the Redis client and the log
// buffers. It runs on every exit path of Run and is safe to repeat.
func (a *App) release() error {
	a.hub.Close()

	var err error
	if a.redisClient != nil {
		if closeErr := a.redisClient.Close(); closeErr != nil && !errors.Is(closeErr, goredis.ErrClosed) {
			err = fmt.Errorf("failed to close redis: %w", closeErr)
		} else if closeErr == nil {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	_ = a.logger.Sync()
	return err
}
