package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/contesthub/internal/bookmarks"
	"github.com/MrSnakeDoc/contesthub/internal/events"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/mw"
	"github.com/MrSnakeDoc/contesthub/internal/index"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
	"github.com/MrSnakeDoc/contesthub/internal/repository"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to reach admin and reload endpoints
	AllowedCIDRS []string         // networks allowed to reach admin, reload, readyz and infra
	TrustProxy   bool             // true if running behind a trusted reverse proxy
	CORSOrigins  []string         // browser origins allowed to call the API

	Repository  *repository.Repository // contest batch with derived statuses
	Bookmarks   *bookmarks.Store       // persisted bookmark set
	Hub         *events.Hub            // live event fan-out
	MemoryIndex *index.MemoryIndex     // in-memory contest batch
	RedisClient *redis.Client          // nil when bookmarks live in process memory

	ReloadTrigger chan struct{} // channel to trigger a manual seed reload

	RateLimitBurst     int // requests allowed in a burst on write endpoints
	RateLimitPerMinute int // refill rate on write endpoints

	Limiter *mw.Limiter // shared by every rate-limited scope; built by routes.RegisterAll when nil
}

// Now returns the injected clock or time.Now.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
