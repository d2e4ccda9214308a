package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout for non-streaming routes

	LogLevel      string // "debug" | "info" | "warn" | "error"
	PrettyLog     bool   // true => zap dev (color), false => zap prod (JSON)
	LogFile       string // optional, tees logs into a rotated file
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// Contests
	SeedFile       string        // optional YAML batch, empty = built-in mock batch
	ReloadInterval time.Duration // interval to reload the seed (default: 1h)
	TickInterval   time.Duration // status sampling period (default: 1s)
	FetchLatency   time.Duration // simulated upstream latency per fetch (default: 0)

	// Bookmarks
	BookmarkKey string // storage key of the bookmark set

	// Redis (optional, empty RedisAddr => in-process store)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially

	// Access restrictions
	AllowedHosts []string // optional, restrict admin/reload to specific Host headers
	AllowedCIDRS []string // optional, restrict admin/reload/readyz/infra to these networks
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	CORSOrigins  []string // browser origins allowed to call the API

	// Rate limiting of write endpoints
	RateLimitBurst     int
	RateLimitPerMinute int
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("CONTESTHUB_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("CONTESTHUB_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("CONTESTHUB_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:      getenv("CONTESTHUB_LOG_LEVEL", "info"),
		PrettyLog:     mustBool("CONTESTHUB_PRETTY_LOG", true),
		LogFile:       getenv("CONTESTHUB_LOG_FILE", ""),
		LogMaxSizeMB:  getenvInt("CONTESTHUB_LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getenvInt("CONTESTHUB_LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getenvInt("CONTESTHUB_LOG_MAX_AGE_DAYS", 14),

		// Contests
		SeedFile:       getenv("CONTESTHUB_SEED_FILE", ""),
		ReloadInterval: mustDuration("CONTESTHUB_RELOAD_INTERVAL", time.Hour),
		TickInterval:   mustDuration("CONTESTHUB_TICK_INTERVAL", time.Second),
		FetchLatency:   mustDuration("CONTESTHUB_FETCH_LATENCY", 0),

		BookmarkKey: getenv("CONTESTHUB_BOOKMARK_KEY", "contestBookmarks"),

		// Redis settings
		RedisAddr:           getenv("CONTESTHUB_REDIS_ADDR", ""),
		RedisUser:           getenv("CONTESTHUB_REDIS_USERNAME", ""),
		RedisPassword:       getenv("CONTESTHUB_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("CONTESTHUB_REDIS_DB", 0),
		RedisDT:             mustDuration("CONTESTHUB_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("CONTESTHUB_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("CONTESTHUB_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("CONTESTHUB_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("CONTESTHUB_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("CONTESTHUB_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("CONTESTHUB_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("CONTESTHUB_REDIS_RETRY_INTERVAL", 2*time.Second),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("CONTESTHUB_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("CONTESTHUB_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("CONTESTHUB_TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(getenv("CONTESTHUB_CORS_ORIGINS", "*")),

		RateLimitBurst:     getenvInt("CONTESTHUB_RATE_LIMIT_BURST", 20),
		RateLimitPerMinute: getenvInt("CONTESTHUB_RATE_LIMIT_PER_MINUTE", 60),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// RedisEnabled reports whether bookmarks go to Redis instead of process memory.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// Validate rejects settings that would make a background loop spin or stall.
func (c *Config) Validate() error {
	if c.ReloadInterval <= 0 {
		return fmt.Errorf("CONTESTHUB_RELOAD_INTERVAL must be > 0, got %v", c.ReloadInterval)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("CONTESTHUB_TICK_INTERVAL must be > 0, got %v", c.TickInterval)
	}
	if c.FetchLatency < 0 {
		return fmt.Errorf("CONTESTHUB_FETCH_LATENCY must be >= 0, got %v", c.FetchLatency)
	}
	if strings.TrimSpace(c.BookmarkKey) == "" {
		return fmt.Errorf("CONTESTHUB_BOOKMARK_KEY must not be blank")
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
