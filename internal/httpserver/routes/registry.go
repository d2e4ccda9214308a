package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg    Registrar
	mws    []Middleware
	stream bool
}

var registry []entry

// Register a registrar with optional per-route middlewares.
// Its routes run under the per-request timeout.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// RegisterStream registers long-lived routes (websockets) that must not be
// cut by the per-request timeout.
func RegisterStream(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws, stream: true})
}

// Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps, timeout time.Duration) {
	if d.Limiter == nil {
		d.Limiter = mw.NewLimiter(mw.RateLimitConfig{
			Burst:             d.RateLimitBurst,
			RefillPerIPPerMin: d.RateLimitPerMinute,
			MaxEntries:        10000,
			TrustProxy:        d.TrustProxy,
			Now:               d.TimeNow,
		})
	}

	r.Group(func(g chi.Router) {
		if timeout > 0 {
			g.Use(middleware.Timeout(timeout))
		}
		for _, e := range registry {
			if !e.stream {
				mount(g, e, d)
			}
		}
	})

	for _, e := range registry {
		if e.stream {
			mount(r, e, d)
		}
	}
}

// writeLimit draws from the scope's budget of the shared limiter.
func writeLimit(d deps.Deps, scope string) Middleware {
	return d.Limiter.Scope(scope)
}

func mount(r chi.Router, e entry, d deps.Deps) {
	if len(e.mws) == 0 {
		e.reg(r, d)
		return
	}
	e.reg(r.With(e.mws...), d) // apply per-route middlewares
}
