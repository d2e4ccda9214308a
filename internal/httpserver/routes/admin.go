package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	admin := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger))
	admin.Get("/api/admin/contests", handlers.AdminContests(d))
	admin.With(writeLimit(d, "admin")).Put("/api/admin/contests/{id}/solution", handlers.UpdateSolution(d))
}
