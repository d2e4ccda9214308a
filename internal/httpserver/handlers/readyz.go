package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool `json:"ready"`
	Contests int  `json:"contests"`
}

// Readyz reports ready once a contest batch has been loaded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loaded := !d.MemoryIndex.GetLastReload().IsZero()

		status := http.StatusOK
		if !loaded {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, d.Logger, status, readyzResponse{
			Ready:    loaded,
			Contests: d.MemoryIndex.Count(),
		})
	}
}
