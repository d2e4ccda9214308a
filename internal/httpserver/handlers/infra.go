package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
)

type componentStatus struct {
	OK             bool   `json:"ok"`
	ContestsLoaded *int   `json:"contests_loaded,omitempty"`
	LastReload     string `json:"last_reload,omitempty"`
	Subscribers    *int   `json:"subscribers,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Error          string `json:"error,omitempty"`
}

type infraResponse struct {
	State      string                     `json:"state"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contestsCount := d.MemoryIndex.Count()
		lastReload := d.MemoryIndex.GetLastReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
		}

		subscribers := d.Hub.Count()

		components := map[string]componentStatus{
			"contests": {
				OK:             !lastReload.IsZero(),
				ContestsLoaded: &contestsCount,
				LastReload:     lastReloadStr,
			},
			"bookmarks": checkBookmarkBackend(r.Context(), d),
			"events": {
				OK:          true,
				Subscribers: &subscribers,
			},
		}

		writeJSON(w, d.Logger, http.StatusOK, infraResponse{
			State:      determineState(components),
			Components: components,
		})
	}
}

func determineState(components map[string]componentStatus) string {
	if c, ok := components["contests"]; ok && !c.OK {
		return "critical" // nothing to show
	}
	if b, ok := components["bookmarks"]; ok && !b.OK {
		return "degraded" // contests visible, bookmarks read as empty
	}
	return "operational"
}

func checkBookmarkBackend(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     true,
			Mode:   "memory",
			Impact: "bookmarks-not-shared-across-instances",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "redis",
			Impact: "bookmarks-unavailable",
			Error:  err.Error(),
		}
	}

	return componentStatus{
		OK:   true,
		Mode: "redis",
	}
}
