package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

type bookmarkListResponse struct {
	IDs []string `json:"ids"`
}

type toggleResponse struct {
	ID         string `json:"id"`
	Bookmarked bool   `json:"bookmarked"`
}

// ListBookmarks returns the bookmarked contest IDs.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Logger, http.StatusOK, bookmarkListResponse{IDs: d.Bookmarks.List(r.Context())})
	}
}

// BookmarkedContests returns views of the bookmarked contests in batch order.
func BookmarkedContests(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		contests, err := d.Repository.FetchAll(ctx)
		if err != nil {
			respondFetchFailed(w, d, err)
			return
		}

		set := d.Bookmarks.Set(ctx)
		views := buildViews(domain.WithIDs(contests, set), set, d.Repository.Now())
		writeJSON(w, d.Logger, http.StatusOK, contestListResponse{Contests: views, Count: len(views)})
	}
}

// ToggleBookmark flips the bookmark of a contest. IDs no longer in the batch
// can still be removed.
func ToggleBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		if _, err := d.Repository.Get(ctx, id); err != nil {
			if !errors.Is(err, domain.ErrNotFound) || !d.Bookmarks.IsBookmarked(ctx, id) {
				writeError(w, d.Logger, http.StatusNotFound, "contest not found")
				return
			}
		}

		bookmarked, err := d.Bookmarks.Toggle(ctx, id)
		if err != nil {
			d.Logger.Error("failed to toggle bookmark",
				logger.String("contest_id", id),
				logger.Error(err))
			writeError(w, d.Logger, http.StatusServiceUnavailable, "bookmarks are temporarily unavailable")
			return
		}

		writeJSON(w, d.Logger, http.StatusOK, toggleResponse{ID: id, Bookmarked: bookmarked})
	}
}
