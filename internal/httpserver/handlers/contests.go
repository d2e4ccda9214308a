package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

// fetchWarning is shown to clients when the batch could not be produced.
const fetchWarning = "contests are temporarily unavailable"

type contestListResponse struct {
	Contests []domain.ContestView `json:"contests"`
	Count    int                  `json:"count"`
	Warning  string               `json:"warning,omitempty"`
}

// ListContests serves the filtered contest list.
//
// Query parameters: q (name or platform substring), platform and status
// (comma separated labels). An absent parameter enables every value, an
// empty one disables them all. toggle_platform and toggle_status (repeatable)
// then flip single labels of that selection.
func ListContests(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		params := r.URL.Query()

		contests, err := d.Repository.FetchAll(ctx)
		if err != nil {
			respondFetchFailed(w, d, err)
			return
		}

		cfg := domain.ParseFilterConfig(optional(params, "platform"), optional(params, "status")).
			ApplyToggles(params["toggle_platform"], params["toggle_status"])
		matched := domain.Filter(contests, cfg, params.Get("q"))

		d.Logger.Debug("contest list served",
			logger.String("query", params.Get("q")),
			logger.Int("total", len(contests)),
			logger.Int("matched", len(matched)))

		views := buildViews(matched, d.Bookmarks.Set(ctx), d.Repository.Now())
		writeJSON(w, d.Logger, http.StatusOK, contestListResponse{Contests: views, Count: len(views)})
	}
}

// GetContest serves a single contest view.
func GetContest(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		c, err := d.Repository.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, d.Logger, http.StatusNotFound, "contest not found")
				return
			}
			d.Logger.Error("failed to get contest", logger.String("contest_id", id), logger.Error(err))
			writeError(w, d.Logger, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, d.Logger, http.StatusOK,
			domain.NewContestView(c, d.Repository.Now(), d.Bookmarks.IsBookmarked(ctx, id)))
	}
}

// respondFetchFailed degrades to an empty list; any other error is a 500.
func respondFetchFailed(w http.ResponseWriter, d deps.Deps, err error) {
	if errors.Is(err, domain.ErrFetchFailed) {
		d.Logger.Warn("contest fetch failed, serving empty list", logger.Error(err))
		writeJSON(w, d.Logger, http.StatusOK, contestListResponse{
			Contests: []domain.ContestView{},
			Warning:  fetchWarning,
		})
		return
	}
	d.Logger.Error("contest fetch failed", logger.Error(err))
	writeError(w, d.Logger, http.StatusInternalServerError, "internal error")
}

func buildViews(contests []domain.Contest, bookmarked map[string]bool, now time.Time) []domain.ContestView {
	views := make([]domain.ContestView, 0, len(contests))
	for _, c := range contests {
		views = append(views, domain.NewContestView(c, now, bookmarked[c.ID]))
	}
	return views
}

// optional returns nil when key is absent from params.
func optional(params url.Values, key string) *string {
	if !params.Has(key) {
		return nil
	}
	v := params.Get(key)
	return &v
}
