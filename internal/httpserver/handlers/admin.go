package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

const maxSolutionBody = 4 << 10

type adminListResponse struct {
	Contests []domain.Contest `json:"contests"`
	Warning  string           `json:"warning,omitempty"`
}

type solutionRequest struct {
	URL string `json:"url"`
}

// AdminContests lists completed contests with their current solution link.
func AdminContests(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contests, err := d.Repository.FetchAll(r.Context())
		if err != nil {
			if errors.Is(err, domain.ErrFetchFailed) {
				d.Logger.Warn("contest fetch failed, serving empty admin list", logger.Error(err))
				writeJSON(w, d.Logger, http.StatusOK, adminListResponse{Contests: []domain.Contest{}, Warning: fetchWarning})
				return
			}
			writeError(w, d.Logger, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, d.Logger, http.StatusOK, adminListResponse{
			Contests: domain.WithStatus(contests, domain.StatusCompleted),
		})
	}
}

// UpdateSolution attaches a solution link to a completed contest.
func UpdateSolution(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		var req solutionRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSolutionBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "body must be {\"url\": \"...\"}")
			return
		}

		err := d.Repository.UpdateSolution(ctx, id, req.URL)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrInvalidSolution):
			writeError(w, d.Logger, http.StatusBadRequest, "solution url must be an absolute http(s) url")
			return
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, d.Logger, http.StatusNotFound, "contest not found")
			return
		case errors.Is(err, domain.ErrNotCompleted):
			writeError(w, d.Logger, http.StatusConflict, "solutions can only be attached to completed contests")
			return
		default:
			d.Logger.Error("failed to update solution", logger.String("contest_id", id), logger.Error(err))
			writeError(w, d.Logger, http.StatusInternalServerError, "internal error")
			return
		}

		c, err := d.Repository.Get(ctx, id)
		if err != nil {
			writeError(w, d.Logger, http.StatusNotFound, "contest not found")
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, c)
	}
}
