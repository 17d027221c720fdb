// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/grantwise/matchd/internal/adapters/repository"
	"github.com/grantwise/matchd/internal/domain/model"
)

// MatchesHandler handles scoring-run requests.
type MatchesHandler struct {
	deps Dependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// HandleTriggerMatch handles POST /v1/matches/{profileID} requests by
// enqueueing an async scoring run.
func (h *MatchesHandler) HandleTriggerMatch(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileID")
	if profileID == "" {
		writeError(w, http.StatusBadRequest, "validation", errors.New("missing profile id"))
		return
	}
	if !h.deps.EnqueueMatch(r.Context(), profileID, "manual") {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "queued"})
}

// runResponse is the read shape for a persisted scoring run.
type runResponse struct {
	ProfileID string              `json:"profile_id"`
	Results   []model.MatchResult `json:"results"`
	SavedAt   time.Time           `json:"saved_at"`
}

// HandleGetLatestRun handles GET /v1/matches/{profileID} requests.
func (h *MatchesHandler) HandleGetLatestRun(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileID")
	run, err := h.deps.LatestRun(r.Context(), profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRun) {
			writeError(w, http.StatusNotFound, "no_run", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", nil)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{
		ProfileID: run.ProfileID,
		Results:   run.Results,
		SavedAt:   run.SavedAt,
	})
}
