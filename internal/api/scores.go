package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/airlens/airlens/internal/health"
	"github.com/airlens/airlens/internal/refresher"
	"github.com/airlens/airlens/internal/store"
)

type ScoresHandler struct {
	store     store.Store
	refresher *refresher.Refresher
}

func NewScoresHandler(s store.Store, r *refresher.Refresher) *ScoresHandler {
	return &ScoresHandler{store: s, refresher: r}
}

type ComputeScoreRequest struct {
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`

	// Optional inline reading. When pollutant data is present the reading is
	// persisted for the user and the score computed against it.
	Reading *CreateReadingRequest `json:"reading,omitempty"`
}

type ScoreResponse struct {
	*health.ScoreResult
	Cached bool `json:"cached"`
}

// Compute handles POST /api/v1/users/{id}/score. It always recomputes,
// regardless of any cached result.
func (h *ScoresHandler) Compute(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req ComputeScoreRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	if req.Reading != nil {
		reading, _, err := req.Reading.toReading()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		reading.UserID = userID
		if err := h.store.CreateReading(r.Context(), reading); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	result, err := h.refresher.ComputeScore(r.Context(), userID, req.Latitude, req.Longitude)
	if err != nil {
		h.writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ScoreResponse{ScoreResult: result})
}

// Latest handles GET /api/v1/users/{id}/score. A fresh cached result is
// served as-is; a missing or expired one triggers recomputation.
func (h *ScoresHandler) Latest(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	cached, err := h.store.LatestScoreResult(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if cached != nil && !health.IsStale(cached, time.Now()) {
		writeJSON(w, http.StatusOK, ScoreResponse{ScoreResult: cached, Cached: true})
		return
	}

	result, err := h.refresher.ComputeScore(r.Context(), userID, 0, 0)
	if err != nil {
		// Can't recompute but an expired result still exists: serve it
		// rather than nothing.
		if cached != nil && errors.Is(err, refresher.ErrNoReading) {
			writeJSON(w, http.StatusOK, ScoreResponse{ScoreResult: cached, Cached: true})
			return
		}
		h.writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreResponse{ScoreResult: result})
}

// Explain handles GET /api/v1/scores/{id}/explain
func (h *ScoresHandler) Explain(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid score id"})
		return
	}

	result, err := h.store.GetScoreResult(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if result == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "score not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"score_id":     result.ID,
		"user_id":      result.UserID,
		"overall":      result.Overall,
		"risk_level":   result.RiskLevel,
		"risk_category": result.RiskCategory,
		"components": map[string]int{
			"respiratory":     result.Respiratory,
			"cardiovascular":  result.Cardiovascular,
			"immune":          result.Immune,
			"activity_impact": result.ActivityImpact,
		},
		"contributing_factors": result.Factors,
		"computed_at":          result.ComputedAt,
		"expires_at":           result.ExpiresAt,
	})
}

func (h *ScoresHandler) writeComputeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, refresher.ErrNoProfile):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user has no profile"})
	case errors.Is(err, refresher.ErrNoReading):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "no air quality data available for user"})
	case errors.Is(err, health.ErrInvalidInput):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "insufficient data to compute score"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
