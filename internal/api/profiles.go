package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/airlens/airlens/internal/health"
	"github.com/airlens/airlens/internal/store"
)

type ProfilesHandler struct {
	store store.Store
}

func NewProfilesHandler(s store.Store) *ProfilesHandler {
	return &ProfilesHandler{store: s}
}

type UpsertProfileRequest struct {
	Age           int     `json:"age"`
	HeightCm      float64 `json:"height_cm,omitempty"`
	WeightKg      float64 `json:"weight_kg,omitempty"`
	ActivityLevel string  `json:"activity_level,omitempty"`
}

func validActivity(level string) bool {
	switch health.ActivityLevel(level) {
	case health.ActivitySedentary, health.ActivityLight, health.ActivityModerate,
		health.ActivityActive, health.ActivityVeryActive, "":
		return true
	}
	return false
}

// UpsertProfile handles PUT /api/v1/users/{id}/profile
func (h *ProfilesHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Age <= 0 || req.Age > 150 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "age must be between 1 and 150"})
		return
	}
	if !validActivity(req.ActivityLevel) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown activity_level"})
		return
	}

	profile := &health.UserProfile{
		UserID:        userID,
		Age:           req.Age,
		HeightCm:      req.HeightCm,
		WeightKg:      req.WeightKg,
		ActivityLevel: health.ActivityLevel(req.ActivityLevel),
	}
	if err := h.store.UpsertUserProfile(r.Context(), profile); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GetProfile handles GET /api/v1/users/{id}/profile
func (h *ProfilesHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	profile, err := h.store.GetUserProfile(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if profile == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type UpsertHealthProfileRequest struct {
	RespiratoryConditions    []string `json:"respiratory_conditions,omitempty"`
	CardiovascularConditions []string `json:"cardiovascular_conditions,omitempty"`
	RiskLevel                string   `json:"risk_level,omitempty"`
	BaselineLungCapacity     float64  `json:"baseline_lung_capacity,omitempty"`
}

// UpsertHealthProfile handles PUT /api/v1/users/{id}/health-profile
func (h *ProfilesHandler) UpsertHealthProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req UpsertHealthProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	switch health.SelfRisk(req.RiskLevel) {
	case health.SelfRiskLow, health.SelfRiskMedium, health.SelfRiskHigh, "":
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "risk_level must be low, medium, or high"})
		return
	}

	profile := &health.HealthProfile{
		UserID:                   userID,
		RespiratoryConditions:    req.RespiratoryConditions,
		CardiovascularConditions: req.CardiovascularConditions,
		RiskLevel:                health.SelfRisk(req.RiskLevel),
		BaselineLungCapacity:     req.BaselineLungCapacity,
	}
	if err := h.store.UpsertHealthProfile(r.Context(), profile); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GetHealthProfile handles GET /api/v1/users/{id}/health-profile
func (h *ProfilesHandler) GetHealthProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	profile, err := h.store.GetHealthProfile(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if profile == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "health profile not found"})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
