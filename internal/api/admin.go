package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/airlens/airlens/internal/refresher"
	"github.com/airlens/airlens/internal/store"
)

type AdminHandler struct {
	store     store.Store
	refresher *refresher.Refresher
}

func NewAdminHandler(s store.Store, r *refresher.Refresher) *AdminHandler {
	return &AdminHandler{store: s, refresher: r}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Refresh handles POST /api/v1/admin/refresh/{id}: force a recomputation for
// one user regardless of the cached result's age.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	result, err := h.refresher.ComputeScore(r.Context(), userID, 0, 0)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "refreshed",
		"user_id":  userID,
		"score_id": result.ID,
		"overall":  result.Overall,
	})
}
