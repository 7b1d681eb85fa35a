package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/airlens/airlens/internal/airwave"
	"github.com/airlens/airlens/internal/forecast"
	"github.com/airlens/airlens/internal/store"
)

type ForecastHandler struct {
	store store.Store
	bus   airwave.Client
}

func NewForecastHandler(s store.Store, bus airwave.Client) *ForecastHandler {
	return &ForecastHandler{store: s, bus: bus}
}

// Get handles GET /api/v1/forecast. The prediction seeds itself from the
// user's latest reading; without one it starts from neutral conditions.
func (h *ForecastHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id required"})
		return
	}
	hours := 6
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 48 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "hours must be between 1 and 48"})
			return
		}
		hours = n
	}

	conditions := forecast.Conditions{At: time.Now()}
	latest, err := h.store.LatestReading(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if latest != nil {
		conditions.BaseAQI = latest.AQI
		conditions.Temperature = latest.Temperature
		conditions.Humidity = latest.Humidity
		conditions.WindSpeed = latest.WindSpeed
	}

	series := forecast.PredictSeries(conditions, hours)

	if len(series) > 0 && h.bus != nil {
		next := series[0]
		_ = h.bus.Publish(airwave.SubjectForecastIssued(userID), airwave.ForecastIssuedEvent{
			UserID:      userID,
			AQI:         next.AQI,
			Category:    next.Category,
			Confidence:  next.Confidence,
			ForecastFor: next.ForecastFor,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":     userID,
		"based_on":    conditions.BaseAQI,
		"predictions": series,
	})
}
