package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/airlens/airlens/internal/airwave"
	"github.com/airlens/airlens/internal/health"
	"github.com/airlens/airlens/internal/observability"
	"github.com/airlens/airlens/internal/store"
)

type ReadingsHandler struct {
	store store.Store
	bus   airwave.Client
}

func NewReadingsHandler(s store.Store, bus airwave.Client) *ReadingsHandler {
	return &ReadingsHandler{store: s, bus: bus}
}

type CreateReadingRequest struct {
	UserID      string  `json:"user_id,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	PM25        float64 `json:"pm25,omitempty"`
	PM10        float64 `json:"pm10,omitempty"`
	NO2         float64 `json:"no2,omitempty"`
	SO2         float64 `json:"so2,omitempty"`
	O3          float64 `json:"o3,omitempty"`
	CO          float64 `json:"co,omitempty"`
	AQI         int     `json:"aqi,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	Humidity    float64 `json:"humidity,omitempty"`
	WindSpeed   float64 `json:"wind_speed,omitempty"`
	Source      string  `json:"source,omitempty"`
	SensorID    string  `json:"sensor_id,omitempty"`
	ReadingTime string  `json:"reading_time,omitempty"` // RFC 3339; defaults to now
}

type ReadingResponse struct {
	health.AirQualityReading
	PrimaryPollutant string        `json:"primary_pollutant,omitempty"`
	Advice           health.Advice `json:"advice"`
}

// toReading validates the request and converts it into a reading with AQI
// and category filled in. primary is the dominant pollutant when the AQI was
// derived server-side.
func (req CreateReadingRequest) toReading() (reading *health.AirQualityReading, primary string, err error) {
	if req.PM25 <= 0 && req.PM10 <= 0 && req.AQI <= 0 {
		return nil, "", errors.New("at least one of pm25, pm10, aqi required")
	}

	reading = &health.AirQualityReading{
		UserID:      req.UserID,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		PM25:        req.PM25,
		PM10:        req.PM10,
		NO2:         req.NO2,
		SO2:         req.SO2,
		O3:          req.O3,
		CO:          req.CO,
		AQI:         req.AQI,
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
		WindSpeed:   req.WindSpeed,
		Source:      req.Source,
		SensorID:    req.SensorID,
		ReadingTime: time.Now().UTC(),
	}
	if req.ReadingTime != "" {
		t, err := time.Parse(time.RFC3339, req.ReadingTime)
		if err != nil {
			return nil, "", errors.New("invalid reading_time")
		}
		reading.ReadingTime = t.UTC()
	}
	if reading.Source == "" {
		reading.Source = "api"
	}

	if reading.AQI == 0 {
		reading.AQI, reading.AQICategory, primary = health.ComputeAQI(reading)
	} else {
		reading.AQICategory = health.AQICategoryFor(reading.AQI)
	}
	return reading, primary, nil
}

func (h *ReadingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	reading, primary, err := req.toReading()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.store.CreateReading(r.Context(), reading); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	observability.RecordReadingIngested(reading.Source)

	if h.bus != nil {
		_ = h.bus.Publish(airwave.SubjectReadingIngested(reading.ID.String()), airwave.ReadingIngestedEvent{
			ReadingID: reading.ID.String(),
			UserID:    reading.UserID,
			AQI:       reading.AQI,
			Category:  reading.AQICategory,
			Primary:   primary,
			Source:    reading.Source,
			Timestamp: reading.ReadingTime,
		})
	}

	writeJSON(w, http.StatusCreated, ReadingResponse{
		AirQualityReading: *reading,
		PrimaryPollutant:  primary,
		Advice:            health.AdviceFor(reading.AQI),
	})
}

func (h *ReadingsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.ReadingFilter{
		UserID:   r.URL.Query().Get("user_id"),
		Source:   r.URL.Query().Get("source"),
		SensorID: r.URL.Query().Get("sensor_id"),
	}
	if v := r.URL.Query().Get("min_aqi"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.MinAQI = n
		}
	}
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Since = time.Now().Add(-time.Duration(n) * time.Hour)
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if filter.Limit == 0 {
		filter.Limit = 100
	}

	readings, err := h.store.ListReadings(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if readings == nil {
		readings = []*health.AirQualityReading{}
	}
	writeJSON(w, http.StatusOK, readings)
}

func (h *ReadingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid reading id"})
		return
	}

	reading, err := h.store.GetReading(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if reading == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "reading not found"})
		return
	}
	writeJSON(w, http.StatusOK, ReadingResponse{
		AirQualityReading: *reading,
		Advice:            health.AdviceFor(reading.AQI),
	})
}

// Stats handles GET /api/v1/readings/stats
func (h *ReadingsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id required"})
		return
	}
	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			hours = n
		}
	}

	readings, err := h.store.ReadingsSince(r.Context(), userID, time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, health.Statistics(readings))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
