package airwave

import (
	"time"

	"github.com/airlens/airlens/internal/health"
)

type ReadingIngestedEvent struct {
	ReadingID string    `json:"reading_id"`
	UserID    string    `json:"user_id,omitempty"`
	AQI       int       `json:"aqi"`
	Category  string    `json:"category"`
	Primary   string    `json:"primary_pollutant,omitempty"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ScoreComputedEvent struct {
	ScoreID      string              `json:"score_id"`
	UserID       string              `json:"user_id"`
	Overall      int                 `json:"overall"`
	RiskLevel    float64             `json:"risk_level"`
	RiskCategory health.RiskCategory `json:"risk_category"`
	Refreshed    bool                `json:"refreshed,omitempty"`
	ExpiresAt    time.Time           `json:"expires_at"`
}

type AlertEvent struct {
	UserID       string              `json:"user_id"`
	Priority     string              `json:"priority"`
	RiskCategory health.RiskCategory `json:"risk_category"`
	Previous     health.RiskCategory `json:"previous_category,omitempty"`
	AQI          int                 `json:"aqi"`
	Message      string              `json:"message"`
	Timestamp    time.Time           `json:"timestamp"`
}

type ForecastIssuedEvent struct {
	UserID      string    `json:"user_id,omitempty"`
	AQI         int       `json:"aqi"`
	Category    string    `json:"category"`
	Confidence  float64   `json:"confidence"`
	ForecastFor time.Time `json:"forecast_for"`
}

// ReadingRequestEvent asks the engine to fetch current conditions and score
// a user on demand.
type ReadingRequestEvent struct {
	UserID    string  `json:"user_id"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

type StatsEvent struct {
	TotalReadings   int       `json:"total_readings"`
	TotalScores     int       `json:"total_scores"`
	StaleScores     int       `json:"stale_scores"`
	AvgOverallScore float64   `json:"avg_overall_score"`
	Timestamp       time.Time `json:"timestamp"`
}
