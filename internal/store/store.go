package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/airlens/airlens/internal/health"
)

// ReadingFilter narrows ListReadings. Zero-valued fields are ignored.
type ReadingFilter struct {
	UserID   string
	Source   string
	SensorID string
	MinAQI   int
	Since    time.Time
	Until    time.Time
	Limit    int
	Offset   int
}

// SystemStats is the admin-facing rollup of stored data.
type SystemStats struct {
	TotalReadings     int     `json:"total_readings"`
	ReadingsLast24h   int     `json:"readings_last_24h"`
	TotalUsers        int     `json:"total_users"`
	TotalScores       int     `json:"total_scores"`
	StaleScores       int     `json:"stale_scores"`
	AvgAQILast24h     float64 `json:"avg_aqi_last_24h"`
	MaxAQILast24h     int     `json:"max_aqi_last_24h"`
	AvgOverallScore   float64 `json:"avg_overall_score"`
	CriticalRiskUsers int     `json:"critical_risk_users"`
}

// StaleScore identifies a user whose latest result has expired, along with
// the coordinates to refresh against.
type StaleScore struct {
	UserID    string
	Latitude  float64
	Longitude float64
	ExpiresAt time.Time
}

type Store interface {
	// Readings
	CreateReading(ctx context.Context, r *health.AirQualityReading) error
	GetReading(ctx context.Context, id uuid.UUID) (*health.AirQualityReading, error)
	ListReadings(ctx context.Context, filter ReadingFilter) ([]*health.AirQualityReading, error)
	LatestReading(ctx context.Context, userID string) (*health.AirQualityReading, error)
	ReadingsSince(ctx context.Context, userID string, since time.Time) ([]health.AirQualityReading, error)

	// Profiles
	UpsertUserProfile(ctx context.Context, p *health.UserProfile) error
	GetUserProfile(ctx context.Context, userID string) (*health.UserProfile, error)
	UpsertHealthProfile(ctx context.Context, p *health.HealthProfile) error
	GetHealthProfile(ctx context.Context, userID string) (*health.HealthProfile, error)

	// Score results
	CreateScoreResult(ctx context.Context, r *health.ScoreResult) error
	GetScoreResult(ctx context.Context, id uuid.UUID) (*health.ScoreResult, error)
	LatestScoreResult(ctx context.Context, userID string) (*health.ScoreResult, error)
	ListStaleScores(ctx context.Context, asOf time.Time, limit int) ([]StaleScore, error)

	// Admin
	GetStats(ctx context.Context) (*SystemStats, error)
	DeleteReadingsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteScoresBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}
