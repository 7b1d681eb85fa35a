package health

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLevel is the user's self-reported habitual activity level.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// SelfRisk is the user's self-reported overall risk level.
type SelfRisk string

const (
	SelfRiskLow    SelfRisk = "low"
	SelfRiskMedium SelfRisk = "medium"
	SelfRiskHigh   SelfRisk = "high"
)

// RiskCategory is the ordinal classification derived from the numeric risk level.
type RiskCategory string

const (
	RiskLow      RiskCategory = "low"
	RiskMedium   RiskCategory = "medium"
	RiskHigh     RiskCategory = "high"
	RiskCritical RiskCategory = "critical"
)

// RecommendationType classifies a recommendation by the concern it addresses.
type RecommendationType string

const (
	RecMedical     RecommendationType = "medical"
	RecRespiratory RecommendationType = "respiratory"
	RecActivity    RecommendationType = "activity"
	RecIndoor      RecommendationType = "indoor"
	RecLifestyle   RecommendationType = "lifestyle"
)

// RecommendationPriority orders recommendations by urgency.
type RecommendationPriority string

const (
	PriorityCritical RecommendationPriority = "critical"
	PriorityHigh     RecommendationPriority = "high"
	PriorityMedium   RecommendationPriority = "medium"
	PriorityLow      RecommendationPriority = "low"
)

// AirQualityReading is a point-in-time environmental sample. Pollutant
// concentrations are µg/m³ except CO (mg/m³). A zero pollutant value means
// the pollutant was not measured. Readings are immutable once created.
type AirQualityReading struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`

	PM25 float64 `json:"pm25"`
	PM10 float64 `json:"pm10"`
	NO2  float64 `json:"no2"`
	SO2  float64 `json:"so2"`
	O3   float64 `json:"o3"`
	CO   float64 `json:"co"`

	AQI         int    `json:"aqi"`
	AQICategory string `json:"aqi_category,omitempty"`

	Temperature float64 `json:"temperature,omitempty"`
	Humidity    float64 `json:"humidity,omitempty"`
	WindSpeed   float64 `json:"wind_speed,omitempty"`

	Source      string    `json:"source,omitempty"`
	SensorID    string    `json:"sensor_id,omitempty"`
	ReadingTime time.Time `json:"reading_time"`
}

// UserProfile carries the demographic and lifestyle attributes the engine
// consumes. Supplied read-only by the profile store.
type UserProfile struct {
	UserID        string        `json:"user_id"`
	Age           int           `json:"age"`
	HeightCm      float64       `json:"height_cm"`
	WeightKg      float64       `json:"weight_kg"`
	ActivityLevel ActivityLevel `json:"activity_level"`
}

// BMI derives body mass index from height and weight. Returns 0 when either
// biometric is missing, which the impact layer treats as "no penalty".
func (p UserProfile) BMI() float64 {
	if p.HeightCm <= 0 || p.WeightKg <= 0 {
		return 0
	}
	m := p.HeightCm / 100
	return p.WeightKg / (m * m)
}

// HealthProfile carries the user's medical context.
type HealthProfile struct {
	UserID                   string   `json:"user_id"`
	RespiratoryConditions    []string `json:"respiratory_conditions,omitempty"`
	CardiovascularConditions []string `json:"cardiovascular_conditions,omitempty"`
	RiskLevel                SelfRisk `json:"risk_level,omitempty"`
	BaselineLungCapacity     float64  `json:"baseline_lung_capacity,omitempty"`
}

// Recommendation is an actionable, prioritized advisory generated fresh on
// every computation. The engine never persists or deduplicates these.
type Recommendation struct {
	Type        RecommendationType     `json:"type"`
	Priority    RecommendationPriority `json:"priority"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Actions     []string               `json:"actions"`
	Category    string                 `json:"category"`
	Urgent      bool                   `json:"urgent"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ContributingFactors records every penalty and adjustment that fed the
// score, for explainability. Fields are the raw (unweighted) penalty points.
type ContributingFactors struct {
	PM25Penalty          float64 `json:"pm25_penalty"`
	AQIPenalty           float64 `json:"aqi_penalty"`
	NO2Penalty           float64 `json:"no2_penalty"`
	PollutantLoadPenalty float64 `json:"pollutant_load_penalty"`
	AgeVulnerability     float64 `json:"age_vulnerability"`
	BMIImpact            float64 `json:"bmi_impact"`
	ActivityVuln         float64 `json:"activity_vulnerability"`
	RespiratoryCondition float64 `json:"respiratory_condition_penalty"`
	CardioCondition      float64 `json:"cardio_condition_penalty"`
	GeneralHealth        float64 `json:"general_health_penalty"`
	ExposureTime         float64 `json:"exposure_time_penalty"`
	LongTermExposure     float64 `json:"long_term_exposure_penalty"`
	OutdoorRestriction   float64 `json:"outdoor_restriction"`
	SeverityAdjustment   float64 `json:"severity_adjustment"`
	RiskMultiplier       float64 `json:"risk_multiplier"`
}

// ScoreResult is the engine's sole output. A result is never mutated after
// construction; recomputation always produces a new result.
type ScoreResult struct {
	ID      uuid.UUID `json:"id"`
	UserID  string    `json:"user_id"`

	Respiratory    int `json:"respiratory"`
	Cardiovascular int `json:"cardiovascular"`
	Immune         int `json:"immune"`
	ActivityImpact int `json:"activity_impact"`
	Overall        int `json:"overall"`

	RiskLevel    float64      `json:"risk_level"`
	RiskCategory RiskCategory `json:"risk_category"`

	Factors         ContributingFactors `json:"contributing_factors"`
	Recommendations []Recommendation    `json:"recommendations"`

	ComputedAt time.Time `json:"computed_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Stale reports whether the result's validity window has elapsed at the
// given instant. The boundary is inclusive: a result is stale at ExpiresAt.
func (r *ScoreResult) Stale(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
