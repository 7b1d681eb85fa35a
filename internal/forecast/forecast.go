// Package forecast predicts near-term AQI from current weather conditions.
// The predictor is rule-based: deterministic, dependency-free, and cheap
// enough to run inline on every request.
package forecast

import (
	"time"

	"github.com/airlens/airlens/internal/health"
)

// Confidence reported by the rule-based predictor. Rules capture coarse
// weather and traffic effects only, so confidence stays well below 1.
const RuleConfidence = 0.6

// Conditions are the inputs the predictor runs on. Zero-valued fields fall
// back to neutral defaults (20°C, 50% humidity, 2 m/s wind).
type Conditions struct {
	BaseAQI     int     `json:"base_aqi"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	At          time.Time
}

// Prediction is a single-horizon AQI estimate.
type Prediction struct {
	AQI         int       `json:"aqi"`
	Category    string    `json:"category"`
	Confidence  float64   `json:"confidence"`
	ForecastFor time.Time `json:"forecast_for"`
}

// Predict estimates the AQI at the given conditions' timestamp. A zero
// BaseAQI starts from the scale's midpoint of moderate air (50).
func Predict(c Conditions) Prediction {
	aqi := c.BaseAQI
	if aqi == 0 {
		aqi = 50
	}

	temp := c.Temperature
	if temp == 0 {
		temp = 20
	}
	humidity := c.Humidity
	if humidity == 0 {
		humidity = 50
	}
	wind := c.WindSpeed
	if wind == 0 {
		wind = 2
	}

	// Heat drives ozone formation, deep cold traps inversions.
	switch {
	case temp > 30:
		aqi += 20
	case temp < 0:
		aqi += 10
	}

	// High humidity holds particulates near the ground; very dry air lifts
	// dust.
	switch {
	case humidity > 80:
		aqi += 15
	case humidity < 30:
		aqi += 10
	}

	// Stagnant air accumulates, strong wind disperses.
	switch {
	case wind < 1:
		aqi += 20
	case wind > 10:
		aqi -= 15
	}

	hour := c.At.Hour()
	switch {
	case (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19):
		aqi += 25 // rush hour
	case hour >= 22 || hour <= 6:
		aqi -= 10
	}

	if aqi < 0 {
		aqi = 0
	}
	if aqi > 500 {
		aqi = 500
	}

	return Prediction{
		AQI:         aqi,
		Category:    health.AQICategoryFor(aqi),
		Confidence:  RuleConfidence,
		ForecastFor: c.At,
	}
}

// PredictSeries produces hourly predictions for the next n hours, re-applying
// the rules at each hour so rush-hour and overnight effects show up in the
// series.
func PredictSeries(c Conditions, n int) []Prediction {
	if n <= 0 {
		return nil
	}
	out := make([]Prediction, 0, n)
	for i := 1; i <= n; i++ {
		next := c
		next.At = c.At.Add(time.Duration(i) * time.Hour)
		out = append(out, Predict(next))
	}
	return out
}
