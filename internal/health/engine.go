package health

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidInput is the only error the engine raises: a required input
	// (current reading or user profile) is missing. It is always caller-fatal.
	ErrInvalidInput = errors.New("health: missing required input")

	// ErrInvalidWeights reports a non-positive component weight.
	ErrInvalidWeights = errors.New("health: component weights must be positive")
)

// DefaultResultTTL is the validity window attached to every result.
const DefaultResultTTL = 2 * time.Hour

// Engine is the health score facade. It is purely computational: no I/O, no
// shared mutable state, safe for concurrent use from any number of
// goroutines.
type Engine struct {
	weights ComponentWeights
	ttl     time.Duration
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithTTL overrides the result validity window.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.ttl = ttl }
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine with the given component weights. The weights
// are validated once here so Compute never has to.
func NewEngine(weights ComponentWeights, opts ...Option) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		weights: weights,
		ttl:     DefaultResultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Compute maps the current reading, optional exposure history, and the user's
// profiles to a fresh ScoreResult. The current reading and user profile are
// required; a nil health profile and empty history degrade gracefully to
// zeroed penalty terms. Apart from the required-input check, Compute cannot
// fail: out-of-range inputs are clamped, never rejected.
func (e *Engine) Compute(userID string, user *UserProfile, profile *HealthProfile, current *AirQualityReading, history []AirQualityReading) (*ScoreResult, error) {
	if current == nil || user == nil {
		return nil, ErrInvalidInput
	}

	now := e.now()
	factors := ContributingFactors{}

	scores := computeComponents(e.weights, scoreInputs{
		reading: current,
		user:    user,
		profile: profile,
		history: history,
		now:     now,
	}, &factors)

	selfRisk := SelfRisk("")
	if profile != nil {
		selfRisk = profile.RiskLevel
	}
	aqi := clamp(float64(current.AQI), 0, 500)
	overall, riskLevel, category := aggregate(scores, aqi, selfRisk, &factors)

	recs := buildRecommendations(recommendationInputs{
		overall:        overall,
		respiratory:    scores.Respiratory,
		activityImpact: scores.ActivityImpact,
		category:       category,
		aqi:            aqi,
		activityLevel:  user.ActivityLevel,
		now:            now,
	})

	return &ScoreResult{
		ID:              uuid.New(),
		UserID:          userID,
		Respiratory:     int(math.Round(scores.Respiratory)),
		Cardiovascular:  int(math.Round(scores.Cardiovascular)),
		Immune:          int(math.Round(scores.Immune)),
		ActivityImpact:  int(math.Round(scores.ActivityImpact)),
		Overall:         int(math.Round(overall)),
		RiskLevel:       riskLevel,
		RiskCategory:    category,
		Factors:         factors,
		Recommendations: recs,
		ComputedAt:      now,
		ExpiresAt:       now.Add(e.ttl),
	}, nil
}

// IsStale reports whether the result must be recomputed at the given instant.
// Pure helper; equivalent to result.Stale(now).
func IsStale(result *ScoreResult, now time.Time) bool {
	if result == nil {
		return true
	}
	return result.Stale(now)
}
