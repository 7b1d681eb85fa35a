package health

import (
	"errors"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	eng, err := NewEngine(DefaultComponentWeights(), opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

func TestComputeHealthyAdultCleanAir(t *testing.T) {
	eng := newTestEngine(t)
	user := &UserProfile{UserID: "u1", Age: 30, HeightCm: 180, WeightKg: 75, ActivityLevel: ActivityActive}
	profile := &HealthProfile{UserID: "u1", RiskLevel: SelfRiskLow}
	reading := &AirQualityReading{AQI: 45, PM25: 8, ReadingTime: time.Now()}

	res, err := eng.Compute("u1", user, profile, reading, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	for name, score := range map[string]int{
		"respiratory":    res.Respiratory,
		"cardiovascular": res.Cardiovascular,
		"immune":         res.Immune,
		"activity":       res.ActivityImpact,
		"overall":        res.Overall,
	} {
		if score < 90 {
			t.Errorf("%s = %d, want >= 90 for a healthy adult in clean air", name, score)
		}
	}
	if res.RiskCategory != RiskLow {
		t.Errorf("risk category = %s, want %s", res.RiskCategory, RiskLow)
	}
	if res.RiskLevel > 0.1 {
		t.Errorf("risk level = %v, want near zero", res.RiskLevel)
	}
}

func TestComputeVulnerableSeniorHazardousAir(t *testing.T) {
	eng := newTestEngine(t)
	user := &UserProfile{UserID: "u2", Age: 70, ActivityLevel: ActivitySedentary}
	profile := &HealthProfile{
		UserID:                "u2",
		RespiratoryConditions: []string{"asthma"},
		RiskLevel:             SelfRiskHigh,
	}
	reading := &AirQualityReading{AQI: 250, PM25: 180, ReadingTime: time.Now()}

	res, err := eng.Compute("u2", user, profile, reading, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if res.Respiratory >= 30 {
		t.Errorf("respiratory = %d, want < 30", res.Respiratory)
	}
	if res.RiskCategory != RiskCritical {
		t.Errorf("risk category = %s (risk level %v), want %s", res.RiskCategory, res.RiskLevel, RiskCritical)
	}
	if len(res.Recommendations) == 0 {
		t.Fatal("expected recommendations")
	}
	first := res.Recommendations[0]
	if first.Type != RecMedical || first.Priority != PriorityCritical || !first.Urgent {
		t.Errorf("first recommendation = %s/%s urgent=%v, want urgent critical medical", first.Type, first.Priority, first.Urgent)
	}
}

func TestIndoorRecommendationBoundary(t *testing.T) {
	eng := newTestEngine(t)
	user := &UserProfile{UserID: "u3", Age: 30, ActivityLevel: ActivityModerate}

	hasIndoor := func(aqi int) bool {
		reading := &AirQualityReading{AQI: aqi, ReadingTime: time.Now()}
		res, err := eng.Compute("u3", user, nil, reading, nil)
		if err != nil {
			t.Fatalf("Compute: %v", err)
		}
		for _, rec := range res.Recommendations {
			if rec.Type == RecIndoor {
				return true
			}
		}
		return false
	}

	if hasIndoor(100) {
		t.Error("AQI 100 should not trigger the indoor recommendation")
	}
	if !hasIndoor(101) {
		t.Error("AQI 101 should trigger the indoor recommendation")
	}
	if !hasIndoor(120) {
		t.Error("AQI 120 should trigger the indoor recommendation")
	}
}

func TestResultStalenessBoundary(t *testing.T) {
	computedAt := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	eng := newTestEngine(t, WithClock(fixedClock(computedAt)))
	user := &UserProfile{UserID: "u4", Age: 40}
	reading := &AirQualityReading{AQI: 60, PM25: 15, ReadingTime: computedAt}

	res, err := eng.Compute("u4", user, nil, reading, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if got := res.ExpiresAt; !got.Equal(computedAt.Add(DefaultResultTTL)) {
		t.Fatalf("ExpiresAt = %v, want computed_at + 2h", got)
	}
	if IsStale(res, res.ExpiresAt.Add(-time.Millisecond)) {
		t.Error("result should still be fresh just before expiry")
	}
	if !IsStale(res, res.ExpiresAt) {
		t.Error("result should be stale exactly at expiry")
	}
	if !IsStale(res, res.ExpiresAt.Add(time.Millisecond)) {
		t.Error("result should be stale after expiry")
	}
	if !IsStale(nil, computedAt) {
		t.Error("nil result is always stale")
	}
}

func TestOverallMonotonicInPM25(t *testing.T) {
	eng := newTestEngine(t)
	user := &UserProfile{UserID: "u5", Age: 45, HeightCm: 170, WeightKg: 70, ActivityLevel: ActivityModerate}

	prev := 101
	for _, pm25 := range []float64{0, 5, 12, 20, 35, 50, 80, 120, 180, 300} {
		reading := &AirQualityReading{AQI: 80, PM25: pm25, ReadingTime: time.Now()}
		res, err := eng.Compute("u5", user, nil, reading, nil)
		if err != nil {
			t.Fatalf("Compute(pm25=%v): %v", pm25, err)
		}
		if res.Overall > prev {
			t.Errorf("overall rose from %d to %d when pm25 increased to %v", prev, res.Overall, pm25)
		}
		prev = res.Overall
	}
}

func TestOverallMonotonicInAQI(t *testing.T) {
	eng := newTestEngine(t)
	user := &UserProfile{UserID: "u5", Age: 45, ActivityLevel: ActivityLight}

	prev := 101
	for _, aqi := range []int{10, 40, 60, 90, 120, 160, 220, 320, 450} {
		reading := &AirQualityReading{AQI: aqi, PM25: 20, ReadingTime: time.Now()}
		res, err := eng.Compute("u5", user, nil, reading, nil)
		if err != nil {
			t.Fatalf("Compute(aqi=%d): %v", aqi, err)
		}
		if res.Overall > prev {
			t.Errorf("overall rose from %d to %d when AQI increased to %d", prev, res.Overall, aqi)
		}
		prev = res.Overall
	}
}

func TestComputeDeterministic(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	eng := newTestEngine(t, WithClock(fixedClock(at)))
	user := &UserProfile{UserID: "u6", Age: 62, HeightCm: 165, WeightKg: 82, ActivityLevel: ActivityLight}
	profile := &HealthProfile{UserID: "u6", CardiovascularConditions: []string{"hypertension"}, RiskLevel: SelfRiskMedium}
	reading := &AirQualityReading{AQI: 135, PM25: 48, NO2: 55, O3: 70, ReadingTime: at}
	history := historyAt(at, []int{110, 130, 140, 120, 125})

	a, err := eng.Compute("u6", user, profile, reading, history)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	b, err := eng.Compute("u6", user, profile, reading, history)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if a.Respiratory != b.Respiratory || a.Cardiovascular != b.Cardiovascular ||
		a.Immune != b.Immune || a.ActivityImpact != b.ActivityImpact ||
		a.Overall != b.Overall || a.RiskLevel != b.RiskLevel || a.RiskCategory != b.RiskCategory {
		t.Error("identical inputs produced different scores")
	}
	if a.Factors != b.Factors {
		t.Error("identical inputs produced different contributing factors")
	}
	if len(a.Recommendations) != len(b.Recommendations) {
		t.Fatal("identical inputs produced different recommendation counts")
	}
	for i := range a.Recommendations {
		if a.Recommendations[i].Type != b.Recommendations[i].Type ||
			a.Recommendations[i].Priority != b.Recommendations[i].Priority {
			t.Errorf("recommendation %d differs between runs", i)
		}
	}
}

func TestComputeBounds(t *testing.T) {
	eng := newTestEngine(t)
	profiles := []*UserProfile{
		{Age: 4, ActivityLevel: ActivitySedentary},
		{Age: 30, HeightCm: 175, WeightKg: 70, ActivityLevel: ActivityVeryActive},
		{Age: 95, HeightCm: 150, WeightKg: 110, ActivityLevel: ActivitySedentary},
	}
	health := []*HealthProfile{
		nil,
		{RiskLevel: SelfRiskHigh, RespiratoryConditions: []string{"copd", "asthma"}, CardiovascularConditions: []string{"heart failure", "arrhythmia"}},
	}
	readings := []*AirQualityReading{
		{AQI: 0},
		{AQI: 500, PM25: 800, PM10: 900, NO2: 400, O3: 300},
		{AQI: -20, PM25: -5},
		{AQI: 9000, PM25: 9000},
	}

	for _, u := range profiles {
		for _, h := range health {
			for _, r := range readings {
				res, err := eng.Compute("u", u, h, r, nil)
				if err != nil {
					t.Fatalf("Compute: %v", err)
				}
				for name, s := range map[string]int{
					"respiratory": res.Respiratory, "cardiovascular": res.Cardiovascular,
					"immune": res.Immune, "activity": res.ActivityImpact, "overall": res.Overall,
				} {
					if s < 0 || s > 100 {
						t.Errorf("%s = %d out of [0,100] for reading %+v", name, s, r)
					}
				}
				if res.RiskLevel < 0 || res.RiskLevel > 1 {
					t.Errorf("risk level %v out of [0,1]", res.RiskLevel)
				}
				if wantCat := CategoryFor(res.RiskLevel); res.RiskCategory != wantCat {
					t.Errorf("category %s disagrees with risk level %v (want %s)", res.RiskCategory, res.RiskLevel, wantCat)
				}
			}
		}
	}
}

func TestComputeMissingInputs(t *testing.T) {
	eng := newTestEngine(t)
	user := &UserProfile{UserID: "u", Age: 30}
	reading := &AirQualityReading{AQI: 50}

	if _, err := eng.Compute("u", user, nil, nil, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil reading: err = %v, want ErrInvalidInput", err)
	}
	if _, err := eng.Compute("u", nil, nil, reading, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil user: err = %v, want ErrInvalidInput", err)
	}
	// A missing health profile is fine: the engine assumes a medium-risk baseline.
	if _, err := eng.Compute("u", user, nil, reading, nil); err != nil {
		t.Errorf("nil health profile should be accepted, got %v", err)
	}
}

func TestNewEngineRejectsBadWeights(t *testing.T) {
	w := DefaultComponentWeights()
	w.Respiratory.PM25 = 0
	if _, err := NewEngine(w); !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("err = %v, want ErrInvalidWeights", err)
	}
}
