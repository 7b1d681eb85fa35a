package health

import "testing"

func TestSeverityAdjustment(t *testing.T) {
	tests := []struct {
		aqi  float64
		want float64
	}{
		{0, 0.05},
		{49, 0.05},
		{50, 0},
		{150, 0},
		{151, -0.05},
		{200, -0.05},
		{201, -0.10},
		{500, -0.10},
	}
	for _, tt := range tests {
		if got := SeverityAdjustment(tt.aqi); got != tt.want {
			t.Errorf("SeverityAdjustment(%v) = %v, want %v", tt.aqi, got, tt.want)
		}
	}
}

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		risk float64
		want RiskCategory
	}{
		{0, RiskLow},
		{0.29, RiskLow},
		{0.3, RiskMedium},
		{0.59, RiskMedium},
		{0.6, RiskHigh},
		{0.79, RiskHigh},
		{0.8, RiskCritical},
		{1.0, RiskCritical},
	}
	for _, tt := range tests {
		if got := CategoryFor(tt.risk); got != tt.want {
			t.Errorf("CategoryFor(%v) = %s, want %s", tt.risk, got, tt.want)
		}
	}
}

func TestAggregateRiskMultiplier(t *testing.T) {
	scores := ComponentScores{Respiratory: 50, Cardiovascular: 50, Immune: 50, ActivityImpact: 50}

	var f ContributingFactors
	_, base, _ := aggregate(scores, 100, SelfRiskMedium, &f)
	_, high, _ := aggregate(scores, 100, SelfRiskHigh, &f)
	_, low, _ := aggregate(scores, 100, SelfRiskLow, &f)
	_, unset, _ := aggregate(scores, 100, "", &f)

	if high <= base {
		t.Errorf("high self-risk (%v) should exceed medium (%v)", high, base)
	}
	if low >= base {
		t.Errorf("low self-risk (%v) should be below medium (%v)", low, base)
	}
	if unset != base {
		t.Errorf("unset self-risk (%v) should match medium (%v)", unset, base)
	}
}

func TestAggregateRiskLevelClamped(t *testing.T) {
	var f ContributingFactors
	zero := ComponentScores{}
	_, risk, cat := aggregate(zero, 500, SelfRiskHigh, &f)
	if risk != 1 {
		t.Errorf("risk level = %v, want clamped to 1", risk)
	}
	if cat != RiskCritical {
		t.Errorf("category = %s, want %s", cat, RiskCritical)
	}
}
