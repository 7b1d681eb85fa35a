package health

import (
	"strings"
	"time"
)

// Impact functions: pure, monotonic, piecewise-linear transfer curves mapping
// raw exposure and physiology onto penalty points. Callers subtract the points
// from a starting 100. Every function clamps its input to a sane range first,
// so negative or extreme values never raise.

// PM25Penalty maps a PM2.5 concentration (µg/m³) to penalty points in [0,170].
// Below the 12 µg/m³ WHO guideline the penalty is zero; slope rises through
// 35 and 55, flattens above 150, and the above-150 contribution caps at +100.
func PM25Penalty(pm25 float64) float64 {
	if pm25 <= 12 {
		return 0
	}
	p := 0.0
	switch {
	case pm25 <= 35:
		p = (pm25 - 12) * 0.5
	case pm25 <= 55:
		p = 23*0.5 + (pm25-35)*1.0
	case pm25 <= 150:
		p = 23*0.5 + 20*1.0 + (pm25-55)*0.8
	default:
		extra := (pm25 - 150) * 0.5
		if extra > 100 {
			extra = 100
		}
		p = 23*0.5 + 20*1.0 + 95*0.8 + extra
	}
	return clamp(p, 0, 170)
}

// AQIPenalty maps an AQI value to penalty points in [0,280]. Segments follow
// the EPA breakpoints (50/100/150/200/300/500) with slope rising from 0.3 to
// 1.0; values beyond 500 add nothing further.
func AQIPenalty(aqi float64) float64 {
	if aqi <= 50 {
		return 0
	}
	if aqi > 500 {
		aqi = 500
	}
	p := 0.0
	segments := []struct {
		from, to, slope float64
	}{
		{50, 100, 0.3},
		{100, 150, 0.4},
		{150, 200, 0.5},
		{200, 300, 0.7},
		{300, 500, 1.0},
	}
	for _, seg := range segments {
		if aqi <= seg.from {
			break
		}
		hi := aqi
		if hi > seg.to {
			hi = seg.to
		}
		p += (hi - seg.from) * seg.slope
	}
	return clamp(p, 0, 280)
}

// NO2Penalty maps an NO2 concentration (µg/m³) to penalty points in [0,120].
// Zero below the 40 µg/m³ annual guideline.
func NO2Penalty(no2 float64) float64 {
	if no2 <= 40 {
		return 0
	}
	p := 0.0
	switch {
	case no2 <= 100:
		p = (no2 - 40) * 0.4
	case no2 <= 200:
		p = 60*0.4 + (no2-100)*0.6
	default:
		extra := (no2 - 200) * 0.3
		if extra > 30 {
			extra = 30
		}
		p = 60*0.4 + 100*0.6 + extra
	}
	return clamp(p, 0, 120)
}

// VulnerabilityOpts select the condition-specific age curve scaling.
type VulnerabilityOpts struct {
	Cardio bool
	Immune bool
}

// AgeVulnerability maps age to penalty points in [0,60]. Children and older
// adults carry extra vulnerability; the cardio and immune flags scale the
// curve for the corresponding component scorers.
func AgeVulnerability(age int, opts VulnerabilityOpts) float64 {
	if age < 0 {
		age = 0
	}
	a := float64(age)
	p := 0.0
	switch {
	case age < 12:
		p = 15
	case age < 18:
		p = 8
	case age <= 45:
		p = 0
	case age <= 60:
		p = (a - 45) * 0.5
	case age <= 75:
		p = 7.5 + (a-60)*1.0
	default:
		p = 22.5 + (a-75)*1.5
		if p > 50 {
			p = 50
		}
	}
	if opts.Cardio {
		p *= 1.3
	}
	if opts.Immune {
		p *= 1.2
	}
	return clamp(p, 0, 60)
}

// BMIImpact maps body mass index to penalty points in [0,30]. A BMI of zero
// means biometrics were not supplied and yields no penalty.
func BMIImpact(bmi float64) float64 {
	if bmi <= 0 {
		return 0
	}
	p := 0.0
	switch {
	case bmi < 18.5:
		p = (18.5 - bmi) * 2
		if p > 15 {
			p = 15
		}
	case bmi <= 25:
		p = 0
	case bmi <= 30:
		p = (bmi - 25) * 1.5
	case bmi <= 35:
		p = 7.5 + (bmi-30)*2
	default:
		p = 17.5 + (bmi-35)*1.5
	}
	return clamp(p, 0, 30)
}

// ActivityVulnerability maps activity level to respiratory exposure penalty
// points. Sedentary users carry a fitness deficit; highly active users inhale
// a larger pollutant volume outdoors. Moderate activity is the sweet spot.
func ActivityVulnerability(level ActivityLevel) float64 {
	switch level {
	case ActivitySedentary:
		return 8
	case ActivityLight:
		return 4
	case ActivityModerate:
		return 2
	case ActivityActive:
		return 5
	case ActivityVeryActive:
		return 10
	default:
		return 4
	}
}

// ActivityImmuneBenefit returns a signed immune penalty adjustment: positive
// for sedentary users, negative (a benefit) for active ones.
func ActivityImmuneBenefit(level ActivityLevel) float64 {
	switch level {
	case ActivitySedentary:
		return 20
	case ActivityLight:
		return 5
	case ActivityModerate:
		return -5
	case ActivityActive:
		return -10
	case ActivityVeryActive:
		return -12
	default:
		return 0
	}
}

// PollutantLoadPenalty maps the average concentration across PM2.5, PM10,
// NO2, and O3 to penalty points in [0,120].
func PollutantLoadPenalty(avg float64) float64 {
	if avg <= 20 {
		return 0
	}
	p := 0.0
	switch {
	case avg <= 50:
		p = (avg - 20) * 0.8
	case avg <= 100:
		p = 30*0.8 + (avg-50)*1.2
	default:
		extra := (avg - 100) * 0.6
		if extra > 36 {
			extra = 36
		}
		p = 30*0.8 + 50*1.2 + extra
	}
	return clamp(p, 0, 120)
}

// GeneralHealthPenalty maps the self-reported risk level to penalty points.
func GeneralHealthPenalty(risk SelfRisk) float64 {
	switch risk {
	case SelfRiskHigh:
		return 40
	case SelfRiskMedium:
		return 20
	default:
		return 0
	}
}

// RespiratoryConditionPenalty sums penalty points for known respiratory
// conditions, capped at 60. Matching is case-insensitive on substrings so
// free-text entries like "mild asthma" register.
func RespiratoryConditionPenalty(conditions []string) float64 {
	p := 0.0
	for _, c := range conditions {
		switch {
		case containsFold(c, "copd"), containsFold(c, "emphysema"):
			p += 35
		case containsFold(c, "asthma"):
			p += 25
		case containsFold(c, "bronchitis"):
			p += 20
		default:
			p += 10
		}
	}
	return clamp(p, 0, 60)
}

// CardioConditionPenalty sums penalty points for known cardiovascular
// conditions, capped at 60.
func CardioConditionPenalty(conditions []string) float64 {
	p := 0.0
	for _, c := range conditions {
		switch {
		case containsFold(c, "heart disease"), containsFold(c, "coronary"), containsFold(c, "heart failure"):
			p += 35
		case containsFold(c, "arrhythmia"):
			p += 25
		case containsFold(c, "hypertension"):
			p += 20
		default:
			p += 10
		}
	}
	return clamp(p, 0, 60)
}

// ExposureTimePenalty scores the last 24 hours of exposure history in [0,60].
// With no samples in the window the term is zero, never an error.
func ExposureTimePenalty(history []AirQualityReading, now time.Time) float64 {
	cutoff := now.Add(-24 * time.Hour)
	var total, unhealthy, sum float64
	for _, r := range history {
		if r.ReadingTime.Before(cutoff) || r.ReadingTime.After(now) {
			continue
		}
		total++
		sum += float64(r.AQI)
		if r.AQI >= 100 {
			unhealthy++
		}
	}
	if total == 0 {
		return 0
	}
	p := (unhealthy / total) * 40
	if sum/total >= 150 {
		p += 20
	}
	return clamp(p, 0, 60)
}

// LongTermExposurePenalty scores the weekly PM2.5 average in [0,50]. The term
// is zero unless at least ten samples fall inside the 7-day window, so thin
// history never skews the immune score.
func LongTermExposurePenalty(history []AirQualityReading, now time.Time) float64 {
	cutoff := now.Add(-7 * 24 * time.Hour)
	var n, sum float64
	for _, r := range history {
		if r.ReadingTime.Before(cutoff) || r.ReadingTime.After(now) {
			continue
		}
		n++
		sum += clamp(r.PM25, 0, 1000)
	}
	if n < 10 {
		return 0
	}
	mean := sum / n
	if mean <= 12 {
		return 0
	}
	p := 0.0
	if mean <= 35 {
		p = mean - 12
	} else {
		p = 23 + (mean-35)*0.5
	}
	return clamp(p, 0, 50)
}

// OutdoorRestriction maps AQI to the degree outdoor activity should be
// curtailed, in [0,100].
func OutdoorRestriction(aqi float64) float64 {
	if aqi <= 50 {
		return 0
	}
	if aqi > 500 {
		aqi = 500
	}
	p := 0.0
	switch {
	case aqi <= 100:
		p = (aqi - 50) * 0.3
	case aqi <= 150:
		p = 15 + (aqi-100)*0.6
	case aqi <= 200:
		p = 45 + (aqi-150)*0.8
	default:
		extra := (aqi - 200) * 0.2
		if extra > 15 {
			extra = 15
		}
		p = 85 + extra
	}
	return clamp(p, 0, 100)
}

// ExerciseImpact scales the outdoor restriction by how much the user actually
// exercises outdoors.
func ExerciseImpact(aqi float64, level ActivityLevel) float64 {
	mult := 0.8
	switch level {
	case ActivitySedentary:
		mult = 0.4
	case ActivityLight:
		mult = 0.6
	case ActivityModerate:
		mult = 0.8
	case ActivityActive:
		mult = 1.0
	case ActivityVeryActive:
		mult = 1.2
	}
	return clamp(OutdoorRestriction(aqi)*mult, 0, 100)
}

// SensitivityScore combines age and condition burden into [0,80] for the
// activity-impact scorer.
func SensitivityScore(age int, profile *HealthProfile) float64 {
	p := AgeVulnerability(age, VulnerabilityOpts{})
	if profile != nil {
		p += RespiratoryConditionPenalty(profile.RespiratoryConditions)
		p += CardioConditionPenalty(profile.CardiovascularConditions)
	}
	return clamp(p, 0, 80)
}

// LocationRestriction is a fixed fraction of the outdoor restriction,
// reflecting that relocating indoors mitigates most but not all exposure.
func LocationRestriction(aqi float64) float64 {
	return 0.3 * OutdoorRestriction(aqi)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
