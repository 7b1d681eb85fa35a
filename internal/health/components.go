package health

import "time"

// ComponentWeights holds the per-term weights for the four component scorers.
// The cardiovascular weights deliberately sum above 1.0: each term is
// independently bounded and the component is clamped rather than
// renormalized, which gives PM2.5 its outsized cardiovascular effect.
// Do not "fix" this by renormalizing.
type ComponentWeights struct {
	Respiratory    RespiratoryWeights    `yaml:"respiratory"`
	Cardiovascular CardiovascularWeights `yaml:"cardiovascular"`
	Immune         ImmuneWeights         `yaml:"immune"`
	ActivityImpact ActivityWeights       `yaml:"activity_impact"`
}

type RespiratoryWeights struct {
	PM25          float64 `yaml:"pm25"`
	AQI           float64 `yaml:"aqi"`
	Vulnerability float64 `yaml:"vulnerability"`
	ExposureTime  float64 `yaml:"exposure_time"`
}

type CardiovascularWeights struct {
	PM25          float64 `yaml:"pm25"`
	NO2           float64 `yaml:"no2"`
	Vulnerability float64 `yaml:"vulnerability"`
	BMI           float64 `yaml:"bmi"`
	Conditions    float64 `yaml:"conditions"`
}

type ImmuneWeights struct {
	PollutantLoad    float64 `yaml:"pollutant_load"`
	Vulnerability    float64 `yaml:"vulnerability"`
	GeneralHealth    float64 `yaml:"general_health"`
	Activity         float64 `yaml:"activity"`
	LongTermExposure float64 `yaml:"long_term_exposure"`
}

type ActivityWeights struct {
	OutdoorRestriction  float64 `yaml:"outdoor_restriction"`
	ExerciseImpact      float64 `yaml:"exercise_impact"`
	Sensitivity         float64 `yaml:"sensitivity"`
	LocationRestriction float64 `yaml:"location_restriction"`
}

// DefaultComponentWeights returns the canonical weight distribution.
func DefaultComponentWeights() ComponentWeights {
	return ComponentWeights{
		Respiratory: RespiratoryWeights{
			PM25:          0.30,
			AQI:           0.25,
			Vulnerability: 0.20,
			ExposureTime:  0.15,
		},
		Cardiovascular: CardiovascularWeights{
			PM25:          0.35,
			NO2:           0.20,
			Vulnerability: 0.25,
			BMI:           0.15,
			Conditions:    0.20,
		},
		Immune: ImmuneWeights{
			PollutantLoad:    0.25,
			Vulnerability:    0.30,
			GeneralHealth:    0.20,
			Activity:         0.15,
			LongTermExposure: 0.20,
		},
		ActivityImpact: ActivityWeights{
			OutdoorRestriction:  0.40,
			ExerciseImpact:      0.30,
			Sensitivity:         0.20,
			LocationRestriction: 0.15,
		},
	}
}

// Validate rejects negative or zeroed weights. Weight sums are intentionally
// unconstrained; see the ComponentWeights doc.
func (w ComponentWeights) Validate() error {
	all := []float64{
		w.Respiratory.PM25, w.Respiratory.AQI, w.Respiratory.Vulnerability, w.Respiratory.ExposureTime,
		w.Cardiovascular.PM25, w.Cardiovascular.NO2, w.Cardiovascular.Vulnerability, w.Cardiovascular.BMI, w.Cardiovascular.Conditions,
		w.Immune.PollutantLoad, w.Immune.Vulnerability, w.Immune.GeneralHealth, w.Immune.Activity, w.Immune.LongTermExposure,
		w.ActivityImpact.OutdoorRestriction, w.ActivityImpact.ExerciseImpact, w.ActivityImpact.Sensitivity, w.ActivityImpact.LocationRestriction,
	}
	for _, v := range all {
		if v <= 0 {
			return ErrInvalidWeights
		}
	}
	return nil
}

// ComponentScores holds the four continuous component scores, each in [0,100].
type ComponentScores struct {
	Respiratory    float64
	Cardiovascular float64
	Immune         float64
	ActivityImpact float64
}

// scoreInputs bundles the cleaned inputs shared by the component scorers.
type scoreInputs struct {
	reading *AirQualityReading
	user    *UserProfile
	profile *HealthProfile
	history []AirQualityReading
	now     time.Time
}

// computeComponents runs the four independent scorers and records every raw
// penalty in the contributing-factors breakdown.
func computeComponents(w ComponentWeights, in scoreInputs, factors *ContributingFactors) ComponentScores {
	pm25 := clamp(in.reading.PM25, 0, 1000)
	aqi := clamp(float64(in.reading.AQI), 0, 500)
	no2 := clamp(in.reading.NO2, 0, 1000)
	age := in.user.Age
	if age < 0 {
		age = 0
	}

	var respConds, cardioConds []string
	selfRisk := SelfRiskMedium
	if in.profile != nil {
		respConds = in.profile.RespiratoryConditions
		cardioConds = in.profile.CardiovascularConditions
		if in.profile.RiskLevel != "" {
			selfRisk = in.profile.RiskLevel
		}
	}

	// Respiratory
	pm25Pen := PM25Penalty(pm25)
	aqiPen := AQIPenalty(aqi)
	ageVuln := AgeVulnerability(age, VulnerabilityOpts{})
	condPen := RespiratoryConditionPenalty(respConds)
	actVuln := ActivityVulnerability(in.user.ActivityLevel)
	exposure := ExposureTimePenalty(in.history, in.now)
	respiratory := 100 -
		w.Respiratory.PM25*pm25Pen -
		w.Respiratory.AQI*aqiPen -
		w.Respiratory.Vulnerability*(ageVuln+condPen+actVuln) -
		w.Respiratory.ExposureTime*exposure

	// Cardiovascular. PM2.5 is scaled up 1.2x before the penalty curve to
	// reflect its disproportionate cardiovascular effect.
	cardioAgeVuln := AgeVulnerability(age, VulnerabilityOpts{Cardio: true})
	bmiPen := BMIImpact(in.user.BMI())
	cardioCondPen := CardioConditionPenalty(cardioConds)
	cardiovascular := 100 -
		w.Cardiovascular.PM25*PM25Penalty(pm25*1.2) -
		w.Cardiovascular.NO2*NO2Penalty(no2) -
		w.Cardiovascular.Vulnerability*cardioAgeVuln -
		w.Cardiovascular.BMI*bmiPen -
		w.Cardiovascular.Conditions*cardioCondPen

	// Immune
	loadPen := PollutantLoadPenalty(pollutantAverage(in.reading))
	immuneAgeVuln := AgeVulnerability(age, VulnerabilityOpts{Immune: true})
	healthPen := GeneralHealthPenalty(selfRisk)
	actBenefit := ActivityImmuneBenefit(in.user.ActivityLevel)
	longTerm := LongTermExposurePenalty(in.history, in.now)
	immune := 100 -
		w.Immune.PollutantLoad*loadPen -
		w.Immune.Vulnerability*immuneAgeVuln -
		w.Immune.GeneralHealth*healthPen -
		w.Immune.Activity*actBenefit -
		w.Immune.LongTermExposure*longTerm

	// Activity impact
	outdoor := OutdoorRestriction(aqi)
	activityImpact := 100 -
		w.ActivityImpact.OutdoorRestriction*outdoor -
		w.ActivityImpact.ExerciseImpact*ExerciseImpact(aqi, in.user.ActivityLevel) -
		w.ActivityImpact.Sensitivity*SensitivityScore(age, in.profile) -
		w.ActivityImpact.LocationRestriction*LocationRestriction(aqi)

	factors.PM25Penalty = pm25Pen
	factors.AQIPenalty = aqiPen
	factors.NO2Penalty = NO2Penalty(no2)
	factors.PollutantLoadPenalty = loadPen
	factors.AgeVulnerability = ageVuln
	factors.BMIImpact = bmiPen
	factors.ActivityVuln = actVuln
	factors.RespiratoryCondition = condPen
	factors.CardioCondition = cardioCondPen
	factors.GeneralHealth = healthPen
	factors.ExposureTime = exposure
	factors.LongTermExposure = longTerm
	factors.OutdoorRestriction = outdoor

	return ComponentScores{
		Respiratory:    clamp(respiratory, 0, 100),
		Cardiovascular: clamp(cardiovascular, 0, 100),
		Immune:         clamp(immune, 0, 100),
		ActivityImpact: clamp(activityImpact, 0, 100),
	}
}

// pollutantAverage averages the measured members of {PM2.5, PM10, NO2, O3}.
// Zero-valued pollutants are treated as unmeasured and skipped, so a reading
// with only PM2.5 is not diluted toward zero.
func pollutantAverage(r *AirQualityReading) float64 {
	var n, sum float64
	for _, v := range []float64{r.PM25, r.PM10, r.NO2, r.O3} {
		if v > 0 {
			n++
			sum += v
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}
