package health

// SeverityAdjustment bends the averaged score for extreme real-time
// conditions without re-deriving the four components: hazardous air drags
// the overall down, clean air nudges it up.
func SeverityAdjustment(aqi float64) float64 {
	switch {
	case aqi > 200:
		return -0.10
	case aqi > 150:
		return -0.05
	case aqi < 50:
		return 0.05
	default:
		return 0
	}
}

// riskMultiplier scales the derived risk level by the user's self-reported
// risk. Empty self-risk is treated as medium.
func riskMultiplier(risk SelfRisk) float64 {
	switch risk {
	case SelfRiskHigh:
		return 1.3
	case SelfRiskLow:
		return 0.8
	default:
		return 1.0
	}
}

// CategoryFor maps a numeric risk level onto its ordinal category. The
// category must always agree with this step function; any divergence is a
// regression.
func CategoryFor(riskLevel float64) RiskCategory {
	switch {
	case riskLevel >= 0.8:
		return RiskCritical
	case riskLevel >= 0.6:
		return RiskHigh
	case riskLevel >= 0.3:
		return RiskMedium
	default:
		return RiskLow
	}
}

// aggregate combines the component scores into the overall score, risk level,
// and risk category.
func aggregate(scores ComponentScores, aqi float64, selfRisk SelfRisk, factors *ContributingFactors) (overall, riskLevel float64, category RiskCategory) {
	mean := (scores.Respiratory + scores.Cardiovascular + scores.Immune + scores.ActivityImpact) / 4

	adj := SeverityAdjustment(aqi)
	overall = clamp(mean*(1+adj), 0, 100)

	mult := riskMultiplier(selfRisk)
	riskLevel = clamp((100-overall)/100*mult, 0, 1)
	category = CategoryFor(riskLevel)

	factors.SeverityAdjustment = adj
	factors.RiskMultiplier = mult
	return overall, riskLevel, category
}
