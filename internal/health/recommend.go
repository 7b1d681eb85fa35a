package health

import "time"

// recommendationInputs is everything the rule list needs to decide which
// recommendations fire.
type recommendationInputs struct {
	overall        float64
	respiratory    float64
	activityImpact float64
	category       RiskCategory
	aqi            float64
	activityLevel  ActivityLevel
	now            time.Time
}

// buildRecommendations evaluates the rule list in fixed priority order. Rules
// are independent: several may fire on the same computation, and the output
// preserves evaluation order.
func buildRecommendations(in recommendationInputs) []Recommendation {
	recs := []Recommendation{}

	if in.category == RiskCritical || in.overall < 30 {
		recs = append(recs, Recommendation{
			Type:        RecMedical,
			Priority:    PriorityCritical,
			Title:       "Severe air quality health risk",
			Description: "Current conditions pose a serious risk given your health profile. Take protective measures immediately and consult a medical professional if symptoms develop.",
			Actions: []string{
				"Limit all outdoor activity",
				"Use an air purifier indoors",
				"Wear an N95 mask when going outside",
				"Monitor symptoms such as shortness of breath or chest tightness",
			},
			Category:  "health_alert",
			Urgent:    true,
			CreatedAt: in.now,
		})
	}

	if in.respiratory < 60 {
		prio := PriorityHigh
		if in.category == RiskCritical {
			prio = PriorityCritical
		}
		recs = append(recs, Recommendation{
			Type:        RecRespiratory,
			Priority:    prio,
			Title:       "Protect your respiratory health",
			Description: "Pollutant levels are elevated enough to stress your airways. Reduce exposure and keep rescue medication accessible if prescribed.",
			Actions: []string{
				"Keep windows closed during peak pollution hours",
				"Avoid busy roads when walking or cycling",
				"Keep any prescribed inhaler within reach",
			},
			Category:  "respiratory",
			Urgent:    prio == PriorityCritical,
			CreatedAt: in.now,
		})
	}

	if in.activityImpact < 50 {
		recs = append(recs, Recommendation{
			Type:        RecActivity,
			Priority:    PriorityMedium,
			Title:       "Adjust your exercise plans",
			Description: "Outdoor exercise carries elevated risk right now. Shift workouts indoors or to cleaner hours.",
			Actions: []string{
				"Move workouts indoors",
				"Exercise early morning when pollution is lower",
				"Choose routes away from traffic corridors",
			},
			Category:  "activity",
			Urgent:    false,
			CreatedAt: in.now,
		})
	}

	if in.aqi > 100 {
		recs = append(recs, Recommendation{
			Type:        RecIndoor,
			Priority:    PriorityMedium,
			Title:       "Improve your indoor air",
			Description: "Outdoor air quality is unhealthy. Small indoor measures substantially cut your exposure.",
			Actions: []string{
				"Seal gaps around windows and doors",
				"Run HEPA filtration if available",
				"Avoid indoor pollution sources like frying or candles",
			},
			Category:  "indoor",
			Urgent:    false,
			CreatedAt: in.now,
		})
	}

	if in.activityLevel == ActivitySedentary {
		recs = append(recs, Recommendation{
			Type:        RecLifestyle,
			Priority:    PriorityLow,
			Title:       "Build up gradual activity",
			Description: "Regular moderate activity improves resilience to air pollution over time. Start small on clean-air days.",
			Actions: []string{
				"Take short walks on days with good air quality",
				"Increase duration gradually week over week",
			},
			Category:  "lifestyle",
			Urgent:    false,
			CreatedAt: in.now,
		})
	}

	return recs
}
