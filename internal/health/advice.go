package health

// Advice carries the per-AQI-band guidance strings attached to ingested
// readings and alerts.
type Advice struct {
	General    string `json:"general"`
	Sensitive  string `json:"sensitive"`
	Activities string `json:"activities"`
}

// AdviceFor returns banded health guidance for an AQI value.
func AdviceFor(aqi int) Advice {
	switch {
	case aqi <= 50:
		return Advice{
			General:    "Air quality is satisfactory for most people.",
			Sensitive:  "No precautions needed for sensitive groups.",
			Activities: "All outdoor activities are safe.",
		}
	case aqi <= 100:
		return Advice{
			General:    "Air quality is acceptable for most people.",
			Sensitive:  "Unusually sensitive people should consider reducing prolonged outdoor exertion.",
			Activities: "Normal outdoor activities are safe for most people.",
		}
	case aqi <= 150:
		return Advice{
			General:    "Members of sensitive groups may experience health effects.",
			Sensitive:  "Sensitive groups should limit prolonged outdoor exertion.",
			Activities: "Consider reducing prolonged or heavy exertion outdoors.",
		}
	case aqi <= 200:
		return Advice{
			General:    "Everyone may begin to experience health effects.",
			Sensitive:  "Sensitive groups should avoid outdoor exertion.",
			Activities: "Reduce or reschedule strenuous outdoor activities.",
		}
	case aqi <= 300:
		return Advice{
			General:    "Health alert: everyone may experience serious effects.",
			Sensitive:  "Sensitive groups should remain indoors and avoid outdoor activities.",
			Activities: "Avoid all outdoor strenuous activities.",
		}
	default:
		return Advice{
			General:    "Health warnings of emergency conditions.",
			Sensitive:  "All sensitive groups should remain indoors and avoid all outdoor activities.",
			Activities: "Avoid all outdoor activities. Stay indoors with air filtration if possible.",
		}
	}
}
