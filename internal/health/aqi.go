package health

import (
	"math"
	"sort"
	"time"
)

// AQI category labels, per the EPA scale.
const (
	AQIGood                 = "good"
	AQIModerate             = "moderate"
	AQIUnhealthySensitive   = "unhealthy_for_sensitive"
	AQIUnhealthy            = "unhealthy"
	AQIVeryUnhealthy        = "very_unhealthy"
	AQIHazardous            = "hazardous"
)

type aqiBreakpoint struct {
	cLo, cHi float64
	iLo, iHi float64
}

var pm25Breakpoints = []aqiBreakpoint{
	{0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 500.4, 301, 500},
}

var pm10Breakpoints = []aqiBreakpoint{
	{0, 54, 0, 50},
	{55, 154, 51, 100},
	{155, 254, 101, 150},
	{255, 354, 151, 200},
	{355, 424, 201, 300},
	{425, 604, 301, 500},
}

func subIndex(c float64, bps []aqiBreakpoint) int {
	if c <= 0 {
		return 0
	}
	last := bps[len(bps)-1]
	if c >= last.cHi {
		return int(last.iHi)
	}
	for _, bp := range bps {
		if c <= bp.cHi {
			return int(math.Round((bp.iHi-bp.iLo)/(bp.cHi-bp.cLo)*(c-bp.cLo) + bp.iLo))
		}
	}
	return int(last.iHi)
}

// ComputeAQI derives the AQI, its category, and the primary pollutant from a
// reading's PM2.5 and PM10 concentrations. The highest pollutant sub-index
// wins, per the EPA method. Readings with no particulate data yield AQI 0.
func ComputeAQI(r *AirQualityReading) (aqi int, category string, primary string) {
	type candidate struct {
		name string
		aqi  int
	}
	var candidates []candidate
	if r.PM25 > 0 {
		candidates = append(candidates, candidate{"pm25", subIndex(r.PM25, pm25Breakpoints)})
	}
	if r.PM10 > 0 {
		candidates = append(candidates, candidate{"pm10", subIndex(r.PM10, pm10Breakpoints)})
	}
	if len(candidates) == 0 {
		return 0, AQIGood, ""
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.aqi > best.aqi {
			best = c
		}
	}
	return best.aqi, AQICategoryFor(best.aqi), best.name
}

// AQICategoryFor maps an AQI value to its EPA category label.
func AQICategoryFor(aqi int) string {
	switch {
	case aqi <= 50:
		return AQIGood
	case aqi <= 100:
		return AQIModerate
	case aqi <= 150:
		return AQIUnhealthySensitive
	case aqi <= 200:
		return AQIUnhealthy
	case aqi <= 300:
		return AQIVeryUnhealthy
	default:
		return AQIHazardous
	}
}

// Trend labels.
const (
	TrendImproving = "improving"
	TrendWorsening = "worsening"
	TrendStable    = "stable"
)

// Trend compares the three most recent AQI values against the earlier mean.
// Differences under 5 AQI points count as stable. Fewer than 3 values gives
// no trend.
func Trend(aqiValues []int) string {
	if len(aqiValues) < 3 {
		return ""
	}
	var recent float64
	for _, v := range aqiValues[len(aqiValues)-3:] {
		recent += float64(v)
	}
	recent /= 3

	earlier := aqiValues[:len(aqiValues)-3]
	if len(earlier) == 0 {
		return ""
	}
	var prior float64
	for _, v := range earlier {
		prior += float64(v)
	}
	prior /= float64(len(earlier))

	diff := recent - prior
	switch {
	case math.Abs(diff) < 5:
		return TrendStable
	case diff < 0:
		return TrendImproving
	default:
		return TrendWorsening
	}
}

// ReadingStats summarizes a window of readings for trend display.
type ReadingStats struct {
	Count     int        `json:"count"`
	AQIMin    int        `json:"aqi_min"`
	AQIMax    int        `json:"aqi_max"`
	AQIAvg    float64    `json:"aqi_avg"`
	AQIMedian int        `json:"aqi_median"`
	PM25Avg   float64    `json:"pm25_avg"`
	Trend     string     `json:"trend,omitempty"`
	From      time.Time  `json:"from"`
	To        time.Time  `json:"to"`
}

// Statistics computes summary statistics over a set of readings. Returns the
// zero value for an empty input.
func Statistics(readings []AirQualityReading) ReadingStats {
	if len(readings) == 0 {
		return ReadingStats{}
	}

	sorted := make([]AirQualityReading, len(readings))
	copy(sorted, readings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ReadingTime.Before(sorted[j].ReadingTime)
	})

	stats := ReadingStats{
		Count:  len(sorted),
		AQIMin: sorted[0].AQI,
		AQIMax: sorted[0].AQI,
		From:   sorted[0].ReadingTime,
		To:     sorted[len(sorted)-1].ReadingTime,
	}

	aqis := make([]int, 0, len(sorted))
	var aqiSum, pm25Sum float64
	var pm25Count int
	for _, r := range sorted {
		aqis = append(aqis, r.AQI)
		aqiSum += float64(r.AQI)
		if r.AQI < stats.AQIMin {
			stats.AQIMin = r.AQI
		}
		if r.AQI > stats.AQIMax {
			stats.AQIMax = r.AQI
		}
		if r.PM25 > 0 {
			pm25Sum += r.PM25
			pm25Count++
		}
	}
	stats.AQIAvg = aqiSum / float64(len(sorted))
	if pm25Count > 0 {
		stats.PM25Avg = pm25Sum / float64(pm25Count)
	}

	med := make([]int, len(aqis))
	copy(med, aqis)
	sort.Ints(med)
	stats.AQIMedian = med[len(med)/2]

	stats.Trend = Trend(aqis)
	return stats
}
