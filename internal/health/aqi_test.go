package health

import (
	"testing"
	"time"
)

func TestComputeAQI(t *testing.T) {
	tests := []struct {
		name         string
		reading      AirQualityReading
		wantAQI      int
		wantCategory string
		wantPrimary  string
	}{
		{"no particulates", AirQualityReading{NO2: 80}, 0, AQIGood, ""},
		{"pm25 boundary of good", AirQualityReading{PM25: 12.0}, 50, AQIGood, "pm25"},
		{"pm25 moderate", AirQualityReading{PM25: 35.4}, 100, AQIModerate, "pm25"},
		{"pm25 unhealthy", AirQualityReading{PM25: 55.5}, 151, AQIUnhealthy, "pm25"},
		{"pm10 dominates", AirQualityReading{PM25: 10, PM10: 200}, 123, AQIUnhealthySensitive, "pm10"},
		{"pm25 dominates", AirQualityReading{PM25: 60, PM10: 60}, 153, AQIUnhealthy, "pm25"},
		{"extreme caps at 500", AirQualityReading{PM25: 2000}, 500, AQIHazardous, "pm25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aqi, cat, primary := ComputeAQI(&tt.reading)
			if aqi != tt.wantAQI || cat != tt.wantCategory || primary != tt.wantPrimary {
				t.Errorf("ComputeAQI = (%d, %s, %s), want (%d, %s, %s)",
					aqi, cat, primary, tt.wantAQI, tt.wantCategory, tt.wantPrimary)
			}
		})
	}
}

func TestAQICategoryFor(t *testing.T) {
	tests := []struct {
		aqi  int
		want string
	}{
		{0, AQIGood}, {50, AQIGood},
		{51, AQIModerate}, {100, AQIModerate},
		{101, AQIUnhealthySensitive}, {150, AQIUnhealthySensitive},
		{151, AQIUnhealthy}, {200, AQIUnhealthy},
		{201, AQIVeryUnhealthy}, {300, AQIVeryUnhealthy},
		{301, AQIHazardous}, {500, AQIHazardous},
	}
	for _, tt := range tests {
		if got := AQICategoryFor(tt.aqi); got != tt.want {
			t.Errorf("AQICategoryFor(%d) = %s, want %s", tt.aqi, got, tt.want)
		}
	}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   string
	}{
		{"too few values", []int{80, 90}, ""},
		{"exactly three has no baseline", []int{80, 90, 100}, ""},
		{"worsening", []int{50, 55, 60, 90, 95, 100}, TrendWorsening},
		{"improving", []int{100, 95, 90, 60, 55, 50}, TrendImproving},
		{"stable within threshold", []int{80, 80, 80, 82, 83, 81}, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Trend(tt.values); got != tt.want {
				t.Errorf("Trend(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestStatistics(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := Statistics(nil); got.Count != 0 {
			t.Errorf("expected zero value, got %+v", got)
		}
	})

	t.Run("window", func(t *testing.T) {
		base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		readings := []AirQualityReading{
			{AQI: 90, PM25: 30, ReadingTime: base.Add(2 * time.Hour)},
			{AQI: 50, PM25: 10, ReadingTime: base},
			{AQI: 70, ReadingTime: base.Add(time.Hour)}, // PM2.5 unmeasured
		}
		stats := Statistics(readings)

		if stats.Count != 3 {
			t.Errorf("count = %d, want 3", stats.Count)
		}
		if stats.AQIMin != 50 || stats.AQIMax != 90 {
			t.Errorf("min/max = %d/%d, want 50/90", stats.AQIMin, stats.AQIMax)
		}
		if stats.AQIAvg != 70 {
			t.Errorf("avg = %v, want 70", stats.AQIAvg)
		}
		if stats.AQIMedian != 70 {
			t.Errorf("median = %d, want 70", stats.AQIMedian)
		}
		if stats.PM25Avg != 20 {
			t.Errorf("pm25 avg = %v, want 20 (unmeasured readings skipped)", stats.PM25Avg)
		}
		if !stats.From.Equal(base) || !stats.To.Equal(base.Add(2*time.Hour)) {
			t.Errorf("window = %v..%v", stats.From, stats.To)
		}
	})
}

func TestAdviceFor(t *testing.T) {
	// Every band must produce non-empty guidance in all three fields.
	for _, aqi := range []int{0, 50, 51, 100, 101, 150, 151, 200, 201, 300, 301, 500} {
		a := AdviceFor(aqi)
		if a.General == "" || a.Sensitive == "" || a.Activities == "" {
			t.Errorf("AdviceFor(%d) returned empty guidance: %+v", aqi, a)
		}
	}
	if AdviceFor(40) == AdviceFor(120) {
		t.Error("good and unhealthy-for-sensitive bands should differ")
	}
}
