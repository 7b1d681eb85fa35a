package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	readingsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airlens",
		Subsystem: "readings",
		Name:      "ingested_total",
		Help:      "Air quality readings ingested, by source.",
	}, []string{"source"})

	scoresComputed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airlens",
		Subsystem: "scoring",
		Name:      "computed_total",
		Help:      "Health scores computed, by risk category.",
	}, []string{"category"})

	scoreLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "airlens",
		Subsystem: "scoring",
		Name:      "compute_duration_seconds",
		Help:      "Wall time of a full score computation including storage.",
		Buckets:   prometheus.DefBuckets,
	})

	alertsRaised = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airlens",
		Subsystem: "alerts",
		Name:      "raised_total",
		Help:      "Alerts raised, by priority.",
	}, []string{"priority"})

	scoresRefreshed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "airlens",
		Subsystem: "refresher",
		Name:      "scores_refreshed_total",
		Help:      "Stale scores recomputed by the background refresher.",
	})

	lastRefreshGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "airlens",
		Subsystem: "refresher",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the most recent refresh pass.",
	})
)

func init() {
	prometheus.MustRegister(
		readingsIngested, scoresComputed, scoreLatency,
		alertsRaised, scoresRefreshed, lastRefreshGauge,
	)
}

// RecordReadingIngested counts a stored reading.
func RecordReadingIngested(source string) {
	if source == "" {
		source = "unknown"
	}
	readingsIngested.WithLabelValues(source).Inc()
}

// RecordScoreComputed counts a computed score and its latency.
func RecordScoreComputed(category string, elapsed time.Duration) {
	scoresComputed.WithLabelValues(category).Inc()
	scoreLatency.Observe(elapsed.Seconds())
}

// RecordAlertRaised counts a raised alert.
func RecordAlertRaised(priority string) {
	alertsRaised.WithLabelValues(priority).Inc()
}

// RecordRefreshPass updates the refresher watermark and refreshed-score count.
func RecordRefreshPass(refreshed int, ts time.Time) {
	if refreshed > 0 {
		scoresRefreshed.Add(float64(refreshed))
	}
	if !ts.IsZero() {
		lastRefreshGauge.Set(float64(ts.Unix()))
	}
}
