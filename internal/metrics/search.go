package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search engine Prometheus metrics.
var (
	ClassifierRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intentsearch",
			Name:      "classifier_requests_total",
			Help:      "Total number of intent classification requests",
		},
		[]string{"provider", "status"},
	)

	ClassifierRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "intentsearch",
			Name:      "classifier_request_duration_seconds",
			Help:      "Intent classification request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intentsearch",
			Name:      "cache_total",
			Help:      "Session cache hits and misses",
		},
		[]string{"cache", "result"}, // "classification"/"result", "hit"/"miss"
	)

	SourceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intentsearch",
			Name:      "source_requests_total",
			Help:      "Total number of search source requests",
		},
		[]string{"source", "status"},
	)

	SourceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "intentsearch",
			Name:      "source_request_duration_seconds",
			Help:      "Search source request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"source"},
	)

	SearchOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intentsearch",
			Name:      "search_outcomes_total",
			Help:      "Search submissions by outcome kind",
		},
		[]string{"kind"},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "intentsearch",
			Name:      "sessions_active",
			Help:      "Sessions currently held in the registry",
		},
	)

	TelemetryEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intentsearch",
			Name:      "telemetry_events_total",
			Help:      "Telemetry events emitted",
		},
		[]string{"event", "fallback"},
	)
)

var registerOnce sync.Once

// RegisterSearchMetrics registers the search engine metrics. Called once from main.
func RegisterSearchMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ClassifierRequestsTotal)
		prometheus.MustRegister(ClassifierRequestDuration)
		prometheus.MustRegister(CacheTotal)
		prometheus.MustRegister(SourceRequestsTotal)
		prometheus.MustRegister(SourceRequestDuration)
		prometheus.MustRegister(SearchOutcomesTotal)
		prometheus.MustRegister(SessionsActive)
		prometheus.MustRegister(TelemetryEventsTotal)
	})
}
