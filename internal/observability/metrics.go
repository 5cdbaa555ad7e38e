// Package observability holds the Prometheus instrumentation for the risk
// scoring service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis pipeline.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec   // labels: outcome={success,fallback,error}
	AnalysisDuration *prometheus.HistogramVec // labels: coverage
	BatchSize        prometheus.Histogram

	// Weather supplier metrics.
	WeatherLookups  *prometheus.CounterVec // labels: source={live-api,cache,simulated-fallback}
	WeatherFailures prometheus.Counter

	// Snapshot store metrics.
	SnapshotsSaved  prometheus.Counter
	SnapshotsFailed prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.BatchSize,
		m.WeatherLookups,
		m.WeatherFailures,
		m.SnapshotsSaved,
		m.SnapshotsFailed,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskradar",
			Name:      "analyses_total",
			Help:      "Coverage analyses by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "riskradar",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a single coverage analysis.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}, []string{"coverage"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "riskradar",
			Name:      "batch_size",
			Help:      "Number of policies per batch analysis request.",
			Buckets:   []float64{1, 5, 10, 20, 30, 50, 75, 100},
		}),
		WeatherLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskradar",
			Name:      "weather_lookups_total",
			Help:      "Weather lookups by serving source.",
		}, []string{"source"}),
		WeatherFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riskradar",
			Name:      "weather_failures_total",
			Help:      "Live weather fetches that fell back to synthetic data.",
		}),
		SnapshotsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riskradar",
			Name:      "snapshots_saved_total",
			Help:      "Risk snapshots persisted successfully.",
		}),
		SnapshotsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riskradar",
			Name:      "snapshots_failed_total",
			Help:      "Risk snapshot writes that failed.",
		}),
	}
}
