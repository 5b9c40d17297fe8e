package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// collection pipeline.
type Metrics struct {
	PayloadsFetched  *prometheus.CounterVec // labels: provider, endpoint
	FetchErrors      *prometheus.CounterVec // labels: provider
	MappingErrors    *prometheus.CounterVec // labels: provider
	DataPointsLoaded *prometheus.CounterVec // labels: provider, product
	RunDuration      prometheus.Histogram
	ProviderDuration *prometheus.HistogramVec // labels: provider
	CollectorRunning prometheus.Gauge
	LastRunPoints    prometheus.Gauge
}

// NewMetrics creates and registers all collector metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PayloadsFetched,
		m.FetchErrors,
		m.MappingErrors,
		m.DataPointsLoaded,
		m.RunDuration,
		m.ProviderDuration,
		m.CollectorRunning,
		m.LastRunPoints,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PayloadsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wxbench",
			Name:      "payloads_fetched_total",
			Help:      "Provider payloads fetched successfully, by provider and endpoint.",
		}, []string{"provider", "endpoint"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wxbench",
			Name:      "fetch_errors_total",
			Help:      "Provider collection failures, by provider.",
		}, []string{"provider"}),
		MappingErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wxbench",
			Name:      "mapping_errors_total",
			Help:      "Payloads rejected by a mapper, by provider.",
		}, []string{"provider"}),
		DataPointsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wxbench",
			Name:      "data_points_loaded_total",
			Help:      "Normalized data points written to the sinks.",
		}, []string{"provider", "product"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wxbench",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete collection run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wxbench",
			Name:      "provider_duration_seconds",
			Help:      "Fetch-and-map duration per provider within a run.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
		CollectorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wxbench",
			Name:      "collector_running",
			Help:      "1 while a collection run is in progress, 0 otherwise.",
		}),
		LastRunPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wxbench",
			Name:      "last_run_data_points",
			Help:      "Data points emitted by the most recent collection run.",
		}),
	}
}
