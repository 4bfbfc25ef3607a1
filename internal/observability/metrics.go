package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the hazard
// aggregation pipeline.
type Metrics struct {
	SourceFetches *prometheus.CounterVec   // labels: source={sensor,notices}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: source={sensor,notices}
	CacheLookups  *prometheus.CounterVec   // labels: key, result={hit,miss,error}

	NoticesDropped prometheus.Counter
	PollCycles     *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus_hazard",
			Name:      "source_fetches_total",
			Help:      "Upstream source fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campus_hazard",
			Name:      "source_fetch_duration_seconds",
			Help:      "Upstream source fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus_hazard",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by key and result.",
		}, []string{"key", "result"}),
		NoticesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "campus_hazard",
			Name:      "notices_dropped_total",
			Help:      "Notice articles dropped because their date could not be parsed.",
		}),
		PollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus_hazard",
			Name:      "poll_cycles_total",
			Help:      "Background poll cycles by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.SourceFetches,
		m.FetchDuration,
		m.CacheLookups,
		m.NoticesDropped,
		m.PollCycles,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SourceFetches:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "campus_hazard", Name: "source_fetches_total"}, []string{"source", "outcome"}),
		FetchDuration:  prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "campus_hazard", Name: "source_fetch_duration_seconds"}, []string{"source"}),
		CacheLookups:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "campus_hazard", Name: "cache_lookups_total"}, []string{"key", "result"}),
		NoticesDropped: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "campus_hazard", Name: "notices_dropped_total"}),
		PollCycles:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "campus_hazard", Name: "poll_cycles_total"}, []string{"outcome"}),
	}
}
