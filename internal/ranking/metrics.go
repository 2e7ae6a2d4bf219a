package ranking

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricCacheHits       = "ranking_cache_hits_total"
	MetricCacheMisses     = "ranking_cache_misses_total"
	MetricLoadDuration    = "ranking_load_duration_seconds"
	MetricLoadErrorsTotal = "ranking_load_errors_total"
)

// Metrics contains Prometheus metrics for ranking file loading.
// All operations are thread-safe.
type Metrics struct {
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	loadDuration prometheus.Histogram
	loadErrors   *prometheus.CounterVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCacheHits,
			Help: "Total number of ranking loads served from the in-process cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCacheMisses,
			Help: "Total number of ranking loads that parsed a file",
		}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricLoadDuration,
			Help:    "Time spent reading and parsing a ranking file",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		loadErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricLoadErrorsTotal,
				Help: "Total number of failed ranking loads, by reason",
			},
			[]string{"reason"},
		),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncCacheHits increments the cache hit counter.
func (m *Metrics) IncCacheHits() {
	m.cacheHits.Inc()
}

// IncCacheMisses increments the cache miss counter.
func (m *Metrics) IncCacheMisses() {
	m.cacheMisses.Inc()
}

// ObserveLoadDuration records how long a file parse took.
func (m *Metrics) ObserveLoadDuration(seconds float64) {
	m.loadDuration.Observe(seconds)
}

// IncLoadErrors increments the error counter for reason.
func (m *Metrics) IncLoadErrors(reason string) {
	m.loadErrors.WithLabelValues(reason).Inc()
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.cacheHits,
		m.cacheMisses,
		m.loadDuration,
		m.loadErrors,
	}
}
