package annotation

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricAnnotationsSaved   = "annotations_saved_total"
	MetricCorruptRecords     = "annotation_corrupt_records_total"
	MetricConfidenceSaved    = "confidence_saved_total"
	MetricLowConfidenceViews = "confidence_low_views_total"
)

// Metrics contains Prometheus metrics for annotation persistence.
// All operations are thread-safe.
type Metrics struct {
	annotationsSaved   *prometheus.CounterVec
	corruptRecords     prometheus.Counter
	confidenceSaved    *prometheus.CounterVec
	lowConfidenceViews prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		annotationsSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricAnnotationsSaved,
				Help: "Total number of annotation records written, by answer",
			},
			[]string{"answer"},
		),
		corruptRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCorruptRecords,
			Help: "Total number of stored records that failed to decode or held an unknown answer",
		}),
		confidenceSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricConfidenceSaved,
				Help: "Total number of confidence records written, by value",
			},
			[]string{"confidence"},
		),
		lowConfidenceViews: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricLowConfidenceViews,
			Help: "Total number of confidence loads below the annotation threshold",
		}),
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

// IncAnnotationsSaved increments the saved counter for answer.
func (m *Metrics) IncAnnotationsSaved(answer string) {
	m.annotationsSaved.WithLabelValues(answer).Inc()
}

// IncCorruptRecords increments the corrupt record counter.
func (m *Metrics) IncCorruptRecords() {
	m.corruptRecords.Inc()
}

// IncConfidenceSaved increments the confidence counter for value.
func (m *Metrics) IncConfidenceSaved(value string) {
	m.confidenceSaved.WithLabelValues(value).Inc()
}

// IncLowConfidenceViews increments the low confidence counter.
func (m *Metrics) IncLowConfidenceViews() {
	m.lowConfidenceViews.Inc()
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.annotationsSaved,
		m.corruptRecords,
		m.confidenceSaved,
		m.lowConfidenceViews,
	}
}
