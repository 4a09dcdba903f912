package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of the event pipeline.
type Metrics struct {
	// Gauges (current values)
	CursorHeight prometheus.Gauge

	// Counters (cumulative values)
	BlocksProcessedTotal prometheus.Counter
	EventsProcessedTotal *prometheus.CounterVec
	EventsSkippedTotal   *prometheus.CounterVec
	HandlerErrorsTotal   *prometheus.CounterVec
	DecodeFailuresTotal  *prometheus.CounterVec

	// Histograms (distributions)
	BlockApplyDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "swapstream"
	}

	return &Metrics{
		CursorHeight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "cursor_height",
			Help:      "Height of the last fully applied block",
		}),
		BlocksProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "blocks_processed_total",
			Help:      "Total number of blocks applied",
		}),
		EventsProcessedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "events_processed_total",
			Help:      "Total number of events handled, by event name",
		}, []string{"event"}),
		EventsSkippedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "events_skipped_total",
			Help:      "Total number of events with no handler at the block's version",
		}, []string{"event"}),
		HandlerErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "handler_errors_total",
			Help:      "Total number of handler failures, by event name",
		}, []string{"event"}),
		DecodeFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "decode_failures_total",
			Help:      "Total number of payload decode failures, by event name",
		}, []string{"event"}),
		BlockApplyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "block_apply_duration_seconds",
			Help:      "Time spent applying one block inside its transaction",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
