package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	valuations    *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastValuation *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		valuations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valupull_valuations_total",
				Help: "Total number of source extractions by outcome",
			},
			[]string{"source", "status"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valupull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastValuation: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "valupull_last_valuation_hkd",
				Help: "Last successful valuation amount per source",
			},
			[]string{"source"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "valupull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordValuation records one extraction outcome.
func (r *Recorder) RecordValuation(source, status string) {
	r.valuations.WithLabelValues(source, status).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastValuation records the last successful amount for a source.
func (r *Recorder) RecordLastValuation(source string, amount float64) {
	r.lastValuation.WithLabelValues(source).Set(amount)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
