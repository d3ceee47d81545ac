// Package metrics provides Prometheus metrics for the churn prediction
// service: pipeline throughput and failure counters, prediction score
// and latency distributions, and model freshness.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	PredictionsTotal   prometheus.Counter // Successful predictions served
	ValidationFailures prometheus.Counter // Requests rejected for bad input fields
	IntegrityFailures  prometheus.Counter // Artifact/pipeline drift failures
	UnknownCategories  prometheus.Counter // Categorical values mapped to the unknown code
	BatchesTotal       prometheus.Counter // Batch prediction calls served

	PredictionLatency prometheus.Histogram // End-to-end single prediction latency
	PredictionScores  prometheus.Histogram // Distribution of churn probabilities
	BatchSize         prometheus.Histogram // Records per batch call

	ModelAge prometheus.Gauge // Seconds since the artifact was trained
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry, which keeps
// test runs isolated from the global registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "churn_predictions_total",
			Help: "Total number of successful churn predictions",
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "churn_validation_failures_total",
			Help: "Total number of requests rejected for invalid input fields",
		}),
		IntegrityFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "churn_pipeline_integrity_failures_total",
			Help: "Total number of failures caused by artifact/pipeline drift",
		}),
		UnknownCategories: factory.NewCounter(prometheus.CounterOpts{
			Name: "churn_unknown_categories_total",
			Help: "Total number of categorical values encoded via the unknown fallback",
		}),
		BatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "churn_batches_total",
			Help: "Total number of batch prediction calls",
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "churn_prediction_latency_seconds",
			Help:    "End-to-end latency of single predictions in seconds",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		PredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "churn_prediction_scores",
			Help:    "Distribution of predicted churn probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "churn_batch_size",
			Help:    "Number of records per batch prediction call",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		ModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "churn_model_age_seconds",
			Help: "Age of the loaded model artifact in seconds",
		}),
	}
}
