// Package metrics provides Prometheus metrics for the sentiment API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PredictionsTotal counts gateway calls by outcome (success, failure).
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentiment",
			Name:      "predictions_total",
			Help:      "Total number of prediction attempts",
		},
		[]string{"path", "outcome"},
	)

	// PredictionDuration measures gateway round-trips.
	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sentiment",
			Name:      "prediction_duration_seconds",
			Help:      "Duration of prediction calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// BatchesTotal counts processed batches by status.
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentiment",
			Name:      "batches_total",
			Help:      "Total number of processed batches",
		},
		[]string{"status"},
	)

	// BatchSize observes the number of texts per batch.
	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sentiment",
			Name:      "batch_size",
			Help:      "Distribution of batch sizes",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
	)

	// RejectedUploadsTotal counts uploads rejected before processing.
	RejectedUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentiment",
			Name:      "rejected_uploads_total",
			Help:      "Total number of uploads rejected by validation or parsing",
		},
		[]string{"reason"},
	)

	// StoreErrorsTotal counts prediction log storage errors.
	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentiment",
			Name:      "store_errors_total",
			Help:      "Total number of prediction log storage errors",
		},
		[]string{"operation"},
	)
)

// Prediction paths
const (
	PathSingle = "single"
	PathBatch  = "batch"
)

// RecordPrediction records one gateway call.
func RecordPrediction(path string, ok bool, seconds float64) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	PredictionsTotal.WithLabelValues(path, outcome).Inc()
	PredictionDuration.WithLabelValues(path).Observe(seconds)
}

// RecordBatch records a finished batch.
func RecordBatch(status string, size int) {
	BatchesTotal.WithLabelValues(status).Inc()
	BatchSize.Observe(float64(size))
}

// RecordRejectedUpload records an upload rejected before any prediction.
func RecordRejectedUpload(reason string) {
	RejectedUploadsTotal.WithLabelValues(reason).Inc()
}

// RecordStoreError records a storage failure.
func RecordStoreError(operation string) {
	StoreErrorsTotal.WithLabelValues(operation).Inc()
}
