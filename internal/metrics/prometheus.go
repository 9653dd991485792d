// Package metrics defines the Prometheus instrumentation for the
// answerphone-detection pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the recovery pipeline.
type Metrics struct {
	// Reconstruction metrics
	Reconstructions prometheus.Counter
	ContainerSize   prometheus.Histogram

	// Transcription metrics
	TranscriptionSuccesses prometheus.Counter
	TranscriptionFailures  prometheus.Counter
	TranscriptionDuration  prometheus.Histogram

	// Batch item metrics
	ItemsCompleted prometheus.Counter
	ItemsFailed    *prometheus.CounterVec
	ItemDuration   prometheus.Histogram
	Detections     prometheus.Counter

	// Batch run metrics
	BatchRuns     prometheus.Counter
	BatchSize     prometheus.Histogram
	BatchDuration prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all pipeline metrics on the given
// registerer. Pass prometheus.DefaultRegisterer in production; tests use a
// fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Reconstructions: factory.NewCounter(prometheus.CounterOpts{
			Name: "amd_reconstructions_total",
			Help: "Total number of containers reconstructed",
		}),
		ContainerSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "amd_container_size_bytes",
			Help:    "Size of reconstructed containers in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
		}),

		TranscriptionSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "amd_transcription_successes_total",
			Help: "Total number of successful transcription requests",
		}),
		TranscriptionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "amd_transcription_failures_total",
			Help: "Total number of failed transcription requests",
		}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "amd_transcription_duration_seconds",
			Help:    "Duration of transcription requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~2 minutes
		}),

		ItemsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "amd_items_completed_total",
			Help: "Total number of batch items that completed the pipeline",
		}),
		ItemsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "amd_items_failed_total",
			Help: "Total number of batch items that failed, by stage",
		}, []string{"stage"}),
		ItemDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "amd_item_duration_seconds",
			Help:    "Wall-clock duration of batch items",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~7 minutes
		}),
		Detections: factory.NewCounter(prometheus.CounterOpts{
			Name: "amd_detections_total",
			Help: "Total number of answering-machine detections",
		}),

		BatchRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "amd_batch_runs_total",
			Help: "Total number of batch runs",
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "amd_batch_size_items",
			Help:    "Number of items per batch run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1 to ~2048 items
		}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "amd_batch_duration_seconds",
			Help:    "Duration of batch runs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68 minutes
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "amd_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "amd_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
}

// RecordReconstruction records a successful container reconstruction.
func (m *Metrics) RecordReconstruction(containerBytes int) {
	m.Reconstructions.Inc()
	m.ContainerSize.Observe(float64(containerBytes))
}

// RecordTranscriptionSuccess records a successful transcription.
func (m *Metrics) RecordTranscriptionSuccess(durationSeconds float64) {
	m.TranscriptionSuccesses.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
}

// RecordTranscriptionFailure records a failed transcription.
func (m *Metrics) RecordTranscriptionFailure(durationSeconds float64) {
	m.TranscriptionFailures.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
}

// RecordItemCompleted records a batch item that finished the pipeline.
func (m *Metrics) RecordItemCompleted(detected bool, durationSeconds float64) {
	m.ItemsCompleted.Inc()
	m.ItemDuration.Observe(durationSeconds)
	if detected {
		m.Detections.Inc()
	}
}

// RecordItemFailed records a batch item that failed at the given stage.
func (m *Metrics) RecordItemFailed(stage string, durationSeconds float64) {
	m.ItemsFailed.WithLabelValues(stage).Inc()
	m.ItemDuration.Observe(durationSeconds)
}

// RecordBatch records a completed batch run.
func (m *Metrics) RecordBatch(items int, durationSeconds float64) {
	m.BatchRuns.Inc()
	m.BatchSize.Observe(float64(items))
	m.BatchDuration.Observe(durationSeconds)
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}
