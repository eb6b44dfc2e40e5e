package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_media_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "product_media_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "product_media_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Upload pipeline metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_media_uploads_total",
			Help: "Total number of upload pipeline runs",
		},
		[]string{"kind", "status"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "product_media_pipeline_duration_seconds",
			Help:    "Duration of one full variant pipeline run",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	VariantsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_media_variants_generated_total",
			Help: "Total number of variant files written",
		},
		[]string{"kind", "variant"},
	)

	CleanupRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "product_media_cleanup_runs_total",
			Help: "Total number of failed pipeline runs that triggered cleanup",
		},
	)

	CleanupFilesRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "product_media_cleanup_files_removed_total",
			Help: "Total number of tracked files removed during cleanup",
		},
	)

	FrameExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "product_media_frame_extraction_duration_seconds",
			Help:    "Duration of video mid-frame extraction via ffmpeg",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_media_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "product_media_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Auth metrics
var (
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_media_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)
)

// Memory backpressure metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "product_media_memory_usage_ratio",
			Help: "Heap usage as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "product_media_memory_paused",
			Help: "Whether upload processing is paused for memory pressure (0 or 1)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "product_media_memory_gc_pauses_total",
			Help: "Times upload processing was paused and a GC forced",
		},
	)
)
