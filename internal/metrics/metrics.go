package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nexus"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attachments",
			Name:      "uploads_total",
			Help:      "Attachment uploads by parent entity type and outcome.",
		},
		[]string{"entity_type", "success"},
	)

	uploadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "attachments",
			Name:      "upload_bytes",
			Help:      "Size of uploaded attachments.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 9), // 1KiB to ~64MiB
		},
	)

	blobCleanupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "blobs",
			Name:      "cleanup_failures_total",
			Help:      "Blob deletions that failed and were left to the sweeper.",
		},
	)

	orphanSweeps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "blobs",
			Name:      "orphans_swept_total",
			Help:      "Orphaned blob keys processed by the sweeper.",
		},
		[]string{"success"},
	)

	publicCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		uploads,
		uploadBytes,
		blobCleanupFailures,
		orphanSweeps,
		publicCache,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted and RequestFinished bracket one HTTP request.
func RequestStarted() {
	httpInFlight.Inc()
}

func RequestFinished(method, route string, status int, elapsed time.Duration) {
	httpInFlight.Dec()
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordUpload counts one attach attempt.
func RecordUpload(entityType string, size int64, ok bool) {
	uploads.WithLabelValues(entityType, strconv.FormatBool(ok)).Inc()
	if ok {
		uploadBytes.Observe(float64(size))
	}
}

func RecordBlobCleanupFailure() {
	blobCleanupFailures.Inc()
}

func RecordOrphanSweep(ok bool) {
	orphanSweeps.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	publicCache.WithLabelValues(result).Inc()
}
