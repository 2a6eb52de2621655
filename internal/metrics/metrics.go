// Package metrics holds the Prometheus instruments shared by the pipeline stages.
//
// Instruments register with the default registry on package load; the relay server exposes them at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Extraction
	ObjectsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotlake_objects_extracted_total",
			Help: "Raw playlist objects written to the landing area",
		},
		[]string{"status"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spotlake_upstream_request_duration_seconds",
			Help:    "Duration of Spotify Web API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)

	// Storage
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotlake_storage_operations_total",
			Help: "Object storage operations by driver, operation and outcome",
		},
		[]string{"driver", "operation", "status"},
	)

	// Jobs
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotlake_job_runs_total",
			Help: "Finished job runs by job name and status",
		},
		[]string{"job", "status"},
	)

	JobRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spotlake_job_run_duration_seconds",
			Help:    "Wall time of finished job runs",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14), // 50ms to ~7min
		},
		[]string{"job"},
	)

	JobRunsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spotlake_job_runs_active",
			Help: "Job runs currently executing",
		},
	)

	// Transform
	RowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotlake_rows_written_total",
			Help: "Rows appended to each output dataset",
		},
		[]string{"dataset"},
	)

	ObjectsArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spotlake_objects_archived_total",
			Help: "Raw objects moved from the landing area to the archive",
		},
	)

	ObjectsUndecodable = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spotlake_objects_undecodable_total",
			Help: "Landing objects that could not be decoded as a playlist record",
		},
	)

	// Relay
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotlake_relay_notifications_total",
			Help: "Object-created notifications received by transport and outcome",
		},
		[]string{"transport", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spotlake_http_request_duration_seconds",
			Help:    "Relay HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordExtraction counts one extractor run.
func RecordExtraction(err error) {
	ObjectsExtracted.WithLabelValues(status(err)).Inc()
}

// RecordUpstreamRequest observes one Spotify API call.
func RecordUpstreamRequest(endpoint string, duration time.Duration, err error) {
	UpstreamRequestDuration.WithLabelValues(endpoint, status(err)).Observe(duration.Seconds())
}

// RecordStorageOperation counts one call against an object store.
func RecordStorageOperation(driver, operation string, err error) {
	StorageOperations.WithLabelValues(driver, operation, status(err)).Inc()
}

// RecordJobRun observes a finished run.
func RecordJobRun(job, runStatus string, duration time.Duration) {
	JobRuns.WithLabelValues(job, runStatus).Inc()
	JobRunDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// TrackActiveRun moves the active run gauge up or down.
func TrackActiveRun(inc bool) {
	if inc {
		JobRunsActive.Inc()
	} else {
		JobRunsActive.Dec()
	}
}

// RecordRowsWritten adds n rows to dataset.
func RecordRowsWritten(dataset string, n int) {
	RowsWritten.WithLabelValues(dataset).Add(float64(n))
}

// RecordNotification counts one relay notification.
func RecordNotification(transport string, err error) {
	Notifications.WithLabelValues(transport, status(err)).Inc()
}

// RecordHTTPRequest observes one relay HTTP request.
func RecordHTTPRequest(method, route, statusCode string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, statusCode).Observe(duration.Seconds())
}
