package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every loginetl collector. A private registry keeps repeated
// registration in tests from panicking on the global default.
var Registry = prometheus.NewRegistry()

var (
	MessagesExtractedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_messages_extracted_total",
			Help: "Total number of messages received from the queue (count)",
		},
	)

	RecordsTransformedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_records_transformed_total",
			Help: "Total number of canonical records produced by the transformer (count)",
		},
	)

	RecordsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_records_skipped_total",
			Help: "Total number of messages skipped during transform (count)",
		},
		[]string{"reason"},
	)

	RowsInsertedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_rows_inserted_total",
			Help: "Total number of rows committed to the target table (count)",
		},
	)

	RowsFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_rows_failed_total",
			Help: "Total number of rows that failed to insert and were rolled back (count)",
		},
	)

	RejectsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_rejects_published_total",
			Help: "Total number of reject events published to the broker (count)",
		},
		[]string{"stage", "status"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "etl_stage_duration_ms",
			Help:    "Duration of each pipeline stage in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"stage", "status"},
	)

	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_runs_total",
			Help: "Total number of pipeline runs by outcome (count)",
		},
		[]string{"outcome"},
	)

	LastRunTimestamp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "etl_last_run_timestamp_seconds",
			Help: "Unix time of the last pipeline run by outcome (seconds)",
		},
		[]string{"outcome"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"database", "operation", "status"},
	)

	DatabaseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_ms",
			Help:    "Duration of database queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"database", "operation"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"operation"},
	)
)

var registerOnce sync.Once

// Register adds all collectors to Registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		Registry.MustRegister(
			MessagesExtractedTotal,
			RecordsTransformedTotal,
			RecordsSkippedTotal,
			RowsInsertedTotal,
			RowsFailedTotal,
			RejectsPublishedTotal,
			StageDuration,
			RunsTotal,
			LastRunTimestamp,
			DatabaseQueriesTotal,
			DatabaseQueryDuration,
			CircuitBreakerState,
			CircuitBreakerRequests,
			CircuitBreakerFailures,
			RetryAttemptsTotal,
		)
	})
}

func ObserveStageDuration(stage, status string, duration time.Duration) {
	StageDuration.WithLabelValues(stage, status).Observe(float64(duration.Milliseconds()))
}

func IncRecordsSkipped(reason string) {
	RecordsSkippedTotal.WithLabelValues(reason).Inc()
}

func IncRejectPublished(stage, status string) {
	RejectsPublishedTotal.WithLabelValues(stage, status).Inc()
}

func ObserveDatabaseQuery(database, operation, status string, duration time.Duration) {
	DatabaseQueriesTotal.WithLabelValues(database, operation, status).Inc()
	DatabaseQueryDuration.WithLabelValues(database, operation).Observe(float64(duration.Milliseconds()))
}

func RecordRun(outcome string, at time.Time) {
	RunsTotal.WithLabelValues(outcome).Inc()
	LastRunTimestamp.WithLabelValues(outcome).Set(float64(at.Unix()))
}
