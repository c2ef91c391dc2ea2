package metrics

import (
	"database/sql"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "parking_"

	resultSuccess = "success"
	resultError   = "error"

	outcomeCovered = "covered"
	outcomeFined   = "fined"
	outcomeCleared = "cleared"
	outcomeSkipped = "skipped"
	outcomeError   = "error"

	sourceSession     = "session"
	sourceObservation = "observation"
)

var (
	registerOnce sync.Once

	sessionsStarted prometheus.Counter
	sessionsStopped prometheus.Counter

	observationsIngested prometheus.Counter

	reconcileRuns         *prometheus.CounterVec
	reconcileLatency      *prometheus.HistogramVec
	observationsProcessed *prometheus.CounterVec

	invoicesIssued         prometheus.Counter
	invoicesIssuedBySource *prometheus.CounterVec
	invoicesPaid           prometheus.Counter

	invoiceExportTotal   *prometheus.CounterVec
	invoiceExportLatency *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		sessionsStarted = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "sessions_started_total",
				Help: "Total parking sessions started",
			},
		)
		sessionsStopped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "sessions_stopped_total",
				Help: "Total parking sessions stopped",
			},
		)

		observationsIngested = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "observations_ingested_total",
				Help: "Total camera observations ingested",
			},
		)

		reconcileRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconcile_runs_total",
				Help: "Total reconciliation runs by result",
			},
			[]string{"result"},
		)
		reconcileLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "reconcile_latency_seconds",
				Help:    "Reconciliation run latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		observationsProcessed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "observations_processed_total",
				Help: "Total observations settled by reconciliation, by outcome",
			},
			[]string{"outcome"},
		)

		invoicesIssued = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoices_issued_total",
				Help: "Total invoices issued",
			},
		)
		invoicesIssuedBySource = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoices_issued_by_source_total",
				Help: "Total invoices issued by source",
			},
			[]string{"source"},
		)
		invoicesPaid = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoices_paid_total",
				Help: "Total invoices paid",
			},
		)

		invoiceExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_export_total",
				Help: "Total invoice export operations by format and result",
			},
			[]string{"format", "result"},
		)
		invoiceExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "invoice_export_latency_seconds",
				Help:    "Invoice export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		)

		prometheus.MustRegister(
			sessionsStarted,
			sessionsStopped,
			observationsIngested,
			reconcileRuns,
			reconcileLatency,
			observationsProcessed,
			invoicesIssued,
			invoicesIssuedBySource,
			invoicesPaid,
			invoiceExportTotal,
			invoiceExportLatency,
			httpRequests,
			httpLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "observations_unverified",
			Help: "Observations waiting for reconciliation",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM vehicle_observations WHERE verified = FALSE")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "invoices_unpaid",
			Help: "Invoices not yet paid",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM parking_invoices WHERE paid = FALSE")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}

// IncSessionStarted counts a started session.
func IncSessionStarted() {
	if sessionsStarted != nil {
		sessionsStarted.Inc()
	}
}

// IncSessionStopped counts a stopped session.
func IncSessionStopped() {
	if sessionsStopped != nil {
		sessionsStopped.Inc()
	}
}

// AddObservationsIngested counts ingested observations.
func AddObservationsIngested(count int) {
	if observationsIngested != nil && count > 0 {
		observationsIngested.Add(float64(count))
	}
}

// ObserveReconcileRun records a reconciliation run's latency and result.
func ObserveReconcileRun(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reconcileRuns != nil {
		reconcileRuns.WithLabelValues(result).Inc()
	}
	if reconcileLatency != nil {
		reconcileLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncObservationProcessed counts one settled observation by outcome.
func IncObservationProcessed(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	if observationsProcessed != nil {
		observationsProcessed.WithLabelValues(outcome).Inc()
	}
}

// IncInvoiceIssued counts an issued invoice by source.
func IncInvoiceIssued(source string) {
	if invoicesIssued != nil {
		invoicesIssued.Inc()
	}
	if invoicesIssuedBySource != nil {
		if source == "" {
			source = "unknown"
		}
		invoicesIssuedBySource.WithLabelValues(source).Inc()
	}
}

// IncInvoicePaid counts a paid invoice.
func IncInvoicePaid() {
	if invoicesPaid != nil {
		invoicesPaid.Inc()
	}
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method, path).Observe(duration.Seconds())
	}
}

// ObserveInvoiceExport records export latency and result.
func ObserveInvoiceExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if invoiceExportTotal != nil {
		invoiceExportTotal.WithLabelValues(format, result).Inc()
	}
	if invoiceExportLatency != nil {
		invoiceExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	OutcomeCovered = outcomeCovered
	OutcomeFined   = outcomeFined
	OutcomeCleared = outcomeCleared
	OutcomeSkipped = outcomeSkipped
	OutcomeError   = outcomeError

	SourceSession     = sourceSession
	SourceObservation = sourceObservation
)
