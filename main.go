package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"parking-core/internal/audit"
	billingapp "parking-core/internal/billing/application"
	billingrepo "parking-core/internal/billing/infrastructure/postgres"
	invoicesapp "parking-core/internal/invoices/application"
	invoicesrepo "parking-core/internal/invoices/infrastructure/postgres"
	invoiceshttp "parking-core/internal/invoices/interfaces/http"
	"parking-core/internal/observability/metrics"
	observationsapp "parking-core/internal/observations/application"
	observationsrepo "parking-core/internal/observations/infrastructure/postgres"
	observationshttp "parking-core/internal/observations/interfaces/http"
	platformpg "parking-core/internal/platform/postgres"
	sessionsapp "parking-core/internal/sessions/application"
	sessionsrepo "parking-core/internal/sessions/infrastructure/postgres"
	sessionshttp "parking-core/internal/sessions/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	billingCfg, err := billingapp.LoadConfig()
	if err != nil {
		logger.Fatalf("billing config error: %v", err)
	}
	schedule, err := billingCfg.BuildSchedule()
	if err != nil {
		logger.Fatalf("billing schedule error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}
	if err := platformpg.EnsureSchema(context.Background(), db); err != nil {
		logger.Fatalf("db schema error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	sessionRepo := sessionsrepo.NewSessionRepository(db)
	rateRepo := billingrepo.NewRateRepository(db)
	observationRepo := observationsrepo.NewObservationRepository(db)
	invoiceRepo := invoicesrepo.NewInvoiceRepository(db)

	clock := systemClock{}

	sessionService, err := sessionsapp.NewService(sessionRepo, rateRepo, schedule, clock, auditRepo, logger)
	if err != nil {
		logger.Fatalf("session service error: %v", err)
	}
	observationService, err := observationsapp.NewService(
		observationRepo,
		sessionRepo,
		rateRepo,
		clock,
		billingCfg.Reconcile.BatchSize,
		auditRepo,
		logger,
	)
	if err != nil {
		logger.Fatalf("observation service error: %v", err)
	}
	invoiceService, err := invoicesapp.NewService(invoiceRepo, clock, auditRepo, logger)
	if err != nil {
		logger.Fatalf("invoice service error: %v", err)
	}

	reconcileInterval := time.Duration(billingCfg.Reconcile.IntervalMinutes) * time.Minute
	scheduler := observationsapp.NewScheduler(observationService, reconcileInterval, logger)
	go scheduler.Start(context.Background())

	sessionHandler, err := sessionshttp.NewHandler(sessionService)
	if err != nil {
		logger.Fatalf("sessions handler error: %v", err)
	}
	observationHandler, err := observationshttp.NewHandler(observationService)
	if err != nil {
		logger.Fatalf("observations handler error: %v", err)
	}
	invoiceHandler, err := invoiceshttp.NewHandler(invoiceService)
	if err != nil {
		logger.Fatalf("invoices handler error: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/sessions/", sessionHandler)
	mux.Handle("/api/v1/observations", observationHandler)
	mux.Handle("/api/v1/observations/", observationHandler)
	mux.Handle("/api/v1/invoices", invoiceHandler)
	mux.Handle("/api/v1/invoices/", invoiceHandler)
	for _, format := range []string{"csv", "xlsx", "pdf"} {
		exportHandler, err := invoiceshttp.NewExportHandler(invoiceService, format)
		if err != nil {
			logger.Fatalf("export handler error: %v", err)
		}
		mux.Handle("/api/v1/exports/invoices."+format, exportHandler)
	}
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	logger.Printf("billing window %s-%s zone=%s excluded=%s reconcile=%s",
		billingCfg.Schedule.DailyStart, billingCfg.Schedule.DailyEnd,
		billingCfg.Schedule.TimeZone, billingCfg.Schedule.ExcludedWeekday, reconcileInterval)

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(mux, logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
}

func loadConfig() config {
	return config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		elapsed := time.Since(start)
		metrics.ObserveHTTPRequest(r.Method, r.URL.Path, resp.status, elapsed)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, elapsed)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
