package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"parking-core/internal/audit"
	billing "parking-core/internal/billing/domain"
	invoices "parking-core/internal/invoices/domain"
	"parking-core/internal/observability/metrics"
	observations "parking-core/internal/observations/domain"
	sessions "parking-core/internal/sessions/domain"
)

// ObservationRepository persists camera observations. MarkVerified flips the
// observation to verified and, when invoice is non-nil, inserts the fine in
// the same transaction; it returns observations.ErrAlreadyVerified when
// another run settled the observation first.
type ObservationRepository interface {
	CreateBatch(ctx context.Context, batch []*observations.Observation) error
	ListUnverified(ctx context.Context, limit int) ([]observations.Observation, error)
	MarkVerified(ctx context.Context, observationID string, invoice *invoices.Invoice) error
}

// CoveringSessionFinder answers whether a session covered an instant.
type CoveringSessionFinder interface {
	FindCovering(ctx context.Context, license, street string, at time.Time) (*sessions.Session, error)
}

// RateProvider looks up the street price card.
type RateProvider interface {
	FindByStreet(ctx context.Context, street string) (billing.Rate, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// IngestedObservation is one camera sighting submitted for ingestion.
type IngestedObservation struct {
	License    string
	Street     string
	ObservedAt time.Time
}

// Report summarizes one reconciliation run.
type Report struct {
	Processed int
	Covered   int
	Fined     int
	Cleared   int
	Skipped   int
	Failed    int
}

// Service ingests observations and reconciles them against sessions.
type Service struct {
	repo      ObservationRepository
	sessions  CoveringSessionFinder
	rates     RateProvider
	clock     Clock
	batchSize int
	auditor   audit.Logger
	logger    *log.Logger
}

// NewService constructs the service.
func NewService(
	repo ObservationRepository,
	coveringSessions CoveringSessionFinder,
	rates RateProvider,
	clock Clock,
	batchSize int,
	auditor audit.Logger,
	logger *log.Logger,
) (*Service, error) {
	if repo == nil {
		return nil, errors.New("observation service: nil repository")
	}
	if coveringSessions == nil {
		return nil, errors.New("observation service: nil session finder")
	}
	if rates == nil {
		return nil, errors.New("observation service: nil rate provider")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("observation service: batch size must be positive, got %d", batchSize)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		sessions:  coveringSessions,
		rates:     rates,
		clock:     clock,
		batchSize: batchSize,
		auditor:   auditor,
		logger:    logger,
	}, nil
}

// Ingest persists a batch of camera observations as unverified.
func (s *Service) Ingest(ctx context.Context, batch []IngestedObservation) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	records := make([]*observations.Observation, 0, len(batch))
	for _, item := range batch {
		if item.License == "" {
			return 0, observations.ErrEmptyLicense
		}
		if item.Street == "" {
			return 0, observations.ErrEmptyStreet
		}
		if item.ObservedAt.IsZero() {
			return 0, observations.ErrZeroInstant
		}
		records = append(records, &observations.Observation{
			ID:         uuid.NewString(),
			License:    item.License,
			Street:     item.Street,
			ObservedAt: item.ObservedAt.UTC(),
		})
	}
	if err := s.repo.CreateBatch(ctx, records); err != nil {
		return 0, fmt.Errorf("observation ingest: %w", err)
	}
	metrics.AddObservationsIngested(len(records))

	metadata, _ := json.Marshal(struct {
		Count int `json:"count"`
	}{Count: len(records)})
	auditErr := s.auditor.Log(ctx, audit.Entry{
		Action:       "observation.ingest",
		ResourceType: "observation_batch",
		Metadata:     metadata,
		CreatedAt:    s.clock.Now().UTC(),
	})
	if auditErr != nil && s.logger != nil {
		s.logger.Printf("audit error: action=observation.ingest err=%v", auditErr)
	}
	return len(records), nil
}

// RunReconciliation settles every unverified observation in the current
// batch: covered ones are just verified, uncovered ones on a fined street get
// an invoice. Each observation is settled independently so one store failure
// does not abort the run; failed observations stay unverified and are picked
// up by the next run.
func (s *Service) RunReconciliation(ctx context.Context) (Report, error) {
	started := time.Now()

	unverified, err := s.repo.ListUnverified(ctx, s.batchSize)
	if err != nil {
		metrics.ObserveReconcileRun(metrics.ResultError, time.Since(started))
		return Report{}, fmt.Errorf("reconcile: list unverified: %w", err)
	}

	var report Report
	for _, observation := range unverified {
		outcome := s.settle(ctx, observation)
		metrics.IncObservationProcessed(outcome)
		switch outcome {
		case metrics.OutcomeCovered:
			report.Covered++
			report.Processed++
		case metrics.OutcomeFined:
			report.Fined++
			report.Processed++
		case metrics.OutcomeCleared:
			report.Cleared++
			report.Processed++
		case metrics.OutcomeSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}

	metrics.ObserveReconcileRun(metrics.ResultSuccess, time.Since(started))
	if s.logger != nil {
		s.logger.Printf("reconcile run: processed=%d covered=%d fined=%d cleared=%d skipped=%d failed=%d",
			report.Processed, report.Covered, report.Fined, report.Cleared, report.Skipped, report.Failed)
	}
	return report, nil
}

func (s *Service) settle(ctx context.Context, observation observations.Observation) string {
	covering, err := s.sessions.FindCovering(ctx, observation.License, observation.Street, observation.ObservedAt)
	if err != nil {
		s.logFailure(observation.ID, "session lookup", err)
		return metrics.OutcomeError
	}

	if covering != nil {
		if err := s.repo.MarkVerified(ctx, observation.ID, nil); err != nil {
			return s.markOutcome(observation.ID, err)
		}
		return metrics.OutcomeCovered
	}

	rate, err := s.rates.FindByStreet(ctx, observation.Street)
	if err != nil {
		s.logFailure(observation.ID, "rate lookup", err)
		return metrics.OutcomeError
	}

	amount := billing.BillObservation(rate)
	var invoice *invoices.Invoice
	if amount > 0 {
		invoice = &invoices.Invoice{
			ID:            uuid.NewString(),
			ObservationID: observation.ID,
			IssuedAt:      s.clock.Now().UTC(),
			AmountCents:   amount,
		}
	}

	if err := s.repo.MarkVerified(ctx, observation.ID, invoice); err != nil {
		return s.markOutcome(observation.ID, err)
	}
	if invoice == nil {
		return metrics.OutcomeCleared
	}
	metrics.IncInvoiceIssued(metrics.SourceObservation)
	return metrics.OutcomeFined
}

func (s *Service) markOutcome(observationID string, err error) string {
	if errors.Is(err, observations.ErrAlreadyVerified) {
		return metrics.OutcomeSkipped
	}
	s.logFailure(observationID, "mark verified", err)
	return metrics.OutcomeError
}

func (s *Service) logFailure(observationID, step string, err error) {
	if s.logger != nil {
		s.logger.Printf("reconcile error: observation=%s step=%s err=%v", observationID, step, err)
	}
}
