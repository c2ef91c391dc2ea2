package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"parking-core/internal/audit"
	billing "parking-core/internal/billing/domain"
	invoices "parking-core/internal/invoices/domain"
	"parking-core/internal/observability/metrics"
	sessions "parking-core/internal/sessions/domain"
)

// SessionRepository persists parking sessions. FindOpenByLicense returns nil
// when the license has no running session. Create fails with
// sessions.ErrOpenSessionExists when a concurrent start won the race.
// CloseWithInvoice persists the closed session and, when invoice is non-nil,
// the invoice in one transaction.
type SessionRepository interface {
	FindOpenByLicense(ctx context.Context, license string) (*sessions.Session, error)
	Create(ctx context.Context, session *sessions.Session) error
	CloseWithInvoice(ctx context.Context, session *sessions.Session, invoice *invoices.Invoice) error
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

// StopResult is the outcome of stopping a session. Invoice is nil when the
// session billed nothing.
type StopResult struct {
	Session sessions.Session
	Invoice *invoices.Invoice
}

// Service handles the parking session lifecycle.
type Service struct {
	repo     SessionRepository
	rates    RateProvider
	schedule billing.Schedule
	clock    Clock
	auditor  audit.Logger
	logger   *log.Logger
}

// NewService constructs the service.
func NewService(
	repo SessionRepository,
	rates RateProvider,
	schedule billing.Schedule,
	clock Clock,
	auditor audit.Logger,
	logger *log.Logger,
) (*Service, error) {
	if repo == nil {
		return nil, errors.New("session service: nil repository")
	}
	if rates == nil {
		return nil, errors.New("session service: nil rate provider")
	}
	if schedule.Location == nil {
		return nil, errors.New("session service: zero schedule")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{
		repo:     repo,
		rates:    rates,
		schedule: schedule,
		clock:    clock,
		auditor:  auditor,
		logger:   logger,
	}, nil
}

// Start opens a session for a license on a street. A license can run at most
// one session at a time.
func (s *Service) Start(ctx context.Context, license, street string) (sessions.Session, error) {
	if license == "" {
		return sessions.Session{}, sessions.ErrEmptyLicense
	}
	if street == "" {
		return sessions.Session{}, sessions.ErrEmptyStreet
	}

	existing, err := s.repo.FindOpenByLicense(ctx, license)
	if err != nil {
		return sessions.Session{}, fmt.Errorf("session start: %w", err)
	}
	if existing != nil {
		return sessions.Session{}, sessions.ErrOpenSessionExists
	}

	session := &sessions.Session{
		ID:      uuid.NewString(),
		License: license,
		Street:  street,
		StartAt: s.clock.Now().UTC(),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return sessions.Session{}, err
	}

	metrics.IncSessionStarted()
	s.audit(ctx, "session.start", license, session.ID)
	return *session, nil
}

// Stop closes the license's open session and bills it. The closed session and
// any invoice are persisted as one unit.
func (s *Service) Stop(ctx context.Context, license string) (StopResult, error) {
	if license == "" {
		return StopResult{}, sessions.ErrEmptyLicense
	}

	session, err := s.repo.FindOpenByLicense(ctx, license)
	if err != nil {
		return StopResult{}, fmt.Errorf("session stop: %w", err)
	}
	if session == nil {
		return StopResult{}, sessions.ErrNoOpenSession
	}

	end := s.clock.Now().UTC()
	session.EndAt = &end

	rate, err := s.rates.FindByStreet(ctx, session.Street)
	if err != nil {
		return StopResult{}, fmt.Errorf("session stop: rate lookup: %w", err)
	}

	amount, err := billing.BillSession(session.StartAt, end, rate, s.schedule)
	if err != nil {
		// End before start means the stored session is corrupt. Surface it.
		return StopResult{}, fmt.Errorf("session stop: bill session %s: %w", session.ID, err)
	}

	var invoice *invoices.Invoice
	if amount > 0 {
		invoice = &invoices.Invoice{
			ID:          uuid.NewString(),
			SessionID:   session.ID,
			IssuedAt:    end,
			AmountCents: amount,
		}
	}

	if err := s.repo.CloseWithInvoice(ctx, session, invoice); err != nil {
		return StopResult{}, fmt.Errorf("session stop: %w", err)
	}

	metrics.IncSessionStopped()
	if invoice != nil {
		metrics.IncInvoiceIssued(metrics.SourceSession)
	}
	s.audit(ctx, "session.stop", license, session.ID)
	return StopResult{Session: *session, Invoice: invoice}, nil
}

// Open returns the license's running session.
func (s *Service) Open(ctx context.Context, license string) (sessions.Session, error) {
	if license == "" {
		return sessions.Session{}, sessions.ErrEmptyLicense
	}
	session, err := s.repo.FindOpenByLicense(ctx, license)
	if err != nil {
		return sessions.Session{}, fmt.Errorf("session lookup: %w", err)
	}
	if session == nil {
		return sessions.Session{}, sessions.ErrNoOpenSession
	}
	return *session, nil
}

func (s *Service) audit(ctx context.Context, action, license, sessionID string) {
	err := s.auditor.Log(ctx, audit.Entry{
		Action:       action,
		License:      license,
		ResourceType: "session",
		ResourceID:   sessionID,
		CreatedAt:    s.clock.Now().UTC(),
	})
	if err != nil && s.logger != nil {
		s.logger.Printf("audit error: action=%s err=%v", action, err)
	}
}
