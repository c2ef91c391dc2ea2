package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"parking-core/internal/audit"
	invoices "parking-core/internal/invoices/domain"
	"parking-core/internal/observability/metrics"
)

// InvoiceRepository reads and settles invoices. MarkPaid returns
// invoices.ErrNotFound when the invoice does not exist.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id string) (*invoices.Invoice, error)
	ListByLicense(ctx context.Context, license string) ([]invoices.Detail, error)
	MarkPaid(ctx context.Context, id string) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Service handles the invoice read model and payment.
type Service struct {
	repo    InvoiceRepository
	clock   Clock
	auditor audit.Logger
	logger  *log.Logger
}

// NewService constructs the service.
func NewService(repo InvoiceRepository, clock Clock, auditor audit.Logger, logger *log.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("invoice service: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{repo: repo, clock: clock, auditor: auditor, logger: logger}, nil
}

// ListByLicense returns every invoice billed to the license, with its source.
func (s *Service) ListByLicense(ctx context.Context, license string) ([]invoices.Detail, error) {
	if license == "" {
		return nil, errors.New("invoice service: empty license")
	}
	details, err := s.repo.ListByLicense(ctx, license)
	if err != nil {
		return nil, fmt.Errorf("invoice list: %w", err)
	}
	return details, nil
}

// Get fetches one invoice.
func (s *Service) Get(ctx context.Context, id string) (invoices.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return invoices.Invoice{}, fmt.Errorf("invoice lookup: %w", err)
	}
	if invoice == nil {
		return invoices.Invoice{}, invoices.ErrNotFound
	}
	return *invoice, nil
}

// Pay settles an invoice. Paying an already-paid invoice is a no-op.
func (s *Service) Pay(ctx context.Context, id string) error {
	if err := s.repo.MarkPaid(ctx, id); err != nil {
		return err
	}
	metrics.IncInvoicePaid()
	err := s.auditor.Log(ctx, audit.Entry{
		Action:       "invoice.pay",
		ResourceType: "invoice",
		ResourceID:   id,
		CreatedAt:    s.clock.Now().UTC(),
	})
	if err != nil && s.logger != nil {
		s.logger.Printf("audit error: action=invoice.pay err=%v", err)
	}
	return nil
}
