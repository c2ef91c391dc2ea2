package memory

import (
	"context"
	"sort"
	"sync"

	invoices "parking-core/internal/invoices/domain"
)

// ResolveSource maps an invoice to its source refs for ListByLicense. Tests
// provide one backed by their session/observation fixtures; the postgres
// repository does the same with a join.
type ResolveSource func(ctx context.Context, invoice invoices.Invoice) (*invoices.SessionRef, *invoices.ObservationRef, error)

// InvoiceRepository is an in-memory invoice store for tests.
type InvoiceRepository struct {
	mu      sync.Mutex
	byID    map[string]*invoices.Invoice
	resolve ResolveSource
}

// NewInvoiceRepository constructs a repository. resolve may be nil when
// ListByLicense is not exercised.
func NewInvoiceRepository(resolve ResolveSource) *InvoiceRepository {
	return &InvoiceRepository{
		byID:    make(map[string]*invoices.Invoice),
		resolve: resolve,
	}
}

// Save inserts an invoice.
func (r *InvoiceRepository) Save(ctx context.Context, invoice *invoices.Invoice) error {
	_ = ctx
	if invoice == nil {
		return invoices.ErrNilInvoice
	}
	if err := invoice.Validate(); err != nil {
		return err
	}
	clone := *invoice
	r.mu.Lock()
	r.byID[invoice.ID] = &clone
	r.mu.Unlock()
	return nil
}

// FindByID fetches an invoice, nil when missing.
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*invoices.Invoice, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	invoice, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	clone := *invoice
	return &clone, nil
}

// ListByLicense returns invoices whose resolved source carries the license.
func (r *InvoiceRepository) ListByLicense(ctx context.Context, license string) ([]invoices.Detail, error) {
	all := r.All()
	var details []invoices.Detail
	for _, invoice := range all {
		if r.resolve == nil {
			continue
		}
		session, observation, err := r.resolve(ctx, invoice)
		if err != nil {
			return nil, err
		}
		matches := (session != nil && session.License == license) ||
			(observation != nil && observation.License == license)
		if !matches {
			continue
		}
		details = append(details, invoices.Detail{
			Invoice:     invoice,
			Session:     session,
			Observation: observation,
		})
	}
	return details, nil
}

// MarkPaid flips an invoice to paid.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	invoice, ok := r.byID[id]
	if !ok {
		return invoices.ErrNotFound
	}
	invoice.Paid = true
	return nil
}

// All returns every stored invoice, oldest first, for assertions.
func (r *InvoiceRepository) All() []invoices.Invoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]invoices.Invoice, 0, len(r.byID))
	for _, invoice := range r.byID {
		result = append(result, *invoice)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].IssuedAt.Before(result[j].IssuedAt)
	})
	return result
}
