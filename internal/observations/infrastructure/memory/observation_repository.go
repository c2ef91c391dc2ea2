package memory

import (
	"context"
	"sort"
	"sync"

	invoices "parking-core/internal/invoices/domain"
	observations "parking-core/internal/observations/domain"
)

// InvoiceSink receives fines created while verifying an observation.
type InvoiceSink interface {
	Save(ctx context.Context, invoice *invoices.Invoice) error
}

// ObservationRepository is an in-memory observation store for tests. It keeps
// the postgres semantics: MarkVerified is conditional on the observation
// still being unverified, and the invoice lands atomically with the flip.
type ObservationRepository struct {
	mu       sync.Mutex
	byID     map[string]*observations.Observation
	invoices InvoiceSink
}

// NewObservationRepository constructs a repository. sink may be nil.
func NewObservationRepository(sink InvoiceSink) *ObservationRepository {
	return &ObservationRepository{
		byID:     make(map[string]*observations.Observation),
		invoices: sink,
	}
}

// CreateBatch inserts unverified observations.
func (r *ObservationRepository) CreateBatch(ctx context.Context, batch []*observations.Observation) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, observation := range batch {
		if observation == nil {
			return observations.ErrNilObservation
		}
		clone := *observation
		r.byID[observation.ID] = &clone
	}
	return nil
}

// ListUnverified returns up to limit unverified observations, oldest first.
func (r *ObservationRepository) ListUnverified(ctx context.Context, limit int) ([]observations.Observation, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []observations.Observation
	for _, observation := range r.byID {
		if !observation.Verified {
			result = append(result, *observation)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ObservedAt.Before(result[j].ObservedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// MarkVerified flips the observation and records the invoice as one unit.
func (r *ObservationRepository) MarkVerified(ctx context.Context, observationID string, invoice *invoices.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	observation, ok := r.byID[observationID]
	if !ok {
		return observations.ErrNotFound
	}
	if observation.Verified {
		return observations.ErrAlreadyVerified
	}
	if invoice != nil && r.invoices != nil {
		if err := r.invoices.Save(ctx, invoice); err != nil {
			return err
		}
	}
	observation.Verified = true
	return nil
}

// Get returns a stored observation for assertions.
func (r *ObservationRepository) Get(id string) (observations.Observation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	observation, ok := r.byID[id]
	if !ok {
		return observations.Observation{}, false
	}
	return *observation, true
}
