package memory

import (
	"context"
	"sync"

	billing "parking-core/internal/billing/domain"
)

// RateRepository is an in-memory rate table for tests.
type RateRepository struct {
	mu    sync.RWMutex
	rates map[string]billing.Rate
}

// NewRateRepository constructs an empty repository.
func NewRateRepository() *RateRepository {
	return &RateRepository{rates: make(map[string]billing.Rate)}
}

// Put registers a street rate.
func (r *RateRepository) Put(rate billing.Rate) {
	r.mu.Lock()
	r.rates[rate.Street] = rate
	r.mu.Unlock()
}

// FindByStreet returns the rate for a street, zero when unknown.
func (r *RateRepository) FindByStreet(ctx context.Context, street string) (billing.Rate, error) {
	_ = ctx
	r.mu.RLock()
	rate, ok := r.rates[street]
	r.mu.RUnlock()
	if !ok {
		return billing.Rate{Street: street}, nil
	}
	return rate, nil
}
