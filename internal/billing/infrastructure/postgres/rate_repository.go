package postgres

import (
	"context"
	"database/sql"
	"errors"

	billing "parking-core/internal/billing/domain"
)

// RateRepository reads street rates. Rates are reference data maintained out
// of band; this repository never writes.
type RateRepository struct {
	db *sql.DB
}

// NewRateRepository constructs a repository.
func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{db: db}
}

// FindByStreet returns the rate for a street. An unknown street is a zero
// rate, not an error.
func (r *RateRepository) FindByStreet(ctx context.Context, street string) (billing.Rate, error) {
	if r == nil || r.db == nil {
		return billing.Rate{}, errors.New("rate repo: nil db")
	}
	var rate billing.Rate
	err := r.db.QueryRowContext(ctx, `
SELECT street, minute_cents, fine_cents
FROM parking_rates
WHERE street = $1
LIMIT 1`, street).Scan(&rate.Street, &rate.MinuteCents, &rate.FineCents)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.Rate{Street: street}, nil
	}
	if err != nil {
		return billing.Rate{}, err
	}
	return rate, nil
}
