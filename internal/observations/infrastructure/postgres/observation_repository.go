package postgres

import (
	"context"
	"database/sql"
	"errors"

	invoices "parking-core/internal/invoices/domain"
	observations "parking-core/internal/observations/domain"
)

// ObservationRepository persists camera observations.
type ObservationRepository struct {
	db *sql.DB
}

// NewObservationRepository constructs a repository.
func NewObservationRepository(db *sql.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

// CreateBatch inserts a batch of unverified observations in one transaction.
func (r *ObservationRepository) CreateBatch(ctx context.Context, batch []*observations.Observation) error {
	if r == nil || r.db == nil {
		return errors.New("observation repo: nil db")
	}
	if len(batch) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, observation := range batch {
		if observation == nil {
			_ = tx.Rollback()
			return observations.ErrNilObservation
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO vehicle_observations (id, license, street, observed_at, verified)
VALUES ($1, $2, $3, $4, FALSE)`,
			observation.ID, observation.License, observation.Street, observation.ObservedAt)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListUnverified returns up to limit observations waiting for reconciliation,
// oldest first. Re-querying always reflects current persisted state.
func (r *ObservationRepository) ListUnverified(ctx context.Context, limit int) ([]observations.Observation, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("observation repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, license, street, observed_at, verified
FROM vehicle_observations
WHERE verified = FALSE
ORDER BY observed_at ASC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []observations.Observation
	for rows.Next() {
		var observation observations.Observation
		err := rows.Scan(
			&observation.ID,
			&observation.License,
			&observation.Street,
			&observation.ObservedAt,
			&observation.Verified,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, observation)
	}
	return result, rows.Err()
}

// MarkVerified flips the observation to verified and inserts the fine (when
// non-nil) in one transaction. The update is conditioned on the row still
// being unverified so only one of two concurrent runs wins; the loser gets
// observations.ErrAlreadyVerified.
func (r *ObservationRepository) MarkVerified(ctx context.Context, observationID string, invoice *invoices.Invoice) error {
	if r == nil || r.db == nil {
		return errors.New("observation repo: nil db")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `
UPDATE vehicle_observations
SET verified = TRUE
WHERE id = $1 AND verified = FALSE`, observationID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return observations.ErrAlreadyVerified
	}

	if invoice != nil {
		_, err = tx.ExecContext(ctx, `
INSERT INTO parking_invoices (id, session_id, observation_id, issued_at, amount_cents, paid)
VALUES ($1, NULL, $2, $3, $4, FALSE)`,
			invoice.ID, invoice.ObservationID, invoice.IssuedAt, invoice.AmountCents)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
