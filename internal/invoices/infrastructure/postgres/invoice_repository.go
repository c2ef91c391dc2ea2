package postgres

import (
	"context"
	"database/sql"
	"errors"

	invoices "parking-core/internal/invoices/domain"
)

// InvoiceRepository persists parking invoices.
type InvoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository constructs a repository.
func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Save inserts an invoice.
func (r *InvoiceRepository) Save(ctx context.Context, invoice *invoices.Invoice) error {
	if r == nil || r.db == nil {
		return errors.New("invoice repo: nil db")
	}
	if invoice == nil {
		return invoices.ErrNilInvoice
	}
	if err := invoice.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO parking_invoices (id, session_id, observation_id, issued_at, amount_cents, paid)
VALUES ($1, $2, $3, $4, $5, $6)`,
		invoice.ID, nullable(invoice.SessionID), nullable(invoice.ObservationID),
		invoice.IssuedAt, invoice.AmountCents, invoice.Paid)
	return err
}

// FindByID fetches an invoice, nil when missing.
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*invoices.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, session_id, observation_id, issued_at, amount_cents, paid
FROM parking_invoices
WHERE id = $1
LIMIT 1`, id)

	var invoice invoices.Invoice
	var sessionID, observationID sql.NullString
	err := row.Scan(&invoice.ID, &sessionID, &observationID, &invoice.IssuedAt, &invoice.AmountCents, &invoice.Paid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	invoice.SessionID = sessionID.String
	invoice.ObservationID = observationID.String
	return &invoice, nil
}

// ListByLicense returns every invoice whose session or observation carries
// the license, joined with its source, oldest first.
func (r *InvoiceRepository) ListByLicense(ctx context.Context, license string) ([]invoices.Detail, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT i.id, i.session_id, i.observation_id, i.issued_at, i.amount_cents, i.paid,
	s.license, s.street, s.start_at, s.end_at,
	o.license, o.street, o.observed_at
FROM parking_invoices i
LEFT JOIN parking_sessions s ON s.id = i.session_id
LEFT JOIN vehicle_observations o ON o.id = i.observation_id
WHERE s.license = $1 OR o.license = $1
ORDER BY i.issued_at ASC`, license)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []invoices.Detail
	for rows.Next() {
		var detail invoices.Detail
		var sessionID, observationID sql.NullString
		var sessionLicense, sessionStreet sql.NullString
		var sessionStart, sessionEnd sql.NullTime
		var obsLicense, obsStreet sql.NullString
		var observedAt sql.NullTime
		err := rows.Scan(
			&detail.Invoice.ID, &sessionID, &observationID,
			&detail.Invoice.IssuedAt, &detail.Invoice.AmountCents, &detail.Invoice.Paid,
			&sessionLicense, &sessionStreet, &sessionStart, &sessionEnd,
			&obsLicense, &obsStreet, &observedAt,
		)
		if err != nil {
			return nil, err
		}
		detail.Invoice.SessionID = sessionID.String
		detail.Invoice.ObservationID = observationID.String
		if sessionID.Valid {
			ref := invoices.SessionRef{
				License: sessionLicense.String,
				Street:  sessionStreet.String,
				StartAt: sessionStart.Time,
			}
			if sessionEnd.Valid {
				end := sessionEnd.Time
				ref.EndAt = &end
			}
			detail.Session = &ref
		}
		if observationID.Valid {
			detail.Observation = &invoices.ObservationRef{
				License:    obsLicense.String,
				Street:     obsStreet.String,
				ObservedAt: observedAt.Time,
			}
		}
		details = append(details, detail)
	}
	return details, rows.Err()
}

// MarkPaid flips an invoice to paid.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("invoice repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE parking_invoices
SET paid = TRUE
WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return invoices.ErrNotFound
	}
	return nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
