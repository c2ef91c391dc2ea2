package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	invoices "parking-core/internal/invoices/domain"
	sessions "parking-core/internal/sessions/domain"
)

const uniqueViolation = "23505"

// SessionRepository persists parking sessions. The parking_sessions table
// carries a partial unique index on (license) WHERE end_at IS NULL, so the
// one-open-session-per-license invariant holds even when two starts race.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository constructs a repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// FindOpenByLicense returns the license's running session, nil when none.
func (r *SessionRepository) FindOpenByLicense(ctx context.Context, license string) (*sessions.Session, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("session repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, license, street, start_at, end_at
FROM parking_sessions
WHERE license = $1 AND end_at IS NULL
LIMIT 1`, license)
	return scanSession(row)
}

// FindByID fetches a session.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*sessions.Session, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("session repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, license, street, start_at, end_at
FROM parking_sessions
WHERE id = $1
LIMIT 1`, id)
	return scanSession(row)
}

// FindCovering returns a session active at the instant for the license and
// street: started strictly before it and either still open or ended at or
// after it.
func (r *SessionRepository) FindCovering(ctx context.Context, license, street string, at time.Time) (*sessions.Session, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("session repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, license, street, start_at, end_at
FROM parking_sessions
WHERE license = $1 AND street = $2
	AND start_at < $3
	AND (end_at IS NULL OR end_at >= $3)
LIMIT 1`, license, street, at)
	return scanSession(row)
}

// Create inserts an open session.
func (r *SessionRepository) Create(ctx context.Context, session *sessions.Session) error {
	if r == nil || r.db == nil {
		return errors.New("session repo: nil db")
	}
	if session == nil {
		return sessions.ErrNilSession
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO parking_sessions (id, license, street, start_at, end_at)
VALUES ($1, $2, $3, $4, NULL)`,
		session.ID, session.License, session.Street, session.StartAt)
	if isUniqueViolation(err) {
		return sessions.ErrOpenSessionExists
	}
	return err
}

// CloseWithInvoice sets the session end and inserts the invoice (when
// non-nil) in one transaction. The update is conditioned on the session still
// being open, so a concurrent stop loses cleanly.
func (r *SessionRepository) CloseWithInvoice(ctx context.Context, session *sessions.Session, invoice *invoices.Invoice) error {
	if r == nil || r.db == nil {
		return errors.New("session repo: nil db")
	}
	if session == nil {
		return sessions.ErrNilSession
	}
	if session.EndAt == nil {
		return errors.New("session repo: close without end instant")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `
UPDATE parking_sessions
SET end_at = $2
WHERE id = $1 AND end_at IS NULL`, session.ID, *session.EndAt)
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
		return sessions.ErrNoOpenSession
	}

	if invoice != nil {
		_, err = tx.ExecContext(ctx, `
INSERT INTO parking_invoices (id, session_id, observation_id, issued_at, amount_cents, paid)
VALUES ($1, $2, NULL, $3, $4, FALSE)`,
			invoice.ID, invoice.SessionID, invoice.IssuedAt, invoice.AmountCents)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func scanSession(row *sql.Row) (*sessions.Session, error) {
	var session sessions.Session
	var endAt sql.NullTime
	err := row.Scan(&session.ID, &session.License, &session.Street, &session.StartAt, &endAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if endAt.Valid {
		end := endAt.Time
		session.EndAt = &end
	}
	return &session, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
