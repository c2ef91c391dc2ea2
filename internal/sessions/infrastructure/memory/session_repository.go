package memory

import (
	"context"
	"sync"
	"time"

	invoices "parking-core/internal/invoices/domain"
	sessions "parking-core/internal/sessions/domain"
)

// InvoiceSink receives invoices created while closing a session. In the
// postgres repository this is the same transaction; here it is the in-memory
// invoice repository.
type InvoiceSink interface {
	Save(ctx context.Context, invoice *invoices.Invoice) error
}

// SessionRepository is an in-memory session store for tests. It enforces the
// same invariants as the postgres store, including the single open session
// per license.
type SessionRepository struct {
	mu       sync.Mutex
	byID     map[string]*sessions.Session
	invoices InvoiceSink
}

// NewSessionRepository constructs a repository. sink may be nil.
func NewSessionRepository(sink InvoiceSink) *SessionRepository {
	return &SessionRepository{
		byID:     make(map[string]*sessions.Session),
		invoices: sink,
	}
}

// FindOpenByLicense returns the license's running session, nil when none.
func (r *SessionRepository) FindOpenByLicense(ctx context.Context, license string) (*sessions.Session, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSession(r.openByLicenseLocked(license)), nil
}

// FindByID fetches a session.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*sessions.Session, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSession(r.byID[id]), nil
}

// FindCovering returns a session active at the instant for license and street.
func (r *SessionRepository) FindCovering(ctx context.Context, license, street string, at time.Time) (*sessions.Session, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.byID {
		if session.License == license && session.Street == street && session.Covers(at) {
			return cloneSession(session), nil
		}
	}
	return nil, nil
}

// Create inserts an open session, rejecting a duplicate open one.
func (r *SessionRepository) Create(ctx context.Context, session *sessions.Session) error {
	_ = ctx
	if session == nil {
		return sessions.ErrNilSession
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.Open() && r.openByLicenseLocked(session.License) != nil {
		return sessions.ErrOpenSessionExists
	}
	r.byID[session.ID] = cloneSession(session)
	return nil
}

// CloseWithInvoice closes the session and records the invoice atomically.
func (r *SessionRepository) CloseWithInvoice(ctx context.Context, session *sessions.Session, invoice *invoices.Invoice) error {
	if session == nil {
		return sessions.ErrNilSession
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[session.ID]
	if !ok || !stored.Open() {
		return sessions.ErrNoOpenSession
	}
	end := *session.EndAt
	stored.EndAt = &end
	if invoice != nil && r.invoices != nil {
		if err := r.invoices.Save(ctx, invoice); err != nil {
			stored.EndAt = nil
			return err
		}
	}
	return nil
}

func (r *SessionRepository) openByLicenseLocked(license string) *sessions.Session {
	for _, session := range r.byID {
		if session.License == license && session.Open() {
			return session
		}
	}
	return nil
}

func cloneSession(s *sessions.Session) *sessions.Session {
	if s == nil {
		return nil
	}
	clone := *s
	if s.EndAt != nil {
		end := *s.EndAt
		clone.EndAt = &end
	}
	return &clone
}
