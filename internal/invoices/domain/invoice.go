package invoices

import "time"

// Invoice bills exactly one source: a stopped session or an uncovered
// observation. Zero-amount events are never invoiced, so a persisted invoice
// always has a positive amount. The only mutation after creation is Paid.
type Invoice struct {
	ID            string
	SessionID     string
	ObservationID string
	IssuedAt      time.Time
	AmountCents   int64
	Paid          bool
}

// Validate checks the exactly-one-source and positive-amount invariants.
func (i Invoice) Validate() error {
	if i.ID == "" {
		return ErrEmptyID
	}
	if i.SessionID == "" && i.ObservationID == "" {
		return ErrSourceRequired
	}
	if i.SessionID != "" && i.ObservationID != "" {
		return ErrAmbiguousSource
	}
	if i.AmountCents <= 0 {
		return ErrNonPositiveAmount
	}
	return nil
}

// SessionRef describes the session an invoice bills.
type SessionRef struct {
	License string
	Street  string
	StartAt time.Time
	EndAt   *time.Time
}

// ObservationRef describes the observation an invoice fines.
type ObservationRef struct {
	License    string
	Street     string
	ObservedAt time.Time
}

// Detail is an invoice joined with its source for presentation.
type Detail struct {
	Invoice     Invoice
	Session     *SessionRef
	Observation *ObservationRef
}
