package invoices

import "errors"

var (
	// ErrNotFound is returned when an invoice does not exist.
	ErrNotFound = errors.New("invoice: not found")
	// ErrNilInvoice is returned when saving a nil invoice.
	ErrNilInvoice = errors.New("invoice: nil invoice")
	// ErrEmptyID is returned when an invoice has no id.
	ErrEmptyID = errors.New("invoice: empty id")
	// ErrSourceRequired is returned when neither source is set.
	ErrSourceRequired = errors.New("invoice: session or observation required")
	// ErrAmbiguousSource is returned when both sources are set.
	ErrAmbiguousSource = errors.New("invoice: both session and observation set")
	// ErrNonPositiveAmount is returned for a zero or negative amount.
	ErrNonPositiveAmount = errors.New("invoice: amount must be positive")
)
