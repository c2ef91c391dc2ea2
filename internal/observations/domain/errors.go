package observations

import "errors"

var (
	// ErrAlreadyVerified is returned when a concurrent run verified the
	// observation first. The loser treats it as a no-op.
	ErrAlreadyVerified = errors.New("observation: already verified")
	// ErrNotFound is returned when an observation does not exist.
	ErrNotFound = errors.New("observation: not found")
	// ErrNilObservation is returned when persisting a nil observation.
	ErrNilObservation = errors.New("observation: nil observation")
	// ErrEmptyLicense is returned when a license plate is missing.
	ErrEmptyLicense = errors.New("observation: empty license")
	// ErrEmptyStreet is returned when a street is missing.
	ErrEmptyStreet = errors.New("observation: empty street")
	// ErrZeroInstant is returned when the observation instant is missing.
	ErrZeroInstant = errors.New("observation: zero observation instant")
)
