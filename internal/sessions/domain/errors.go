package sessions

import "errors"

var (
	// ErrNoOpenSession is returned when a license has no running session.
	ErrNoOpenSession = errors.New("session: no open session")
	// ErrOpenSessionExists is returned when a second start races or repeats
	// an open session for the same license.
	ErrOpenSessionExists = errors.New("session: open session already exists")
	// ErrEmptyLicense is returned when a license plate is missing.
	ErrEmptyLicense = errors.New("session: empty license")
	// ErrEmptyStreet is returned when a street is missing.
	ErrEmptyStreet = errors.New("session: empty street")
	// ErrNilSession is returned when persisting a nil session.
	ErrNilSession = errors.New("session: nil session")
)
