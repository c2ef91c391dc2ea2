package sessions

import "time"

// Session is one vehicle parked on one street. A session starts open (EndAt
// nil) and is closed at most once; it is never deleted. At most one open
// session exists per license, enforced by the store at write time.
type Session struct {
	ID      string
	License string
	Street  string
	StartAt time.Time
	EndAt   *time.Time
}

// Open reports whether the session is still running.
func (s Session) Open() bool { return s.EndAt == nil }

// Covers reports whether the session was active at the given instant on its
// own street: started strictly before it, and not ended before it.
func (s Session) Covers(at time.Time) bool {
	if !s.StartAt.Before(at) {
		return false
	}
	return s.EndAt == nil || !s.EndAt.Before(at)
}
