package observations

import "time"

// Observation is one camera sighting of a parked vehicle. It is created
// unverified by ingestion and flipped to verified exactly once by
// reconciliation; it is never deleted, so a verified observation can never be
// fined again.
type Observation struct {
	ID         string
	License    string
	Street     string
	ObservedAt time.Time
	Verified   bool
}
