package billing

import "errors"

var (
	// ErrInvalidRange is returned when a session ends before it starts.
	ErrInvalidRange = errors.New("billing: end before start")
	// ErrInvalidWindow is returned when the daily window is empty or reversed.
	ErrInvalidWindow = errors.New("billing: daily end not after daily start")
	// ErrInvalidTimeOfDay is returned when a wall-clock time is out of range.
	ErrInvalidTimeOfDay = errors.New("billing: invalid time of day")
)
