package billing

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time within a schedule day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// MinuteOfDay returns the minute offset from local midnight.
func (t TimeOfDay) MinuteOfDay() int { return t.Hour*60 + t.Minute }

// String formats the time as HH:MM.
func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

func (t TimeOfDay) valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// Schedule is the daily chargeable window. Parking is billed between
// DailyStart (inclusive) and DailyEnd (exclusive) in Location, except on
// ExcludedWeekday. Loaded once at startup and read concurrently after that.
type Schedule struct {
	DailyStart      TimeOfDay
	DailyEnd        TimeOfDay
	Location        *time.Location
	ExcludedWeekday time.Weekday
}

// NewSchedule validates and builds a Schedule for the given IANA zone.
func NewSchedule(start, end TimeOfDay, zone string, excluded time.Weekday) (Schedule, error) {
	if !start.valid() || !end.valid() {
		return Schedule{}, ErrInvalidTimeOfDay
	}
	if start.MinuteOfDay() >= end.MinuteOfDay() {
		return Schedule{}, ErrInvalidWindow
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Schedule{}, fmt.Errorf("billing: load zone %q: %w", zone, err)
	}
	return Schedule{
		DailyStart:      start,
		DailyEnd:        end,
		Location:        loc,
		ExcludedWeekday: excluded,
	}, nil
}
