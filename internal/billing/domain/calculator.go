package billing

import "time"

// ChargeableMinutes counts the billable wall-clock minutes in the half-open
// interval [start, end). Both instants are converted to the schedule zone and
// the interval is walked one calendar day at a time: each day contributes the
// overlap between the session and that day's window, and the excluded weekday
// contributes nothing. Day boundaries come from the zone, so days shortened
// or stretched by a DST transition keep their wall-clock window.
func ChargeableMinutes(start, end time.Time, schedule Schedule) (int64, error) {
	if end.Before(start) {
		return 0, ErrInvalidRange
	}

	startLocal := start.In(schedule.Location)
	endLocal := end.In(schedule.Location)
	windowStart := schedule.DailyStart.MinuteOfDay()
	windowEnd := schedule.DailyEnd.MinuteOfDay()

	var total int64
	day := midnight(startLocal)
	for !day.After(endLocal) {
		if day.Weekday() != schedule.ExcludedWeekday {
			lo := 0
			if sameDate(day, startLocal) {
				lo = minuteOfDay(startLocal)
			}
			hi := minutesPerDay
			if sameDate(day, endLocal) {
				hi = minuteOfDay(endLocal)
			}
			if lo < windowStart {
				lo = windowStart
			}
			if hi > windowEnd {
				hi = windowEnd
			}
			if hi > lo {
				total += int64(hi - lo)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return total, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func minuteOfDay(t time.Time) int { return t.Hour()*60 + t.Minute() }

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
