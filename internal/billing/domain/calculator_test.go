package billing

import (
	"errors"
	"testing"
	"time"
)

func utcSchedule(t *testing.T) Schedule {
	t.Helper()
	schedule, err := NewSchedule(
		TimeOfDay{Hour: 8}, TimeOfDay{Hour: 21}, "UTC", time.Sunday,
	)
	if err != nil {
		t.Fatalf("new schedule: %v", err)
	}
	return schedule
}

func amsterdamSchedule(t *testing.T, excluded time.Weekday) Schedule {
	t.Helper()
	schedule, err := NewSchedule(
		TimeOfDay{Hour: 8}, TimeOfDay{Hour: 21}, "Europe/Amsterdam", excluded,
	)
	if err != nil {
		t.Fatalf("new schedule: %v", err)
	}
	return schedule
}

func minutes(t *testing.T, schedule Schedule, start, end time.Time) int64 {
	t.Helper()
	got, err := ChargeableMinutes(start, end, schedule)
	if err != nil {
		t.Fatalf("chargeable minutes: %v", err)
	}
	return got
}

func TestChargeableMinutes_SingleDayInsideWindow(t *testing.T) {
	schedule := utcSchedule(t)
	// Saturday, fully inside the window.
	start := time.Date(2023, time.December, 30, 20, 0, 0, 0, time.UTC)
	end := time.Date(2023, time.December, 30, 21, 0, 0, 0, time.UTC)

	if got := minutes(t, schedule, start, end); got != 60 {
		t.Fatalf("expected 60 minutes, got %d", got)
	}
}

func TestChargeableMinutes_ClipsToWindow(t *testing.T) {
	schedule := utcSchedule(t)
	day := time.Date(2023, time.December, 29, 0, 0, 0, 0, time.UTC) // Friday

	cases := []struct {
		name       string
		start, end time.Time
		want       int64
	}{
		{"starts before window", day.Add(6 * time.Hour), day.Add(9 * time.Hour), 60},
		{"ends after window", day.Add(20*time.Hour + 30*time.Minute), day.Add(22 * time.Hour), 30},
		{"entirely before window", day.Add(5 * time.Hour), day.Add(7 * time.Hour), 0},
		{"entirely after window", day.Add(22 * time.Hour), day.Add(23 * time.Hour), 0},
		{"spans whole day", day, day.Add(24 * time.Hour), 13 * 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := minutes(t, schedule, tc.start, tc.end); got != tc.want {
				t.Fatalf("expected %d minutes, got %d", tc.want, got)
			}
		})
	}
}

func TestChargeableMinutes_ZeroLengthSession(t *testing.T) {
	schedule := utcSchedule(t)
	at := time.Date(2023, time.December, 30, 12, 0, 0, 0, time.UTC)

	if got := minutes(t, schedule, at, at); got != 0 {
		t.Fatalf("expected 0 minutes, got %d", got)
	}
}

func TestChargeableMinutes_EndBeforeStart(t *testing.T) {
	schedule := utcSchedule(t)
	start := time.Date(2023, time.December, 30, 12, 0, 0, 0, time.UTC)

	_, err := ChargeableMinutes(start, start.Add(-time.Minute), schedule)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestChargeableMinutes_ExcludedWeekdayOnly(t *testing.T) {
	schedule := utcSchedule(t)
	// Sunday, fully inside the window.
	start := time.Date(2023, time.December, 31, 9, 0, 0, 0, time.UTC)
	end := time.Date(2023, time.December, 31, 20, 0, 0, 0, time.UTC)

	if got := minutes(t, schedule, start, end); got != 0 {
		t.Fatalf("expected 0 minutes on the excluded weekday, got %d", got)
	}
}

func TestChargeableMinutes_WeekSpanSkipsExcludedDay(t *testing.T) {
	schedule := utcSchedule(t)
	// Saturday 21:00 to next Saturday 21:00, crossing one Sunday.
	start := time.Date(2023, time.December, 30, 21, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 6, 21, 0, 0, 0, time.UTC)

	// Six chargeable days of 13h each: Jan 1-6.
	if got := minutes(t, schedule, start, end); got != 6*13*60 {
		t.Fatalf("expected %d minutes, got %d", 6*13*60, got)
	}
}

func TestChargeableMinutes_SplitLaw(t *testing.T) {
	schedule := utcSchedule(t)
	start := time.Date(2023, time.December, 28, 7, 13, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 3, 22, 41, 0, 0, time.UTC)

	whole := minutes(t, schedule, start, end)
	splits := []time.Time{
		start.Add(17 * time.Minute),
		time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 1, 14, 30, 0, 0, time.UTC),
		end.Add(-time.Minute),
	}
	for _, split := range splits {
		first := minutes(t, schedule, start, split)
		second := minutes(t, schedule, split, end)
		if first+second != whole {
			t.Fatalf("split at %s: %d + %d != %d", split, first, second, whole)
		}
	}
}

func TestChargeableMinutes_DSTFallBack(t *testing.T) {
	// 2023-10-29 is the Amsterdam fall-back day: 25 elapsed hours. The
	// window is wall-clock, so the day still bills 13h.
	schedule := amsterdamSchedule(t, time.Monday)
	start := time.Date(2023, time.October, 29, 0, 0, 0, 0, schedule.Location)
	end := time.Date(2023, time.October, 30, 0, 0, 0, 0, schedule.Location)

	if elapsed := end.Sub(start); elapsed != 25*time.Hour {
		t.Fatalf("expected a 25h civil day, got %s", elapsed)
	}
	if got := minutes(t, schedule, start, end); got != 13*60 {
		t.Fatalf("expected %d minutes, got %d", 13*60, got)
	}
}

func TestChargeableMinutes_DSTSpringForward(t *testing.T) {
	// 2024-03-31 is the Amsterdam spring-forward day: 23 elapsed hours.
	schedule := amsterdamSchedule(t, time.Monday)
	start := time.Date(2024, time.March, 31, 0, 0, 0, 0, schedule.Location)
	end := time.Date(2024, time.April, 1, 0, 0, 0, 0, schedule.Location)

	if elapsed := end.Sub(start); elapsed != 23*time.Hour {
		t.Fatalf("expected a 23h civil day, got %s", elapsed)
	}
	if got := minutes(t, schedule, start, end); got != 13*60 {
		t.Fatalf("expected %d minutes, got %d", 13*60, got)
	}
}

func TestChargeableMinutes_ZoneConversion(t *testing.T) {
	schedule := amsterdamSchedule(t, time.Sunday)
	// 06:30Z on a winter Saturday is 07:30 in Amsterdam: only the 30
	// minutes past 08:00 local bill.
	start := time.Date(2023, time.December, 30, 6, 30, 0, 0, time.UTC)
	end := time.Date(2023, time.December, 30, 7, 30, 0, 0, time.UTC)

	if got := minutes(t, schedule, start, end); got != 30 {
		t.Fatalf("expected 30 minutes, got %d", got)
	}
}

func TestNewSchedule_Validation(t *testing.T) {
	if _, err := NewSchedule(TimeOfDay{Hour: 21}, TimeOfDay{Hour: 8}, "UTC", time.Sunday); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	if _, err := NewSchedule(TimeOfDay{Hour: 25}, TimeOfDay{Hour: 21}, "UTC", time.Sunday); !errors.Is(err, ErrInvalidTimeOfDay) {
		t.Fatalf("expected ErrInvalidTimeOfDay, got %v", err)
	}
	if _, err := NewSchedule(TimeOfDay{Hour: 8}, TimeOfDay{Hour: 21}, "Mars/Olympus", time.Sunday); err == nil {
		t.Fatal("expected unknown zone error")
	}
}
