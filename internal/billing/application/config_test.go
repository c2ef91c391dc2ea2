package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Schedule.DailyStart != "08:00" || cfg.Schedule.DailyEnd != "21:00" {
		t.Fatalf("unexpected default window: %s-%s", cfg.Schedule.DailyStart, cfg.Schedule.DailyEnd)
	}
	if cfg.Schedule.TimeZone != "Europe/Amsterdam" {
		t.Fatalf("unexpected default zone: %s", cfg.Schedule.TimeZone)
	}
	if cfg.Schedule.ExcludedWeekday != "Sunday" {
		t.Fatalf("unexpected default excluded weekday: %s", cfg.Schedule.ExcludedWeekday)
	}
	if cfg.Reconcile.IntervalMinutes != 1 || cfg.Reconcile.BatchSize != 500 {
		t.Fatalf("unexpected reconcile defaults: %+v", cfg.Reconcile)
	}
}

func TestLoadConfig_YAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parking.yaml")
	data := []byte(`
schedule:
  daily_start: "09:00"
  daily_end: "18:00"
  time_zone: "UTC"
  excluded_weekday: "Saturday"
reconcile:
  interval_minutes: 5
  batch_size: 50
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PARKING_CONFIG", path)
	t.Setenv("RECONCILE_BATCH_SIZE", "25")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Schedule.DailyStart != "09:00" || cfg.Schedule.DailyEnd != "18:00" {
		t.Fatalf("yaml window not applied: %s-%s", cfg.Schedule.DailyStart, cfg.Schedule.DailyEnd)
	}
	if cfg.Schedule.ExcludedWeekday != "Saturday" {
		t.Fatalf("yaml weekday not applied: %s", cfg.Schedule.ExcludedWeekday)
	}
	if cfg.Reconcile.IntervalMinutes != 5 {
		t.Fatalf("yaml interval not applied: %d", cfg.Reconcile.IntervalMinutes)
	}
	if cfg.Reconcile.BatchSize != 25 {
		t.Fatalf("env should override yaml batch size, got %d", cfg.Reconcile.BatchSize)
	}
}

func TestBuildSchedule(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	schedule, err := cfg.BuildSchedule()
	if err != nil {
		t.Fatalf("build schedule: %v", err)
	}
	if schedule.DailyStart.MinuteOfDay() != 8*60 || schedule.DailyEnd.MinuteOfDay() != 21*60 {
		t.Fatalf("unexpected window: %s-%s", schedule.DailyStart, schedule.DailyEnd)
	}
	if schedule.ExcludedWeekday != time.Sunday {
		t.Fatalf("unexpected excluded weekday: %s", schedule.ExcludedWeekday)
	}
	if schedule.Location.String() != "Europe/Amsterdam" {
		t.Fatalf("unexpected zone: %s", schedule.Location)
	}
}

func TestBuildSchedule_BadWeekday(t *testing.T) {
	cfg := Config{
		Schedule: ScheduleConfig{
			DailyStart:      "08:00",
			DailyEnd:        "21:00",
			TimeZone:        "UTC",
			ExcludedWeekday: "Someday",
		},
	}
	if _, err := cfg.BuildSchedule(); err == nil {
		t.Fatal("expected weekday parse error")
	}
}
