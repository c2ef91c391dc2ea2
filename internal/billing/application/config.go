package application

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	billing "parking-core/internal/billing/domain"
)

// ScheduleConfig defines the daily chargeable window.
type ScheduleConfig struct {
	DailyStart      string `yaml:"daily_start"`
	DailyEnd        string `yaml:"daily_end"`
	TimeZone        string `yaml:"time_zone"`
	ExcludedWeekday string `yaml:"excluded_weekday"`
}

// ReconcileConfig tunes the observation reconciliation loop.
type ReconcileConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"`
	BatchSize       int `yaml:"batch_size"`
}

// Config is the billing configuration loaded at startup.
type Config struct {
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
}

// LoadConfig loads config from yaml or env. The file named by PARKING_CONFIG
// overrides the defaults, and individual env vars override the file.
func LoadConfig() (Config, error) {
	cfg := Config{
		Schedule: ScheduleConfig{
			DailyStart:      "08:00",
			DailyEnd:        "21:00",
			TimeZone:        "Europe/Amsterdam",
			ExcludedWeekday: "Sunday",
		},
		Reconcile: ReconcileConfig{
			IntervalMinutes: 1,
			BatchSize:       500,
		},
	}

	if path := os.Getenv("PARKING_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.Schedule.DailyStart = getenvDefault("PARKING_DAILY_START", cfg.Schedule.DailyStart)
	cfg.Schedule.DailyEnd = getenvDefault("PARKING_DAILY_END", cfg.Schedule.DailyEnd)
	cfg.Schedule.TimeZone = getenvDefault("PARKING_TIME_ZONE", cfg.Schedule.TimeZone)
	cfg.Schedule.ExcludedWeekday = getenvDefault("PARKING_EXCLUDED_WEEKDAY", cfg.Schedule.ExcludedWeekday)
	cfg.Reconcile.IntervalMinutes = getenvIntDefault("RECONCILE_INTERVAL_MINUTES", cfg.Reconcile.IntervalMinutes)
	cfg.Reconcile.BatchSize = getenvIntDefault("RECONCILE_BATCH_SIZE", cfg.Reconcile.BatchSize)

	if cfg.Reconcile.IntervalMinutes <= 0 {
		return cfg, fmt.Errorf("billing config: interval must be positive, got %d", cfg.Reconcile.IntervalMinutes)
	}
	if cfg.Reconcile.BatchSize <= 0 {
		return cfg, fmt.Errorf("billing config: batch size must be positive, got %d", cfg.Reconcile.BatchSize)
	}
	return cfg, nil
}

// BuildSchedule parses the schedule section into a domain Schedule.
func (c Config) BuildSchedule() (billing.Schedule, error) {
	start, err := parseTimeOfDay(c.Schedule.DailyStart)
	if err != nil {
		return billing.Schedule{}, err
	}
	end, err := parseTimeOfDay(c.Schedule.DailyEnd)
	if err != nil {
		return billing.Schedule{}, err
	}
	weekday, err := parseWeekday(c.Schedule.ExcludedWeekday)
	if err != nil {
		return billing.Schedule{}, err
	}
	return billing.NewSchedule(start, end, c.Schedule.TimeZone, weekday)
}

func parseTimeOfDay(value string) (billing.TimeOfDay, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return billing.TimeOfDay{}, fmt.Errorf("billing config: parse time %q: %w", value, err)
	}
	return billing.TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func parseWeekday(value string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), value) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("billing config: unknown weekday %q", value)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
