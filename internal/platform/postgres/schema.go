package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// statements are idempotent so EnsureSchema can run on every boot. The
// partial unique index on open sessions is what makes the single open
// session per license hold under concurrent starts.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS parking_rates (
		street       TEXT PRIMARY KEY,
		minute_cents BIGINT NOT NULL DEFAULT 0,
		fine_cents   BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS parking_sessions (
		id       TEXT PRIMARY KEY,
		license  TEXT NOT NULL,
		street   TEXT NOT NULL,
		start_at TIMESTAMPTZ NOT NULL,
		end_at   TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_parking_sessions_open_license
		ON parking_sessions (license) WHERE end_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_parking_sessions_license_street
		ON parking_sessions (license, street, start_at)`,
	`CREATE TABLE IF NOT EXISTS vehicle_observations (
		id          TEXT PRIMARY KEY,
		license     TEXT NOT NULL,
		street      TEXT NOT NULL,
		observed_at TIMESTAMPTZ NOT NULL,
		verified    BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_observations_unverified
		ON vehicle_observations (observed_at) WHERE verified = FALSE`,
	`CREATE TABLE IF NOT EXISTS parking_invoices (
		id             TEXT PRIMARY KEY,
		session_id     TEXT REFERENCES parking_sessions (id),
		observation_id TEXT REFERENCES vehicle_observations (id),
		issued_at      TIMESTAMPTZ NOT NULL,
		amount_cents   BIGINT NOT NULL,
		paid           BOOLEAN NOT NULL DEFAULT FALSE,
		CHECK ((session_id IS NULL) <> (observation_id IS NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_parking_invoices_unpaid
		ON parking_invoices (issued_at) WHERE paid = FALSE`,
	`CREATE TABLE IF NOT EXISTS parking_audit_log (
		id             TEXT PRIMARY KEY,
		action         TEXT NOT NULL,
		license        TEXT,
		resource_type  TEXT,
		resource_id    TEXT,
		metadata       JSONB,
		payload_digest TEXT,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates the tables and indexes when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
