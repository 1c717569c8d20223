package postgresql

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	constraintActiveVehicle = "parking_sessions_active_vehicle_uidx"
	constraintUsername      = "users_username_key"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL,
		name          TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'operator',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT users_username_key UNIQUE (username)
	)`,
	`CREATE TABLE IF NOT EXISTS parking_sessions (
		id                  TEXT PRIMARY KEY,
		vehicle_number      TEXT NOT NULL,
		vehicle_class       TEXT NOT NULL,
		assigned_spot       INTEGER NOT NULL,
		entry_time          TIMESTAMPTZ NOT NULL,
		exit_time           TIMESTAMPTZ,
		status              TEXT NOT NULL DEFAULT 'active',
		duration_hours      DOUBLE PRECISION,
		cost                BIGINT,
		recorded_by_id      TEXT NOT NULL,
		recorded_by         TEXT NOT NULL DEFAULT '',
		exit_recorded_by_id TEXT,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT parking_sessions_status_chk CHECK (status IN ('active', 'completed')),
		CONSTRAINT parking_sessions_completion_chk CHECK (
			(status = 'completed') = (exit_time IS NOT NULL AND duration_hours IS NOT NULL AND cost IS NOT NULL)
		),
		CONSTRAINT parking_sessions_chronology_chk CHECK (exit_time IS NULL OR exit_time > entry_time)
	)`,
	// One active session per vehicle. Entry races lose on this index.
	`CREATE UNIQUE INDEX IF NOT EXISTS parking_sessions_active_vehicle_uidx
		ON parking_sessions (vehicle_number) WHERE status = 'active'`,
	`CREATE INDEX IF NOT EXISTS parking_sessions_status_entry_idx
		ON parking_sessions (status, entry_time DESC)`,
	`CREATE INDEX IF NOT EXISTS parking_sessions_status_exit_idx
		ON parking_sessions (status, exit_time DESC)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		category   TEXT NOT NULL,
		message    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgresql: migration %d: %w", i, err)
		}
	}
	return nil
}
