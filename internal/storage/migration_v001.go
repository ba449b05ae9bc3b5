package storage

import (
	"context"
	"database/sql"
)

// migrateV001 creates the api_events table. time_key is the primary key:
// one event per second, system-wide.
func migrateV001(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS api_events (
			time_key    INTEGER PRIMARY KEY,
			endpoint    TEXT NOT NULL,
			latency     REAL NOT NULL DEFAULT 0,
			status_code INTEGER NOT NULL DEFAULT 0,
			is_error    BOOLEAN NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_api_events_endpoint          ON api_events(endpoint)`,
		`CREATE INDEX IF NOT EXISTS idx_api_events_endpoint_time_key ON api_events(endpoint, time_key)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
