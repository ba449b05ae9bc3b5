package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	Version int
	Name    string
	Apply   func(ctx context.Context, tx *sql.Tx) error
}

// schemaMigrations is the ordered history of the api_events schema.
var schemaMigrations = []migration{
	{Version: 1, Name: "api_events", Apply: migrateV001},
}

// MigrationRunner brings a SQLite database up to the latest schema version.
type MigrationRunner struct {
	db         *sql.DB
	migrations []migration
}

func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{db: db, migrations: schemaMigrations}
}

// Run applies every migration not yet recorded in schema_migrations and
// returns how many it applied. Each migration runs in its own transaction.
func (r *MigrationRunner) Run(ctx context.Context) (int, error) {
	// File-backed databases switch to WAL; in-memory ones stay "memory".
	if _, err := r.db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		return 0, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := r.ensureTable(ctx); err != nil {
		return 0, err
	}

	done, err := r.applied(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, m := range r.migrations {
		if done[m.Version] {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return n, fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		n++
	}
	return n, nil
}

// Version returns the highest applied migration, or 0 for a fresh database.
func (r *MigrationRunner) Version(ctx context.Context) (int, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, err
	}
	var v sql.NullInt64
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}

func (r *MigrationRunner) ensureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func (r *MigrationRunner) applied(ctx context.Context) (map[int]bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		done[v] = true
	}
	return done, rows.Err()
}

func (r *MigrationRunner) apply(ctx context.Context, m migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.Apply(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}
