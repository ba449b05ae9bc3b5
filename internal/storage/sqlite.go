package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteStore implements Store backed by a SQLite database. The api_events
// table uses time_key as its primary key, so INSERT OR REPLACE gives the
// same overwrite-on-collision behaviour as MemoryStore.
type SQLiteStore struct {
	db     *sql.DB
	ownsDB bool

	// Prepared statements
	insertEvent *sql.Stmt
	keyExists   *sql.Stmt
	queryWindow *sql.Stmt
	countEvents *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

// OpenSQLite opens dsn, applies migrations and returns a store that closes
// the database on Close. The pool is limited to one connection so an
// in-memory DSN refers to a single database for the life of the store.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := NewMigrationRunner(db).Run(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}
	store.ownsDB = true

	return store, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertEvent, err = s.db.Prepare(`
		INSERT OR REPLACE INTO api_events (time_key, endpoint, latency, status_code, is_error)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.keyExists, err = s.db.Prepare(`SELECT COUNT(*) FROM api_events WHERE time_key = ?`)
	if err != nil {
		return err
	}

	s.queryWindow, err = s.db.Prepare(`
		SELECT time_key, endpoint, latency, status_code, is_error
		FROM api_events
		WHERE time_key >= ? AND time_key <= ? AND endpoint = ?
		ORDER BY time_key
	`)
	if err != nil {
		return err
	}

	s.countEvents, err = s.db.Prepare(`SELECT COUNT(*) FROM api_events`)
	if err != nil {
		return err
	}

	return nil
}

// Insert normalizes the event and writes it under its time-key, replacing
// any existing row at that key.
func (s *SQLiteStore) Insert(ctx context.Context, event RawEvent) (bool, error) {
	stored, err := normalize(event)
	if err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var existing int
	if err := tx.StmtContext(ctx, s.keyExists).QueryRowContext(ctx, stored.TimeKey).Scan(&existing); err != nil {
		return false, fmt.Errorf("check time key: %w", err)
	}

	_, err = tx.StmtContext(ctx, s.insertEvent).ExecContext(ctx,
		stored.TimeKey, stored.Endpoint, stored.Latency, stored.StatusCode, stored.IsError,
	)
	if err != nil {
		return false, fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit insert: %w", err)
	}

	return existing > 0, nil
}

// QueryWindow returns matching events ordered by time-key.
func (s *SQLiteStore) QueryWindow(ctx context.Context, from, to int64, endpoint string) ([]StoredEvent, error) {
	rows, err := s.queryWindow.QueryContext(ctx, from, to, endpoint)
	if err != nil {
		return nil, fmt.Errorf("query window: %w", err)
	}
	defer rows.Close()

	events := []StoredEvent{}
	for rows.Next() {
		var e StoredEvent
		if err := rows.Scan(&e.TimeKey, &e.Endpoint, &e.Latency, &e.StatusCode, &e.IsError); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// GetStats returns aggregate statistics about the stored events.
func (s *SQLiteStore) GetStats(ctx context.Context, topN int) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT endpoint) FROM api_events",
	).Scan(&stats.TotalEvents, &stats.DistinctEndpoints)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	// MIN/MAX are NULL on an empty table
	if stats.TotalEvents > 0 {
		err = s.db.QueryRowContext(ctx,
			"SELECT MIN(time_key), MAX(time_key) FROM api_events",
		).Scan(&stats.EarliestKey, &stats.LatestKey)
		if err != nil {
			return nil, fmt.Errorf("event time range: %w", err)
		}
	}

	limit := topN
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT endpoint, COUNT(*) AS cnt FROM api_events GROUP BY endpoint ORDER BY cnt DESC, endpoint ASC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top endpoints: %w", err)
	}
	defer rows.Close()

	stats.TopEndpoints = []EndpointCount{}
	for rows.Next() {
		var ec EndpointCount
		if err := rows.Scan(&ec.Endpoint, &ec.Count); err != nil {
			return nil, err
		}
		stats.TopEndpoints = append(stats.TopEndpoints, ec)
	}

	return stats, rows.Err()
}

// Len returns the number of stored events.
func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.countEvents.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// Close releases all prepared statements. The underlying *sql.DB is closed
// only when the store was created by OpenSQLite.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.insertEvent, s.keyExists, s.queryWindow, s.countEvents}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
