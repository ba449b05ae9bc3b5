package storage

import (
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// DefaultSQLiteDSN keeps the SQLite backend in memory.
const DefaultSQLiteDSN = "file::memory:"

// Options selects and configures a Store backend.
type Options struct {
	Backend   string
	SQLiteDSN string
}

// Open returns the Store named by opts.Backend. An empty backend means memory.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		dsn := opts.SQLiteDSN
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (use %s or %s)", opts.Backend, BackendMemory, BackendSQLite)
	}
}
