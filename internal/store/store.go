package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/garden/internal/logger"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("store: key not found")

// KV is the durable blob store the persistence adapter writes through.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	Path   string // SQLite database file
	DSN    string // Postgres connection string
}

// Open returns the backend selected by opts.Driver.
func Open(ctx context.Context, opts Options) (KV, error) {
	log := logger.GetStoreLogger()
	log.Debug().Str("driver", opts.Driver).Str("path", opts.Path).Msg("opening store")

	switch opts.Driver {
	case DriverSQLite, "":
		if opts.Path == "" {
			return nil, fmt.Errorf("store: sqlite driver requires a path")
		}
		return OpenSQLite(opts.Path)
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("store: postgres driver requires a dsn")
		}
		return OpenPostgres(ctx, opts.DSN)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", opts.Driver)
	}
}
