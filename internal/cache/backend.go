// file: internal/cache/backend.go
// version: 1.0.0
// guid: 24a70652-4360-4e1d-8ada-79aec4964379

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedBackend is returned by NewBackend for unknown backend kinds.
var ErrUnsupportedBackend = errors.New("unsupported cache backend")

// Backend is a byte-oriented key-value store with prefix scans. Every
// implementation is safe for concurrent use.
type Backend interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Scan calls fn for every key starting with prefix, in key order. The
	// value slice is owned by fn. Returning an error from fn stops the scan.
	Scan(ctx context.Context, prefix string, fn func(key string, value []byte) error) error
	Close() error
}

// BackendOptions selects and locates a Backend.
type BackendOptions struct {
	// Kind is one of memory, pebble, sqlite or postgres. Empty means pebble.
	Kind string
	// Path is the pebble directory or sqlite file.
	Path string
	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string
	// EnableSQLite must be set to use the sqlite backend.
	EnableSQLite bool
}

// NewBackend opens the backend described by opts.
func NewBackend(ctx context.Context, opts BackendOptions) (Backend, error) {
	switch strings.ToLower(opts.Kind) {
	case "memory":
		return NewMemoryBackend(), nil
	case "pebble", "":
		// PebbleDB is the default
		b, err := NewPebbleBackend(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PebbleDB cache: %w", err)
		}
		return b, nil
	case "sqlite", "sqlite3":
		if !opts.EnableSQLite {
			return nil, fmt.Errorf("SQLite3 is not enabled. To use SQLite3, you must explicitly enable it with --enable-sqlite3-i-know-the-risks or set 'enable_sqlite3_i_know_the_risks: true' in your config file. PebbleDB is the recommended cache backend")
		}
		b, err := NewSQLiteBackend(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite cache: %w", err)
		}
		return b, nil
	case "postgres", "postgresql":
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres cache backend requires cache.postgres_dsn")
		}
		b, err := NewPostgresBackend(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL cache: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: pebble, sqlite, postgres, memory)", ErrUnsupportedBackend, opts.Kind)
	}
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, or nil when no such key exists.
func prefixUpperBound(prefix string) []byte {
	end := []byte(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
