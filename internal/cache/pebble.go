// file: internal/cache/pebble.go
// version: 1.0.0
// guid: bd993430-ae02-4a8d-9af7-a26c6c8ba725

package cache

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cockroachdb/pebble/v2"
)

// PebbleBackend stores cache entries in a PebbleDB directory.
type PebbleBackend struct {
	db *pebble.DB
}

// NewPebbleBackend opens or creates a PebbleDB instance at path.
func NewPebbleBackend(path string) (*PebbleBackend, error) {
	if path == "" {
		return nil, errors.New("pebble cache path is empty")
	}
	db, err := pebble.Open(path, &pebble.Options{
		FormatMajorVersion: pebble.FormatNewest,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB: %w", err)
	}
	log.Printf("[INFO] cache PebbleDB opened at %s (format version: %s)", path, db.FormatMajorVersion())
	return &PebbleBackend{db: db}, nil
}

// Get returns a copy of the stored value.
func (p *PebbleBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), true, nil
}

func (p *PebbleBackend) Set(_ context.Context, key string, value []byte) error {
	return p.db.Set([]byte(key), value, pebble.Sync)
}

func (p *PebbleBackend) Delete(_ context.Context, key string) error {
	return p.db.Delete([]byte(key), pebble.Sync)
}

// Scan iterates the key range covered by prefix.
func (p *PebbleBackend) Scan(ctx context.Context, prefix string, fn func(string, []byte) error) error {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := string(iter.Key())
		value := append([]byte(nil), iter.Value()...)
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Close closes the underlying PebbleDB.
func (p *PebbleBackend) Close() error {
	return p.db.Close()
}
