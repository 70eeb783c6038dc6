// file: internal/cache/postgres.go
// version: 1.0.0
// guid: f379e0e4-b50c-4668-91a5-45cd7f5f1312

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores cache entries in a PostgreSQL table through a
// pgx connection pool. Several resolver processes may share it.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend connects to dsn, pings, and creates the table.
func NewPostgresBackend(ctx context.Context, dsn string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS kv_cache (
			key TEXT COLLATE "C" PRIMARY KEY,
			value BYTEA NOT NULL
		)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create kv_cache table: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM kv_cache WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (p *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	const upsert = `
		INSERT INTO kv_cache (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := p.pool.Exec(ctx, upsert, key, value); err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM kv_cache WHERE key = $1`, key)
	return err
}

func (p *PostgresBackend) Scan(ctx context.Context, prefix string, fn func(string, []byte) error) error {
	var (
		rows pgx.Rows
		err  error
	)
	if upper := prefixUpperBound(prefix); upper != nil {
		rows, err = p.pool.Query(ctx, `SELECT key, value FROM kv_cache WHERE key >= $1 AND key < $2 ORDER BY key`, prefix, string(upper))
	} else {
		rows, err = p.pool.Query(ctx, `SELECT key, value FROM kv_cache WHERE key >= $1 ORDER BY key`, prefix)
	}
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (p *PostgresBackend) Close() error {
	p.pool.Close()
	return nil
}
