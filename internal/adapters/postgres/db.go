package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// maxPoolConns bounds the shared pool; predict traffic is bursty but
// each query is short-lived.
const maxPoolConns = 50

// DB owns the pgx connection pool every repository in this package
// queries through.
type DB struct {
	Pool *pgxpool.Pool
}

// New opens a pool against dsn and pings it once, so a bad DSN or an
// unreachable server fails at startup rather than on the first query.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = maxPoolConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close drains and releases the pool.
func (db *DB) Close() {
	db.Pool.Close()
}
