// Package postgres implements sqldb.Gateway on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookstore/internal/platform/sqldb"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Config holds pool settings.
type Config struct {
	DSN          string
	MaxConns     int32
	QueryTimeout time.Duration
}

// Gateway is a pgxpool-backed sqldb.Gateway.
type Gateway struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

var _ sqldb.Gateway = (*Gateway)(nil)

// Open creates the pool and verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*Gateway, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	g := New(pool, cfg.QueryTimeout)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := g.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return g, nil
}

// New wraps an existing pool. A zero timeout leaves queries bounded only by
// the caller's context.
func New(pool *pgxpool.Pool, timeout time.Duration) *Gateway {
	return &Gateway{pool: pool, timeout: timeout}
}

// Pool exposes the underlying pool for tooling such as migrations.
func (g *Gateway) Pool() *pgxpool.Pool {
	return g.pool
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// Query runs query and collects every returned row.
func (g *Gateway) Query(ctx context.Context, query string, args ...any) ([]sqldb.Row, error) {
	timeoutCtx, cancel := g.withTimeout(ctx)
	defer cancel()

	rows, err := g.pool.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, translate(err)
	}

	out := make([]sqldb.Row, 0, len(maps))
	for _, m := range maps {
		out = append(out, sqldb.Row(m))
	}
	return out, nil
}

// Ping checks that a connection can be acquired.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (g *Gateway) Close() error {
	g.pool.Close()
	return nil
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", sqldb.ErrUniqueViolation, pgErr.ConstraintName)
	}
	return err
}
