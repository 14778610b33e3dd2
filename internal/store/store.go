// Package store opens the configured relational backend.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"bookstore/internal/config"
	"bookstore/internal/platform/postgres"
	"bookstore/internal/platform/sqldb"
	"bookstore/internal/platform/sqlite"

	"github.com/jackc/pgx/v5/stdlib"
)

// Open returns the gateway for cfg.Driver, already pinged.
func Open(ctx context.Context, cfg config.Database) (sqldb.Gateway, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		gw, err := postgres.Open(ctx, postgres.Config{
			DSN:          cfg.DSN,
			MaxConns:     cfg.MaxConns,
			QueryTimeout: cfg.QueryTimeout,
		})
		if err != nil {
			return nil, err
		}
		return gw, nil
	case config.DriverSQLite:
		gw, err := sqlite.Open(ctx, cfg.DSN, cfg.QueryTimeout)
		if err != nil {
			return nil, err
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Dialect returns the goose dialect for driver.
func Dialect(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres:
		return "postgres", nil
	case config.DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// StdDB returns a database/sql handle sharing g's connections. Closing g
// releases it.
func StdDB(g sqldb.Gateway) (*sql.DB, error) {
	switch gw := g.(type) {
	case *postgres.Gateway:
		return stdlib.OpenDBFromPool(gw.Pool()), nil
	case *sqlite.Gateway:
		return gw.DB(), nil
	default:
		return nil, fmt.Errorf("gateway %T has no database/sql handle", g)
	}
}
