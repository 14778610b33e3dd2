// Package sqlite implements sqldb.Gateway on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookstore/internal/platform/sqldb"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Gateway is a database/sql-backed sqldb.Gateway.
type Gateway struct {
	db      *sql.DB
	timeout time.Duration
}

var _ sqldb.Gateway = (*Gateway)(nil)

// Open opens (creating if needed) the database file at path. Pragmas are
// set through the DSN so every pooled connection gets them.
func Open(ctx context.Context, path string, timeout time.Duration) (*Gateway, error) {
	db, err := sql.Open("sqlite", withPragmas(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Gateway{db: db, timeout: timeout}, nil
}

func withPragmas(path string) string {
	pragmas := []string{
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
		"_pragma=busy_timeout(5000)",
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(pragmas, "&")
}

// DB exposes the handle for tooling such as migrations.
func (g *Gateway) DB() *sql.DB {
	return g.db
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

	rows, err := g.db.QueryContext(timeoutCtx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []sqldb.Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(sqldb.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Ping checks that the database is reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}

// Close closes the database handle.
func (g *Gateway) Close() error {
	return g.db.Close()
}

func translate(err error) error {
	var sqlErr *msqlite.Error
	if !errors.As(err, &sqlErr) {
		return err
	}
	switch sqlErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %s", sqldb.ErrUniqueViolation, sqlErr.Error())
	case sqlite3.SQLITE_CONSTRAINT:
		if strings.Contains(sqlErr.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", sqldb.ErrUniqueViolation, sqlErr.Error())
		}
	}
	return err
}
