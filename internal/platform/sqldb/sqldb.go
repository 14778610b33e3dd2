// Package sqldb defines the query-execution contract shared by the
// relational gateways.
package sqldb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrUniqueViolation is returned when a statement breaks a unique or
// primary key constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

// Row is a single result row keyed by column name.
type Row map[string]any

// Gateway executes parameterized statements against a relational store.
// Placeholders are positional ($1, $2, ...).
type Gateway interface {
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	Ping(ctx context.Context) error
	Close() error
}

// String returns the text value of column.
func (r Row) String(column string) (string, error) {
	v, ok := r[column]
	if !ok {
		return "", fmt.Errorf("column %q missing", column)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("column %q: unexpected type %T", column, v)
	}
}

// Int returns the integer value of column.
func (r Row) Int(column string) (int, error) {
	v, ok := r[column]
	if !ok {
		return 0, fmt.Errorf("column %q missing", column)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case []byte:
		return strconv.Atoi(string(n))
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("column %q: unexpected type %T", column, v)
	}
}
