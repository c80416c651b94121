// Package catalog provides read-only access to the table catalog of a
// SQLite database: table names, column descriptors, row counts, and full
// table contents.
//
// This package contains the public contract consumed by pkg/compare.
// The concrete SQLite implementation is in sqlite.go.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// ErrTableNotFound is returned when a table disappears between listing
// and querying. Callers detect it with errors.Is and treat it as a
// per-table condition rather than a fatal one.
var ErrTableNotFound = errors.New("table not found")

// Column describes a single column of a table. Identity is the name;
// two columns are the same definition iff all fields are equal.
type Column struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	NotNull bool           `json:"not_null"`
	Default sql.NullString `json:"default"`
	// PK is the 1-based position of the column within the primary key,
	// 0 when the column is not part of it.
	PK int `json:"pk"`
}

// Row is a single table row keyed by column name. Values are the scalar
// forms the driver produces: nil, int64, float64, string, or []byte.
type Row map[string]any

// Reader provides read-only catalog access to a single database.
type Reader interface {
	// Tables returns the user table names, excluding SQLite's reserved
	// internal tables.
	Tables(ctx context.Context) ([]string, error)

	// Schema returns the column descriptors of a table in declaration
	// order. Returns ErrTableNotFound if the table does not exist.
	Schema(ctx context.Context, table string) ([]Column, error)

	// RowCount returns the number of rows in a table.
	RowCount(ctx context.Context, table string) (int64, error)

	// Rows returns every row of a table.
	Rows(ctx context.Context, table string) ([]Row, error)
}

// QuoteIdentifier quotes a table or column name for interpolation into
// SQL. This is the only place identifiers enter SQL text; all value
// parameters go through placeholders.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
