package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // sqlite driver (pure Go)
)

// SQLite implements Reader against a SQLite database file.
type SQLite struct {
	DB     *sql.DB
	Source string
}

// NewSQLite creates a new, unconnected SQLite catalog reader.
func NewSQLite() *SQLite {
	return &SQLite{}
}

// Connect opens the database file in read-only mode and verifies the
// connection. The comparison never writes to a compared database, so a
// read-only handle is all it ever holds. The file: URI form is required:
// without it the driver ignores mode=ro and would create a missing file.
func (c *SQLite) Connect(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database %s: %w", path, err)
	}

	c.DB = db
	c.Source = path

	return nil
}

// Close closes the database connection.
func (c *SQLite) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Tables returns the user table names in name order, excluding SQLite's
// reserved sqlite_* tables.
func (c *SQLite) Tables(ctx context.Context) ([]string, error) {
	if c.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := c.DB.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}

	return names, nil
}

// Schema returns the column descriptors of a table in declaration order.
func (c *SQLite) Schema(ctx context.Context, table string) ([]Column, error) {
	if c.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	//nolint:gosec // identifier is quoted by QuoteIdentifier
	query := fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdentifier(table))

	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema for %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var (
			cid     int
			col     Column
			notNull int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &col.Default, &col.PK); err != nil {
			return nil, fmt.Errorf("failed to scan column descriptor: %w", err)
		}
		col.NotNull = notNull != 0
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schema for %s: %w", table, err)
	}

	// PRAGMA table_info yields no rows for a missing table rather than
	// an error.
	if len(columns) == 0 {
		return nil, fmt.Errorf("schema for %s: %w", table, ErrTableNotFound)
	}

	return columns, nil
}

// RowCount returns the number of rows in a table.
func (c *SQLite) RowCount(ctx context.Context, table string) (int64, error) {
	if c.DB == nil {
		return 0, fmt.Errorf("database connection not established")
	}

	//nolint:gosec // identifier is quoted by QuoteIdentifier
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", QuoteIdentifier(table))

	var count int64
	if err := c.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		if isNoSuchTable(err) {
			return 0, fmt.Errorf("row count for %s: %w", table, ErrTableNotFound)
		}
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}

	return count, nil
}

// Rows returns every row of a table keyed by column name.
func (c *SQLite) Rows(ctx context.Context, table string) ([]Row, error) {
	if c.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	//nolint:gosec // identifier is quoted by QuoteIdentifier
	query := fmt.Sprintf("SELECT * FROM %s", QuoteIdentifier(table))

	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		if isNoSuchTable(err) {
			return nil, fmt.Errorf("rows for %s: %w", table, ErrTableNotFound)
		}
		return nil, fmt.Errorf("failed to read rows from %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns for %s: %w", table, err)
	}

	var result []Row
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}
		row := make(Row, len(cols))
		for i, name := range cols {
			row[name] = values[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", table, err)
	}

	return result, nil
}

// isNoSuchTable reports whether err is SQLite's missing-table error.
// The driver surfaces it as a plain message, so the text is the contract.
func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// Ensure SQLite implements the Reader interface.
var _ Reader = (*SQLite)(nil)
