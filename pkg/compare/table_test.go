package compare

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dbdiff/pkg/catalog"
)

// fakeReader is an in-memory catalog.Reader for exercising comparison
// flows without a database file.
type fakeReader struct {
	tables   []string
	schemas  map[string][]catalog.Column
	rows     map[string][]catalog.Row
	vanished map[string]bool
}

func (f *fakeReader) Tables(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.tables, nil
}

func (f *fakeReader) Schema(ctx context.Context, table string) ([]catalog.Column, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cols, ok := f.schemas[table]
	if !ok || f.vanished[table] {
		return nil, fmt.Errorf("schema for %s: %w", table, catalog.ErrTableNotFound)
	}
	return cols, nil
}

func (f *fakeReader) RowCount(ctx context.Context, table string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if f.vanished[table] {
		return 0, fmt.Errorf("row count for %s: %w", table, catalog.ErrTableNotFound)
	}
	return int64(len(f.rows[table])), nil
}

func (f *fakeReader) Rows(ctx context.Context, table string) ([]catalog.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.vanished[table] {
		return nil, fmt.Errorf("rows for %s: %w", table, catalog.ErrTableNotFound)
	}
	return f.rows[table], nil
}

var _ catalog.Reader = (*fakeReader)(nil)

// usersReader builds a single-table fixture with the given rows.
func usersReader(rows ...catalog.Row) *fakeReader {
	return &fakeReader{
		tables: []string{"users"},
		schemas: map[string][]catalog.Column{
			"users": {col("id", "INTEGER"), col("email", "TEXT")},
		},
		rows: map[string][]catalog.Row{"users": rows},
	}
}

func TestCompareTable_Identical(t *testing.T) {
	a := usersReader(catalog.Row{"id": int64(1), "email": "a@x.com"})
	b := usersReader(catalog.Row{"id": int64(1), "email": "a@x.com"})

	res := CompareTable(context.Background(), a, b, "users")

	assert.True(t, res.Identical)
	assert.True(t, res.ExistsInA)
	assert.True(t, res.ExistsInB)
	assert.True(t, res.Schema.Matches)
	assert.Equal(t, int64(1), res.RowCountA)
	assert.Equal(t, int64(1), res.RowCountB)
	require.NotNil(t, res.Rows)
	assert.True(t, res.Rows.FullyIdentical)
	assert.False(t, res.Incomplete)
	assert.Empty(t, res.Error)
}

func TestCompareTable_TrailingWhitespaceStillIdentical(t *testing.T) {
	a := usersReader(catalog.Row{"id": int64(1), "email": "user@example.com"})
	b := usersReader(catalog.Row{"id": int64(1), "email": "user@example.com   "})

	res := CompareTable(context.Background(), a, b, "users")
	assert.True(t, res.Identical)
}

func TestCompareTable_SchemaMismatchSkipsRows(t *testing.T) {
	a := &fakeReader{
		tables: []string{"orders"},
		schemas: map[string][]catalog.Column{
			"orders": {col("id", "INTEGER"), col("total", "REAL")},
		},
		rows: map[string][]catalog.Row{
			"orders": {{"id": int64(1), "total": 9.99}},
		},
	}
	b := &fakeReader{
		tables: []string{"orders"},
		schemas: map[string][]catalog.Column{
			"orders": {col("id", "INTEGER"), col("total", "REAL"), col("discount", "REAL")},
		},
		rows: map[string][]catalog.Row{
			"orders": {{"id": int64(1), "total": 9.99, "discount": 0.1}},
		},
	}

	res := CompareTable(context.Background(), a, b, "orders")

	assert.False(t, res.Identical)
	require.NotNil(t, res.Schema)
	assert.False(t, res.Schema.Matches)
	require.Len(t, res.Schema.Differences, 1)
	assert.Equal(t, "Column 'discount' exists in DB2 but not in DB1", res.Schema.Differences[0])

	// Counts are still reported, but no row diff is attempted.
	assert.Equal(t, int64(1), res.RowCountA)
	assert.Equal(t, int64(1), res.RowCountB)
	assert.Nil(t, res.Rows)
}

func TestCompareTable_RowCountMismatch(t *testing.T) {
	a := usersReader(
		catalog.Row{"id": int64(1), "email": "a@x.com"},
		catalog.Row{"id": int64(2), "email": "b@x.com"},
	)
	b := usersReader(catalog.Row{"id": int64(1), "email": "a@x.com"})

	res := CompareTable(context.Background(), a, b, "users")

	assert.False(t, res.Identical)
	assert.True(t, res.Schema.Matches)
	assert.Equal(t, int64(2), res.RowCountA)
	assert.Equal(t, int64(1), res.RowCountB)
	require.NotNil(t, res.Rows)
	assert.False(t, res.Rows.CountEqual)
	assert.Equal(t, 1, res.Rows.OnlyInA)
}

func TestCompareTable_VanishedInB(t *testing.T) {
	a := usersReader(catalog.Row{"id": int64(1), "email": "a@x.com"})
	b := usersReader()
	b.vanished = map[string]bool{"users": true}

	res := CompareTable(context.Background(), a, b, "users")

	assert.False(t, res.Identical)
	assert.True(t, res.ExistsInA)
	assert.False(t, res.ExistsInB)
	assert.Contains(t, res.Error, "table not found")
	assert.False(t, res.Incomplete)
}

func TestCompareTable_Canceled(t *testing.T) {
	a := usersReader(catalog.Row{"id": int64(1), "email": "a@x.com"})
	b := usersReader(catalog.Row{"id": int64(1), "email": "a@x.com"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := CompareTable(ctx, a, b, "users")

	require.NotNil(t, res)
	assert.True(t, res.Incomplete)
	assert.False(t, res.Identical)
	assert.NotEmpty(t, res.Error)
}

func TestCompareTable_NormalizationFailureRecorded(t *testing.T) {
	a := usersReader(catalog.Row{"id": int64(1), "email": complex(1, 2)})
	b := usersReader(catalog.Row{"id": int64(1), "email": "a@x.com"})

	res := CompareTable(context.Background(), a, b, "users")

	assert.False(t, res.Identical)
	require.NotNil(t, res.Rows)
	assert.NotEmpty(t, res.Rows.Error)
	assert.Equal(t, 1, res.Rows.OnlyInA)
	assert.Equal(t, 1, res.Rows.OnlyInB)
}
