package compare

import (
	"context"
	"errors"

	"github.com/leapstack-labs/dbdiff/pkg/catalog"
)

// CompareTable compares one table present in both catalogs. Row contents
// are only fetched and matched when the schemas agree; with mismatched
// schemas a row-level diff would compare incomparable shapes.
//
// Catalog errors never panic and never abort the run: a vanished table
// lowers the exists flag, a canceled context marks the result
// incomplete, and anything else is recorded verbatim.
func CompareTable(ctx context.Context, a, b catalog.Reader, table string) *TableResult {
	res := &TableResult{Table: table, ExistsInA: true, ExistsInB: true}

	schemaA, err := a.Schema(ctx, table)
	if err != nil {
		return res.abort(err, sideA)
	}
	schemaB, err := b.Schema(ctx, table)
	if err != nil {
		return res.abort(err, sideB)
	}

	res.Schema = DiffSchemas(schemaA, schemaB)

	countA, err := a.RowCount(ctx, table)
	if err != nil {
		return res.abort(err, sideA)
	}
	res.RowCountA = countA

	countB, err := b.RowCount(ctx, table)
	if err != nil {
		return res.abort(err, sideB)
	}
	res.RowCountB = countB

	if res.Schema.Matches {
		rowsA, err := a.Rows(ctx, table)
		if err != nil {
			return res.abort(err, sideA)
		}
		rowsB, err := b.Rows(ctx, table)
		if err != nil {
			return res.abort(err, sideB)
		}
		res.Rows = DiffRows(rowsA, rowsB)
	}

	res.Identical = res.Schema.Matches &&
		res.RowCountA == res.RowCountB &&
		res.Rows != nil && res.Rows.FullyIdentical

	return res
}

type side int

const (
	sideA side = iota
	sideB
)

// abort settles the result after a catalog error. The result is still
// returned to the caller; only the flags say what went wrong.
func (r *TableResult) abort(err error, s side) *TableResult {
	switch {
	case errors.Is(err, catalog.ErrTableNotFound):
		if s == sideA {
			r.ExistsInA = false
		} else {
			r.ExistsInB = false
		}
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		r.Incomplete = true
	}
	r.Error = err.Error()
	return r
}
