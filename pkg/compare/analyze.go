package compare

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/dbdiff/pkg/catalog"
)

// DefaultMaxSamples bounds how many examples each analysis bucket keeps.
const DefaultMaxSamples = 10

const (
	// maxMismatchValueLen caps the value shown in a type mismatch entry.
	maxMismatchValueLen = 50
	// maxSampleValueLen caps each value in a content sample snapshot.
	maxSampleValueLen = 100
)

// Analyze inspects two row collections sharing a schema and separates
// type-level drift from genuine content differences. Rows are keyed by
// their stringified values, so a number stored as text and the same
// number stored as an integer land on the same key and are told apart
// only by storage class.
func Analyze(rowsA, rowsB []catalog.Row, maxSamples int) *Analysis {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}

	byKeyA := indexByKey(rowsA)
	byKeyB := indexByKey(rowsB)

	analysis := &Analysis{}

	// Type pass: a bounded scan of side-A rows whose keys appear on both
	// sides. Within a key match every column prints identically, so any
	// storage-class difference there is type drift.
	var sawTypeMismatch bool
	limit := min(2*maxSamples, len(rowsA))
	for _, rowA := range rowsA[:limit] {
		rowB, ok := byKeyB[lookupKey(rowA)]
		if !ok {
			continue
		}
		for _, col := range sortedColumns(rowA) {
			va, vb := rowA[col], rowB[col]
			if typeName(va) == typeName(vb) || stringifyValue(va) != stringifyValue(vb) {
				continue
			}
			sawTypeMismatch = true
			if len(analysis.TypeMismatches) < maxSamples {
				analysis.TypeMismatches = append(analysis.TypeMismatches, TypeMismatch{
					Column: col,
					Value:  truncateValue(stringifyValue(va), maxMismatchValueLen),
					TypeA:  typeName(va),
					TypeB:  typeName(vb),
				})
			}
		}
	}

	// Content pass: keys present on exactly one side are genuine content
	// differences. Counted over all keys; only the samples are bounded.
	onlyA := collectOnly(rowsA, byKeyB, maxSamples, &analysis.SamplesOnlyInA)
	onlyB := collectOnly(rowsB, byKeyA, maxSamples, &analysis.SamplesOnlyInB)

	analysis.TypeOnly = sawTypeMismatch && onlyA == 0 && onlyB == 0

	return analysis
}

// collectOnly counts keys missing from the other side and snapshots the
// first maxSamples of them, walking rows in input order for stable
// output.
func collectOnly(rows []catalog.Row, other map[string]catalog.Row, maxSamples int, samples *[]map[string]string) int {
	count := 0
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		key := lookupKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := other[key]; ok {
			continue
		}
		count++
		if len(*samples) < maxSamples {
			*samples = append(*samples, snapshotRow(row))
		}
	}
	return count
}

// indexByKey maps each lookup key to one representative row.
func indexByKey(rows []catalog.Row) map[string]catalog.Row {
	byKey := make(map[string]catalog.Row, len(rows))
	for _, row := range rows {
		byKey[lookupKey(row)] = row
	}
	return byKey
}

// lookupKey joins the stringified values of a row with pipes in sorted
// column order, rendering nulls as the literal NULL. Unlike rowKey it is
// deliberately blind to storage class.
func lookupKey(row catalog.Row) string {
	cols := sortedColumns(row)
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = stringifyValue(row[col])
	}
	return strings.Join(parts, "|")
}

// sortedColumns returns the row's column names in sorted order.
func sortedColumns(row catalog.Row) []string {
	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// stringifyValue renders a scalar the way lookup keys and sample
// snapshots print it. Integers and equal-valued reals collide here on
// purpose; the type pass exists to tell them apart.
func stringifyValue(v any) string {
	switch s := v.(type) {
	case nil:
		return "NULL"
	case string:
		return s
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	case []byte:
		return fmt.Sprintf("%x", s)
	default:
		return fmt.Sprintf("%v", s)
	}
}

// typeName reports the SQLite storage class of a scalar.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case int64:
		return "integer"
	case float64:
		return "real"
	case string:
		return "text"
	case []byte:
		return "blob"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// snapshotRow renders a row for sample output.
func snapshotRow(row catalog.Row) map[string]string {
	snap := make(map[string]string, len(row))
	for col, v := range row {
		snap[col] = truncateValue(stringifyValue(v), maxSampleValueLen)
	}
	return snap
}

// truncateValue cuts s to at most limit runes.
func truncateValue(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
