package compare

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/dbdiff/pkg/catalog"
)

// Side labels used in human-readable difference messages.
const (
	LabelA = "DB1"
	LabelB = "DB2"
)

// DiffSchemas compares two column sets by name. Column order never
// affects the verdict; only the set of definitions does.
func DiffSchemas(colsA, colsB []catalog.Column) *SchemaDiff {
	byNameA := columnsByName(colsA)
	byNameB := columnsByName(colsB)

	var diffs []string

	for _, col := range colsA {
		if _, ok := byNameB[col.Name]; !ok {
			diffs = append(diffs, fmt.Sprintf("Column '%s' exists in %s but not in %s", col.Name, LabelA, LabelB))
		}
	}

	for _, col := range colsB {
		if _, ok := byNameA[col.Name]; !ok {
			diffs = append(diffs, fmt.Sprintf("Column '%s' exists in %s but not in %s", col.Name, LabelB, LabelA))
		}
	}

	for _, col := range colsA {
		other, ok := byNameB[col.Name]
		if !ok {
			continue
		}
		if col != other {
			diffs = append(diffs, fmt.Sprintf("Column '%s' has different definitions: %s=%s vs %s=%s",
				col.Name, LabelA, describeColumn(col), LabelB, describeColumn(other)))
		}
	}

	return &SchemaDiff{
		Matches:     len(diffs) == 0,
		Differences: diffs,
	}
}

// columnsByName indexes column descriptors by name.
func columnsByName(cols []catalog.Column) map[string]catalog.Column {
	byName := make(map[string]catalog.Column, len(cols))
	for _, col := range cols {
		byName[col.Name] = col
	}
	return byName
}

// describeColumn renders a descriptor for difference messages, e.g.
// "INTEGER NOT NULL DEFAULT 0 PK".
func describeColumn(col catalog.Column) string {
	parts := []string{col.Type}
	if col.NotNull {
		parts = append(parts, "NOT NULL")
	}
	if col.Default.Valid {
		parts = append(parts, "DEFAULT "+col.Default.String)
	}
	if col.PK > 0 {
		parts = append(parts, "PK")
	}
	return strings.Join(parts, " ")
}
