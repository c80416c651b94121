package compare

import "time"

// SchemaDiff is the outcome of comparing the column definitions of one
// table across the two databases. Differences preserve emission order:
// columns missing from DB2 first, then columns missing from DB1, then
// columns defined differently on both sides.
type SchemaDiff struct {
	Matches     bool     `json:"matches"`
	Differences []string `json:"differences,omitempty"`
}

// RowDiff is the outcome of set-matching the rows of one table under
// normalization. Counts are multiplicity-aware: a row present twice on
// one side and once on the other contributes one to the surplus side.
type RowDiff struct {
	// CountEqual compares the raw row counts, independent of matching.
	CountEqual     bool   `json:"count_equal"`
	OnlyInA        int    `json:"only_in_a"`
	OnlyInB        int    `json:"only_in_b"`
	Identical      int    `json:"identical"`
	FullyIdentical bool   `json:"fully_identical"`
	Error          string `json:"error,omitempty"`
}

// TableResult is the complete verdict for a single table. It is never
// mutated after CompareTable returns it.
type TableResult struct {
	Table     string `json:"table"`
	ExistsInA bool   `json:"exists_in_a"`
	ExistsInB bool   `json:"exists_in_b"`

	Schema    *SchemaDiff `json:"schema,omitempty"`
	RowCountA int64       `json:"row_count_a"`
	RowCountB int64       `json:"row_count_b"`

	// Rows is nil when the schemas do not match; mismatched schemas make
	// row-level comparison meaningless, so it is skipped.
	Rows *RowDiff `json:"rows,omitempty"`

	Identical bool `json:"identical"`

	// Incomplete marks a comparison cut short by cancellation. The
	// partial result is still reported, never silently dropped.
	Incomplete bool   `json:"incomplete,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Result is the verdict for a whole database pair.
type Result struct {
	SourceA string `json:"source_a"`
	SourceB string `json:"source_b"`

	// Table name sets, each sorted.
	OnlyInA []string `json:"only_in_a,omitempty"`
	OnlyInB []string `json:"only_in_b,omitempty"`
	Common  []string `json:"common,omitempty"`

	// Tables holds one entry per common table.
	Tables map[string]*TableResult `json:"tables"`

	// Identical starts true and latches false; it never returns to true
	// once any difference is observed.
	Identical bool `json:"identical"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Duration returns the wall-clock time the comparison took.
func (r *Result) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// TypeMismatch is a value that prints identically on both sides but is
// stored under different SQLite storage classes.
type TypeMismatch struct {
	Column string `json:"column"`
	Value  string `json:"value"`
	TypeA  string `json:"type_a"`
	TypeB  string `json:"type_b"`
}

// Analysis separates type-level drift from genuine content differences
// for one table. It is derived on demand from the live rows and never
// persisted.
type Analysis struct {
	TypeMismatches []TypeMismatch      `json:"type_mismatches,omitempty"`
	SamplesOnlyInA []map[string]string `json:"samples_only_in_a,omitempty"`
	SamplesOnlyInB []map[string]string `json:"samples_only_in_b,omitempty"`

	// TypeOnly is true when at least one type mismatch was observed and
	// no row key is exclusive to either side, i.e. the data differs only
	// in storage class.
	TypeOnly bool `json:"type_only"`
}
