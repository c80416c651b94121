package compare

import "github.com/leapstack-labs/dbdiff/pkg/catalog"

// DiffRows set-matches two row collections under normalization. Rows
// are matched as a multiset: per fingerprint, min(countA, countB) pairs
// count as identical and the surplus lands on the side that holds it.
//
// A normalization failure never aborts the comparison; it degrades to
// treating every row as unmatched and records the error on the result.
func DiffRows(rowsA, rowsB []catalog.Row) *RowDiff {
	diff := &RowDiff{CountEqual: len(rowsA) == len(rowsB)}

	if len(rowsA) == 0 && len(rowsB) == 0 {
		diff.FullyIdentical = true
		return diff
	}

	countsA, err := countByKey(rowsA)
	var countsB map[string]int
	if err == nil {
		countsB, err = countByKey(rowsB)
	}
	if err != nil {
		diff.OnlyInA = len(rowsA)
		diff.OnlyInB = len(rowsB)
		diff.Error = err.Error()
		return diff
	}

	for key, a := range countsA {
		b := countsB[key]
		diff.Identical += min(a, b)
		if a > b {
			diff.OnlyInA += a - b
		}
	}
	for key, b := range countsB {
		a := countsA[key]
		if b > a {
			diff.OnlyInB += b - a
		}
	}

	diff.FullyIdentical = diff.OnlyInA == 0 && diff.OnlyInB == 0
	return diff
}

// countByKey tallies row multiplicities per fingerprint.
func countByKey(rows []catalog.Row) (map[string]int, error) {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		key, err := rowKey(row)
		if err != nil {
			return nil, err
		}
		counts[key]++
	}
	return counts, nil
}
