package compare

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dbdiff/pkg/catalog"
)

func TestAnalyze_TypeOnly(t *testing.T) {
	// Same printed values, different storage classes.
	a := []catalog.Row{
		{"id": int64(1), "amount": "123"},
		{"id": int64(2), "amount": "456"},
	}
	b := []catalog.Row{
		{"id": int64(1), "amount": int64(123)},
		{"id": int64(2), "amount": int64(456)},
	}

	analysis := Analyze(a, b, 10)

	assert.True(t, analysis.TypeOnly)
	assert.Empty(t, analysis.SamplesOnlyInA)
	assert.Empty(t, analysis.SamplesOnlyInB)

	require.NotEmpty(t, analysis.TypeMismatches)
	first := analysis.TypeMismatches[0]
	assert.Equal(t, "amount", first.Column)
	assert.Equal(t, "123", first.Value)
	assert.Equal(t, "text", first.TypeA)
	assert.Equal(t, "integer", first.TypeB)
}

func TestAnalyze_ContentDifferences(t *testing.T) {
	a := []catalog.Row{
		{"id": int64(1), "name": "alice"},
		{"id": int64(2), "name": "bob"},
	}
	b := []catalog.Row{
		{"id": int64(1), "name": "alice"},
		{"id": int64(3), "name": "carol"},
	}

	analysis := Analyze(a, b, 10)

	assert.False(t, analysis.TypeOnly)
	assert.Empty(t, analysis.TypeMismatches)

	require.Len(t, analysis.SamplesOnlyInA, 1)
	assert.Equal(t, "2", analysis.SamplesOnlyInA[0]["id"])
	assert.Equal(t, "bob", analysis.SamplesOnlyInA[0]["name"])

	require.Len(t, analysis.SamplesOnlyInB, 1)
	assert.Equal(t, "carol", analysis.SamplesOnlyInB[0]["name"])
}

func TestAnalyze_MixedDriftIsNotTypeOnly(t *testing.T) {
	a := []catalog.Row{
		{"id": int64(1), "v": "7"},
		{"id": int64(2), "v": "extra"},
	}
	b := []catalog.Row{
		{"id": int64(1), "v": int64(7)},
	}

	analysis := Analyze(a, b, 10)

	require.NotEmpty(t, analysis.TypeMismatches)
	assert.False(t, analysis.TypeOnly)
	assert.Len(t, analysis.SamplesOnlyInA, 1)
}

func TestAnalyze_SampleBound(t *testing.T) {
	var a []catalog.Row
	for i := range 30 {
		a = append(a, catalog.Row{"id": int64(i)})
	}

	analysis := Analyze(a, nil, 10)

	assert.Len(t, analysis.SamplesOnlyInA, 10)
	assert.Empty(t, analysis.SamplesOnlyInB)
	assert.False(t, analysis.TypeOnly)
}

func TestAnalyze_TypePassIsBounded(t *testing.T) {
	// Drift hidden beyond the first 2N rows is not scanned for types.
	var a, b []catalog.Row
	for i := range 25 {
		a = append(a, catalog.Row{"id": int64(i), "v": int64(1)})
		b = append(b, catalog.Row{"id": int64(i), "v": int64(1)})
	}
	a = append(a, catalog.Row{"id": int64(99), "v": "1"})
	b = append(b, catalog.Row{"id": int64(99), "v": int64(1)})

	analysis := Analyze(a, b, 10)
	assert.Empty(t, analysis.TypeMismatches)
}

func TestAnalyze_MismatchListBounded(t *testing.T) {
	// One matched row with many drifting columns caps the recorded
	// mismatches at N while still seeing them all.
	rowA := catalog.Row{}
	rowB := catalog.Row{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		rowA[name] = "5"
		rowB[name] = int64(5)
	}

	analysis := Analyze([]catalog.Row{rowA}, []catalog.Row{rowB}, 3)

	assert.Len(t, analysis.TypeMismatches, 3)
	assert.True(t, analysis.TypeOnly)
}

func TestAnalyze_Truncation(t *testing.T) {
	long := strings.Repeat("x", 200)
	a := []catalog.Row{{"v": long}}

	analysis := Analyze(a, nil, 10)

	require.Len(t, analysis.SamplesOnlyInA, 1)
	assert.Len(t, analysis.SamplesOnlyInA[0]["v"], maxSampleValueLen)
}

func TestAnalyze_NullsInKeys(t *testing.T) {
	a := []catalog.Row{{"id": int64(1), "note": nil}}
	b := []catalog.Row{{"id": int64(1), "note": nil}}

	analysis := Analyze(a, b, 10)

	assert.Empty(t, analysis.SamplesOnlyInA)
	assert.Empty(t, analysis.SamplesOnlyInB)
	assert.Empty(t, analysis.TypeMismatches)
	assert.False(t, analysis.TypeOnly)
}

func TestAnalyze_DuplicateKeysCountOnce(t *testing.T) {
	row := catalog.Row{"id": int64(1)}
	a := []catalog.Row{row, row, row}

	analysis := Analyze(a, nil, 10)
	assert.Len(t, analysis.SamplesOnlyInA, 1)
}

func TestAnalyze_DefaultSampleSize(t *testing.T) {
	var a []catalog.Row
	for i := range 40 {
		a = append(a, catalog.Row{"id": int64(i)})
	}

	analysis := Analyze(a, nil, 0)
	assert.Len(t, analysis.SamplesOnlyInA, DefaultMaxSamples)
}

func TestLookupKey(t *testing.T) {
	row := catalog.Row{"b": nil, "a": int64(7), "c": "x"}
	assert.Equal(t, "7|NULL|x", lookupKey(row))
}

func TestStringifyValue(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{nil, "NULL"},
		{int64(42), "42"},
		{3.5, "3.5"},
		{"txt", "txt"},
		{[]byte{0xab, 0xcd}, "abcd"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, stringifyValue(tt.input))
	}
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "null", typeName(nil))
	assert.Equal(t, "integer", typeName(int64(1)))
	assert.Equal(t, "real", typeName(1.5))
	assert.Equal(t, "text", typeName("x"))
	assert.Equal(t, "blob", typeName([]byte{1}))
}
