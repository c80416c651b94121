package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dbdiff/internal/state"
)

// runWithState executes a command against a fixed history store so that
// several invocations share the same recorded runs.
func runWithState(t *testing.T, statePath string, newCmd func() *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	t.Setenv("DBDIFF_STATE_PATH", statePath)

	c := newCmd()
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(errOut)
	c.SetArgs(args)

	err := c.Execute()
	return out.String(), errOut.String(), err
}

// recordRun drives a real comparison so the history store has an entry.
func recordRun(t *testing.T, statePath string, identical bool) string {
	t.Helper()

	var pathA, pathB string
	if identical {
		pathA, pathB = setupIdenticalPair(t)
	} else {
		pathA, pathB = setupComparePair(t)
	}

	out, _, err := runWithState(t, statePath, NewCompareCommand, pathA, pathB, "--format", "json")
	require.NoError(t, err)
	return decodeReport(t, out).RunID
}

func TestHistoryCommand_List(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "history.db")
	recordRun(t, statePath, true)
	recordRun(t, statePath, false)

	out, _, err := runWithState(t, statePath, NewHistoryCommand, "--format", "json")
	require.NoError(t, err)

	var runs []*state.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs), "output: %s", out)

	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.Equal(t, state.RunStatusCompleted, run.Status)
		assert.NotEmpty(t, run.SourceA)
		assert.NotEmpty(t, run.SourceB)
	}
}

func TestHistoryCommand_ListEmpty(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "history.db")

	out, _, err := runWithState(t, statePath, NewHistoryCommand)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet")
}

func TestHistoryCommand_Limit(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "history.db")
	recordRun(t, statePath, true)
	recordRun(t, statePath, true)
	recordRun(t, statePath, true)

	out, _, err := runWithState(t, statePath, NewHistoryCommand, "--limit", "2", "--format", "json")
	require.NoError(t, err)

	var runs []*state.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	assert.Len(t, runs, 2)
}

func TestHistoryCommand_ShowLatest(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "history.db")
	recordRun(t, statePath, true)
	runID := recordRun(t, statePath, false)

	out, _, err := runWithState(t, statePath, NewHistoryCommand, "show", "latest", "--format", "json")
	require.NoError(t, err)

	report := decodeReport(t, out)
	assert.Equal(t, runID, report.RunID)
	assert.False(t, report.Result.Identical)
	assert.Equal(t, []string{"logs"}, report.Result.OnlyInB)
}

func TestHistoryCommand_ShowByID(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "history.db")
	runID := recordRun(t, statePath, true)

	out, _, err := runWithState(t, statePath, NewHistoryCommand, "show", runID, "--format", "json")
	require.NoError(t, err)

	report := decodeReport(t, out)
	assert.Equal(t, runID, report.RunID)
	assert.True(t, report.Result.Identical)
}

func TestHistoryCommand_ShowUnknownID(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "history.db")
	recordRun(t, statePath, true)

	_, _, err := runWithState(t, statePath, NewHistoryCommand, "show", "no-such-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestHistoryCommand_ShowLatestEmpty(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "history.db")

	_, _, err := runWithState(t, statePath, NewHistoryCommand, "show", "latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no runs recorded yet")
}

func TestHistoryCommand_Prune(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "history.db")
	recordRun(t, statePath, true)
	recordRun(t, statePath, true)
	keptID := recordRun(t, statePath, false)

	out, _, err := runWithState(t, statePath, NewHistoryCommand, "prune", "--keep", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Pruned history to the 1 most recent runs")

	out, _, err = runWithState(t, statePath, NewHistoryCommand, "--format", "json")
	require.NoError(t, err)

	var runs []*state.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, keptID, runs[0].ID)
}

func TestHistoryCommand_PruneInvalidKeep(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "history.db")

	_, _, err := runWithState(t, statePath, NewHistoryCommand, "prune", "--keep", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keep must be at least 1")
}

func TestRunVerdict(t *testing.T) {
	tests := []struct {
		name string
		run  *state.Run
		want string
	}{
		{
			name: "identical",
			run:  &state.Run{Status: state.RunStatusCompleted, Identical: true},
			want: "identical",
		},
		{
			name: "differing only",
			run:  &state.Run{Status: state.RunStatusCompleted, TablesDiffering: 2},
			want: "2 differing",
		},
		{
			name: "differing and missing",
			run:  &state.Run{Status: state.RunStatusCompleted, TablesDiffering: 1, TablesOnlyInB: 3},
			want: "1 differing, 3 missing",
		},
		{
			name: "failed",
			run:  &state.Run{Status: state.RunStatusFailed, Error: "boom"},
			want: "failed: boom",
		},
		{
			name: "running",
			run:  &state.Run{Status: state.RunStatusRunning},
			want: "-",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runVerdict(tt.run))
		})
	}
}
