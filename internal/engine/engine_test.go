package engine

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/leapstack-labs/dbdiff/internal/state"
	"github.com/leapstack-labs/dbdiff/internal/testutil"
)

const usersDDL = `CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL)`

// applyStatements runs DDL and inserts against a database file,
// creating it if needed.
func applyStatements(t *testing.T, path string, stmts ...string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "statement: %s", stmt)
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	eng, err := New(Config{
		StatePath: filepath.Join(t.TempDir(), "history.db"),
		Logger:    testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, eng.Close()) })
	return eng
}

func TestEngineRun_Identical(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.db")
	pathB := filepath.Join(dir, "b.db")
	applyStatements(t, pathA, usersDDL, `INSERT INTO users VALUES (1, 'a@x.com'), (2, 'b@x.com')`)
	applyStatements(t, pathB, usersDDL, `INSERT INTO users VALUES (2, 'b@x.com'), (1, 'a@x.com')`)

	eng := newTestEngine(t)
	report, err := eng.Run(context.Background(), pathA, pathB, RunOptions{})
	require.NoError(t, err)

	require.NotNil(t, report.Result)
	assert.True(t, report.Result.Identical)
	assert.NotEmpty(t, report.RunID)
	assert.Nil(t, report.Analyses)

	// The run lands in history with its summary filled in.
	run, err := eng.GetStateStore().GetRun(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusCompleted, run.Status)
	assert.True(t, run.Identical)
	assert.Equal(t, 1, run.TablesCompared)
	assert.Equal(t, 0, run.TablesDiffering)
	assert.NotEmpty(t, run.ResultJSON)
}

func TestEngineRun_DriftWithAnalysis(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.db")
	pathB := filepath.Join(dir, "b.db")
	applyStatements(t, pathA,
		usersDDL,
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, total REAL)`,
		`INSERT INTO users VALUES (1, 'a@x.com')`,
		`INSERT INTO orders VALUES (1, 9.99)`,
	)
	applyStatements(t, pathB,
		usersDDL,
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, total TEXT)`,
		`CREATE TABLE logs (id INTEGER PRIMARY KEY)`,
		`INSERT INTO users VALUES (1, 'changed@x.com')`,
		`INSERT INTO orders VALUES (1, '9.99')`,
	)

	eng := newTestEngine(t)
	report, err := eng.Run(context.Background(), pathA, pathB, RunOptions{Detailed: true})
	require.NoError(t, err)

	res := report.Result
	assert.False(t, res.Identical)
	assert.Equal(t, []string{"logs"}, res.OnlyInB)
	assert.False(t, res.Tables["users"].Identical)
	assert.False(t, res.Tables["orders"].Schema.Matches)

	// Analysis covers the content-drifted table but never the
	// schema-mismatched one, whose rows were never read.
	require.Contains(t, report.Analyses, "users")
	assert.NotContains(t, report.Analyses, "orders")

	users := report.Analyses["users"]
	require.NotEmpty(t, users.SamplesOnlyInA)
	assert.Equal(t, "a@x.com", users.SamplesOnlyInA[0]["email"])

	run, err := eng.GetStateStore().GetRun(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusCompleted, run.Status)
	assert.False(t, run.Identical)
	assert.Equal(t, 2, run.TablesCompared)
	assert.Equal(t, 2, run.TablesDiffering)
	assert.Equal(t, 0, run.TablesOnlyInA)
	assert.Equal(t, 1, run.TablesOnlyInB)
}

func TestEngineRun_TableFilter(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.db")
	pathB := filepath.Join(dir, "b.db")
	applyStatements(t, pathA, usersDDL, `INSERT INTO users VALUES (1, 'a@x.com')`)
	applyStatements(t, pathB,
		usersDDL,
		`CREATE TABLE logs (id INTEGER PRIMARY KEY)`,
		`INSERT INTO users VALUES (1, 'a@x.com')`,
	)

	eng := newTestEngine(t)
	report, err := eng.Run(context.Background(), pathA, pathB, RunOptions{Tables: []string{"users"}})
	require.NoError(t, err)

	assert.True(t, report.Result.Identical)
	assert.Empty(t, report.Result.OnlyInB)
	assert.Equal(t, []string{"users"}, report.Result.Common)
}

func TestEngineRun_MissingSource(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.db")
	applyStatements(t, pathA, usersDDL)

	eng := newTestEngine(t)
	_, err := eng.Run(context.Background(), pathA, filepath.Join(dir, "missing.db"), RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB2")

	// Nothing is recorded when a source cannot be opened.
	latest, err := eng.GetStateStore().GetLatestRun()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestEngineWatch_RerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.db")
	pathB := filepath.Join(dir, "b.db")
	applyStatements(t, pathA, usersDDL, `INSERT INTO users VALUES (1, 'a@x.com')`)
	applyStatements(t, pathB, usersDDL, `INSERT INTO users VALUES (1, 'a@x.com')`)

	eng := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reports := make(chan *Report, 4)
	done := make(chan error, 1)
	go func() {
		done <- eng.Watch(ctx, pathA, pathB, RunOptions{}, func(r *Report, err error) {
			if err == nil {
				reports <- r
			}
		})
	}()

	first := waitForReport(t, reports)
	assert.True(t, first.Result.Identical)

	// Grow one side; the watcher should notice and re-compare.
	applyStatements(t, pathB, `INSERT INTO users VALUES (2, 'b@x.com')`)

	second := waitForReport(t, reports)
	assert.False(t, second.Result.Identical)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func waitForReport(t *testing.T, reports <-chan *Report) *Report {
	t.Helper()

	select {
	case r := <-reports:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a comparison report")
		return nil
	}
}

func TestWatchDirs_Deduplicates(t *testing.T) {
	dirs := watchDirs(filepath.Join("z", "a.db"), filepath.Join("z", "b.db"))
	assert.Equal(t, []string{"z"}, dirs)
}

func TestWatchTargets_IncludesWALSidecars(t *testing.T) {
	targets := watchTargets(filepath.Join("x", "a.db"))
	assert.Contains(t, targets, filepath.Join("x", "a.db"))
	assert.Contains(t, targets, filepath.Join("x", "a.db-wal"))
}
