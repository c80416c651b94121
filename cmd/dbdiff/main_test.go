// Package main provides tests for the dbdiff CLI.
package main

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/leapstack-labs/dbdiff/internal/cli"
	"github.com/leapstack-labs/dbdiff/internal/cli/config"
)

// seedDB creates a database file and runs the given statements.
func seedDB(t *testing.T, path string, stmts ...string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer func() { _ = db.Close() }()

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to execute %q: %v", stmt, err)
		}
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	config.ResetConfig()

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	if !strings.Contains(output, "dbdiff") {
		t.Errorf("version output should contain 'dbdiff', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := execute(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"compare", "tables", "schema", "query", "history", "serve"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestCompareCommandIdentical(t *testing.T) {
	tmpDir := t.TempDir()
	pathA := filepath.Join(tmpDir, "a.db")
	pathB := filepath.Join(tmpDir, "b.db")

	ddl := `CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL)`
	seedDB(t, pathA, ddl, `INSERT INTO users VALUES (1, 'a@x.com')`)
	seedDB(t, pathB, ddl, `INSERT INTO users VALUES (1, 'a@x.com')`)

	output, err := execute(t,
		"compare", pathA, pathB,
		"--format", "json",
		"--state", filepath.Join(tmpDir, "history.db"),
	)
	if err != nil {
		t.Fatalf("compare command error = %v", err)
	}

	if !strings.Contains(output, `"identical": true`) {
		t.Errorf("compare output should report identical, got: %s", output)
	}
}

func TestCompareCommandFailOnDiff(t *testing.T) {
	tmpDir := t.TempDir()
	pathA := filepath.Join(tmpDir, "a.db")
	pathB := filepath.Join(tmpDir, "b.db")

	ddl := `CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL)`
	seedDB(t, pathA, ddl, `INSERT INTO users VALUES (1, 'a@x.com')`)
	seedDB(t, pathB, ddl, `INSERT INTO users VALUES (1, 'changed@x.com')`)

	_, err := execute(t,
		"compare", pathA, pathB,
		"--fail-on-diff",
		"--format", "json",
		"--state", filepath.Join(tmpDir, "history.db"),
	)
	if err == nil {
		t.Error("compare --fail-on-diff should return an error for differing databases")
	}
}

func TestTablesCommand(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "a.db")
	seedDB(t, path,
		`CREATE TABLE users (id INTEGER PRIMARY KEY)`,
		`CREATE TABLE orders (id INTEGER PRIMARY KEY)`,
	)

	output, err := execute(t, "tables", path, "--format", "json")
	if err != nil {
		t.Fatalf("tables command error = %v", err)
	}

	for _, table := range []string{"users", "orders"} {
		if !strings.Contains(output, table) {
			t.Errorf("tables output should contain '%s', got: %s", table, output)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	shells := []string{"bash", "zsh", "fish", "powershell"}

	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			_, err := execute(t, "completion", shell)
			if err != nil {
				t.Errorf("completion %s command error = %v", shell, err)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "unknown-command")
	if err == nil {
		t.Error("unknown command should return an error")
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
