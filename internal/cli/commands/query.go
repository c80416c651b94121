package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	// sqlite driver for ad-hoc queries.
	_ "modernc.org/sqlite"
)

// openDatabaseReadOnly opens a SQLite database in read-only mode, so ad-hoc
// queries can inspect but never modify the data. The driver only honors
// mode=ro in file: URI form.
func openDatabaseReadOnly(path string) (*sql.DB, error) {
	return sql.Open("sqlite", "file:"+path+"?mode=ro")
}

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <db> [SQL]",
		Short: "Run ad-hoc read-only SQL against a SQLite database",
		Long: `Run SQL queries against a SQLite database.

The database is opened read-only. Useful for drilling into a difference
reported by 'dbdiff compare' without risking a write to either side.

When invoked without SQL on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  dbdiff query app.db "SELECT * FROM users WHERE id = 42"

  # Read SQL from a file
  dbdiff query app.db --input report.sql

  # Pipe SQL in
  echo "SELECT COUNT(*) FROM orders" | dbdiff query app.db

  # Output as JSON
  dbdiff query app.db "SELECT * FROM users" --format json

  # Interactive mode
  dbdiff query app.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	source := args[0]
	if _, err := os.Stat(source); os.IsNotExist(err) {
		return fmt.Errorf("database not found at %s", source)
	}

	// Determine SQL source
	var sqlQuery string

	switch {
	case len(args) > 1:
		sqlQuery = strings.Join(args[1:], " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		historyFile := filepath.Join(filepath.Dir(cmdCtx.Cfg.StatePath), "query_history")
		return runQueryREPL(cmd, source, historyFile, opts)
	}

	return executeAndRender(cmd.Context(), cmd, source, sqlQuery, opts.Format)
}

func executeAndRender(ctx context.Context, cmd *cobra.Command, source, sqlQuery, format string) error {
	db, err := openDatabaseReadOnly(source)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return renderResults(cmd.OutOrStdout(), rows, format)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
