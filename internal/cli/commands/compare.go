package commands

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/dbdiff/internal/cli/config"
	"github.com/leapstack-labs/dbdiff/internal/cli/output"
	"github.com/leapstack-labs/dbdiff/internal/engine"
)

// CompareOptions holds options for the compare command.
type CompareOptions struct {
	Detailed   bool     // Re-read differing tables and report per-column drift
	Tables     []string // Restrict the comparison to these tables
	Watch      bool     // Re-run whenever either database file changes
	FailOnDiff bool     // Exit non-zero when the databases differ
	Format     string   // Output format: text, markdown, json, yaml, csv
}

// errDatabasesDiffer is returned when --fail-on-diff is set and a difference
// was found. Execute turns it into a non-zero exit code.
var errDatabasesDiffer = errors.New("databases differ")

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	opts := &CompareOptions{}
	cmd := &cobra.Command{
		Use:   "compare [db1] [db2]",
		Short: "Compare the schemas and contents of two SQLite databases",
		Long: `Compare two SQLite databases table by table.

Tables are matched by name. For each table present in both databases the
column definitions are compared first; when they match, rows are compared
as multisets, so row order and duplicate rows are handled correctly. Values
are normalized before matching (text is trimmed, floats are rounded) to
avoid flagging cosmetic differences.

Every comparison is recorded in the history store and can be re-rendered
later with 'dbdiff history show'.

When invoked without arguments on a terminal, prompts for the two paths.`,
		Example: `  # Compare two databases
  dbdiff compare before.db after.db

  # Re-read differing tables and show sample rows
  dbdiff compare before.db after.db --detailed

  # Only compare selected tables
  dbdiff compare before.db after.db --tables users,orders

  # Re-run the comparison whenever either file changes
  dbdiff compare before.db after.db --watch

  # Exit non-zero when the databases differ (for CI)
  dbdiff compare before.db after.db --fail-on-diff --output json`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Detailed, "detailed", "d", false, "Re-read differing tables and report type drift with sample rows")
	cmd.Flags().StringSliceVarP(&opts.Tables, "tables", "t", nil, "Comma-separated list of tables to compare (default: all)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch both database files and re-run on change")
	cmd.Flags().BoolVar(&opts.FailOnDiff, "fail-on-diff", false, "Exit with a non-zero status when the databases differ")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml, csv")
	cmd.Flags().Int("workers", config.DefaultWorkers, "Number of tables to compare concurrently")
	cmd.Flags().Int("max-samples", config.DefaultMaxSamples, "Sample rows to collect per table in detailed mode")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string, opts *CompareOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r, err := overrideRenderer(cmd, cmdCtx.Renderer, opts.Format)
	if err != nil {
		return err
	}

	sourceA, sourceB, err := resolveSources(args, r)
	if err != nil {
		return err
	}

	runOpts := engine.RunOptions{
		Tables:   opts.Tables,
		Detailed: opts.Detailed,
	}

	if opts.Watch {
		return watchCompare(cmd, cmdCtx, r, sourceA, sourceB, runOpts)
	}

	report, err := cmdCtx.Engine.Run(cmd.Context(), sourceA, sourceB, runOpts)
	if err != nil {
		return err
	}

	if err := renderReport(r, report); err != nil {
		return err
	}

	if opts.FailOnDiff && !report.Result.Identical {
		return errDatabasesDiffer
	}
	return nil
}

// resolveSources returns the two database paths, prompting interactively
// when none were given and both ends of the session are terminals.
func resolveSources(args []string, r *output.Renderer) (string, string, error) {
	switch len(args) {
	case 2:
		return args[0], args[1], nil
	case 1:
		return "", "", fmt.Errorf("two database paths are required, got one (%s)", args[0])
	}

	if !r.IsTTY() || !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", "", fmt.Errorf("two database paths are required")
	}

	return promptForSources()
}

func watchCompare(cmd *cobra.Command, cmdCtx *CommandContext, r *output.Renderer, sourceA, sourceB string, runOpts engine.RunOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.Muted("Watching %s and %s for changes (Ctrl+C to stop)", sourceA, sourceB)

	return cmdCtx.Engine.Watch(ctx, sourceA, sourceB, runOpts, func(report *engine.Report, err error) {
		if err != nil {
			r.Error("comparison failed: %v", err)
			return
		}
		r.Muted("--- %s ---", time.Now().Format(time.RFC3339))
		if renderErr := renderReport(r, report); renderErr != nil {
			r.Error("rendering report: %v", renderErr)
		}
	})
}
