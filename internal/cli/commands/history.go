package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/dbdiff/internal/cli/output"
	"github.com/leapstack-labs/dbdiff/internal/engine"
	"github.com/leapstack-labs/dbdiff/internal/state"
	"github.com/leapstack-labs/dbdiff/pkg/compare"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit  int
	Format string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and re-render recorded comparison runs",
		Long: `Every comparison is recorded in the history store. The history command
lists past runs and re-renders a stored result without touching the
original database files.`,
		Example: `  # List recent runs
  dbdiff history

  # Re-render the latest run as markdown
  dbdiff history show latest --format markdown

  # Re-render a specific run
  dbdiff history show 1f3a9c

  # Keep only the 50 most recent runs
  dbdiff history prune --keep 50`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml, csv")

	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryPruneCommand())

	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "show <id|latest>",
		Short: "Re-render a recorded comparison result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml, csv")

	return cmd
}

func newHistoryPruneCommand() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old runs, keeping only the most recent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryPrune(cmd, keep)
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 50, "Number of runs to keep")

	return cmd
}

func runHistoryList(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	runs, err := cmdCtx.Engine.GetStateStore().ListRuns(opts.Limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(runs)
	case output.ModeYAML:
		return r.YAML(runs)
	case output.ModeCSV:
		r.Table(historyHeader, historyRows(runs))
		return nil
	default:
		if len(runs) == 0 {
			r.Muted("No runs recorded yet")
			return nil
		}
		r.Header(fmt.Sprintf("Comparison History (%d runs)", len(runs)))
		r.Table(historyHeader, historyRows(runs))
		return nil
	}
}

var historyHeader = []string{"ID", "Started", "Status", compare.LabelA, compare.LabelB, "Verdict"}

func historyRows(runs []*state.Run) [][]string {
	titleCaser := cases.Title(language.English)

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			titleCaser.String(string(run.Status)),
			run.SourceA,
			run.SourceB,
			runVerdict(run),
		})
	}
	return rows
}

func runVerdict(run *state.Run) string {
	switch run.Status {
	case state.RunStatusCompleted:
		if run.Identical {
			return "identical"
		}
		missing := run.TablesOnlyInA + run.TablesOnlyInB
		if missing > 0 {
			return fmt.Sprintf("%d differing, %d missing", run.TablesDiffering, missing)
		}
		return fmt.Sprintf("%d differing", run.TablesDiffering)
	case state.RunStatusFailed:
		return "failed: " + run.Error
	default:
		return "-"
	}
}

func runHistoryShow(cmd *cobra.Command, id string, opts *HistoryOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	store := cmdCtx.Engine.GetStateStore()

	var run *state.Run
	if id == "latest" {
		run, err = store.GetLatestRun()
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("no runs recorded yet")
		}
	} else {
		run, err = store.GetRun(id)
		if err != nil {
			return err
		}
	}

	if run.Status == state.RunStatusFailed {
		return fmt.Errorf("run %s failed: %s", run.ID, run.Error)
	}
	if run.ResultJSON == "" {
		return fmt.Errorf("run %s has no recorded result", run.ID)
	}

	var result compare.Result
	if err := json.Unmarshal([]byte(run.ResultJSON), &result); err != nil {
		return fmt.Errorf("failed to decode stored result for run %s: %w", run.ID, err)
	}

	return renderReport(r, &engine.Report{RunID: run.ID, Result: &result})
}

func runHistoryPrune(cmd *cobra.Command, keep int) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if keep < 1 {
		return fmt.Errorf("keep must be at least 1, got %d", keep)
	}

	if err := cmdCtx.Engine.GetStateStore().DeleteOldRuns(keep); err != nil {
		return fmt.Errorf("failed to prune runs: %w", err)
	}

	cmdCtx.Renderer.Success("Pruned history to the %d most recent runs", keep)
	return nil
}
