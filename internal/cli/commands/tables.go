package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbdiff/internal/cli/output"
	"github.com/leapstack-labs/dbdiff/pkg/catalog"
)

// TablesOptions holds options for the tables command.
type TablesOptions struct {
	Format string // Output format: text, markdown, json, yaml, csv
}

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	opts := &TablesOptions{}
	cmd := &cobra.Command{
		Use:   "tables <db>",
		Short: "List the tables of a SQLite database",
		Long: `List the user tables of a SQLite database with column and row counts.

SQLite's internal tables (sqlite_sequence and friends) are excluded.`,
		Example: `  # List tables with counts
  dbdiff tables app.db

  # As JSON
  dbdiff tables app.db --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml, csv")

	return cmd
}

// TableInfo is the JSON output for one table.
type TableInfo struct {
	Name    string `json:"name"`
	Columns int    `json:"columns"`
	Rows    int64  `json:"rows"`
}

func runTables(cmd *cobra.Command, source string, opts *TablesOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	r, err := overrideRenderer(cmd, cmdCtx.Renderer, opts.Format)
	if err != nil {
		return err
	}

	cat := catalog.NewSQLite()
	if err := cat.Connect(cmd.Context(), source); err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer func() { _ = cat.Close() }()

	names, err := cat.Tables(cmd.Context())
	if err != nil {
		return err
	}

	infos := make([]TableInfo, 0, len(names))
	for _, name := range names {
		cols, err := cat.Schema(cmd.Context(), name)
		if err != nil {
			return err
		}
		count, err := cat.RowCount(cmd.Context(), name)
		if err != nil {
			return err
		}
		infos = append(infos, TableInfo{Name: name, Columns: len(cols), Rows: count})
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(infos)
	case output.ModeYAML:
		return r.YAML(infos)
	case output.ModeCSV:
		r.Table(tableInfoHeader, tableInfoRows(infos))
		return nil
	default:
		r.Header(fmt.Sprintf("Tables in %s (%d)", source, len(infos)))
		r.Table(tableInfoHeader, tableInfoRows(infos))
		return nil
	}
}

var tableInfoHeader = []string{"Table", "Columns", "Rows"}

func tableInfoRows(infos []TableInfo) [][]string {
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.Name,
			fmt.Sprintf("%d", info.Columns),
			output.FormatCount(info.Rows),
		})
	}
	return rows
}
