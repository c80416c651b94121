package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbdiff/internal/cli/output"
	"github.com/leapstack-labs/dbdiff/pkg/catalog"
)

// SchemaOptions holds options for the schema command.
type SchemaOptions struct {
	Format string // Output format: text, markdown, json, yaml, csv
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	opts := &SchemaOptions{}
	cmd := &cobra.Command{
		Use:   "schema <db> <table>",
		Short: "Show the column definitions of a table",
		Long:  `Show the columns of one table: declared type, nullability, default, and primary key position.`,
		Example: `  # Show a table's columns
  dbdiff schema app.db users

  # As JSON
  dbdiff schema app.db users --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml, csv")

	return cmd
}

func runSchema(cmd *cobra.Command, source, table string, opts *SchemaOptions) error {
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

	cols, err := cat.Schema(cmd.Context(), table)
	if err != nil {
		if errors.Is(err, catalog.ErrTableNotFound) {
			return fmt.Errorf("table %s not found in %s", table, source)
		}
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(cols)
	case output.ModeYAML:
		return r.YAML(cols)
	case output.ModeCSV:
		r.Table(columnHeader, columnRows(cols))
		return nil
	default:
		r.Header(fmt.Sprintf("Schema of %s in %s", table, source))
		r.Table(columnHeader, columnRows(cols))
		return nil
	}
}

var columnHeader = []string{"Column", "Type", "Not Null", "Default", "PK"}

func columnRows(cols []catalog.Column) [][]string {
	rows := make([][]string, 0, len(cols))
	for _, col := range cols {
		notNull := ""
		if col.NotNull {
			notNull = "yes"
		}
		def := ""
		if col.Default.Valid {
			def = col.Default.String
		}
		pk := ""
		if col.PK > 0 {
			pk = strconv.Itoa(col.PK)
		}
		rows = append(rows, []string{col.Name, col.Type, notNull, def, pk})
	}
	return rows
}
