package commands

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/dbdiff/pkg/catalog"
)

func renderResults(w io.Writer, rows *sql.Rows, format string) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	// Collect all rows
	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return err
		}

		row := make(map[string]any)
		for i, col := range cols {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return err
	}

	switch format {
	case "json":
		return renderQueryJSON(w, cols, results)
	case "csv":
		return renderQueryCSV(w, cols, results)
	case "md", "markdown":
		return renderQueryMarkdown(w, cols, results)
	default:
		return renderQueryTable(w, cols, results)
	}
}

func renderQueryTable(w io.Writer, cols []string, results []map[string]any) error {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, result := range results {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = formatQueryValue(result[col])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(results))
	return nil
}

func renderQueryJSON(w io.Writer, cols []string, results []map[string]any) error {
	// Blobs marshal as base64 by default; render them the same way the
	// other formats do instead.
	out := make([]map[string]any, 0, len(results))
	for _, result := range results {
		row := make(map[string]any, len(cols))
		for _, col := range cols {
			if b, ok := result[col].([]byte); ok {
				row[col] = formatBlob(b)
				continue
			}
			row[col] = result[col]
		}
		out = append(out, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderQueryCSV(w io.Writer, cols []string, results []map[string]any) error {
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

	for _, result := range results {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = escapeCSV(formatQueryValue(result[col]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderQueryMarkdown(w io.Writer, cols []string, results []map[string]any) error {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, result := range results {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = formatQueryValue(result[col])
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func formatQueryValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return formatBlob(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatBlob renders a blob as text when it is valid UTF-8, hex otherwise.
func formatBlob(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return fmt.Sprintf("0x%x", b)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// Helper functions shared with the REPL dot-commands

func listTablesFromDB(ctx context.Context, w io.Writer, db *sql.DB, format string, viewsOnly bool) error {
	query := `
		SELECT name, type
		FROM sqlite_master
		WHERE type IN ('table', 'view')
		AND name NOT LIKE 'sqlite_%'
	`
	if viewsOnly {
		query += ` AND type = 'view'`
	}
	query += ` ORDER BY type DESC, name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	return renderResults(w, rows, format)
}

func showSchemaFromDB(ctx context.Context, w io.Writer, db *sql.DB, tableName, format string) error {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+catalog.QuoteIdentifier(tableName)+")")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	var columns []replColumn

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return err
		}

		nullable := "YES"
		if notNull == 1 {
			nullable = "NO"
		}

		defaultVal := ""
		if dflt.Valid {
			defaultVal = dflt.String
		}

		columns = append(columns, replColumn{
			Name:     name,
			Type:     colType,
			Nullable: nullable,
			Default:  defaultVal,
			PK:       pk > 0,
		})
	}

	if err := rows.Err(); err != nil {
		return err
	}

	if len(columns) == 0 {
		return fmt.Errorf("table or view '%s' not found", tableName)
	}

	// Determine if it's a table or view
	var objType string
	err = db.QueryRowContext(ctx, `
		SELECT type FROM sqlite_master
		WHERE name = ? AND type IN ('table', 'view')
	`, tableName).Scan(&objType)
	if err != nil {
		objType = "table"
	}

	if format == "json" {
		return renderReplSchemaJSON(w, tableName, objType, columns)
	}

	title := "Table"
	if objType == "view" {
		title = "View"
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", title, tableName)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 60))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Nullable", "Default", "PK"})

	for _, col := range columns {
		pkMark := ""
		if col.PK {
			pkMark = "*"
		}
		t.AppendRow(table.Row{col.Name, col.Type, col.Nullable, col.Default, pkMark})
	}
	t.Render()

	// Show indexes for tables
	if objType == "table" {
		indexRows, err := db.QueryContext(ctx, `
			SELECT name FROM sqlite_master
			WHERE type = 'index' AND tbl_name = ?
			AND name NOT LIKE 'sqlite_%'
		`, tableName)
		if err == nil {
			defer func() { _ = indexRows.Close() }()
			var indexes []string
			for indexRows.Next() {
				var name string
				if indexRows.Scan(&name) == nil {
					indexes = append(indexes, name)
				}
			}
			_ = indexRows.Err()
			if len(indexes) > 0 {
				_, _ = fmt.Fprintln(w)
				_, _ = fmt.Fprintln(w, "Indexes:")
				for _, idx := range indexes {
					_, _ = fmt.Fprintf(w, "  %s\n", idx)
				}
			}
		}
	}

	return nil
}

// replColumn represents schema column information for the REPL.
type replColumn struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable string `json:"nullable"`
	Default  string `json:"default"`
	PK       bool   `json:"pk"`
}

type replSchemaOutput struct {
	Name    string       `json:"name"`
	Type    string       `json:"type"`
	Columns []replColumn `json:"columns"`
}

func renderReplSchemaJSON(w io.Writer, tableName, objType string, columns []replColumn) error {
	schema := replSchemaOutput{
		Name:    tableName,
		Type:    objType,
		Columns: columns,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(schema)
}
