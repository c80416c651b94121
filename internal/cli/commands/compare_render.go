package commands

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/leapstack-labs/dbdiff/internal/cli/output"
	"github.com/leapstack-labs/dbdiff/internal/engine"
	"github.com/leapstack-labs/dbdiff/pkg/compare"
)

// renderReport renders a comparison report in the renderer's effective mode.
func renderReport(r *output.Renderer, report *engine.Report) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(report)
	case output.ModeYAML:
		return r.YAML(report)
	case output.ModeCSV:
		return renderCompareCSV(r, report)
	case output.ModeMarkdown:
		return renderCompareMarkdown(r, report)
	default:
		return renderCompareText(r, report)
	}
}

// tableStatus summarizes one table's verdict as a pass/fail flag and a
// short status phrase.
func tableStatus(tr *compare.TableResult) (bool, string) {
	switch {
	case tr.Error != "":
		return false, "error: " + tr.Error
	case tr.Incomplete:
		return false, "incomplete"
	case !tr.ExistsInA || !tr.ExistsInB:
		side := compare.LabelA
		if !tr.ExistsInB {
			side = compare.LabelB
		}
		return false, fmt.Sprintf("vanished from %s during comparison", side)
	case tr.Identical:
		return true, fmt.Sprintf("identical (%s rows)", output.FormatCount(tr.RowCountA))
	case tr.Schema != nil && !tr.Schema.Matches:
		return false, "schema differs"
	case tr.Rows != nil:
		return false, fmt.Sprintf("rows differ (%d only in %s, %d only in %s)",
			tr.Rows.OnlyInA, compare.LabelA, tr.Rows.OnlyInB, compare.LabelB)
	default:
		return false, "differs"
	}
}

// buildTableRows flattens the per-table verdicts into rows for tabular modes.
func buildTableRows(res *compare.Result) ([]string, [][]string) {
	header := []string{"Table", "Status", compare.LabelA + " Rows", compare.LabelB + " Rows"}

	rows := make([][]string, 0, len(res.Common)+len(res.OnlyInA)+len(res.OnlyInB))
	for _, name := range res.OnlyInA {
		rows = append(rows, []string{name, "only in " + compare.LabelA, "-", "-"})
	}
	for _, name := range res.OnlyInB {
		rows = append(rows, []string{name, "only in " + compare.LabelB, "-", "-"})
	}
	for _, name := range res.Common {
		tr := res.Tables[name]
		if tr == nil {
			continue
		}
		_, status := tableStatus(tr)
		rows = append(rows, []string{
			name,
			status,
			output.FormatCount(tr.RowCountA),
			output.FormatCount(tr.RowCountB),
		})
	}
	return header, rows
}

func renderCompareText(r *output.Renderer, report *engine.Report) error {
	styles := r.Styles()
	res := report.Result

	// Header
	r.Println("")
	r.Println(styles.Header1.Render("Database Comparison Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")
	r.Println("   " + output.FormatKeyValue(compare.LabelA, res.SourceA))
	r.Println("   " + output.FormatKeyValue(compare.LabelB, res.SourceB))
	r.Printf("   Compared %d tables in %s\n", len(res.Tables), res.Duration().Round(time.Millisecond))
	r.Println("")

	if res.Identical {
		r.Success("Databases are identical")
	} else {
		r.Warning("Databases differ")
	}
	r.Println("")

	// Tables present on only one side
	if len(res.OnlyInA) > 0 || len(res.OnlyInB) > 0 {
		r.Println(styles.Header2.Render("Missing Tables"))
		for _, name := range res.OnlyInA {
			r.Printf("   %s Table '%s' exists in %s but not in %s\n",
				styles.StatusFailed.String(), name, compare.LabelA, compare.LabelB)
		}
		for _, name := range res.OnlyInB {
			r.Printf("   %s Table '%s' exists in %s but not in %s\n",
				styles.StatusFailed.String(), name, compare.LabelB, compare.LabelA)
		}
		r.Println("")
	}

	// Common tables with per-table verdicts
	if len(res.Common) > 0 {
		r.Println(styles.Header2.Render("Tables"))
		for _, name := range res.Common {
			tr := res.Tables[name]
			if tr == nil {
				continue
			}
			ok, status := tableStatus(tr)

			icon := styles.StatusSuccess.String()
			if !ok {
				icon = styles.StatusFailed.String()
			}
			r.Printf("   %s %s: %s\n", icon, name, status)

			if tr.Schema != nil && !tr.Schema.Matches {
				for _, diff := range tr.Schema.Differences {
					r.Println(styles.Muted.Render("       - " + diff))
				}
			}
			if tr.Rows != nil && !tr.Rows.CountEqual {
				r.Println(styles.Muted.Render(fmt.Sprintf("       row counts: %s=%s, %s=%s",
					compare.LabelA, output.FormatCount(tr.RowCountA),
					compare.LabelB, output.FormatCount(tr.RowCountB))))
			}
			if tr.Rows != nil && tr.Rows.Error != "" {
				r.Println(styles.Muted.Render("       note: " + tr.Rows.Error))
			}
		}
		r.Println("")
	}

	renderAnalysesText(r, report)

	if report.RunID != "" {
		r.Println(styles.Muted.Render("   Recorded as run " + report.RunID))
		r.Println("")
	}

	return nil
}

func renderAnalysesText(r *output.Renderer, report *engine.Report) {
	if len(report.Analyses) == 0 {
		return
	}
	styles := r.Styles()

	r.Println(styles.Header2.Render("Drift Analysis"))
	for _, name := range sortedAnalysisNames(report.Analyses) {
		a := report.Analyses[name]

		r.Println(styles.Bold.Render("   " + name))
		if a.TypeOnly {
			r.Println(styles.Muted.Render("       values match, only storage classes differ"))
		}
		for _, tm := range a.TypeMismatches {
			r.Printf("       %s %s=%q stored as %s in %s, %s in %s\n",
				styles.Warning.Render("!"), tm.Column, tm.Value,
				tm.TypeA, compare.LabelA, tm.TypeB, compare.LabelB)
		}
		if len(a.SamplesOnlyInA) > 0 {
			r.Println(styles.Muted.Render("       rows only in " + compare.LabelA + ":"))
			for _, sample := range a.SamplesOnlyInA {
				r.Println("         " + formatSampleRow(sample))
			}
		}
		if len(a.SamplesOnlyInB) > 0 {
			r.Println(styles.Muted.Render("       rows only in " + compare.LabelB + ":"))
			for _, sample := range a.SamplesOnlyInB {
				r.Println("         " + formatSampleRow(sample))
			}
		}
	}
	r.Println("")
}

func renderCompareMarkdown(r *output.Renderer, report *engine.Report) error {
	res := report.Result

	r.Println("# Database Comparison Report")
	r.Println("")
	r.Printf("- **%s**: %s\n", compare.LabelA, res.SourceA)
	r.Printf("- **%s**: %s\n", compare.LabelB, res.SourceB)
	verdict := "differ"
	if res.Identical {
		verdict = "identical"
	}
	r.Printf("- **Verdict**: %s\n", verdict)
	r.Printf("- **Duration**: %s\n", res.Duration().Round(time.Millisecond))
	r.Println("")

	r.Println("## Tables")
	r.Println("")
	header, rows := buildTableRows(res)
	r.Table(header, rows)
	r.Println("")

	schemaDiffs := collectSchemaDifferences(res)
	if len(schemaDiffs) > 0 {
		r.Println("## Schema Differences")
		r.Println("")
		for _, line := range schemaDiffs {
			r.Println("- " + line)
		}
		r.Println("")
	}

	if len(report.Analyses) > 0 {
		r.Println("## Drift Analysis")
		r.Println("")
		for _, name := range sortedAnalysisNames(report.Analyses) {
			a := report.Analyses[name]
			r.Printf("### %s\n", name)
			r.Println("")
			if a.TypeOnly {
				r.Println("Values match, only storage classes differ.")
				r.Println("")
			}
			for _, tm := range a.TypeMismatches {
				r.Printf("- `%s=%s` stored as %s in %s, %s in %s\n",
					tm.Column, tm.Value, tm.TypeA, compare.LabelA, tm.TypeB, compare.LabelB)
			}
			for _, sample := range a.SamplesOnlyInA {
				r.Printf("- only in %s: `%s`\n", compare.LabelA, formatSampleRow(sample))
			}
			for _, sample := range a.SamplesOnlyInB {
				r.Printf("- only in %s: `%s`\n", compare.LabelB, formatSampleRow(sample))
			}
			r.Println("")
		}
	}

	if report.RunID != "" {
		r.Printf("_Recorded as run %s_\n", report.RunID)
	}

	return nil
}

func renderCompareCSV(r *output.Renderer, report *engine.Report) error {
	header, rows := buildTableRows(report.Result)
	r.Table(header, rows)
	return nil
}

// collectSchemaDifferences gathers the per-table schema difference lines,
// prefixed with the table name, in table order.
func collectSchemaDifferences(res *compare.Result) []string {
	var lines []string
	for _, name := range res.Common {
		tr := res.Tables[name]
		if tr == nil || tr.Schema == nil || tr.Schema.Matches {
			continue
		}
		for _, diff := range tr.Schema.Differences {
			lines = append(lines, name+": "+diff)
		}
	}
	return lines
}

func sortedAnalysisNames(analyses map[string]*compare.Analysis) []string {
	names := make([]string, 0, len(analyses))
	for name := range analyses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// formatSampleRow renders one sampled row as comma-separated column=value
// pairs in column order.
func formatSampleRow(sample map[string]string) string {
	cols := make([]string, 0, len(sample))
	for col := range sample {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, fmt.Sprintf("%s=%s", col, sample[col]))
	}
	return strings.Join(parts, ", ")
}
