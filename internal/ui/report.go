package ui

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/dbdiff/internal/state"
	"github.com/leapstack-labs/dbdiff/pkg/compare"
)

const defaultRunLimit = 50

// runPayload is the JSON shape served for a single run: the run metadata
// plus the stored comparison result verbatim.
type runPayload struct {
	Run    *state.Run      `json:"run"`
	Result json.RawMessage `json:"result,omitempty"`
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, runs)
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetLatestRun()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.Error(w, "no runs recorded yet", http.StatusNotFound)
		return
	}

	s.writeJSON(w, runPayload{Run: run, Result: resultRaw(run)})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.writeJSON(w, runPayload{Run: run, Result: resultRaw(run)})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

func resultRaw(run *state.Run) json.RawMessage {
	if run.ResultJSON == "" {
		return nil
	}
	return json.RawMessage(run.ResultJSON)
}

// --- HTML report page ---

// runView is one history row prepared for the template.
type runView struct {
	ID          string
	Started     string
	Status      string
	StatusClass string
	SourceA     string
	SourceB     string
	Verdict     string
}

// tableView is one per-table verdict of the latest run.
type tableView struct {
	Name        string
	Status      string
	StatusClass string
	RowCountA   int64
	RowCountB   int64
}

type latestView struct {
	Run     runView
	Tables  []tableView
	Missing []string
}

type indexData struct {
	LabelA string
	LabelB string
	Latest *latestView
	Runs   []runView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}

	runs, err := s.store.ListRuns(defaultRunLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := indexData{
		LabelA: compare.LabelA,
		LabelB: compare.LabelB,
		Runs:   make([]runView, 0, len(runs)),
	}
	for _, run := range runs {
		data.Runs = append(data.Runs, newRunView(run))
	}
	if len(runs) > 0 {
		data.Latest = newLatestView(runs[0])
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if err := reportTemplate.Execute(w, data); err != nil {
		s.logger.Warn("failed to render report page", "error", err)
	}
}

func newRunView(run *state.Run) runView {
	v := runView{
		ID:      run.ID,
		Started: run.StartedAt.Format(time.RFC3339),
		Status:  string(run.Status),
		SourceA: run.SourceA,
		SourceB: run.SourceB,
	}

	switch run.Status {
	case state.RunStatusCompleted:
		if run.Identical {
			v.StatusClass = "ok"
			v.Verdict = "identical"
		} else {
			v.StatusClass = "bad"
			missing := run.TablesOnlyInA + run.TablesOnlyInB
			v.Verdict = fmt.Sprintf("%d of %d tables differ", run.TablesDiffering, run.TablesCompared)
			if missing > 0 {
				v.Verdict += fmt.Sprintf(", %d missing", missing)
			}
		}
	case state.RunStatusFailed:
		v.StatusClass = "bad"
		v.Verdict = run.Error
	default:
		v.StatusClass = "muted"
		v.Verdict = "-"
	}

	return v
}

// newLatestView expands the stored result of the most recent run into
// per-table rows. A run whose result cannot be decoded still renders its
// summary line.
func newLatestView(run *state.Run) *latestView {
	view := &latestView{Run: newRunView(run)}

	if run.ResultJSON == "" {
		return view
	}
	var result compare.Result
	if err := json.Unmarshal([]byte(run.ResultJSON), &result); err != nil {
		return view
	}

	for _, name := range result.OnlyInA {
		view.Missing = append(view.Missing,
			fmt.Sprintf("Table '%s' exists in %s but not in %s", name, compare.LabelA, compare.LabelB))
	}
	for _, name := range result.OnlyInB {
		view.Missing = append(view.Missing,
			fmt.Sprintf("Table '%s' exists in %s but not in %s", name, compare.LabelB, compare.LabelA))
	}

	for _, name := range result.Common {
		tr := result.Tables[name]
		if tr == nil {
			continue
		}
		tv := tableView{
			Name:      name,
			RowCountA: tr.RowCountA,
			RowCountB: tr.RowCountB,
		}
		switch {
		case tr.Error != "":
			tv.Status, tv.StatusClass = "error", "bad"
		case tr.Incomplete:
			tv.Status, tv.StatusClass = "incomplete", "muted"
		case tr.Identical:
			tv.Status, tv.StatusClass = "identical", "ok"
		case tr.Schema != nil && !tr.Schema.Matches:
			tv.Status, tv.StatusClass = "schema differs", "bad"
		default:
			tv.Status, tv.StatusClass = "rows differ", "bad"
		}
		view.Tables = append(view.Tables, tv)
	}

	return view
}

var reportTemplate = template.Must(template.New("report").Parse(reportHTML))

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>dbdiff</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #24292f; }
  h1 { font-size: 1.6rem; }
  h2 { font-size: 1.2rem; margin-top: 2rem; }
  table { border-collapse: collapse; width: 100%; margin-top: 0.5rem; }
  th, td { text-align: left; padding: 0.4rem 0.7rem; border-bottom: 1px solid #d8dee4; font-size: 0.9rem; }
  th { color: #57606a; font-weight: 600; }
  .ok { color: #1a7f37; }
  .bad { color: #cf222e; }
  .muted { color: #6e7781; }
  code { background: #f6f8fa; padding: 0.1rem 0.3rem; border-radius: 4px; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>dbdiff</h1>

{{if .Latest}}
<h2>Latest Run</h2>
<p>
  <code>{{.Latest.Run.SourceA}}</code> vs <code>{{.Latest.Run.SourceB}}</code>
  &mdash; <span class="{{.Latest.Run.StatusClass}}">{{.Latest.Run.Verdict}}</span>
  <span class="muted">({{.Latest.Run.Started}})</span>
</p>
{{if .Latest.Missing}}
<ul>
{{range .Latest.Missing}}  <li class="bad">{{.}}</li>
{{end}}</ul>
{{end}}
{{if .Latest.Tables}}
<table>
  <tr><th>Table</th><th>Status</th><th>{{$.LabelA}} Rows</th><th>{{$.LabelB}} Rows</th></tr>
{{range .Latest.Tables}}  <tr><td>{{.Name}}</td><td class="{{.StatusClass}}">{{.Status}}</td><td>{{.RowCountA}}</td><td>{{.RowCountB}}</td></tr>
{{end}}</table>
{{end}}
{{else}}
<p class="muted">No runs recorded yet. Run <code>dbdiff compare</code> first.</p>
{{end}}

<h2>History</h2>
{{if .Runs}}
<table>
  <tr><th>ID</th><th>Started</th><th>Status</th><th>{{.LabelA}}</th><th>{{.LabelB}}</th><th>Verdict</th></tr>
{{range .Runs}}  <tr><td><a href="/api/runs/{{.ID}}">{{.ID}}</a></td><td>{{.Started}}</td><td class="{{.StatusClass}}">{{.Status}}</td><td>{{.SourceA}}</td><td>{{.SourceB}}</td><td>{{.Verdict}}</td></tr>
{{end}}</table>
{{else}}
<p class="muted">Empty.</p>
{{end}}

</body>
</html>
`
