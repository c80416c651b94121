// Package output renders command results as styled text, markdown,
// JSON, CSV, or YAML, with automatic mode selection based on whether
// stdout is a terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Mode selects how command output is rendered.
type Mode string

const (
	// ModeAuto picks styled text on a terminal and markdown when piped.
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeCSV      Mode = "csv"
	ModeYAML     Mode = "yaml"
)

// Modes lists the accepted --output values.
func Modes() []string {
	return []string{string(ModeAuto), string(ModeText), string(ModeMarkdown), string(ModeJSON), string(ModeCSV), string(ModeYAML)}
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles Styles
}

// NewRenderer creates a renderer. An empty mode means ModeAuto.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}

	isTTY := isTerminalWriter(out)
	colored := isTTY && termenv.EnvColorProfile() != termenv.Ascii

	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: newStyles(colored),
	}
}

// NewRendererWithTTY creates a renderer with the terminal decision made
// by the caller. Styling stays off so test output is byte-stable.
func NewRendererWithTTY(out, errOut io.Writer, mode Mode, isTTY bool) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: newStyles(false),
	}
}

// EffectiveMode resolves ModeAuto against the terminal.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Styles returns the style set for custom rendering.
func (r *Renderer) Styles() Styles {
	return r.styles
}

// Writer returns the underlying output stream, e.g. for encoders.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the underlying error stream.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// IsTTY reports whether the output stream is a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Println writes a plain line to the output stream.
func (r *Renderer) Println(args ...any) {
	fmt.Fprintln(r.out, args...)
}

// Printf writes formatted text to the output stream.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Header writes a level-1 heading appropriate to the mode.
func (r *Renderer) Header(text string) {
	if r.EffectiveMode() == ModeMarkdown {
		fmt.Fprintf(r.out, "# %s\n\n", text)
		return
	}
	fmt.Fprintln(r.out, r.styles.Header1.Render(text))
	fmt.Fprintln(r.out, strings.Repeat("=", len(text)))
}

// Section writes a level-2 heading appropriate to the mode.
func (r *Renderer) Section(text string) {
	if r.EffectiveMode() == ModeMarkdown {
		fmt.Fprintf(r.out, "## %s\n\n", text)
		return
	}
	fmt.Fprintln(r.out, r.styles.Header2.Render(text))
}

// Success writes a success line to the output stream.
func (r *Renderer) Success(format string, args ...any) {
	fmt.Fprintln(r.out, r.styles.Success.Render(fmt.Sprintf(format, args...)))
}

// Warning writes a warning line to the output stream.
func (r *Renderer) Warning(format string, args ...any) {
	fmt.Fprintln(r.out, r.styles.Warning.Render(fmt.Sprintf(format, args...)))
}

// Muted writes a de-emphasized line to the output stream.
func (r *Renderer) Muted(format string, args ...any) {
	fmt.Fprintln(r.out, r.styles.Muted.Render(fmt.Sprintf(format, args...)))
}

// Error writes a styled error line to the error stream.
func (r *Renderer) Error(format string, args ...any) {
	fmt.Fprintln(r.errOut, r.styles.Error.Render(fmt.Sprintf(format, args...)))
}

// StatusLine writes a glyph-prefixed verdict line.
func (r *Renderer) StatusLine(ok bool, format string, args ...any) {
	glyph := r.styles.StatusSuccess.String()
	if !ok {
		glyph = r.styles.StatusFailed.String()
	}
	fmt.Fprintf(r.out, "%s %s\n", glyph, fmt.Sprintf(format, args...))
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// Table renders a table in the effective mode: box-drawn for text,
// pipe table for markdown, raw rows for CSV.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	switch r.EffectiveMode() {
	case ModeMarkdown:
		t.RenderMarkdown()
	case ModeCSV:
		t.RenderCSV()
	default:
		t.SetStyle(table.StyleLight)
		t.Render()
	}
}

// countPrinter formats integers with locale separators.
var countPrinter = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return countPrinter.Sprintf("%d", n)
}

// FormatKeyValue renders a "key: value" line.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s", key, value)
}

// isTerminalWriter reports whether w is a terminal.
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
