package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

const (
	replPrompt = "dbdiff> "
	contPrompt = "   ...> "
)

// repl is one interactive query session against a read-only database.
type repl struct {
	db     *sql.DB
	out    io.Writer
	errOut io.Writer
	format string
}

func runQueryREPL(cmd *cobra.Command, source, historyFile string, opts *QueryOptions) error {
	db, err := openDatabaseReadOnly(source)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	s := &repl{
		db:     db,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		format: opts.Format,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    s.completer(cmd.Context()),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(s.out, "dbdiff SQL session on %s (read-only)\n", source)
	_, _ = fmt.Fprintln(s.out, `Type ".help" for commands, ".quit" to leave`)
	_, _ = fmt.Fprintln(s.out)

	s.loop(cmd.Context(), rl)
	return nil
}

func (s *repl) loop(ctx context.Context, rl *readline.Instance) {
	var stmt []string // lines of the statement being assembled
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			stmt = stmt[:0]
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Dot-commands only start a statement, never continue one.
		if len(stmt) == 0 && strings.HasPrefix(line, ".") {
			if quit := s.dispatch(ctx, line); quit {
				return
			}
			continue
		}

		stmt = append(stmt, line)
		if !strings.HasSuffix(line, ";") {
			rl.SetPrompt(contPrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		query := strings.TrimSuffix(strings.Join(stmt, " "), ";")
		stmt = stmt[:0]

		if err := s.run(ctx, query); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(s.out)
	}
}

// dispatch executes one dot-command. It reports whether the session
// should end.
func (s *repl) dispatch(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")

	var err error
	switch strings.ToLower(name) {
	case ".quit", ".exit":
		return true

	case ".help":
		_, _ = fmt.Fprint(s.out, replHelp)

	case ".tables":
		err = listTablesFromDB(ctx, s.out, s.db, s.format, false)

	case ".views":
		err = listTablesFromDB(ctx, s.out, s.db, s.format, true)

	case ".schema":
		arg = strings.TrimSpace(arg)
		if arg == "" {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .schema <table>")
			break
		}
		err = showSchemaFromDB(ctx, s.out, s.db, arg, s.format)

	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (.help lists commands)\n", name)
	}

	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	return false
}

// run executes a single SQL statement and renders its result set.
func (s *repl) run(ctx context.Context, query string) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	return renderResults(s.out, rows, s.format)
}

const replHelp = `
Commands:
  .help           Show this message
  .tables         List tables and views
  .views          List views only
  .schema <name>  Columns and indexes of a table or view
  .clear          Clear the screen
  .quit / .exit   Leave the session

Statements run once they end with ";" and may span lines.
`

// completer offers the dot-commands plus table and view names. A lookup
// failure just means no name completion.
func (s *repl) completer(ctx context.Context) *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".views"),
		readline.PcItem(".schema"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return readline.NewPrefixCompleter(items...)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			items = append(items, readline.PcItem(name))
		}
	}
	_ = rows.Err()

	return readline.NewPrefixCompleter(items...)
}
