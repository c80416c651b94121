package commands

import (
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbdiff/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr      string
	NoBrowser bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve comparison reports over HTTP",
		Long: `Start a local web server that renders the recorded comparison runs.

The server reads from the history store only; it never opens the compared
database files. Endpoints:
  GET /                 HTML report page
  GET /api/runs         recent runs as JSON
  GET /api/runs/latest  the most recent run with its full result
  GET /api/runs/{id}    one run with its full result`,
		Example: `  # Serve on the default address
  dbdiff serve

  # Custom address, no browser
  dbdiff serve --addr 0.0.0.0:9000 --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Address to listen on (default: 127.0.0.1:8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	serveCfg := cmdCtx.Cfg.GetServeConfig()

	// CLI flags override config file
	addr := serveCfg.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	server := ui.NewServer(ui.Config{
		Store:  cmdCtx.Engine.GetStateStore(),
		Addr:   addr,
		Logger: cmdCtx.Logger,
	})

	if !opts.NoBrowser {
		go openBrowser("http://" + addr)
	}

	r := cmdCtx.Renderer
	r.Printf("Serving comparison reports on http://%s\n", addr)
	r.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
