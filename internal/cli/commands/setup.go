package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/leapstack-labs/dbdiff/internal/cli/config"
	"github.com/leapstack-labs/dbdiff/internal/cli/output"
	"github.com/leapstack-labs/dbdiff/internal/engine"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need the history store.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// overrideRenderer swaps in a renderer for a per-command --format value.
// An empty value keeps the context renderer; an unknown one is an error,
// matching how --output is validated.
func overrideRenderer(cmd *cobra.Command, r *output.Renderer, format string) (*output.Renderer, error) {
	if format == "" {
		return r, nil
	}
	if !slices.Contains(output.Modes(), format) {
		return nil, fmt.Errorf("unknown output format %q (valid: %s)",
			format, strings.Join(output.Modes(), ", "))
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format)), nil
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	statePath := getEnvOrDefault("DBDIFF_STATE_PATH", config.DefaultStateFile)
	workers := getEnvIntOrDefault("DBDIFF_WORKERS", config.DefaultWorkers)
	maxSamples := getEnvIntOrDefault("DBDIFF_MAX_SAMPLES", config.DefaultMaxSamples)
	verbose := os.Getenv("DBDIFF_VERBOSE") == "true"
	outputFormat := getEnvOrDefault("DBDIFF_OUTPUT", config.DefaultOutput)

	return &config.Config{
		StatePath:    statePath,
		Workers:      workers,
		MaxSamples:   maxSamples,
		Verbose:      verbose,
		OutputFormat: outputFormat,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	// Ensure state directory exists
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, err
		}
	}

	engineCfg := engine.Config{
		StatePath:  cfg.StatePath,
		Workers:    cfg.Workers,
		MaxSamples: cfg.MaxSamples,
		Logger:     logger,
	}

	return engine.New(engineCfg)
}
