// Package engine coordinates comparison runs. It owns the history
// store, opens read-only catalogs for each run, and re-reads rows for
// detailed drift analysis on demand.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/dbdiff/internal/state"
	"github.com/leapstack-labs/dbdiff/pkg/compare"
)

// Engine runs comparisons and records their history.
type Engine struct {
	store      state.Store
	workers    int
	maxSamples int
	logger     *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// StatePath is the path to the SQLite history database
	StatePath string
	// Workers bounds concurrent per-table comparisons
	Workers int
	// MaxSamples bounds detailed analysis samples per table
	MaxSamples int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine and opens its history store.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing engine", "state_path", cfg.StatePath)

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate history store: %w", err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = compare.DefaultWorkers
	}

	maxSamples := cfg.MaxSamples
	if maxSamples <= 0 {
		maxSamples = compare.DefaultMaxSamples
	}

	return &Engine{
		store:      store,
		workers:    workers,
		maxSamples: maxSamples,
		logger:     logger,
	}, nil
}

// Close releases the history store.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// GetStateStore returns the history store.
func (e *Engine) GetStateStore() state.Store {
	return e.store
}
