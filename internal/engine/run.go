package engine

// run.go - Orchestration of a single comparison run.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/dbdiff/internal/state"
	"github.com/leapstack-labs/dbdiff/pkg/catalog"
	"github.com/leapstack-labs/dbdiff/pkg/compare"
)

// RunOptions adjusts a single comparison run.
type RunOptions struct {
	// Tables restricts the comparison to the named tables; empty means all.
	Tables []string
	// Detailed re-reads rows of drifting tables for type and sample analysis.
	Detailed bool
}

// Report is the outcome of one comparison run.
type Report struct {
	RunID    string                       `json:"run_id,omitempty"`
	Result   *compare.Result              `json:"result"`
	Analyses map[string]*compare.Analysis `json:"analyses,omitempty"`
}

// Run compares two database files and records the outcome in the
// history store. Failing to open either source aborts before anything
// is recorded.
func (e *Engine) Run(ctx context.Context, sourceA, sourceB string, opts RunOptions) (*Report, error) {
	e.logger.Info("starting comparison", "source_a", sourceA, "source_b", sourceB)

	catA := catalog.NewSQLite()
	if err := catA.Connect(ctx, sourceA); err != nil {
		return nil, fmt.Errorf("failed to open %s at %s: %w", compare.LabelA, sourceA, err)
	}
	defer func() { _ = catA.Close() }()

	catB := catalog.NewSQLite()
	if err := catB.Connect(ctx, sourceB); err != nil {
		return nil, fmt.Errorf("failed to open %s at %s: %w", compare.LabelB, sourceB, err)
	}
	defer func() { _ = catB.Close() }()

	run, err := e.store.CreateRun(sourceA, sourceB)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	e.logger.Debug("created run", "run_id", run.ID)

	cmp := compare.New(catA, catB, compare.Options{
		SourceA: sourceA,
		SourceB: sourceB,
		Tables:  opts.Tables,
		Workers: e.workers,
		Logger:  e.logger,
	})

	result, err := cmp.Run(ctx)
	if err != nil {
		_ = e.store.FailRun(run.ID, err.Error())
		return nil, err
	}

	report := &Report{RunID: run.ID, Result: result}
	if opts.Detailed {
		report.Analyses = e.analyzeDrift(ctx, catA, catB, result)
	}

	if err := e.recordResult(run.ID, result); err != nil {
		e.logger.Warn("failed to record run", "run_id", run.ID, "error", err)
	}

	return report, nil
}

// analyzeDrift re-reads rows for common tables whose content differs
// and produces a per-table analysis. Tables whose schemas differ were
// never row-diffed and are skipped.
func (e *Engine) analyzeDrift(ctx context.Context, a, b catalog.Reader, result *compare.Result) map[string]*compare.Analysis {
	analyses := make(map[string]*compare.Analysis)

	for _, table := range result.Common {
		tr := result.Tables[table]
		if tr == nil || tr.Rows == nil || tr.Rows.FullyIdentical {
			continue
		}

		rowsA, err := a.Rows(ctx, table)
		if err != nil {
			e.logger.Warn("skipping analysis", "table", table, "error", err)
			continue
		}
		rowsB, err := b.Rows(ctx, table)
		if err != nil {
			e.logger.Warn("skipping analysis", "table", table, "error", err)
			continue
		}

		e.logger.Debug("analyzing drift", "table", table)
		analyses[table] = compare.Analyze(rowsA, rowsB, e.maxSamples)
	}

	if len(analyses) == 0 {
		return nil
	}
	return analyses
}

// recordResult persists the verdict and the full result JSON for later
// history lookups.
func (e *Engine) recordResult(runID string, result *compare.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	differing := 0
	for _, tr := range result.Tables {
		if !tr.Identical {
			differing++
		}
	}

	return e.store.CompleteRun(runID, state.Summary{
		Identical:       result.Identical,
		TablesCompared:  len(result.Tables),
		TablesDiffering: differing,
		TablesOnlyInA:   len(result.OnlyInA),
		TablesOnlyInB:   len(result.OnlyInB),
		ResultJSON:      string(payload),
	})
}
