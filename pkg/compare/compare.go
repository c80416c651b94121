// Package compare implements the structural and content comparison of
// two SQLite databases: schema diffing by column definition, set-based
// row matching under normalization, and type-drift analysis. It consumes
// catalog.Reader handles and produces plain result records; rendering
// and connection mechanics live outside this package.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/dbdiff/pkg/catalog"
)

// DefaultWorkers bounds how many tables are compared concurrently when
// no explicit limit is configured.
const DefaultWorkers = 4

// Comparer coordinates the full comparison of two databases.
type Comparer struct {
	a, b    catalog.Reader
	sourceA string
	sourceB string
	tables  []string
	workers int
	logger  *slog.Logger
}

// Options configures a Comparer.
type Options struct {
	// SourceA and SourceB label the two sides in results.
	SourceA string
	SourceB string
	// Tables restricts the comparison to the named tables; empty means all.
	Tables []string
	// Workers bounds per-table concurrency; DefaultWorkers when <= 0.
	Workers int
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates a Comparer over two catalog readers.
func New(a, b catalog.Reader, opts Options) *Comparer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &Comparer{
		a:       a,
		b:       b,
		sourceA: opts.SourceA,
		sourceB: opts.SourceB,
		tables:  opts.Tables,
		workers: workers,
		logger:  logger,
	}
}

// Run compares the two databases table by table. Only tables present on
// both sides are compared individually; a table present on one side
// already makes the databases non-identical. The returned error covers
// catalog enumeration only; per-table trouble is recorded on the
// individual results.
func (c *Comparer) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		SourceA:   c.sourceA,
		SourceB:   c.sourceB,
		Tables:    make(map[string]*TableResult),
		Identical: true,
		StartedAt: time.Now().UTC(),
	}

	tablesA, err := c.a.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", LabelA, err)
	}
	tablesB, err := c.b.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", LabelB, err)
	}

	if len(c.tables) > 0 {
		tablesA = filterTables(tablesA, c.tables)
		tablesB = filterTables(tablesB, c.tables)
	}

	res.OnlyInA, res.OnlyInB, res.Common = classifyTables(tablesA, tablesB)
	if len(res.OnlyInA) > 0 || len(res.OnlyInB) > 0 {
		res.Identical = false
	}

	c.logger.Info("comparing databases",
		"source_a", c.sourceA,
		"source_b", c.sourceB,
		"common", len(res.Common),
		"only_in_a", len(res.OnlyInA),
		"only_in_b", len(res.OnlyInB),
		"workers", c.workers)

	var mu sync.Mutex
	var eg errgroup.Group
	eg.SetLimit(c.workers)

	for _, table := range res.Common {
		eg.Go(func() error {
			c.logger.Debug("comparing table", "table", table)
			tr := CompareTable(ctx, c.a, c.b, table)

			mu.Lock()
			res.Tables[table] = tr
			if !tr.Identical {
				res.Identical = false
			}
			mu.Unlock()
			return nil
		})
	}

	// Workers never fail the group; each table carries its own status.
	_ = eg.Wait()

	res.CompletedAt = time.Now().UTC()

	c.logger.Info("comparison finished",
		"identical", res.Identical,
		"duration", res.Duration().Round(time.Millisecond))

	return res, nil
}

// filterTables keeps only the names present in the allow list.
func filterTables(tables, allow []string) []string {
	keep := make(map[string]struct{}, len(allow))
	for _, t := range allow {
		keep[t] = struct{}{}
	}

	var out []string
	for _, t := range tables {
		if _, ok := keep[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// classifyTables splits two table listings into side-only and common
// name sets, each sorted.
func classifyTables(tablesA, tablesB []string) (onlyA, onlyB, common []string) {
	setA := make(map[string]struct{}, len(tablesA))
	for _, t := range tablesA {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(tablesB))
	for _, t := range tablesB {
		setB[t] = struct{}{}
	}

	for _, t := range tablesA {
		if _, ok := setB[t]; ok {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range tablesB {
		if _, ok := setA[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}

	sort.Strings(onlyA)
	sort.Strings(onlyB)
	sort.Strings(common)
	return onlyA, onlyB, common
}
