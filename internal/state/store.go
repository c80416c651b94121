// Package state records comparison runs in a local SQLite database so
// past results can be listed and re-rendered.
package state

import "time"

// RunStatus describes the lifecycle of a recorded run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded comparison.
type Run struct {
	ID      string    `json:"id"`
	SourceA string    `json:"source_a"`
	SourceB string    `json:"source_b"`
	Status  RunStatus `json:"status"`

	Identical       bool `json:"identical"`
	TablesCompared  int  `json:"tables_compared"`
	TablesDiffering int  `json:"tables_differing"`
	TablesOnlyInA   int  `json:"tables_only_in_a"`
	TablesOnlyInB   int  `json:"tables_only_in_b"`

	// ResultJSON is the serialized comparison result, kept verbatim so a
	// stored run can be re-rendered later.
	ResultJSON string `json:"-"`

	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Summary carries the completion payload of a finished comparison.
type Summary struct {
	Identical       bool
	TablesCompared  int
	TablesDiffering int
	TablesOnlyInA   int
	TablesOnlyInB   int
	ResultJSON      string
}

// Store persists comparison runs.
type Store interface {
	// CreateRun records the start of a comparison.
	CreateRun(sourceA, sourceB string) (*Run, error)

	// CompleteRun marks a run as completed with its summary.
	CompleteRun(id string, summary Summary) error

	// FailRun marks a run as failed.
	FailRun(id string, errMsg string) error

	// GetRun retrieves a run by ID.
	GetRun(id string) (*Run, error)

	// GetLatestRun retrieves the most recent run, or nil when none exist.
	GetLatestRun() (*Run, error)

	// ListRuns retrieves the most recent runs up to the given limit.
	ListRuns(limit int) ([]*Run, error)

	// DeleteOldRuns keeps only the most recent keep runs.
	DeleteOldRuns(keep int) error

	// Close releases the store.
	Close() error
}
