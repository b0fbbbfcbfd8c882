package engine

import (
	"database/sql"
	"time"
)

// Run is one recorded invocation of the engine.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	InputRoot  string
	OutputRoot string
	DryRun     bool
	Status     string // "success" or "error"
}

// Decision is the persisted record of one PlannedAction.
type Decision struct {
	ID         int64
	RunID      string
	SourcePath string
	Action     string
	TargetPath string
	Reason     string
	CreatedAt  time.Time
}

// Journal persists runs and their per-file decision records.
type Journal interface {
	// CreateRun records the start of a run.
	CreateRun(run *Run) error

	// FinishRun marks a run as finished with the given status.
	FinishRun(id string, status string, finishedAt time.Time) error

	// RecordDecision appends one decision record to a run.
	RecordDecision(d *Decision) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*Run, error)

	// ListDecisions returns all decision records for a run, in the order
	// they were made.
	ListDecisions(runID string) ([]*Decision, error)

	// Close closes the journal.
	Close() error
}

// NopJournal is a Journal that records nothing. Use in tests.
type NopJournal struct{}

func NewNopJournal() *NopJournal { return &NopJournal{} }

func (*NopJournal) CreateRun(*Run) error                      { return nil }
func (*NopJournal) FinishRun(string, string, time.Time) error { return nil }
func (*NopJournal) RecordDecision(*Decision) error            { return nil }
func (*NopJournal) ListRuns(int) ([]*Run, error)              { return nil, nil }
func (*NopJournal) ListDecisions(string) ([]*Decision, error) { return nil, nil }
func (*NopJournal) Close() error                              { return nil }
