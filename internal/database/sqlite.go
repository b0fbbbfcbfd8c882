package database

import (
	"database/sql"
	"fmt"
	"time"

	"mecla-go/internal/database/migrations"
	"mecla-go/internal/engine"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal implements engine.Journal using SQLite.
type SQLiteJournal struct {
	db   *sql.DB
	path string
}

// NewSQLiteJournal opens (and migrates) a journal database.
// path can be a file path or ":memory:" for an in-memory journal.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}

	return &SQLiteJournal{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with the
// appropriate PRAGMAs. Exported for tools and tests that need a properly
// configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite defaults foreign keys to OFF for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// CreateRun records the start of a run.
func (s *SQLiteJournal) CreateRun(run *engine.Run) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, input_root, output_root, dry_run, status)
		 VALUES (?, ?, ?, ?, ?, 'running')`,
		run.ID, run.StartedAt, run.InputRoot, run.OutputRoot, run.DryRun,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// FinishRun marks a run as finished with the given status.
func (s *SQLiteJournal) FinishRun(id string, status string, finishedAt time.Time) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status, finishedAt, id,
	)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no such run: %s", id)
	}
	return nil
}

// RecordDecision appends one decision record to a run.
func (s *SQLiteJournal) RecordDecision(d *engine.Decision) error {
	_, err := s.db.Exec(
		`INSERT INTO decisions (run_id, source_path, action, target_path, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.RunID, d.SourcePath, d.Action, d.TargetPath, d.Reason, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting decision: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteJournal) ListRuns(limit int) ([]*engine.Run, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, finished_at, input_root, output_root, dry_run, status
		 FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*engine.Run
	for rows.Next() {
		var r engine.Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt,
			&r.InputRoot, &r.OutputRoot, &r.DryRun, &r.Status); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// ListDecisions returns all decision records for a run, in the order they
// were made.
func (s *SQLiteJournal) ListDecisions(runID string) ([]*engine.Decision, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, source_path, action, target_path, reason, created_at
		 FROM decisions WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*engine.Decision
	for rows.Next() {
		var d engine.Decision
		if err := rows.Scan(&d.ID, &d.RunID, &d.SourcePath, &d.Action,
			&d.TargetPath, &d.Reason, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning decision: %w", err)
		}
		decisions = append(decisions, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decisions: %w", err)
	}
	return decisions, nil
}

// Close closes the journal database.
func (s *SQLiteJournal) Close() error {
	return s.db.Close()
}

// Compile-time check that SQLiteJournal implements the engine interface.
var _ engine.Journal = (*SQLiteJournal)(nil)
