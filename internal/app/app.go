package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mecla-go/internal/config"
	"mecla-go/internal/database"
	"mecla-go/internal/engine"
	"mecla-go/internal/fs"
	"mecla-go/internal/probe"
)

// App is the application layer between the CLI and the engine. It constructs
// all dependencies from config, exposes high-level operations that accept
// raw string paths, and manages the journal lifecycle on Close.
type App struct {
	cfg     *config.Config
	journal engine.Journal
	fsmgr   *fs.OSFilesystemManager
	logger  engine.Logger
	logFile *os.File
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "Run", "History"); it is
// stamped on every log line. The caller must call Close when done.
func NewApp(cfg *config.Config, operation string, level slog.Level) (*App, error) {
	journal, err := database.NewJournalFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating journal: %w", err)
	}

	logger, logFile, err := newLogger(cfg.LogDir, operation, level)
	if err != nil {
		journal.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return &App{
		cfg:     cfg,
		journal: journal,
		fsmgr:   fs.NewOSFilesystemManager(cfg.Filesystem.Ignore),
		logger:  &slogAdapter{l: logger},
		logFile: logFile,
	}, nil
}

// RunParams are the per-invocation parameters of a classification run.
type RunParams struct {
	Input      string
	Output     string
	DryRun     bool
	Extensions []string // empty means the configured (or default) allow-list
}

// Run classifies every media file under the input root into the output
// archive tree. progress may be nil.
func (a *App) Run(p RunParams, progress engine.ProgressFunc) (*engine.RunResult, error) {
	input, err := filepath.Abs(p.Input)
	if err != nil {
		return nil, fmt.Errorf("resolving input: %w", err)
	}
	output, err := filepath.Abs(p.Output)
	if err != nil {
		return nil, fmt.Errorf("resolving output: %w", err)
	}

	if err := validateRoots(input, output); err != nil {
		return nil, err
	}

	exts := p.Extensions
	if len(exts) == 0 {
		exts = a.cfg.Extensions
	}
	if len(exts) == 0 {
		a.logger.Info("no extensions configured, using defaults")
		exts = config.DefaultExtensions
	}

	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}

	prober := probe.New(a.fsmgr, loc, a.cfg.Probe.UseMtimeFallback)

	eng := engine.New(engine.Options{
		InputRoot:  input,
		OutputRoot: output,
		DryRun:     p.DryRun,
		Extensions: exts,
		Location:   loc,
	}, a.fsmgr, prober, a.journal, a.logger, engine.RealClock{}, engine.UUIDGenerator{})

	return eng.Run(progress)
}

// History returns the most recent runs, newest first.
func (a *App) History(limit int) ([]*engine.Run, error) {
	return a.journal.ListRuns(limit)
}

// Report returns the decision records of one run, in decision order.
func (a *App) Report(runID string) ([]*engine.Decision, error) {
	return a.journal.ListDecisions(runID)
}

// Close closes the journal and the log file.
func (a *App) Close() error {
	err := a.journal.Close()
	if a.logFile != nil {
		a.logFile.Close()
	}
	return err
}

// validateRoots rejects invocations where the output tree sits inside the
// input tree; moving into a directory that is being drained would make the
// run self-referential.
func validateRoots(input, output string) error {
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input must be a directory: %s", input)
	}

	rel, err := filepath.Rel(input, output)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output directory cannot be inside input directory")
	}
	return nil
}
