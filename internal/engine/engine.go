package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"
)

// Options is the immutable configuration of one run.
type Options struct {
	InputRoot  string
	OutputRoot string
	DryRun     bool
	Extensions []string // lower-case, no leading dot
	Location   *time.Location
}

// RunResult summarizes a finished run.
type RunResult struct {
	RunID      string
	Stats      Stats
	Actions    []PlannedAction
	PrunedDirs int
}

// ProgressFunc is called after each processed file.
type ProgressFunc func(done, total int)

// Engine is the orchestrator: it enumerates source files, classifies each
// one, resolves collisions, applies the resulting actions (unless dry-run),
// records every decision in the journal and finally sweeps media-empty tag
// directories.
type Engine struct {
	opts    Options
	fsmgr   FilesystemManager
	probe   MetadataProbe
	journal Journal
	logger  Logger
	clock   Clock
	idgen   IDGenerator
}

// New creates an Engine with the provided dependencies.
func New(opts Options, fsmgr FilesystemManager, probe MetadataProbe, journal Journal, logger Logger, clock Clock, idgen IDGenerator) *Engine {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	opts.Extensions = NormalizeExtensions(opts.Extensions)
	return &Engine{
		opts:    opts,
		fsmgr:   fsmgr,
		probe:   probe,
		journal: journal,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
	}
}

// Run processes every file under the input root and returns the run result.
// Per-file failures become Unresolved actions; only environment failures
// (input root missing, output root not writable, journal unavailable) return
// an error. progress may be nil.
func (e *Engine) Run(progress ProgressFunc) (*RunResult, error) {
	info, err := e.fsmgr.Stat(e.opts.InputRoot)
	if err != nil {
		return nil, fmt.Errorf("input root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input root is not a directory: %s", e.opts.InputRoot)
	}

	// The output tree must be writable before any file is touched. Dry-run
	// performs no mutation, so the check is skipped there.
	if !e.opts.DryRun {
		if err := e.fsmgr.EnsureDir(e.opts.OutputRoot); err != nil {
			return nil, fmt.Errorf("output root not writable: %w", err)
		}
	}

	files, err := e.fsmgr.FindFiles(e.opts.InputRoot)
	if err != nil {
		return nil, fmt.Errorf("enumerating input: %w", err)
	}

	run := &Run{
		ID:         e.idgen.New(),
		StartedAt:  e.clock.Now(),
		InputRoot:  e.opts.InputRoot,
		OutputRoot: e.opts.OutputRoot,
		DryRun:     e.opts.DryRun,
	}
	if err := e.journal.CreateRun(run); err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}

	e.logger.Info("run started",
		"run_id", run.ID,
		"files", len(files),
		"dry_run", e.opts.DryRun)

	classifier := NewClassifier(e.opts.InputRoot, e.probe, e.opts.Extensions, e.opts.Location)
	resolver := NewResolver(e.fsmgr, NewHasher(e.fsmgr), e.logger)

	result := &RunResult{RunID: run.ID}
	inputTagDirs := make(map[string]bool)
	outputTagDirs := make(map[string]bool)

	for i, src := range files {
		act := e.planOne(classifier, resolver, src)

		if !e.opts.DryRun {
			if applyErr := e.apply(act); applyErr != nil {
				e.logger.Error("applying action failed",
					"source", act.Source, "action", act.Kind.String(), "error", applyErr)
				act = PlannedAction{
					Kind:   ActionUnresolved,
					Source: act.Source,
					Tag:    act.Tag,
					Reason: ReasonIOFailure,
					Err:    applyErr,
				}
			}
		}

		if act.Tag != "" {
			inputTagDirs[filepath.Join(e.opts.InputRoot, act.Tag)] = true
			if act.Target != "" {
				outputTagDirs[filepath.Dir(act.Target)] = true
			}
		}

		if err := e.journal.RecordDecision(&Decision{
			RunID:      run.ID,
			SourcePath: act.Source,
			Action:     act.Kind.String(),
			TargetPath: act.Target,
			Reason:     string(act.Reason),
			CreatedAt:  e.clock.Now(),
		}); err != nil {
			return nil, fmt.Errorf("recording decision: %w", err)
		}

		result.Stats.Record(act.Kind)
		result.Actions = append(result.Actions, act)
		if progress != nil {
			progress(i+1, len(files))
		}
	}

	// Sweep runs strictly after all actions are applied so it can never
	// delete a directory classification is about to write into.
	sweeper := NewSweeper(e.fsmgr, e.logger, e.opts.Extensions, e.opts.DryRun)
	result.PrunedDirs = sweeper.Sweep(sortedKeys(outputTagDirs))
	result.PrunedDirs += sweeper.Sweep(sortedKeys(inputTagDirs))

	if err := e.journal.FinishRun(run.ID, "success", e.clock.Now()); err != nil {
		return nil, fmt.Errorf("finishing run: %w", err)
	}

	e.logger.Info("run finished",
		"run_id", run.ID,
		"processed", result.Stats.Processed,
		"moved", result.Stats.Moved,
		"duplicates", result.Stats.Duplicates,
		"renamed", result.Stats.Renamed,
		"unresolved", result.Stats.Unresolved,
		"pruned_dirs", result.PrunedDirs)

	return result, nil
}

// planOne produces exactly one PlannedAction for a source file. Every
// per-file failure is converted into an Unresolved action here.
func (e *Engine) planOne(classifier *Classifier, resolver *Resolver, src string) PlannedAction {
	cls, err := classifier.Classify(src)
	if err != nil {
		reason := ReasonIOFailure
		switch {
		case errors.Is(err, ErrExtensionExcluded):
			reason = ReasonExtensionExcluded
		case errors.Is(err, ErrMetadataUnavailable):
			reason = ReasonMetadataUnavailable
		}
		e.logger.Warn("file unresolved", "source", src, "reason", string(reason))
		return PlannedAction{
			Kind:   ActionUnresolved,
			Source: src,
			Tag:    InferTag(e.opts.InputRoot, src),
			Reason: reason,
			Err:    err,
		}
	}

	targetDir := TargetDir(e.opts.OutputRoot, cls.Timestamp, cls.Tag)
	act, err := resolver.Resolve(src, targetDir, cls.Timestamp, cls.Tag, cls.Ext)
	if err != nil {
		e.logger.Warn("file unresolved", "source", src, "reason", string(ReasonIOFailure), "error", err)
		return PlannedAction{
			Kind:   ActionUnresolved,
			Source: src,
			Tag:    cls.Tag,
			Reason: ReasonIOFailure,
			Err:    err,
		}
	}
	return act
}

// apply performs the filesystem mutation for one action. Unresolved actions
// perform no I/O.
func (e *Engine) apply(act PlannedAction) error {
	switch act.Kind {
	case ActionMove, ActionRenameWithSuffix:
		e.logger.Debug("moving", "source", act.Source, "target", act.Target)
		return e.fsmgr.Move(act.Source, act.Target)
	case ActionSkipDuplicate:
		e.logger.Info("duplicate content, deleting source", "source", act.Source, "target", act.Target)
		return e.fsmgr.Remove(act.Source)
	default:
		return nil
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
