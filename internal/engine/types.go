package engine

import (
	"errors"
	"time"
)

// Timestamp is an externally-resolved capture time. Absence is an explicit
// state, not a sentinel date: probes that cannot resolve a time return
// Valid=false.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// ActionKind identifies the decided outcome for one source file.
type ActionKind int

const (
	ActionMove ActionKind = iota
	ActionSkipDuplicate
	ActionRenameWithSuffix
	ActionUnresolved
)

func (k ActionKind) String() string {
	switch k {
	case ActionMove:
		return "move"
	case ActionSkipDuplicate:
		return "skip_duplicate"
	case ActionRenameWithSuffix:
		return "rename_with_suffix"
	case ActionUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// UnresolvedReason explains why a file produced no filesystem action.
// The values are stored verbatim in the run journal.
type UnresolvedReason string

const (
	ReasonNone                UnresolvedReason = ""
	ReasonMetadataUnavailable UnresolvedReason = "metadata_unavailable"
	ReasonExtensionExcluded   UnresolvedReason = "extension_excluded"
	ReasonIOFailure           UnresolvedReason = "io_failure"
	ReasonPersistentCollision UnresolvedReason = "persistent_collision"
)

// PlannedAction is the single decided outcome for one source file.
//
// Target holds the destination path for ActionMove and ActionRenameWithSuffix,
// the already-existing path for ActionSkipDuplicate, and is empty for
// ActionUnresolved. Err carries the underlying cause for ReasonIOFailure.
type PlannedAction struct {
	Kind   ActionKind
	Source string
	Target string
	Tag    string
	Reason UnresolvedReason
	Err    error
}

// Per-file classification failures. They surface as Unresolved planned
// actions, never as run aborts.
var (
	ErrMetadataUnavailable = errors.New("no timestamp resolvable")
	ErrExtensionExcluded   = errors.New("extension not in allow-list")
)
