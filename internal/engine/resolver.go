package engine

import (
	"fmt"
	"path/filepath"
	"time"
)

// Disambiguation token lengths, from the hash-prefix policy of the archive
// layout: start at 8 hex characters and widen by 4 up to 20 before giving up.
const (
	tokenInitialLen = 8
	tokenMaxLen     = 20
	tokenStep       = 4
)

// claim marks a target path as taken by an earlier decision in this run.
// The digest of the claiming source is cached once computed so later
// collisions against a not-yet-written target can still compare content.
type claim struct {
	source string
	digest *Digest
}

// Resolver decides the final action for a candidate target path, using
// content digests to tell duplicates from genuine collisions. It owns the
// claimed-targets set for the lifetime of one run; no two decisions it makes
// ever share a destination.
type Resolver struct {
	fsmgr  FilesystemManager
	hasher *Hasher
	logger Logger
	claims map[string]*claim
}

// NewResolver creates a Resolver with an empty claims set.
func NewResolver(fsmgr FilesystemManager, hasher *Hasher, logger Logger) *Resolver {
	return &Resolver{
		fsmgr:  fsmgr,
		hasher: hasher,
		logger: logger,
		claims: make(map[string]*claim),
	}
}

// Resolve decides the planned action for source, whose canonical destination
// is targetDir/CanonicalName(ts, ext). The returned error is an I/O failure
// (open/read during digesting); the caller converts it to an Unresolved
// action.
func (r *Resolver) Resolve(source string, targetDir string, ts time.Time, tag string, ext string) (PlannedAction, error) {
	base := filepath.Join(targetDir, CanonicalName(ts, ext))

	occupied, err := r.isOccupied(base)
	if err != nil {
		return PlannedAction{}, err
	}
	if !occupied {
		r.claims[base] = &claim{source: source}
		return PlannedAction{Kind: ActionMove, Source: source, Target: base, Tag: tag}, nil
	}

	r.logger.Warn("target collision", "source", source, "target", base)

	srcDigest, err := r.hasher.HashFile(source)
	if err != nil {
		return PlannedAction{}, fmt.Errorf("hashing source: %w", err)
	}

	occDigest, err := r.occupantDigest(base)
	if err != nil {
		return PlannedAction{}, fmt.Errorf("hashing occupant of %s: %w", base, err)
	}
	if occDigest == srcDigest {
		return PlannedAction{Kind: ActionSkipDuplicate, Source: source, Target: base, Tag: tag}, nil
	}

	// Content differs: look for a free suffixed name derived from the
	// source digest. Longer tokens extend the same hex prefix, so the
	// search is deterministic across re-runs.
	for n := tokenInitialLen; n <= tokenMaxLen; n += tokenStep {
		cand := filepath.Join(targetDir, SuffixedName(ts, srcDigest.Token(n), ext))

		occupied, err := r.isOccupied(cand)
		if err != nil {
			return PlannedAction{}, err
		}
		if !occupied {
			r.claims[cand] = &claim{source: source, digest: &srcDigest}
			r.logger.Info("collision renamed", "source", source, "target", cand)
			return PlannedAction{Kind: ActionRenameWithSuffix, Source: source, Target: cand, Tag: tag}, nil
		}

		candDigest, err := r.occupantDigest(cand)
		if err != nil {
			return PlannedAction{}, fmt.Errorf("hashing occupant of %s: %w", cand, err)
		}
		if candDigest == srcDigest {
			return PlannedAction{Kind: ActionSkipDuplicate, Source: source, Target: cand, Tag: tag}, nil
		}
	}

	r.logger.Error("persistent collision", "source", source, "target", base)
	return PlannedAction{
		Kind:   ActionUnresolved,
		Source: source,
		Tag:    tag,
		Reason: ReasonPersistentCollision,
	}, nil
}

// Claimed reports whether a target path has been claimed in this run.
func (r *Resolver) Claimed(target string) bool {
	_, ok := r.claims[target]
	return ok
}

// isOccupied reports whether a target path exists on disk or has been
// claimed by an earlier decision in this run.
func (r *Resolver) isOccupied(target string) (bool, error) {
	if _, ok := r.claims[target]; ok {
		return true, nil
	}
	exists, err := r.fsmgr.Exists(target)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", target, err)
	}
	return exists, nil
}

// occupantDigest returns the content digest of whatever occupies a target
// path: the file on disk when it exists, or the claiming source file when
// the target was claimed but not yet written (dry-run). The result is cached
// on the claim.
func (r *Resolver) occupantDigest(target string) (Digest, error) {
	exists, err := r.fsmgr.Exists(target)
	if err != nil {
		return Digest{}, err
	}
	if exists {
		return r.hasher.HashFile(target)
	}

	c, ok := r.claims[target]
	if !ok {
		return Digest{}, fmt.Errorf("no occupant for %s", target)
	}
	if c.digest == nil {
		d, err := r.hasher.HashFile(c.source)
		if err != nil {
			return Digest{}, err
		}
		c.digest = &d
	}
	return *c.digest, nil
}
