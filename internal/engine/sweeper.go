package engine

import "path/filepath"

// Sweeper removes archive directories that contain no media files after a
// run. It only ever deletes directories: a directory still holding any file,
// media or not, is left alone.
type Sweeper struct {
	fsmgr   FilesystemManager
	logger  Logger
	allowed map[string]bool
	dryRun  bool
}

// NewSweeper creates a Sweeper. exts is the media extension allow-list used
// to decide whether a subtree still contains media.
func NewSweeper(fsmgr FilesystemManager, logger Logger, exts []string, dryRun bool) *Sweeper {
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[e] = true
	}
	return &Sweeper{
		fsmgr:   fsmgr,
		logger:  logger,
		allowed: allowed,
		dryRun:  dryRun,
	}
}

// Sweep evaluates each candidate directory and removes those whose subtree
// contains zero media files, bottom-up. Failures on individual directories
// are logged and skipped; they never abort the sweep. Returns the number of
// candidate directories removed (or that would be removed, in dry-run).
func (s *Sweeper) Sweep(dirs []string) int {
	removed := 0
	for _, dir := range dirs {
		exists, err := s.fsmgr.Exists(dir)
		if err != nil {
			s.logger.Error("checking sweep candidate", "dir", dir, "error", err)
			continue
		}
		if !exists {
			continue
		}

		hasMedia, err := s.containsMedia(dir)
		if err != nil {
			s.logger.Error("scanning sweep candidate", "dir", dir, "error", err)
			continue
		}
		if hasMedia {
			continue
		}

		s.logger.Info("pruning media-empty directory", "dir", dir, "dry_run", s.dryRun)
		if s.dryRun {
			removed++
			continue
		}

		if err := s.pruneEmpty(dir); err != nil {
			s.logger.Error("pruning directory", "dir", dir, "error", err)
			continue
		}

		empty, err := s.isEmpty(dir)
		if err != nil {
			s.logger.Error("re-checking directory", "dir", dir, "error", err)
			continue
		}
		if empty {
			if err := s.fsmgr.RemoveDir(dir); err != nil {
				s.logger.Error("removing directory", "dir", dir, "error", err)
				continue
			}
			removed++
		}
	}
	return removed
}

// containsMedia is a bottom-up fold over the subtree: true as soon as any
// file with an allowed extension is found.
func (s *Sweeper) containsMedia(dir string) (bool, error) {
	entries, err := s.fsmgr.ListDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.IsDir {
			has, err := s.containsMedia(filepath.Join(dir, e.Name))
			if err != nil {
				return false, err
			}
			if has {
				return true, nil
			}
			continue
		}
		if s.allowed[Extension(e.Name)] {
			return true, nil
		}
	}
	return false, nil
}

// pruneEmpty removes empty subdirectories post-order. dir itself is left for
// the caller.
func (s *Sweeper) pruneEmpty(dir string) error {
	entries, err := s.fsmgr.ListDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir {
			continue
		}
		child := filepath.Join(dir, e.Name)
		if err := s.pruneEmpty(child); err != nil {
			return err
		}
		empty, err := s.isEmpty(child)
		if err != nil {
			return err
		}
		if empty {
			if err := s.fsmgr.RemoveDir(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Sweeper) isEmpty(dir string) (bool, error) {
	entries, err := s.fsmgr.ListDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}
