package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"mecla-go/internal/engine"
)

// OSFilesystemManager is the real filesystem implementation of
// engine.FilesystemManager. It performs actual filesystem operations using
// the os package and applies the configured ignore rules during enumeration.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a filesystem manager that operates on the
// real filesystem. ignorePatterns are matched against enumerated entries;
// the built-in junk-file patterns are always applied.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	all := append(append([]string{}, defaultIgnorePatterns...), ignorePatterns...)
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(all)}
}

// FindFiles returns every regular file under root in sorted order, skipping
// ignored entries. Symlinks are not followed.
func (m *OSFilesystemManager) FindFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}

		if d.IsDir() {
			if m.ignore.Match(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if m.ignore.Match(rel) {
			return nil
		}

		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Stat returns file info for a path.
func (m *OSFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Exists reports whether a path exists.
func (m *OSFilesystemManager) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// EnsureDir creates a directory and any missing parents.
func (m *OSFilesystemManager) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return nil
}

// Move moves src to dst, creating parent directories as needed. It tries a
// rename first and falls back to copy+remove, which also works across
// devices.
func (m *OSFilesystemManager) Move(src, dst string) error {
	if err := m.EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("rename failed (%v) and copy failed: %w", renameErr, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("rename failed (%v) and copy succeeded but remove failed: %w", renameErr, err)
	}
	return nil
}

// Remove deletes a single file.
func (m *OSFilesystemManager) Remove(path string) error {
	return os.Remove(path)
}

// ListDir returns the immediate children of a directory.
func (m *OSFilesystemManager) ListDir(path string) ([]engine.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	out := make([]engine.DirEntry, len(entries))
	for i, e := range entries {
		out[i] = engine.DirEntry{Name: e.Name(), IsDir: e.IsDir()}
	}
	return out, nil
}

// RemoveDir deletes a directory. os.Remove fails on non-empty directories,
// which is exactly the contract the sweeper relies on.
func (m *OSFilesystemManager) RemoveDir(path string) error {
	return os.Remove(path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// Compile-time check that OSFilesystemManager implements the engine interface.
var _ engine.FilesystemManager = (*OSFilesystemManager)(nil)
