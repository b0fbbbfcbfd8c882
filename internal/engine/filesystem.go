package engine

import (
	"io"
	"io/fs"
)

// DirEntry is the minimal directory listing entry the sweeper needs.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FilesystemManager abstracts filesystem access so the engine can be tested
// without touching the real filesystem. Implementations must apply the
// configured ignore rules in FindFiles.
type FilesystemManager interface {
	// FindFiles returns every regular file under root, recursively, in
	// sorted order. Ignored names are excluded.
	FindFiles(root string) ([]string, error)

	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)

	// Stat returns file info for a path.
	Stat(path string) (fs.FileInfo, error)

	// Exists reports whether a path exists.
	Exists(path string) (bool, error)

	// EnsureDir creates a directory and any missing parents.
	EnsureDir(path string) error

	// Move moves src to dst, creating parent directories as needed.
	// Implementations should try a rename first and fall back to
	// copy+remove for cross-device moves.
	Move(src, dst string) error

	// Remove deletes a single file.
	Remove(path string) error

	// ListDir returns the immediate children of a directory.
	ListDir(path string) ([]DirEntry, error)

	// RemoveDir deletes a directory. It must fail if the directory is
	// not empty.
	RemoveDir(path string) error
}

// MetadataProbe resolves a capture timestamp for a media file. A file the
// probe cannot parse is a normal outcome: the probe returns an invalid
// Timestamp and a nil error. Errors are reserved for I/O failures.
type MetadataProbe interface {
	Resolve(path string) (Timestamp, error)
}
