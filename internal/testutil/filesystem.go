package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mecla-go/internal/engine"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing. Paths are
// plain slash-separated strings; parent directories are created implicitly.
type MockFilesystemManager struct {
	files map[string]*MockFile
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files: make(map[string]*MockFile),
	}
}

// AddFile adds a file (and its parent directories) to the mock filesystem.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.addParents(path)
	m.files[path] = &MockFile{
		Content:     content,
		Permissions: 0644,
		ModTime:     time.Now(),
	}
}

// AddFileModTime is AddFile with an explicit modification time.
func (m *MockFilesystemManager) AddFileModTime(path string, content []byte, modTime time.Time) {
	m.AddFile(path, content)
	m.files[path].ModTime = modTime
}

// AddDirectory adds a directory (and its parents) to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.addParents(path)
	m.files[path] = &MockFile{
		Permissions: 0755,
		ModTime:     time.Now(),
		IsDirectory: true,
	}
}

func (m *MockFilesystemManager) addParents(path string) {
	for dir := filepath.Dir(path); dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		if _, ok := m.files[dir]; !ok {
			m.files[dir] = &MockFile{
				Permissions: 0755,
				ModTime:     time.Now(),
				IsDirectory: true,
			}
		}
	}
}

// FindFiles returns every regular file under root, sorted.
func (m *MockFilesystemManager) FindFiles(root string) ([]string, error) {
	d, ok := m.files[root]
	if !ok || !d.IsDirectory {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	var out []string
	prefix := strings.TrimSuffix(root, "/") + "/"
	for p, f := range m.files {
		if f.IsDirectory {
			continue
		}
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Open opens a file for reading.
func (m *MockFilesystemManager) Open(path string) (io.ReadCloser, error) {
	f, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if f.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path)
	}
	return io.NopCloser(bytes.NewReader(f.Content)), nil
}

// Stat returns file info for a path.
func (m *MockFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	f, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(f.Content)),
		mode:    f.Permissions,
		modTime: f.ModTime,
		isDir:   f.IsDirectory,
	}, nil
}

// Exists reports whether a path exists.
func (m *MockFilesystemManager) Exists(path string) (bool, error) {
	_, ok := m.files[path]
	return ok, nil
}

// EnsureDir creates a directory and any missing parents.
func (m *MockFilesystemManager) EnsureDir(path string) error {
	if f, ok := m.files[path]; ok {
		if !f.IsDirectory {
			return fmt.Errorf("not a directory: %s", path)
		}
		return nil
	}
	m.AddDirectory(path)
	return nil
}

// Move moves src to dst, creating parent directories as needed.
func (m *MockFilesystemManager) Move(src, dst string) error {
	f, ok := m.files[src]
	if !ok {
		return fmt.Errorf("file not found: %s", src)
	}
	if _, ok := m.files[dst]; ok {
		return fmt.Errorf("destination exists: %s", dst)
	}
	m.addParents(dst)
	m.files[dst] = f
	delete(m.files, src)
	return nil
}

// Remove deletes a single file.
func (m *MockFilesystemManager) Remove(path string) error {
	f, ok := m.files[path]
	if !ok {
		return fmt.Errorf("file not found: %s", path)
	}
	if f.IsDirectory {
		return fmt.Errorf("is a directory: %s", path)
	}
	delete(m.files, path)
	return nil
}

// ListDir returns the immediate children of a directory.
func (m *MockFilesystemManager) ListDir(path string) ([]engine.DirEntry, error) {
	d, ok := m.files[path]
	if !ok || !d.IsDirectory {
		return nil, fmt.Errorf("not a directory: %s", path)
	}

	prefix := strings.TrimSuffix(path, "/") + "/"
	seen := make(map[string]bool)
	var out []engine.DirEntry
	for p, f := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		name, _, nested := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, engine.DirEntry{Name: name, IsDir: nested || f.IsDirectory})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// RemoveDir deletes a directory; it fails if the directory is not empty.
func (m *MockFilesystemManager) RemoveDir(path string) error {
	d, ok := m.files[path]
	if !ok {
		return fmt.Errorf("directory not found: %s", path)
	}
	if !d.IsDirectory {
		return fmt.Errorf("not a directory: %s", path)
	}
	entries, err := m.ListDir(path)
	if err != nil {
		return err
	}
	if len(entries) != 0 {
		return fmt.Errorf("directory not empty: %s", path)
	}
	delete(m.files, path)
	return nil
}

// Paths returns every path in the mock filesystem, sorted. Useful for
// asserting the final tree shape in tests.
func (m *MockFilesystemManager) Paths() []string {
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// HasFile reports whether a regular file exists at path.
func (m *MockFilesystemManager) HasFile(path string) bool {
	f, ok := m.files[path]
	return ok && !f.IsDirectory
}

// mockFileInfo implements fs.FileInfo.
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

// Compile-time check
var _ engine.FilesystemManager = (*MockFilesystemManager)(nil)
