package engine

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Classification is the logical descriptor of a source file: its resolved
// capture time (already rendered in the engine's location), the tag derived
// from its position under the input root, and its lower-cased extension.
type Classification struct {
	Timestamp time.Time
	Tag       string
	Ext       string
}

// Classifier derives a Classification for each enumerated source file.
type Classifier struct {
	inputRoot string
	probe     MetadataProbe
	allowed   map[string]bool
	loc       *time.Location
}

// NewClassifier creates a Classifier. exts is the extension allow-list
// (lower-case, no leading dot); an empty list allows nothing. loc is the
// process-wide location used to render calendar fields.
func NewClassifier(inputRoot string, probe MetadataProbe, exts []string, loc *time.Location) *Classifier {
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[e] = true
	}
	return &Classifier{
		inputRoot: inputRoot,
		probe:     probe,
		allowed:   allowed,
		loc:       loc,
	}
}

// Classify resolves the timestamp and tag for a source file.
// It returns ErrExtensionExcluded or ErrMetadataUnavailable for the two
// non-fatal per-file failures; any other error is an I/O failure.
func (c *Classifier) Classify(src string) (Classification, error) {
	ext := Extension(src)
	if ext == "" || !c.allowed[ext] {
		return Classification{}, fmt.Errorf("%s: %w", src, ErrExtensionExcluded)
	}

	ts, err := c.probe.Resolve(src)
	if err != nil {
		return Classification{}, fmt.Errorf("probing %s: %w", src, err)
	}
	if !ts.Valid {
		return Classification{}, fmt.Errorf("%s: %w", src, ErrMetadataUnavailable)
	}

	return Classification{
		Timestamp: ts.Time.In(c.loc),
		Tag:       InferTag(c.inputRoot, src),
		Ext:       ext,
	}, nil
}

// InferTag derives the tag for a source file from its path relative to the
// input root. A file directly under the root has no tag (empty string);
// otherwise the tag is the name of the first subdirectory component,
// regardless of further nesting depth.
func InferTag(inputRoot, src string) string {
	rel, err := filepath.Rel(inputRoot, src)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return ""
	}
	parts := strings.Split(rel, "/")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

// Extension returns the lower-cased extension of a path without the leading
// dot, or "" if the path has none.
func Extension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// NormalizeExtensions lower-cases extensions and strips leading dots and
// surrounding whitespace. Empty entries are dropped.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
