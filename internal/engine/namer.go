package engine

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Naming is pure and deterministic: the same timestamp, tag and extension
// always produce the same target directory and filename. The output layout
// is output_root/YYYY/MM for untagged files and output_root/YYYY/"MM <tag>"
// for tagged files; filenames are "YYYY-MM-DD HH.MM.SS.<ext>".

// TargetDir returns the destination directory for a timestamp and tag.
func TargetDir(outputRoot string, t time.Time, tag string) string {
	year := fmt.Sprintf("%04d", t.Year())
	month := fmt.Sprintf("%02d", int(t.Month()))

	tag = strings.TrimSpace(tag)
	if tag != "" {
		month = month + " " + tag
	}
	return filepath.Join(outputRoot, year, month)
}

// CanonicalName returns the timestamp-derived base filename.
func CanonicalName(t time.Time, ext string) string {
	return fmt.Sprintf("%04d-%02d-%02d %02d.%02d.%02d.%s",
		t.Year(), int(t.Month()), t.Day(),
		t.Hour(), t.Minute(), t.Second(), ext)
}

// SuffixedName returns the base filename with a disambiguation token
// inserted before the extension, separated by a single space.
func SuffixedName(t time.Time, token, ext string) string {
	return fmt.Sprintf("%04d-%02d-%02d %02d.%02d.%02d %s.%s",
		t.Year(), int(t.Month()), t.Day(),
		t.Hour(), t.Minute(), t.Second(), token, ext)
}
