// Package probe resolves capture timestamps for media files. It tries EXIF
// metadata first, then recognizable date patterns in the filename, then
// (optionally) the file's modification time. A file that yields no timestamp
// is a normal outcome, reported as an invalid engine.Timestamp rather than
// an error.
package probe

import (
	"fmt"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"mecla-go/internal/engine"
)

// exifDateLayout is the timestamp format EXIF stores in its date tags.
const exifDateLayout = "2006:01:02 15:04:05"

// exifDateTags are tried in order; the first parseable value wins.
var exifDateTags = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

// Prober implements engine.MetadataProbe.
type Prober struct {
	fsmgr    engine.FilesystemManager
	loc      *time.Location
	useMtime bool
}

// New creates a Prober. loc is the location naive timestamps (EXIF values,
// filename dates) are interpreted in. useMtimeFallback enables falling back
// to the file's modification time when no metadata date is found.
func New(fsmgr engine.FilesystemManager, loc *time.Location, useMtimeFallback bool) *Prober {
	if loc == nil {
		loc = time.Local
	}
	return &Prober{
		fsmgr:    fsmgr,
		loc:      loc,
		useMtime: useMtimeFallback,
	}
}

// Resolve returns the capture timestamp for a media file, or an invalid
// Timestamp if none can be determined. Errors are reserved for I/O failures.
func (p *Prober) Resolve(path string) (engine.Timestamp, error) {
	if t, ok := p.fromEXIF(path); ok {
		return engine.Timestamp{Time: t, Valid: true}, nil
	}
	if t, ok := FromFilename(path, p.loc); ok {
		return engine.Timestamp{Time: t, Valid: true}, nil
	}
	if p.useMtime {
		info, err := p.fsmgr.Stat(path)
		if err != nil {
			return engine.Timestamp{}, fmt.Errorf("stat %s: %w", path, err)
		}
		return engine.Timestamp{Time: info.ModTime(), Valid: true}, nil
	}
	return engine.Timestamp{}, nil
}

// fromEXIF extracts a date from EXIF metadata. Files without EXIF (videos,
// PNGs, corrupt headers) simply report !ok.
func (p *Prober) fromEXIF(path string) (time.Time, bool) {
	r, err := p.fsmgr.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer r.Close()

	x, err := exif.Decode(r)
	if err != nil {
		return time.Time{}, false
	}

	for _, tag := range exifDateTags {
		field, err := x.Get(tag)
		if err != nil {
			continue
		}
		raw, err := field.StringVal()
		if err != nil {
			continue
		}
		t, err := time.ParseInLocation(exifDateLayout, raw, p.loc)
		if err != nil {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

// Compile-time check that Prober implements the engine interface.
var _ engine.MetadataProbe = (*Prober)(nil)
