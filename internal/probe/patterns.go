package probe

import (
	"path/filepath"
	"regexp"
	"time"
)

// datePatterns recognize timestamps embedded in camera filenames. Patterns
// are tried in order; the first match that parses wins. Layout strings use
// Go's reference time.
var datePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	// Archive canonical names: 2025-07-23 08.54.04.jpg (keeps re-runs over
	// already-classified files stable).
	{regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}\.\d{2}\.\d{2})`), "2006-01-02 15.04.05"},

	// DJI drone: DJI_20250619224111_0001_D.MP4
	{regexp.MustCompile(`DJI_(\d{14})`), "20060102150405"},

	// Generic timestamp: IMG_20250619_123456.jpg
	{regexp.MustCompile(`(\d{8}_\d{6})`), "20060102_150405"},

	// ISO date without time: 2025-06-19_photo.jpg
	{regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`), "2006-01-02"},
}

// FromFilename extracts a timestamp from recognizable date patterns in the
// file's base name.
func FromFilename(path string, loc *time.Location) (time.Time, bool) {
	name := filepath.Base(path)
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		t, err := time.ParseInLocation(p.layout, m[1], loc)
		if err != nil {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}
