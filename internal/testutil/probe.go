package testutil

import (
	"time"

	"mecla-go/internal/engine"
)

// FixedProbe is a MetadataProbe returning preset timestamps. Paths without
// an entry resolve to an invalid (absent) Timestamp.
type FixedProbe struct {
	Times  map[string]time.Time
	Errors map[string]error
}

// NewFixedProbe creates an empty FixedProbe.
func NewFixedProbe() *FixedProbe {
	return &FixedProbe{
		Times:  make(map[string]time.Time),
		Errors: make(map[string]error),
	}
}

// Set assigns the timestamp resolved for a path.
func (p *FixedProbe) Set(path string, t time.Time) {
	p.Times[path] = t
}

// Fail makes Resolve return err for a path, simulating an I/O failure.
func (p *FixedProbe) Fail(path string, err error) {
	p.Errors[path] = err
}

func (p *FixedProbe) Resolve(path string) (engine.Timestamp, error) {
	if err, ok := p.Errors[path]; ok {
		return engine.Timestamp{}, err
	}
	if t, ok := p.Times[path]; ok {
		return engine.Timestamp{Time: t, Valid: true}, nil
	}
	return engine.Timestamp{}, nil
}

// Compile-time check
var _ engine.MetadataProbe = (*FixedProbe)(nil)
