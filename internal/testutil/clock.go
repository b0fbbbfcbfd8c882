package testutil

import (
	"fmt"
	"time"
)

// FixedClock is a Clock returning a preset time.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time { return c.Time }

// SequentialIDGenerator produces predictable IDs: "id-1", "id-2", ...
type SequentialIDGenerator struct {
	n int
}

func (g *SequentialIDGenerator) New() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}
