package testutil

import (
	"testing"

	"mecla-go/internal/database"
)

// NewTestJournal creates an in-memory SQLite journal, migrated to the
// latest schema, and closes it when the test finishes.
func NewTestJournal(t *testing.T) *database.SQLiteJournal {
	t.Helper()
	j, err := database.NewSQLiteJournal(":memory:")
	if err != nil {
		t.Fatalf("creating test journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}
