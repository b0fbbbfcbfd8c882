package database_test

import (
	"os"
	"path/filepath"
	"testing"

	"mecla-go/internal/config"
	"mecla-go/internal/database"
	"mecla-go/internal/engine"
)

func TestNewJournalFromConfig(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		dir := t.TempDir()
		j, err := database.NewJournalFromConfig(config.DatabaseConfig{Type: "sqlite", DataDir: dir})
		if err != nil {
			t.Fatalf("NewJournalFromConfig() error = %v", err)
		}
		defer j.Close()

		if _, err := os.Stat(filepath.Join(dir, "journal.db")); err != nil {
			t.Errorf("journal.db not created: %v", err)
		}
	})

	t.Run("sqlite requires data_dir", func(t *testing.T) {
		if _, err := database.NewJournalFromConfig(config.DatabaseConfig{Type: "sqlite"}); err == nil {
			t.Error("expected error for missing data_dir")
		}
	})

	t.Run("memory", func(t *testing.T) {
		j, err := database.NewJournalFromConfig(config.DatabaseConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewJournalFromConfig() error = %v", err)
		}
		defer j.Close()

		if _, ok := j.(*database.SQLiteJournal); !ok {
			t.Errorf("journal type = %T, want *SQLiteJournal", j)
		}
	})

	t.Run("none", func(t *testing.T) {
		j, err := database.NewJournalFromConfig(config.DatabaseConfig{Type: "none"})
		if err != nil {
			t.Fatalf("NewJournalFromConfig() error = %v", err)
		}
		if _, ok := j.(*engine.NopJournal); !ok {
			t.Errorf("journal type = %T, want *NopJournal", j)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := database.NewJournalFromConfig(config.DatabaseConfig{Type: "postgres"}); err == nil {
			t.Error("expected error for unknown database type")
		}
	})
}
