package database

import (
	"fmt"
	"path/filepath"

	"mecla-go/internal/config"
	"mecla-go/internal/engine"
)

// NewJournalFromConfig creates a Journal implementation based on the
// database config type.
func NewJournalFromConfig(cfg config.DatabaseConfig) (engine.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		return NewSQLiteJournal(filepath.Join(cfg.DataDir, "journal.db"))
	case "memory":
		return NewSQLiteJournal(":memory:")
	case "none":
		return engine.NewNopJournal(), nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
