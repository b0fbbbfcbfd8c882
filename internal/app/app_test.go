package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"mecla-go/internal/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	base := t.TempDir()
	cfg := config.NewConfig(base)
	cfg.Database.Type = "memory"
	cfg.Timezone = "UTC"

	a, err := NewApp(cfg, "Run", slog.LevelError)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestApp_Run(t *testing.T) {
	a := newTestApp(t)

	input := t.TempDir()
	output := t.TempDir()
	src := filepath.Join(input, "trip", "IMG_20250619_123456.jpg")
	if err := os.MkdirAll(filepath.Dir(src), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(src, []byte("photo"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := a.Run(RunParams{Input: input, Output: output}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Stats.Moved != 1 {
		t.Fatalf("Stats = %+v, want 1 move", res.Stats)
	}

	want := filepath.Join(output, "2025", "06 trip", "2025-06-19 12.34.56.jpg")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected %q in output tree: %v", want, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source still exists after move")
	}
	if _, err := os.Stat(filepath.Join(input, "trip")); !os.IsNotExist(err) {
		t.Error("drained tag directory was not swept")
	}

	// The run is visible through the journal.
	runs, err := a.History(10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(runs) != 1 || runs[0].Status != "success" {
		t.Errorf("History() = %+v", runs)
	}
	decisions, err := a.Report(res.RunID)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(decisions) != 1 || decisions[0].Action != "move" {
		t.Errorf("Report() = %+v", decisions)
	}
}

func TestApp_Run_RejectsOutputInsideInput(t *testing.T) {
	a := newTestApp(t)

	input := t.TempDir()
	if _, err := a.Run(RunParams{Input: input, Output: filepath.Join(input, "out")}, nil); err == nil {
		t.Error("Run() expected error for output inside input")
	}
}

func TestValidateRoots(t *testing.T) {
	input := t.TempDir()

	tests := []struct {
		name    string
		output  string
		wantErr bool
	}{
		{"sibling output", filepath.Join(filepath.Dir(input), "sibling-out"), false},
		{"output equals input", input, true},
		{"output inside input", filepath.Join(input, "nested"), true},
		{"output is parent of input", filepath.Dir(input), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRoots(input, tt.output)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRoots(%q, %q) error = %v, wantErr %v", input, tt.output, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRoots_MissingInput(t *testing.T) {
	if err := validateRoots(filepath.Join(t.TempDir(), "gone"), t.TempDir()); err == nil {
		t.Error("validateRoots() expected error for missing input")
	}
}
