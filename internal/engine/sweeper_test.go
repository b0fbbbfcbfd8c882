package engine_test

import (
	"testing"

	"mecla-go/internal/engine"
	"mecla-go/internal/testutil"
)

func TestSweeper_Sweep(t *testing.T) {
	exts := []string{"jpg", "mp4"}

	t.Run("removes a media-empty directory", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory("/in/trip")
		s := engine.NewSweeper(fsmgr, engine.NewNopLogger(), exts, false)

		if got := s.Sweep([]string{"/in/trip"}); got != 1 {
			t.Errorf("Sweep() = %d, want 1", got)
		}
		if exists, _ := fsmgr.Exists("/in/trip"); exists {
			t.Error("directory still exists after sweep")
		}
	})

	t.Run("removes nested empty subdirectories first", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory("/in/trip/day1/cam")
		fsmgr.AddDirectory("/in/trip/day2")
		s := engine.NewSweeper(fsmgr, engine.NewNopLogger(), exts, false)

		if got := s.Sweep([]string{"/in/trip"}); got != 1 {
			t.Errorf("Sweep() = %d, want 1", got)
		}
		if exists, _ := fsmgr.Exists("/in/trip"); exists {
			t.Error("directory still exists after sweep")
		}
	})

	t.Run("keeps a directory with media", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/in/trip/a.jpg", []byte("x"))
		s := engine.NewSweeper(fsmgr, engine.NewNopLogger(), exts, false)

		if got := s.Sweep([]string{"/in/trip"}); got != 0 {
			t.Errorf("Sweep() = %d, want 0", got)
		}
		if !fsmgr.HasFile("/in/trip/a.jpg") {
			t.Error("media file was removed")
		}
	})

	t.Run("keeps a directory with media deep in a subtree", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/in/trip/day2/cam/b.mp4", []byte("x"))
		s := engine.NewSweeper(fsmgr, engine.NewNopLogger(), exts, false)

		if got := s.Sweep([]string{"/in/trip"}); got != 0 {
			t.Errorf("Sweep() = %d, want 0", got)
		}
	})

	t.Run("keeps a directory holding only non-media files", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/in/trip/notes.txt", []byte("x"))
		s := engine.NewSweeper(fsmgr, engine.NewNopLogger(), exts, false)

		if got := s.Sweep([]string{"/in/trip"}); got != 0 {
			t.Errorf("Sweep() = %d, want 0", got)
		}
		if !fsmgr.HasFile("/in/trip/notes.txt") {
			t.Error("non-media file was removed")
		}
	})

	t.Run("skips missing candidates", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		s := engine.NewSweeper(fsmgr, engine.NewNopLogger(), exts, false)

		if got := s.Sweep([]string{"/in/gone"}); got != 0 {
			t.Errorf("Sweep() = %d, want 0", got)
		}
	})

	t.Run("dry-run counts without removing", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory("/in/trip")
		s := engine.NewSweeper(fsmgr, engine.NewNopLogger(), exts, true)

		if got := s.Sweep([]string{"/in/trip"}); got != 1 {
			t.Errorf("Sweep() = %d, want 1", got)
		}
		if exists, _ := fsmgr.Exists("/in/trip"); !exists {
			t.Error("dry-run removed the directory")
		}
	})
}
