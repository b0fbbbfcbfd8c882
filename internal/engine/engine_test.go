package engine_test

import (
	"path/filepath"
	"testing"
	"time"

	"mecla-go/internal/engine"
	"mecla-go/internal/testutil"
)

var (
	t1 = time.Date(2025, 7, 23, 8, 54, 4, 0, time.UTC)
	t2 = time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
)

// archiveFixture builds the standard test corpus: a plain move, an exact
// duplicate, a same-second collision, a tagged file, an excluded extension
// and a file without a resolvable timestamp.
func archiveFixture() (*testutil.MockFilesystemManager, *testutil.FixedProbe) {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddFile("/in/a.jpg", []byte("AAA"))
	fsmgr.AddFile("/in/b.jpg", []byte("AAA"))
	fsmgr.AddFile("/in/c.jpg", []byte("CCC"))
	fsmgr.AddFile("/in/nometa.jpg", []byte("NNN"))
	fsmgr.AddFile("/in/skip.txt", []byte("text"))
	fsmgr.AddFile("/in/trip/d.jpg", []byte("DDD"))

	probe := testutil.NewFixedProbe()
	probe.Set("/in/a.jpg", t1)
	probe.Set("/in/b.jpg", t1)
	probe.Set("/in/c.jpg", t1)
	probe.Set("/in/trip/d.jpg", t2)
	return fsmgr, probe
}

func newTestEngine(fsmgr *testutil.MockFilesystemManager, probe *testutil.FixedProbe, journal engine.Journal, dryRun bool) *engine.Engine {
	opts := engine.Options{
		InputRoot:  "/in",
		OutputRoot: "/out",
		DryRun:     dryRun,
		Extensions: []string{"jpg", "mp4"},
		Location:   time.UTC,
	}
	return engine.New(opts, fsmgr, probe,
		journal,
		engine.NewNopLogger(),
		testutil.FixedClock{Time: t2},
		&testutil.SequentialIDGenerator{})
}

func TestEngine_Run(t *testing.T) {
	fsmgr, probe := archiveFixture()
	eng := newTestEngine(fsmgr, probe, engine.NewNopJournal(), false)

	res, err := eng.Run(nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := engine.Stats{Processed: 6, Moved: 2, Duplicates: 1, Renamed: 1, Unresolved: 2}
	if res.Stats != want {
		t.Errorf("Stats = %+v, want %+v", res.Stats, want)
	}

	canonical := filepath.Join("/out", "2025", "07", "2025-07-23 08.54.04.jpg")
	suffixed := filepath.Join("/out", "2025", "07", "2025-07-23 08.54.04 "+token([]byte("CCC"), 8)+".jpg")
	tagged := filepath.Join("/out", "2025", "08 trip", "2025-08-10 12.00.00.jpg")

	for _, p := range []string{canonical, suffixed, tagged} {
		if !fsmgr.HasFile(p) {
			t.Errorf("expected file %q in output tree", p)
		}
	}

	// The duplicate's source is deleted, the unresolved sources stay put.
	if fsmgr.HasFile("/in/b.jpg") {
		t.Error("duplicate source /in/b.jpg was not deleted")
	}
	for _, p := range []string{"/in/nometa.jpg", "/in/skip.txt"} {
		if !fsmgr.HasFile(p) {
			t.Errorf("unresolved source %q was touched", p)
		}
	}

	// The tag directory was drained and swept.
	if exists, _ := fsmgr.Exists("/in/trip"); exists {
		t.Error("drained tag directory /in/trip was not removed")
	}
	if res.PrunedDirs != 1 {
		t.Errorf("PrunedDirs = %d, want 1", res.PrunedDirs)
	}
}

func TestEngine_Run_ActionDetails(t *testing.T) {
	fsmgr, probe := archiveFixture()
	eng := newTestEngine(fsmgr, probe, engine.NewNopJournal(), false)

	res, err := eng.Run(nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	bySource := make(map[string]engine.PlannedAction)
	for _, act := range res.Actions {
		bySource[act.Source] = act
	}

	tests := []struct {
		source string
		kind   engine.ActionKind
		reason engine.UnresolvedReason
	}{
		{"/in/a.jpg", engine.ActionMove, engine.ReasonNone},
		{"/in/b.jpg", engine.ActionSkipDuplicate, engine.ReasonNone},
		{"/in/c.jpg", engine.ActionRenameWithSuffix, engine.ReasonNone},
		{"/in/trip/d.jpg", engine.ActionMove, engine.ReasonNone},
		{"/in/skip.txt", engine.ActionUnresolved, engine.ReasonExtensionExcluded},
		{"/in/nometa.jpg", engine.ActionUnresolved, engine.ReasonMetadataUnavailable},
	}
	for _, tt := range tests {
		act, ok := bySource[tt.source]
		if !ok {
			t.Errorf("no action recorded for %s", tt.source)
			continue
		}
		if act.Kind != tt.kind {
			t.Errorf("%s: Kind = %v, want %v", tt.source, act.Kind, tt.kind)
		}
		if act.Reason != tt.reason {
			t.Errorf("%s: Reason = %q, want %q", tt.source, act.Reason, tt.reason)
		}
	}

	if act := bySource["/in/trip/d.jpg"]; act.Tag != "trip" {
		t.Errorf("tagged action Tag = %q, want %q", act.Tag, "trip")
	}
}

func TestEngine_Run_TargetsAreUnique(t *testing.T) {
	fsmgr, probe := archiveFixture()
	eng := newTestEngine(fsmgr, probe, engine.NewNopJournal(), false)

	res, err := eng.Run(nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	seen := make(map[string]string)
	for _, act := range res.Actions {
		if act.Kind != engine.ActionMove && act.Kind != engine.ActionRenameWithSuffix {
			continue
		}
		if prev, ok := seen[act.Target]; ok {
			t.Errorf("target %q written by both %s and %s", act.Target, prev, act.Source)
		}
		seen[act.Target] = act.Source
	}
}

func TestEngine_Run_DryRun(t *testing.T) {
	t.Run("performs no mutation", func(t *testing.T) {
		fsmgr, probe := archiveFixture()
		before := fsmgr.Paths()

		eng := newTestEngine(fsmgr, probe, engine.NewNopJournal(), true)
		if _, err := eng.Run(nil); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		after := fsmgr.Paths()
		if len(before) != len(after) {
			t.Fatalf("dry run changed the tree: %d paths before, %d after", len(before), len(after))
		}
		for i := range before {
			if before[i] != after[i] {
				t.Errorf("dry run changed the tree: %q vs %q", before[i], after[i])
			}
		}
	})

	t.Run("plans the same actions as a real run", func(t *testing.T) {
		dryFS, dryProbe := archiveFixture()
		realFS, realProbe := archiveFixture()

		dryRes, err := newTestEngine(dryFS, dryProbe, engine.NewNopJournal(), true).Run(nil)
		if err != nil {
			t.Fatalf("dry Run() error = %v", err)
		}
		realRes, err := newTestEngine(realFS, realProbe, engine.NewNopJournal(), false).Run(nil)
		if err != nil {
			t.Fatalf("real Run() error = %v", err)
		}

		if len(dryRes.Actions) != len(realRes.Actions) {
			t.Fatalf("action counts differ: %d dry, %d real", len(dryRes.Actions), len(realRes.Actions))
		}
		for i := range dryRes.Actions {
			d, r := dryRes.Actions[i], realRes.Actions[i]
			if d.Kind != r.Kind || d.Source != r.Source || d.Target != r.Target || d.Reason != r.Reason {
				t.Errorf("action %d differs: dry %+v, real %+v", i, d, r)
			}
		}
	})
}

func TestEngine_Run_RecordsJournal(t *testing.T) {
	fsmgr, probe := archiveFixture()
	journal := testutil.NewTestJournal(t)
	eng := newTestEngine(fsmgr, probe, journal, false)

	res, err := eng.Run(nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.RunID != "id-1" {
		t.Errorf("RunID = %q, want %q", res.RunID, "id-1")
	}

	runs, err := journal.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns() returned %d runs, want 1", len(runs))
	}
	if runs[0].Status != "success" {
		t.Errorf("Status = %q, want %q", runs[0].Status, "success")
	}
	if !runs[0].FinishedAt.Valid {
		t.Error("FinishedAt not set")
	}

	decisions, err := journal.ListDecisions(res.RunID)
	if err != nil {
		t.Fatalf("ListDecisions() error = %v", err)
	}
	if len(decisions) != 6 {
		t.Fatalf("ListDecisions() returned %d records, want 6", len(decisions))
	}
	if decisions[0].SourcePath != "/in/a.jpg" || decisions[0].Action != "move" {
		t.Errorf("first decision = %+v", decisions[0])
	}
}

func TestEngine_Run_EnvironmentFailures(t *testing.T) {
	t.Run("missing input root", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		eng := newTestEngine(fsmgr, testutil.NewFixedProbe(), engine.NewNopJournal(), false)
		if _, err := eng.Run(nil); err == nil {
			t.Error("Run() expected error for missing input root")
		}
	})

	t.Run("input root is a file", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/in", []byte("x"))
		eng := newTestEngine(fsmgr, testutil.NewFixedProbe(), engine.NewNopJournal(), false)
		if _, err := eng.Run(nil); err == nil {
			t.Error("Run() expected error for non-directory input root")
		}
	})
}

func TestEngine_Run_Progress(t *testing.T) {
	fsmgr, probe := archiveFixture()
	eng := newTestEngine(fsmgr, probe, engine.NewNopJournal(), true)

	var calls int
	var lastDone, lastTotal int
	_, err := eng.Run(func(done, total int) {
		calls++
		lastDone, lastTotal = done, total
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls != 6 {
		t.Errorf("progress called %d times, want 6", calls)
	}
	if lastDone != 6 || lastTotal != 6 {
		t.Errorf("final progress = %d/%d, want 6/6", lastDone, lastTotal)
	}
}

func TestEngine_Run_SameSecondBurst(t *testing.T) {
	// A camera burst: five distinct photos in the same second all land in the
	// archive under distinct names, re-runnable to the same layout.
	fsmgr := testutil.NewMockFilesystemManager()
	probe := testutil.NewFixedProbe()
	contents := []string{"p0", "p1", "p2", "p3", "p4"}
	for i, c := range contents {
		path := filepath.Join("/in", "burst"+string(rune('a'+i))+".jpg")
		fsmgr.AddFile(path, []byte(c))
		probe.Set(path, t1)
	}

	eng := newTestEngine(fsmgr, probe, engine.NewNopJournal(), false)
	res, err := eng.Run(nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Stats.Moved != 1 || res.Stats.Renamed != 4 {
		t.Errorf("Stats = %+v, want 1 move and 4 renames", res.Stats)
	}

	// Second pass over identical copies: everything is now a duplicate.
	for i, c := range contents {
		path := filepath.Join("/in", "again"+string(rune('a'+i))+".jpg")
		fsmgr.AddFile(path, []byte(c))
		probe.Set(path, t1)
	}
	res2, err := newTestEngine(fsmgr, probe, engine.NewNopJournal(), false).Run(nil)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if res2.Stats.Duplicates != 5 {
		t.Errorf("second pass Duplicates = %d, want 5", res2.Stats.Duplicates)
	}
}
