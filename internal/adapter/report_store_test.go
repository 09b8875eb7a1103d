package adapter

import (
	"path/filepath"
	"testing"
	"time"

	m "restitch.dev/pkg/restitch/internal/model"
)

func sampleRun(id string, started time.Time) m.RunReport {
	return m.RunReport{
		ID:        id,
		StartedAt: started,
		Plan:      "restitch.plan.yaml",
		Units: []m.UnitReport{
			{Unit: "DE", Path: "states/DE/compute.js", Outcome: m.Patched},
		},
	}
}

func TestLocalReportStore_SaveRun(t *testing.T) {
	t.Run("creates the reports directory", func(t *testing.T) {
		store := NewLocalReportStore()
		dir := filepath.Join(t.TempDir(), "reports")

		run := sampleRun("11112222-3333-4444-5555-666677778888", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
		if err := store.SaveRun(m.Path(dir), run); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}

		runs, err := store.ListRuns(m.Path(dir))
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		if runs[0].ID != run.ID {
			t.Fatalf("expected run ID %s, got %s", run.ID, runs[0].ID)
		}
	})

	t.Run("round trips unit outcomes", func(t *testing.T) {
		store := NewLocalReportStore()
		dir := t.TempDir()

		run := sampleRun("round-trip", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
		run.Units[0].Spans = []m.SpanResult{
			{Rule: "tag-diagnostics", Line: 12, Outcome: m.Patched},
		}

		if err := store.SaveRun(m.Path(dir), run); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}

		loaded, err := store.LoadRun(m.Path(dir), "")
		if err != nil {
			t.Fatalf("LoadRun() error = %v", err)
		}
		if loaded.Units[0].Outcome != m.Patched {
			t.Fatalf("expected Patched, got %v", loaded.Units[0].Outcome)
		}
		if len(loaded.Units[0].Spans) != 1 || loaded.Units[0].Spans[0].Rule != "tag-diagnostics" {
			t.Fatalf("span results did not round trip: %+v", loaded.Units[0].Spans)
		}
	})
}

func TestLocalReportStore_LoadRun(t *testing.T) {
	store := NewLocalReportStore()
	dir := t.TempDir()

	older := sampleRun("aaaa0000-0000-0000-0000-000000000000", time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))
	newer := sampleRun("bbbb0000-0000-0000-0000-000000000000", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))

	for _, run := range []m.RunReport{older, newer} {
		if err := store.SaveRun(m.Path(dir), run); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
	}

	t.Run("empty id selects the most recent run", func(t *testing.T) {
		run, err := store.LoadRun(m.Path(dir), "")
		if err != nil {
			t.Fatalf("LoadRun() error = %v", err)
		}
		if run.ID != newer.ID {
			t.Fatalf("expected %s, got %s", newer.ID, run.ID)
		}
	})

	t.Run("id prefix selects a specific run", func(t *testing.T) {
		run, err := store.LoadRun(m.Path(dir), "aaaa")
		if err != nil {
			t.Fatalf("LoadRun() error = %v", err)
		}
		if run.ID != older.ID {
			t.Fatalf("expected %s, got %s", older.ID, run.ID)
		}
	})

	t.Run("unknown id is an error", func(t *testing.T) {
		if _, err := store.LoadRun(m.Path(dir), "ffff"); err == nil {
			t.Fatalf("expected an error for an unknown run id")
		}
	})

	t.Run("empty directory is an error", func(t *testing.T) {
		if _, err := store.LoadRun(m.Path(t.TempDir()), ""); err == nil {
			t.Fatalf("expected an error when no reports exist")
		}
	})
}

func TestLocalReportStore_ListRuns(t *testing.T) {
	t.Run("orders runs oldest first", func(t *testing.T) {
		store := NewLocalReportStore()
		dir := t.TempDir()

		newer := sampleRun("bbbb", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
		older := sampleRun("aaaa", time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))

		for _, run := range []m.RunReport{newer, older} {
			if err := store.SaveRun(m.Path(dir), run); err != nil {
				t.Fatalf("SaveRun() error = %v", err)
			}
		}

		runs, err := store.ListRuns(m.Path(dir))
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].ID != "aaaa" || runs[1].ID != "bbbb" {
			t.Fatalf("unexpected order: %s, %s", runs[0].ID, runs[1].ID)
		}
	})

	t.Run("missing directory lists nothing", func(t *testing.T) {
		store := NewLocalReportStore()

		runs, err := store.ListRuns(m.Path(filepath.Join(t.TempDir(), "absent")))
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 0 {
			t.Fatalf("expected no runs, got %d", len(runs))
		}
	})

	t.Run("skips files that do not decode", func(t *testing.T) {
		store := NewLocalReportStore()
		dir := t.TempDir()

		if err := store.SaveRun(m.Path(dir), sampleRun("good", time.Now().UTC())); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
		writeTestFile(t, filepath.Join(dir, "run-broken.json"), "{ not json")

		runs, err := store.ListRuns(m.Path(dir))
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 1 || runs[0].ID != "good" {
			t.Fatalf("expected only the good run, got %+v", runs)
		}
	})
}

func TestLocalReportStore_LoadFile(t *testing.T) {
	store := NewLocalReportStore()

	if _, err := store.LoadFile(m.Path(filepath.Join(t.TempDir(), "absent.json"))); err == nil {
		t.Fatalf("expected an error for a missing report file")
	}
}
