package adapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	m "restitch.dev/pkg/restitch/internal/model"
)

// ReportStore persists run reports between invocations so later commands can
// inspect or merge earlier runs.
type ReportStore interface {
	// SaveRun writes one run report into the reports directory, creating
	// the directory when needed.
	SaveRun(dir m.Path, run m.RunReport) error

	// LoadRun returns the run whose ID starts with id. An empty id selects
	// the most recent run.
	LoadRun(dir m.Path, id string) (m.RunReport, error)

	// ListRuns loads every run report in the directory, oldest first.
	ListRuns(dir m.Path) ([]m.RunReport, error)

	// LoadFile reads a single run report from an explicit file path.
	LoadFile(path m.Path) (m.RunReport, error)
}

// LocalReportStore stores run reports as JSON files named after the run's
// start time and ID, so a directory listing sorts chronologically.
type LocalReportStore struct{}

// NewLocalReportStore constructs a LocalReportStore ready to be wired into
// the workflow.
func NewLocalReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

const reportTimeLayout = "20060102T150405Z"

// SaveRun writes the run report into dir as indented JSON.
func (s *LocalReportStore) SaveRun(dir m.Path, run m.RunReport) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("create reports directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.ID, err)
	}

	name := fmt.Sprintf("run-%s-%s.json", run.StartedAt.UTC().Format(reportTimeLayout), shortID(run.ID))
	path := filepath.Join(string(dir), name)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write run report %s: %w", path, err)
	}

	return nil
}

// LoadRun selects a run by ID prefix, or the most recent one when id is
// empty.
func (s *LocalReportStore) LoadRun(dir m.Path, id string) (m.RunReport, error) {
	runs, err := s.ListRuns(dir)
	if err != nil {
		return m.RunReport{}, err
	}

	if len(runs) == 0 {
		return m.RunReport{}, fmt.Errorf("no run reports in %s", dir)
	}

	if id == "" {
		return runs[len(runs)-1], nil
	}

	for _, run := range runs {
		if strings.HasPrefix(run.ID, id) {
			return run, nil
		}
	}

	return m.RunReport{}, fmt.Errorf("no run report matching %q in %s", id, dir)
}

// ListRuns loads every report file in dir, oldest first. Files that do not
// decode are skipped with a warning instead of failing the whole listing.
func (s *LocalReportStore) ListRuns(dir m.Path) ([]m.RunReport, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read reports directory %s: %w", dir, err)
	}

	var runs []m.RunReport

	for _, entry := range entries {
		if entry.IsDir() || !isReportFile(entry.Name()) {
			continue
		}

		run, err := s.LoadFile(m.Path(filepath.Join(string(dir), entry.Name())))
		if err != nil {
			slog.Warn("skipping unreadable run report", "file", entry.Name(), "error", err)
			continue
		}

		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})

	return runs, nil
}

// LoadFile decodes one run report from path.
func (s *LocalReportStore) LoadFile(path m.Path) (m.RunReport, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.RunReport{}, fmt.Errorf("read run report %s: %w", path, err)
	}

	var run m.RunReport
	if err := json.Unmarshal(data, &run); err != nil {
		return m.RunReport{}, fmt.Errorf("decode run report %s: %w", path, err)
	}

	return run, nil
}

func isReportFile(name string) bool {
	return strings.HasPrefix(name, "run-") && strings.HasSuffix(name, ".json")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}
