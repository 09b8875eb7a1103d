package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"restitch.dev/pkg/restitch/internal/adapter"
	"restitch.dev/pkg/restitch/internal/controller"
	m "restitch.dev/pkg/restitch/internal/model"
	"restitch.dev/pkg/restitch/internal/plan"
)

// ApplyArgs configures one batch apply run.
type ApplyArgs struct {
	Plan     plan.Plan
	PlanPath m.Path
	Reports  m.Path
	DryRun   bool
	ShowDiff bool
}

// ScanArgs configures a scan preview run.
type ScanArgs struct {
	Plan     plan.Plan
	PlanPath m.Path
	Reports  m.Path
}

// ViewArgs selects a stored run report to display.
type ViewArgs struct {
	Reports m.Path
	RunID   string
}

// MergeArgs names the run reports to combine. With no explicit inputs every
// run in the reports directory is merged.
type MergeArgs struct {
	Reports m.Path
	Inputs  []m.Path
}

// Workflow is the batch driver. It owns the unit loop, failure isolation and
// the write-back policy, and feeds outcomes to the UI and the report store.
type Workflow interface {
	Apply(ctx context.Context, args ApplyArgs) error
	Scan(ctx context.Context, args ScanArgs) error
	View(ctx context.Context, args ViewArgs) error
	Merge(ctx context.Context, args MergeArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	controller.UI
	Patcher
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	store adapter.ReportStore,
	ui controller.UI,
	patcher Patcher,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ReportStore:     store,
		UI:              ui,
		Patcher:         patcher,
	}
}

// Apply runs the plan against every unit in order, writes changed files back
// unless DryRun is set, and records the run report.
func (w *workflow) Apply(ctx context.Context, args ApplyArgs) error {
	return w.runBatch(ctx, args.Plan, args.PlanPath, args.Reports,
		args.DryRun, args.ShowDiff, controller.WithApplyMode())
}

// Scan runs extraction and matching only: the same unit loop as Apply with
// write-back disabled, reporting what an apply would do span by span.
func (w *workflow) Scan(ctx context.Context, args ScanArgs) error {
	return w.runBatch(ctx, args.Plan, args.PlanPath, args.Reports,
		true, false, controller.WithScanMode())
}

// runBatch is the sequential unit loop shared by Apply and Scan. One unit's
// failure never stops the batch; only context cancellation does, checked
// between units.
func (w *workflow) runBatch(
	ctx context.Context,
	p plan.Plan,
	planPath m.Path,
	reports m.Path,
	dryRun bool,
	showDiff bool,
	options ...controller.StartOption,
) error {
	if err := w.Start(ctx, options...); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	run := m.RunReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Plan:      string(planPath),
		DryRun:    dryRun,
	}

	slog.Info("starting batch run",
		"run", run.ID, "plan", planPath, "units", len(p.Units), "dryRun", dryRun)

	w.DisplayRunStart(ctx, planPath, len(p.Units), dryRun)

	for _, unit := range p.Units {
		if err := ctx.Err(); err != nil {
			slog.Warn("batch interrupted", "run", run.ID, "unit", unit)
			return err
		}

		report := w.processUnit(ctx, unit, p, dryRun)
		run.Units = append(run.Units, report)

		w.DisplayUnitResult(ctx, report, showDiff)
	}

	if err := w.SaveRun(reports, run); err != nil {
		slog.Error("failed to save run report", "run", run.ID, "error", err)
		return fmt.Errorf("save run report: %w", err)
	}

	summary := run.Summarize()
	slog.Info("batch run finished", "run", run.ID, "patched", summary.Patched, "total", summary.Total())

	if err := w.DisplaySummary(ctx, summary); err != nil {
		return err
	}

	w.UI.Wait(ctx)

	return nil
}

// processUnit runs the whole pipeline for one unit and never returns an
// error: failures are folded into the unit's report so the batch can go on.
func (w *workflow) processUnit(ctx context.Context, key string, p plan.Plan, dryRun bool) m.UnitReport {
	path := p.PathFor(key)
	report := m.UnitReport{Unit: key, Path: path}

	info, err := w.FileInfo(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("unit file missing", "unit", key, "path", path)
			report.Outcome = m.MissingFile

			return report
		}

		return w.failUnit(report, fmt.Errorf("stat %s: %w", path, err))
	}

	if info.IsDir() {
		return w.failUnit(report, fmt.Errorf("%s is a directory", path))
	}

	data, err := w.ReadFile(path)
	if err != nil {
		return w.failUnit(report, fmt.Errorf("read %s: %w", path, err))
	}

	unit := m.SourceUnit{Key: key, Path: path, Text: string(data)}

	result, err := w.PatchUnit(ctx, unit, p.Rules, p.Phases)
	if err != nil {
		return w.failUnit(report, err)
	}

	report.Outcome = result.Outcome
	report.Spans = result.Spans

	if !result.Changed {
		return report
	}

	report.Diff = diffCode(path, unit.Text, result.Text)

	if dryRun {
		return report
	}

	if err := w.WriteFile(path, []byte(result.Text), 0o600); err != nil {
		return w.failUnit(report, fmt.Errorf("write %s: %w", path, err))
	}

	return report
}

func (w *workflow) failUnit(report m.UnitReport, err error) m.UnitReport {
	slog.Error("unit failed", "unit", report.Unit, "path", report.Path, "error", err)

	report.Outcome = m.Failed
	report.Err = err.Error()

	return report
}

// View loads a stored run report and displays it. An empty RunID selects the
// most recent run.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	run, err := w.LoadRun(args.Reports, args.RunID)
	if err != nil {
		return fmt.Errorf("load run report: %w", err)
	}

	return w.DisplayRun(ctx, run, true)
}

// Merge combines run reports into one, saves it, and displays the result.
// Explicit input files win over the reports directory.
func (w *workflow) Merge(ctx context.Context, args MergeArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runs, err := w.collectRuns(args)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		return fmt.Errorf("no run reports to merge in %s", args.Reports)
	}

	merged := m.RunReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Plan:      fmt.Sprintf("merge of %d run(s)", len(runs)),
	}

	for _, run := range runs {
		merged.Units = append(merged.Units, run.Units...)
	}

	if err := w.SaveRun(args.Reports, merged); err != nil {
		return fmt.Errorf("save merged report: %w", err)
	}

	slog.Info("merged run reports", "run", merged.ID, "sources", len(runs), "units", len(merged.Units))

	return w.DisplayRun(ctx, merged, false)
}

func (w *workflow) collectRuns(args MergeArgs) ([]m.RunReport, error) {
	if len(args.Inputs) == 0 {
		runs, err := w.ListRuns(args.Reports)
		if err != nil {
			return nil, fmt.Errorf("list run reports: %w", err)
		}

		return runs, nil
	}

	runs := make([]m.RunReport, 0, len(args.Inputs))

	for _, input := range args.Inputs {
		run, err := w.LoadFile(input)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", input, err)
		}

		runs = append(runs, run)
	}

	return runs, nil
}
