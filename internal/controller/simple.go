package controller

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "restitch.dev/pkg/restitch/internal/model"
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd    *cobra.Command
	mode   StartMode
	dryRun bool
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{}
	for _, option := range options {
		option(&config)
	}

	s.mode = config.mode

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayRunStart announces the batch before the first unit is processed.
func (s *SimpleUI) DisplayRunStart(ctx context.Context, plan m.Path, totalUnits int, dryRun bool) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.dryRun = dryRun

	verb := "Applying"
	if s.mode == ModeScan {
		verb = "Scanning"
	}

	s.printf("%s plan %s against %d unit(s)\n", verb, plan, totalUnits)

	if dryRun && s.mode != ModeScan {
		s.printf("Dry run: no files will be written\n")
	}
}

// DisplayUnitResult prints one unit's outcome, and in scan mode the span
// detail behind it.
func (s *SimpleUI) DisplayUnitResult(ctx context.Context, report m.UnitReport, showDiff bool) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s %s %s -> %s\n",
		outcomeGlyph(report.Outcome), report.Unit, report.Path, outcomeLabel(report.Outcome, s.dryRun))

	if report.Err != "" {
		s.printf("  error: %s\n", report.Err)
	}

	if s.mode == ModeScan {
		for _, span := range report.Spans {
			s.printf("  line %d [%s] %s%s\n", span.Line, span.Rule, span.Outcome, reasonSuffix(span.Reason))
		}
	}

	if showDiff && report.Diff != "" {
		s.printf("%s\n", report.Diff)
	}
}

// DisplaySummary prints the outcome counts for the whole batch.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\nSummary:\n%s", renderSummaryTable(summary))

	return nil
}

// DisplayRun prints a stored run report with its unit outcomes and summary.
func (s *SimpleUI) DisplayRun(ctx context.Context, run m.RunReport, showDiff bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.dryRun = run.DryRun

	s.printf("Run %s\n", run.ID)
	s.printf("Started: %s\n", run.StartedAt.Format(time.RFC3339))
	s.printf("Plan: %s\n", run.Plan)

	if run.DryRun {
		s.printf("Dry run: no files were written\n")
	}

	s.printf("\n")

	for _, unit := range run.Units {
		s.DisplayUnitResult(ctx, unit, showDiff)
	}

	return s.DisplaySummary(ctx, run.Summarize())
}

func renderSummaryTable(summary m.Summary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Outcome", "Units"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	rows := []struct {
		outcome m.Outcome
		count   int
	}{
		{m.Patched, summary.Patched},
		{m.AlreadyPatched, summary.AlreadyPatched},
		{m.NotFound, summary.NotFound},
		{m.NoMatch, summary.NoMatch},
		{m.MissingFile, summary.MissingFile},
		{m.Failed, summary.Failed},
	}

	for _, row := range rows {
		table.Append([]string{row.outcome.String(), fmt.Sprintf("%d", row.count)})
	}

	table.SetFooter([]string{"total", fmt.Sprintf("%d", summary.Total())})

	table.Render()

	return tableBuffer.String()
}

func outcomeGlyph(outcome m.Outcome) string {
	switch outcome {
	case m.Patched:
		return "✓"
	case m.AlreadyPatched:
		return "="
	case m.NotFound:
		return "?"
	case m.NoMatch:
		return "·"
	case m.MissingFile, m.Failed:
		return "✗"
	default:
		return " "
	}
}

func outcomeLabel(outcome m.Outcome, dryRun bool) string {
	if dryRun && outcome == m.Patched {
		return "would patch"
	}

	switch outcome {
	case m.Patched:
		return "patched"
	case m.AlreadyPatched:
		return "already patched"
	case m.NotFound:
		return "expected form not found"
	case m.NoMatch:
		return "pattern not found"
	case m.MissingFile:
		return "file not found"
	case m.Failed:
		return "failed"
	default:
		return outcome.String()
	}
}

func reasonSuffix(reason string) string {
	if reason == "" {
		return ""
	}

	return " (" + reason + ")"
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
