package domain

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"restitch.dev/pkg/restitch/internal/adapter"
	"restitch.dev/pkg/restitch/internal/controller"
	m "restitch.dev/pkg/restitch/internal/model"
	"restitch.dev/pkg/restitch/internal/plan"
)

func newIntegrationWorkflow(t *testing.T) (Workflow, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	wf := NewWorkflow(
		adapter.NewLocalSourceFSAdapter(),
		adapter.NewLocalReportStore(),
		controller.NewSimpleUI(cmd),
		NewPatcher(),
	)

	return wf, buf
}

func parseIntegrationPlan(t *testing.T, yaml string) plan.Plan {
	t.Helper()

	p, err := plan.Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse plan failed: %v", err)
	}

	return p
}

func TestApplyIntegration(t *testing.T) {
	t.Run("hoist patches one unit and reports the missing one", func(t *testing.T) {
		tempDir := t.TempDir()
		unitPath := filepath.Join(tempDir, "A.js")

		original := "function computeA(input) {\n" +
			"  const taxable = round(input.taxable);\n" +
			"  const result = calc(taxable, A_RULES.brackets[input.status]);\n" +
			"  return result;\n" +
			"}\n"
		if err := os.WriteFile(unitPath, []byte(original), 0o644); err != nil {
			t.Fatalf("write unit file: %v", err)
		}

		planYAML := fmt.Sprintf(`version: 1
target:
  root: "%s"
  path: "{unit}.js"
units: [A, B]
rules:
  - name: hoist-bracket-lookup
    mode: hoist
    call: calc
    assign: result
    table: "{unit}_RULES"
    property: brackets
    key: input.status
    bind: amount
    intermediate: bracketTable
    wrapper: resolveBrackets
`, tempDir)

		wf, buf := newIntegrationWorkflow(t)
		reports := m.Path(filepath.Join(tempDir, "reports"))

		err := wf.Apply(context.Background(), ApplyArgs{
			Plan:     parseIntegrationPlan(t, planYAML),
			PlanPath: "plan.yaml",
			Reports:  reports,
		})
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		patched, err := os.ReadFile(unitPath)
		if err != nil {
			t.Fatalf("read patched file: %v", err)
		}

		want := "function computeA(input) {\n" +
			"  const taxable = round(input.taxable);\n" +
			"  const bracketTable = resolveBrackets(A_RULES.brackets[input.status]);\n" +
			"  const result = calc(taxable, bracketTable);\n" +
			"  return result;\n" +
			"}\n"
		if string(patched) != want {
			t.Errorf("patched file mismatch:\ngot:\n%s\nwant:\n%s", patched, want)
		}

		// The stored run must carry both outcomes.
		store := adapter.NewLocalReportStore()
		run, err := store.LoadRun(reports, "")
		if err != nil {
			t.Fatalf("LoadRun failed: %v", err)
		}

		if len(run.Units) != 2 {
			t.Fatalf("expected 2 unit reports, got %d", len(run.Units))
		}

		if run.Units[0].Outcome != m.Patched {
			t.Errorf("unit A outcome = %s, want %s", run.Units[0].Outcome, m.Patched)
		}

		if run.Units[1].Outcome != m.MissingFile {
			t.Errorf("unit B outcome = %s, want %s", run.Units[1].Outcome, m.MissingFile)
		}

		summary := run.Summarize()
		if summary.Patched != 1 || summary.MissingFile != 1 {
			t.Errorf("summary = %+v, want 1 patched and 1 missing", summary)
		}

		for _, fragment := range []string{"A", "B", "patched", "file not found", "Summary"} {
			if !strings.Contains(buf.String(), fragment) {
				t.Errorf("console output missing %q:\n%s", fragment, buf.String())
			}
		}

		// A second run must leave the bytes alone.
		wf2, _ := newIntegrationWorkflow(t)

		err = wf2.Apply(context.Background(), ApplyArgs{
			Plan:     parseIntegrationPlan(t, planYAML),
			PlanPath: "plan.yaml",
			Reports:  reports,
		})
		if err != nil {
			t.Fatalf("second Apply failed: %v", err)
		}

		again, err := os.ReadFile(unitPath)
		if err != nil {
			t.Fatalf("read file after second run: %v", err)
		}

		if string(again) != want {
			t.Errorf("second run changed bytes:\ngot:\n%s\nwant:\n%s", again, want)
		}
	})

	t.Run("tag inserts the phase field after the code token", func(t *testing.T) {
		tempDir := t.TempDir()
		unitPath := filepath.Join(tempDir, "DE.js")

		original := "const agi = sum(lines);\n" +
			"foo(x, 'CODE-W-001');\n"
		if err := os.WriteFile(unitPath, []byte(original), 0o644); err != nil {
			t.Fatalf("write unit file: %v", err)
		}

		planYAML := fmt.Sprintf(`version: 1
target:
  root: "%s"
  path: "{unit}.js"
units: [DE]
phases:
  - { start: 1, end: 10, label: agi }
rules:
  - name: tag-diagnostics
    mode: tag
    calls: [foo]
    field: phase
    code_pattern: "'[A-Z]+-[EW]-\\d+'"
`, tempDir)

		wf, _ := newIntegrationWorkflow(t)
		reports := m.Path(filepath.Join(tempDir, "reports"))

		err := wf.Apply(context.Background(), ApplyArgs{
			Plan:     parseIntegrationPlan(t, planYAML),
			PlanPath: "plan.yaml",
			Reports:  reports,
		})
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		patched, err := os.ReadFile(unitPath)
		if err != nil {
			t.Fatalf("read patched file: %v", err)
		}

		want := "const agi = sum(lines);\n" +
			"foo(x, 'CODE-W-001', { phase: 'agi' });\n"
		if string(patched) != want {
			t.Errorf("patched file mismatch:\ngot:\n%s\nwant:\n%s", patched, want)
		}
	})

	t.Run("dry run writes nothing but saves a report", func(t *testing.T) {
		tempDir := t.TempDir()
		unitPath := filepath.Join(tempDir, "DE.js")

		original := "pushWarning(x, { code: 'TAX-W-001' });\n"
		if err := os.WriteFile(unitPath, []byte(original), 0o644); err != nil {
			t.Fatalf("write unit file: %v", err)
		}

		planYAML := fmt.Sprintf(`version: 1
target:
  root: "%s"
  path: "{unit}.js"
units: [DE]
phases:
  - { start: 1, end: 10, label: income }
rules:
  - name: tag-diagnostics
    mode: tag
    calls: [pushWarning]
    field: phase
`, tempDir)

		wf, _ := newIntegrationWorkflow(t)
		reports := m.Path(filepath.Join(tempDir, "reports"))

		err := wf.Apply(context.Background(), ApplyArgs{
			Plan:     parseIntegrationPlan(t, planYAML),
			PlanPath: "plan.yaml",
			Reports:  reports,
			DryRun:   true,
		})
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		after, err := os.ReadFile(unitPath)
		if err != nil {
			t.Fatalf("read file: %v", err)
		}

		if string(after) != original {
			t.Errorf("dry run modified the file:\ngot:\n%s\nwant:\n%s", after, original)
		}

		store := adapter.NewLocalReportStore()
		run, err := store.LoadRun(reports, "")
		if err != nil {
			t.Fatalf("LoadRun failed: %v", err)
		}

		if !run.DryRun {
			t.Error("stored run should be marked as dry run")
		}

		if run.Units[0].Outcome != m.Patched {
			t.Errorf("unit outcome = %s, want %s", run.Units[0].Outcome, m.Patched)
		}

		if run.Units[0].Diff == "" {
			t.Error("dry run should still record the diff")
		}
	})
}
