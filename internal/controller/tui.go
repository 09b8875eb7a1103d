package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	m "restitch.dev/pkg/restitch/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Border(lipgloss.DoubleBorder()).Padding(0, 2)
	mutedStyle = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("240"))
	helpStyle  = lipgloss.NewStyle().Faint(true)

	patchedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output  io.Writer
	program *tea.Program
	group   *errgroup.Group
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the live batch view in the background. Display calls feed
// it messages until Wait observes the user closing it.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{}
	for _, option := range options {
		option(&config)
	}

	model := newRunModel(config.mode)

	// Get initial terminal size
	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.height = height
			model.width = width
			model.progress.Width = progressWidth(width)
		}
	}

	p.program = tea.NewProgram(model, tea.WithOutput(p.output))
	p.group = new(errgroup.Group)
	p.group.Go(func() error {
		_, err := p.program.Run()
		return err
	})

	return nil
}

// Close shuts the live view down without waiting for the user.
func (p *TUI) Close(ctx context.Context) {
	if p.program != nil {
		p.program.Quit()
	}
}

// Wait blocks until the user dismisses the live view.
func (p *TUI) Wait(ctx context.Context) {
	if p.group == nil {
		return
	}

	if err := p.group.Wait(); err != nil {
		slog.Warn("tui terminated with error", "error", err)
	}
}

// DisplayRunStart announces the batch before the first unit is processed.
func (p *TUI) DisplayRunStart(ctx context.Context, plan m.Path, totalUnits int, dryRun bool) {
	if err := ctx.Err(); err != nil {
		return
	}

	p.send(runStartMsg{plan: string(plan), total: totalUnits, dryRun: dryRun})
}

// DisplayUnitResult feeds one unit's outcome into the live view.
func (p *TUI) DisplayUnitResult(ctx context.Context, report m.UnitReport, showDiff bool) {
	if err := ctx.Err(); err != nil {
		return
	}

	p.send(unitResultMsg{report: report, showDiff: showDiff})
}

// DisplaySummary feeds the final counts into the live view. The view stays
// open until the user quits.
func (p *TUI) DisplaySummary(ctx context.Context, summary m.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.send(summaryMsg{summary: summary})

	return nil
}

func (p *TUI) send(msg tea.Msg) {
	if p.program != nil {
		p.program.Send(msg)
	}
}

// DisplayRun shows a stored run report in a scrollable pager.
func (p *TUI) DisplayRun(ctx context.Context, run m.RunReport, showDiff bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newRunPagerModel(run, showDiff)

	// Get initial terminal size
	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.height = height
			model.width = width
		}
	}

	// If the report is small, just print and exit
	if !model.needsPagination() {
		_, err := fmt.Fprint(p.output, model.View())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

type runStartMsg struct {
	plan   string
	total  int
	dryRun bool
}

type unitResultMsg struct {
	report   m.UnitReport
	showDiff bool
}

type summaryMsg struct {
	summary m.Summary
}

// runModel is the Bubble Tea model for the live batch view: a progress bar
// over the unit loop with a tail of recent outcomes.
type runModel struct {
	mode     StartMode
	plan     string
	total    int
	dryRun   bool
	done     int
	lines    []string
	summary  *m.Summary
	progress progress.Model
	height   int
	width    int
	quitting bool
}

func newRunModel(mode StartMode) runModel {
	return runModel{
		mode:     mode,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (rm runModel) Init() tea.Cmd {
	return nil
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.height = msg.Height
		rm.width = msg.Width
		rm.progress.Width = progressWidth(msg.Width)

		return rm, nil

	case tea.KeyMsg:
		return rm.handleKeyPress(msg)

	case runStartMsg:
		rm.plan = msg.plan
		rm.total = msg.total
		rm.dryRun = msg.dryRun

		return rm, nil

	case unitResultMsg:
		rm.done++
		rm.lines = append(rm.lines, renderUnitLines(msg.report, msg.showDiff, rm.mode == ModeScan, rm.dryRun)...)

		return rm, rm.progress.SetPercent(rm.percent())

	case summaryMsg:
		rm.summary = &msg.summary

		return rm, nil

	case progress.FrameMsg:
		model, cmd := rm.progress.Update(msg)
		if pm, ok := model.(progress.Model); ok {
			rm.progress = pm
		}

		return rm, cmd
	}

	return rm, nil
}

func (rm runModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // We only handle quit keys in the live view
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		rm.quitting = true
		return rm, tea.Quit
	default:
		// Handle other key types in the string switch below
	}

	if msg.String() == "q" {
		rm.quitting = true
		return rm, tea.Quit
	}

	return rm, nil
}

func (rm runModel) percent() float64 {
	if rm.total == 0 {
		return 0
	}

	return float64(rm.done) / float64(rm.total)
}

// tailSize calculates how many outcome lines fit under the header.
func (rm runModel) tailSize() int {
	if rm.height == 0 {
		return 10 // Default
	}

	// Reserve space for:
	// - Title box: 3 lines
	// - Plan line + empty: 2 lines
	// - Progress + counter: 2 lines
	// - Summary block: 9 lines
	// - Help: 1 line
	reserved := 17

	available := rm.height - reserved
	if available < 1 {
		return 1
	}

	return available
}

func (rm runModel) View() string {
	var b strings.Builder

	verb := "apply"
	if rm.mode == ModeScan {
		verb = "scan"
	}

	b.WriteString(titleStyle.Render("Restitch - Source Patcher"))
	b.WriteString("\n")

	if rm.plan != "" {
		fmt.Fprintf(&b, "  plan: %s (%s", rm.plan, verb)

		if rm.dryRun && rm.mode != ModeScan {
			b.WriteString(", dry run")
		}

		b.WriteString(")\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %d/%d units\n\n", rm.progress.View(), rm.done, rm.total)

	lines := rm.lines
	if tail := rm.tailSize(); len(lines) > tail {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf("  ... %d earlier line(s)", len(lines)-tail)))
		lines = lines[len(lines)-tail:]
	}

	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if rm.summary != nil {
		for _, line := range renderSummaryLines(*rm.summary) {
			b.WriteString(line)
			b.WriteString("\n")
		}

		b.WriteString(helpStyle.Render("  q: quit"))
		b.WriteString("\n")
	}

	return b.String()
}

// runPagerModel is the Bubble Tea model for browsing a stored run report.
type runPagerModel struct {
	lines    []string
	height   int
	width    int
	offset   int
	quitting bool
}

func newRunPagerModel(run m.RunReport, showDiff bool) runPagerModel {
	return runPagerModel{lines: renderRunLines(run, showDiff)}
}

func (rpm runPagerModel) Init() tea.Cmd {
	return nil
}

func (rpm runPagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rpm.height = msg.Height
		rpm.width = msg.Width

		return rpm, nil

	case tea.KeyMsg:
		return rpm.handleKeyPress(msg)
	}

	return rpm, nil
}

func (rpm runPagerModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // We only handle specific navigation keys
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		rpm.quitting = true
		return rpm, tea.Quit
	default:
		// Handle other key types in the string switch below
	}

	switch msg.String() {
	case "q":
		rpm.quitting = true
		return rpm, tea.Quit

	case "down", "j":
		return rpm.scrollDown(), nil

	case "up", "k":
		return rpm.scrollUp(), nil

	case "g", "home":
		rpm.offset = 0
		return rpm, nil

	case "G", "end":
		rpm.offset = rpm.maxOffset()
		return rpm, nil

	case "d", "pgdown":
		return rpm.scrollPageDown(), nil

	case "u", "pgup":
		return rpm.scrollPageUp(), nil
	}

	return rpm, nil
}

func (rpm runPagerModel) scrollDown() runPagerModel {
	rpm.offset++

	maxOffset := rpm.maxOffset()
	if rpm.offset > maxOffset {
		rpm.offset = maxOffset
	}

	return rpm
}

func (rpm runPagerModel) scrollUp() runPagerModel {
	rpm.offset--
	if rpm.offset < 0 {
		rpm.offset = 0
	}

	return rpm
}

func (rpm runPagerModel) scrollPageDown() runPagerModel {
	rpm.offset += rpm.itemsPerPage()

	maxOffset := rpm.maxOffset()
	if rpm.offset > maxOffset {
		rpm.offset = maxOffset
	}

	return rpm
}

func (rpm runPagerModel) scrollPageUp() runPagerModel {
	rpm.offset -= rpm.itemsPerPage()
	if rpm.offset < 0 {
		rpm.offset = 0
	}

	return rpm
}

// itemsPerPage calculates how many report lines fit on screen.
func (rpm runPagerModel) itemsPerPage() int {
	if rpm.height == 0 {
		return 10 // Default
	}

	// Reserve space for:
	// - Title box: 3 lines
	// - Top margin: 1 line
	// - Footer: 3 lines (empty + page + help)
	reserved := 7

	available := rpm.height - reserved
	if available < 1 {
		return 1
	}

	return available
}

func (rpm runPagerModel) maxOffset() int {
	perPage := rpm.itemsPerPage()
	if perPage <= 0 {
		return 0
	}

	maxOff := len(rpm.lines) - perPage
	if maxOff < 0 {
		return 0
	}

	return maxOff
}

// needsPagination returns true if the report is too large to fit on screen.
func (rpm runPagerModel) needsPagination() bool {
	if len(rpm.lines) == 0 {
		return false
	}

	return len(rpm.lines) > rpm.itemsPerPage() && rpm.height > 0
}

func (rpm runPagerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Restitch - Run Report"))
	b.WriteString("\n\n")

	if len(rpm.lines) == 0 {
		b.WriteString("  (empty report)\n")
		return b.String()
	}

	perPage := rpm.itemsPerPage()
	paginated := rpm.needsPagination()

	start := rpm.offset
	if start > len(rpm.lines)-1 {
		start = len(rpm.lines) - 1
	}

	end := start + perPage
	if end > len(rpm.lines) {
		end = len(rpm.lines)
	}

	display := rpm.lines
	if paginated {
		display = rpm.lines[start:end]
	}

	for _, line := range display {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if paginated {
		b.WriteString("\n")

		currentPage := (rpm.offset / perPage) + 1
		totalPages := (len(rpm.lines) + perPage - 1) / perPage
		fmt.Fprintf(&b, "  Page %d/%d | Showing %d-%d of %d\n",
			currentPage, totalPages, start+1, end, len(rpm.lines))
		b.WriteString(helpStyle.Render("  ↑/k: up | ↓/j: down | d/u: page | g: top | G: bottom | q: quit"))
		b.WriteString("\n")
	}

	return b.String()
}

// renderRunLines flattens a run report into display lines for the pager.
func renderRunLines(run m.RunReport, showDiff bool) []string {
	lines := []string{
		fmt.Sprintf("  run: %s", run.ID),
		fmt.Sprintf("  started: %s", run.StartedAt.Format("2006-01-02 15:04:05 MST")),
		fmt.Sprintf("  plan: %s", run.Plan),
	}

	if run.DryRun {
		lines = append(lines, mutedStyle.Render("  dry run: no files were written"))
	}

	lines = append(lines, "")

	for _, unit := range run.Units {
		lines = append(lines, renderUnitLines(unit, showDiff, true, run.DryRun)...)
	}

	lines = append(lines, renderSummaryLines(run.Summarize())...)

	return lines
}

// renderUnitLines formats one unit outcome, with span detail and diff lines
// when requested.
func renderUnitLines(report m.UnitReport, showDiff, spanDetail, dryRun bool) []string {
	style := outcomeStyle(report.Outcome)

	lines := []string{fmt.Sprintf("  %s %s %s -> %s",
		style.Render(outcomeGlyph(report.Outcome)),
		report.Unit,
		report.Path,
		style.Render(outcomeLabel(report.Outcome, dryRun)))}

	if report.Err != "" {
		lines = append(lines, failStyle.Render("    error: "+report.Err))
	}

	if spanDetail {
		for _, span := range report.Spans {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("    line %d [%s] %s%s",
				span.Line, span.Rule, span.Outcome, reasonSuffix(span.Reason))))
		}
	}

	if showDiff && report.Diff != "" {
		lines = append(lines, strings.Split(strings.TrimRight(report.Diff, "\n"), "\n")...)
	}

	return lines
}

func renderSummaryLines(summary m.Summary) []string {
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

	lines := []string{"", "  Summary:"}

	for _, row := range rows {
		line := fmt.Sprintf("    %-14s %d", row.outcome, row.count)
		if row.count == 0 {
			line = mutedStyle.Render(line)
		}

		lines = append(lines, line)
	}

	lines = append(lines, fmt.Sprintf("    %-14s %d", "total", summary.Total()))

	return lines
}

func outcomeStyle(outcome m.Outcome) lipgloss.Style {
	switch outcome {
	case m.Patched:
		return patchedStyle
	case m.AlreadyPatched:
		return skippedStyle
	case m.NotFound:
		return warnStyle
	case m.MissingFile, m.Failed:
		return failStyle
	default:
		return mutedStyle
	}
}

func progressWidth(terminalWidth int) int {
	width := terminalWidth - 20
	if width > 60 {
		width = 60
	}

	if width < 10 {
		width = 10
	}

	return width
}
