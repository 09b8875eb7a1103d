package model

import "time"

// Outcome classifies what happened to a span or to a whole unit.
type Outcome string

const (
	// Patched indicates content was rewritten.
	Patched Outcome = "patched"
	// AlreadyPatched indicates the completion marker was already present.
	AlreadyPatched Outcome = "already-patched"
	// NoMatch indicates no rule shape or insertion anchor applied.
	NoMatch Outcome = "no-match"
	// NotFound indicates the expected prior form was absent from the text.
	NotFound Outcome = "not-found"
	// MissingFile indicates the unit's file does not exist.
	MissingFile Outcome = "missing-file"
	// Failed indicates an I/O failure while reading or writing the unit.
	Failed Outcome = "failed"
)

// String returns the outcome's report label.
func (o Outcome) String() string {
	return string(o)
}

// SpanResult records what one rule did with one extracted call span.
type SpanResult struct {
	Rule    string
	Line    int
	Outcome Outcome
	Reason  string // short explanation for non-patched outcomes
}

// UnitReport is the classified outcome of one unit in a run.
type UnitReport struct {
	Unit    string
	Path    Path
	Outcome Outcome
	Spans   []SpanResult
	Diff    string // unified diff, set when content changed
	Err     string // set for Failed outcomes
}

// RunReport captures one whole batch run for persistence and viewing.
type RunReport struct {
	ID        string
	StartedAt time.Time
	Plan      string
	DryRun    bool
	Units     []UnitReport
}

// Summary tallies unit outcomes for one or more runs.
type Summary struct {
	Patched        int
	AlreadyPatched int
	NoMatch        int
	NotFound       int
	MissingFile    int
	Failed         int
}

// Add counts a single unit outcome.
func (s *Summary) Add(outcome Outcome) {
	switch outcome {
	case Patched:
		s.Patched++
	case AlreadyPatched:
		s.AlreadyPatched++
	case NoMatch:
		s.NoMatch++
	case NotFound:
		s.NotFound++
	case MissingFile:
		s.MissingFile++
	case Failed:
		s.Failed++
	}
}

// Total returns the number of units counted.
func (s Summary) Total() int {
	return s.Patched + s.AlreadyPatched + s.NoMatch + s.NotFound + s.MissingFile + s.Failed
}

// Summarize tallies the run's unit outcomes.
func (r RunReport) Summarize() Summary {
	var s Summary
	for _, unit := range r.Units {
		s.Add(unit.Outcome)
	}

	return s
}
