// Package rewrites holds the rewrite modes the patch engine can apply to a
// matched call span. Each mode derives a text edit without applying it, so
// the caller can collect edits from every rule before touching the file.
package rewrites

import (
	pkg "restitch.dev/pkg/restitch/pkg"

	m "restitch.dev/pkg/restitch/internal/model"
)

// Result is the outcome of attempting one rewrite on one span. Edit is only
// meaningful when Outcome is Patched.
type Result struct {
	Outcome m.Outcome
	Reason  string
	Edit    pkg.Edit
}

// FindPhase determines which phase a line belongs to. Ranges are tested in
// their configured order and the first containing range wins, so overlapping
// ranges resolve the same way on every run.
func FindPhase(ranges []m.PhaseRange, line int) (string, bool) {
	for _, r := range ranges {
		if line >= r.Start && line <= r.End {
			return r.Label, true
		}
	}

	return "", false
}
