package domain

import (
	"github.com/pmezard/go-difflib/difflib"

	m "restitch.dev/pkg/restitch/internal/model"
)

// diffCode renders a unified diff between a unit's original and patched text.
func diffCode(path m.Path, before, after string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: string(path),
		ToFile:   string(path) + " (patched)",
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}

	return text
}
