// Package controller provides output adapters for displaying patch run results.
package controller

import (
	"context"

	m "restitch.dev/pkg/restitch/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeApply StartMode = iota
	ModeScan
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithApplyMode sets the UI to patch application mode.
func WithApplyMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeApply
	}
}

// WithScanMode sets the UI to scan preview mode, which reports span detail
// for every rule instead of unit outcomes only.
func WithScanMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeScan
	}
}

// UI defines the interface for displaying batch patch runs.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayRunStart(ctx context.Context, plan m.Path, totalUnits int, dryRun bool)
	DisplayUnitResult(ctx context.Context, report m.UnitReport, showDiff bool)
	DisplaySummary(ctx context.Context, summary m.Summary) error
	DisplayRun(ctx context.Context, run m.RunReport, showDiff bool) error
}
