package domain

import (
	"context"
	"fmt"
	"log/slog"

	"restitch.dev/pkg/restitch/internal/domain/rewrites"
	m "restitch.dev/pkg/restitch/internal/model"
	pkg "restitch.dev/pkg/restitch/pkg"
)

// Patcher derives the patched text for one source unit by running every plan
// rule over the unit's call spans and applying the collected edits in a
// single pass over the original text.
type Patcher interface {
	PatchUnit(ctx context.Context, unit m.SourceUnit, rules []m.Rule, ranges []m.PhaseRange) (PatchResult, error)
}

// PatchResult carries one unit's outcome before write-back. Text equals the
// unit's input text when no edit applied.
type PatchResult struct {
	Text    string
	Changed bool
	Outcome m.Outcome
	Spans   []m.SpanResult
}

type patcher struct{}

// NewPatcher creates the rule-driven Patcher.
func NewPatcher() Patcher {
	return &patcher{}
}

// PatchUnit extracts spans per rule against the original text, derives the
// rewrites, then applies every collected edit at once. Span line numbers,
// and with them phase resolution, always refer to the text as it was read.
func (p *patcher) PatchUnit(ctx context.Context, unit m.SourceUnit, rules []m.Rule, ranges []m.PhaseRange) (PatchResult, error) {
	if err := ctx.Err(); err != nil {
		return PatchResult{}, err
	}

	var (
		edits   []pkg.Edit
		results []m.SpanResult
	)

	for _, rule := range rules {
		rule = rule.ForUnit(unit.Key)

		spans := ExtractCalls(unit.Text, rule.Triggers())
		slog.Debug("extracted call spans",
			"unit", unit.Key, "rule", rule.Name, "spans", len(spans))

		for _, span := range spans {
			result := p.rewriteSpan(unit.Text, span, rule, ranges)

			results = append(results, m.SpanResult{
				Rule:    rule.Name,
				Line:    span.Line,
				Outcome: result.Outcome,
				Reason:  result.Reason,
			})

			if result.Outcome == m.Patched {
				edits = append(edits, result.Edit)
			}
		}
	}

	text := unit.Text

	if len(edits) > 0 {
		patched, err := pkg.ApplyEdits(unit.Text, edits)
		if err != nil {
			slog.Error("failed to apply edits", "unit", unit.Key, "error", err)
			return PatchResult{}, fmt.Errorf("apply edits to %s: %w", unit.Path, err)
		}

		text = patched
	}

	return PatchResult{
		Text:    text,
		Changed: text != unit.Text,
		Outcome: classifySpans(results),
		Spans:   results,
	}, nil
}

func (p *patcher) rewriteSpan(text string, span m.CallSpan, rule m.Rule, ranges []m.PhaseRange) rewrites.Result {
	binding, ok := MatchSpan(span, rule)
	if !ok {
		reason := "span does not match the rule shape"
		if rule.Mode == m.ModeHoist && rule.FallbackIdent != "" {
			reason += "; fallback ident tried too"
		}

		return rewrites.Result{Outcome: m.NoMatch, Reason: reason}
	}

	switch rule.Mode {
	case m.ModeHoist:
		return rewrites.ApplyHoist(text, span, rule, binding)
	case m.ModeTag:
		return rewrites.ApplyTag(span, rule, ranges)
	default:
		return rewrites.Result{Outcome: m.NoMatch, Reason: fmt.Sprintf("unknown rule mode %q", rule.Mode)}
	}
}

// classifySpans rolls span outcomes up to one unit outcome. Precedence:
// Patched over AlreadyPatched over NotFound over NoMatch. A unit with no
// spans at all is NoMatch.
func classifySpans(spans []m.SpanResult) m.Outcome {
	outcome := m.NoMatch

	for _, span := range spans {
		switch span.Outcome {
		case m.Patched:
			return m.Patched
		case m.AlreadyPatched:
			outcome = m.AlreadyPatched
		case m.NotFound:
			if outcome != m.AlreadyPatched {
				outcome = m.NotFound
			}
		}
	}

	return outcome
}
