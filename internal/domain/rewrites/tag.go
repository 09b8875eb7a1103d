package rewrites

import (
	"fmt"
	"regexp"
	"strings"

	pkg "restitch.dev/pkg/restitch/pkg"

	m "restitch.dev/pkg/restitch/internal/model"
)

// ApplyTag derives the field insertion for one span. A span that already
// carries the field is reported AlreadyPatched and left alone. Insertion
// anchors are tried in order: inside the span's options group just before its
// closing brace, then after the diagnostic code token. With no phase label
// for the span's line, or no anchor, the result is NoMatch.
func ApplyTag(span m.CallSpan, rule m.Rule, ranges []m.PhaseRange) Result {
	if hasField(span.Text, rule.Field) {
		return Result{Outcome: m.AlreadyPatched, Reason: rule.Field + " field already present"}
	}

	label, ok := FindPhase(ranges, span.Line)
	if !ok {
		return Result{Outcome: m.NoMatch, Reason: fmt.Sprintf("no phase covers line %d", span.Line)}
	}

	if at, ok := braceAnchor(span); ok {
		return Result{
			Outcome: m.Patched,
			Edit: pkg.Edit{
				Span: pkg.Span{Start: at, End: at},
				Text: fmt.Sprintf(", %s: '%s'", rule.Field, label),
			},
		}
	}

	if at, ok := codeAnchor(span, rule.CodePattern); ok {
		return Result{
			Outcome: m.Patched,
			Edit: pkg.Edit{
				Span: pkg.Span{Start: at, End: at},
				Text: fmt.Sprintf(", { %s: '%s' }", rule.Field, label),
			},
		}
	}

	return Result{Outcome: m.NoMatch, Reason: "no insertion anchor in span"}
}

// hasField reports whether the span text already names the field as a key.
func hasField(text, field string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(field) + `\s*:`)
	if err != nil {
		return false
	}

	return re.MatchString(text)
}

// braceAnchor returns the offset of the closing brace of the span's options
// group. The group is taken as everything between the first "{" and the last
// "}" of the span.
func braceAnchor(span m.CallSpan) (int, bool) {
	openAt := strings.IndexByte(span.Text, '{')
	if openAt < 0 {
		return 0, false
	}

	closeAt := strings.LastIndexByte(span.Text, '}')
	if closeAt < openAt {
		return 0, false
	}

	return span.Start + closeAt, true
}

// codeAnchor returns the offset just past the first diagnostic code token.
func codeAnchor(span m.CallSpan, pattern string) (int, bool) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, false
	}

	loc := re.FindStringIndex(span.Text)
	if loc == nil {
		return 0, false
	}

	return span.Start + loc[1], true
}
