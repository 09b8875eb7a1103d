package rewrites

import (
	"fmt"
	"regexp"

	pkg "restitch.dev/pkg/restitch/pkg"

	m "restitch.dev/pkg/restitch/internal/model"
)

// ApplyHoist derives the two-statement replacement for a matched call: first
// the intermediate assignment wrapping the table lookup, then the original
// statement rewritten against the intermediate. The prior statement form is
// located whitespace-insensitively but token-exactly, and must enclose the
// matched span; when it is absent the result is NotFound and the text is
// left alone.
func ApplyHoist(text string, span m.CallSpan, rule m.Rule, binding m.Binding) Result {
	bound, ok := binding[rule.Bind]
	if !ok || bound == "" {
		return Result{Outcome: m.NoMatch, Reason: "no " + rule.Bind + " captured for span"}
	}

	re, err := priorForm(rule, bound)
	if err != nil {
		return Result{Outcome: m.NoMatch, Reason: "prior form pattern: " + err.Error()}
	}

	loc := enclosingMatch(re, text, span)
	if loc == nil {
		return Result{Outcome: m.NotFound, Reason: "expected statement form not found"}
	}

	indent := pkg.IndentAt(text, loc[0])
	lookup := fmt.Sprintf("%s.%s[%s]", rule.Table, rule.Property, rule.Key)

	replacement := fmt.Sprintf("const %s = %s(%s);\n%sconst %s = %s(%s, %s);",
		rule.Intermediate, rule.Wrapper, lookup,
		indent,
		rule.Assign, rule.Call, bound, rule.Intermediate,
	)

	return Result{
		Outcome: m.Patched,
		Edit:    pkg.Edit{Span: pkg.Span{Start: loc[0], End: loc[1]}, Text: replacement},
	}
}

// priorForm compiles the statement shape
// const ASSIGN = CALL(BOUND, TABLE.PROPERTY[KEY]); with whitespace allowed
// between tokens. Every token is matched literally, including the argument
// text captured from the span.
func priorForm(rule m.Rule, bound string) (*regexp.Regexp, error) {
	shape := fmt.Sprintf(`const\s+%s\s*=\s*%s\(\s*%s\s*,\s*%s\.%s\[\s*%s\s*\]\s*\)\s*;`,
		regexp.QuoteMeta(rule.Assign),
		regexp.QuoteMeta(rule.Call),
		regexp.QuoteMeta(bound),
		regexp.QuoteMeta(rule.Table),
		regexp.QuoteMeta(rule.Property),
		regexp.QuoteMeta(rule.Key),
	)

	return regexp.Compile(shape)
}

// enclosingMatch selects the occurrence of the statement form that contains
// the span's start. Occurrence selection keeps repeated statements disjoint:
// each span rewrites its own enclosing statement only.
func enclosingMatch(re *regexp.Regexp, text string, span m.CallSpan) []int {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] <= span.Start && span.Start < loc[1] {
			return loc
		}
	}

	return nil
}
