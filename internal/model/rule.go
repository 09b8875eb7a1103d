// Package model defines the data structures for the patch engine.
package model

import "strings"

// UnitPlaceholder is the token that rule fields and path templates may carry;
// it is substituted with the unit key when a unit is processed.
const UnitPlaceholder = "{unit}"

// RuleMode selects which rewrite a rule performs.
type RuleMode string

const (
	// ModeHoist replaces an exact call statement with an intermediate
	// assignment followed by the call rewritten to use the intermediate.
	ModeHoist RuleMode = "hoist"
	// ModeTag inserts a context-derived field into a matched call.
	ModeTag RuleMode = "tag"
)

// Rule describes one configured call pattern and how to rewrite matches.
// Token fields may carry {unit}; ForUnit expands it before matching.
type Rule struct {
	Name string
	Mode RuleMode

	// Hoist mode: the call shape is CALL(IDENT, TABLE.PROPERTY[KEY]) inside a
	// `const ASSIGN = ...;` statement. IDENT must match the Ident pattern
	// (FallbackIdent is the looser retry) and is captured under Bind.
	Call          string
	Assign        string
	Table         string
	Property      string
	Key           string
	Bind          string
	Ident         string
	FallbackIdent string
	Intermediate  string
	Wrapper       string

	// Tag mode: any call to one of Calls is a candidate; Field is inserted
	// with the resolved phase label. CodePattern recognizes the short code
	// token used as the insertion anchor when no brace group exists.
	Calls       []string
	Field       string
	CodePattern string
}

// Triggers returns the callee names whose occurrences open a call span.
func (r Rule) Triggers() []string {
	if r.Mode == ModeTag {
		return r.Calls
	}

	return []string{r.Call}
}

// ForUnit returns a copy of the rule with the {unit} placeholder expanded to
// the given unit key in every token field.
func (r Rule) ForUnit(key string) Rule {
	expand := func(s string) string {
		return strings.ReplaceAll(s, UnitPlaceholder, key)
	}

	out := r
	out.Call = expand(r.Call)
	out.Assign = expand(r.Assign)
	out.Table = expand(r.Table)
	out.Property = expand(r.Property)
	out.Key = expand(r.Key)
	out.Intermediate = expand(r.Intermediate)
	out.Wrapper = expand(r.Wrapper)

	if len(r.Calls) > 0 {
		out.Calls = make([]string, len(r.Calls))
		for i, call := range r.Calls {
			out.Calls[i] = expand(call)
		}
	}

	return out
}

// Binding maps a rule's binding names to the literal argument text captured
// from a call span. Captured text is reused verbatim in replacements; the
// engine has no semantic model of the target language, only text.
type Binding map[string]string
