package domain

import (
	"fmt"
	"regexp"
	"strings"

	m "restitch.dev/pkg/restitch/internal/model"
)

// MatchSpan tests a span against a rule's expected call shape. The whole span
// must conform, never just a substring. Hoist rules try the primary argument
// pattern first and the rule's fallback pattern second; on success the
// captured argument text is returned under the rule's binding name. Tag rules
// carry no captures and return an empty binding.
func MatchSpan(span m.CallSpan, rule m.Rule) (m.Binding, bool) {
	switch rule.Mode {
	case m.ModeHoist:
		if binding, ok := matchHoist(span, rule, rule.Ident); ok {
			return binding, true
		}

		if rule.FallbackIdent != "" {
			return matchHoist(span, rule, rule.FallbackIdent)
		}

		return nil, false
	case m.ModeTag:
		return matchTag(span, rule)
	default:
		return nil, false
	}
}

func matchHoist(span m.CallSpan, rule m.Rule, identPattern string) (m.Binding, bool) {
	re, err := hoistShape(rule, identPattern)
	if err != nil {
		return nil, false
	}

	match := re.FindStringSubmatch(span.Text)
	if match == nil {
		return nil, false
	}

	return m.Binding{rule.Bind: match[1]}, true
}

// hoistShape compiles the anchored shape CALL(IDENT, TABLE.PROPERTY[KEY]);
// with whitespace allowed around the argument delimiters. Rule tokens are
// matched literally; only the identifier slot is a caller-supplied pattern.
func hoistShape(rule m.Rule, identPattern string) (*regexp.Regexp, error) {
	shape := fmt.Sprintf(`^%s\(\s*(%s)\s*,\s*%s\.%s\[\s*%s\s*\]\s*\);$`,
		regexp.QuoteMeta(rule.Call),
		identPattern,
		regexp.QuoteMeta(rule.Table),
		regexp.QuoteMeta(rule.Property),
		regexp.QuoteMeta(rule.Key),
	)

	return regexp.Compile(shape)
}

func matchTag(span m.CallSpan, rule m.Rule) (m.Binding, bool) {
	for _, call := range rule.Calls {
		if strings.HasPrefix(span.Text, call+"(") && strings.HasSuffix(span.Text, terminator) {
			return m.Binding{}, true
		}
	}

	return nil, false
}
