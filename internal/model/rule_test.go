package model

import (
	"reflect"
	"testing"
)

func TestRuleForUnit(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		key  string
		want Rule
	}{
		{
			name: "expands placeholder in table",
			rule: Rule{Mode: ModeHoist, Call: "calc", Table: "{unit}_RULES_2025", Property: "brackets"},
			key:  "DE",
			want: Rule{Mode: ModeHoist, Call: "calc", Table: "DE_RULES_2025", Property: "brackets"},
		},
		{
			name: "expands placeholder in call list",
			rule: Rule{Mode: ModeTag, Calls: []string{"push{unit}Warning"}, Field: "phase"},
			key:  "X",
			want: Rule{Mode: ModeTag, Calls: []string{"pushXWarning"}, Field: "phase"},
		},
		{
			name: "no placeholder is a plain copy",
			rule: Rule{Mode: ModeHoist, Call: "calc", Assign: "total"},
			key:  "DE",
			want: Rule{Mode: ModeHoist, Call: "calc", Assign: "total"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.ForUnit(tt.key)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ForUnit(%q) = %+v, want %+v", tt.key, got, tt.want)
			}
		})
	}
}

func TestRuleTriggers(t *testing.T) {
	tag := Rule{Mode: ModeTag, Calls: []string{"pushWarning", "pushError"}}
	if got := tag.Triggers(); !reflect.DeepEqual(got, []string{"pushWarning", "pushError"}) {
		t.Errorf("tag triggers = %v", got)
	}

	hoist := Rule{Mode: ModeHoist, Call: "calculateTaxFromBrackets"}
	if got := hoist.Triggers(); !reflect.DeepEqual(got, []string{"calculateTaxFromBrackets"}) {
		t.Errorf("hoist triggers = %v", got)
	}
}

func TestSummarize(t *testing.T) {
	run := RunReport{Units: []UnitReport{
		{Unit: "A", Outcome: Patched},
		{Unit: "B", Outcome: Patched},
		{Unit: "C", Outcome: MissingFile},
		{Unit: "D", Outcome: AlreadyPatched},
	}}

	summary := run.Summarize()

	if summary.Patched != 2 || summary.MissingFile != 1 || summary.AlreadyPatched != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	if summary.Total() != 4 {
		t.Errorf("Total() = %d, want 4", summary.Total())
	}
}
