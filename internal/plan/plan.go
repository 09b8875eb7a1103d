// Package plan loads and validates the patch plans that drive a batch run.
package plan

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
	m "restitch.dev/pkg/restitch/internal/model"
)

// CurrentVersion is the plan schema version this build understands.
const CurrentVersion = 1

// DefaultCodePattern recognizes the short diagnostic code token used as the
// insertion anchor when a tagged call carries no brace group.
const DefaultCodePattern = `'[A-Z]+-[EW]-\d+'`

// DefaultIdent matches any identifier under the target corpus convention.
const DefaultIdent = `[A-Za-z_$][A-Za-z0-9_$]*`

// DefaultBind is the binding name used when a hoist rule does not name one.
const DefaultBind = "value"

// Plan is a validated patch plan: the unit list, the path-construction rule,
// the ordered phase table and the ordered rule list for one batch run.
type Plan struct {
	Version int
	Target  Target
	Units   []string
	Phases  []m.PhaseRange
	Rules   []m.Rule
}

// Target maps a unit key to a file location. Path may carry {unit}; Root is
// an optional prefix joined in front of the expanded path.
type Target struct {
	Root string
	Path string
}

// PathFor resolves the file location for a unit key.
func (p Plan) PathFor(unit string) m.Path {
	rel := strings.ReplaceAll(p.Target.Path, m.UnitPlaceholder, unit)
	if p.Target.Root == "" {
		return m.Path(rel)
	}

	return m.Path(filepath.Join(p.Target.Root, rel))
}

// Load reads, decodes and validates a plan file.
func Load(path m.Path) (Plan, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return Plan{}, fmt.Errorf("read plan: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return Plan{}, fmt.Errorf("plan %s: %w", path, err)
	}

	return p, nil
}

// Parse decodes and validates plan bytes. Unknown keys are rejected so typos
// in a plan never silently disable a rule.
func Parse(data []byte) (Plan, error) {
	var file planFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&file); err != nil {
		return Plan{}, fmt.Errorf("decode: %w", err)
	}

	p, err := file.toPlan()
	if err != nil {
		return Plan{}, err
	}

	return p, nil
}

type planFile struct {
	Version int         `yaml:"version"`
	Target  targetFile  `yaml:"target"`
	Units   []string    `yaml:"units"`
	Phases  []phaseFile `yaml:"phases"`
	Rules   []ruleFile  `yaml:"rules"`
}

type targetFile struct {
	Root string `yaml:"root"`
	Path string `yaml:"path"`
}

type phaseFile struct {
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
	Label string `yaml:"label"`
}

type ruleFile struct {
	Name          string   `yaml:"name"`
	Mode          string   `yaml:"mode"`
	Call          string   `yaml:"call"`
	Assign        string   `yaml:"assign"`
	Table         string   `yaml:"table"`
	Property      string   `yaml:"property"`
	Key           string   `yaml:"key"`
	Bind          string   `yaml:"bind"`
	Ident         string   `yaml:"ident"`
	FallbackIdent string   `yaml:"fallback_ident"`
	Intermediate  string   `yaml:"intermediate"`
	Wrapper       string   `yaml:"wrapper"`
	Calls         []string `yaml:"calls"`
	Field         string   `yaml:"field"`
	CodePattern   string   `yaml:"code_pattern"`
}

func (f planFile) toPlan() (Plan, error) {
	if f.Version != 0 && f.Version != CurrentVersion {
		return Plan{}, fmt.Errorf("unsupported plan version %d (supported: %d)", f.Version, CurrentVersion)
	}

	if strings.TrimSpace(f.Target.Path) == "" {
		return Plan{}, fmt.Errorf("target.path is required")
	}

	if len(f.Units) == 0 {
		return Plan{}, fmt.Errorf("at least one unit is required")
	}

	seen := make(map[string]bool, len(f.Units))

	for _, unit := range f.Units {
		if strings.TrimSpace(unit) == "" {
			return Plan{}, fmt.Errorf("unit keys must not be empty")
		}

		if seen[unit] {
			return Plan{}, fmt.Errorf("duplicate unit %q", unit)
		}

		seen[unit] = true
	}

	phases := make([]m.PhaseRange, 0, len(f.Phases))

	for i, phase := range f.Phases {
		if strings.TrimSpace(phase.Label) == "" {
			return Plan{}, fmt.Errorf("phase %d: label is required", i)
		}

		if phase.Start < 1 || phase.End < phase.Start {
			return Plan{}, fmt.Errorf("phase %q: invalid line range %d-%d", phase.Label, phase.Start, phase.End)
		}

		phases = append(phases, m.PhaseRange{Start: phase.Start, End: phase.End, Label: phase.Label})
	}

	if len(f.Rules) == 0 {
		return Plan{}, fmt.Errorf("at least one rule is required")
	}

	rules := make([]m.Rule, 0, len(f.Rules))

	for i, rf := range f.Rules {
		rule, err := rf.toRule()
		if err != nil {
			return Plan{}, fmt.Errorf("rule %d (%s): %w", i, rf.Name, err)
		}

		if rule.Mode == m.ModeTag && len(phases) == 0 {
			return Plan{}, fmt.Errorf("rule %q: tag rules require a phases table", rule.Name)
		}

		rules = append(rules, rule)
	}

	return Plan{
		Version: CurrentVersion,
		Target:  Target{Root: f.Target.Root, Path: f.Target.Path},
		Units:   f.Units,
		Phases:  phases,
		Rules:   rules,
	}, nil
}

func (rf ruleFile) toRule() (m.Rule, error) {
	if strings.TrimSpace(rf.Name) == "" {
		return m.Rule{}, fmt.Errorf("name is required")
	}

	switch m.RuleMode(rf.Mode) {
	case m.ModeHoist:
		return rf.toHoistRule()
	case m.ModeTag:
		return rf.toTagRule()
	default:
		return m.Rule{}, fmt.Errorf("unknown mode %q", rf.Mode)
	}
}

func (rf ruleFile) toHoistRule() (m.Rule, error) {
	required := map[string]string{
		"call":         rf.Call,
		"assign":       rf.Assign,
		"table":        rf.Table,
		"property":     rf.Property,
		"key":          rf.Key,
		"intermediate": rf.Intermediate,
		"wrapper":      rf.Wrapper,
	}

	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return m.Rule{}, fmt.Errorf("%s is required for hoist rules", field)
		}
	}

	ident := rf.Ident
	if ident == "" {
		ident = DefaultIdent
	}

	if _, err := regexp.Compile(ident); err != nil {
		return m.Rule{}, fmt.Errorf("ident pattern: %w", err)
	}

	if rf.FallbackIdent != "" {
		if _, err := regexp.Compile(rf.FallbackIdent); err != nil {
			return m.Rule{}, fmt.Errorf("fallback_ident pattern: %w", err)
		}
	}

	bind := rf.Bind
	if bind == "" {
		bind = DefaultBind
	}

	return m.Rule{
		Name:          rf.Name,
		Mode:          m.ModeHoist,
		Call:          rf.Call,
		Assign:        rf.Assign,
		Table:         rf.Table,
		Property:      rf.Property,
		Key:           rf.Key,
		Bind:          bind,
		Ident:         ident,
		FallbackIdent: rf.FallbackIdent,
		Intermediate:  rf.Intermediate,
		Wrapper:       rf.Wrapper,
	}, nil
}

func (rf ruleFile) toTagRule() (m.Rule, error) {
	if len(rf.Calls) == 0 {
		return m.Rule{}, fmt.Errorf("calls is required for tag rules")
	}

	for _, call := range rf.Calls {
		if strings.TrimSpace(call) == "" {
			return m.Rule{}, fmt.Errorf("call names must not be empty")
		}
	}

	if strings.TrimSpace(rf.Field) == "" {
		return m.Rule{}, fmt.Errorf("field is required for tag rules")
	}

	pattern := rf.CodePattern
	if pattern == "" {
		pattern = DefaultCodePattern
	}

	if _, err := regexp.Compile(pattern); err != nil {
		return m.Rule{}, fmt.Errorf("code_pattern: %w", err)
	}

	return m.Rule{
		Name:        rf.Name,
		Mode:        m.ModeTag,
		Calls:       rf.Calls,
		Field:       rf.Field,
		CodePattern: pattern,
	}, nil
}
