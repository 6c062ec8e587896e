package patterns

import (
	"fmt"
	"regexp"
	"sort"
)

// Table is a versioned rule set. It is read-only once compiled and safe for
// concurrent use.
type Table struct {
	Version string `yaml:"version" json:"version"`
	Rules   []Rule `yaml:"rules" json:"rules"`

	compiled bool
}

// Compile validates and compiles every rule, then orders them by priority.
// Equal priorities put allowed-domain rules first, then keep file order.
func (t *Table) Compile() error {
	if t.Version == "" {
		return fmt.Errorf("pattern table has no version")
	}
	seen := make(map[string]struct{}, len(t.Rules))
	for i := range t.Rules {
		r := &t.Rules[i]
		if r.Name == "" {
			return fmt.Errorf("rule #%d has no name", i)
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("duplicate rule name %q", r.Name)
		}
		seen[r.Name] = struct{}{}
		if !r.Verdict.Valid() {
			return fmt.Errorf("rule %q: unknown verdict %q", r.Name, r.Verdict)
		}
		if len(r.Targets) == 0 {
			return fmt.Errorf("rule %q: no targets", r.Name)
		}
		for _, target := range r.Targets {
			if !target.Valid() {
				return fmt.Errorf("rule %q: unknown target %q", r.Name, target)
			}
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("rule %q: invalid pattern: %w", r.Name, err)
		}
		r.re = re
	}
	sort.SliceStable(t.Rules, func(i, j int) bool {
		a, b := t.Rules[i], t.Rules[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.Verdict == VerdictAllowedDomain && b.Verdict != VerdictAllowedDomain
	})
	t.compiled = true
	return nil
}

// Classify returns the decision of the first matching rule for target. No
// match is a clean, allowed decision.
func (t *Table) Classify(target Target, input string) Decision {
	if t == nil || !t.compiled || input == "" {
		return Clean()
	}
	for i := range t.Rules {
		r := &t.Rules[i]
		if !r.appliesTo(target) {
			continue
		}
		loc := r.re.FindStringIndex(input)
		if loc == nil {
			continue
		}
		match := input[loc[0]:loc[1]]
		if r.Verdict.Blocks() {
			return Blocked(r.Verdict, r.Name, match)
		}
		if r.Verdict == VerdictAllowedDomain {
			return Allowed(r.Name, match)
		}
		return Decision{Verdict: r.Verdict, Rule: r.Name, Match: match}
	}
	return Clean()
}

// Matches is shorthand for Classify(target, input).Blocked.
func (t *Table) Matches(target Target, input string) bool {
	return t.Classify(target, input).Blocked
}

// With returns a compiled copy of t extended by extra. Extra rules replace
// table rules that share their name.
func (t *Table) With(extra []Rule) (*Table, error) {
	merged := &Table{Version: t.Version}
	override := make(map[string]Rule, len(extra))
	for _, r := range extra {
		override[r.Name] = r
	}
	for _, r := range t.Rules {
		if _, ok := override[r.Name]; ok {
			continue
		}
		r.re = nil
		merged.Rules = append(merged.Rules, r)
	}
	merged.Rules = append(merged.Rules, extra...)
	if len(extra) > 0 {
		merged.Version = t.Version + "+local"
	}
	if err := merged.Compile(); err != nil {
		return nil, err
	}
	return merged, nil
}

// RulesFor lists the rule names evaluated for target, in evaluation order.
func (t *Table) RulesFor(target Target) []string {
	var names []string
	for i := range t.Rules {
		if t.Rules[i].appliesTo(target) {
			names = append(names, t.Rules[i].Name)
		}
	}
	return names
}

func (t *Table) String() string {
	return fmt.Sprintf("patterns(%s, %d rules)", t.Version, len(t.Rules))
}
