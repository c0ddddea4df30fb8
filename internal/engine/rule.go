package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/ideadensity/internal/ir"
)

// BaselineCode is the code recorded when no exception rule matched.
// It is reserved: no table rule may use it.
const BaselineCode ir.Code = 200

// Mode controls when a rule is enabled.
type Mode int

const (
	// Always rules are enabled in every configuration and cannot be disabled.
	Always Mode = iota
	// Default rules are enabled unless disabled.
	Default
	// OptIn rules are disabled unless enabled.
	OptIn
	// Speech rules are enabled in speech mode unless disabled, and may be
	// enabled explicitly outside it.
	Speech
)

var modeNames = [...]string{
	Always:  "always",
	Default: "default",
	OptIn:   "opt-in",
	Speech:  "speech",
}

// String returns the mode label used in listings and profiles.
func (m Mode) String() string {
	if int(m) >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Predicate reports whether a rule applies to word i of the context.
// Predicates must be pure: they may only read the context.
type Predicate func(c *Context, i int) bool

// Rule is one exception to the baseline.
type Rule struct {
	Code       ir.Code
	Name       string
	Precedence int
	Decision   bool
	Mode       Mode
	Rationale  string
	Match      Predicate
}

// Table is a validated, precedence-ordered set of rules.
// A Table is immutable after construction.
type Table struct {
	version string
	rules   []Rule
	byCode  map[ir.Code]int
}

// NewTable validates rules and returns them as a table ordered by
// ascending precedence. The argument order is irrelevant.
func NewTable(version string, rules ...Rule) (*Table, error) {
	if version == "" {
		return nil, newConfigError(ErrCodeInvalidRule, 0, "rule table version is empty")
	}

	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	slices.SortStableFunc(sorted, func(a, b Rule) int { return a.Precedence - b.Precedence })

	t := &Table{version: version, rules: sorted, byCode: make(map[ir.Code]int, len(sorted))}
	precedences := make(map[int]ir.Code, len(sorted))
	for i, r := range sorted {
		switch {
		case r.Code == BaselineCode:
			return nil, newConfigError(ErrCodeReservedCode, r.Code, "code %s is reserved for the baseline", BaselineCode)
		case r.Code <= 0:
			return nil, newConfigError(ErrCodeInvalidRule, r.Code, "rule %q has no code", r.Name)
		case r.Match == nil:
			return nil, newConfigError(ErrCodeInvalidRule, r.Code, "rule has no predicate")
		case r.Name == "":
			return nil, newConfigError(ErrCodeInvalidRule, r.Code, "rule has no name")
		case r.Precedence <= 0:
			return nil, newConfigError(ErrCodeInvalidRule, r.Code, "precedence %d is not positive", r.Precedence)
		}
		if _, dup := t.byCode[r.Code]; dup {
			return nil, newConfigError(ErrCodeDuplicateCode, r.Code, "code used by more than one rule")
		}
		if other, dup := precedences[r.Precedence]; dup {
			return nil, newConfigError(ErrCodeDuplicatePrecedence, r.Code, "precedence %d already used by rule %s", r.Precedence, other)
		}
		t.byCode[r.Code] = i
		precedences[r.Precedence] = r.Code
	}
	return t, nil
}

// Extend returns a new table holding t's rules plus rules under a new
// version. Existing rules keep their precedence, so their relative order
// is unchanged; a new rule reusing a code or precedence is rejected.
func (t *Table) Extend(version string, rules ...Rule) (*Table, error) {
	if version == t.version {
		return nil, newConfigError(ErrCodeInvalidRule, 0, "extended table must have a new version, got %q again", version)
	}
	all := make([]Rule, 0, len(t.rules)+len(rules))
	all = append(all, t.rules...)
	all = append(all, rules...)
	return NewTable(version, all...)
}

// Version identifies the table. It is part of every outcome digest.
func (t *Table) Version() string {
	return t.version
}

// Rules returns the rules in precedence order.
func (t *Table) Rules() []Rule {
	return slices.Clone(t.rules)
}

// Lookup returns the rule with the given code.
func (t *Table) Lookup(code ir.Code) (Rule, bool) {
	i, ok := t.byCode[code]
	if !ok {
		return Rule{}, false
	}
	return t.rules[i], true
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.rules)
}
