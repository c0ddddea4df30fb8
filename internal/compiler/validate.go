package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/ideadensity/internal/engine"
	"github.com/roach88/ideadensity/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrDescriptionEmpty  = "E101" // description is required
	ErrUnknownRule       = "E102" // code not in the rule table
	ErrMandatoryRule     = "E103" // always-on rule listed in disable
	ErrConflictingRule   = "E104" // code both enabled and disabled
	ErrDuplicateRule     = "E105" // code listed twice
	ErrUnresolvable      = "E106" // unknown parent or extends cycle
	ErrRedundantSpeech   = "E107" // speech rule enabled while speech is on
	ErrRedundantDisabled = "E108" // opt-in rule listed in disable
	ErrUnknownTable      = "E109" // table names no pinned rule table
)

// ValidationError represents a profile validation error.
type ValidationError struct {
	Profile string `json:"profile"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s.%s: %s", e.Code, e.Profile, e.Field, e.Message)
}

// IsWarning reports whether the error only flags a redundant entry; the
// profile still builds an engine.
func (e ValidationError) IsWarning() bool {
	return e.Code == ErrRedundantSpeech || e.Code == ErrRedundantDisabled
}

// Validate checks a profile against a rule table. It returns every
// problem found rather than stopping at the first.
func Validate(p *Profile, table *engine.Table) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Profile: p.Name,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	if strings.TrimSpace(p.Description) == "" {
		add("description", ErrDescriptionEmpty, "description is required and must be non-empty")
	}

	check := func(field string, codes []ir.Code) {
		seen := make(map[ir.Code]bool, len(codes))
		for _, c := range codes {
			if seen[c] {
				add(field, ErrDuplicateRule, "rule %s listed more than once", c)
				continue
			}
			seen[c] = true

			r, ok := table.Lookup(c)
			if !ok {
				add(field, ErrUnknownRule, "rule %s is not in table %s", c, table.Version())
				continue
			}
			switch {
			case field == "disable" && r.Mode == engine.Always:
				add(field, ErrMandatoryRule, "rule %s (%s) is always on and cannot be disabled", c, r.Name)
			case field == "disable" && r.Mode == engine.OptIn:
				add(field, ErrRedundantDisabled, "rule %s (%s) is opt-in and already off", c, r.Name)
			case field == "enable" && r.Mode == engine.Speech && p.Speech:
				add(field, ErrRedundantSpeech, "rule %s (%s) is already on in speech mode", c, r.Name)
			}
		}
	}
	check("enable", p.Enable)
	check("disable", p.Disable)

	for _, c := range p.Enable {
		if slices.Contains(p.Disable, c) {
			add("enable", ErrConflictingRule, "rule %s is both enabled and disabled", c)
		}
	}
	return errs
}

// ValidateRegistry resolves and validates every profile of r. Each
// profile is checked against the table its resolved chain selects; when
// the chain cannot be resolved the default table is used.
func ValidateRegistry(r *Registry) []ValidationError {
	var errs []ValidationError
	for _, name := range r.Names() {
		raw, _ := r.Get(name)
		table := engine.DefaultTable()

		resolved, err := r.Resolve(name)
		if err != nil {
			errs = append(errs, ValidationError{
				Profile: name,
				Field:   "extends",
				Message: err.Error(),
				Code:    ErrUnresolvable,
			})
		} else if t, ok := engine.LookupTable(resolved.Table); ok {
			table = t
		} else {
			errs = append(errs, ValidationError{
				Profile: name,
				Field:   "table",
				Message: fmt.Sprintf("unknown rule table %q (known: %s)", resolved.Table, strings.Join(engine.TableVersions(), ", ")),
				Code:    ErrUnknownTable,
			})
			continue
		}
		errs = append(errs, Validate(raw, table)...)
	}
	return errs
}
