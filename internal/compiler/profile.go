package compiler

import (
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/ideadensity/internal/engine"
	"github.com/roach88/ideadensity/internal/ir"
)

// Profile is a named selection of rules: the rule table, the speech
// switch, and the codes enabled and disabled on top of the rule modes.
type Profile struct {
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Extends     string    `json:"extends,omitempty" yaml:"extends,omitempty"`
	Table       string    `json:"table,omitempty" yaml:"table,omitempty"`
	Speech      bool      `json:"speech" yaml:"speech"`
	Distinct    bool      `json:"distinct,omitempty" yaml:"distinct,omitempty"`
	Enable      []ir.Code `json:"enable,omitempty" yaml:"enable,omitempty"`
	Disable     []ir.Code `json:"disable,omitempty" yaml:"disable,omitempty"`

	// Source is the file the profile was compiled from ("builtin" for the
	// embedded ones).
	Source string `json:"source" yaml:"source"`
}

// Options returns the engine options selecting the profile's rules.
func (p *Profile) Options() []engine.Option {
	return []engine.Option{
		engine.WithSpeechMode(p.Speech),
		engine.WithEnable(p.Enable...),
		engine.WithDisable(p.Disable...),
	}
}

// RuleTable returns the pinned table the profile names; an empty name
// selects the default table.
func (p *Profile) RuleTable() (*engine.Table, error) {
	t, ok := engine.LookupTable(p.Table)
	if !ok {
		return nil, fmt.Errorf("profile %s: unknown rule table %q (known: %s)",
			p.Name, p.Table, strings.Join(engine.TableVersions(), ", "))
	}
	return t, nil
}

// Engine builds an engine over table with the profile's rules. Extra
// options (a logger, usually) are applied after the profile's.
func (p *Profile) Engine(table *engine.Table, extra ...engine.Option) (*engine.Engine, error) {
	e, err := engine.New(table, append(p.Options(), extra...)...)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return e, nil
}

// Override returns a copy of p with command-line style overrides applied
// on top: speech can only be turned on, and an enabled code cancels the
// profile's disable of it (and the other way round).
func (p *Profile) Override(speech bool, enable, disable []ir.Code) *Profile {
	out := *p
	out.Enable = slices.Clone(p.Enable)
	out.Disable = slices.Clone(p.Disable)
	out.apply(speech, enable, disable)
	return &out
}

func (p *Profile) apply(speech bool, enable, disable []ir.Code) {
	p.Speech = p.Speech || speech
	for _, code := range enable {
		p.Disable = slices.DeleteFunc(p.Disable, func(c ir.Code) bool { return c == code })
		if !slices.Contains(p.Enable, code) {
			p.Enable = append(p.Enable, code)
		}
	}
	for _, code := range disable {
		p.Enable = slices.DeleteFunc(p.Enable, func(c ir.Code) bool { return c == code })
		if !slices.Contains(p.Disable, code) {
			p.Disable = append(p.Disable, code)
		}
	}
}

// CompileProfile parses one profile value. v is the profile struct itself,
// already unified with the schema, e.g. the value at path profile.cpidr.
func CompileProfile(name string, v cue.Value) (*Profile, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	p := &Profile{Name: name}

	descVal := v.LookupPath(cue.ParsePath("description"))
	if !descVal.Exists() {
		return nil, &CompileError{
			Field:   "description",
			Message: "description is required",
			Pos:     v.Pos(),
		}
	}
	desc, err := descVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	p.Description = desc

	if ext := v.LookupPath(cue.ParsePath("extends")); ext.Exists() {
		if p.Extends, err = ext.String(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	if tv := v.LookupPath(cue.ParsePath("table")); tv.Exists() {
		if p.Table, err = tv.String(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	if sp := v.LookupPath(cue.ParsePath("speech")); sp.Exists() {
		if p.Speech, err = sp.Bool(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	if d := v.LookupPath(cue.ParsePath("distinct")); d.Exists() {
		if p.Distinct, err = d.Bool(); err != nil {
			return nil, formatCUEError(err)
		}
	}

	if p.Enable, err = parseCodes(v, "enable"); err != nil {
		return nil, err
	}
	if p.Disable, err = parseCodes(v, "disable"); err != nil {
		return nil, err
	}
	return p, nil
}

// parseCodes reads a list of rule codes. A missing list is empty.
func parseCodes(v cue.Value, field string) ([]ir.Code, error) {
	list := v.LookupPath(cue.ParsePath(field))
	if !list.Exists() {
		return nil, nil
	}
	iter, err := list.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var codes []ir.Code
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if n <= 0 || n > 999 {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("rule code %d is out of range 1-999", n),
				Pos:     iter.Value().Pos(),
			}
		}
		codes = append(codes, ir.Code(n))
	}
	return codes, nil
}

// CompileError represents a profile compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
