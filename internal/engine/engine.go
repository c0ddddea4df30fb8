package engine

import (
	"log/slog"
	"slices"

	"github.com/roach88/ideadensity/internal/ir"
)

// Engine applies a rule table to sentences.
//
// Thread-safety model:
//   - An Engine is immutable after New; Annotate, Decide and Rules are safe
//     from any goroutine.
//   - A Context belongs to one sentence evaluation and is never shared.
//
// INVARIANTS:
//   - enabled is a precedence-ordered subset of the table
//   - every Always rule of the table is in enabled
type Engine struct {
	table   *Table
	enabled []Rule
	speech  bool
	logger  *slog.Logger
}

type config struct {
	speech  bool
	enable  []ir.Code
	disable []ir.Code
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*config)

// WithSpeechMode turns the speech-mode rules (repetition, fillers) on.
func WithSpeechMode(on bool) Option {
	return func(c *config) {
		c.speech = on
	}
}

// WithEnable enables opt-in (or speech) rules by code.
func WithEnable(codes ...ir.Code) Option {
	return func(c *config) {
		c.enable = append(c.enable, codes...)
	}
}

// WithDisable disables default or speech rules by code.
// Disabling an always-on rule is a configuration error.
func WithDisable(codes ...ir.Code) Option {
	return func(c *config) {
		c.disable = append(c.disable, codes...)
	}
}

// WithLogger sets the logger used for rule traces (Debug level).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// New resolves the enabled rule set of table. Unknown codes, disabled
// mandatory rules and codes both enabled and disabled are reported as
// *ConfigError before any sentence is scored.
func New(table *Table, opts ...Option) (*Engine, error) {
	if table == nil {
		return nil, newConfigError(ErrCodeInvalidRule, 0, "nil rule table")
	}
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	for _, code := range cfg.enable {
		if _, ok := table.Lookup(code); !ok {
			return nil, newConfigError(ErrCodeUnknownRule, code, "cannot enable unknown rule")
		}
		if slices.Contains(cfg.disable, code) {
			return nil, newConfigError(ErrCodeConflictingOption, code, "rule is both enabled and disabled")
		}
	}
	for _, code := range cfg.disable {
		r, ok := table.Lookup(code)
		if !ok {
			return nil, newConfigError(ErrCodeUnknownRule, code, "cannot disable unknown rule")
		}
		if r.Mode == Always {
			return nil, newConfigError(ErrCodeMandatoryRule, code, "rule %q cannot be disabled", r.Name)
		}
	}

	e := &Engine{table: table, speech: cfg.speech, logger: cfg.logger}
	for _, r := range table.rules {
		if enabled(r, cfg) {
			e.enabled = append(e.enabled, r)
		}
	}
	return e, nil
}

func enabled(r Rule, cfg config) bool {
	if slices.Contains(cfg.disable, r.Code) {
		return false
	}
	if slices.Contains(cfg.enable, r.Code) {
		return true
	}
	switch r.Mode {
	case Always, Default:
		return true
	case Speech:
		return cfg.speech
	}
	return false
}

// Table returns the rule table the engine was built from.
func (e *Engine) Table() *Table {
	return e.table
}

// SpeechMode reports whether the engine runs in speech mode.
func (e *Engine) SpeechMode() bool {
	return e.speech
}

// Rules returns the enabled rules in precedence order.
func (e *Engine) Rules() []Rule {
	return slices.Clone(e.enabled)
}

// Enabled reports whether the rule with code is enabled.
func (e *Engine) Enabled(code ir.Code) bool {
	return slices.ContainsFunc(e.enabled, func(r Rule) bool { return r.Code == code })
}

// NewContext prepares the shared traversal context for s.
func (e *Engine) NewContext(s ir.Sentence) *Context {
	return NewContext(s, e.speech)
}

// Decide computes the proposition decision for word i. Word counting
// fields of the annotation are left zero.
func (e *Engine) Decide(c *Context, i int) ir.Annotation {
	base := Baseline(c.Word(i).POS)
	a := ir.Annotation{
		Proposition: base,
		Rule:        BaselineCode,
		Baseline:    base,
		Rationale:   BaselineRationale,
	}
	for _, r := range e.enabled {
		if !r.Match(c, i) {
			continue
		}
		a.Proposition = r.Decision
		a.Rule = r.Code
		a.Overrode = r.Decision != base
		a.Rationale = r.Rationale
		e.logger.Debug("rule matched",
			"sentence", c.sentence.Index, "word", i, "text", c.sentence.Words[i].Text,
			"rule", r.Code.String(), "proposition", r.Decision, "overrode", a.Overrode)
		break
	}
	return a
}

// Annotate decides every word of s, left to right. It never fails on a
// sentence produced by the adapter.
func (e *Engine) Annotate(s ir.Sentence) []ir.Annotation {
	c := e.NewContext(s)
	anns := make([]ir.Annotation, len(s.Words))
	for i := range s.Words {
		anns[i] = e.Decide(c, i)
	}
	FoldNegation(s, anns)
	return anns
}

// FoldNegation marks the head of every negator decided by the negation
// rule as Negated.
func FoldNegation(s ir.Sentence, anns []ir.Annotation) {
	for i, a := range anns {
		if a.Rule != CodeNegation {
			continue
		}
		if h := s.Words[i].Head; h != i {
			anns[h].Negated = true
		}
	}
}
