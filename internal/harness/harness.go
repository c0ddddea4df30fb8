package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/ideadensity/internal/adapter"
	"github.com/roach88/ideadensity/internal/compiler"
	"github.com/roach88/ideadensity/internal/counter"
	"github.com/roach88/ideadensity/internal/engine"
	"github.com/roach88/ideadensity/internal/ir"
	"github.com/roach88/ideadensity/internal/scorer"
	"github.com/roach88/ideadensity/internal/store"
	"github.com/roach88/ideadensity/internal/testutil"
)

// Harness is the test execution engine. It scores scenarios against a
// profile registry and archives every run in a private in-memory store
// with deterministic ids and timestamps.
type Harness struct {
	registry *compiler.Registry
	table    *engine.Table
	logger   *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithRegistry resolves scenario profiles from r instead of the builtin
// profiles.
func WithRegistry(r *compiler.Registry) Option {
	return func(h *Harness) { h.registry = r }
}

// WithTable scores against t instead of the table each profile selects.
func WithTable(t *engine.Table) Option {
	return func(h *Harness) { h.table = t }
}

// WithLogger sets the logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a Harness.
func New(opts ...Option) (*Harness, error) {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.registry == nil {
		r, err := compiler.NewRegistry()
		if err != nil {
			return nil, err
		}
		h.registry = r
	}
	return h, nil
}

// Run executes a scenario with the builtin profiles.
func Run(scenario *Scenario) (*Result, error) {
	h, err := New()
	if err != nil {
		return nil, err
	}
	return h.Run(context.Background(), scenario)
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Resolve the profile and apply the scenario's overrides
//  2. Decode and score the input with word detail kept
//  3. Archive the run in a fresh in-memory store
//  4. Check the expect clause and evaluate the assertions
//
// An error is returned when the scenario cannot be executed at all; a
// failed expectation only marks the result as failed.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	profile, err := h.registry.Resolve(scenario.Profile)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	profile = profile.Override(scenario.Speech, scenario.Enable, scenario.Disable)

	table := h.table
	if table == nil {
		if table, err = profile.RuleTable(); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}
	eng, err := profile.Engine(table, engine.WithLogger(h.logger))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	sc, err := scorer.New(eng, counter.New(profile.Speech),
		scorer.Options{Detail: true, Distinct: profile.Distinct, Logger: h.logger})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	doc, err := decodeInput(scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	res, err := sc.ScoreDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	st, err := store.Open(":memory:",
		store.WithIDGenerator(testutil.NewSequentialIDGenerator("run")),
		store.WithClock(testutil.NewStepClock()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	rules := make([]ir.Code, 0, len(eng.Rules()))
	for _, r := range eng.Rules() {
		rules = append(rules, r.Code)
	}
	info := store.RunInfo{Profile: profile.Name, Table: table.Version(), Speech: profile.Speech, Rules: rules}
	if _, err := st.WriteRun(ctx, info, []*scorer.Result{res}); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := newResult(profile.Name, res)
	checkExpect(result, scenario.Expect, res)

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario executed",
		"scenario", scenario.Name,
		"profile", profile.Name,
		"pass", result.Pass,
		"density", result.Density,
	)
	return result, nil
}

func decodeInput(s *Scenario) (adapter.Document, error) {
	switch {
	case len(s.Input.Sentences) > 0:
		return testutil.Document(s.Name, s.Input.Sentences...)
	case s.Input.CoNLLU != "":
		doc, err := adapter.Decode(strings.NewReader(s.Input.CoNLLU), adapter.FormatCoNLLU)
		if err != nil {
			return adapter.Document{}, err
		}
		if doc.Source == "" {
			doc.Source = s.Name
		}
		return doc, nil
	default:
		return adapter.ReadFile(s.Input.File, "")
	}
}

func newResult(profile string, res *scorer.Result) *Result {
	r := NewResult()
	r.Profile = profile
	r.Table = res.Table
	r.Propositions = res.Total.Propositions
	r.Words = res.Total.Words
	r.Density = res.Total.String()

	for _, sr := range res.Sentences {
		out := SentenceOutcome{
			Index:        sr.Index,
			Outcome:      string(sr.Outcome),
			Propositions: sr.Ratio.Propositions,
			Words:        sr.Ratio.Words,
		}
		if sr.Outcome == scorer.OutcomeError {
			out.ErrorCode = "ERROR"
			var te *adapter.TaggingError
			if errors.As(sr.Err, &te) {
				out.ErrorCode = string(te.Code)
			}
		}
		r.Sentences = append(r.Sentences, out)

		for i, a := range sr.Annotations {
			w := sr.Sentence.Words[i]
			r.Trace = append(r.Trace, TraceEvent{
				Sentence:    sr.Index,
				Index:       i,
				Text:        w.Text,
				Tag:         w.Tag.String(),
				Proposition: a.Proposition,
				Rule:        a.Rule,
				Word:        a.Word,
				Negated:     a.Negated,
			})
		}
	}
	return r
}

func checkExpect(r *Result, expect *ExpectClause, res *scorer.Result) {
	if expect == nil {
		return
	}
	if expect.Propositions != nil && *expect.Propositions != r.Propositions {
		r.AddError(fmt.Sprintf("expect: propositions = %d, want %d", r.Propositions, *expect.Propositions))
	}
	if expect.Words != nil && *expect.Words != r.Words {
		r.AddError(fmt.Sprintf("expect: words = %d, want %d", r.Words, *expect.Words))
	}
	if expect.Density != "" && expect.Density != r.Density {
		r.AddError(fmt.Sprintf("expect: density = %s, want %s", r.Density, expect.Density))
	}
	if expect.Failed != nil && *expect.Failed != res.Failed() {
		r.AddError(fmt.Sprintf("expect: failed = %d, want %d", res.Failed(), *expect.Failed))
	}
}
