package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ideadensity/internal/ir"
)

// TraceSnapshot captures the decisions of a scenario execution.
type TraceSnapshot struct {
	ScenarioName string
	Result       *Result
}

// Marshal returns the snapshot as canonical JSON.
func (s TraceSnapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonical())
}

// toCanonical converts the snapshot to an ir.Value so it serializes as
// canonical JSON: sorted keys, no insignificant whitespace.
func (s TraceSnapshot) toCanonical() ir.Value {
	sentences := make(ir.Array, len(s.Result.Sentences))
	for i, so := range s.Result.Sentences {
		obj := ir.NewObject(
			ir.O("index", ir.Int(so.Index)),
			ir.O("outcome", ir.String(so.Outcome)),
			ir.O("propositions", ir.Int(so.Propositions)),
			ir.O("words", ir.Int(so.Words)),
		)
		if so.ErrorCode != "" {
			obj["error_code"] = ir.String(so.ErrorCode)
		}
		sentences[i] = obj
	}

	trace := make(ir.Array, len(s.Result.Trace))
	for i, ev := range s.Result.Trace {
		obj := ir.NewObject(
			ir.O("sentence", ir.Int(ev.Sentence)),
			ir.O("index", ir.Int(ev.Index)),
			ir.O("text", ir.String(ev.Text)),
			ir.O("tag", ir.String(ev.Tag)),
			ir.O("proposition", ir.Bool(ev.Proposition)),
			ir.O("rule", ir.Int(ev.Rule)),
			ir.O("word", ir.Bool(ev.Word)),
		)
		if ev.Negated {
			obj["negated"] = ir.Bool(true)
		}
		trace[i] = obj
	}

	return ir.NewObject(
		ir.O("scenario", ir.String(s.ScenarioName)),
		ir.O("profile", ir.String(s.Result.Profile)),
		ir.O("table", ir.String(s.Result.Table)),
		ir.O("propositions", ir.Int(s.Result.Propositions)),
		ir.O("words", ir.Int(s.Result.Words)),
		ir.O("density", ir.String(s.Result.Density)),
		ir.O("sentences", sentences),
		ir.O("trace", trace),
	)
}

// RunWithGolden executes a scenario and compares its decisions against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. A golden mismatch fails t.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against the golden file
// named scenarioName, without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := TraceSnapshot{ScenarioName: scenarioName, Result: result}.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
