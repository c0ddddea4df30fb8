package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/ideadensity/internal/counter"
	"github.com/roach88/ideadensity/internal/engine"
	"github.com/roach88/ideadensity/internal/ir"
	"github.com/roach88/ideadensity/internal/scorer"
	"github.com/roach88/ideadensity/internal/testutil"
)

// createTestStore creates a store in a temp dir with sequential run ids
// and a stepping clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequentialIDGenerator("run")),
		WithClock(testutil.NewStepClock()),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newScorer(t *testing.T) *scorer.Scorer {
	t.Helper()
	e, err := engine.New(engine.DefaultTable())
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	s, err := scorer.New(e, counter.New(false), scorer.Options{})
	if err != nil {
		t.Fatalf("scorer.New() failed: %v", err)
	}
	return s
}

// scoreText scores compact token specs as one document.
func scoreText(t *testing.T, source string, specs ...string) *scorer.Result {
	t.Helper()
	text := testutil.Text(t, specs...)
	text.Source = source
	res, err := newScorer(t).Score(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}
	return res
}

const (
	dogsBark  = "Dogs/NNS/nsubj/1 bark/VBP/ROOT/1"
	dogsBarkL = "Dogs/NNS/nsubj/1 bark/VBP/ROOT/1 loudly/RB/advmod/1"
)

var testInfo = RunInfo{Profile: "cpidr", Table: engine.DefaultVersion, Rules: []ir.Code{1, 50, 201}}
