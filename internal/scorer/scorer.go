// Package scorer runs the proposition rules and the word counter over a
// text and aggregates the per-sentence ratios.
//
// Each sentence is scored in a single left-to-right pass: the engine and
// the counter share one engine.Context, so the word and proposition
// decisions for a token are always taken against the same structure.
// Sentences are independent and may be scored concurrently; the result
// does not depend on the number of workers.
package scorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/ideadensity/internal/adapter"
	"github.com/roach88/ideadensity/internal/counter"
	"github.com/roach88/ideadensity/internal/density"
	"github.com/roach88/ideadensity/internal/engine"
	"github.com/roach88/ideadensity/internal/ir"
)

// Outcome labels the result of one sentence.
type Outcome string

const (
	OutcomeOK    Outcome = "ok"
	OutcomeEmpty Outcome = "empty"
	OutcomeError Outcome = "error"
)

// EmptyInputError reports a sentence, or a whole text when Sentence is
// -1, with no countable words. Its density is undefined.
type EmptyInputError struct {
	Source   string
	Sentence int
}

// Error implements the error interface.
func (e *EmptyInputError) Error() string {
	if e.Sentence < 0 {
		return fmt.Sprintf("%s: no words to score, density undefined", e.Source)
	}
	return fmt.Sprintf("%s: sentence %d has no words, density undefined", e.Source, e.Sentence)
}

// IsEmptyInput checks if an error is an EmptyInputError.
func IsEmptyInput(err error) bool {
	var ee *EmptyInputError
	return errors.As(err, &ee)
}

// Observer receives every scored result. The metrics package implements
// it; ObserveSentence may be called from several goroutines.
type Observer interface {
	ObserveSentence(SentenceResult)
	ObserveText(*Result)
}

// Options configures a Scorer.
type Options struct {
	// Workers is the number of sentences scored concurrently. Values
	// below 2 score sequentially.
	Workers int

	// Detail keeps per-word annotations in the result. Without it only
	// the counts survive (the digest always covers the annotations).
	Detail bool

	// Distinct counts each proposition-bearing relation once per text:
	// a word whose (text, relation, head text) triple already bore a
	// proposition earlier in the text is recorded as a repeat instead.
	Distinct bool

	// Guard, when set, is consulted by ScoreDocument before scoring.
	Guard *adapter.Guard

	Observer Observer
	Logger   *slog.Logger
}

// CodeRepeatedRelation marks a proposition dropped by Options.Distinct.
const CodeRepeatedRelation ir.Code = 720

// RepeatedRationale is recorded with CodeRepeatedRelation.
const RepeatedRationale = "relation already counted earlier in the text"

// Scorer combines a rule engine and a word counter.
type Scorer struct {
	engine  *engine.Engine
	counter *counter.Counter
	adapter *adapter.Adapter
	opts    Options
	logger  *slog.Logger
}

// New creates a Scorer. The counter must agree with the engine on
// speech mode.
func New(eng *engine.Engine, cnt *counter.Counter, opts Options) (*Scorer, error) {
	if eng == nil || cnt == nil {
		return nil, errors.New("scorer: engine and counter are required")
	}
	if eng.SpeechMode() != cnt.SpeechMode() {
		return nil, fmt.Errorf("scorer: engine speech mode %t does not match counter speech mode %t",
			eng.SpeechMode(), cnt.SpeechMode())
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{
		engine:  eng,
		counter: cnt,
		adapter: adapter.New(logger),
		opts:    opts,
		logger:  logger,
	}, nil
}

// Engine returns the rule engine.
func (s *Scorer) Engine() *engine.Engine { return s.engine }

// Sentence scores one well-formed sentence.
func (s *Scorer) Sentence(sent ir.Sentence) ([]ir.Annotation, density.Ratio) {
	ctx := s.engine.NewContext(sent)
	anns := make([]ir.Annotation, len(sent.Words))
	var r density.Ratio
	for i := range sent.Words {
		a := s.engine.Decide(ctx, i)
		a.Word, a.WordRule = s.counter.Classify(ctx, i)
		if a.Proposition {
			r.Propositions++
		}
		if a.Word {
			r.Words++
		}
		anns[i] = a
	}
	engine.FoldNegation(sent, anns)
	return anns, r
}

// Score scores every sentence of text. errs, if not nil, is aligned with
// the sentences and carries the adapter's rejection of each one; a
// rejected sentence gets OutcomeError and is left out of the totals.
// Score fails only on misaligned errs or a cancelled ctx.
func (s *Scorer) Score(ctx context.Context, text ir.Text, errs []error) (*Result, error) {
	if errs != nil && len(errs) != len(text.Sentences) {
		return nil, fmt.Errorf("scorer: %d adapter errors for %d sentences", len(errs), len(text.Sentences))
	}
	textID, err := ir.TextID(text)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Source:    text.Source,
		Title:     text.Title,
		TextID:    textID,
		Table:     s.engine.Table().Version(),
		Speech:    s.engine.SpeechMode(),
		Sentences: make([]SentenceResult, len(text.Sentences)),
	}
	full := make([][]ir.Annotation, len(text.Sentences))

	scoreOne := func(i int) {
		sent := text.Sentences[i]
		sr := SentenceResult{Index: i, Sentence: sent}
		if errs != nil && errs[i] != nil {
			sr.Outcome = OutcomeError
			sr.Err = errs[i]
		} else {
			anns, ratio := s.Sentence(sent)
			full[i] = anns
			sr.Ratio = ratio
			sr.Outcome = OutcomeOK
			if ratio.Words == 0 {
				sr.Outcome = OutcomeEmpty
				sr.Err = &EmptyInputError{Source: text.Source, Sentence: i}
			}
			if s.opts.Detail {
				sr.Annotations = anns
			}
		}
		res.Sentences[i] = sr
	}

	if s.opts.Workers < 2 {
		for i := range text.Sentences {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			scoreOne(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.opts.Workers)
		for i := range text.Sentences {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				scoreOne(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	if s.opts.Distinct {
		dropRepeats(text, full, res.Sentences)
	}

	outcomes := make([]string, len(res.Sentences))
	for i, sr := range res.Sentences {
		if s.opts.Observer != nil {
			s.opts.Observer.ObserveSentence(sr)
		}
		s.logger.Debug("sentence scored", "source", text.Source, "sentence", i,
			"outcome", sr.Outcome, "propositions", sr.Ratio.Propositions, "words", sr.Ratio.Words)
		outcomes[i] = string(sr.Outcome)
		if sr.Outcome != OutcomeError {
			res.Total = res.Total.Add(sr.Ratio)
		}
	}
	res.digest, err = ir.AnnotationDigest(res.Table, textID, outcomes, full)
	if err != nil {
		return nil, err
	}

	if s.opts.Observer != nil {
		s.opts.Observer.ObserveText(res)
	}
	s.logger.Debug("text scored", "source", text.Source, "sentences", len(res.Sentences),
		"failed", res.Failed(), "propositions", res.Total.Propositions, "words", res.Total.Words,
		"density", res.Total.String())
	return res, nil
}

// dropRepeats keeps the first proposition of every (text, relation, head
// text) triple in sentence order and re-decides the later ones. It runs
// after all sentences are scored, so the outcome does not depend on the
// number of workers.
func dropRepeats(text ir.Text, full [][]ir.Annotation, results []SentenceResult) {
	type triple struct{ text, dep, head string }
	seen := make(map[triple]bool)
	for i, anns := range full {
		words := text.Sentences[i].Words
		for j := range anns {
			if !anns[j].Proposition {
				continue
			}
			w := words[j]
			key := triple{w.Text, w.Dep, words[w.Head].Text}
			if !seen[key] {
				seen[key] = true
				continue
			}
			anns[j].Proposition = false
			anns[j].Rule = CodeRepeatedRelation
			anns[j].Overrode = anns[j].Baseline
			anns[j].Rationale = RepeatedRationale
			results[i].Ratio.Propositions--
		}
	}
}

// ScoreDocument validates a decoded document, checks its language when a
// guard is configured, and scores it.
func (s *Scorer) ScoreDocument(ctx context.Context, doc adapter.Document) (*Result, error) {
	text, errs := s.adapter.Text(doc)
	if s.opts.Guard != nil {
		if err := s.opts.Guard.Check(text); err != nil {
			return nil, err
		}
	}
	return s.Score(ctx, text, errs)
}

// ScoreFile reads, validates and scores one input file. An empty format
// is inferred from the file extension.
func (s *Scorer) ScoreFile(ctx context.Context, path string, format adapter.Format) (*Result, error) {
	doc, err := adapter.ReadFile(path, format)
	if err != nil {
		return nil, err
	}
	return s.ScoreDocument(ctx, doc)
}
