package scorer

import (
	"github.com/roach88/ideadensity/internal/density"
	"github.com/roach88/ideadensity/internal/ir"
)

// SentenceResult is the outcome of one sentence.
type SentenceResult struct {
	Index    int
	Sentence ir.Sentence
	Outcome  Outcome
	Ratio    density.Ratio

	// Annotations is aligned with Sentence.Words. It is nil unless the
	// scorer keeps detail, and always nil for OutcomeError.
	Annotations []ir.Annotation

	// Err is the adapter's TaggingError for OutcomeError and an
	// *EmptyInputError for OutcomeEmpty.
	Err error
}

// Result is the outcome of scoring one text.
//
// INVARIANTS:
//   - len(Sentences) equals the number of input sentences, in order
//   - Total is the sum of the ratios of the ok and empty sentences
type Result struct {
	Source    string
	Title     string
	TextID    string
	Table     string
	Speech    bool
	Sentences []SentenceResult
	Total     density.Ratio

	digest string
}

// Digest identifies the scoring outcome: rule table version, input
// identity, per-sentence outcomes and every word annotation. Two runs
// agree on the digest exactly when they agree on every decision.
func (r *Result) Digest() string { return r.digest }

// Density returns the whole-text density.
func (r *Result) Density() density.Density { return density.From(r.Total) }

// Mean returns the unweighted mean of the defined sentence densities.
func (r *Result) Mean() (float64, bool) {
	ratios := make([]density.Ratio, 0, len(r.Sentences))
	for _, s := range r.Sentences {
		if s.Outcome == OutcomeOK {
			ratios = append(ratios, s.Ratio)
		}
	}
	return density.Mean(ratios...)
}

// Count returns the number of sentences with outcome o.
func (r *Result) Count(o Outcome) int {
	n := 0
	for _, s := range r.Sentences {
		if s.Outcome == o {
			n++
		}
	}
	return n
}

// Failed returns the number of sentences rejected by the adapter.
func (r *Result) Failed() int { return r.Count(OutcomeError) }

// Errors returns the errors of the failed sentences, in order.
func (r *Result) Errors() []error {
	var errs []error
	for _, s := range r.Sentences {
		if s.Outcome == OutcomeError {
			errs = append(errs, s.Err)
		}
	}
	return errs
}

// Empty returns an *EmptyInputError when the whole text has no words.
func (r *Result) Empty() error {
	if r.Total.Words > 0 {
		return nil
	}
	return &EmptyInputError{Source: r.Source, Sentence: -1}
}

// HasDetail reports whether word annotations were kept.
func (r *Result) HasDetail() bool {
	for _, s := range r.Sentences {
		if s.Annotations != nil {
			return true
		}
	}
	return false
}
