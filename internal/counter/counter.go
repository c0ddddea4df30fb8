// Package counter decides which tokens count as words, the denominator
// of idea density.
//
// The counter runs over the same engine.Context as the rule engine, in
// the same left-to-right order, so a merged or excluded token is judged
// against exactly the sentence structure the proposition rules saw.
package counter

import (
	"unicode"

	"github.com/roach88/ideadensity/internal/engine"
	"github.com/roach88/ideadensity/internal/ir"
)

// Word-count codes. A counted word has code 0.
const (
	CodeNonLexical ir.Code = 1
	CodeNotAlnum   ir.Code = 2
	CodeNumberRun  ir.Code = 3
	CodeNumberSep  ir.Code = 4
	CodeRepetition ir.Code = 20
	CodeYouKnow    ir.Code = 634
	CodeReparandum ir.Code = 640
)

// Counter classifies tokens as words. It holds no per-sentence state and
// is safe for concurrent use.
type Counter struct {
	speech bool
}

// New creates a Counter. In speech mode repetitions, false starts and
// the second half of "you know" are not counted.
func New(speech bool) *Counter {
	return &Counter{speech: speech}
}

// SpeechMode reports whether speech-mode exclusions apply.
func (c *Counter) SpeechMode() bool { return c.speech }

// Classify reports whether word i is counted. When it is not, the code
// names the exclusion.
func (c *Counter) Classify(ctx *engine.Context, i int) (bool, ir.Code) {
	w := ctx.Word(i)
	switch {
	case w.POS.NonLexical():
		return false, CodeNonLexical
	case !startsAlnum(w.Text) || w.Tag == ir.TagSYM:
		return false, CodeNotAlnum
	case isNumber(ctx, i) && isNumber(ctx, i-1):
		return false, CodeNumberRun
	case isNumber(ctx, i) && ctx.Valid(i-1) && !startsAlnum(ctx.Word(i-1).Text) && isNumber(ctx, i-2):
		return false, CodeNumberSep
	}
	if !c.speech {
		return true, 0
	}
	switch {
	case ctx.Reparandum(i):
		return false, CodeReparandum
	case ctx.Repeated(i):
		return false, CodeRepetition
	case w.Lower == "know" && ctx.YouKnow(i):
		return false, CodeYouKnow
	}
	return true, 0
}

// Count returns the number of words in s.
func (c *Counter) Count(s ir.Sentence) int {
	ctx := engine.NewContext(s, c.speech)
	n := 0
	for i := range s.Words {
		if ok, _ := c.Classify(ctx, i); ok {
			n++
		}
	}
	return n
}

func isNumber(ctx *engine.Context, i int) bool {
	w := ctx.Word(i)
	return ctx.Valid(i) && (w.POS == ir.Numeral || w.Tag == ir.TagCD)
}

func startsAlnum(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return false
}
