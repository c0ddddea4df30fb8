package engine

import (
	"slices"

	"github.com/roach88/ideadensity/internal/ir"
	"github.com/roach88/ideadensity/internal/lexicon"
)

// scanWindow bounds backward and forward searches for the far half of a
// discontinuous construction ("either ... or", "if ... then").
const scanWindow = 10

// Context is the read-only view of one sentence shared by the rule
// predicates and the word counter during a single left-to-right pass.
// Derived structure (children lists, multi-word unit membership, filler
// status) is computed once at construction.
type Context struct {
	sentence   ir.Sentence
	speech     bool
	children   [][]int
	mwu        []bool
	fillerOnly bool
}

// NewContext prepares a context for s.
func NewContext(s ir.Sentence, speech bool) *Context {
	n := len(s.Words)
	c := &Context{
		sentence: s,
		speech:   speech,
		children: make([][]int, n),
		mwu:      make([]bool, n),
	}
	for i, w := range s.Words {
		if w.Head != i && w.Head >= 0 && w.Head < n {
			c.children[w.Head] = append(c.children[w.Head], i)
		}
	}
	c.markMultiwordUnits()
	c.fillerOnly = c.computeFillerOnly()
	return c
}

// Len returns the number of words.
func (c *Context) Len() int { return len(c.sentence.Words) }

// Speech reports whether speech-mode rules apply.
func (c *Context) Speech() bool { return c.speech }

// Valid reports whether i indexes a word.
func (c *Context) Valid(i int) bool { return i >= 0 && i < len(c.sentence.Words) }

// Word returns word i. Out-of-range indices yield the zero Word, whose
// category is CategoryUnrecognized.
func (c *Context) Word(i int) ir.Word {
	if !c.Valid(i) {
		return ir.Word{Index: -1, Head: -1}
	}
	return c.sentence.Words[i]
}

// Lower returns the case-folded text of word i, or "" out of range.
func (c *Context) Lower(i int) string { return c.Word(i).Lower }

// Lemma returns the lemma of word i, or "" out of range.
func (c *Context) Lemma(i int) string { return c.Word(i).Lemma }

// Head returns the head index of word i, or -1 out of range.
func (c *Context) Head(i int) int { return c.Word(i).Head }

// HeadWord returns the head of word i. A root returns itself.
func (c *Context) HeadWord(i int) ir.Word { return c.Word(c.Head(i)) }

// Children returns the dependents of word i in sentence order.
func (c *Context) Children(i int) []int {
	if !c.Valid(i) {
		return nil
	}
	return c.children[i]
}

// Child returns the first dependent of i whose label is one of deps, or -1.
func (c *Context) Child(i int, deps ...string) int {
	for _, j := range c.Children(i) {
		if slices.Contains(deps, c.sentence.Words[j].Dep) {
			return j
		}
	}
	return -1
}

// HasChild reports whether i has a dependent labeled with one of deps.
func (c *Context) HasChild(i int, deps ...string) bool {
	return c.Child(i, deps...) >= 0
}

// IsPunct reports whether word i exists and is non-lexical.
func (c *Context) IsPunct(i int) bool {
	return c.Valid(i) && c.sentence.Words[i].POS.NonLexical()
}

// IsVerbal reports whether word i is a verb form of any kind.
func (c *Context) IsVerbal(i int) bool {
	w := c.Word(i)
	switch w.POS {
	case ir.Verb, ir.Auxiliary, ir.Modal:
		return true
	}
	return w.Tag.IsVerb()
}

// NextLexical returns the first lexical word after i, or -1.
func (c *Context) NextLexical(i int) int {
	for j := i + 1; j < c.Len(); j++ {
		if !c.IsPunct(j) {
			return j
		}
	}
	return -1
}

// ScanBack reports whether a word matching pred occurs within the
// scanWindow words before i, stopping at a sentence-final period.
func (c *Context) ScanBack(i int, pred func(j int) bool) bool {
	for j := i - 1; j >= 0 && j >= i-scanWindow; j-- {
		if c.sentence.Words[j].Tag == ir.TagPeriod {
			return false
		}
		if pred(j) {
			return true
		}
	}
	return false
}

// ScanForward is the forward counterpart of ScanBack.
func (c *Context) ScanForward(i int, pred func(j int) bool) bool {
	for j := i + 1; j < c.Len() && j <= i+scanWindow; j++ {
		if c.sentence.Words[j].Tag == ir.TagPeriod {
			return false
		}
		if pred(j) {
			return true
		}
	}
	return false
}

// IsNegator reports whether word i is a negation particle.
func (c *Context) IsNegator(i int) bool {
	w := c.Word(i)
	return c.Valid(i) && (w.Dep == "neg" || lexicon.Negator.Has(w.Lower))
}

// InMultiwordUnit reports whether word i is a non-initial member of a
// fixed multi-word expression, either marked by the parser ("fixed") or
// listed as a complex preposition whose words form one dependency-linked
// span.
func (c *Context) InMultiwordUnit(i int) bool {
	return c.Valid(i) && c.mwu[i]
}

func (c *Context) markMultiwordUnits() {
	for i, w := range c.sentence.Words {
		if w.Dep == "fixed" {
			c.mwu[i] = true
		}
	}
	for _, phrase := range lexicon.ComplexPreposition {
		parts := lexicon.SplitPhrase(phrase)
		for start := 0; start+len(parts) <= c.Len(); start++ {
			match := true
			for k, p := range parts {
				if c.sentence.Words[start+k].Lower != p {
					match = false
					break
				}
			}
			if !match || !c.linkedSpan(start, start+len(parts)) {
				continue
			}
			for k := 1; k < len(parts); k++ {
				c.mwu[start+k] = true
			}
		}
	}
}

// linkedSpan reports whether every word of [from, to) after the first is
// attached to the span: its head is another span word, or it heads one.
// Adjacent words of separate constituents, like "so" and "that" in "I
// think so that is fine", are not linked.
func (c *Context) linkedSpan(from, to int) bool {
	inSpan := func(j int) bool { return j >= from && j < to }
	for j := from + 1; j < to; j++ {
		if h := c.Head(j); h != j && inSpan(h) {
			continue
		}
		linked := false
		for i := from; i < to; i++ {
			if i != j && c.Head(i) == j {
				linked = true
				break
			}
		}
		if !linked {
			return false
		}
	}
	return true
}

// ChainRoot follows conj links up from i to the first conjunct of a
// coordination.
func (c *Context) ChainRoot(i int) int {
	for steps := 0; c.Valid(i) && c.sentence.Words[i].Dep == "conj" && steps < c.Len(); steps++ {
		h := c.sentence.Words[i].Head
		if h == i {
			break
		}
		i = h
	}
	return i
}

// IsCoordinator reports whether word i is a coordinating conjunction
// attached as cc.
func (c *Context) IsCoordinator(i int) bool {
	w := c.Word(i)
	return c.Valid(i) && w.Dep == "cc" && (w.POS == ir.CoordConj || w.Tag == ir.TagCC)
}

// Repeated reports whether word i is the discarded first half of a
// repetition: "A A", "A , A", or either word of the first "A B" in
// "A B , A B". The first A may be a fragment ("hesi- hesitation").
func (c *Context) Repeated(i int) bool {
	rep := func(a, b int) bool {
		return c.Valid(a) && c.Valid(b) && !c.IsPunct(a) && !c.IsPunct(b) &&
			lexicon.IsRepetition(c.Lower(a), c.Lower(b))
	}
	switch {
	case rep(i, i+1):
		return true
	case c.IsPunct(i+1) && rep(i, i+2):
		return true
	case c.IsPunct(i+2) && rep(i, i+3) && rep(i+1, i+4):
		return true
	case c.IsPunct(i+1) && rep(i-1, i+2) && rep(i, i+3):
		return true
	}
	return false
}

// Reparandum reports whether the parser marked word i as a false start.
func (c *Context) Reparandum(i int) bool {
	return c.Word(i).Dep == "reparandum"
}

// Disfluent reports whether word i is a repetition or a reparandum.
func (c *Context) Disfluent(i int) bool {
	return c.Repeated(i) || c.Reparandum(i)
}

// FillerOnly reports whether every lexical word of the sentence is a
// probable filler (interjection or filler word) and there is at least one.
func (c *Context) FillerOnly() bool { return c.fillerOnly }

func (c *Context) computeFillerOnly() bool {
	seen := false
	for i, w := range c.sentence.Words {
		if c.IsPunct(i) {
			continue
		}
		if w.POS != ir.Interjection && !lexicon.Filler.Has(w.Lower) {
			return false
		}
		seen = true
	}
	return seen
}

// YouKnow reports whether word i belongs to a discourse filler "you
// know": "you" immediately followed by "know", where "know" takes no
// complement of its own.
func (c *Context) YouKnow(i int) bool {
	you, know := i, i+1
	if c.Lower(i) == "know" {
		you, know = i-1, i
	}
	if c.Lower(you) != "you" || c.Lower(know) != "know" {
		return false
	}
	for _, j := range c.Children(know) {
		if j != you && !c.IsPunct(j) && c.Word(j).POS != ir.Interjection {
			return false
		}
	}
	return true
}
