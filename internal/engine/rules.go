package engine

import (
	"slices"

	"github.com/roach88/ideadensity/internal/ir"
	"github.com/roach88/ideadensity/internal/lexicon"
)

// DefaultVersion identifies the pinned rule table.
const DefaultVersion = "cpidr-dep/1"

// Codes of rules other packages refer to.
const (
	CodeNonLexical  ir.Code = 1
	CodeRepetition  ir.Code = 20
	CodeNegation    ir.Code = 50
	CodeFiller      ir.Code = 610
	CodeFillerLike  ir.Code = 632
	CodeYouKnow     ir.Code = 634
	CodeCoordChain  ir.Code = 240
	CodeMultiword   ir.Code = 520
	CodeComeGo      ir.Code = 512
	CodeModal       ir.Code = 220
	CodeAuxiliary   ir.Code = 402
	CodeLinking     ir.Code = 301
	CodeCopulaNoun  ir.Code = 310
	CodeEllipsis    ir.Code = 305
	CodeCardinal    ir.Code = 210
	CodePossessive  ir.Code = 255
	CodeQuantifier  ir.Code = 205
	CodeArticle     ir.Code = 201
	CodeInfinitival ir.Code = 510
)

// Baseline returns the category decision: verbs, adjectives, adverbs,
// adpositions and conjunctions bear a proposition; all other categories
// (nouns, pronouns, determiners, numerals, auxiliaries, modals,
// particles, interjections, punctuation) do not.
func Baseline(cat ir.Category) bool {
	switch cat {
	case ir.Verb, ir.Adjective, ir.Adverb, ir.Adposition, ir.CoordConj, ir.SubordConj:
		return true
	}
	return false
}

// BaselineRationale is recorded when no exception matched.
const BaselineRationale = "category baseline"

// DefaultTable returns the pinned rule table. Codes follow CPIDR 3
// numbering where CPIDR has an equivalent rule; the 240 and 500-series
// additions and 250/255/305 use dependency relations CPIDR lacks.
//
// The table is append-only: a new rule takes an unused precedence and a
// new table version; existing precedences never change.
func DefaultTable() *Table {
	t, err := NewTable(DefaultVersion, defaultRules()...)
	if err != nil {
		panic(err)
	}
	return t
}

func defaultRules() []Rule {
	return []Rule{
		{
			Code: CodeNonLexical, Name: "non-lexical", Precedence: 10, Decision: false, Mode: Always,
			Rationale: "punctuation, symbols and whitespace carry no proposition",
			Match: func(c *Context, i int) bool {
				return c.Word(i).POS.NonLexical()
			},
		},
		{
			Code: CodeRepetition, Name: "repetition", Precedence: 20, Decision: false, Mode: Speech,
			Rationale: "repeated word or false start counts once",
			Match: func(c *Context, i int) bool {
				return c.Disfluent(i)
			},
		},
		{
			Code: CodeFiller, Name: "filler-sentence", Precedence: 30, Decision: false, Mode: Speech,
			Rationale: "sentence made only of fillers is propositionless",
			Match: func(c *Context, i int) bool {
				return c.FillerOnly()
			},
		},
		{
			Code: CodeFillerLike, Name: "filler-like", Precedence: 40, Decision: false, Mode: Speech,
			Rationale: `"like" not after a form of be is a filler`,
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				return w.Lower == "like" && w.POS != ir.Verb && !lexicon.Be.Has(c.Lower(i-1))
			},
		},
		{
			Code: CodeYouKnow, Name: "filler-you-know", Precedence: 50, Decision: false, Mode: Speech,
			Rationale: `"you know" is a discourse filler`,
			Match: func(c *Context, i int) bool {
				return c.YouKnow(i)
			},
		},
		{
			Code: CodeNegation, Name: "negation", Precedence: 60, Decision: false, Mode: Always,
			Rationale: "negator modifies the polarity of its head's proposition",
			Match: func(c *Context, i int) bool {
				return c.IsNegator(i) && c.Head(i) != i
			},
		},
		{
			Code: 225, Name: "each-other", Precedence: 70, Decision: false, Mode: Default,
			Rationale: `"each other" is a reciprocal pronoun`,
			Match: func(c *Context, i int) bool {
				l := c.Lower(i)
				return (l == "each" && c.Lower(i+1) == "other") || (l == "other" && c.Lower(i-1) == "each")
			},
		},
		{
			Code: CodeArticle, Name: "article", Precedence: 80, Decision: false, Mode: Always,
			Rationale: "articles are not propositions",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				return lexicon.Article.Has(w.Lower) && (w.POS == ir.Determiner || w.Tag == ir.TagDT)
			},
		},
		{
			Code: 203, Name: "correlative-first", Precedence: 90, Decision: false, Mode: Default,
			Rationale: "first word of a correlative conjunction is counted with the second",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				if w.Dep == "preconj" {
					return true
				}
				return lexicon.Correlative.Has(w.Lower) && c.ScanForward(i, func(j int) bool {
					return c.Word(j).POS == ir.CoordConj && !lexicon.Correlative.Has(c.Lower(j))
				})
			},
		},
		{
			Code: 204, Name: "and-then", Precedence: 100, Decision: false, Mode: Default,
			Rationale: `"and then" and "or else" are single connectives`,
			Match: func(c *Context, i int) bool {
				l, prev := c.Lower(i), c.Lower(i-1)
				return (l == "then" && prev == "and") || (l == "else" && prev == "or")
			},
		},
		{
			Code: 214, Name: "if-then", Precedence: 110, Decision: false, Mode: Default,
			Rationale: `"if ... then" is one conjunction`,
			Match: func(c *Context, i int) bool {
				if c.Lower(i) != "then" || c.NextLexical(i) < 0 {
					return false
				}
				return c.ScanBack(i, func(j int) bool { return c.Lower(j) == "if" })
			},
		},
		{
			Code: 230, Name: "how-come", Precedence: 120, Decision: false, Mode: Default,
			Rationale: `"how come" and "how many" are one proposition`,
			Match: func(c *Context, i int) bool {
				l := c.Lower(i)
				return (l == "come" || l == "many") && c.Lower(i-1) == "how"
			},
		},
		{
			Code: 213, Name: "going-to", Precedence: 130, Decision: false, Mode: Default,
			Rationale: `"going to" before a verb marks future tense`,
			Match: func(c *Context, i int) bool {
				switch c.Lower(i) {
				case "going":
					return c.Lower(i+1) == "to" && c.IsVerbal(i+2)
				case "to":
					return c.Lower(i-1) == "going" && c.IsVerbal(i+1)
				}
				return false
			},
		},
		{
			Code: 212, Name: "negative-polarity", Precedence: 140, Decision: false, Mode: Default,
			Rationale: "negative-polarity item is counted with the earlier negator",
			Match: func(c *Context, i int) bool {
				return lexicon.NegativePolarity.Has(c.Lower(i)) && c.ScanBack(i, c.IsNegator)
			},
		},
		{
			Code: CodeCoordChain, Name: "coordination-chain", Precedence: 150, Decision: false, Mode: Always,
			Rationale: "only the first conjunction of a coordination chain counts",
			Match: func(c *Context, i int) bool {
				if !c.IsCoordinator(i) {
					return false
				}
				root := c.ChainRoot(c.Head(i))
				for j := 0; j < i; j++ {
					if c.IsCoordinator(j) && c.ChainRoot(c.Head(j)) == root {
						return true
					}
				}
				return false
			},
		},
		{
			Code: CodeMultiword, Name: "multiword-unit", Precedence: 160, Decision: false, Mode: Default,
			Rationale: "fixed multi-word expression counts once, on its first word",
			Match: func(c *Context, i int) bool {
				return c.InMultiwordUnit(i)
			},
		},
		{
			Code: 521, Name: "phrasal-particle", Precedence: 170, Decision: false, Mode: Default,
			Rationale: "particle of a phrasal verb is counted with the verb",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				return w.Dep == "prt" || (w.Tag == ir.TagRP && c.IsVerbal(w.Head))
			},
		},
		{
			Code: CodeComeGo, Name: "come-go-to", Precedence: 180, Decision: false, Mode: OptIn,
			Rationale: `"to"/"from" after come, go or a synonym forms one proposition with the verb`,
			Match: func(c *Context, i int) bool {
				l := c.Lower(i)
				if l != "to" && l != "from" {
					return false
				}
				return lexicon.ComeGo.HasAny(c.Lower(i-1), c.Lemma(i-1)) ||
					lexicon.ComeGo.HasAny(c.Lower(i-2), c.Lemma(i-2))
			},
		},
		{
			Code: CodeInfinitival, Name: "infinitival-to", Precedence: 190, Decision: false, Mode: Default,
			Rationale: "infinitival to is counted with its verb",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				if w.Lower != "to" {
					return false
				}
				if (w.Dep == "aux" || w.Dep == "mark") && c.IsVerbal(w.Head) {
					return true
				}
				return c.Word(i+1).Tag == ir.TagVB
			},
		},
		{
			Code: 511, Name: "for-to", Precedence: 200, Decision: false, Mode: Default,
			Rationale: `"for" introducing "for ... to VB" is a complementizer`,
			Match: func(c *Context, i int) bool {
				if c.Lower(i) != "for" {
					return false
				}
				h := c.Head(i)
				if c.Word(i).Dep == "mark" && h != i {
					for _, j := range c.Children(h) {
						if c.Lower(j) == "to" {
							return true
						}
					}
				}
				return c.ScanForward(i, func(j int) bool {
					return c.Lower(j) == "to" && c.Word(j+1).Tag == ir.TagVB
				})
			},
		},
		{
			Code: 206, Name: "final-to", Precedence: 210, Decision: false, Mode: Default,
			Rationale: `sentence-final "to" is stranded`,
			Match: func(c *Context, i int) bool {
				return c.Lower(i) == "to" && c.NextLexical(i) < 0
			},
		},
		{
			Code: CodeModal, Name: "modal", Precedence: 220, Decision: true, Mode: Always,
			Rationale: "modal verb carries its own modality proposition",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				return w.POS == ir.Modal || w.Tag == ir.TagMD
			},
		},
		{
			Code: CodeAuxiliary, Name: "auxiliary", Precedence: 230, Decision: false, Mode: Always,
			Rationale: "auxiliary is counted with the verb it supports",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				if w.Head == i || (w.Dep != "aux" && w.Dep != "auxpass") {
					return false
				}
				return w.POS == ir.Auxiliary || lexicon.Auxiliary.HasAny(w.Lower, w.Lemma)
			},
		},
		{
			Code: CodeLinking, Name: "linking-adjective", Precedence: 240, Decision: false, Mode: Always,
			Rationale: "linking verb is counted with its adjectival predicate",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				if !lexicon.Linking.HasAny(w.Lower, w.Lemma) {
					return false
				}
				if w.Dep == "cop" {
					return c.HeadWord(i).POS == ir.Adjective
				}
				for _, j := range c.Children(i) {
					cw := c.Word(j)
					if slices.Contains([]string{"acomp", "oprd", "xcomp"}, cw.Dep) && cw.POS == ir.Adjective {
						return true
					}
				}
				return false
			},
		},
		{
			Code: 302, Name: "be-prepositional", Precedence: 250, Decision: false, Mode: Default,
			Rationale: `"be" is counted with its prepositional predicate`,
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				if !lexicon.Be.HasAny(w.Lower, w.Lemma) {
					return false
				}
				if w.Dep == "cop" {
					return c.HasChild(w.Head, "case")
				}
				return !c.HasChild(i, "attr", "acomp") && c.HasChild(i, "prep")
			},
		},
		{
			Code: CodeCopulaNoun, Name: "copula-nominal", Precedence: 260, Decision: true, Mode: Always,
			Rationale: "copula with a nominal predicate is the predication",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				if !lexicon.Be.HasAny(w.Lower, w.Lemma) {
					return false
				}
				if w.Dep == "cop" {
					return isNominal(c.HeadWord(i).POS)
				}
				if j := c.Child(i, "attr"); j >= 0 {
					return isNominal(c.Word(j).POS)
				}
				return false
			},
		},
		{
			Code: CodeEllipsis, Name: "elliptical-copula", Precedence: 270, Decision: true, Mode: Always,
			Rationale: "auxiliary heading its clause stands for the elided predicate",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				if w.POS != ir.Auxiliary {
					return false
				}
				return w.Dep != "aux" && w.Dep != "auxpass" && w.Dep != "cop"
			},
		},
		{
			Code: 311, Name: "causative-adjective", Precedence: 280, Decision: false, Mode: Default,
			Rationale: "adjective complement of a causative verb is counted with the verb",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				if w.POS != ir.Adjective || w.Dep == "amod" {
					return false
				}
				h := c.HeadWord(i)
				if w.Head != i && lexicon.Causative.HasAny(h.Lower, h.Lemma) {
					return true
				}
				return c.ScanBack(i, func(j int) bool { return lexicon.Causative.HasAny(c.Lower(j), c.Lemma(j)) })
			},
		},
		{
			Code: 215, Name: "attributive-ordinal", Precedence: 290, Decision: false, Mode: Default,
			Rationale: "ordinal modifying a noun only orders it",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				return lexicon.Ordinal.Has(w.Lower) && w.Dep == "amod" && isNominal(c.HeadWord(i).POS)
			},
		},
		{
			Code: CodeCardinal, Name: "cardinal-modifier", Precedence: 300, Decision: false, Mode: Always,
			Rationale: "cardinal number modifying a noun bears no proposition",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				return w.POS == ir.Numeral && (w.Dep == "nummod" || w.Dep == "quantmod")
			},
		},
		{
			Code: 250, Name: "wh-word", Precedence: 310, Decision: true, Mode: Default,
			Rationale: "interrogative or relative word introduces a proposition",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				return lexicon.Wh.Has(w.Lower) && (w.Tag.IsWh() || w.POS == ir.Pronoun || w.POS == ir.Determiner)
			},
		},
		{
			Code: CodePossessive, Name: "possessive", Precedence: 320, Decision: true, Mode: Default,
			Rationale: "possession is a proposition",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				switch w.Tag {
				case ir.TagPOS, ir.TagPRPS, ir.TagWPS:
					return true
				}
				if w.Dep == "poss" && w.POS == ir.Pronoun {
					return true
				}
				return w.POS == ir.Particle && w.Dep == "case" && lexicon.Possessive.Has(w.Lower)
			},
		},
		{
			Code: CodeQuantifier, Name: "quantifier", Precedence: 330, Decision: true, Mode: Default,
			Rationale: "quantifying determiner is a proposition",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				return w.POS == ir.Determiner && lexicon.Quantifier.Has(w.Lower)
			},
		},
	}
}

func isNominal(cat ir.Category) bool {
	switch cat {
	case ir.Noun, ir.ProperNoun, ir.Pronoun, ir.Numeral:
		return true
	}
	return false
}
