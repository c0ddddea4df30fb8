package engine

import (
	"slices"

	"github.com/roach88/ideadensity/internal/ir"
	"github.com/roach88/ideadensity/internal/lexicon"
)

// DEPIDVersion identifies the dependency-counting table.
const DEPIDVersion = "depid/1"

// Codes of the dependency-counting table.
const (
	CodeFirstPersonSubject ir.Code = 701
	CodeExcludedDet        ir.Code = 702
	CodeExpletiveSubject   ir.Code = 703
	CodeCoordinator        ir.Code = 704
	CodePropositionRel     ir.Code = 710
	CodeOtherRel           ir.Code = 790
)

// propositionRelations are the dependency labels that introduce a
// proposition when a table counts dependencies instead of words.
var propositionRelations = []string{
	"advcl", "advmod", "amod", "appos", "cc", "csubj", "csubjpass", "det",
	"neg", "npadvmod", "nsubj", "nsubjpass", "nummod", "poss", "predet",
	"preconj", "prep", "quantmod", "tmod", "vmod",
}

// DEPIDTable returns the dependency-counting table: a word bears a
// proposition when its relation to its head is one of a fixed set of
// labels. Every word is decided by a rule, so the category baseline never
// applies. Codes live in the 700 range, clear of the CPIDR numbering.
func DEPIDTable() *Table {
	t, err := NewTable(DEPIDVersion, depidRules()...)
	if err != nil {
		panic(err)
	}
	return t
}

func depidRules() []Rule {
	return []Rule{
		{
			Code: CodeFirstPersonSubject, Name: "i-you-subject", Precedence: 10, Decision: false, Mode: Default,
			Rationale: `sentence whose root has "I" or "you" as subject is not counted`,
			Match: func(c *Context, i int) bool {
				for j := range c.Len() {
					w := c.Word(j)
					if (w.Lower == "i" || w.Lower == "you") && w.Dep == "nsubj" && c.HeadWord(j).IsRoot() {
						return true
					}
				}
				return false
			},
		},
		{
			Code: CodeExcludedDet, Name: "article-determiner", Precedence: 20, Decision: false, Mode: Default,
			Rationale: "an article attached as det is not a proposition",
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				return w.Dep == "det" && lexicon.Article.Has(w.Lower)
			},
		},
		{
			Code: CodeExpletiveSubject, Name: "it-this-subject", Precedence: 30, Decision: false, Mode: Default,
			Rationale: `"it" or "this" as subject is not a proposition`,
			Match: func(c *Context, i int) bool {
				w := c.Word(i)
				return w.Dep == "nsubj" && (w.Lower == "it" || w.Lower == "this")
			},
		},
		{
			Code: CodeCoordinator, Name: "coordinator", Precedence: 40, Decision: false, Mode: Default,
			Rationale: "a coordinating conjunction attached as cc is not a proposition",
			Match: func(c *Context, i int) bool {
				return c.Word(i).Dep == "cc"
			},
		},
		{
			Code: CodePropositionRel, Name: "proposition-relation", Precedence: 50, Decision: true, Mode: Always,
			Rationale: "relation introduces a proposition",
			Match: func(c *Context, i int) bool {
				return slices.Contains(propositionRelations, c.Word(i).Dep)
			},
		},
		{
			Code: CodeOtherRel, Name: "other-relation", Precedence: 60, Decision: false, Mode: Always,
			Rationale: "relation does not introduce a proposition",
			Match: func(c *Context, i int) bool {
				return true
			},
		},
	}
}

// LookupTable returns a pinned table by version. The empty version names
// the default table.
func LookupTable(version string) (*Table, bool) {
	switch version {
	case "", DefaultVersion:
		return DefaultTable(), true
	case DEPIDVersion:
		return DEPIDTable(), true
	}
	return nil, false
}

// TableVersions lists the versions LookupTable knows.
func TableVersions() []string {
	return []string{DefaultVersion, DEPIDVersion}
}
