package ir

import "fmt"

// Category is the coarse part-of-speech class of a word.
// Values follow the Universal Dependencies UPOS inventory with one
// refinement: MODAL splits modal auxiliaries (Penn MD) out of AUX.
//
// The zero value CategoryUnrecognized is never valid inside a Word.
type Category uint8

const (
	CategoryUnrecognized Category = iota
	Noun
	ProperNoun
	Pronoun
	Determiner
	Numeral
	Verb
	Auxiliary
	Modal
	Adjective
	Adverb
	Adposition
	CoordConj
	SubordConj
	Particle
	Interjection
	Punctuation
	Symbol
	Space
	OtherPOS
)

var categoryNames = [...]string{
	CategoryUnrecognized: "",
	Noun:                 "NOUN",
	ProperNoun:           "PROPN",
	Pronoun:              "PRON",
	Determiner:           "DET",
	Numeral:              "NUM",
	Verb:                 "VERB",
	Auxiliary:            "AUX",
	Modal:                "MODAL",
	Adjective:            "ADJ",
	Adverb:               "ADV",
	Adposition:           "ADP",
	CoordConj:            "CCONJ",
	SubordConj:           "SCONJ",
	Particle:             "PART",
	Interjection:         "INTJ",
	Punctuation:          "PUNCT",
	Symbol:               "SYM",
	Space:                "SPACE",
	OtherPOS:             "X",
}

var categoryByName = func() map[string]Category {
	m := make(map[string]Category, len(categoryNames)+1)
	for c, name := range categoryNames {
		if name != "" {
			m[name] = Category(c)
		}
	}
	// UD v1 and older spaCy models.
	m["CONJ"] = CoordConj
	return m
}()

// String returns the UPOS label, or "?" for an unrecognized category.
func (c Category) String() string {
	if int(c) < len(categoryNames) && categoryNames[c] != "" {
		return categoryNames[c]
	}
	return "?"
}

// Valid reports whether c is a recognized category.
func (c Category) Valid() bool {
	return c != CategoryUnrecognized && int(c) < len(categoryNames)
}

// NonLexical reports whether the category never carries meaning
// (punctuation, symbols, whitespace tokens).
func (c Category) NonLexical() bool {
	return c == Punctuation || c == Symbol || c == Space
}

// ParseCategory maps a UPOS label to a Category.
// Unknown labels return CategoryUnrecognized and false.
func ParseCategory(s string) (Category, bool) {
	c, ok := categoryByName[s]
	return c, ok
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	v, ok := ParseCategory(string(b))
	if !ok {
		return fmt.Errorf("unknown part of speech %q", b)
	}
	*c = v
	return nil
}

// Tag is a fine-grained Penn Treebank tag as produced by English taggers.
//
// TagNone means the tagger supplied no fine tag. TagUnrecognized is the
// result of parsing a label outside the closed set.
type Tag uint8

const (
	TagNone Tag = iota
	TagUnrecognized
	TagDollar   // $
	TagHash     // #
	TagOpenQ    // ``
	TagCloseQ   // ''
	TagComma    // ,
	TagLRB      // -LRB-
	TagRRB      // -RRB-
	TagPeriod   // .
	TagColon    // :
	TagADD
	TagAFX
	TagCC
	TagCD
	TagDT
	TagEX
	TagFW
	TagHYPH
	TagIN
	TagJJ
	TagJJR
	TagJJS
	TagLS
	TagMD
	TagNFP
	TagNN
	TagNNP
	TagNNPS
	TagNNS
	TagPDT
	TagPOS
	TagPRP
	TagPRPS // PRP$
	TagRB
	TagRBR
	TagRBS
	TagRP
	TagSYM
	TagTO
	TagUH
	TagVB
	TagVBD
	TagVBG
	TagVBN
	TagVBP
	TagVBZ
	TagWDT
	TagWP
	TagWPS // WP$
	TagWRB
	TagXX
	TagSP // _SP
)

var tagNames = [...]string{
	TagNone:         "",
	TagUnrecognized: "",
	TagDollar:       "$",
	TagHash:         "#",
	TagOpenQ:        "``",
	TagCloseQ:       "''",
	TagComma:        ",",
	TagLRB:          "-LRB-",
	TagRRB:          "-RRB-",
	TagPeriod:       ".",
	TagColon:        ":",
	TagADD:          "ADD",
	TagAFX:          "AFX",
	TagCC:           "CC",
	TagCD:           "CD",
	TagDT:           "DT",
	TagEX:           "EX",
	TagFW:           "FW",
	TagHYPH:         "HYPH",
	TagIN:           "IN",
	TagJJ:           "JJ",
	TagJJR:          "JJR",
	TagJJS:          "JJS",
	TagLS:           "LS",
	TagMD:           "MD",
	TagNFP:          "NFP",
	TagNN:           "NN",
	TagNNP:          "NNP",
	TagNNPS:         "NNPS",
	TagNNS:          "NNS",
	TagPDT:          "PDT",
	TagPOS:          "POS",
	TagPRP:          "PRP",
	TagPRPS:         "PRP$",
	TagRB:           "RB",
	TagRBR:          "RBR",
	TagRBS:          "RBS",
	TagRP:           "RP",
	TagSYM:          "SYM",
	TagTO:           "TO",
	TagUH:           "UH",
	TagVB:           "VB",
	TagVBD:          "VBD",
	TagVBG:          "VBG",
	TagVBN:          "VBN",
	TagVBP:          "VBP",
	TagVBZ:          "VBZ",
	TagWDT:          "WDT",
	TagWP:           "WP",
	TagWPS:          "WP$",
	TagWRB:          "WRB",
	TagXX:           "XX",
	TagSP:           "_SP",
}

var tagByName = func() map[string]Tag {
	m := make(map[string]Tag, len(tagNames)+4)
	for t, name := range tagNames {
		if name != "" {
			m[name] = Tag(t)
		}
	}
	m["("] = TagLRB
	m[")"] = TagRRB
	m["PP$"] = TagPRPS
	m["SP"] = TagSP
	return m
}()

// String returns the Penn label. TagNone renders as "" and
// TagUnrecognized as "?".
func (t Tag) String() string {
	if t == TagUnrecognized {
		return "?"
	}
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "?"
}

// ParseTag maps a Penn label to a Tag. The empty string and "_" yield
// TagNone; unknown labels yield TagUnrecognized and false.
func ParseTag(s string) (Tag, bool) {
	if s == "" || s == "_" {
		return TagNone, true
	}
	if t, ok := tagByName[s]; ok {
		return t, true
	}
	return TagUnrecognized, false
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	if t == TagUnrecognized || int(t) >= len(tagNames) {
		return nil, fmt.Errorf("invalid tag %d", t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(b []byte) error {
	v, ok := ParseTag(string(b))
	if !ok {
		return fmt.Errorf("unknown tag %q", b)
	}
	*t = v
	return nil
}

// IsVerb reports whether t is one of the VB* tags.
func (t Tag) IsVerb() bool {
	return t >= TagVB && t <= TagVBZ
}

// IsNoun reports whether t is one of the NN* tags.
func (t Tag) IsNoun() bool {
	return t >= TagNN && t <= TagNNS
}

// IsAdjective reports whether t is one of the JJ* tags.
func (t Tag) IsAdjective() bool {
	return t >= TagJJ && t <= TagJJS
}

// IsWh reports whether t is a wh-word tag (WDT, WP, WP$, WRB).
func (t Tag) IsWh() bool {
	return t >= TagWDT && t <= TagWRB
}

// CategoryForTag derives a coarse category from a Penn tag when the tagger
// supplied no UPOS. The dependency label and lemma disambiguate the tags
// whose category depends on their role: IN, TO and auxiliary verbs.
// isAux reports whether a lemma belongs to the auxiliary verb list.
func CategoryForTag(t Tag, dep, lemma string, isAux func(string) bool) Category {
	switch t {
	case TagCC:
		return CoordConj
	case TagCD:
		return Numeral
	case TagDT, TagPDT, TagWDT:
		return Determiner
	case TagEX, TagPRP, TagPRPS, TagWP, TagWPS:
		return Pronoun
	case TagFW, TagLS, TagADD, TagXX:
		return OtherPOS
	case TagIN:
		if dep == "mark" {
			return SubordConj
		}
		return Adposition
	case TagJJ, TagJJR, TagJJS, TagAFX:
		return Adjective
	case TagMD:
		return Modal
	case TagNN, TagNNS:
		return Noun
	case TagNNP, TagNNPS:
		return ProperNoun
	case TagPOS:
		return Particle
	case TagRB, TagRBR, TagRBS, TagWRB:
		return Adverb
	case TagRP:
		return Adposition
	case TagSYM, TagDollar, TagHash:
		return Symbol
	case TagTO:
		if dep == "aux" {
			return Particle
		}
		return Adposition
	case TagUH:
		return Interjection
	case TagVB, TagVBD, TagVBG, TagVBN, TagVBP, TagVBZ:
		if (dep == "aux" || dep == "auxpass" || dep == "aux:pass") && isAux != nil && isAux(lemma) {
			return Auxiliary
		}
		return Verb
	case TagOpenQ, TagCloseQ, TagComma, TagLRB, TagRRB, TagPeriod, TagColon, TagHYPH, TagNFP:
		return Punctuation
	case TagSP:
		return Space
	}
	return CategoryUnrecognized
}
