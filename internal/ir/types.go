package ir

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Word is one token of a parsed sentence. Words are immutable after
// adaptation; all rule logic reads them through a Sentence.
type Word struct {
	Index int      `json:"index" yaml:"index"`
	Text  string   `json:"text" yaml:"text"`   // NFC normalized surface form
	Lower string   `json:"-" yaml:"-"`         // case-folded Text, used for word-list lookups
	Lemma string   `json:"lemma" yaml:"lemma"` // lower-cased
	POS   Category `json:"pos" yaml:"pos"`
	Tag   Tag      `json:"tag" yaml:"tag"`
	Dep   string   `json:"dep" yaml:"dep"` // lower-cased dependency label
	Head  int      `json:"head" yaml:"head"`
}

// NewWord builds a Word with normalized text, lemma and dependency label.
// It performs no validation; see the adapter package for that.
func NewWord(index int, text, lemma string, pos Category, tag Tag, dep string, head int) Word {
	text = norm.NFC.String(text)
	if lemma == "" || lemma == "_" {
		lemma = text
	}
	return Word{
		Index: index,
		Text:  text,
		Lower: Fold(text),
		Lemma: Fold(norm.NFC.String(lemma)),
		POS:   pos,
		Tag:   tag,
		Dep:   strings.ToLower(dep),
		Head:  head,
	}
}

// Fold returns the case-folded form of s used for word-list matching.
// A Caser is stateful, so one is created per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// IsRoot reports whether the word heads its own sentence.
func (w Word) IsRoot() bool {
	return w.Head == w.Index
}

// Sentence is an ordered list of words with intra-sentence head links.
type Sentence struct {
	Index int    `json:"index" yaml:"index"`
	Words []Word `json:"words" yaml:"words"`
}

// Len returns the number of words.
func (s Sentence) Len() int {
	return len(s.Words)
}

// Root returns the index of the first root word, or -1.
func (s Sentence) Root() int {
	for i, w := range s.Words {
		if w.IsRoot() {
			return i
		}
	}
	return -1
}

// Children returns the indices of the words whose head is i, in order.
func (s Sentence) Children(i int) []int {
	var out []int
	for j, w := range s.Words {
		if j != i && w.Head == i {
			out = append(out, j)
		}
	}
	return out
}

// String joins the surface forms with single spaces.
func (s Sentence) String() string {
	parts := make([]string, len(s.Words))
	for i, w := range s.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Text is a whole document: ordered sentences plus where it came from.
type Text struct {
	Source    string     `json:"source,omitempty" yaml:"source,omitempty"`
	Title     string     `json:"title,omitempty" yaml:"title,omitempty"`
	Sentences []Sentence `json:"sentences" yaml:"sentences"`
}

// String joins all sentences with single spaces.
func (t Text) String() string {
	parts := make([]string, 0, len(t.Sentences))
	for _, s := range t.Sentences {
		if len(s.Words) > 0 {
			parts = append(parts, s.String())
		}
	}
	return strings.Join(parts, " ")
}

// Code is a numeric rule identifier, printed zero padded ("001", "201").
// Codes follow the CPIDR numbering where a CPIDR rule exists.
type Code int

// String renders the code as three digits.
func (c Code) String() string {
	return fmt.Sprintf("%03d", int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Code) UnmarshalText(b []byte) error {
	n, err := strconv.Atoi(string(b))
	if err != nil || n < 0 {
		return fmt.Errorf("invalid rule code %q", b)
	}
	*c = Code(n)
	return nil
}

// ParseCode parses a rule code such as "201" or "1".
func ParseCode(s string) (Code, error) {
	var c Code
	if err := c.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, err
	}
	return c, nil
}

// Annotation is the per-word outcome of scoring.
type Annotation struct {
	// Proposition is the final decision.
	Proposition bool `json:"proposition" yaml:"proposition"`
	// Rule is the code of the deciding rule (the baseline code when no
	// exception matched).
	Rule Code `json:"rule" yaml:"rule"`
	// Baseline is the decision of the category baseline.
	Baseline bool `json:"baseline" yaml:"baseline"`
	// Overrode is set when an exception changed the baseline decision.
	Overrode  bool   `json:"overrode,omitempty" yaml:"overrode,omitempty"`
	Rationale string `json:"rationale" yaml:"rationale"`
	// Negated marks a word whose predication is negated by an attached
	// negator; the negator itself is not a proposition.
	Negated bool `json:"negated,omitempty" yaml:"negated,omitempty"`

	Word     bool `json:"word" yaml:"word"`
	WordRule Code `json:"word_rule,omitempty" yaml:"word_rule,omitempty"`
}
