// Package adapter turns the token streams of external NLP pipelines into
// validated ir sentences.
//
// The adapter is the only place where tagger output is trusted or
// rejected. Everything downstream (rule engine, word counter, formatters)
// assumes a well-formed ir.Sentence: one recognized category per word,
// every head inside the sentence and every head chain ending at a root.
package adapter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/ideadensity/internal/ir"
	"github.com/roach88/ideadensity/internal/lexicon"
)

// Token is one token as emitted by a tagger, before validation.
//
// Head refers to the ID of the head token when the sentence carries ids,
// and to its Index (or position) otherwise. A root token heads itself.
type Token struct {
	ID    *int
	Index *int
	Text  string
	Lemma string
	POS   string
	Tag   string
	Dep   string
	Head  int

	// fault is set by decoders for a token they could not read. The
	// sentence holding it is rejected; the rest of the document is not.
	fault *tokenFault
}

type tokenFault struct {
	code    TaggingErrorCode
	message string
}

func faulty(t Token, code TaggingErrorCode, format string, args ...any) Token {
	t.fault = &tokenFault{code: code, message: fmt.Sprintf(format, args...)}
	return t
}

// key returns the value heads refer to.
func (t Token) key(pos int, useIDs bool) int {
	if useIDs && t.ID != nil {
		return *t.ID
	}
	if t.Index != nil {
		return *t.Index
	}
	return pos
}

// Document is a decoded input file: sentences of raw tokens.
type Document struct {
	Source    string
	Title     string
	Sentences [][]Token
}

// Adapter validates and normalizes tagged sentences.
type Adapter struct {
	logger *slog.Logger
}

// New creates an Adapter that logs through logger.
// A nil logger uses slog.Default().
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{logger: logger}
}

// Text normalizes a whole document. errs has one entry per sentence, nil
// on success. A failed sentence is kept as an empty placeholder so
// sentence indices stay aligned with the input.
func (a *Adapter) Text(doc Document) (ir.Text, []error) {
	out := ir.Text{
		Source:    doc.Source,
		Title:     doc.Title,
		Sentences: make([]ir.Sentence, len(doc.Sentences)),
	}
	errs := make([]error, len(doc.Sentences))
	for i, tokens := range doc.Sentences {
		s, err := a.Sentence(i, tokens)
		if err != nil {
			a.logger.Debug("sentence rejected", "source", doc.Source, "sentence", i, "error", err)
			errs[i] = err
			s = ir.Sentence{Index: i}
		}
		out.Sentences[i] = s
	}
	return out, errs
}

// Sentence normalizes one sentence. The error, if any, is a *TaggingError
// locating the first offending token.
func (a *Adapter) Sentence(index int, tokens []Token) (ir.Sentence, error) {
	s := ir.Sentence{Index: index, Words: make([]ir.Word, len(tokens))}
	if len(tokens) == 0 {
		s.Words = nil
		return s, nil
	}

	for i, t := range tokens {
		if t.fault != nil {
			return ir.Sentence{}, tokenError(t.fault.code, index, i, t.Text, "%s", t.fault.message)
		}
	}

	useIDs := true
	for _, t := range tokens {
		if t.ID == nil {
			useIDs = false
			break
		}
	}
	positions := make(map[int]int, len(tokens))
	for i, t := range tokens {
		k := t.key(i, useIDs)
		if _, dup := positions[k]; dup {
			return ir.Sentence{}, tokenError(ErrCodeDuplicateID, index, i, t.Text, "token id %d is used twice", k)
		}
		positions[k] = i
	}

	for i, t := range tokens {
		cat, tag, err := categorize(index, i, t)
		if err != nil {
			return ir.Sentence{}, err
		}
		head, ok := positions[t.Head]
		if !ok {
			return ir.Sentence{}, tokenError(ErrCodeDanglingHead, index, i, t.Text, "head %d is not a token of the sentence", t.Head)
		}
		dep := strings.ToLower(t.Dep)
		if head == i && dep != "root" {
			return ir.Sentence{}, tokenError(ErrCodeHeadCycle, index, i, t.Text, "token heads itself but is labeled %q, not root", t.Dep)
		}
		s.Words[i] = ir.NewWord(i, t.Text, t.Lemma, cat, tag, dep, head)
	}

	if s.Root() < 0 {
		return ir.Sentence{}, &TaggingError{Code: ErrCodeNoRoot, Sentence: index, Token: -1, Message: "no token heads itself"}
	}
	if i, ok := findCycle(s); ok {
		return ir.Sentence{}, tokenError(ErrCodeHeadCycle, index, i, s.Words[i].Text, "head chain does not reach a root")
	}
	return s, nil
}

// categorize resolves the coarse category of a token. A UPOS label wins
// when present; otherwise it is derived from the Penn tag. AUX with a
// modal lemma or an MD tag is refined to MODAL.
func categorize(sentence, i int, t Token) (ir.Category, ir.Tag, error) {
	tag, ok := ir.ParseTag(t.Tag)
	if !ok {
		return 0, 0, tokenError(ErrCodeUnknownTag, sentence, i, t.Text, "unknown tag %q", t.Tag)
	}
	lemma := ir.Fold(t.Lemma)
	if lemma == "" || lemma == "_" {
		lemma = ir.Fold(t.Text)
	}

	if t.POS == "" || t.POS == "_" {
		if tag == ir.TagNone {
			return 0, 0, tokenError(ErrCodeMissingTag, sentence, i, t.Text, "token has no part of speech and no tag")
		}
		return ir.CategoryForTag(tag, strings.ToLower(t.Dep), lemma, lexicon.Auxiliary.Has), tag, nil
	}

	cat, ok := ir.ParseCategory(t.POS)
	if !ok {
		return 0, 0, tokenError(ErrCodeUnknownPOS, sentence, i, t.Text, "unknown part of speech %q", t.POS)
	}
	if cat == ir.Auxiliary && (tag == ir.TagMD || lexicon.Modal.Has(lemma)) {
		cat = ir.Modal
	}
	return cat, tag, nil
}

// findCycle returns the first word whose head chain never reaches a root.
func findCycle(s ir.Sentence) (int, bool) {
	n := len(s.Words)
	for i := range s.Words {
		j := i
		for steps := 0; !s.Words[j].IsRoot(); steps++ {
			if steps > n {
				return i, true
			}
			j = s.Words[j].Head
		}
	}
	return 0, false
}
