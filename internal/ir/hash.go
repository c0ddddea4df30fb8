package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the encoding to change later.
const (
	DomainText    = "ideadensity/text/v1"
	DomainOutcome = "ideadensity/outcome/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func wordValue(w Word) Object {
	return NewObject(
		O("index", Int(w.Index)),
		O("text", String(w.Text)),
		O("lemma", String(w.Lemma)),
		O("pos", String(w.POS.String())),
		O("tag", String(w.Tag.String())),
		O("dep", String(w.Dep)),
		O("head", Int(w.Head)),
	)
}

// TextID identifies an input document by the content of its sentences.
// Source and Title are excluded: the same parse read from two files has
// the same identity.
func TextID(t Text) (string, error) {
	sentences := make(Array, len(t.Sentences))
	for i, s := range t.Sentences {
		words := make(Array, len(s.Words))
		for j, w := range s.Words {
			words[j] = wordValue(w)
		}
		sentences[i] = words
	}
	canonical, err := MarshalCanonical(NewObject(O("sentences", sentences)))
	if err != nil {
		return "", fmt.Errorf("TextID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainText, canonical), nil
}

// AnnotationDigest identifies a scoring outcome: the rule table version,
// the input identity, each sentence's outcome label and its annotations.
// outcomes and annotations are indexed by sentence.
func AnnotationDigest(table, textID string, outcomes []string, annotations [][]Annotation) (string, error) {
	if len(outcomes) != len(annotations) {
		return "", fmt.Errorf("AnnotationDigest: %d outcomes for %d sentences", len(outcomes), len(annotations))
	}
	sentences := make(Array, len(outcomes))
	for i, outcome := range outcomes {
		anns := make(Array, len(annotations[i]))
		for j, a := range annotations[i] {
			anns[j] = NewObject(
				O("p", Bool(a.Proposition)),
				O("rule", Int(a.Rule)),
				O("w", Bool(a.Word)),
				O("wrule", Int(a.WordRule)),
				O("neg", Bool(a.Negated)),
			)
		}
		sentences[i] = NewObject(O("outcome", String(outcome)), O("words", anns))
	}
	canonical, err := MarshalCanonical(NewObject(
		O("table", String(table)),
		O("text_id", String(textID)),
		O("sentences", sentences),
	))
	if err != nil {
		return "", fmt.Errorf("AnnotationDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainOutcome, canonical), nil
}

// MustTextID is like TextID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTextID(t Text) string {
	id, err := TextID(t)
	if err != nil {
		panic(err)
	}
	return id
}
