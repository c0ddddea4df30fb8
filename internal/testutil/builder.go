// Package testutil provides deterministic helpers for tests and scenario
// fixtures.
package testutil

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ideadensity/internal/adapter"
	"github.com/roach88/ideadensity/internal/ir"
)

// ParseTokens parses the compact sentence notation used in tests and
// scenario files. Tokens are separated by whitespace; each token is
//
//	text/TAG/dep/head
//
// where head is the 0-based index of the head word (a root names its own
// index) and TAG is a Penn tag, optionally prefixed with a UPOS label as
// UPOS:TAG ("AUX:VBZ"). A lemma may be attached to the text as text=lemma.
// Fields are split from the right, so "./././5" is a period.
func ParseTokens(spec string) ([]adapter.Token, error) {
	fields := strings.Fields(spec)
	tokens := make([]adapter.Token, 0, len(fields))
	for i, f := range fields {
		parts := strings.Split(f, "/")
		if len(parts) < 4 {
			return nil, fmt.Errorf("token %d %q: want text/TAG/dep/head", i, f)
		}
		n := len(parts)
		text := strings.Join(parts[:n-3], "/")
		tag, dep, headStr := parts[n-3], parts[n-2], parts[n-1]

		head, err := strconv.Atoi(headStr)
		if err != nil {
			return nil, fmt.Errorf("token %d %q: bad head %q", i, f, headStr)
		}

		var lemma string
		if k := strings.LastIndex(text, "="); k > 0 && k < len(text)-1 {
			text, lemma = text[:k], text[k+1:]
		}

		var pos string
		if k := strings.Index(tag, ":"); k > 0 {
			if _, ok := ir.ParseCategory(tag[:k]); ok {
				pos, tag = tag[:k], tag[k+1:]
			}
		}

		tokens = append(tokens, adapter.Token{
			Text:  text,
			Lemma: lemma,
			POS:   pos,
			Tag:   tag,
			Dep:   dep,
			Head:  head,
		})
	}
	return tokens, nil
}

// Sentence builds a validated sentence from compact notation, failing the
// test on any parse or tagging error.
func Sentence(t testing.TB, index int, spec string) ir.Sentence {
	t.Helper()
	tokens, err := ParseTokens(spec)
	require.NoError(t, err)
	s, err := adapter.New(nil).Sentence(index, tokens)
	require.NoError(t, err)
	return s
}

// Document builds an unvalidated document from compact notation, one
// string per sentence.
func Document(source string, specs ...string) (adapter.Document, error) {
	doc := adapter.Document{Source: source, Sentences: make([][]adapter.Token, len(specs))}
	for i, spec := range specs {
		tokens, err := ParseTokens(spec)
		if err != nil {
			return adapter.Document{}, fmt.Errorf("sentence %d: %w", i, err)
		}
		doc.Sentences[i] = tokens
	}
	return doc, nil
}

// Text builds a validated text from compact notation.
func Text(t testing.TB, specs ...string) ir.Text {
	t.Helper()
	doc, err := Document("test", specs...)
	require.NoError(t, err)
	text, errs := adapter.New(nil).Text(doc)
	for i, err := range errs {
		require.NoError(t, err, "sentence %d", i)
	}
	return text
}
