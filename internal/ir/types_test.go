package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWordNormalizes(t *testing.T) {
	w := NewWord(2, "Cafe\u0301", "_", ProperNoun, TagNNP, "NSUBJ", 3)

	assert.Equal(t, "Caf\u00e9", w.Text)
	assert.Equal(t, "caf\u00e9", w.Lower)
	assert.Equal(t, "caf\u00e9", w.Lemma, "missing lemma falls back to text")
	assert.Equal(t, "nsubj", w.Dep)
	assert.False(t, w.IsRoot())
}

func TestSentenceNavigation(t *testing.T) {
	s := sampleText().Sentences[0]

	assert.Equal(t, 1, s.Root())
	assert.Equal(t, []int{0}, s.Children(1))
	assert.Empty(t, s.Children(0))
	assert.Equal(t, "Dogs bark", s.String())
	assert.Equal(t, -1, Sentence{}.Root())
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "001", Code(1).String())
	assert.Equal(t, "634", Code(634).String())

	c, err := ParseCode(" 20 ")
	assert.NoError(t, err)
	assert.Equal(t, Code(20), c)

	_, err = ParseCode("x1")
	assert.Error(t, err)
}
