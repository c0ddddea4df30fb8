package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"NOUN", Noun, true},
		{"AUX", Auxiliary, true},
		{"CONJ", CoordConj, true},
		{"CCONJ", CoordConj, true},
		{"X", OtherPOS, true},
		{"noun", CategoryUnrecognized, false},
		{"", CategoryUnrecognized, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		in   string
		want Tag
		ok   bool
	}{
		{"VBZ", TagVBZ, true},
		{"PRP$", TagPRPS, true},
		{"PP$", TagPRPS, true},
		{"(", TagLRB, true},
		{"_SP", TagSP, true},
		{"", TagNone, true},
		{"_", TagNone, true},
		{"VBX", TagUnrecognized, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTag(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagRanges(t *testing.T) {
	assert.True(t, TagVBN.IsVerb())
	assert.False(t, TagMD.IsVerb())
	assert.True(t, TagNNPS.IsNoun())
	assert.True(t, TagJJR.IsAdjective())
	assert.True(t, TagWP.IsWh())
	assert.False(t, TagPRP.IsWh())
}

func TestCategoryForTag(t *testing.T) {
	isAux := func(l string) bool { return l == "have" || l == "be" }

	assert.Equal(t, Modal, CategoryForTag(TagMD, "aux", "can", isAux))
	assert.Equal(t, SubordConj, CategoryForTag(TagIN, "mark", "because", isAux))
	assert.Equal(t, Adposition, CategoryForTag(TagIN, "prep", "in", isAux))
	assert.Equal(t, Particle, CategoryForTag(TagTO, "aux", "to", isAux))
	assert.Equal(t, Adposition, CategoryForTag(TagTO, "prep", "to", isAux))
	assert.Equal(t, Auxiliary, CategoryForTag(TagVBZ, "aux", "have", isAux))
	assert.Equal(t, Verb, CategoryForTag(TagVBZ, "ROOT", "have", isAux))
	assert.Equal(t, Verb, CategoryForTag(TagVBZ, "aux", "keep", isAux))
	assert.Equal(t, Punctuation, CategoryForTag(TagComma, "punct", ",", isAux))
	assert.Equal(t, CategoryUnrecognized, CategoryForTag(TagNone, "", "", isAux))
}

func TestCategoryTextRoundTrip(t *testing.T) {
	data, err := json.Marshal(struct {
		POS Category `json:"pos"`
		Tag Tag      `json:"tag"`
		R   Code     `json:"r"`
	}{Modal, TagPRPS, 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pos":"MODAL","tag":"PRP$","r":"001"}`, string(data))

	var out struct {
		POS Category `json:"pos"`
		Tag Tag      `json:"tag"`
		R   Code     `json:"r"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, Modal, out.POS)
	assert.Equal(t, TagPRPS, out.Tag)
	assert.Equal(t, Code(1), out.R)

	_, err = json.Marshal(CategoryUnrecognized)
	assert.Error(t, err)
}
