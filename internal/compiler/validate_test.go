package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/ideadensity/internal/engine"
	"github.com/roach88/ideadensity/internal/ir"
)

func codesOf(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    []string
	}{
		{
			name:    "valid",
			profile: Profile{Name: "p", Description: "d", Enable: []ir.Code{512}, Disable: []ir.Code{225}},
		},
		{
			name:    "empty description",
			profile: Profile{Name: "p", Description: "  "},
			want:    []string{ErrDescriptionEmpty},
		},
		{
			name:    "unknown rule",
			profile: Profile{Name: "p", Description: "d", Enable: []ir.Code{999}},
			want:    []string{ErrUnknownRule},
		},
		{
			name:    "mandatory rule disabled",
			profile: Profile{Name: "p", Description: "d", Disable: []ir.Code{engine.CodeAuxiliary}},
			want:    []string{ErrMandatoryRule},
		},
		{
			name:    "conflict",
			profile: Profile{Name: "p", Description: "d", Enable: []ir.Code{225}, Disable: []ir.Code{225}},
			want:    []string{ErrConflictingRule},
		},
		{
			name:    "duplicate",
			profile: Profile{Name: "p", Description: "d", Disable: []ir.Code{225, 225}},
			want:    []string{ErrDuplicateRule},
		},
		{
			name:    "opt-in disabled",
			profile: Profile{Name: "p", Description: "d", Disable: []ir.Code{engine.CodeComeGo}},
			want:    []string{ErrRedundantDisabled},
		},
		{
			name:    "speech rule enabled in speech mode",
			profile: Profile{Name: "p", Description: "d", Speech: true, Enable: []ir.Code{engine.CodeFiller}},
			want:    []string{ErrRedundantSpeech},
		},
		{
			name:    "all problems reported",
			profile: Profile{Name: "p", Enable: []ir.Code{999}, Disable: []ir.Code{engine.CodeArticle}},
			want:    []string{ErrDescriptionEmpty, ErrUnknownRule, ErrMandatoryRule},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.profile, engine.DefaultTable())
			if tt.want == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.want, codesOf(errs))
		})
	}
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Profile: "p", Field: "disable", Message: "rule 402 (auxiliary) is always on and cannot be disabled", Code: ErrMandatoryRule}
	assert.Equal(t, "[E103] p.disable: rule 402 (auxiliary) is always on and cannot be disabled", e.Error())
	assert.False(t, e.IsWarning())
	assert.True(t, ValidationError{Code: ErrRedundantSpeech}.IsWarning())
}

func TestAnalyzeExtends(t *testing.T) {
	tests := []struct {
		name     string
		profiles []Profile
		want     [][]string
	}{
		{"empty", nil, nil},
		{"chain", []Profile{{Name: "a"}, {Name: "b", Extends: "a"}, {Name: "c", Extends: "b"}}, nil},
		{"self", []Profile{{Name: "a", Extends: "a"}}, [][]string{{"a", "a"}}},
		{"pair", []Profile{{Name: "b", Extends: "a"}, {Name: "a", Extends: "b"}}, [][]string{{"a", "b", "a"}}},
		{
			"two cycles and a tail",
			[]Profile{
				{Name: "x", Extends: "y"}, {Name: "y", Extends: "z"}, {Name: "z", Extends: "x"},
				{Name: "tail", Extends: "x"},
				{Name: "m", Extends: "m"},
			},
			[][]string{{"m", "m"}, {"x", "y", "z", "x"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := AnalyzeExtends(tt.profiles)
			var got [][]string
			for _, w := range warnings {
				got = append(got, w.Path)
				assert.Contains(t, w.Message, "extends cycle")
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
