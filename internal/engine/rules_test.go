package engine

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ideadensity/internal/ir"
	"github.com/roach88/ideadensity/internal/testutil"
)

func never(*Context, int) bool { return false }

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, DefaultVersion, table.Version())
	assert.Equal(t, 33, table.Len())

	rules := table.Rules()
	for i := 1; i < len(rules); i++ {
		assert.Less(t, rules[i-1].Precedence, rules[i].Precedence, "rules must be precedence ordered")
	}
	for _, r := range rules {
		assert.NotEqual(t, BaselineCode, r.Code)
		assert.NotEmpty(t, r.Rationale, "rule %s", r.Code)
	}

	r, ok := table.Lookup(CodeAuxiliary)
	require.True(t, ok)
	assert.Equal(t, "auxiliary", r.Name)
	assert.Equal(t, Always, r.Mode)

	_, ok = table.Lookup(999)
	assert.False(t, ok)
}

func TestNewTable_Validation(t *testing.T) {
	ok := Rule{Code: 700, Name: "x", Precedence: 5, Match: never}

	tests := []struct {
		name  string
		rules []Rule
		code  ConfigErrorCode
	}{
		{"reserved code", []Rule{{Code: BaselineCode, Name: "b", Precedence: 1, Match: never}}, ErrCodeReservedCode},
		{"zero code", []Rule{{Name: "z", Precedence: 1, Match: never}}, ErrCodeInvalidRule},
		{"nil predicate", []Rule{{Code: 701, Name: "n", Precedence: 1}}, ErrCodeInvalidRule},
		{"no name", []Rule{{Code: 701, Precedence: 1, Match: never}}, ErrCodeInvalidRule},
		{"zero precedence", []Rule{{Code: 701, Name: "p", Match: never}}, ErrCodeInvalidRule},
		{"duplicate code", []Rule{ok, {Code: 700, Name: "y", Precedence: 6, Match: never}}, ErrCodeDuplicateCode},
		{"duplicate precedence", []Rule{ok, {Code: 701, Name: "y", Precedence: 5, Match: never}}, ErrCodeDuplicatePrecedence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable("test/1", tt.rules...)
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
			assert.Equal(t, tt.code, ConfigErrorCodeOf(err))
		})
	}

	_, err := NewTable("", ok)
	assert.Equal(t, ErrCodeInvalidRule, ConfigErrorCodeOf(err))
}

func TestNewTable_SortsByPrecedence(t *testing.T) {
	table, err := NewTable("test/1",
		Rule{Code: 702, Name: "late", Precedence: 20, Match: never},
		Rule{Code: 701, Name: "early", Precedence: 10, Match: never},
	)
	require.NoError(t, err)

	rules := table.Rules()
	assert.Equal(t, ir.Code(701), rules[0].Code)
	assert.Equal(t, ir.Code(702), rules[1].Code)
}

func TestTable_Extend(t *testing.T) {
	base := DefaultTable()
	extra := Rule{
		Code: 700, Name: "no-so", Precedence: 335, Decision: false, Mode: Default,
		Rationale: "test rule",
		Match:     func(c *Context, i int) bool { return c.Lower(i) == "so" },
	}

	ext, err := base.Extend("cpidr-dep/1+so", extra)
	require.NoError(t, err)
	assert.Equal(t, base.Len()+1, ext.Len())

	// Existing rules keep their relative order.
	baseRules := base.Rules()
	extRules := ext.Rules()
	for i := range baseRules {
		assert.Equal(t, baseRules[i].Code, extRules[i].Code)
	}

	_, err = base.Extend(DefaultVersion, extra)
	assert.Equal(t, ErrCodeInvalidRule, ConfigErrorCodeOf(err), "same version is rejected")

	clash := extra
	clash.Precedence = 10
	_, err = base.Extend("v2", clash)
	assert.Equal(t, ErrCodeDuplicatePrecedence, ConfigErrorCodeOf(err))
}

func TestNew_Options(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name string
		opts []Option
		code ConfigErrorCode
	}{
		{"enable unknown", []Option{WithEnable(999)}, ErrCodeUnknownRule},
		{"disable unknown", []Option{WithDisable(998)}, ErrCodeUnknownRule},
		{"disable mandatory", []Option{WithDisable(CodeAuxiliary)}, ErrCodeMandatoryRule},
		{"conflicting", []Option{WithEnable(CodeComeGo), WithDisable(CodeComeGo)}, ErrCodeConflictingOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(table, tt.opts...)
			require.Error(t, err)
			assert.Equal(t, tt.code, ConfigErrorCodeOf(err))
		})
	}

	_, err := New(nil)
	assert.True(t, IsConfigError(err))
}

func TestNew_EnabledSet(t *testing.T) {
	table := DefaultTable()

	written, err := New(table)
	require.NoError(t, err)
	assert.False(t, written.SpeechMode())
	assert.False(t, written.Enabled(CodeRepetition), "speech rules are off in written mode")
	assert.False(t, written.Enabled(CodeComeGo), "opt-in rules are off by default")
	assert.True(t, written.Enabled(CodeMultiword))
	assert.True(t, written.Enabled(CodeNonLexical))

	speech, err := New(table, WithSpeechMode(true), WithDisable(CodeFillerLike))
	require.NoError(t, err)
	assert.True(t, speech.Enabled(CodeRepetition))
	assert.False(t, speech.Enabled(CodeFillerLike))

	forced, err := New(table, WithEnable(CodeRepetition))
	require.NoError(t, err)
	assert.True(t, forced.Enabled(CodeRepetition), "speech rules can be enabled explicitly")

	rules := speech.Rules()
	for i := 1; i < len(rules); i++ {
		assert.Less(t, rules[i-1].Precedence, rules[i].Precedence)
	}
}

func TestMode(t *testing.T) {
	assert.Equal(t, "always", Always.String())
	assert.Equal(t, "opt-in", OptIn.String())
	assert.Equal(t, "mode(9)", Mode(9).String())
}

func TestBaseline(t *testing.T) {
	for _, c := range []ir.Category{ir.Verb, ir.Adjective, ir.Adverb, ir.Adposition, ir.CoordConj, ir.SubordConj} {
		assert.True(t, Baseline(c), c.String())
	}
	for _, c := range []ir.Category{ir.Noun, ir.ProperNoun, ir.Pronoun, ir.Determiner, ir.Numeral,
		ir.Auxiliary, ir.Modal, ir.Particle, ir.Interjection, ir.Punctuation, ir.CategoryUnrecognized} {
		assert.False(t, Baseline(c), c.String())
	}
}

func TestDecide_LogsRuleTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e, err := New(DefaultTable(), WithLogger(logger))
	require.NoError(t, err)

	s := testutil.Sentence(t, 0, "the/DT/det/1 dog/NN/ROOT/1")
	e.Annotate(s)

	assert.Contains(t, buf.String(), "rule matched")
	assert.Contains(t, buf.String(), "rule=201")
}

func TestContext_Helpers(t *testing.T) {
	s := testutil.Sentence(t, 0, "He/PRP/nsubj/1 left/VBD/ROOT/1 because/IN/prep/1 of/IN/pcomp/2 the/DT/det/5 rain/NN/pobj/3 ././punct/1")
	c := NewContext(s, false)

	assert.Equal(t, 7, c.Len())
	assert.Equal(t, []int{0, 2, 6}, c.Children(1))
	assert.Equal(t, 2, c.Child(1, "prep"))
	assert.Equal(t, -1, c.Child(1, "dobj"))
	assert.True(t, c.InMultiwordUnit(3))
	assert.False(t, c.InMultiwordUnit(2))
	assert.Equal(t, -1, c.NextLexical(5))
	assert.True(t, c.IsVerbal(1))
	assert.Equal(t, -1, c.Word(42).Index)
	assert.Equal(t, "", c.Lower(-1))
	assert.True(t, c.ScanBack(5, func(j int) bool { return c.Lower(j) == "he" }))
}

func TestContext_MultiwordUnitNeedsDependencyLink(t *testing.T) {
	tests := []struct {
		name string
		spec string
		word int
		want bool
	}{
		{
			name: "linked",
			spec: "He/PRP/nsubj/1 ran/VBD/ROOT/1 so/IN/mark/5 that/IN/mark/2 he/PRP/nsubj/5 won/VBD/advcl/1",
			word: 3,
			want: true,
		},
		{
			name: "first word heads the second",
			spec: "He/PRP/nsubj/1 left/VBD/ROOT/1 because/IN/prep/1 of/IN/pcomp/2 rain/NN/pobj/3",
			word: 3,
			want: true,
		},
		{
			name: "second word heads the first",
			spec: "He/PRP/nsubj/1 left/VBD/ROOT/1 because/IN/pcomp/3 of/IN/prep/1 rain/NN/pobj/3",
			word: 3,
			want: true,
		},
		{
			name: "separate constituents",
			spec: "I/PRP/nsubj/1 think/VBP/ROOT/1 so/RB/advmod/1 that/DT/nsubj/4 is/VBZ/ccomp/1 fine/JJ/acomp/4",
			word: 3,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContext(testutil.Sentence(t, 0, tt.spec), false)
			assert.Equal(t, tt.want, c.InMultiwordUnit(tt.word))
		})
	}
}

func TestContext_Repeated(t *testing.T) {
	tests := []struct {
		spec string
		want []bool
	}{
		{"go/VB/ROOT/0 go/VB/conj/0", []bool{true, false}},
		{"go/VB/ROOT/0 ,/,/punct/0 go/VB/conj/0", []bool{true, false, false}},
		{"I/PRP/nsubj/1 went/VBD/ROOT/1 ,/,/punct/1 I/PRP/nsubj/4 went/VBD/conj/1",
			[]bool{true, true, false, false, false}},
		{"a/DT/det/1 apple/NN/ROOT/1", []bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			c := NewContext(testutil.Sentence(t, 0, tt.spec), true)
			for i, want := range tt.want {
				assert.Equal(t, want, c.Repeated(i), "word %d", i)
			}
		})
	}
}
