package adapter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCoNLLU = `# newdoc id = story-1
# sent_id = 1
# text = She didn't go.
1	She	she	PRON	PRP	_	4	nsubj	_	_
2-3	didn't	_	_	_	_	_	_	_	_
2	did	do	AUX	VBD	_	4	aux	_	_
3	n't	not	PART	RB	_	4	advmod	_	_
4	go	go	VERB	VB	_	0	root	_	_
5	.	.	PUNCT	.	_	4	punct	_	_

# sent_id = 2
1	It	it	PRON	PRP	_	3	nsubj:pass	_	_
2	was	be	AUX	VBD	_	3	aux:pass	_	_
3	eaten	eat	VERB	VBN	_	0	root	_	_
3.1	x	_	_	_	_	_	_	_	_
`

func TestDecode_CoNLLU(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleCoNLLU), FormatCoNLLU)
	require.NoError(t, err)

	assert.Equal(t, "story-1", doc.Title)
	require.Len(t, doc.Sentences, 2)
	require.Len(t, doc.Sentences[0], 5, "range lines are skipped")
	require.Len(t, doc.Sentences[1], 3, "empty nodes are skipped")

	root := doc.Sentences[0][3]
	assert.Equal(t, "go", root.Text)
	assert.Equal(t, 4, root.Head, "head 0 becomes the token's own id")
	assert.Equal(t, "auxpass", doc.Sentences[1][1].Dep)
	assert.Equal(t, "nsubj", doc.Sentences[1][0].Dep)

	text, errs := New(nil).Text(doc)
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 3, text.Sentences[0].Root())
	assert.Equal(t, 3, text.Sentences[0].Words[0].Head)
}

func TestDecode_CoNLLUTitleComment(t *testing.T) {
	in := "# newdoc id = d\n# title = A Title\n1\tHi\thi\tINTJ\tUH\t_\t0\troot\t_\t_\n"
	doc, err := Decode(strings.NewReader(in), FormatCoNLLU)
	require.NoError(t, err)
	assert.Equal(t, "A Title", doc.Title)
	assert.Len(t, doc.Sentences, 1)
}

func TestDecode_CoNLLUBadTokensRejectOnlyTheirSentence(t *testing.T) {
	good := "1\tDogs\tdog\tNOUN\tNNS\t_\t2\tnsubj\t_\t_\n2\tbark\tbark\tVERB\tVBP\t_\t0\troot\t_\t_\n"
	tests := []struct {
		name  string
		bad   string
		code  TaggingErrorCode
		token int
	}{
		{"short line", "1\tHi\thi\n", ErrCodeMalformedToken, 0},
		{"bad id", "x\tHi\thi\tINTJ\tUH\t_\t0\troot\t_\t_\n", ErrCodeMalformedToken, 0},
		{"bad head", "1\tHi\thi\tINTJ\tUH\t_\tz\troot\t_\t_\n", ErrCodeMalformedHead, 0},
		{
			"head is own id",
			"1\tShe\tshe\tPRON\tPRP\t_\t1\tnsubj\t_\t_\n2\truns\trun\tVERB\tVBZ\t_\t0\troot\t_\t_\n",
			ErrCodeHeadCycle, 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode(strings.NewReader(tt.bad+"\n"+good), FormatCoNLLU)
			require.NoError(t, err)
			require.Len(t, doc.Sentences, 2)

			text, errs := New(nil).Text(doc)
			var te *TaggingError
			require.ErrorAs(t, errs[0], &te)
			assert.Equal(t, tt.code, te.Code)
			assert.Equal(t, 0, te.Sentence)
			assert.Equal(t, tt.token, te.Token)
			assert.Empty(t, text.Sentences[0].Words)

			assert.NoError(t, errs[1])
			assert.Equal(t, "Dogs bark", text.Sentences[1].String())
		})
	}
}

func TestDecode_CoNLLURootKeepsSingleRoot(t *testing.T) {
	in := "1\tShe\tshe\tPRON\tPRP\t_\t2\tnsubj\t_\t_\n2\truns\trun\tVERB\tVBZ\t_\t0\troot\t_\t_\n"
	doc, err := Decode(strings.NewReader(in), FormatCoNLLU)
	require.NoError(t, err)
	s, err := New(nil).Sentence(0, doc.Sentences[0])
	require.NoError(t, err)
	assert.Equal(t, 1, s.Root())
	assert.False(t, s.Words[0].IsRoot())
}

func TestDecode_JSON(t *testing.T) {
	in := `{
  "title": "Dogs",
  "sentences": [
    {"tokens": [
      {"id": 0, "text": "Dogs", "lemma": "dog", "pos": "NOUN", "tag": "NNS", "dep": "nsubj", "head": 1, "morph": "Number=Plur"},
      {"id": 1, "text": "bark", "lemma": "bark", "pos": "VERB", "tag": "VBP", "dep": "ROOT", "head": 1}
    ]}
  ]
}`
	doc, err := Decode(strings.NewReader(in), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "Dogs", doc.Title)
	require.Len(t, doc.Sentences, 1)
	assert.Equal(t, "dog", doc.Sentences[0][0].Lemma)
	require.NotNil(t, doc.Sentences[0][0].ID)
	assert.Equal(t, 1, doc.Sentences[0][0].Head)
}

func TestDecode_JSONLegacyShape(t *testing.T) {
	in := `{"tokens": [[{"text": "Hi", "pos": "INTJ", "tag": "UH", "dep": "ROOT", "head": 0}]]}`
	doc, err := Decode(strings.NewReader(in), FormatJSON)
	require.NoError(t, err)
	require.Len(t, doc.Sentences, 1)
	assert.Equal(t, "Hi", doc.Sentences[0][0].Text)
}

func TestDecode_JSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"malformed", `{"sentences": [`, "decode json"},
		{"both shapes", `{"sentences": [], "tokens": []}`, "both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in), FormatJSON)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecode_JSONBadHeadRejectsOnlyItsSentence(t *testing.T) {
	tests := []struct {
		name string
		head string
		want string
	}{
		{"missing head", ``, "missing head"},
		{"null head", `, "head": null`, "missing head"},
		{"string head", `, "head": "zero"`, "not an integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := `{"sentences": [
  {"tokens": [{"text": "Hi", "pos": "INTJ", "tag": "UH", "dep": "ROOT"` + tt.head + `}]},
  {"tokens": [
    {"text": "Dogs", "pos": "NOUN", "tag": "NNS", "dep": "nsubj", "head": 1},
    {"text": "bark", "pos": "VERB", "tag": "VBP", "dep": "ROOT", "head": 1}
  ]}
]}`
			doc, err := Decode(strings.NewReader(in), FormatJSON)
			require.NoError(t, err)
			require.Len(t, doc.Sentences, 2)

			text, errs := New(nil).Text(doc)
			var te *TaggingError
			require.ErrorAs(t, errs[0], &te)
			assert.Equal(t, ErrCodeMalformedHead, te.Code)
			assert.Equal(t, 0, te.Token)
			assert.Contains(t, te.Message, tt.want)

			assert.NoError(t, errs[1])
			assert.Equal(t, "Dogs bark", text.Sentences[1].String())
		})
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"a.json", FormatJSON, false},
		{"a.CONLLU", FormatCoNLLU, false},
		{"dir/a.conll", FormatCoNLLU, false},
		{"a.txt", "", true},
	}
	for _, tt := range tests {
		got, err := FormatForPath(tt.path)
		if tt.err {
			assert.Error(t, err, tt.path)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, Format(""), f)

	f, err = ParseFormat("CoNLL")
	require.NoError(t, err)
	assert.Equal(t, FormatCoNLLU, f)

	_, err = ParseFormat("xml")
	assert.ErrorContains(t, err, "valid: json, conllu")
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.conllu")
	require.NoError(t, os.WriteFile(path, []byte(sampleCoNLLU), 0o644))

	doc, err := ReadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)
	assert.Len(t, doc.Sentences, 2)

	_, err = ReadFile(filepath.Join(dir, "missing.json"), "")
	assert.Error(t, err)

	_, err = ReadFile(path, FormatJSON)
	assert.ErrorContains(t, err, path)
}

func TestSubtype(t *testing.T) {
	assert.Equal(t, "auxpass", subtype("aux:pass"))
	assert.Equal(t, "prt", subtype("compound:prt"))
	assert.Equal(t, "poss", subtype("nmod:poss"))
	assert.Equal(t, "npadvmod", subtype("obl:tmod"))
	assert.Equal(t, "acl", subtype("acl:relcl"))
	assert.Equal(t, "nsubj", subtype("nsubj"))
}
