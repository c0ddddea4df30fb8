package counter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/ideadensity/internal/engine"
	"github.com/roach88/ideadensity/internal/ir"
	"github.com/roach88/ideadensity/internal/testutil"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		spec   string
		speech bool
		want   []ir.Code
		words  int
	}{
		{
			name:  "punctuation excluded",
			spec:  "Dogs/NNS/nsubj/1 bark/VBP/ROOT/1 ././punct/1",
			want:  []ir.Code{0, 0, CodeNonLexical},
			words: 2,
		},
		{
			name:  "possessive clitic is not a word",
			spec:  "John/NNP/poss/2 's/POS/case/0 dog/NN/ROOT/2",
			want:  []ir.Code{0, CodeNotAlnum, 0},
			words: 2,
		},
		{
			name:  "number run merged",
			spec:  "twenty/CD/nummod/2 five/CD/nummod/2 cents/NNS/ROOT/2",
			want:  []ir.Code{0, CodeNumberRun, 0},
			words: 2,
		},
		{
			name:  "decimal merged",
			spec:  "3/CD/nummod/3 ./NFP/punct/0 5/CD/nummod/3 percent/NN/ROOT/3",
			want:  []ir.Code{0, CodeNonLexical, CodeNumberSep, 0},
			words: 2,
		},
		{
			name:  "interjection counted",
			spec:  "um/UH/intj/1 yes/UH/ROOT/1",
			want:  []ir.Code{0, 0},
			words: 2,
		},
		{
			name:  "repetition counted outside speech",
			spec:  "I/PRP/nsubj/1 want/VBP/ROOT/1 want/VBP/conj/1",
			want:  []ir.Code{0, 0, 0},
			words: 3,
		},
		{
			name:   "repetition excluded in speech",
			spec:   "I/PRP/nsubj/1 want/VBP/ROOT/1 want/VBP/conj/1",
			speech: true,
			want:   []ir.Code{0, CodeRepetition, 0},
			words:  2,
		},
		{
			name:   "you know counts once",
			spec:   "you/PRP/nsubj/1 know/VBP/parataxis/3 ,/,/punct/3 rain/VBD/ROOT/3",
			speech: true,
			want:   []ir.Code{0, CodeYouKnow, CodeNonLexical, 0},
			words:  2,
		},
		{
			name:   "reparandum excluded",
			spec:   "go/VB/reparandum/2 ,/,/punct/2 went/VBD/ROOT/2",
			speech: true,
			want:   []ir.Code{CodeReparandum, CodeNonLexical, 0},
			words:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testutil.Sentence(t, 0, tt.spec)
			c := New(tt.speech)
			ctx := engine.NewContext(s, tt.speech)

			got := make([]ir.Code, len(s.Words))
			for i := range s.Words {
				ok, code := c.Classify(ctx, i)
				assert.Equal(t, code == 0, ok, "word %d", i)
				got[i] = code
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.words, c.Count(s))
		})
	}
}

func TestCount_Empty(t *testing.T) {
	assert.Equal(t, 0, New(false).Count(ir.Sentence{}))
	assert.True(t, New(true).SpeechMode())
}
