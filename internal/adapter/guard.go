package adapter

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"

	"github.com/roach88/ideadensity/internal/ir"
)

// minGuardWords is the shortest text the guard will judge. Detection on a
// handful of words is unreliable and the rules behave the same either way.
const minGuardWords = 8

// guardLanguages are the candidates the detector chooses between. Keeping
// the set small keeps model loading fast.
var guardLanguages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
}

// Guard rejects documents whose text is not English. The rule lexicons
// are English-only, so scores of other languages are meaningless.
//
// The detector is built on first use and shared; Check is safe for
// concurrent use.
type Guard struct {
	strict bool
	logger *slog.Logger

	once     sync.Once
	detector lingua.LanguageDetector
}

// NewGuard creates a Guard. In strict mode Check returns a
// *LanguageError for non-English text; otherwise it only logs a warning.
func NewGuard(strict bool, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{strict: strict, logger: logger}
}

// Detect returns the detected language of t, or "" when the text is too
// short or the detector is undecided.
func (g *Guard) Detect(t ir.Text) string {
	words := lexicalWords(t)
	if len(words) < minGuardWords {
		return ""
	}
	g.once.Do(func() {
		g.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(guardLanguages...).
			Build()
	})
	lang, ok := g.detector.DetectLanguageOf(strings.Join(words, " "))
	if !ok {
		return ""
	}
	return lang.String()
}

// Check verifies that t is English.
func (g *Guard) Check(t ir.Text) error {
	detected := g.Detect(t)
	if detected == "" || detected == lingua.English.String() {
		return nil
	}
	if !g.strict {
		g.logger.Warn("text does not look like English", "source", t.Source, "detected", detected)
		return nil
	}
	return &LanguageError{Source: t.Source, Detected: detected}
}

func lexicalWords(t ir.Text) []string {
	var words []string
	for _, s := range t.Sentences {
		for _, w := range s.Words {
			if !w.POS.NonLexical() {
				words = append(words, w.Text)
			}
		}
	}
	return words
}
