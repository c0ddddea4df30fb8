// Package lexicon holds the closed English word lists consulted by the
// proposition rules and the word counter.
//
// Lists hold surface forms as well as lemmas, so a lookup succeeds whether
// or not the tagger supplied a lemma. All entries are lower case; callers
// pass ir.Word.Lower or ir.Word.Lemma.
package lexicon

import "strings"

// Set is a closed word list.
type Set map[string]struct{}

func newSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports whether w is in the list.
func (s Set) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// HasAny reports whether any of ws is in the list. Typical use is
// HasAny(word.Lower, word.Lemma).
func (s Set) HasAny(ws ...string) bool {
	for _, w := range ws {
		if s.Has(w) {
			return true
		}
	}
	return false
}

// Auxiliary verbs. "doing"/"done" are not auxiliary forms, nor are
// "needs"/"dares". Modals are listed separately.
var Auxiliary = newSet(
	"be", "am", "is", "are", "was", "were", "being", "been",
	"have", "has", "had", "having",
	"do", "does", "did",
	"need", "dare",
	"'s", "'re", "'m", "'ve", "'d",
)

// Be holds the forms of "be".
var Be = newSet("be", "am", "is", "are", "was", "were", "being", "been", "'m", "'re")

// Modal auxiliaries (Penn MD).
var Modal = newSet(
	"can", "could", "may", "might", "must", "shall", "should", "will", "would",
	"ought", "'ll", "'d", "ca", "wo", "sha",
)

// Linking verbs: all forms of the verbs that take an adjective predicate.
var Linking = newSet(
	// being
	"be", "am", "is", "are", "was", "were", "been", "being",
	// becoming
	"become", "becomes", "became", "becoming",
	"get", "gets", "got", "gotten", "getting",
	// seeming visually
	"look", "looks", "looked", "looking",
	"seem", "seems", "seemed", "seeming",
	"appear", "appears", "appeared", "appearing",
	// seeming through other senses
	"sound", "sounds", "sounded", "sounding",
	"feel", "feels", "felt", "feeling",
	"smell", "smells", "smelled", "smelling",
	"taste", "tastes", "tasted", "tasting",
)

// Causative verbs taking a noun phrase plus adjective ("make it better",
// "turn it green").
var Causative = newSet(
	"make", "makes", "made", "making",
	"turn", "turns", "turned", "turning",
	"paint", "paints", "painted", "painting",
)

// Correlative holds first elements of correlative conjunctions.
var Correlative = newSet("both", "either", "neither")

// NegativePolarity holds items that form one concept with an earlier
// negator, the negator counting as the proposition ("not ... yet").
var NegativePolarity = newSet("yet", "much", "many", "any", "anymore")

// Negator holds the negation particles folded into their head.
var Negator = newSet("not", "n't", "never", "nt")

// Filler holds words that are non-propositional when a sentence consists
// wholly of them (speech mode).
var Filler = newSet("and", "or", "but", "if", "that", "just", "you", "know")

// ComeGo holds motion verbs that form one proposition with a following
// "to" or "from".
var ComeGo = newSet(
	"come", "comes", "came", "coming",
	"return", "returns", "returned", "returning",
	"arrive", "arrives", "arrived", "arriving",
	"go", "goes", "went", "gone", "going",
	"depart", "departs", "departed", "departing",
	"emanate", "emanates", "emanated", "emanating",
)

// Article holds the English articles.
var Article = newSet("a", "an", "the")

// Quantifier holds quantifying determiners, which carry a proposition of
// their own unlike articles.
var Quantifier = newSet(
	"all", "any", "some", "no", "every", "each", "many", "much", "few",
	"several", "most", "more", "less", "fewer", "enough", "another",
	"both", "either", "neither", "half",
)

// Ordinal holds ordinals that act as attributive modifiers.
var Ordinal = newSet(
	"first", "second", "third", "fourth", "fifth", "sixth", "seventh",
	"eighth", "ninth", "tenth", "last", "next",
)

// Wh holds interrogative and relative pronouns, determiners and adverbs.
var Wh = newSet(
	"who", "whom", "whose", "what", "which", "where", "when", "why", "how",
	"whoever", "whatever", "whichever", "wherever", "whenever",
)

// Possessive holds possessive pronouns and the clitic.
var Possessive = newSet(
	"my", "your", "his", "her", "its", "our", "their", "whose",
	"mine", "yours", "hers", "ours", "theirs", "'s", "'",
)

// ComplexPreposition holds multi-word prepositions and conjunctions that
// express a single relation; every member after the first is absorbed.
// Entries are space separated lower-case surface forms.
var ComplexPreposition = []string{
	"according to",
	"ahead of",
	"along with",
	"apart from",
	"as for",
	"as of",
	"as well as",
	"aside from",
	"because of",
	"close to",
	"due to",
	"except for",
	"in addition to",
	"in front of",
	"in spite of",
	"instead of",
	"next to",
	"on top of",
	"out of",
	"owing to",
	"prior to",
	"rather than",
	"regardless of",
	"so that",
	"such as",
	"up to",
}

// SplitPhrase splits a ComplexPreposition entry into its words.
func SplitPhrase(p string) []string {
	return strings.Fields(p)
}

// IsRepetition reports whether second is likely a repetition of first in
// transcribed speech. first may be an incomplete fragment ending in a
// hyphen, as in "hesi- hesitation"; articles never count as fragments.
func IsRepetition(first, second string) bool {
	if first == "" || second == "" {
		return false
	}
	if first == second {
		return true
	}
	first = strings.TrimSuffix(first, "-")
	if first == "" {
		return false
	}
	return len(second) > 3 && first != "a" && first != "an" && strings.HasPrefix(second, first)
}
