package adapter

import (
	"errors"
	"fmt"
)

// TaggingErrorCode identifies why a sentence could not be normalized.
type TaggingErrorCode string

const (
	// ErrCodeUnknownPOS - the coarse part of speech is outside the closed set.
	ErrCodeUnknownPOS TaggingErrorCode = "UNKNOWN_POS"

	// ErrCodeUnknownTag - the fine-grained tag is outside the closed set.
	ErrCodeUnknownTag TaggingErrorCode = "UNKNOWN_TAG"

	// ErrCodeMissingTag - the token has neither a coarse nor a fine tag.
	ErrCodeMissingTag TaggingErrorCode = "MISSING_TAG"

	// ErrCodeDanglingHead - the head refers to no token of the sentence.
	ErrCodeDanglingHead TaggingErrorCode = "DANGLING_HEAD"

	// ErrCodeHeadCycle - following heads from this token never reaches a root.
	ErrCodeHeadCycle TaggingErrorCode = "HEAD_CYCLE"

	// ErrCodeNoRoot - no token of the sentence is its own head.
	ErrCodeNoRoot TaggingErrorCode = "NO_ROOT"

	// ErrCodeDuplicateID - two tokens share an id, so heads are ambiguous.
	ErrCodeDuplicateID TaggingErrorCode = "DUPLICATE_ID"

	// ErrCodeMalformedHead - the head reference is missing or not an integer.
	ErrCodeMalformedHead TaggingErrorCode = "MALFORMED_HEAD"

	// ErrCodeMalformedToken - the token line could not be read (bad id,
	// too few columns).
	ErrCodeMalformedToken TaggingErrorCode = "MALFORMED_TOKEN"
)

// TaggingError reports a sentence the tagger produced inconsistently.
// Token is -1 when the error concerns the sentence as a whole.
type TaggingError struct {
	Code     TaggingErrorCode
	Sentence int
	Token    int
	Text     string
	Message  string
}

// Error implements the error interface.
func (e *TaggingError) Error() string {
	if e.Token < 0 {
		return fmt.Sprintf("sentence %d: %s: %s", e.Sentence, e.Code, e.Message)
	}
	return fmt.Sprintf("sentence %d, token %d (%q): %s: %s", e.Sentence, e.Token, e.Text, e.Code, e.Message)
}

// IsTaggingError checks if an error is a TaggingError.
func IsTaggingError(err error) bool {
	var te *TaggingError
	return errors.As(err, &te)
}

func tokenError(code TaggingErrorCode, sentence, token int, text, format string, args ...any) *TaggingError {
	return &TaggingError{
		Code:     code,
		Sentence: sentence,
		Token:    token,
		Text:     text,
		Message:  fmt.Sprintf(format, args...),
	}
}

// LanguageError reports a document detected as not English.
type LanguageError struct {
	Source   string
	Detected string
}

// Error implements the error interface.
func (e *LanguageError) Error() string {
	if e.Detected == "" {
		return fmt.Sprintf("%s: language could not be identified as English", e.Source)
	}
	return fmt.Sprintf("%s: detected %s text, only English is supported", e.Source, e.Detected)
}

// IsLanguageError checks if an error is a LanguageError.
func IsLanguageError(err error) bool {
	var le *LanguageError
	return errors.As(err, &le)
}
