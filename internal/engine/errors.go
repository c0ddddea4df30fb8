package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/ideadensity/internal/ir"
)

// ConfigError represents a rule table or engine option misconfiguration.
//
// Config errors are programming or invocation mistakes and are detected
// before any sentence is scored:
//   - Duplicate rule code or precedence in a table
//   - Missing predicate or name
//   - Use of the reserved baseline code
//   - Enabling or disabling an unknown rule
//   - Disabling a mandatory rule
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Rule is the rule code involved, if any.
	Rule ir.Code

	// Message is a human-readable description.
	Message string
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeDuplicateCode indicates two rules share a code.
	ErrCodeDuplicateCode ConfigErrorCode = "DUPLICATE_CODE"

	// ErrCodeDuplicatePrecedence indicates two rules share a precedence.
	ErrCodeDuplicatePrecedence ConfigErrorCode = "DUPLICATE_PRECEDENCE"

	// ErrCodeInvalidRule indicates a rule without predicate, name or
	// positive precedence, or a table without a version.
	ErrCodeInvalidRule ConfigErrorCode = "INVALID_RULE"

	// ErrCodeReservedCode indicates a rule uses the baseline code.
	ErrCodeReservedCode ConfigErrorCode = "RESERVED_CODE"

	// ErrCodeUnknownRule indicates an option names a code not in the table.
	ErrCodeUnknownRule ConfigErrorCode = "UNKNOWN_RULE"

	// ErrCodeMandatoryRule indicates an attempt to disable an always-on rule.
	ErrCodeMandatoryRule ConfigErrorCode = "MANDATORY_RULE"

	// ErrCodeConflictingOption indicates a code is both enabled and disabled.
	ErrCodeConflictingOption ConfigErrorCode = "CONFLICTING_OPTION"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Rule != 0 {
		return fmt.Sprintf("%s: %s (rule=%s)", e.Code, e.Message, e.Rule)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError returns true if the error is a ConfigError.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ConfigErrorCodeOf returns the code of a wrapped ConfigError, or "".
func ConfigErrorCodeOf(err error) ConfigErrorCode {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func newConfigError(code ConfigErrorCode, rule ir.Code, format string, args ...any) *ConfigError {
	return &ConfigError{
		Code:    code,
		Rule:    rule,
		Message: fmt.Sprintf(format, args...),
	}
}
