// Package ir provides the canonical data model for idea-density scoring.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the word/sentence model
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Words reference their head by index within the same sentence, never by
//     pointer, so sentences stay copyable and serializable.
//   - A root word references itself (Head == Index) and carries dep "root".
//   - Part-of-speech values are closed enumerations; the zero/unrecognized
//     values are never valid inside a Word.
//   - Canonical JSON (RFC 8785) is used for content hashes and forbids floats,
//     so densities are never hashed, only the integer counts behind them.
package ir
