// Package store archives scoring runs in SQLite.
//
// A run records the rule selection it was scored with (profile, rule
// table version, speech mode, enabled codes) and, for each document, the
// input TextID, the outcome digest and the integer counts. Densities are
// derived from the counts on read.
//
// Two runs over the same text agree on the digest exactly when every
// decision agrees, so Compare can tell whether a rule change (or a new
// tagger) moved any score.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Run ids come from an IDGenerator (UUIDv7 in production, so ids sort by
// creation time) and timestamps from a Clock; tests inject both.
package store
