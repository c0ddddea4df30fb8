// Package engine implements the proposition-counting rule engine.
//
// The engine decides, word by word, whether a word introduces a new
// proposition. It is the only place where that decision is made.
//
// ARCHITECTURE:
//
// Baseline plus exceptions:
// Every word first receives the baseline decision of its category
// (verbs, adjectives, adverbs, adpositions and conjunctions bear a
// proposition; everything else does not). The enabled exception rules are
// then evaluated in ascending precedence and the first match decides.
//
// Rule table as data:
// Rules are values in a Table, each a predicate over a read-only Context
// plus a decision. NewTable rejects duplicate codes and precedences, so a
// table is either valid at construction or never used. Tables are
// append-only: Extend adds rules with new precedences and leaves the
// relative order of the existing ones untouched.
//
// Tables:
// DefaultTable follows CPIDR. DEPIDTable counts dependency relations
// instead, deciding every word by rule; LookupTable selects either by
// version.
//
// Determinism:
// Annotate is a pure function of the sentence and the enabled rule set.
// No I/O, no shared mutable state; one Engine may be used from any
// number of goroutines.
package engine
