// Package harness provides conformance testing for rule tables and
// profiles.
//
// A scenario pairs a tagged input with the decisions the rules must take
// for it. The harness scores the input under the scenario's profile and
// checks the expectations against the decisions and the archived run.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: auxiliary_negation
//	description: "What this scenario validates"
//	profile: cpidr            # optional, cpidr by default
//	speech: false             # optional overrides on top of the profile
//	enable: [512]
//	disable: [520]
//	input:
//	  sentences:              # or conllu: |, or file: path
//	    - "He/PRP/nsubj/3 did/VBD/aux/3 not/RB/neg/3 go/VB/ROOT/3"
//	expect:
//	  propositions: 1
//	  words: 4
//	  density: "0.250"
//	assertions:
//	  - type: decision
//	    word: go
//	    proposition: true
//	    negated: true
//	  - type: archived
//	    table: documents
//	    where: { seq: 0 }
//	    expect: { propositions: 1 }
//
// # Assertion Types
//
//   - decision: checks the flags and deciding rule of one word
//   - rule_count: checks how many words a rule decided
//   - outcome: checks a sentence outcome and its tagging error code
//   - archived: queries the run archive and checks one row
//
// # Deterministic Testing
//
// Every scenario is archived in a fresh in-memory store with sequential
// run ids ("run-0001") and a stepping clock, so archive assertions and
// golden snapshots are identical across runs.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/auxiliary_negation.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
