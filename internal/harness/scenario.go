package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ideadensity/internal/ir"
)

// Scenario defines a conformance test scenario: a tagged input, the
// profile to score it under, and the decisions the rules must take.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Profile names the rule profile, "cpidr" when empty.
	Profile string `yaml:"profile,omitempty"`

	// Speech, Enable and Disable are applied on top of the profile.
	Speech  bool      `yaml:"speech,omitempty"`
	Enable  []ir.Code `yaml:"enable,omitempty"`
	Disable []ir.Code `yaml:"disable,omitempty"`

	Input Input `yaml:"input"`

	// Expect checks the whole-text counts. If nil, only the assertions run.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate individual decisions and outcomes.
	// Supported types: decision, rule_count, outcome, archived
	Assertions []Assertion `yaml:"assertions"`
}

// Input is the tagged text of a scenario. Exactly one field is set.
type Input struct {
	// Sentences uses the compact token notation, one string per sentence:
	// "She/PRP/nsubj/1 ran/VBD/ROOT/1".
	Sentences []string `yaml:"sentences,omitempty"`

	// CoNLLU is an inline CoNLL-U document.
	CoNLLU string `yaml:"conllu,omitempty"`

	// File is a JSON or CoNLL-U input file, relative to the scenario file.
	File string `yaml:"file,omitempty"`
}

// ExpectClause specifies the expected whole-text result.
// Unset fields are not checked.
type ExpectClause struct {
	Propositions *int   `yaml:"propositions,omitempty"`
	Words        *int   `yaml:"words,omitempty"`
	Density      string `yaml:"density,omitempty"`
	Failed       *int   `yaml:"failed,omitempty"`
}

// Assertion validates one aspect of the scored text.
type Assertion struct {
	// Type specifies the assertion type:
	// - "decision": the decision for one word
	// - "rule_count": how many words a rule decided
	// - "outcome": the outcome of one sentence
	// - "archived": a row of the run archive
	Type string `yaml:"type"`

	// Sentence and Word locate a word (decision) or a sentence (outcome).
	// Word is the surface text; the first match in the sentence is used.
	Sentence int    `yaml:"sentence,omitempty"`
	Word     string `yaml:"word,omitempty"`

	// Proposition, Counted and Negated are the expected flags (decision).
	Proposition *bool `yaml:"proposition,omitempty"`
	Counted     *bool `yaml:"counted,omitempty"`
	Negated     *bool `yaml:"negated,omitempty"`

	// Rule is the expected deciding rule (decision, rule_count).
	Rule ir.Code `yaml:"rule,omitempty"`

	// Count is the expected number of words (rule_count).
	Count int `yaml:"count,omitempty"`

	// Outcome and ErrorCode are the expected sentence outcome (outcome).
	Outcome   string `yaml:"outcome,omitempty"`
	ErrorCode string `yaml:"error_code,omitempty"`

	// Table, Where and Expect query the archive (archived).
	Table  string         `yaml:"table,omitempty"`
	Where  map[string]any `yaml:"where,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertDecision  = "decision"
	AssertRuleCount = "rule_count"
	AssertOutcome   = "outcome"
	AssertArchived  = "archived"
)

var validOutcomes = []string{"ok", "empty", "error"}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Input.File is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if f := scenario.Input.File; f != "" && !filepath.IsAbs(f) {
		scenario.Input.File = filepath.Join(filepath.Dir(path), f)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file under dir, recursively, in
// lexical path order. Scenario names must be unique.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.{yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("glob scenarios in %s: %w", dir, err)
	}
	slices.Sort(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	seen := make(map[string]string, len(matches))
	for _, m := range matches {
		path := filepath.Join(dir, filepath.FromSlash(m))
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: scenario %q already defined in %s", path, s.Name, prev)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	set := 0
	if len(s.Input.Sentences) > 0 {
		set++
	}
	if s.Input.CoNLLU != "" {
		set++
	}
	if s.Input.File != "" {
		set++
		if _, err := os.Stat(s.Input.File); os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", s.Input.File)
		}
	}
	if set != 1 {
		return fmt.Errorf("input needs exactly one of sentences, conllu or file")
	}

	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or a non-empty assertions list is required")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Sentence < 0 {
		return fmt.Errorf("assertions[%d]: sentence must be non-negative", index)
	}

	switch a.Type {
	case AssertDecision:
		if a.Word == "" {
			return fmt.Errorf("assertions[%d]: word is required for decision", index)
		}
		if a.Proposition == nil && a.Counted == nil && a.Negated == nil && a.Rule == 0 {
			return fmt.Errorf("assertions[%d]: decision needs one of proposition, counted, negated or rule", index)
		}
	case AssertRuleCount:
		if a.Rule <= 0 {
			return fmt.Errorf("assertions[%d]: rule is required for rule_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for rule_count", index)
		}
	case AssertOutcome:
		if !slices.Contains(validOutcomes, a.Outcome) {
			return fmt.Errorf("assertions[%d]: outcome must be one of ok, empty or error", index)
		}
		if a.ErrorCode != "" && a.Outcome != "error" {
			return fmt.Errorf("assertions[%d]: error_code requires outcome error", index)
		}
	case AssertArchived:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for archived", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for archived", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
