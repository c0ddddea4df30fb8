package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ideadensity/internal/ir"
)

// writeScenario writes content to dir/name and returns the path.
func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "test.yaml", `
name: test_scenario
description: "Test scenario for validation"
profile: speech
enable: [512]
disable: [203]
input:
  sentences:
    - "Dogs/NNS/nsubj/1 bark/VBP/ROOT/1"
expect:
  propositions: 1
assertions:
  - type: decision
    word: bark
    proposition: true
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, "speech", scenario.Profile)
	assert.Equal(t, []ir.Code{512}, scenario.Enable)
	assert.Equal(t, []ir.Code{203}, scenario.Disable)
	assert.Len(t, scenario.Input.Sentences, 1)
	require.NotNil(t, scenario.Expect)
	require.NotNil(t, scenario.Expect.Propositions)
	assert.Equal(t, 1, *scenario.Expect.Propositions)
	assert.Nil(t, scenario.Expect.Words)
	require.Len(t, scenario.Assertions, 1)
	require.NotNil(t, scenario.Assertions[0].Proposition)
	assert.True(t, *scenario.Assertions[0].Proposition)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "test.yaml", `
name: test
description: "Typo in assertions"
input:
  sentences: ["Dogs/NNS/nsubj/1 bark/VBP/ROOT/1"]
assertion:
  - type: rule_count
    rule: 200
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
	assert.Contains(t, err.Error(), "assertion")
}

func TestLoadScenario_FileRelativeToScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "inputs/dogs.conllu", "1\tDogs\tdog\tNOUN\tNNS\t_\t2\tnsubj\t_\t_\n2\tbark\tbark\tVERB\tVBP\t_\t0\troot\t_\t_\n")
	path := writeScenario(t, dir, "scenarios/dogs.yaml", `
name: dogs
description: "File input"
input:
  file: ../inputs/dogs.conllu
expect:
  words: 2
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "inputs", "dogs.conllu"), scenario.Input.File)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestLoadScenario_Validation(t *testing.T) {
	const input = `
input:
  sentences: ["Dogs/NNS/nsubj/1 bark/VBP/ROOT/1"]
`
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing name",
			content: "description: d\n" + input + "expect: {words: 2}\n",
			want:    "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\n" + input + "expect: {words: 2}\n",
			want:    "description is required",
		},
		{
			name:    "no input",
			content: "name: n\ndescription: d\nexpect: {words: 2}\n",
			want:    "input needs exactly one of",
		},
		{
			name:    "two inputs",
			content: "name: n\ndescription: d\n" + input + "  conllu: \"x\"\nexpect: {words: 2}\n",
			want:    "input needs exactly one of",
		},
		{
			name:    "missing input file",
			content: "name: n\ndescription: d\ninput: {file: nope.json}\nexpect: {words: 2}\n",
			want:    "input file not found",
		},
		{
			name:    "nothing to check",
			content: "name: n\ndescription: d\n" + input,
			want:    "expect or a non-empty assertions list is required",
		},
		{
			name:    "missing type",
			content: "name: n\ndescription: d\n" + input + "assertions:\n  - word: bark\n",
			want:    "assertions[0]: type is required",
		},
		{
			name:    "unknown type",
			content: "name: n\ndescription: d\n" + input + "assertions:\n  - type: trace_order\n",
			want:    `unknown assertion type "trace_order"`,
		},
		{
			name:    "decision without word",
			content: "name: n\ndescription: d\n" + input + "assertions:\n  - type: decision\n    rule: 200\n",
			want:    "word is required for decision",
		},
		{
			name:    "decision without expectation",
			content: "name: n\ndescription: d\n" + input + "assertions:\n  - type: decision\n    word: bark\n",
			want:    "decision needs one of",
		},
		{
			name:    "rule_count without rule",
			content: "name: n\ndescription: d\n" + input + "assertions:\n  - type: rule_count\n    count: 1\n",
			want:    "rule is required for rule_count",
		},
		{
			name:    "bad outcome",
			content: "name: n\ndescription: d\n" + input + "assertions:\n  - type: outcome\n    outcome: fine\n",
			want:    "outcome must be one of",
		},
		{
			name:    "error code on ok outcome",
			content: "name: n\ndescription: d\n" + input + "assertions:\n  - type: outcome\n    outcome: ok\n    error_code: NO_ROOT\n",
			want:    "error_code requires outcome error",
		},
		{
			name:    "archived without table",
			content: "name: n\ndescription: d\n" + input + "assertions:\n  - type: archived\n    expect: {words: 2}\n",
			want:    "table is required for archived",
		},
		{
			name:    "archived without expect",
			content: "name: n\ndescription: d\n" + input + "assertions:\n  - type: archived\n    table: runs\n",
			want:    "expect is required for archived",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), "test.yaml", tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Equal(t, []string{
		"auxiliary_negation",
		"come_go",
		"conllu_input",
		"file_input",
		"speech_repetition",
		"tagging_errors",
	}, names)
}

func TestLoadScenarios_Duplicate(t *testing.T) {
	dir := t.TempDir()
	content := `
name: same
description: d
input:
  sentences: ["Dogs/NNS/nsubj/1 bark/VBP/ROOT/1"]
expect: {words: 2}
`
	writeScenario(t, dir, "a.yaml", content)
	writeScenario(t, dir, "nested/b.yml", content)

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scenario "same" already defined in`)
}

func TestLoadScenarios_Empty(t *testing.T) {
	scenarios, err := LoadScenarios(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, scenarios)
}
