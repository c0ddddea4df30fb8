package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/ideadensity/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update      bool   // regenerate golden files
	Filter      string // scenario filter (glob pattern)
	ProfilesDir string
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run rule scenarios",
		Long: `Run YAML rule scenarios with the conformance harness.

Every *.yaml file below the directory is a scenario: a tagged input, the
profile to score it under, the expected counts and per-word assertions.
When <scenarios-dir>/golden/<name>.golden exists, the scenario's decision
trace must match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, malformed scenarios, etc.)

Examples:
  idensity test ./scenarios
  idensity test ./scenarios --filter "speech_*"
  idensity test ./scenarios --update
  idensity test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by name (glob pattern)")
	cmd.Flags().StringVar(&opts.ProfilesDir, "profiles-dir", "", "directory of additional CUE profiles")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}
	if _, err := filepath.Match(opts.Filter, ""); err != nil {
		return WrapExitError(ExitCommandError, "invalid filter pattern", err)
	}

	scenarios, err := harness.LoadScenarios(scenariosDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}
	if opts.Filter != "" {
		kept := scenarios[:0]
		for _, s := range scenarios {
			if ok, _ := filepath.Match(opts.Filter, s.Name); ok {
				kept = append(kept, s)
			}
		}
		scenarios = kept
	}

	if len(scenarios) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	registry, err := loadRegistry(opts.ProfilesDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load profiles", err)
	}
	h, err := harness.New(harness.WithRegistry(registry), harness.WithLogger(opts.logger()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create harness", err)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarios)),
		Total:     len(scenarios),
	}
	goldenDir := filepath.Join(scenariosDir, "golden")
	for _, s := range scenarios {
		sr := runScenario(h, s, goldenDir, opts, cmd)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

// runScenario executes a single scenario and returns the result.
func runScenario(h *harness.Harness, s *harness.Scenario, goldenDir string, opts *TestOptions, cmd *cobra.Command) ScenarioResult {
	text := opts.Format != "json"
	w := cmd.OutOrStdout()
	fail := func(errs ...string) ScenarioResult {
		if text {
			fmt.Fprintf(w, "%s %s\n", crossMark, s.Name)
			for _, e := range errs {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		return ScenarioResult{Name: s.Name, Pass: false, Errors: errs}
	}
	pass := func(note string) ScenarioResult {
		if text {
			fmt.Fprintf(w, "%s %s%s\n", checkMark, s.Name, note)
		}
		return ScenarioResult{Name: s.Name, Pass: true}
	}

	result, err := h.Run(cmd.Context(), s)
	if err != nil {
		return fail(fmt.Sprintf("execution failed: %v", err))
	}

	data, err := harness.TraceSnapshot{ScenarioName: s.Name, Result: result}.Marshal()
	if err != nil {
		return fail(fmt.Sprintf("failed to marshal trace: %v", err))
	}
	goldenPath := filepath.Join(goldenDir, s.Name+".golden")

	if opts.Update {
		if err := writeGolden(goldenPath, data); err != nil {
			return fail(fmt.Sprintf("failed to update golden file: %v", err))
		}
		if !result.Pass {
			return fail(result.Errors...)
		}
		return pass(" (golden updated)")
	}

	golden, err := os.ReadFile(goldenPath)
	switch {
	case os.IsNotExist(err):
		// No golden file - assertion-based validation only
	case err != nil:
		return fail(fmt.Sprintf("golden comparison failed: %v", err))
	case !bytes.Equal(golden, data):
		return fail(append([]string{"trace does not match golden file (run with --update to regenerate)"}, result.Errors...)...)
	}

	if !result.Pass {
		return fail(result.Errors...)
	}
	return pass("")
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	if result.Failed == 0 {
		return f.Encode(CLIResponse{Status: "ok", Data: result})
	}

	if err := f.Encode(CLIResponse{
		Status: "error",
		Data:   result,
		Error: &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total),
		},
	}); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
}

// outputTestText outputs the test summary as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	fmt.Fprintf(w, "%s All scenarios passed\n", checkMark)
	return nil
}
