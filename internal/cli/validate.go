package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ideadensity/internal/adapter"
	"github.com/roach88/ideadensity/internal/compiler"
)

const (
	checkMark = "\u2713"
	crossMark = "\u2717"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	ProfilesDir string
	InputFormat string
}

// InputIssue is a sentence the adapter rejected.
type InputIssue struct {
	File     string `json:"file"`
	Sentence int    `json:"sentence"`
	Token    int    `json:"token"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                       `json:"valid"`
	Profiles  int                        `json:"profiles"`
	Inputs    int                        `json:"inputs"`
	Sentences int                        `json:"sentences"`
	Errors    []compiler.ValidationError `json:"errors,omitempty"`
	Warnings  []compiler.ValidationError `json:"warnings,omitempty"`
	Issues    []InputIssue               `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [files|globs...]",
		Short: "Validate rule profiles and tagged inputs without scoring",
		Long: `Validate the rule profiles and, optionally, tagged input files.

Every profile (builtin and --profiles-dir) is resolved and checked against
the rule table. Each input file is decoded and every sentence is run
through the adapter; rejected sentences are listed with their tagging
error code. Redundant profile entries are reported as warnings only.

Exit codes:
  0 - Profiles and inputs valid
  1 - Validation failed
  2 - Command error (unreadable profiles or inputs)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ProfilesDir, "profiles-dir", "", "directory of additional CUE profiles")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "", "input format (json|conllu), inferred from the extension when empty")

	return cmd
}

func runValidate(opts *ValidateOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	registry, err := loadRegistry(opts.ProfilesDir)
	if err != nil {
		return outputValidateError(formatter, ErrCodeProfile, err.Error(), nil)
	}
	inputFormat, err := adapter.ParseFormat(opts.InputFormat)
	if err != nil {
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}
	files, err := expandInputs(args)
	if err != nil {
		return outputValidateError(formatter, ErrCodeNotFound, err.Error(), nil)
	}
	if len(args) > 0 && len(files) == 0 {
		return outputValidateError(formatter, ErrCodeNoInputs, "no input files matched", nil)
	}

	result := ValidationResult{Profiles: len(registry.Names()), Inputs: len(files)}
	for _, ve := range compiler.ValidateRegistry(registry) {
		formatter.VerboseLog("%s", ve.Error())
		if ve.IsWarning() {
			result.Warnings = append(result.Warnings, ve)
		} else {
			result.Errors = append(result.Errors, ve)
		}
	}

	a := adapter.New(opts.logger())
	for _, path := range files {
		formatter.VerboseLog("Validating %s", path)
		doc, err := adapter.ReadFile(path, inputFormat)
		if err != nil {
			return outputValidateError(formatter, ErrCodeInvalidInput, err.Error(), map[string]string{"file": path})
		}
		_, errs := a.Text(doc)
		result.Sentences += len(errs)
		for _, e := range errs {
			var te *adapter.TaggingError
			if errors.As(e, &te) {
				result.Issues = append(result.Issues, InputIssue{
					File:     path,
					Sentence: te.Sentence,
					Token:    te.Token,
					Code:     string(te.Code),
					Message:  te.Message,
				})
			}
		}
	}

	result.Valid = len(result.Errors) == 0 && len(result.Issues) == 0
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "warning %s\n", warn.Error())
	}
	fmt.Fprintf(w, "%s All valid (%d profiles, %d inputs, %d sentences)\n",
		checkMark, result.Profiles, result.Inputs, result.Sentences)
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs every profile error and input issue.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	count := len(result.Errors) + len(result.Issues)
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", count))

	if formatter.JSON() {
		first := CLIError{Code: ErrCodeTagging}
		if len(result.Errors) > 0 {
			first = CLIError{Code: result.Errors[0].Code, Message: result.Errors[0].Message}
		} else {
			first.Message = result.Issues[0].Message
		}
		if err := formatter.Encode(CLIResponse{Status: "error", Data: result, Error: &first}); err != nil {
			return err
		}
		return exitErr
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s Validation failed\n\n", crossMark)
	for _, ve := range result.Errors {
		fmt.Fprintf(w, "profile %s\n  %s: %s\n\n", ve.Profile, ve.Code, ve.Message)
	}
	for _, is := range result.Issues {
		if is.Token >= 0 {
			fmt.Fprintf(w, "%s sentence %d token %d\n", is.File, is.Sentence, is.Token)
		} else {
			fmt.Fprintf(w, "%s sentence %d\n", is.File, is.Sentence)
		}
		fmt.Fprintf(w, "  %s: %s\n\n", is.Code, is.Message)
	}
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "warning %s\n", warn.Error())
	}
	return exitErr
}
