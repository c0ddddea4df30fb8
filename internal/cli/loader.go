package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/roach88/ideadensity/internal/compiler"
	"github.com/roach88/ideadensity/internal/engine"
	"github.com/roach88/ideadensity/internal/ir"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = "E002" // Path not found
	ErrCodeNoInputs     = "E003" // No input files matched
	ErrCodeProfile      = "E004" // Profile could not be loaded or resolved
	ErrCodeTagging      = "E005" // Input sentence rejected by the adapter
	ErrCodeLanguage     = "E006" // Input is not English
	ErrCodeArchive      = "E007" // Result archive error
	ErrCodeWriteFailed  = "E008" // File write error
	ErrCodeInvalidInput = "E009" // Input could not be decoded
	ErrCodeTestFailed   = "E_TEST_FAILED"
)

// newFormatter returns the output formatter for cmd.
func (o *RootOptions) newFormatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// loadRegistry compiles the builtin profiles plus every .cue file below
// dir, when dir is set.
func loadRegistry(dir string) (*compiler.Registry, error) {
	r, err := compiler.NewRegistry()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return r, nil
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("profiles directory: %w", err)
	}
	if _, err := r.LoadDir(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// ruleSelection names a profile and the overrides applied on top of it.
type ruleSelection struct {
	Profile     string
	ProfilesDir string
	Speech      bool
	Enable      []int
	Disable     []int
}

// build resolves the selection into a profile and an engine over the
// table the profile selects.
func (sel ruleSelection) build(logger *slog.Logger) (*compiler.Profile, *engine.Engine, error) {
	registry, err := loadRegistry(sel.ProfilesDir)
	if err != nil {
		return nil, nil, err
	}
	profile, err := registry.Resolve(sel.Profile)
	if err != nil {
		return nil, nil, err
	}
	profile = profile.Override(sel.Speech, toCodes(sel.Enable), toCodes(sel.Disable))

	table, err := profile.RuleTable()
	if err != nil {
		return nil, nil, err
	}
	eng, err := profile.Engine(table, engine.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return profile, eng, nil
}

func toCodes(ns []int) []ir.Code {
	if len(ns) == 0 {
		return nil
	}
	codes := make([]ir.Code, len(ns))
	for i, n := range ns {
		codes[i] = ir.Code(n)
	}
	return codes
}

func fromCodes(codes []ir.Code) []int {
	ns := make([]int, len(codes))
	for i, c := range codes {
		ns[i] = int(c)
	}
	return ns
}

// enabledCodes lists the codes of the engine's enabled rules in
// precedence order.
func enabledCodes(e *engine.Engine) []ir.Code {
	rules := e.Rules()
	codes := make([]ir.Code, len(rules))
	for i, r := range rules {
		codes[i] = r.Code
	}
	return codes
}

// expandInputs resolves file arguments. Arguments containing glob
// metacharacters are expanded with doublestar ("corpus/**/*.conllu");
// plain paths must exist. The result keeps argument order, each glob's
// matches sorted, without duplicates.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, arg := range args {
		if !hasMeta(arg) {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("input not found: %s", arg)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("input is a directory: %s (use a glob such as %s/**/*.json)", arg, arg)
			}
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", arg, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return files, nil
}

func hasMeta(s string) bool {
	for _, c := range s {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
