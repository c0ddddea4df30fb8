package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// RulesOptions holds flags for the rules command.
type RulesOptions struct {
	*RootOptions
	ruleSelection
}

// RuleInfo describes one rule of the table under a profile.
type RuleInfo struct {
	Code       int    `json:"code"`
	Name       string `json:"name"`
	Precedence int    `json:"precedence"`
	Mode       string `json:"mode"`
	Decision   bool   `json:"decision"`
	Enabled    bool   `json:"enabled"`
	Rationale  string `json:"rationale"`
}

// RulesListing is the rules command output.
type RulesListing struct {
	Table   string     `json:"table"`
	Profile string     `json:"profile"`
	Speech  bool       `json:"speech"`
	Rules   []RuleInfo `json:"rules"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rule table",
		Long: `List the pinned rule table in precedence order, with the rules the
selected profile enables.

Examples:
  idensity rules
  idensity rules --profile speech
  idensity rules --enable 512 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Profile, "profile", "cpidr", "rule profile")
	f.StringVar(&opts.ProfilesDir, "profiles-dir", "", "directory of additional CUE profiles")
	f.BoolVar(&opts.Speech, "speech", false, "speech mode")
	f.IntSliceVar(&opts.Enable, "enable", nil, "rule codes to enable on top of the profile")
	f.IntSliceVar(&opts.Disable, "disable", nil, "rule codes to disable on top of the profile")

	return cmd
}

func runRules(opts *RulesOptions, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	profile, eng, err := opts.ruleSelection.build(opts.logger())
	if err != nil {
		_ = formatter.Error(ErrCodeProfile, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load rules", err)
	}

	table := eng.Table()
	listing := RulesListing{Table: table.Version(), Profile: profile.Name, Speech: profile.Speech}
	for _, r := range table.Rules() {
		listing.Rules = append(listing.Rules, RuleInfo{
			Code:       int(r.Code),
			Name:       r.Name,
			Precedence: r.Precedence,
			Mode:       r.Mode.String(),
			Decision:   r.Decision,
			Enabled:    eng.Enabled(r.Code),
			Rationale:  r.Rationale,
		})
	}

	if formatter.JSON() {
		return formatter.Success(listing)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "table %s, profile %s (speech %t)\n\n", listing.Table, listing.Profile, listing.Speech)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tMODE\tPROPOSITION\tENABLED\tRATIONALE")
	for _, r := range listing.Rules {
		fmt.Fprintf(tw, "%03d\t%s\t%s\t%s\t%s\t%s\n",
			r.Code, r.Name, r.Mode, yesNo(r.Decision), yesNo(r.Enabled), r.Rationale)
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
