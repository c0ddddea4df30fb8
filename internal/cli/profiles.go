package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/ideadensity/internal/compiler"
	"github.com/roach88/ideadensity/internal/ir"
)

// ProfilesOptions holds flags for the profiles command.
type ProfilesOptions struct {
	*RootOptions
	ProfilesDir string
}

// ProfilesListing is the profiles command output.
type ProfilesListing struct {
	Profiles []compiler.Profile     `json:"profiles"`
	Cycles   []compiler.CycleWarning `json:"cycles,omitempty"`
}

// NewProfilesCommand creates the profiles command.
func NewProfilesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfilesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List rule profiles",
		Long: `List the builtin rule profiles and those loaded from --profiles-dir.

Profiles are listed as written, before their extends chain is resolved.
Extends cycles are reported as warnings; run validate for a full check.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ProfilesDir, "profiles-dir", "", "directory of additional CUE profiles")

	return cmd
}

func runProfiles(opts *ProfilesOptions, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	registry, err := loadRegistry(opts.ProfilesDir)
	if err != nil {
		_ = formatter.Error(ErrCodeProfile, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load profiles", err)
	}

	profiles := registry.Profiles()
	listing := ProfilesListing{Profiles: profiles, Cycles: compiler.AnalyzeExtends(profiles)}
	if formatter.JSON() {
		return formatter.Success(listing)
	}

	w := formatter.Writer
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEXTENDS\tTABLE\tSPEECH\tENABLE\tDISABLE\tSOURCE\tDESCRIPTION")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Name, dash(p.Extends), dash(p.Table), yesNo(p.Speech), codeList(p.Enable), codeList(p.Disable), p.Source, p.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, c := range listing.Cycles {
		fmt.Fprintf(w, "warning: %s\n", c.Message)
	}
	return nil
}

func codeList(codes []ir.Code) string {
	if len(codes) == 0 {
		return "-"
	}
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
