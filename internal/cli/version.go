package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ideadensity/internal/engine"
	"github.com/roach88/ideadensity/internal/ir"
)

// VersionInfo is the version command output.
type VersionInfo struct {
	Tool   string `json:"tool"`
	Table  string `json:"table"`
	Schema string `json:"schema"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version information",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{Tool: ir.ToolVersion, Table: engine.DefaultVersion, Schema: ir.SchemaVersion}
			formatter := rootOpts.newFormatter(cmd)
			if formatter.JSON() {
				return formatter.Success(info)
			}
			_, err := fmt.Fprintf(formatter.Writer, "idensity %s (rules %s, report schema %s)\n",
				info.Tool, info.Table, info.Schema)
			return err
		},
	}
}
