package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ideadensity/internal/config"
	"github.com/roach88/ideadensity/internal/format"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // one of format.Names
	LogLevel   string
	ConfigPath string

	// Config is the run configuration, loaded before any subcommand runs.
	// Flags given on the command line have already been applied to it.
	Config *config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the idensity CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "idensity",
		Short: "idensity - propositional idea density",
		Long: `Compute propositional idea density (propositions per word) for text
that has already been tagged and parsed by an external NLP pipeline.

Input is spaCy-style token JSON or CoNLL-U. Propositions are counted with
the CPIDR rules, selected through named CUE profiles.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text",
		"output format ("+strings.Join(format.NameStrings(), "|")+")")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML run configuration file")

	cmd.AddCommand(NewScoreCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))
	cmd.AddCommand(NewProfilesCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// setup loads the configuration file, lets explicit flags win over it,
// validates the format and builds the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.LoadFromFile(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = o.Format
	} else {
		o.Format = cfg.Format
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	} else {
		o.LogLevel = cfg.LogLevel
	}

	name, err := format.ParseName(o.Format)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --format", err)
	}
	o.Format = string(name)
	cfg.Format = o.Format

	level, err := parseLevel(o.LogLevel)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --log-level", err)
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(o.Logger)
	o.Config = cfg
	return nil
}

// config returns the loaded configuration, or the defaults when the
// command runs without the root (as in tests).
func (o *RootOptions) config() *config.Config {
	if o.Config == nil {
		o.Config = config.Default()
		if o.Format != "" {
			o.Config.Format = o.Format
		}
	}
	return o.Config
}

// logger returns the configured logger; without the root, logs are
// discarded.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
