package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/ideadensity/internal/adapter"
	"github.com/roach88/ideadensity/internal/config"
	"github.com/roach88/ideadensity/internal/counter"
	"github.com/roach88/ideadensity/internal/format"
	"github.com/roach88/ideadensity/internal/metrics"
	"github.com/roach88/ideadensity/internal/scorer"
	"github.com/roach88/ideadensity/internal/store"
)

// ScoreOptions holds flags for the score command.
type ScoreOptions struct {
	*RootOptions
	ruleSelection

	Detail         bool
	Workers        int
	InputFormat    string
	CheckLanguage  bool
	StrictLanguage bool
	Database       string
	MetricsFile    string
	Progress       bool
	Output         string

	// IDGenerator and Clock override the archive's run ids and timestamps
	// (for testing). Nil uses UUIDv7 ids and the system clock.
	IDGenerator store.IDGenerator
	Clock       store.Clock
}

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	return newScoreCommand(&ScoreOptions{RootOptions: rootOpts})
}

func newScoreCommand(opts *ScoreOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <files|globs...>",
		Short: "Score tagged text files",
		Long: `Score the idea density of tagged text files.

Each argument is a JSON or CoNLL-U file, or a glob ("corpus/**/*.conllu").
The input format is inferred from the extension unless --input-format is set.
Results are written in the --format of the root command; xlsx needs --output.

Exit codes:
  0 - Every sentence was scored
  1 - Some sentences were rejected by the adapter, or a text is not English
  2 - Command error (bad flags, unreadable input, archive error)

Examples:
  idensity score story.json
  idensity score --format cpidr --speech interview.conllu
  idensity score --profile come-go --disable 520 'corpus/**/*.json'
  idensity score --db runs.db --metrics-file idensity.prom corpus/*.conllu
  idensity score --format xlsx --output results.xlsx corpus/*.json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(opts, args, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Profile, "profile", "cpidr", "rule profile")
	f.StringVar(&opts.ProfilesDir, "profiles-dir", "", "directory of additional CUE profiles")
	f.BoolVar(&opts.Speech, "speech", false, "speech mode: repetitions and fillers are not counted")
	f.IntSliceVar(&opts.Enable, "enable", nil, "rule codes to enable on top of the profile")
	f.IntSliceVar(&opts.Disable, "disable", nil, "rule codes to disable on top of the profile")
	f.BoolVar(&opts.Detail, "detail", false, "keep word annotations in json and yaml reports")
	f.IntVar(&opts.Workers, "workers", 1, "sentences scored concurrently")
	f.StringVar(&opts.InputFormat, "input-format", "", "input format (json|conllu), inferred from the extension when empty")
	f.BoolVar(&opts.CheckLanguage, "check-language", false, "warn about texts that are not English")
	f.BoolVar(&opts.StrictLanguage, "strict-language", false, "reject texts that are not English (implies --check-language)")
	f.StringVar(&opts.Database, "db", "", "archive the run in this SQLite database")
	f.StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	f.BoolVar(&opts.Progress, "progress", false, "show a progress bar on stderr")
	f.StringVarP(&opts.Output, "output", "o", "", "write the report to this file instead of stdout")

	return cmd
}

// applyConfig fills every flag not given on the command line from cfg.
func (o *ScoreOptions) applyConfig(flags *pflag.FlagSet, cfg *config.Config) {
	set := func(name string, apply func()) {
		if !flags.Changed(name) {
			apply()
		}
	}
	sc := cfg.Score
	set("profile", func() { o.Profile = sc.Profile })
	set("profiles-dir", func() { o.ProfilesDir = sc.ProfilesDir })
	set("speech", func() { o.Speech = sc.Speech })
	set("enable", func() { o.Enable = fromCodes(sc.Enable) })
	set("disable", func() { o.Disable = fromCodes(sc.Disable) })
	set("detail", func() { o.Detail = sc.Detail })
	set("workers", func() { o.Workers = sc.Workers })
	set("input-format", func() { o.InputFormat = sc.InputFormat })
	set("check-language", func() { o.CheckLanguage = cfg.Language.Check })
	set("strict-language", func() { o.StrictLanguage = cfg.Language.Strict })
	set("db", func() { o.Database = cfg.Archive.DB })
	set("metrics-file", func() { o.MetricsFile = cfg.Metrics.File })
}

func runScore(opts *ScoreOptions, args []string, cmd *cobra.Command) error {
	opts.applyConfig(cmd.Flags(), opts.config())
	logger := opts.logger()

	name, err := format.ParseName(opts.Format)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --format", err)
	}
	if name.Binary() && opts.Output == "" {
		return NewExitError(ExitCommandError, fmt.Sprintf("format %s needs --output", name))
	}
	inputFormat, err := adapter.ParseFormat(opts.InputFormat)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --input-format", err)
	}
	if opts.Workers < 0 {
		return NewExitError(ExitCommandError, "--workers must not be negative")
	}

	files, err := expandInputs(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve inputs", err)
	}
	if len(files) == 0 {
		return NewExitError(ExitCommandError, "no input files matched")
	}

	profile, eng, err := opts.ruleSelection.build(logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load rules", err)
	}
	logger.Info("rules selected", "profile", profile.Name, "table", eng.Table().Version(),
		"speech", profile.Speech, "rules", len(eng.Rules()))

	scoreOpts := scorer.Options{
		Workers:  opts.Workers,
		Detail:   opts.Detail || name.NeedsDetail(),
		Distinct: profile.Distinct,
		Logger:   logger,
	}
	if opts.CheckLanguage || opts.StrictLanguage {
		scoreOpts.Guard = adapter.NewGuard(opts.StrictLanguage, logger)
	}
	var m *metrics.Metrics
	if opts.MetricsFile != "" {
		m = metrics.New()
		scoreOpts.Observer = m
	}
	sc, err := scorer.New(eng, counter.New(profile.Speech), scoreOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build scorer", err)
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, rejected, err := scoreFiles(ctx, sc, files, inputFormat, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if opts.Database != "" && len(results) > 0 {
		if err := archive(ctx, opts, store.RunInfo{
			Profile: profile.Name,
			Table:   eng.Table().Version(),
			Speech:  profile.Speech,
			Rules:   enabledCodes(eng),
		}, results); err != nil {
			return err
		}
	}
	if m != nil {
		if err := m.WriteTextfile(opts.MetricsFile); err != nil {
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
		logger.Info("metrics written", "path", opts.MetricsFile)
	}

	if len(results) > 0 {
		if err := writeReport(opts.Output, name, results, cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	failed := 0
	for _, res := range results {
		failed += res.Failed()
	}
	switch {
	case rejected > 0:
		return NewExitError(ExitFailure, fmt.Sprintf("%d text(s) rejected by the language check", rejected))
	case failed > 0:
		return NewExitError(ExitFailure, fmt.Sprintf("%d sentence(s) could not be scored", failed))
	}
	return nil
}

// scoreFiles scores every file in order. A text rejected by the language
// guard is skipped and counted; any other error stops the run.
func scoreFiles(ctx context.Context, sc *scorer.Scorer, files []string, inputFormat adapter.Format,
	opts *ScoreOptions, progressOut io.Writer) ([]*scorer.Result, int, error) {
	logger := opts.logger()

	var bar *uiprogress.Bar
	if opts.Progress {
		p := uiprogress.New()
		p.SetOut(progressOut)
		bar = p.AddBar(len(files))
		bar.AppendCompleted()
		bar.PrependElapsed()
		bar.AppendFunc(func(b *uiprogress.Bar) string {
			if b.Current() == 0 {
				return ""
			}
			return filepath.Base(files[b.Current()-1])
		})
		p.Start()
		defer p.Stop()
	}

	results := make([]*scorer.Result, 0, len(files))
	rejected := 0
	for _, path := range files {
		res, err := sc.ScoreFile(ctx, path, inputFormat)
		switch {
		case err == nil:
			results = append(results, res)
			for _, e := range res.Errors() {
				if adapter.IsTaggingError(e) {
					logger.Warn("sentence rejected", "source", path, "error", e)
				}
			}
		case adapter.IsLanguageError(err):
			logger.Warn("text rejected", "source", path, "error", err)
			rejected++
		case errors.Is(err, context.Canceled):
			return nil, 0, WrapExitError(ExitCommandError, "scoring interrupted", err)
		default:
			return nil, 0, WrapExitError(ExitCommandError, fmt.Sprintf("failed to score %s", path), err)
		}
		if bar != nil {
			bar.Incr()
		}
	}
	return results, rejected, nil
}

// archive writes the run to the result archive.
func archive(ctx context.Context, opts *ScoreOptions, info store.RunInfo, results []*scorer.Result) error {
	var storeOpts []store.Option
	if opts.IDGenerator != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDGenerator))
	}
	if opts.Clock != nil {
		storeOpts = append(storeOpts, store.WithClock(opts.Clock))
	}

	st, err := store.Open(opts.Database, storeOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.logger().Error("error closing database", "error", closeErr)
		}
	}()

	run, err := st.WriteRun(ctx, info, results)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to archive run", err)
	}
	opts.logger().Info("run archived", "id", run.ID, "db", opts.Database, "documents", len(run.Documents))
	return nil
}

// writeReport renders results to path, or to stdout when path is empty.
func writeReport(path string, name format.Name, results []*scorer.Result, stdout io.Writer) error {
	if path == "" {
		if err := format.Write(stdout, name, results...); err != nil {
			return WrapExitError(ExitCommandError, "failed to write report", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output file", err)
	}
	if err := format.Write(f, name, results...); err != nil {
		_ = f.Close()
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}
	return nil
}
