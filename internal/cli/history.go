package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/ideadensity/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Text     string
	Compare  []string

	// Now is the reference time of relative timestamps (for testing).
	// If nil, defaults to time.Now.
	Now func() time.Time
}

// RunSummary is one archived run as listed by history.
type RunSummary struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	Profile      string    `json:"profile"`
	Table        string    `json:"table"`
	Speech       bool      `json:"speech"`
	Documents    int       `json:"documents"`
	Propositions int       `json:"propositions"`
	Words        int       `json:"words"`
	Density      string    `json:"density"`
}

// TextScoring is one archived scoring of a text.
type TextScoring struct {
	RunID        string    `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	Profile      string    `json:"profile"`
	Source       string    `json:"source"`
	Digest       string    `json:"digest"`
	Propositions int       `json:"propositions"`
	Words        int       `json:"words"`
	Density      string    `json:"density"`
}

// DocumentDiff is a text whose scoring changed between two runs.
type DocumentDiff struct {
	TextID string `json:"text_id"`
	Source string `json:"source"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// RunComparison is the history --compare output.
type RunComparison struct {
	Before    string         `json:"before"`
	After     string         `json:"after"`
	Same      bool           `json:"same"`
	Unchanged int            `json:"unchanged"`
	Changed   []DocumentDiff `json:"changed,omitempty"`
	Removed   []string       `json:"removed,omitempty"`
	Added     []string       `json:"added,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect archived runs",
		Long: `Inspect the runs archived by score --db.

Without other flags the most recent runs are listed. --text lists every
scoring of one text (by its text id); --compare matches the documents of
two runs by text id and reports which scorings changed.

Examples:
  idensity history --db runs.db
  idensity history --db runs.db --limit 5 --format json
  idensity history --db runs.db --text 3f9a...
  idensity history --db runs.db --compare RUN_A,RUN_B`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.Text, "text", "", "list the scorings of one text id")
	cmd.Flags().StringSliceVar(&opts.Compare, "compare", nil, "compare two runs: BEFORE,AFTER")
	cmd.MarkFlagsMutuallyExclusive("text", "compare")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)
	if opts.Database == "" {
		opts.Database = opts.config().Archive.DB
	}
	if opts.Database == "" {
		return NewExitError(ExitCommandError, "--db is required")
	}
	if opts.Compare != nil && len(opts.Compare) != 2 {
		return NewExitError(ExitCommandError, "--compare takes exactly two run ids")
	}

	if _, err := os.Stat(opts.Database); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.logger().Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	switch {
	case opts.Compare != nil:
		c, err := st.Compare(ctx, opts.Compare[0], opts.Compare[1])
		if err != nil {
			return archiveError(formatter, err)
		}
		return outputComparison(formatter, newRunComparison(c))

	case opts.Text != "":
		docs, err := st.TextHistory(ctx, opts.Text)
		if err != nil {
			return archiveError(formatter, err)
		}
		scorings := make([]TextScoring, len(docs))
		for i, d := range docs {
			scorings[i] = TextScoring{
				RunID:        d.RunID,
				StartedAt:    d.StartedAt,
				Profile:      d.Profile,
				Source:       d.Source,
				Digest:       d.Digest,
				Propositions: d.Propositions,
				Words:        d.Words,
				Density:      d.Ratio().String(),
			}
		}
		if formatter.JSON() {
			return formatter.Success(scorings)
		}
		return writeTextHistory(formatter.Writer, scorings, opts.now())

	default:
		runs, err := st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return archiveError(formatter, err)
		}
		summaries := make([]RunSummary, len(runs))
		for i, r := range runs {
			total := r.Ratio()
			summaries[i] = RunSummary{
				ID:           r.ID,
				StartedAt:    r.StartedAt,
				Profile:      r.Profile,
				Table:        r.Table,
				Speech:       r.Speech,
				Documents:    len(r.Documents),
				Propositions: total.Propositions,
				Words:        total.Words,
				Density:      total.String(),
			}
		}
		if formatter.JSON() {
			return formatter.Success(summaries)
		}
		return writeRuns(formatter.Writer, summaries, opts.now())
	}
}

func (o *HistoryOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func archiveError(formatter *OutputFormatter, err error) error {
	_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
	if errors.Is(err, store.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, "unknown run", err)
	}
	return WrapExitError(ExitCommandError, "archive query failed", err)
}

func ago(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

func writeRuns(w io.Writer, runs []RunSummary, now time.Time) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs archived.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tPROFILE\tTABLE\tDOCUMENTS\tP/W\tDENSITY")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d/%d\t%s\n",
			r.ID, ago(r.StartedAt, now), r.Profile, r.Table, r.Documents, r.Propositions, r.Words, r.Density)
	}
	return tw.Flush()
}

func writeTextHistory(w io.Writer, scorings []TextScoring, now time.Time) error {
	if len(scorings) == 0 {
		_, err := fmt.Fprintln(w, "No scorings of this text.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tPROFILE\tSOURCE\tP/W\tDENSITY")
	for _, s := range scorings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			s.RunID, ago(s.StartedAt, now), s.Profile, s.Source, s.Propositions, s.Words, s.Density)
	}
	return tw.Flush()
}

func newRunComparison(c store.Comparison) RunComparison {
	out := RunComparison{
		Before:    c.Before.ID,
		After:     c.After.ID,
		Same:      c.Same(),
		Unchanged: len(c.Unchanged),
	}
	for _, ch := range c.Changed {
		out.Changed = append(out.Changed, DocumentDiff{
			TextID: ch.TextID,
			Source: ch.After.Source,
			Before: ch.Before.Ratio().String(),
			After:  ch.After.Ratio().String(),
		})
	}
	for _, d := range c.Removed {
		out.Removed = append(out.Removed, d.Source)
	}
	for _, d := range c.Added {
		out.Added = append(out.Added, d.Source)
	}
	return out
}

func outputComparison(formatter *OutputFormatter, c RunComparison) error {
	if formatter.JSON() {
		return formatter.Success(c)
	}

	w := formatter.Writer
	if c.Same {
		fmt.Fprintf(w, "%s %s and %s agree on %d text(s)\n", checkMark, c.Before, c.After, c.Unchanged)
		return nil
	}
	fmt.Fprintf(w, "%s %s and %s differ (%d unchanged)\n", crossMark, c.Before, c.After, c.Unchanged)
	for _, d := range c.Changed {
		fmt.Fprintf(w, "  changed %s: %s -> %s\n", d.Source, d.Before, d.After)
	}
	for _, s := range c.Removed {
		fmt.Fprintf(w, "  removed %s\n", s)
	}
	for _, s := range c.Added {
		fmt.Fprintf(w, "  added %s\n", s)
	}
	return nil
}
