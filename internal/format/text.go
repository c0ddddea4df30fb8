package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/roach88/ideadensity/internal/density"
	"github.com/roach88/ideadensity/internal/ir"
	"github.com/roach88/ideadensity/internal/scorer"
)

// Text writes one line per document, plus a total line when there is
// more than one.
func Text(w io.Writer, results ...*scorer.Result) error {
	ew := &errWriter{w: w}
	var total density.Ratio
	for _, res := range results {
		ew.printf("%s: %s\n", res.Source, summaryLine(res.Total, len(res.Sentences), res.Failed()))
		total = total.Add(res.Total)
	}
	if len(results) > 1 {
		sentences, failed := 0, 0
		for _, res := range results {
			sentences += len(res.Sentences)
			failed += res.Failed()
		}
		ew.printf("total: %s\n", summaryLine(total, sentences, failed))
	}
	return ew.err
}

func summaryLine(r density.Ratio, sentences, failed int) string {
	return fmt.Sprintf("%d propositions / %d words = %s (%d sentences, %d failed)",
		r.Propositions, r.Words, r.String(), sentences, failed)
}

// Table writes a tab-aligned breakdown of each document: one row per
// word when the results carry annotations, one row per sentence
// otherwise.
func Table(w io.Writer, results ...*scorer.Result) error {
	ew := &errWriter{w: w}
	for n, res := range results {
		if n > 0 {
			ew.printf("\n")
		}
		ew.printf("== %s ==\n", res.Source)
		tw := tabwriter.NewWriter(ew, 0, 4, 2, ' ', 0)
		if res.HasDetail() {
			wordRows(tw, res)
		} else {
			sentenceRows(tw, res)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		ew.printf("%s\n", summaryLine(res.Total, len(res.Sentences), res.Failed()))
	}
	return ew.err
}

func sentenceRows(w io.Writer, res *scorer.Result) {
	fmt.Fprintln(w, "SENT\tOUTCOME\tPROPS\tWORDS\tDENSITY\tTEXT")
	for _, sr := range res.Sentences {
		text := sr.Sentence.String()
		if sr.Outcome == scorer.OutcomeError && sr.Err != nil {
			text = sr.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\n",
			sr.Index, sr.Outcome, sr.Ratio.Propositions, sr.Ratio.Words, sr.Ratio.String(), text)
	}
}

func wordRows(w io.Writer, res *scorer.Result) {
	fmt.Fprintln(w, "SENT\tTOKEN\tTAG\tPOS\tDEP\tHEAD\tW\tP\tRULE\tRATIONALE")
	for _, sr := range res.Sentences {
		if sr.Outcome == scorer.OutcomeError {
			fmt.Fprintf(w, "%d\t-\t\t\t\t\t\t\t\t%v\n", sr.Index, sr.Err)
			continue
		}
		for i, a := range sr.Annotations {
			word := sr.Sentence.Words[i]
			rationale := a.Rationale
			if a.Negated {
				rationale += " (negated)"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
				sr.Index, word.Text, word.Tag, word.POS, word.Dep, word.Head,
				flag(a.Word, "W"), flag(a.Proposition, "P"), a.Rule, rationale)
		}
	}
}

// CPIDR writes the CPIDR 3 compatible listing: a header, then for each
// document its name in quotes, one line per token
// (" RULE TAG  W P token") and the totals. Sentences rejected by the
// adapter have no tokens to list and are skipped.
func CPIDR(w io.Writer, results ...*scorer.Result) error {
	ew := &errWriter{w: w}
	table := ""
	if len(results) > 0 {
		table = results[0].Table
	}
	ew.printf("ideadensity %s\n", ir.ToolVersion)
	ew.printf("Using rule table %s\n\n\n", table)

	for n, res := range results {
		if n > 0 {
			ew.printf("\n\n\n")
		}
		ew.printf("%q\n", res.Source)
		for _, sr := range res.Sentences {
			for i, a := range sr.Annotations {
				word := sr.Sentence.Words[i]
				ew.printf(" %s %-4s %s %s %s\n",
					a.Rule, cpidrTag(word), flag(a.Word, "W"), flag(a.Proposition, "P"), word.Text)
			}
		}
		ew.printf("\n\n")
		ew.printf("     %d propositions\n", res.Total.Propositions)
		ew.printf("     %d words\n", res.Total.Words)
		ew.printf(" %s density\n", res.Total.String())
	}
	return ew.err
}

// cpidrTag is the Penn tag, or the coarse category when the tagger gave
// none.
func cpidrTag(w ir.Word) string {
	if w.Tag == ir.TagNone {
		return w.POS.String()
	}
	return w.Tag.String()
}

func flag(on bool, s string) string {
	if on {
		return s
	}
	return strings.Repeat(" ", len(s))
}

// errWriter keeps the first write error so formatters can print freely
// and check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}
