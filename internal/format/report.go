// Package format renders scoring results.
//
// Every formatter is a pure function of one or more *scorer.Result and
// never mutates its input. The structured formats (JSON, YAML) go through
// the Batch report model and can be parsed back; the text formats (table,
// CPIDR listing, CSV, XLSX, summary) are for people and spreadsheets.
package format

import (
	"errors"

	"github.com/roach88/ideadensity/internal/adapter"
	"github.com/roach88/ideadensity/internal/density"
	"github.com/roach88/ideadensity/internal/ir"
	"github.com/roach88/ideadensity/internal/scorer"
)

// Batch is the structured report of one or more scored documents.
type Batch struct {
	SchemaVersion string   `json:"schema_version" yaml:"schema_version"`
	Tool          string   `json:"tool" yaml:"tool"`
	Documents     []Report `json:"documents" yaml:"documents"`
	Total         Summary  `json:"total" yaml:"total"`
}

// Report is the structured report of one document.
type Report struct {
	Source    string           `json:"source" yaml:"source"`
	Title     string           `json:"title,omitempty" yaml:"title,omitempty"`
	TextID    string           `json:"text_id" yaml:"text_id"`
	Table     string           `json:"table" yaml:"table"`
	Speech    bool             `json:"speech" yaml:"speech"`
	Digest    string           `json:"digest" yaml:"digest"`
	Summary   Summary          `json:"summary" yaml:"summary"`
	Sentences []SentenceReport `json:"sentences" yaml:"sentences"`
}

// Summary holds the counts of a document or a batch.
type Summary struct {
	Sentences    int             `json:"sentences" yaml:"sentences"`
	OK           int             `json:"ok" yaml:"ok"`
	Empty        int             `json:"empty" yaml:"empty"`
	Failed       int             `json:"failed" yaml:"failed"`
	Propositions int             `json:"propositions" yaml:"propositions"`
	Words        int             `json:"words" yaml:"words"`
	Density      density.Density `json:"density" yaml:"density"`
	MeanDensity  density.Density `json:"mean_sentence_density" yaml:"mean_sentence_density"`
}

// Ratio returns the proposition/word ratio of the summary.
func (s Summary) Ratio() density.Ratio {
	return density.Of(s.Propositions, s.Words)
}

// SentenceReport is the triad and outcome of one sentence.
type SentenceReport struct {
	Index        int             `json:"index" yaml:"index"`
	Text         string          `json:"text" yaml:"text"`
	Outcome      string          `json:"outcome" yaml:"outcome"`
	Propositions int             `json:"propositions" yaml:"propositions"`
	Words        int             `json:"words" yaml:"words"`
	Density      density.Density `json:"density" yaml:"density"`
	Error        *ErrorReport    `json:"error,omitempty" yaml:"error,omitempty"`
	Tokens       []TokenReport   `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// ErrorReport locates a failed sentence.
type ErrorReport struct {
	Code    string `json:"code" yaml:"code"`
	Token   *int   `json:"token,omitempty" yaml:"token,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// TokenReport is one word with its annotation.
type TokenReport struct {
	Index int    `json:"index" yaml:"index"`
	Text  string `json:"text" yaml:"text"`
	Lemma string `json:"lemma" yaml:"lemma"`
	POS   string `json:"pos" yaml:"pos"`
	Tag   string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Dep   string `json:"dep" yaml:"dep"`
	Head  int    `json:"head" yaml:"head"`

	ir.Annotation `yaml:",inline"`
}

// NewBatch builds the report of results.
func NewBatch(results ...*scorer.Result) Batch {
	b := Batch{
		SchemaVersion: ir.SchemaVersion,
		Tool:          "ideadensity " + ir.ToolVersion,
		Documents:     make([]Report, len(results)),
	}
	var (
		total density.Ratio
		ok    []density.Ratio
	)
	for i, res := range results {
		b.Documents[i] = NewReport(res)
		s := b.Documents[i].Summary
		b.Total.Sentences += s.Sentences
		b.Total.OK += s.OK
		b.Total.Empty += s.Empty
		b.Total.Failed += s.Failed
		total = total.Add(res.Total)
		for _, sr := range res.Sentences {
			if sr.Outcome == scorer.OutcomeOK {
				ok = append(ok, sr.Ratio)
			}
		}
	}
	b.Total.Propositions = total.Propositions
	b.Total.Words = total.Words
	b.Total.Density = density.From(total)
	b.Total.MeanDensity = mean(ok...)
	return b
}

// NewReport builds the report of one result.
func NewReport(res *scorer.Result) Report {
	r := Report{
		Source:    res.Source,
		Title:     res.Title,
		TextID:    res.TextID,
		Table:     res.Table,
		Speech:    res.Speech,
		Digest:    res.Digest(),
		Sentences: make([]SentenceReport, len(res.Sentences)),
	}
	r.Summary = Summary{
		Sentences:    len(res.Sentences),
		OK:           res.Count(scorer.OutcomeOK),
		Empty:        res.Count(scorer.OutcomeEmpty),
		Failed:       res.Failed(),
		Propositions: res.Total.Propositions,
		Words:        res.Total.Words,
		Density:      res.Density(),
	}
	if m, ok := res.Mean(); ok {
		r.Summary.MeanDensity = density.Density{Value: m, Defined: true}
	}
	for i, sr := range res.Sentences {
		r.Sentences[i] = newSentenceReport(sr)
	}
	return r
}

func newSentenceReport(sr scorer.SentenceResult) SentenceReport {
	out := SentenceReport{
		Index:        sr.Index,
		Text:         sr.Sentence.String(),
		Outcome:      string(sr.Outcome),
		Propositions: sr.Ratio.Propositions,
		Words:        sr.Ratio.Words,
		Density:      density.From(sr.Ratio),
	}
	if sr.Outcome == scorer.OutcomeError && sr.Err != nil {
		out.Error = newErrorReport(sr.Err)
	}
	if sr.Annotations != nil {
		out.Tokens = make([]TokenReport, len(sr.Annotations))
		for i, a := range sr.Annotations {
			w := sr.Sentence.Words[i]
			out.Tokens[i] = TokenReport{
				Index:      w.Index,
				Text:       w.Text,
				Lemma:      w.Lemma,
				POS:        w.POS.String(),
				Tag:        w.Tag.String(),
				Dep:        w.Dep,
				Head:       w.Head,
				Annotation: a,
			}
		}
	}
	return out
}

func newErrorReport(err error) *ErrorReport {
	var te *adapter.TaggingError
	if errors.As(err, &te) {
		r := &ErrorReport{Code: string(te.Code), Message: te.Message}
		if te.Token >= 0 {
			tok := te.Token
			r.Token = &tok
		}
		return r
	}
	return &ErrorReport{Code: "ERROR", Message: err.Error()}
}

func mean(rs ...density.Ratio) density.Density {
	v, ok := density.Mean(rs...)
	return density.Density{Value: v, Defined: ok}
}
