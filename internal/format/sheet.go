package format

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/roach88/ideadensity/internal/scorer"
)

var wordHeader = []string{"Source", "Sentence", "Token", "Tag", "Is Word", "Is Proposition", "Rule Number"}

var sentenceHeader = []string{"Source", "Sentence", "Outcome", "Propositions", "Words", "Density", "Text"}

// wordRecords returns one row per annotated word. As in CPIDR's export,
// the rule number is only filled for propositions.
func wordRecords(results []*scorer.Result) [][]string {
	var rows [][]string
	for _, res := range results {
		for _, sr := range res.Sentences {
			for i, a := range sr.Annotations {
				word := sr.Sentence.Words[i]
				rule := ""
				if a.Proposition {
					rule = a.Rule.String()
				}
				rows = append(rows, []string{
					res.Source,
					strconv.Itoa(sr.Index),
					word.Text,
					cpidrTag(word),
					pyBool(a.Word),
					pyBool(a.Proposition),
					rule,
				})
			}
		}
	}
	return rows
}

func sentenceRecords(results []*scorer.Result) [][]string {
	var rows [][]string
	for _, res := range results {
		for _, sr := range res.Sentences {
			rows = append(rows, []string{
				res.Source,
				strconv.Itoa(sr.Index),
				string(sr.Outcome),
				strconv.Itoa(sr.Ratio.Propositions),
				strconv.Itoa(sr.Ratio.Words),
				sr.Ratio.Format(6),
				sr.Sentence.String(),
			})
		}
	}
	return rows
}

// pyBool spells booleans the way the CPIDR tools did, so existing
// spreadsheets keep working.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// CSV writes the per-word export (one row per word) when the results
// carry annotations, and a per-sentence export otherwise.
func CSV(w io.Writer, results ...*scorer.Result) error {
	cw := csv.NewWriter(w)
	header, rows := sentenceHeader, sentenceRecords(results)
	if hasDetail(results) {
		header, rows = wordHeader, wordRecords(results)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Sheet names of the XLSX workbook.
const (
	SheetSummary   = "Summary"
	SheetSentences = "Sentences"
	SheetWords     = "Words"
)

// XLSX writes a workbook with a per-document summary sheet, a sentence
// sheet and, when the results carry annotations, a word sheet.
func XLSX(w io.Writer, results ...*scorer.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	summary := [][]string{{"Source", "Sentences", "Failed", "Propositions", "Words", "Density", "Digest"}}
	for _, res := range results {
		summary = append(summary, []string{
			res.Source,
			strconv.Itoa(len(res.Sentences)),
			strconv.Itoa(res.Failed()),
			strconv.Itoa(res.Total.Propositions),
			strconv.Itoa(res.Total.Words),
			res.Total.Format(6),
			res.Digest(),
		})
	}
	if err := writeSheet(f, SheetSummary, summary, 1, 2, 3, 4, 5); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetSentences); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := writeSheet(f, SheetSentences, append([][]string{sentenceHeader}, sentenceRecords(results)...), 1, 3, 4, 5); err != nil {
		return err
	}

	if hasDetail(results) {
		if _, err := f.NewSheet(SheetWords); err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		if err := writeSheet(f, SheetWords, append([][]string{wordHeader}, wordRecords(results)...), 1); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	return nil
}

// writeSheet writes rows from A1. Below the header, the numeric columns
// are stored as numbers so spreadsheet formulas work on them; an
// undefined density stays text.
func writeSheet(f *excelize.File, sheet string, rows [][]string, numeric ...int) error {
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
			if i > 0 && slices.Contains(numeric, j) {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					cells[j] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("xlsx: sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func hasDetail(results []*scorer.Result) bool {
	for _, res := range results {
		if res.HasDetail() {
			return true
		}
	}
	return false
}
