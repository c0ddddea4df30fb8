package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/ideadensity/internal/adapter"
	"github.com/roach88/ideadensity/internal/density"
	"github.com/roach88/ideadensity/internal/ir"
	"github.com/roach88/ideadensity/internal/scorer"
)

// timeLayout is used for started_at; fixed width so text order is time
// order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// RunInfo describes the rule selection of a run.
type RunInfo struct {
	Profile string
	Table   string
	Speech  bool
	// Rules are the enabled rule codes, in precedence order.
	Rules []ir.Code
}

// Run is an archived scoring run.
type Run struct {
	ID        string
	StartedAt time.Time
	Tool      string
	RunInfo
	Documents []Document
}

// Ratio returns the aggregate counts over the run's documents.
func (r Run) Ratio() density.Ratio {
	var total density.Ratio
	for _, d := range r.Documents {
		total = total.Add(d.Ratio())
	}
	return total
}

// Document is the archived outcome of one text.
type Document struct {
	Seq          int
	Source       string
	TextID       string
	Digest       string
	Sentences    int
	Failed       int
	Propositions int
	Words        int

	// Records is filled by ReadRun only.
	Records []Sentence
}

// Ratio returns the document's proposition/word ratio.
func (d Document) Ratio() density.Ratio {
	return density.Of(d.Propositions, d.Words)
}

// Sentence is the archived outcome of one sentence.
type Sentence struct {
	Index        int
	Outcome      string
	Propositions int
	Words        int
	// ErrorCode is the adapter's code for failed sentences.
	ErrorCode string
}

// WriteRun archives the results of one run in a single transaction and
// returns the stored run.
func (s *Store) WriteRun(ctx context.Context, info RunInfo, results []*scorer.Result) (Run, error) {
	rules, err := marshalRules(info.Rules)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	run := Run{
		ID:        s.ids.Generate(),
		StartedAt: s.clock.Now().UTC(),
		Tool:      ir.ToolVersion,
		RunInfo:   info,
		Documents: make([]Document, len(results)),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, profile, table_version, speech, rules, tool_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.Format(timeLayout), info.Profile, info.Table, info.Speech, rules, run.Tool)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	docStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (run_id, seq, source, text_id, digest, sentences, failed, propositions, words)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	defer docStmt.Close()

	sentStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sentences (run_id, doc_seq, idx, outcome, propositions, words, error_code)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	defer sentStmt.Close()

	for seq, res := range results {
		doc := Document{
			Seq:          seq,
			Source:       res.Source,
			TextID:       res.TextID,
			Digest:       res.Digest(),
			Sentences:    len(res.Sentences),
			Failed:       res.Failed(),
			Propositions: res.Total.Propositions,
			Words:        res.Total.Words,
		}
		if _, err := docStmt.ExecContext(ctx, run.ID, doc.Seq, doc.Source, doc.TextID, doc.Digest,
			doc.Sentences, doc.Failed, doc.Propositions, doc.Words); err != nil {
			return Run{}, fmt.Errorf("write document %s: %w", res.Source, err)
		}

		for _, sr := range res.Sentences {
			rec := sentenceRecord(sr)
			if _, err := sentStmt.ExecContext(ctx, run.ID, doc.Seq, rec.Index, rec.Outcome,
				rec.Propositions, rec.Words, rec.ErrorCode); err != nil {
				return Run{}, fmt.Errorf("write document %s sentence %d: %w", res.Source, sr.Index, err)
			}
			doc.Records = append(doc.Records, rec)
		}
		run.Documents[seq] = doc
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}

func sentenceRecord(sr scorer.SentenceResult) Sentence {
	rec := Sentence{
		Index:        sr.Index,
		Outcome:      string(sr.Outcome),
		Propositions: sr.Ratio.Propositions,
		Words:        sr.Ratio.Words,
	}
	if sr.Outcome == scorer.OutcomeError {
		rec.ErrorCode = "ERROR"
		var te *adapter.TaggingError
		if errors.As(sr.Err, &te) {
			rec.ErrorCode = string(te.Code)
		}
	}
	return rec
}

// DeleteRun removes a run and everything archived with it.
// Returns ErrRunNotFound if no run has the id.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrRunNotFound)
	}
	return nil
}
