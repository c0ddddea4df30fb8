package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// ListRuns returns the most recent runs first, at most limit of them
// (all when limit <= 0). Documents are filled without sentence records.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, started_at, profile, table_version, speech, rules, tool_version
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	index := make(map[string]int)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		index[run.ID] = len(runs)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	if len(runs) == 0 {
		return runs, nil
	}

	// One query for every document rather than one per run.
	docRows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, source, text_id, digest, sentences, failed, propositions, words
		FROM documents
		ORDER BY run_id, seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer docRows.Close()

	for docRows.Next() {
		var runID string
		var d Document
		if err := docRows.Scan(&runID, &d.Seq, &d.Source, &d.TextID, &d.Digest,
			&d.Sentences, &d.Failed, &d.Propositions, &d.Words); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if i, ok := index[runID]; ok {
			runs[i].Documents = append(runs[i].Documents, d)
		}
	}
	if err := docRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return runs, nil
}

// ReadRun returns one run with its documents and sentence records.
// Returns ErrRunNotFound if no run has the id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, profile, table_version, speech, rules, tool_version
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, err
	}

	run.Documents, err = s.readDocuments(ctx, id)
	if err != nil {
		return Run{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_seq, idx, outcome, propositions, words, error_code
		FROM sentences
		WHERE run_id = ?
		ORDER BY doc_seq ASC, idx ASC
	`, id)
	if err != nil {
		return Run{}, fmt.Errorf("query sentences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seq int
		var rec Sentence
		if err := rows.Scan(&seq, &rec.Index, &rec.Outcome, &rec.Propositions, &rec.Words, &rec.ErrorCode); err != nil {
			return Run{}, fmt.Errorf("scan sentence: %w", err)
		}
		if seq >= 0 && seq < len(run.Documents) {
			run.Documents[seq].Records = append(run.Documents[seq].Records, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("iterate sentences: %w", err)
	}
	return run, nil
}

func (s *Store) readDocuments(ctx context.Context, runID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, source, text_id, digest, sentences, failed, propositions, words
		FROM documents
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Seq, &d.Source, &d.TextID, &d.Digest,
			&d.Sentences, &d.Failed, &d.Propositions, &d.Words); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// DocumentAt is a document together with the run that scored it.
type DocumentAt struct {
	RunID     string
	StartedAt time.Time
	Profile   string
	Table     string
	Document
}

// TextHistory returns every archived scoring of the text with id
// textID, oldest first.
func (s *Store) TextHistory(ctx context.Context, textID string) ([]DocumentAt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.profile, r.table_version,
		       d.seq, d.source, d.text_id, d.digest, d.sentences, d.failed, d.propositions, d.words
		FROM documents d
		JOIN runs r ON r.id = d.run_id
		WHERE d.text_id = ?
		ORDER BY r.started_at ASC, r.id COLLATE BINARY ASC, d.seq ASC
	`, textID)
	if err != nil {
		return nil, fmt.Errorf("query text history: %w", err)
	}
	defer rows.Close()

	history := []DocumentAt{}
	for rows.Next() {
		var h DocumentAt
		var started string
		if err := rows.Scan(&h.RunID, &started, &h.Profile, &h.Table,
			&h.Seq, &h.Source, &h.TextID, &h.Digest, &h.Sentences, &h.Failed, &h.Propositions, &h.Words); err != nil {
			return nil, fmt.Errorf("scan text history: %w", err)
		}
		if h.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate text history: %w", err)
	}
	return history, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var started, rules string
	if err := row.Scan(&run.ID, &started, &run.Profile, &run.Table, &run.Speech, &rules, &run.Tool); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	var err error
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.Rules, err = unmarshalRules(rules); err != nil {
		return Run{}, err
	}
	return run, nil
}
