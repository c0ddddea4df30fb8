package store

import (
	"context"
	"fmt"
)

// DocumentChange pairs the scorings of one text in two runs.
type DocumentChange struct {
	TextID string
	Before Document
	After  Document
}

// Comparison is the difference between two runs, matched on TextID.
type Comparison struct {
	Before, After Run

	// Unchanged documents have the same digest in both runs: every
	// decision agrees.
	Unchanged []DocumentChange
	// Changed documents have different digests. Their counts may still
	// agree when decisions moved between words.
	Changed []DocumentChange
	// Removed and Added are texts scored in only one of the runs.
	Removed []Document
	Added   []Document
}

// Same reports whether the runs agree on every shared text and score the
// same texts.
func (c Comparison) Same() bool {
	return len(c.Changed) == 0 && len(c.Removed) == 0 && len(c.Added) == 0
}

// Compare matches the documents of two runs by TextID. When a run scored
// the same text twice, the first occurrence is used.
func (s *Store) Compare(ctx context.Context, beforeID, afterID string) (Comparison, error) {
	before, err := s.ReadRun(ctx, beforeID)
	if err != nil {
		return Comparison{}, fmt.Errorf("compare: %w", err)
	}
	after, err := s.ReadRun(ctx, afterID)
	if err != nil {
		return Comparison{}, fmt.Errorf("compare: %w", err)
	}

	c := Comparison{Before: before, After: after}
	afterByText := firstByText(after.Documents)
	beforeByText := firstByText(before.Documents)

	for _, d := range before.Documents {
		if beforeByText[d.TextID].Seq != d.Seq {
			continue
		}
		other, ok := afterByText[d.TextID]
		if !ok {
			c.Removed = append(c.Removed, d)
			continue
		}
		change := DocumentChange{TextID: d.TextID, Before: d, After: other}
		if d.Digest == other.Digest {
			c.Unchanged = append(c.Unchanged, change)
		} else {
			c.Changed = append(c.Changed, change)
		}
	}
	for _, d := range after.Documents {
		if afterByText[d.TextID].Seq != d.Seq {
			continue
		}
		if _, ok := beforeByText[d.TextID]; !ok {
			c.Added = append(c.Added, d)
		}
	}
	return c, nil
}

func firstByText(docs []Document) map[string]Document {
	m := make(map[string]Document, len(docs))
	for _, d := range docs {
		if _, ok := m[d.TextID]; !ok {
			m[d.TextID] = d
		}
	}
	return m
}
