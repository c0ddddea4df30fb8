package harness

import "github.com/roach88/ideadensity/internal/ir"

// TraceEvent is the decision taken for one word of a scored sentence.
type TraceEvent struct {
	Sentence    int     `json:"sentence"`
	Index       int     `json:"index"`
	Text        string  `json:"text"`
	Tag         string  `json:"tag"`
	Proposition bool    `json:"proposition"`
	Rule        ir.Code `json:"rule"`
	Word        bool    `json:"word"`
	Negated     bool    `json:"negated,omitempty"`
}

// SentenceOutcome summarizes one sentence of the scenario input.
type SentenceOutcome struct {
	Index        int    `json:"index"`
	Outcome      string `json:"outcome"`
	ErrorCode    string `json:"error_code,omitempty"`
	Propositions int    `json:"propositions"`
	Words        int    `json:"words"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the expect clause and every assertion hold.
	Pass bool `json:"pass"`

	Profile      string            `json:"profile"`
	Table        string            `json:"table"`
	Propositions int               `json:"propositions"`
	Words        int               `json:"words"`
	Density      string            `json:"density"`
	Sentences    []SentenceOutcome `json:"sentences"`

	// Trace holds every word decision in input order. Failed sentences
	// contribute no events.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Sentences: []SentenceOutcome{},
		Trace:     []TraceEvent{},
		Errors:    []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Count returns the number of trace events that satisfy pred.
func (r *Result) Count(pred func(TraceEvent) bool) int {
	n := 0
	for _, e := range r.Trace {
		if pred(e) {
			n++
		}
	}
	return n
}
