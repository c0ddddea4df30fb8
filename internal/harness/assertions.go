package harness

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/ideadensity/internal/store"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Identifiers cannot be bound as parameters, so they are checked instead.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Decisions of the sentence concerned, if any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nSentence %d:\n", e.Trace[0].Sentence)
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s/%s %s\n", ev.Index, ev.Text, ev.Tag, describe(ev))
		}
	}

	return buf.String()
}

func describe(ev TraceEvent) string {
	var parts []string
	if ev.Word {
		parts = append(parts, "word")
	}
	if ev.Proposition {
		parts = append(parts, "proposition")
	}
	if ev.Negated {
		parts = append(parts, "negated")
	}
	parts = append(parts, "rule "+ev.Rule.String())
	return strings.Join(parts, ", ")
}

func sentenceTrace(trace []TraceEvent, sentence int) []TraceEvent {
	var out []TraceEvent
	for _, ev := range trace {
		if ev.Sentence == sentence {
			out = append(out, ev)
		}
	}
	return out
}

// assertDecision checks the decision taken for the first word of the
// sentence whose surface text is assertion.Word.
func assertDecision(trace []TraceEvent, assertion Assertion) error {
	events := sentenceTrace(trace, assertion.Sentence)
	for _, ev := range events {
		if ev.Text != assertion.Word {
			continue
		}
		var diffs []string
		if p := assertion.Proposition; p != nil && *p != ev.Proposition {
			diffs = append(diffs, fmt.Sprintf("proposition=%t", ev.Proposition))
		}
		if c := assertion.Counted; c != nil && *c != ev.Word {
			diffs = append(diffs, fmt.Sprintf("counted=%t", ev.Word))
		}
		if n := assertion.Negated; n != nil && *n != ev.Negated {
			diffs = append(diffs, fmt.Sprintf("negated=%t", ev.Negated))
		}
		if assertion.Rule != 0 && assertion.Rule != ev.Rule {
			diffs = append(diffs, fmt.Sprintf("rule=%s", ev.Rule))
		}
		if len(diffs) == 0 {
			return nil
		}
		return &AssertionError{
			Type:     AssertDecision,
			Expected: fmt.Sprintf("word %q of sentence %d: %s", assertion.Word, assertion.Sentence, wantDecision(assertion)),
			Actual:   strings.Join(diffs, " "),
			Trace:    events,
		}
	}

	return &AssertionError{
		Type:     AssertDecision,
		Expected: fmt.Sprintf("word %q in sentence %d", assertion.Word, assertion.Sentence),
		Actual:   "not found in trace",
		Trace:    events,
	}
}

func wantDecision(a Assertion) string {
	var parts []string
	if a.Proposition != nil {
		parts = append(parts, fmt.Sprintf("proposition=%t", *a.Proposition))
	}
	if a.Counted != nil {
		parts = append(parts, fmt.Sprintf("counted=%t", *a.Counted))
	}
	if a.Negated != nil {
		parts = append(parts, fmt.Sprintf("negated=%t", *a.Negated))
	}
	if a.Rule != 0 {
		parts = append(parts, fmt.Sprintf("rule=%s", a.Rule))
	}
	return strings.Join(parts, " ")
}

// assertRuleCount checks how many words, over all sentences, a rule decided.
func assertRuleCount(result *Result, assertion Assertion) error {
	got := result.Count(func(ev TraceEvent) bool { return ev.Rule == assertion.Rule })
	if got == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRuleCount,
		Expected: fmt.Sprintf("rule %s decides %d words", assertion.Rule, assertion.Count),
		Actual:   fmt.Sprintf("%d words", got),
	}
}

// assertOutcome checks the outcome of one sentence and, for a rejected
// sentence, the tagging error code.
func assertOutcome(result *Result, assertion Assertion) error {
	if assertion.Sentence >= len(result.Sentences) {
		return &AssertionError{
			Type:     AssertOutcome,
			Expected: fmt.Sprintf("sentence %d", assertion.Sentence),
			Actual:   fmt.Sprintf("input has %d sentences", len(result.Sentences)),
		}
	}
	got := result.Sentences[assertion.Sentence]
	if got.Outcome == assertion.Outcome && (assertion.ErrorCode == "" || assertion.ErrorCode == got.ErrorCode) {
		return nil
	}
	want, actual := assertion.Outcome, got.Outcome
	if assertion.ErrorCode != "" {
		want += " " + assertion.ErrorCode
	}
	if got.ErrorCode != "" {
		actual += " " + got.ErrorCode
	}
	return &AssertionError{
		Type:     AssertOutcome,
		Expected: fmt.Sprintf("sentence %d %s", assertion.Sentence, want),
		Actual:   actual,
		Trace:    sentenceTrace(result.Trace, assertion.Sentence),
	}
}

// assertArchived checks that the archive table has exactly one row
// matching Where, and that the row holds the Expect values.
func assertArchived(ctx context.Context, st *store.Store, assertion Assertion) error {
	if !validIdentifier.MatchString(assertion.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", assertion.Table, validIdentifier.String())
	}

	whereSQL, whereArgs, err := buildWhereClause(assertion.Where)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s", assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	rows, err := st.Query(ctx, query, whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertArchived,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("get columns: %w", err)
	}

	if !rows.Next() {
		return &AssertionError{
			Type:     AssertArchived,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, formatWhereClause(assertion.Where)),
			Actual:   "row not found",
		}
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return fmt.Errorf("scan row: %w", err)
	}

	if rows.Next() {
		return &AssertionError{
			Type:     AssertArchived,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, formatWhereClause(assertion.Where)),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}

	row := make(map[string]any, len(columns))
	for i, col := range columns {
		row[col] = values[i]
	}

	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		expected := assertion.Expect[key]
		actual, exists := row[key]
		if !exists {
			return &AssertionError{
				Type:     AssertArchived,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not present in result columns: %v", key, columns),
			}
		}
		if !archivedValuesEqual(expected, actual) {
			return &AssertionError{
				Type:     AssertArchived,
				Expected: fmt.Sprintf("field %q = %v (type %T)", key, expected, expected),
				Actual:   fmt.Sprintf("field %q = %v (type %T)", key, actual, actual),
			}
		}
	}

	return nil
}

// buildWhereClause constructs a parameterized WHERE clause. Keys are
// sorted for determinism.
func buildWhereClause(where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", key))
		args = append(args, where[key])
	}

	return strings.Join(clauses, " AND "), args, nil
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// archivedValuesEqual compares a YAML value with a SQLite column value.
// SQLite returns int64 for integers and booleans, and TEXT as string or
// []byte depending on the column declaration.
func archivedValuesEqual(expected, actual any) bool {
	if b, ok := actual.([]byte); ok {
		actual = string(b)
	}
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	switch exp := expected.(type) {
	case string:
		got, ok := actual.(string)
		return ok && exp == got
	case int:
		got, ok := actual.(int64)
		return ok && int64(exp) == got
	case int64:
		got, ok := actual.(int64)
		return ok && exp == got
	case float64:
		switch got := actual.(type) {
		case float64:
			return exp == got
		case int64:
			return exp == float64(got)
		}
		return false
	case bool:
		switch got := actual.(type) {
		case bool:
			return exp == got
		case int64:
			return exp == (got != 0)
		}
		return false
	}
	return fmt.Sprint(expected) == fmt.Sprint(actual)
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides the archive for archived assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertDecision:
			err = assertDecision(result.Trace, assertion)
		case AssertRuleCount:
			err = assertRuleCount(result, assertion)
		case AssertOutcome:
			err = assertOutcome(result, assertion)
		case AssertArchived:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: archived requires a store", i)
			} else {
				err = assertArchived(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
