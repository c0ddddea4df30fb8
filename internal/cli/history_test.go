package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ideadensity/internal/config"
	"github.com/roach88/ideadensity/internal/store"
	"github.com/roach88/ideadensity/internal/testutil"
)

// seedArchive scores apple and dogs into run-0001, then apple alone into
// run-0002, and returns the database path.
func seedArchive(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	ids := testutil.NewSequentialIDGenerator("run")
	clock := testutil.NewStepClock()

	for _, inputs := range [][]string{{appleInput, dogsInput}, {appleInput}} {
		opts := &ScoreOptions{IDGenerator: ids, Clock: clock}
		_, err := executeScore(t, opts, append([]string{"--db", dbPath}, inputs...)...)
		require.NoError(t, err)
	}
	return dbPath
}

func executeHistory(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	return executeHistoryWith(t, &RootOptions{Format: format}, args...)
}

func executeHistoryWith(t *testing.T, root *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(root)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())
	err := cmd.Execute()
	return buf.String(), err
}

func TestHistoryCommand_ListRuns(t *testing.T) {
	dbPath := seedArchive(t)

	out, err := executeHistory(t, "text", "--db", dbPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "RUN"))
	assert.True(t, strings.HasPrefix(lines[1], "run-0002"), "newest run first")
	assert.True(t, strings.HasPrefix(lines[2], "run-0001"))
	assert.Contains(t, lines[2], "3/11")
	assert.Contains(t, lines[1], "ago")
}

func TestHistoryCommand_ListRunsJSON(t *testing.T) {
	dbPath := seedArchive(t)

	out, err := executeHistory(t, "json", "--db", dbPath, "--limit", "1")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)

	run := resp.Data[0]
	assert.Equal(t, "run-0002", run.ID)
	assert.Equal(t, "cpidr", run.Profile)
	assert.Equal(t, "cpidr-dep/1", run.Table)
	assert.Equal(t, 1, run.Documents)
	assert.Equal(t, 2, run.Propositions)
	assert.Equal(t, 9, run.Words)
	assert.Equal(t, "0.222", run.Density)
}

func TestHistoryCommand_RelativeTimes(t *testing.T) {
	dbPath := seedArchive(t)

	buf := &bytes.Buffer{}
	opts := &HistoryOptions{RootOptions: &RootOptions{Format: "text"}, Database: dbPath, Limit: 20}
	opts.Now = func() time.Time { return testutil.Epoch.Add(80 * time.Hour) }
	cmd := NewHistoryCommand(opts.RootOptions)
	cmd.SetOut(buf)
	cmd.SetContext(context.Background())
	require.NoError(t, runHistory(opts, cmd))

	assert.Contains(t, buf.String(), "3 days ago")
}

func TestHistoryCommand_TextHistory(t *testing.T) {
	dbPath := seedArchive(t)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	run, err := st.ReadRun(context.Background(), "run-0001")
	require.NoError(t, err)
	require.NoError(t, st.Close())
	appleID := run.Documents[0].TextID

	out, err := executeHistory(t, "json", "--db", dbPath, "--text", appleID)
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []TextScoring `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2, "apple was scored in both runs")
	assert.Equal(t, "run-0001", resp.Data[0].RunID, "oldest scoring first")
	assert.Equal(t, "run-0002", resp.Data[1].RunID)
	assert.Equal(t, appleInput, resp.Data[0].Source)
	assert.Equal(t, "0.222", resp.Data[1].Density)
}

func TestHistoryCommand_TextHistoryUnknown(t *testing.T) {
	dbPath := seedArchive(t)

	out, err := executeHistory(t, "text", "--db", dbPath, "--text", "nope")
	require.NoError(t, err)
	assert.Equal(t, "No scorings of this text.\n", out)
}

func TestHistoryCommand_Compare(t *testing.T) {
	dbPath := seedArchive(t)

	out, err := executeHistory(t, "text", "--db", dbPath, "--compare", "run-0001,run-0002")
	require.NoError(t, err)
	assert.Contains(t, out, crossMark+" run-0001 and run-0002 differ (1 unchanged)")
	assert.Contains(t, out, "removed "+dogsInput)
}

func TestHistoryCommand_CompareSame(t *testing.T) {
	dbPath := seedArchive(t)

	out, err := executeHistory(t, "json", "--db", dbPath, "--compare", "run-0002,run-0002")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   RunComparison `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.Same)
	assert.Equal(t, 1, resp.Data.Unchanged)
	assert.Empty(t, resp.Data.Changed)
}

func TestHistoryCommand_CompareUnknownRun(t *testing.T) {
	dbPath := seedArchive(t)

	_, err := executeHistory(t, "text", "--db", dbPath, "--compare", "run-0001,run-9999")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown run")
}

func TestHistoryCommand_DatabaseFromConfig(t *testing.T) {
	dbPath := seedArchive(t)
	cfg := config.Default()
	cfg.Archive.DB = dbPath

	out, err := executeHistoryWith(t, &RootOptions{Format: "text", Config: cfg})
	require.NoError(t, err)
	assert.Contains(t, out, "run-0001")
}

func TestHistoryCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no database", nil, "--db is required"},
		{"missing database", []string{"--db", "/nonexistent/runs.db"}, "database not found"},
		{"compare needs two ids", []string{"--db", "runs.db", "--compare", "run-0001"}, "--compare takes exactly two run ids"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeHistory(t, "text", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHistoryCommand_TextAndCompareExclusive(t *testing.T) {
	_, err := executeHistory(t, "text", "--db", "runs.db", "--text", "x", "--compare", "a,b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestHistoryCommand_EmptyArchive(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := executeHistory(t, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "No runs archived.\n", out)
}
