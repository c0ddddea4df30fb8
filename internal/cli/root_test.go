package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "idensity", cmd.Use)
	assert.Contains(t, cmd.Long, "idea density")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"score", "validate", "rules", "profiles", "history", "test", "version"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, levelFlag)
	assert.Equal(t, "warn", levelFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestScoreCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	scoreCmd, _, err := cmd.Find([]string{"score"})
	require.NoError(t, err)

	for _, name := range []string{"profile", "profiles-dir", "speech", "enable", "disable", "detail",
		"workers", "input-format", "check-language", "strict-language", "db", "metrics-file", "progress", "output"} {
		assert.NotNil(t, scoreCmd.Flags().Lookup(name), "flag --%s", name)
	}
	assert.Equal(t, "cpidr", scoreCmd.Flags().Lookup("profile").DefValue)
	assert.Equal(t, "1", scoreCmd.Flags().Lookup("workers").DefValue)
	assert.Equal(t, "o", scoreCmd.Flags().Lookup("output").Shorthand)
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	dbFlag := historyCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)
	assert.Equal(t, "20", historyCmd.Flags().Lookup("limit").DefValue)
}

func TestRootInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "version"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootInvalidLogLevel(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "loud", "version"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idensity.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\nlog_level: error\n"), 0o644))

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"status": "ok"`)
}

func TestRootFlagOverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idensity.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\n"), 0o644))

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "--format", "text", "version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "idensity 0.1.0")
}

func TestRootBadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idensity.yaml")
	require.NoError(t, os.WriteFile(path, []byte("formt: json\n"), 0o644))

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "version"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestVersionCommand(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewVersionCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "idensity 0.1.0 (rules cpidr-dep/1, report schema 1)\n", buf.String())
}
