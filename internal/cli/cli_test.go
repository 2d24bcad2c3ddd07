package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/cardforge/internal/cli"
	"github.com/rshade/cardforge/internal/config"
)

// execute runs the root command with the given args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// TestConfigInit verifies config init writes a loadable default config.
func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	output, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, output, "Configuration written to")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.CurrentVersion, cfg.Version)
	assert.Equal(t, 10, cfg.Run.BatchSize)
}

// TestConfigInit_ExistingFile verifies init refuses to overwrite without
// --force.
func TestConfigInit_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.New().Save(path))

	_, err := execute(t, "--config", path, "config", "init")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigExists)

	_, err = execute(t, "--config", path, "config", "init", "--force")
	require.NoError(t, err)
}

// TestConfigValidate verifies validate accepts good files and rejects bad
// ones, including files the loader itself cannot read.
func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, config.New().Save(path))

		output, err := execute(t, "--config", path, "config", "validate")
		require.NoError(t, err)
		assert.Contains(t, output, "is valid")
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: \"9.0\"\n"), 0o600))

		_, err := execute(t, "--config", path, "config", "validate")
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrUnsupportedVersion)
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.yaml")

		_, err := execute(t, "--config", path, "config", "validate")
		require.Error(t, err)
	})
}

// TestConvert_RequiresArchiveArg verifies argument validation.
func TestConvert_RequiresArchiveArg(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "convert")
	require.Error(t, err)
}

// TestRootCmd_UnknownCommand verifies unknown subcommands fail.
func TestRootCmd_UnknownCommand(t *testing.T) {
	_, err := execute(t, "definitely-not-a-command")
	require.Error(t, err)
}
