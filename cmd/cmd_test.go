package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklist/internal/config"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var cliErr *clierr.Error
	require.True(t, errors.As(err, &cliErr), "expected clierr, got %v", err)
	assert.Equal(t, code, cliErr.Code)
}

func TestParseIDs(t *testing.T) {
	refs, err := parseIDs(" ab12 ,cd34,ab12")
	require.NoError(t, err)
	assert.Equal(t, []string{"ab12", "cd34"}, refs)

	_, err = parseIDs("ab12,,cd34")
	requireCode(t, err, clierr.InvalidTaskID)

	_, err = parseIDs("")
	requireCode(t, err, clierr.InvalidTaskID)
}

func TestReadAnswer(t *testing.T) {
	tests := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		"n\n":   false,
		"\n":    false,
		"":      false,
	}
	for input, want := range tests {
		var prompt bytes.Buffer
		got := readAnswer(strings.NewReader(input), &prompt, "Delete?")
		assert.Equal(t, want, got, "input %q", input)
		assert.Equal(t, "Delete? [y/N] ", prompt.String())
	}
}

func newEditCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "edit"}
	addEditFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestEditPatch(t *testing.T) {
	patch, err := editPatch(newEditCommand(t, "--title", "New", "--description", "why"))
	require.NoError(t, err)
	require.NotNil(t, patch.Title)
	require.NotNil(t, patch.Notes)
	assert.Equal(t, "New", *patch.Title)
	assert.Equal(t, "why", *patch.Notes)
	assert.Nil(t, patch.Completed)

	patch, err = editPatch(newEditCommand(t, "--notes", ""))
	require.NoError(t, err)
	require.NotNil(t, patch.Notes, "clearing notes is a change")

	patch, err = editPatch(newEditCommand(t, "--done"))
	require.NoError(t, err)
	assert.Equal(t, task.SetCompleted(true), patch)
}

func TestEditPatchErrors(t *testing.T) {
	_, err := editPatch(newEditCommand(t))
	requireCode(t, err, clierr.NoChanges)

	_, err = editPatch(newEditCommand(t, "--title", "  "))
	requireCode(t, err, clierr.EmptyTitle)

	_, err = editPatch(newEditCommand(t, "--done", "--undone"))
	requireCode(t, err, clierr.InvalidInput)
}

func TestResolveAddTitle(t *testing.T) {
	cmd := &cobra.Command{Use: "add"}
	cmd.Flags().String("title", "", "")

	title, err := resolveAddTitle(cmd, []string{"Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", title)

	_, err = resolveAddTitle(cmd, nil)
	requireCode(t, err, clierr.InvalidInput)

	require.NoError(t, cmd.Flags().Set("title", "Walk dog"))
	title, err = resolveAddTitle(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "Walk dog", title)

	_, err = resolveAddTitle(cmd, []string{"Buy milk"})
	requireCode(t, err, clierr.InvalidInput)
}

func TestSetConfigValue(t *testing.T) {
	cfg := config.NewDefault("groceries")

	require.NoError(t, setConfigValue(cfg, "storage.codec", "yaml"))
	assert.Equal(t, "yaml", cfg.Storage.Codec)

	require.NoError(t, setConfigValue(cfg, "tui.toast_duration", "2s"))
	assert.Equal(t, "2s", cfg.TUI.ToastDuration)

	require.NoError(t, setConfigValue(cfg, "storage.redis.db", "3"))
	assert.Equal(t, 3, cfg.Storage.Redis.DB)

	requireCode(t, setConfigValue(cfg, "storage.backend", "s3"), clierr.InvalidInput)
	requireCode(t, setConfigValue(cfg, "tui.toast_duration", "soon"), clierr.InvalidInput)
	requireCode(t, setConfigValue(cfg, "version", "9"), clierr.InvalidInput)
	requireCode(t, setConfigValue(cfg, "colour", "red"), clierr.InvalidInput)
	requireCode(t, setConfigValue(cfg, "server.addr", ""), clierr.InvalidInput)
}

func TestConfigKeysHaveAccessors(t *testing.T) {
	accessors := configAccessors()
	assert.Len(t, allConfigKeys(), len(accessors))
	cfg := config.NewDefault("groceries")
	for _, key := range allConfigKeys() {
		acc, ok := accessors[key]
		require.True(t, ok, key)
		assert.NotPanics(t, func() { acc.get(cfg) }, key)
	}
}

func TestCheckChoice(t *testing.T) {
	assert.NoError(t, checkChoice("backend", "", config.Backends))
	assert.NoError(t, checkChoice("backend", "redis", config.Backends))
	requireCode(t, checkChoice("backend", "s3", config.Backends), clierr.InvalidInput)
}
