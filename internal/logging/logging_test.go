package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStderrDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Stderr: &buf})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewFileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tasklist.log")
	logger, closer, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)

	logger.WithField("key", "todo-app.tasks.v1").Info("saved")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"saved"`)
	assert.Contains(t, string(data), `"key":"todo-app.tasks.v1"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
