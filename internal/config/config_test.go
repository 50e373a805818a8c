package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
)

func TestInitAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultDir)

	cfg, err := Init(dir, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultName, cfg.Name)
	assert.Equal(t, dir, cfg.Dir())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Storage, loaded.Storage)
	assert.Equal(t, 5*time.Second, loaded.StorageTimeout())
	assert.Equal(t, 1600*time.Millisecond, loaded.ToastDuration())

	_, err = Init(dir, "again")
	var cliErr *clierr.Error
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, clierr.ListAlreadyExists, cliErr.Code)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty name", func(c *Config) { c.Name = "" }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "s3" }},
		{"blank key", func(c *Config) { c.Storage.Key = "  " }},
		{"unknown codec", func(c *Config) { c.Storage.Codec = "xml" }},
		{"bad timeout", func(c *Config) { c.Storage.Timeout = "soon" }},
		{"negative timeout", func(c *Config) { c.Storage.Timeout = "-1s" }},
		{"negative redis db", func(c *Config) { c.Storage.Redis.DB = -1 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad toast", func(c *Config) { c.TUI.ToastDuration = "" }},
		{"bad filter", func(c *Config) { c.TUI.DefaultFilter = "later" }},
		{"no server addr", func(c *Config) { c.Server.Addr = "" }},
		{"wrong version", func(c *Config) { c.Version = 1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefault("x")
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
	assert.NoError(t, NewDefault("x").Validate())
}

func TestLoadMigratesV1(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
		[]byte("version: 1\nname: groceries\n"), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, "groceries", cfg.Name)
	assert.Equal(t, DefaultKey, cfg.Storage.Key)
	assert.Equal(t, DefaultFilter, cfg.TUI.DefaultFilter)

	// The migrated file was written back.
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 3")
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
		[]byte("version: 99\nname: x\n"), 0o600))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestFindDir(t *testing.T) {
	root := t.TempDir()
	listDir := filepath.Join(root, DefaultDir)
	_, err := Init(listDir, "x")
	require.NoError(t, err)

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	got, err := FindDir(nested)
	require.NoError(t, err)
	assert.Equal(t, listDir, got)

	got, err = FindDir(listDir)
	require.NoError(t, err)
	assert.Equal(t, listDir, got)
}

func TestResolveExplicitDir(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir, "explicit")
	require.NoError(t, err)

	cfg, err := Resolve(dir, "/")
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Name)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvRedisAddr:  "redis:6379",
		EnvLogLevel:   "DEBUG",
		EnvServerAddr: ":9000",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := NewDefault("x")
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "redis", cfg.Storage.Backend, "a redis address implies the redis backend")
	assert.Equal(t, "redis:6379", cfg.RedisAddr())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9000", cfg.Server.Addr)

	env[EnvStorageBackend] = "memory"
	cfg = NewDefault("x")
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "memory", cfg.Storage.Backend)

	env[EnvStorageBackend] = "floppy"
	assert.ErrorIs(t, NewDefault("x").ApplyEnv(lookup), ErrInvalid)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadEnvFile(dir), "missing file is fine")

	const key = "TASKLIST_TEST_ENV_FILE"
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte(key+"=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	require.NoError(t, LoadEnvFile(dir))
	assert.Equal(t, "from-file", os.Getenv(key))
}

func TestLogPath(t *testing.T) {
	cfg := NewDefault("x")
	cfg.SetDir("/lists/x")
	assert.Equal(t, "", cfg.LogPath())

	cfg.Log.File = "tasklist.log"
	assert.Equal(t, filepath.Join("/lists/x", "tasklist.log"), cfg.LogPath())

	cfg.Log.File = "/var/log/tasklist.log"
	assert.Equal(t, "/var/log/tasklist.log", cfg.LogPath())
}
