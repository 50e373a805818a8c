package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override config.yml for one invocation.
const (
	EnvStorageBackend = "TASKLIST_STORAGE_BACKEND"
	EnvRedisAddr      = "TASKLIST_REDIS_ADDR"
	EnvLogLevel       = "TASKLIST_LOG_LEVEL"
	EnvServerAddr     = "TASKLIST_SERVER_ADDR"
)

// LoadEnvFile sources the list directory's .env file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnvFile(dir string) error {
	path := filepath.Join(dir, EnvFileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", EnvFileName, err)
	}
	return nil
}

// ApplyEnv overlays environment overrides onto c. Overrides are never
// written back by Save as long as the caller saves a freshly loaded config.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookupNonEmpty(lookup, EnvStorageBackend); ok {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v, ok := lookupNonEmpty(lookup, EnvRedisAddr); ok {
		c.Storage.Redis.Addr = v
		if _, set := lookupNonEmpty(lookup, EnvStorageBackend); !set {
			c.Storage.Backend = "redis"
		}
	}
	if v, ok := lookupNonEmpty(lookup, EnvLogLevel); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookupNonEmpty(lookup, EnvServerAddr); ok {
		c.Server.Addr = v
	}
	return c.Validate()
}

func lookupNonEmpty(lookup func(string) (string, bool), key string) (string, bool) {
	v, ok := lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
