package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no task list found (run 'tasklist init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the task list configuration.
type Config struct {
	Version int           `yaml:"version"`
	Name    string        `yaml:"name"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	TUI     TUIConfig     `yaml:"tui"`
	Server  ServerConfig  `yaml:"server"`

	// dir is the absolute path to the list directory (not serialized).
	dir string `yaml:"-"`
}

// StorageConfig selects the slot the list is persisted in.
type StorageConfig struct {
	Backend string      `yaml:"backend" json:"backend"`
	Key     string      `yaml:"key" json:"key"`
	Codec   string      `yaml:"codec" json:"codec"`
	Timeout string      `yaml:"timeout" json:"timeout"`
	Redis   RedisConfig `yaml:"redis,omitempty" json:"redis"`
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty" json:"addr,omitempty"`
	Password string `yaml:"password,omitempty" json:"-"`
	DB       int    `yaml:"db,omitempty" json:"db,omitempty"`
}

// LogConfig controls diagnostics. An empty File logs warnings to stderr.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file,omitempty" json:"file,omitempty"`
}

// TUIConfig holds TUI-specific display settings.
type TUIConfig struct {
	ToastDuration string `yaml:"toast_duration" json:"toast_duration"`
	DefaultFilter string `yaml:"default_filter" json:"default_filter"`
}

// ServerConfig holds settings for the HTTP controller.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Dir returns the absolute path to the list directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the list directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// LogPath returns the diagnostics log file, resolved against the list
// directory, or "" when logging goes to stderr.
func (c *Config) LogPath() string {
	if c.Log.File == "" {
		return ""
	}
	if filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.dir, c.Log.File)
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version: CurrentVersion,
		Name:    name,
		Storage: StorageConfig{
			Backend: DefaultBackend,
			Key:     DefaultKey,
			Codec:   DefaultCodec,
			Timeout: DefaultTimeout,
		},
		Log: LogConfig{Level: DefaultLogLevel},
		TUI: TUIConfig{
			ToastDuration: DefaultToastDuration,
			DefaultFilter: DefaultFilter,
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if !slices.Contains(LogLevels, c.Log.Level) {
		return fmt.Errorf("%w: log.level %q must be one of %s", ErrInvalid, c.Log.Level, strings.Join(LogLevels, ", "))
	}
	if err := validateDuration("tui.toast_duration", c.TUI.ToastDuration); err != nil {
		return err
	}
	if !slices.Contains(Filters, c.TUI.DefaultFilter) {
		return fmt.Errorf("%w: tui.default_filter %q must be one of %s",
			ErrInvalid, c.TUI.DefaultFilter, strings.Join(Filters, ", "))
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalid)
	}
	return nil
}

func (c *Config) validateStorage() error {
	s := c.Storage
	if !slices.Contains(Backends, s.Backend) {
		return fmt.Errorf("%w: storage.backend %q must be one of %s",
			ErrInvalid, s.Backend, strings.Join(Backends, ", "))
	}
	if strings.TrimSpace(s.Key) == "" {
		return fmt.Errorf("%w: storage.key is required", ErrInvalid)
	}
	if !slices.Contains(Codecs, s.Codec) {
		return fmt.Errorf("%w: storage.codec %q must be one of %s",
			ErrInvalid, s.Codec, strings.Join(Codecs, ", "))
	}
	if err := validateDuration("storage.timeout", s.Timeout); err != nil {
		return err
	}
	if s.Redis.DB < 0 {
		return fmt.Errorf("%w: storage.redis.db must be >= 0", ErrInvalid)
	}
	return nil
}

func validateDuration(field, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: invalid %s %q: %w", ErrInvalid, field, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, field)
	}
	return nil
}

// StorageTimeout returns storage.timeout, or the default when unparseable.
func (c *Config) StorageTimeout() time.Duration {
	return durationOr(c.Storage.Timeout, DefaultTimeout)
}

// ToastDuration returns tui.toast_duration, or the default when unparseable.
func (c *Config) ToastDuration() time.Duration {
	return durationOr(c.TUI.ToastDuration, DefaultToastDuration)
}

// RedisAddr returns the configured redis address or DefaultRedisAddr.
func (c *Config) RedisAddr() string {
	if c.Storage.Redis.Addr == "" {
		return DefaultRedisAddr
	}
	return c.Storage.Redis.Addr
}

func durationOr(value, fallback string) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

// Init creates a new task list in the given directory with default settings.
func Init(dir, name string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(filepath.Join(absDir, ConfigFileName)); err == nil {
		return nil, clierr.Newf(clierr.ListAlreadyExists, "task list already exists in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	if name == "" {
		name = DefaultName
	}
	cfg := NewDefault(name)
	cfg.SetDir(absDir)

	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating list directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads, migrates and validates a config from the given list directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	// Persist migrated config so future loads skip re-migration.
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a list directory
// containing config.yml. Returns the absolute path to the list directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the list directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.ListNotFound,
				"no task list found (run 'tasklist init' to create one)")
		}
		dir = parent
	}
}

// HomeDir returns the per-user list directory used when no list is
// found above the working directory.
func HomeDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(base, "tasklist"), nil
}

// Resolve returns the config for an explicit directory, else the nearest
// list above startDir, else the per-user list, creating the latter on
// first use.
func Resolve(explicitDir, startDir string) (*Config, error) {
	if explicitDir != "" {
		return Load(explicitDir)
	}

	dir, err := FindDir(startDir)
	if err == nil {
		return Load(dir)
	}
	var cliErr *clierr.Error
	if !errors.As(err, &cliErr) || cliErr.Code != clierr.ListNotFound {
		return nil, err
	}

	home, err := HomeDir()
	if err != nil {
		return nil, err
	}
	cfg, err := Load(home)
	if errors.Is(err, ErrNotFound) {
		return Init(home, DefaultName)
	}
	return cfg, err
}
