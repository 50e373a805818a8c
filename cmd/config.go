package cmd

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklist/internal/config"
	"github.com/twiced-technology-gmbh/tasklist/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify list configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func stringAccessor(field func(*config.Config) *string) configAccessor {
	return configAccessor{
		get:      func(c *config.Config) any { return *field(c) },
		set:      func(c *config.Config, v string) error { *field(c) = v; return nil },
		writable: true,
	}
}

func choiceAccessor(key string, field func(*config.Config) *string, allowed []string) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error {
			if !slices.Contains(allowed, v) {
				return clierr.Newf(clierr.InvalidInput,
					"invalid %s %q; allowed: %s", key, v, strings.Join(allowed, ", "))
			}
			*field(c) = v
			return nil
		},
		writable: true,
	}
}

func durationAccessor(key string, field func(*config.Config) *string) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error {
			if d, err := time.ParseDuration(v); err != nil || d <= 0 {
				return clierr.Newf(clierr.InvalidInput,
					"invalid %s %q: must be a positive duration such as 1600ms", key, v)
			}
			*field(c) = v
			return nil
		},
		writable: true,
	}
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"name":        stringAccessor(func(c *config.Config) *string { return &c.Name }),
		"storage.key": stringAccessor(func(c *config.Config) *string { return &c.Storage.Key }),
		"storage.backend": choiceAccessor("storage.backend",
			func(c *config.Config) *string { return &c.Storage.Backend }, config.Backends),
		"storage.codec": choiceAccessor("storage.codec",
			func(c *config.Config) *string { return &c.Storage.Codec }, config.Codecs),
		"storage.timeout": durationAccessor("storage.timeout",
			func(c *config.Config) *string { return &c.Storage.Timeout }),
		"storage.redis.addr": stringAccessor(func(c *config.Config) *string { return &c.Storage.Redis.Addr }),
		"storage.redis.db": {
			get: func(c *config.Config) any { return c.Storage.Redis.DB },
			set: func(c *config.Config, v string) error {
				n, err := strconv.Atoi(v)
				if err != nil || n < 0 {
					return clierr.Newf(clierr.InvalidInput,
						"invalid storage.redis.db %q: must be a non-negative integer", v)
				}
				c.Storage.Redis.DB = n
				return nil
			},
			writable: true,
		},
		"log.level": choiceAccessor("log.level",
			func(c *config.Config) *string { return &c.Log.Level }, config.LogLevels),
		"log.file": stringAccessor(func(c *config.Config) *string { return &c.Log.File }),
		"tui.toast_duration": durationAccessor("tui.toast_duration",
			func(c *config.Config) *string { return &c.TUI.ToastDuration }),
		"tui.default_filter": choiceAccessor("tui.default_filter",
			func(c *config.Config) *string { return &c.TUI.DefaultFilter }, config.Filters),
		"server.addr": stringAccessor(func(c *config.Config) *string { return &c.Server.Addr }),
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"name",
		"storage.backend",
		"storage.key",
		"storage.codec",
		"storage.timeout",
		"storage.redis.addr",
		"storage.redis.db",
		"log.level",
		"log.file",
		"tui.toast_duration",
		"tui.default_filter",
		"server.addr",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-20s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}

	val := acc.get(cfg)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := setConfigValue(cfg, key, value); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	val := configAccessors()[key].get(cfg)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": val})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(val))
	return nil
}

// setConfigValue applies one key and validates the whole config.
func setConfigValue(cfg *config.Config, key, value string) error {
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}
	if err := acc.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return clierr.New(clierr.InvalidInput, err.Error())
	}
	return nil
}

func formatConfigValue(val any) string {
	if s, ok := val.(string); ok && s == "" {
		return "--"
	}
	return fmt.Sprintf("%v", val)
}
