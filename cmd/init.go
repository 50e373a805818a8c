package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklist/internal/config"
	"github.com/twiced-technology-gmbh/tasklist/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new task list",
	Long:  `Creates a task list directory with config.yml in the current directory.`,
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("name", "", "list name (defaults to current directory name)")
	initCmd.Flags().String("backend", "", "storage backend (file, redis, memory)")
	initCmd.Flags().String("codec", "", "slot encoding (json, yaml)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		name = filepath.Base(cwd)
	}

	backend, _ := cmd.Flags().GetString("backend")
	if err := checkChoice("backend", backend, config.Backends); err != nil {
		return err
	}
	codec, _ := cmd.Flags().GetString("codec")
	if err := checkChoice("codec", codec, config.Codecs); err != nil {
		return err
	}

	cfg, err := config.Init(dir, name)
	if err != nil {
		return err
	}

	if backend != "" || codec != "" {
		if backend != "" {
			cfg.Storage.Backend = backend
		}
		if codec != "" {
			cfg.Storage.Codec = codec
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":  "initialized",
			"dir":     cfg.Dir(),
			"name":    cfg.Name,
			"config":  cfg.ConfigPath(),
			"backend": cfg.Storage.Backend,
		})
	}

	output.Messagef(os.Stdout, "Initialized task list %q in %s", cfg.Name, cfg.Dir())
	output.Messagef(os.Stdout, "  Config:  %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Storage: %s (%s)", cfg.Storage.Backend, cfg.Storage.Codec)
	return nil
}

// checkChoice accepts an empty value or one of allowed.
func checkChoice(flag, value string, allowed []string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return clierr.Newf(clierr.InvalidInput, "invalid --%s %q; allowed: %s",
		flag, value, strings.Join(allowed, ", "))
}
