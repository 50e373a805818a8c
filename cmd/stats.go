package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklist/internal/output"
	"github.com/twiced-technology-gmbh/tasklist/internal/view"
	"github.com/twiced-technology-gmbh/tasklist/internal/watcher"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"summary"},
	Short:   "Show task counts",
	Long: `Displays how many tasks are active and completed.

Use --watch to keep the display live-updating. The counts re-render whenever
the task file changes on disk (e.g., from another terminal). Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolP("watch", "w", false, "live-update the counts on file changes")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	s, err := openSession(readOnly)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := renderStats(s); err != nil {
		return err
	}

	if watch, _ := cmd.Flags().GetBool("watch"); !watch {
		return nil
	}
	return watchStats(s)
}

func renderStats(s *session) error {
	stats := view.Summarize(s.store.Tasks())
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, stats)
	case output.FormatCompact:
		output.StatsCompact(os.Stdout, stats)
	default:
		output.StatsTable(os.Stdout, s.cfg.Name, stats)
	}
	return nil
}

func watchStats(s *session) error {
	path, ok := s.adapter.SlotPath()
	if !ok {
		return clierr.Newf(clierr.InvalidInput,
			"--watch needs the file storage backend (current: %s)", s.cfg.Storage.Backend)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	w, err := watcher.New([]string{path}, func() {
		mu.Lock()
		defer mu.Unlock()
		clearScreen()
		s.store.Reload()
		if renderErr := renderStats(s); renderErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering stats: %v\n", renderErr)
		}
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})
	return nil
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
