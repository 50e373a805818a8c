package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklist/internal/output"
	"github.com/twiced-technology-gmbh/tasklist/internal/server"
	"github.com/twiced-technology-gmbh/tasklist/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task list over HTTP",
	Long: `Starts a JSON HTTP API for the task list. Changes made by other tasklist
processes are picked up from the task file while serving.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	s, err := openSession(shared)
	if err != nil {
		return err
	}
	defer s.Close()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = s.cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl := server.NewController(s.store, s.log)
	if path, ok := s.adapter.SlotPath(); ok {
		w, err := watcher.New([]string{path}, ctrl.Reload)
		if err != nil {
			return fmt.Errorf("starting file watcher: %w", err)
		}
		defer w.Close()
		go w.Run(ctx, func(watchErr error) {
			s.log.WithError(watchErr).Warn("file watcher")
		})
	}

	output.Messagef(os.Stderr, "Serving %q on http://%s (Ctrl+C to stop)", s.cfg.Name, addr)
	return server.Run(ctx, server.New(ctrl), addr)
}
