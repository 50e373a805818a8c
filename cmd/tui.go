package cmd

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklist/internal/tui"
	"github.com/twiced-technology-gmbh/tasklist/internal/view"
	"github.com/twiced-technology-gmbh/tasklist/internal/watcher"
)

func runTUI(_ *cobra.Command, _ []string) error {
	s, err := openSession(shared)
	if err != nil {
		return err
	}
	defer s.Close()
	if s.cfg.LogPath() == "" {
		// Stderr would tear the alternate screen; failures surface as toasts.
		s.log.SetOutput(io.Discard)
	}

	filter, err := view.ParseFilter(s.cfg.TUI.DefaultFilter)
	if err != nil {
		return err
	}

	model := tui.New(s.store, tui.Options{
		Name:          s.cfg.Name,
		Filter:        filter,
		ToastDuration: s.cfg.ToastDuration(),
	})
	defer model.Close()
	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if path, ok := s.adapter.SlotPath(); ok {
		go startTUIWatcher(ctx, path, p)
	}

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, path string, p *tea.Program) {
	w, err := watcher.New([]string{path}, func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		return // non-fatal: TUI works without live refresh
	}
	defer w.Close()
	w.Run(ctx, nil)
}
