package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherFiresForWatchedFileOnly(t *testing.T) {
	dir := t.TempDir()
	slot := filepath.Join(dir, "todo-app.tasks.v1.json")

	fired := make(chan struct{}, 8)
	w, err := New([]string{slot}, func() { fired <- struct{}{} })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx, nil)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "activity.jsonl"), []byte("{}\n"), 0o600))
	select {
	case <-fired:
		t.Fatal("callback fired for an unrelated file")
	case <-time.After(4 * debounceDelay):
	}

	require.NoError(t, os.WriteFile(slot, []byte("[]"), 0o600))
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("callback did not fire for the watched file")
	}
}

func TestNewFailsForMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing", "slot.json")}, func() {})
	require.Error(t, err)
}
