// Package watcher provides debounced watching of slot files.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay is the time to wait after the last file event before triggering
// a callback. This coalesces rapid changes (e.g., a temp write plus rename)
// into a single notification.
const debounceDelay = 100 * time.Millisecond

// Watcher watches files for changes and invokes a callback with debouncing.
//
// Files are replaced by rename, so the watcher watches each file's parent
// directory and filters events by name.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]bool
	delay    time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
}

// New creates a Watcher for the given files. The files need not exist yet,
// but their directories must. The callback is invoked (debounced) whenever
// one of the files is created, written, removed or renamed.
func New(files []string, callback func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]bool, len(files)),
		delay:    debounceDelay,
		callback: callback,
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Run starts the watch loop. It blocks until the context is canceled.
// Errors from the underlying watcher are passed to the optional errFn callback.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.debounce()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[name]
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.callback)
}
