// Package activity keeps an append-only JSONL history of list changes.
package activity

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/twiced-technology-gmbh/tasklist/internal/store"
)

const (
	// FileName is the activity log inside the list directory.
	FileName = "activity.jsonl"

	logFileMode   = 0o600
	maxLogEntries = 10000 // truncate oldest entries when log exceeds this size
)

// Entry is one line of the activity log.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TaskID    string    `json:"task_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Count     int       `json:"count,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Append appends an entry to the activity log in dir. If the log exceeds
// maxLogEntries, the oldest entries are truncated.
func Append(dir string, entry Entry) error {
	path := filepath.Join(dir, FileName)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode) //nolint:gosec // log path from trusted list dir
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	data, err := sonic.ConfigStd.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling activity entry: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing activity entry: %w", err)
	}

	// Best effort; a failed truncation leaves a longer log.
	_ = truncateIfNeeded(path, maxLogEntries)

	return nil
}

// truncateIfNeeded rewrites the log keeping only the newest limit lines.
func truncateIfNeeded(path string, limit int) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}
	if len(lines) <= limit {
		return nil
	}

	lines = lines[len(lines)-limit:]

	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(buf.String()), logFileMode)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // trusted path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// Read returns up to limit of the newest entries, oldest first. A limit of
// zero or less returns everything. Unparseable lines are skipped.
func Read(dir string, limit int) ([]Entry, error) {
	lines, err := readLines(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading activity log: %w", err)
	}

	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		var e Entry
		if err := sonic.ConfigStd.UnmarshalFromString(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// FromEvent converts a store event into a log entry.
func FromEvent(e store.Event, now time.Time) Entry {
	entry := Entry{
		Timestamp: now,
		Action:    e.Kind.String(),
		TaskID:    e.TaskID,
		Count:     e.Count,
	}
	switch e.Kind {
	case store.Added, store.Deleted:
		entry.Detail = e.Title
	case store.Updated:
		state := "active"
		if e.Completed {
			state = "completed"
		}
		entry.Detail = fmt.Sprintf("%s (%s)", e.Title, state)
	case store.ToggledAll:
		entry.Detail = fmt.Sprintf("completed=%t", e.Completed)
	}
	if e.Err != nil {
		entry.Error = e.Err.Error()
	}
	return entry
}

// Record subscribes to s and appends every change except reloads to the
// log in dir. Errors are discarded because the history must never fail a
// command. The returned function stops recording.
func Record(s *store.Store, dir string) (stop func()) {
	return s.Subscribe(func(e store.Event) {
		if e.Kind == store.Reloaded {
			return
		}
		_ = Append(dir, FromEvent(e, time.Now()))
	})
}
