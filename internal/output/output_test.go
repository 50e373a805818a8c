package output

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasklist/internal/activity"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
	"github.com/twiced-technology-gmbh/tasklist/internal/view"
)

func TestMain(m *testing.M) {
	DisableColor()
	os.Exit(m.Run())
}

func sampleTasks() []task.Task {
	return []task.Task{
		{ID: "0f9c2a4e-1111", Title: "Buy milk", Completed: true, CreatedAt: 1, UpdatedAt: 2},
		{ID: "7ab13c55-2222", Title: "Write report", Notes: "due Friday\nsecond line", CreatedAt: 1, UpdatedAt: 1},
	}
}

func TestDetect(t *testing.T) {
	t.Setenv(EnvOutput, "")
	assert.Equal(t, FormatJSON, Detect(true, true, true))
	assert.Equal(t, FormatCompact, Detect(false, true, true))
	assert.Equal(t, FormatTable, Detect(false, true, false))
	assert.Equal(t, FormatTable, Detect(false, false, false))

	t.Setenv(EnvOutput, "json")
	assert.Equal(t, FormatJSON, Detect(false, false, false))
	t.Setenv(EnvOutput, "oneline")
	assert.Equal(t, FormatCompact, Detect(false, false, false))
}

func TestTaskCompact(t *testing.T) {
	var buf bytes.Buffer
	TaskCompact(&buf, sampleTasks())
	assert.Equal(t,
		"[x] 0f9c2a4e Buy milk\n[ ] 7ab13c55 Write report (due Friday)\n",
		buf.String())
}

func TestTaskTableMarksMatches(t *testing.T) {
	var buf bytes.Buffer
	TaskTable(&buf, sampleTasks(), "report")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "done")
	assert.Contains(t, lines[2], "open")
	assert.Contains(t, lines[2], "Write report")
	assert.Contains(t, lines[2], "due Friday")
	assert.NotContains(t, buf.String(), "second line")
}

func TestTaskDetailCompact(t *testing.T) {
	var buf bytes.Buffer
	TaskDetailCompact(&buf, sampleTasks()[1])
	out := buf.String()
	assert.Contains(t, out, "[ ] 7ab13c55 Write report")
	assert.Contains(t, out, "  second line\n")
}

func TestTaskDetailRendersNotes(t *testing.T) {
	var buf bytes.Buffer
	tk := sampleTasks()[1]
	tk.Notes = "- bring **charts**"
	TaskDetail(&buf, tk)
	out := buf.String()
	assert.Contains(t, out, "Task 7ab13c55: Write report")
	assert.Contains(t, out, tk.ID)
	assert.Contains(t, out, "charts")
}

func TestStatsOutput(t *testing.T) {
	s := view.Summarize(sampleTasks())

	var buf bytes.Buffer
	StatsCompact(&buf, s)
	assert.Equal(t, "2 total • 1 active • 1 completed\n", buf.String())

	buf.Reset()
	StatsTable(&buf, "groceries", s)
	assert.Contains(t, buf.String(), "groceries")
	assert.Contains(t, buf.String(), "completed")
}

func TestHistoryOutput(t *testing.T) {
	entries := []activity.Entry{
		{Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), Action: "added", TaskID: "0f9c2a4e-1111", Detail: "Buy milk"},
		{Timestamp: time.Date(2026, 1, 2, 3, 5, 0, 0, time.UTC), Action: "cleared_completed", Count: 3, Error: "disk full"},
	}

	var buf bytes.Buffer
	HistoryCompact(&buf, entries)
	assert.Equal(t,
		"2026-01-02T03:04:05 added 0f9c2a4e Buy milk\n2026-01-02T03:05:00 cleared_completed error:disk full\n",
		buf.String())

	buf.Reset()
	HistoryTable(&buf, entries)
	assert.Contains(t, buf.String(), "(3 tasks)")
	assert.Contains(t, buf.String(), "save failed: disk full")
}

func TestJSONAndJSONError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"total": 2}))
	assert.JSONEq(t, `{"total":2}`, buf.String())

	buf.Reset()
	JSONError(&buf, "TASK_NOT_FOUND", "task not found: x", map[string]any{"id": "x"})
	assert.JSONEq(t, `{"error":"task not found: x","code":"TASK_NOT_FOUND","details":{"id":"x"}}`, buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h 5m", FormatDuration(5*time.Minute))
	assert.Equal(t, "2d 3h", FormatDuration(51*time.Hour))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Grüße a...", truncate("Grüße aus Berlin", 10))
}
