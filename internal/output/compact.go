package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/twiced-technology-gmbh/tasklist/internal/activity"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
	"github.com/twiced-technology-gmbh/tasklist/internal/view"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t task.Task) {
	fmt.Fprintln(w, formatTaskLine(t))
	fmt.Fprintln(w, "  created:"+t.Created().Format("2006-01-02 15:04")+
		" updated:"+t.Updated().Format("2006-01-02 15:04"))

	if t.Notes != "" {
		for _, line := range strings.Split(t.Notes, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// StatsCompact renders the summary line.
func StatsCompact(w io.Writer, s view.Stats) {
	fmt.Fprintln(w, s.String())
}

// HistoryCompact renders activity entries one per line.
func HistoryCompact(w io.Writer, entries []activity.Entry) {
	for _, e := range entries {
		line := e.Timestamp.Format("2006-01-02T15:04:05") + " " + e.Action
		if e.TaskID != "" {
			line += " " + task.ShortID(e.TaskID)
		}
		if e.Detail != "" {
			line += " " + e.Detail
		}
		if e.Error != "" {
			line += " error:" + e.Error
		}
		fmt.Fprintln(w, line)
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t task.Task) string {
	line := checkbox(t.Completed) + " " + task.ShortID(t.ID) + " " + t.Title
	if t.Notes != "" {
		first, _, _ := strings.Cut(t.Notes, "\n")
		line += " (" + first + ")"
	}
	return line
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}
