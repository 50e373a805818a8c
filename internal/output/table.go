package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/tasklist/internal/activity"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
	"github.com/twiced-technology-gmbh/tasklist/internal/view"
)

const (
	maxTitleWidth = 50
	maxNotesWidth = 40
)

var (
	headerStyle    lipgloss.Style
	dimStyle       lipgloss.Style
	doneStyle      lipgloss.Style
	activeStyle    lipgloss.Style
	matchStyle     lipgloss.Style
	errorStyle     lipgloss.Style
	titleRowStyle  lipgloss.Style
	completedTitle lipgloss.Style
)

func init() { resetStyles() }

func resetStyles() {
	if !colorEnabled {
		headerStyle = lipgloss.NewStyle()
		dimStyle = lipgloss.NewStyle()
		doneStyle = lipgloss.NewStyle()
		activeStyle = lipgloss.NewStyle()
		matchStyle = lipgloss.NewStyle()
		errorStyle = lipgloss.NewStyle()
		titleRowStyle = lipgloss.NewStyle()
		completedTitle = lipgloss.NewStyle()
		return
	}
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	matchStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	titleRowStyle = lipgloss.NewStyle().Bold(true)
	completedTitle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("241"))
}

// Mark renders s as a search match.
func Mark(s string) string { return matchStyle.Render(s) }

// TaskTable renders a list of tasks as a formatted table. Matches of query
// in titles and notes are marked.
func TaskTable(w io.Writer, tasks []task.Task, query string) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idW, stateW, titleW := 10, 6, 7
	for _, t := range tasks {
		idW = max(idW, len(task.ShortID(t.ID))+pad)
		titleW = max(titleW, min(lipgloss.Width(t.Title)+pad, maxTitleWidth))
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %s", idW, "ID", stateW, "DONE", titleW, "TITLE", "NOTES")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, t := range tasks {
		title := truncate(t.Title, maxTitleWidth-pad)
		title = view.Render(view.Highlight(title, query), Mark)
		if t.Completed {
			title = completedTitle.Render(title)
		}

		notes := firstLine(t.Notes)
		if notes == "" {
			notes = dimStyle.Render("--")
		} else {
			notes = view.Render(view.Highlight(truncate(notes, maxNotesWidth), query), Mark)
		}

		row := fmt.Sprintf("%-*s %s %s %s",
			idW, task.ShortID(t.ID),
			padRight(stateCell(t.Completed), stateW),
			padRight(title, titleW),
			notes)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail. Notes are rendered
// as markdown.
func TaskDetail(w io.Writer, t task.Task) {
	titleLine := "Task " + task.ShortID(t.ID) + ": " + t.Title
	fmt.Fprintln(w, titleRowStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "ID", t.ID)
	printField(w, "Status", stateCell(t.Completed))
	printField(w, "Created", t.Created().Format("2006-01-02 15:04"))
	printField(w, "Updated", t.Updated().Format("2006-01-02 15:04"))
	if age := t.Updated().Sub(t.Created()); age > 0 {
		printField(w, "Last change", FormatDuration(age)+" after creation")
	}

	if t.Notes != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, Markdown(t.Notes, DefaultWrap))
	}
}

// StatsTable renders the summary counts.
func StatsTable(w io.Writer, name string, s view.Stats) {
	if name != "" {
		fmt.Fprintln(w, titleRowStyle.Render(name))
	}
	const stateW = 10
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %6s", stateW, "STATE", "COUNT")))
	fmt.Fprintf(w, "%s %6d\n", padRight(activeStyle.Render("active"), stateW), s.Active)
	fmt.Fprintf(w, "%s %6d\n", padRight(doneStyle.Render("completed"), stateW), s.Completed)
	fmt.Fprintf(w, "%s %6d\n", padRight("total", stateW), s.Total)
	fmt.Fprintln(w, dimStyle.Render(s.String()))
}

// HistoryTable renders activity entries, oldest first.
func HistoryTable(w io.Writer, entries []activity.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity recorded.")
		return
	}

	header := fmt.Sprintf("%-19s %-18s %-10s %s", "TIME", "ACTION", "TASK", "DETAIL")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, e := range entries {
		id := dimStyle.Render("--")
		if e.TaskID != "" {
			id = task.ShortID(e.TaskID)
		}
		detail := e.Detail
		if e.Count > 1 {
			detail = strings.TrimSpace(fmt.Sprintf("%s (%d tasks)", detail, e.Count))
		}
		if e.Error != "" {
			detail += " " + errorStyle.Render("save failed: "+e.Error)
		}
		const idW = 10
		row := fmt.Sprintf("%-19s %-18s %s %s",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, padRight(id, idW), detail)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

// Warnf prints a styled warning line.
func Warnf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, errorStyle.Render("warning: "+fmt.Sprintf(format, args...)))
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// FormatDuration renders a duration as human-readable "Xd Yh" or "Xh Ym".
func FormatDuration(d time.Duration) string {
	const hoursPerDay = 24
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	minutes := int(d.Minutes()) % 60 //nolint:mnd // 60 minutes per hour
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func stateCell(completed bool) string {
	if completed {
		return doneStyle.Render("done")
	}
	return activeStyle.Render("open")
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

// truncate shortens s to at most width runes, ending in "...".
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	const ellipsis = "..."
	return string(r[:width-len(ellipsis)]) + ellipsis
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
