package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/tasklist/internal/task"
	"github.com/twiced-technology-gmbh/tasklist/internal/view"
)

const (
	emptyTitle = "No tasks"
	emptyHint  = "Add some tasks to get started."
	noMatches  = "No matching tasks"
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.mode {
	case modeForm:
		b.WriteString(m.renderForm())
	case modeConfirmDelete:
		b.WriteString(m.renderConfirm("Delete \"" + truncate(m.pendingTitle, 40) + "\"?"))
	case modeConfirmClear:
		noun := "tasks"
		if m.clearCount == 1 {
			noun = "task"
		}
		b.WriteString(m.renderConfirm("Remove " + strconv.Itoa(m.clearCount) + " completed " + noun + "?"))
	default:
		b.WriteString(m.renderList())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m *Model) renderHeader() string {
	name := m.name
	if name == "" {
		name = "tasks"
	}
	return headerStyle.Render(name)
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, len(view.Filters()))
	for _, f := range view.Filters() {
		style := tabStyle
		if f == m.state.Filter {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(string(f)))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	if m.mode == modeSearch {
		return row + " " + m.search.View()
	}
	if m.state.Search != "" {
		return row + " " + dimStyle.Render("/"+m.state.Search)
	}
	return row
}

func (m *Model) renderList() string {
	if len(m.visible) == 0 {
		if m.store.Len() == 0 {
			return "\n  " + emptyTitle + "\n  " + dimStyle.Render(emptyHint) + "\n"
		}
		return "\n  " + dimStyle.Render(noMatches) + "\n"
	}

	end := min(len(m.visible), m.offset+m.listHeight())
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.visible[i], i == m.cursor))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m *Model) renderRow(t task.Task, selected bool) string {
	prefix := "  "
	if selected {
		prefix = cursorStyle.Render("> ")
	}
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}

	title := view.Render(view.Highlight(t.Title, m.state.Search), mark)
	if t.Completed {
		title = doneTitleStyle.Render(title)
	}

	line := prefix + box + " " + title
	if note := firstLine(t.Notes); note != "" {
		line += "  " + dimStyle.Render(view.Render(view.Highlight(note, m.state.Search), mark))
	}
	return line
}

func (m *Model) renderForm() string {
	heading := "New task"
	if m.editID != "" {
		heading = "Edit task"
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(heading),
		"",
		m.title.View(),
		m.notes.View(),
		"",
		dimStyle.Render("enter save • tab switch field • esc cancel"),
	)
	return dialogStyle.Render(body) + "\n"
}

func (m *Model) renderConfirm(question string) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		question,
		"",
		dimStyle.Render("y confirm • n cancel"),
	)
	return dialogStyle.Render(body) + "\n"
}

func (m *Model) renderStatus() string {
	var b strings.Builder
	b.WriteString(statusBarStyle.Render(view.Summarize(m.store.Tasks()).String()))
	if m.toast != "" {
		b.WriteString("  ")
		if m.toastErr {
			b.WriteString(errorStyle.Render(m.toast))
		} else {
			b.WriteString(toastStyle.Render(m.toast))
		}
	}
	if m.mode == modeList {
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
