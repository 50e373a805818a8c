// Package tui implements the interactive terminal UI for a task list.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/tasklist/internal/store"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
	"github.com/twiced-technology-gmbh/tasklist/internal/view"
)

// mode represents the current screen state.
type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
	modeConfirmDelete
	modeConfirmClear
)

const (
	keyEsc = "esc"

	// DefaultToastDuration matches the notification lifetime of the web version.
	DefaultToastDuration = 1600 * time.Millisecond

	listChrome = 5 // header, tabs, blank, stats, help
)

// Options configures a Model.
type Options struct {
	Name          string
	Filter        view.Filter
	ToastDuration time.Duration
}

// Model is the top-level bubbletea model. It drives a Store from the
// bubbletea update loop, which is the only goroutine that touches it.
type Model struct {
	store *store.Store
	name  string
	state view.State

	visible []task.Task
	cursor  int
	offset  int

	mode   mode
	width  int
	height int

	search textinput.Model
	title  textinput.Model
	notes  textinput.Model
	// editID is empty when the form adds a task.
	editID string

	pendingID    string
	pendingTitle string
	clearCount   int

	toast         string
	toastErr      bool
	toastSeq      int
	toastDuration time.Duration

	keys keyMap
	help help.Model

	lastEvent   *store.Event
	unsubscribe func()
}

// New creates a Model over s.
func New(s *store.Store, opts Options) *Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search title or notes"

	title := textinput.New()
	title.Prompt = "Title: "
	title.Placeholder = "What needs doing?"
	title.CharLimit = 0

	notes := textinput.New()
	notes.Prompt = "Notes: "
	notes.Placeholder = "optional"
	notes.CharLimit = 0

	toastDuration := opts.ToastDuration
	if toastDuration <= 0 {
		toastDuration = DefaultToastDuration
	}
	filter := opts.Filter
	if filter == "" {
		filter = view.FilterAll
	}

	m := &Model{
		store:         s,
		name:          opts.Name,
		state:         view.NewState().WithFilter(filter),
		search:        search,
		title:         title,
		notes:         notes,
		toastDuration: toastDuration,
		keys:          defaultKeyMap(),
		help:          help.New(),
	}
	m.unsubscribe = s.Subscribe(func(e store.Event) {
		ev := e
		m.lastEvent = &ev
	})
	m.refresh()
	return m
}

// Close detaches the model from the store.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// ReloadMsg is sent by the file watcher when another process changed the slot.
type ReloadMsg struct{}

type toastExpiredMsg struct{ seq int }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		return m, nil
	case ReloadMsg:
		m.store.Reload()
		m.lastEvent = nil
		m.refresh()
		return m, nil
	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
			m.toastErr = false
		}
		return m, nil
	}

	// Forward everything else (cursor blink) to the focused input.
	return m, m.updateInputs(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeForm:
		return m.handleFormKey(msg)
	case modeConfirmDelete:
		return m.handleDeleteKey(msg)
	case modeConfirmClear:
		return m.handleClearKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureVisible()
		}
	case key.Matches(msg, k.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
			m.ensureVisible()
		}
	case key.Matches(msg, k.Toggle):
		if t, ok := m.selected(); ok {
			m.store.Update(t.ID, task.SetCompleted(!t.Completed))
			return m, m.afterChange("")
		}
	case key.Matches(msg, k.Add):
		return m, m.openForm(task.Task{})
	case key.Matches(msg, k.Edit):
		if t, ok := m.selected(); ok {
			return m, m.openForm(t)
		}
	case key.Matches(msg, k.Delete):
		if t, ok := m.selected(); ok {
			m.pendingID = t.ID
			m.pendingTitle = t.Title
			m.mode = modeConfirmDelete
		}
	case key.Matches(msg, k.ClearDone):
		m.clearCount = view.Summarize(m.store.Tasks()).Completed
		if m.clearCount > 0 {
			m.mode = modeConfirmClear
		}
	case key.Matches(msg, k.ToggleAll):
		note := "Marked all active"
		if m.store.ToggleAll() {
			note = "Marked all completed"
		}
		return m, m.afterChange(note)
	case key.Matches(msg, k.Filter):
		m.setFilter(m.state.Filter.Next())
	case key.Matches(msg, k.FilterAll):
		m.setFilter(view.FilterAll)
	case key.Matches(msg, k.FilterOpen):
		m.setFilter(view.FilterActive)
	case key.Matches(msg, k.FilterDone):
		m.setFilter(view.FilterCompleted)
	case key.Matches(msg, k.Search):
		m.mode = modeSearch
		m.search.SetValue(m.state.Search)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, k.ClearSearch):
		if m.state.Search != "" {
			m.state = m.state.WithSearch("")
			m.search.SetValue("")
			m.refresh()
		}
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.search.Blur()
		m.mode = modeList
		return m, nil
	case keyEsc:
		m.search.Blur()
		m.search.SetValue("")
		m.state = m.state.WithSearch("")
		m.mode = modeList
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	// The projection follows every keystroke.
	m.state = m.state.WithSearch(m.search.Value())
	m.cursor = 0
	m.offset = 0
	m.refresh()
	return m, cmd
}

func (m *Model) openForm(t task.Task) tea.Cmd {
	m.editID = t.ID
	m.title.SetValue(t.Title)
	m.notes.SetValue(t.Notes)
	m.title.CursorEnd()
	m.notes.Blur()
	m.mode = modeForm
	return m.title.Focus()
}

func (m *Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.closeForm()
		return m, nil
	case "tab", "shift+tab", "up", "down":
		if m.title.Focused() {
			m.title.Blur()
			return m, m.notes.Focus()
		}
		m.notes.Blur()
		return m, m.title.Focus()
	case "enter":
		return m, m.submitForm()
	}
	return m, m.updateInputs(msg)
}

func (m *Model) submitForm() tea.Cmd {
	title := m.title.Value()
	if strings.TrimSpace(title) == "" {
		return m.showToast("Title must not be empty", true)
	}

	editing := m.editID != ""
	if editing {
		if !m.store.Update(m.editID, task.SetTitle(title).Merge(task.SetNotes(m.notes.Value()))) {
			m.closeForm()
			return m.showToast("Task no longer exists", true)
		}
	} else {
		added, _ := m.store.Add(title, m.notes.Value())
		m.focusTask(added.ID)
	}
	m.closeForm()

	if editing {
		return m.afterChange("Task updated")
	}
	return m.afterChange("Task added")
}

func (m *Model) closeForm() {
	m.title.Blur()
	m.notes.Blur()
	m.title.SetValue("")
	m.notes.SetValue("")
	m.editID = ""
	m.mode = modeList
}

func (m *Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = modeList
		if m.store.Delete(m.pendingID) {
			return m, m.afterChange("Task deleted")
		}
		m.refresh()
	case "n", "N", keyEsc, "q":
		m.mode = modeList
	}
	return m, nil
}

func (m *Model) handleClearKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = modeList
		if n := m.store.ClearCompleted(); n > 0 {
			return m, m.afterChange("Cleared completed")
		}
		m.refresh()
	case "n", "N", keyEsc, "q":
		m.mode = modeList
	}
	return m, nil
}

// afterChange re-projects the list and turns the last store event into a
// toast. A failed save always produces an error toast.
func (m *Model) afterChange(message string) tea.Cmd {
	m.refresh()
	ev := m.lastEvent
	m.lastEvent = nil
	if ev != nil && ev.Err != nil {
		return m.showToast("Not saved: "+ev.Err.Error(), true)
	}
	if message == "" {
		return nil
	}
	return m.showToast(message, false)
}

func (m *Model) showToast(message string, isErr bool) tea.Cmd {
	m.toastSeq++
	seq := m.toastSeq
	m.toast = message
	m.toastErr = isErr
	return tea.Tick(m.toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (m *Model) setFilter(f view.Filter) {
	if m.state.Filter == f {
		return
	}
	m.state = m.state.WithFilter(f)
	m.cursor = 0
	m.offset = 0
	m.refresh()
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	switch {
	case m.title.Focused():
		m.title, cmd = m.title.Update(msg)
		cmds = append(cmds, cmd)
	case m.notes.Focused():
		m.notes, cmd = m.notes.Update(msg)
		cmds = append(cmds, cmd)
	case m.search.Focused():
		m.search, cmd = m.search.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// refresh recomputes the visible projection and keeps the cursor in range.
func (m *Model) refresh() {
	m.visible = view.Project(m.store.Tasks(), m.state)
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

func (m *Model) focusTask(id string) {
	m.refresh()
	if i := task.IndexOf(m.visible, id); i >= 0 {
		m.cursor = i
		m.ensureVisible()
	}
}

func (m *Model) selected() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return task.Task{}, false
	}
	return m.visible[m.cursor], true
}

func (m *Model) listHeight() int {
	if m.height == 0 {
		return len(m.visible)
	}
	return max(1, m.height-listChrome)
}

func (m *Model) ensureVisible() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}
