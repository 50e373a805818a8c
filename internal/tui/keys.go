package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the list-mode bindings. It implements help.KeyMap.
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Add         key.Binding
	Edit        key.Binding
	Delete      key.Binding
	ToggleAll   key.Binding
	ClearDone   key.Binding
	Filter      key.Binding
	FilterAll   key.Binding
	FilterOpen  key.Binding
	FilterDone  key.Binding
	Search      key.Binding
	ClearSearch key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Add:         key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
		Edit:        key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Delete:      key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		ToggleAll:   key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "toggle all")),
		ClearDone:   key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear completed")),
		Filter:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next filter")),
		FilterAll:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		FilterOpen:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		FilterDone:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		ClearSearch: key.NewBinding(key.WithKeys(keyEsc), key.WithHelp("esc", "clear search")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Edit, k.Delete, k.Filter, k.Search, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Add, k.Edit, k.Delete},
		{k.ToggleAll, k.ClearDone, k.Filter, k.FilterAll, k.FilterOpen, k.FilterDone},
		{k.Search, k.ClearSearch, k.Help, k.Quit},
	}
}
