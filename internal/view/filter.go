// Package view derives the visible subset of tasks from the task list and the
// current view criteria. Nothing here mutates the tasks it is given.
package view

import (
	"strings"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
)

// Filter restricts tasks by completion state.
type Filter string

// Filter modes.
const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists the modes in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterActive, FilterCompleted}
}

// ParseFilter converts user input into a Filter. An empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted, "done":
		return FilterCompleted, nil
	}
	return "", clierr.Newf(clierr.InvalidFilter, "invalid filter %q (all, active, completed)", s).
		WithDetails(map[string]any{
			"filter":  s,
			"allowed": Filters(),
		})
}

// Next returns the mode after f, wrapping around.
func (f Filter) Next() Filter {
	all := Filters()
	for i, m := range all {
		if m == f {
			return all[(i+1)%len(all)]
		}
	}
	return FilterAll
}

// State holds the view criteria. The zero value shows every task.
type State struct {
	Filter Filter
	Search string // normalized: trimmed and lowercased
}

// NewState returns the initial view: all tasks, no search.
func NewState() State {
	return State{Filter: FilterAll}
}

// WithFilter returns a copy of s with the filter mode replaced.
func (s State) WithFilter(f Filter) State {
	s.Filter = f
	return s
}

// WithSearch returns a copy of s with the search query replaced.
func (s State) WithSearch(query string) State {
	s.Search = NormalizeQuery(query)
	return s
}

// NormalizeQuery trims and lowercases a search query.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Project returns the tasks matching s, in their original order.
func Project(tasks []task.Task, s State) []task.Task {
	query := NormalizeQuery(s.Search)
	result := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchesFilter(t, s.Filter) {
			continue
		}
		if query != "" && !matchesSearch(t, query) {
			continue
		}
		result = append(result, t)
	}
	return result
}

func matchesFilter(t task.Task, f Filter) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// matchesSearch performs case-insensitive substring matching across title and notes.
// query must already be normalized.
func matchesSearch(t task.Task, query string) bool {
	if strings.Contains(strings.ToLower(t.Title), query) {
		return true
	}
	return strings.Contains(strings.ToLower(t.Notes), query)
}
