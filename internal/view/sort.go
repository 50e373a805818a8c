package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
)

// Sort fields accepted by SortTasks. SortNone keeps list order, newest first.
const (
	SortNone    = "list"
	SortCreated = "created"
	SortUpdated = "updated"
	SortTitle   = "title"
)

// SortFields lists the accepted sort fields.
func SortFields() []string {
	return []string{SortNone, SortCreated, SortUpdated, SortTitle}
}

// ValidateSort returns a CLIError for an unknown sort field.
func ValidateSort(field string) error {
	if field == "" || slices.Contains(SortFields(), field) {
		return nil
	}
	return clierr.Newf(clierr.InvalidInput, "invalid sort field %q; valid: %s",
		field, strings.Join(SortFields(), ", "))
}

// SortTasks returns a sorted copy of tasks. Ties keep list order.
func SortTasks(tasks []task.Task, field string, reverse bool) []task.Task {
	sorted := slices.Clone(tasks)
	if field == "" || field == SortNone {
		if reverse {
			slices.Reverse(sorted)
		}
		return sorted
	}
	slices.SortStableFunc(sorted, func(a, b task.Task) int {
		c := compareTasks(a, b, field)
		if reverse {
			return -c
		}
		return c
	})
	return sorted
}

func compareTasks(a, b task.Task, field string) int {
	switch field {
	case SortCreated:
		return cmp.Compare(a.CreatedAt, b.CreatedAt)
	case SortUpdated:
		return cmp.Compare(a.UpdatedAt, b.UpdatedAt)
	case SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	default:
		return 0
	}
}
