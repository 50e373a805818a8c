package task

import (
	"strings"
)

// shortIDLength is the number of leading ID characters shown in listings.
const shortIDLength = 8

// ShortID returns the abbreviated form of an ID used in table output.
func ShortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

// FindByPrefix resolves a task reference typed by a user. An exact ID match
// wins; otherwise the reference must be the prefix of exactly one ID.
func FindByPrefix(tasks []Task, ref string) (Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Task{}, ValidateTaskID(ref)
	}

	var matches []Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return Task{}, NotFound(ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return Task{}, Ambiguous(ref, ids)
	}
}

// IndexOf returns the position of the task with the given ID, or -1.
func IndexOf(tasks []Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
