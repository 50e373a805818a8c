package view

import (
	"fmt"

	"github.com/twiced-technology-gmbh/tasklist/internal/task"
)

// Stats holds the counts shown under the list.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// Summarize counts tasks by completion state.
func Summarize(tasks []task.Task) Stats {
	var s Stats
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Total = len(tasks)
	s.Active = s.Total - s.Completed
	return s
}

// String renders the stats line, e.g. "3 total • 2 active • 1 completed".
func (s Stats) String() string {
	return fmt.Sprintf("%d total • %d active • %d completed", s.Total, s.Active, s.Completed)
}
