package task

import (
	"strings"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
)

// ValidateTitle returns a CLIError when the title is empty after trimming.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return clierr.New(clierr.EmptyTitle, "title must not be empty")
	}
	return nil
}

// ValidateTaskID returns a CLIError for invalid task ID input.
func ValidateTaskID(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "invalid task ID %q", input).
		WithDetails(map[string]any{"input": input})
}

// NotFound returns a CLIError for a reference that matches no task.
func NotFound(ref string) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task not found: %s", ref).
		WithDetails(map[string]any{"id": ref})
}

// Ambiguous returns a CLIError for a prefix that matches several tasks.
func Ambiguous(ref string, ids []string) *clierr.Error {
	return clierr.Newf(clierr.AmbiguousID, "task ID %q is ambiguous (%d matches)", ref, len(ids)).
		WithDetails(map[string]any{
			"id":      ref,
			"matches": ids,
		})
}
