// Package task defines the task record and the partial updates applied to it.
package task

import (
	"strings"
	"time"
)

// Task is a single to-do item. Timestamps are epoch milliseconds.
type Task struct {
	ID        string `yaml:"id" json:"id"`
	Title     string `yaml:"title" json:"title"`
	Notes     string `yaml:"notes" json:"notes"`
	Completed bool   `yaml:"completed" json:"completed"`
	CreatedAt int64  `yaml:"createdAt" json:"createdAt"`
	UpdatedAt int64  `yaml:"updatedAt" json:"updatedAt"`
}

// New builds an active task with both timestamps set to now.
// Title and notes are trimmed; the caller checks that the title is non-empty.
func New(id, title, notes string, now time.Time) Task {
	ms := now.UnixMilli()
	return Task{
		ID:        id,
		Title:     strings.TrimSpace(title),
		Notes:     strings.TrimSpace(notes),
		CreatedAt: ms,
		UpdatedAt: ms,
	}
}

// Created returns CreatedAt as a time.Time.
func (t Task) Created() time.Time { return time.UnixMilli(t.CreatedAt) }

// Updated returns UpdatedAt as a time.Time.
func (t Task) Updated() time.Time { return time.UnixMilli(t.UpdatedAt) }

// Touch stamps UpdatedAt, never letting it fall below CreatedAt
// when the clock steps backwards.
func (t *Task) Touch(now time.Time) {
	ms := now.UnixMilli()
	if ms < t.CreatedAt {
		ms = t.CreatedAt
	}
	t.UpdatedAt = ms
}

// Patch is a partial field overwrite. Nil fields are left untouched.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Empty reports whether the patch changes no field.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Notes == nil && p.Completed == nil
}

// Valid reports whether the patch can be applied: a title, when present,
// must be non-empty after trimming.
func (p Patch) Valid() bool {
	return p.Title == nil || strings.TrimSpace(*p.Title) != ""
}

// Apply overwrites the fields set in p and stamps UpdatedAt.
func (p Patch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Notes != nil {
		t.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.Touch(now)
}

// SetTitle returns a patch that replaces the title.
func SetTitle(title string) Patch { return Patch{Title: &title} }

// SetNotes returns a patch that replaces the notes.
func SetNotes(notes string) Patch { return Patch{Notes: &notes} }

// SetCompleted returns a patch that sets the completion flag.
func SetCompleted(completed bool) Patch { return Patch{Completed: &completed} }

// Merge returns p with every field set in other copied over.
func (p Patch) Merge(other Patch) Patch {
	if other.Title != nil {
		p.Title = other.Title
	}
	if other.Notes != nil {
		p.Notes = other.Notes
	}
	if other.Completed != nil {
		p.Completed = other.Completed
	}
	return p
}
