package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/felixgeelhaar/todo/internal/errors"
)

// Task is a single to-do item as persisted in tasks.json.
type Task struct {
	ID        uint64     `json:"id" yaml:"id"`
	UID       string     `json:"uid,omitempty" yaml:"uid,omitempty"`
	Title     string     `json:"title" yaml:"title"`
	Content   string     `json:"content,omitempty" yaml:"content,omitempty"`
	Tags      []string   `json:"tags" yaml:"tags"`
	Due       Date       `json:"due,omitzero" yaml:"due,omitempty"`
	Priority  Priority   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Repeat    Recurrence `json:"repeat,omitempty" yaml:"repeat,omitempty"`
	Branch    string     `json:"branch" yaml:"branch"`
	Archived  bool       `json:"archived" yaml:"archived"`
	Done      bool       `json:"done" yaml:"done"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	Parent    uint64     `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	c.Tags = slices.Clone(t.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}

// Normalize fills defaults for fields older files may omit and canonicalizes tags.
func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.Branch = NormalizeBranch(t.Branch)
	t.Tags = NormalizeTags(t.Tags)
}

// Validate checks the invariants of a single task.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.NewValidationError(errors.ErrCodeMissingTitle, "task %d: title is required", t.ID)
	}
	if err := t.Priority.Validate(); err != nil {
		return err
	}
	if err := t.Repeat.Validate(); err != nil {
		return err
	}
	if err := ValidateBranch(t.Branch); err != nil {
		return err
	}
	if t.Archived && !t.Done {
		return errors.NewValidationError(errors.ErrCodeInvalidArchive,
			"task %d: archived tasks must be completed", t.ID)
	}
	return nil
}

// IsOpen reports whether the task still needs doing and is visible in default views.
func (t Task) IsOpen() bool {
	return !t.Done && !t.Archived
}

// IsOverdue reports whether an open task is past its due date.
func (t Task) IsOverdue(today Date) bool {
	return t.IsOpen() && !t.Due.IsZero() && t.Due.Before(today)
}

// IsDueToday reports whether an open task is due today.
func (t Task) IsDueToday(today Date) bool {
	return t.IsOpen() && t.Due.Equal(today)
}

// HasTag reports whether the task carries the tag.
func (t Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, normalizeTag(tag))
}

// Matches reports whether text occurs in the title or content, ignoring case.
func (t Task) Matches(text string) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Content), needle)
}

// InBranch compares branch names case-insensitively.
func (t Task) InBranch(branch string) bool {
	return SameBranch(t.Branch, branch)
}

// NextOccurrence returns the repeat of a recurring task, due one period after
// its own due date (or after today when it has none). The returned task has no
// id yet.
func (t Task) NextOccurrence(today Date, now time.Time) (Task, bool) {
	if !t.Repeat.IsSet() {
		return Task{}, false
	}
	base := t.Due
	if base.IsZero() {
		base = today
	}
	next := Task{
		Title:     t.Title,
		Content:   t.Content,
		Tags:      slices.Clone(t.Tags),
		Due:       t.Repeat.Next(base),
		Priority:  t.Priority,
		Repeat:    t.Repeat,
		Branch:    t.Branch,
		CreatedAt: now,
		Parent:    t.ID,
	}
	if next.Tags == nil {
		next.Tags = []string{}
	}
	return next, true
}
