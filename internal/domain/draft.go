package domain

import (
	"slices"
	"strings"

	"github.com/felixgeelhaar/todo/internal/errors"
)

// Draft carries the user-supplied fields of a task that does not exist yet.
type Draft struct {
	Title    string
	Content  string
	Tags     []string
	Due      Date
	Priority Priority
	Repeat   Recurrence
	Branch   string
}

// Validate checks the fields a user may get wrong.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return errors.NewValidationError(errors.ErrCodeMissingTitle, "title is required")
	}
	if err := d.Priority.Validate(); err != nil {
		return err
	}
	if err := d.Repeat.Validate(); err != nil {
		return err
	}
	return ValidateBranch(NormalizeBranch(d.Branch))
}

// Task builds the unnumbered task for the draft.
func (d Draft) Task() Task {
	t := Task{
		Title:    d.Title,
		Content:  d.Content,
		Tags:     d.Tags,
		Due:      d.Due,
		Priority: d.Priority,
		Repeat:   d.Repeat,
		Branch:   d.Branch,
	}
	t.Normalize()
	return t
}

// Patch describes an edit. Nil fields are left untouched; a pointer to the
// zero value clears the field.
type Patch struct {
	Title      *string
	Content    *string
	Tags       []string // replaces all tags when SetTags is true
	SetTags    bool
	AddTags    []string
	RemoveTags []string
	Due        *Date
	Priority   *Priority
	Repeat     *Recurrence
	Branch     *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && !p.SetTags && len(p.AddTags) == 0 &&
		len(p.RemoveTags) == 0 && p.Due == nil && p.Priority == nil && p.Repeat == nil &&
		p.Branch == nil
}

// Validate checks the values the patch would set.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return errors.NewValidationError(errors.ErrCodeMissingTitle, "title cannot be cleared")
	}
	if p.Priority != nil {
		if err := p.Priority.Validate(); err != nil {
			return err
		}
	}
	if p.Repeat != nil {
		if err := p.Repeat.Validate(); err != nil {
			return err
		}
	}
	if p.Branch != nil {
		return ValidateBranch(NormalizeBranch(*p.Branch))
	}
	return nil
}

// Apply writes every field except the branch into t. Branch changes may
// renumber the task, so the caller applies them.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.SetTags {
		t.Tags = NormalizeTags(p.Tags)
	}
	if len(p.AddTags) > 0 {
		t.Tags = AddTags(t.Tags, p.AddTags)
	}
	if len(p.RemoveTags) > 0 {
		t.Tags = RemoveTags(t.Tags, p.RemoveTags)
	}
	if p.Due != nil {
		t.Due = *p.Due
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Repeat != nil {
		t.Repeat = *p.Repeat
	}
}

// Diff returns the patch that turns before into after.
func Diff(before, after Task) Patch {
	var p Patch
	if before.Title != after.Title {
		p.Title = &after.Title
	}
	if before.Content != after.Content {
		p.Content = &after.Content
	}
	if !slices.Equal(before.Tags, after.Tags) {
		p.SetTags = true
		p.Tags = after.Tags
	}
	if !before.Due.Equal(after.Due) {
		p.Due = &after.Due
	}
	if before.Priority != after.Priority {
		p.Priority = &after.Priority
	}
	if before.Repeat != after.Repeat {
		p.Repeat = &after.Repeat
	}
	if before.Branch != after.Branch {
		p.Branch = &after.Branch
	}
	return p
}
