package query

import (
	"strings"

	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
)

// Status selects tasks by completion.
type Status int

const (
	// StatusOpen keeps tasks that are not done (the default).
	StatusOpen Status = iota
	// StatusDone keeps completed tasks only.
	StatusDone
	// StatusAll keeps both.
	StatusAll
)

// DueFilter selects tasks by presence of a due date.
type DueFilter int

const (
	DueAny DueFilter = iota
	DueSet
	DueUnset
)

// Filter is a conjunction of predicates. The zero value lists open,
// unarchived tasks of every branch.
type Filter struct {
	Branch          string
	Status          Status
	IncludeArchived bool
	ArchivedOnly    bool
	Tags            []string
	Text            string
	RepeatOnly      bool
	Due             DueFilter
}

// Match reports whether t passes every predicate of f.
func (f Filter) Match(t domain.Task) bool {
	if f.Branch != "" && !t.InBranch(f.Branch) {
		return false
	}
	switch f.Status {
	case StatusOpen:
		if t.Done {
			return false
		}
	case StatusDone:
		if !t.Done {
			return false
		}
	}
	if f.ArchivedOnly {
		if !t.Archived {
			return false
		}
	} else if t.Archived && !f.IncludeArchived {
		return false
	}
	if !domain.HasAnyTag(t.Tags, f.Tags) {
		return false
	}
	if !t.Matches(f.Text) {
		return false
	}
	if f.RepeatOnly && !t.Repeat.IsSet() {
		return false
	}
	switch f.Due {
	case DueSet:
		return !t.Due.IsZero()
	case DueUnset:
		return t.Due.IsZero()
	}
	return true
}

// SortKey names the field tasks are ordered by.
type SortKey string

// Sort keys
const (
	SortDue      SortKey = "due"
	SortPriority SortKey = "priority"
	SortCreated  SortKey = "created"
	SortID       SortKey = "id"
)

// ParseSortKey parses a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortDue, SortPriority, SortCreated, SortID:
		return k, nil
	default:
		return "", todoerrors.NewValidationError(todoerrors.ErrCodeInvalidSortKey,
			"invalid sort key %q: must be due, priority, created, or id", s)
	}
}

// Sort orders tasks by Key. Priority sorts highest first unless Desc is set,
// every other key sorts ascending unless Desc is set.
type Sort struct {
	Key  SortKey
	Desc bool
}

// GroupBy selects how a listing is split into sections.
type GroupBy int

const (
	GroupNone GroupBy = iota
	GroupDueDay
	GroupBranch
	GroupDueSplit
)

// ParseGroupBy parses a --group-by value: none, due-day or branch.
func ParseGroupBy(s string) (GroupBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return GroupNone, nil
	case "due-day", "due", "day":
		return GroupDueDay, nil
	case "branch":
		return GroupBranch, nil
	default:
		return GroupNone, todoerrors.NewValidationError(todoerrors.ErrCodeInvalidSortKey,
			"invalid grouping %q: must be none, due-day, or branch", s)
	}
}

// Grouping configures List sectioning. CurrentBranch orders branch groups.
type Grouping struct {
	By            GroupBy
	CurrentBranch string
}
