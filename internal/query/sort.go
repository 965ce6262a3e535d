package query

import (
	"cmp"
	"slices"

	"github.com/felixgeelhaar/todo/internal/domain"
)

// SortTasks orders tasks in place. Tasks missing the sort field come after all
// tasks that have it, in either direction. Ties keep their input order.
func SortTasks(tasks []domain.Task, s Sort) {
	slices.SortStableFunc(tasks, func(a, b domain.Task) int {
		return compare(a, b, s)
	})
}

func compare(a, b domain.Task, s Sort) int {
	switch s.Key {
	case SortDue:
		if c, ok := missingLast(a.Due.IsZero(), b.Due.IsZero()); ok {
			return c
		}
		return direct(a.Due.Compare(b.Due), s.Desc)
	case SortPriority:
		if c, ok := missingLast(!a.Priority.IsSet(), !b.Priority.IsSet()); ok {
			return c
		}
		// Most important first by default.
		return direct(cmp.Compare(b.Priority.Rank(), a.Priority.Rank()), s.Desc)
	case SortCreated:
		if c, ok := missingLast(a.CreatedAt.IsZero(), b.CreatedAt.IsZero()); ok {
			return c
		}
		return direct(a.CreatedAt.Compare(b.CreatedAt), s.Desc)
	case SortID:
		return direct(cmp.Compare(a.ID, b.ID), s.Desc)
	default:
		return 0
	}
}

func missingLast(aMissing, bMissing bool) (int, bool) {
	switch {
	case aMissing && bMissing:
		return 0, true
	case aMissing:
		return 1, true
	case bMissing:
		return -1, true
	default:
		return 0, false
	}
}

func direct(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}
