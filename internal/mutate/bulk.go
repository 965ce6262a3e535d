package mutate

import (
	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
	"github.com/felixgeelhaar/todo/internal/store"
)

// Selector picks the tasks of a bulk operation with the same predicates as
// listing: branch (empty means every branch), free text and any-of tags.
// Archived tasks are never selected.
type Selector struct {
	Branch string
	Text   string
	Tags   []string
}

// Match reports whether t is selected.
func (s Selector) Match(t domain.Task) bool {
	if t.Archived {
		return false
	}
	if s.Branch != "" && !t.InBranch(s.Branch) {
		return false
	}
	return t.Matches(s.Text) && domain.HasAnyTag(t.Tags, s.Tags)
}

// bulk runs apply on every selected task inside one transaction. apply
// reports whether the task changed; an error skips that task only.
func (e *Engine) bulk(sel Selector, op string, apply func(tx *store.Tx, i int, r *BulkReport) (bool, error)) (BulkReport, error) {
	tx := e.store.Begin()
	positions := tx.Select(sel.Match)
	report := BulkReport{Matched: len(positions)}

	for _, i := range positions {
		before := tx.At(i)
		changed, err := apply(tx, i, &report)
		if err != nil {
			report.Failures = append(report.Failures, Failure{TaskID: before.ID, Branch: before.Branch, Err: err})
			e.log.WithError(err).Warn("skipped task", "op", op, "task", before.ID, "branch", before.Branch)
			continue
		}
		if changed {
			report.Affected = append(report.Affected, tx.At(i))
		}
	}

	if err := tx.Commit(); err != nil {
		return BulkReport{}, err
	}
	e.log.Info("bulk "+op, "matched", report.Matched, "affected", len(report.Affected), "failed", len(report.Failures))
	return report, nil
}

// BulkDone completes every selected open task, spawning next occurrences.
func (e *Engine) BulkDone(sel Selector) (BulkReport, error) {
	return e.bulk(sel, "done", func(tx *store.Tx, i int, r *BulkReport) (bool, error) {
		c := e.complete(tx, i)
		if c.Spawned != nil {
			r.Spawned = append(r.Spawned, *c.Spawned)
		}
		return c.Changed, nil
	})
}

// BulkUndone reopens every selected completed task.
func (e *Engine) BulkUndone(sel Selector) (BulkReport, error) {
	return e.bulk(sel, "undone", func(tx *store.Tx, i int, _ *BulkReport) (bool, error) {
		wasDone := tx.At(i).Done
		if _, err := reopen(tx, i); err != nil {
			return false, err
		}
		return wasDone, nil
	})
}

// BulkMove moves every selected task to branch to.
func (e *Engine) BulkMove(sel Selector, to string) (BulkReport, error) {
	to = domain.NormalizeBranch(to)
	if err := domain.ValidateBranch(to); err != nil {
		return BulkReport{}, err
	}
	return e.bulk(sel, "move", func(tx *store.Tx, i int, _ *BulkReport) (bool, error) {
		t := tx.At(i)
		if t.Branch == to {
			return false, nil
		}
		moveTask(tx, &t, to)
		tx.Replace(i, t)
		return true, nil
	})
}

// BulkEdit applies patch to every selected task.
func (e *Engine) BulkEdit(sel Selector, patch domain.Patch) (BulkReport, error) {
	if patch.IsEmpty() {
		return BulkReport{}, todoerrors.NewValidationError(todoerrors.ErrCodeInvalidPayload, "nothing to change").
			WithSuggestion("Pass at least one field flag such as --priority or --tag")
	}
	if err := patch.Validate(); err != nil {
		return BulkReport{}, err
	}
	return e.bulk(sel, "edit", func(tx *store.Tx, i int, _ *BulkReport) (bool, error) {
		before := tx.At(i)
		t := before.Clone()
		patch.Apply(&t)
		if patch.Branch != nil {
			moveTask(tx, &t, domain.NormalizeBranch(*patch.Branch))
		}
		if err := t.Validate(); err != nil {
			return false, err
		}
		if domain.Diff(before, t).IsEmpty() && before.ID == t.ID {
			return false, nil
		}
		tx.Replace(i, t)
		return true, nil
	})
}

// BulkDelete removes every selected task.
func (e *Engine) BulkDelete(sel Selector) (BulkReport, error) {
	tx := e.store.Begin()
	positions := tx.Select(sel.Match)
	report := BulkReport{Matched: len(positions)}
	for _, i := range positions {
		report.Affected = append(report.Affected, tx.At(i))
	}
	tx.Remove(positions...)
	if err := tx.Commit(); err != nil {
		return BulkReport{}, err
	}
	e.log.Info("bulk delete", "matched", report.Matched, "affected", len(report.Affected))
	return report, nil
}
