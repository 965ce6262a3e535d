// Package mutate implements every state-changing operation on the task
// collection. Each operation runs in a single store transaction, so it either
// applies completely or leaves the store untouched. Persisting is left to the
// caller.
package mutate

import (
	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
	"github.com/felixgeelhaar/todo/internal/log"
	"github.com/felixgeelhaar/todo/internal/store"
)

// Engine applies mutations to a store.
type Engine struct {
	store *store.Store
	log   *log.Logger
}

// New returns an engine for s.
func New(s *store.Store) *Engine {
	return &Engine{store: s, log: s.Logger().WithGroup("mutate")}
}

func (e *Engine) today() domain.Date {
	return domain.DateOf(e.store.Now())
}

// Completion is the outcome of marking a task done.
type Completion struct {
	Task domain.Task
	// Spawned is the next occurrence of a recurring task, if one was created.
	Spawned *domain.Task
	// Changed is false when the task was already done.
	Changed bool
}

// Done marks a task completed. Completing a recurring task creates its next
// occurrence. Completing a task that is already done changes nothing.
func (e *Engine) Done(ref domain.Ref) (Completion, error) {
	tx := e.store.Begin()
	i, err := tx.Find(ref)
	if err != nil {
		return Completion{}, err
	}
	c := e.complete(tx, i)
	if err := tx.Commit(); err != nil {
		return Completion{}, err
	}
	e.logCompletion(c)
	return c, nil
}

func (e *Engine) complete(tx *store.Tx, i int) Completion {
	t := tx.At(i)
	if t.Done {
		return Completion{Task: t}
	}
	t.Done = true
	tx.Replace(i, t)

	c := Completion{Task: t, Changed: true}
	if next, ok := t.NextOccurrence(e.today(), e.store.Now()); ok {
		spawned := tx.Insert(next)
		c.Spawned = &spawned
	}
	return c
}

func (e *Engine) logCompletion(c Completion) {
	if !c.Changed {
		return
	}
	if c.Spawned != nil {
		e.log.Debug("completed recurring task", "id", c.Task.ID, "next", c.Spawned.ID, "due", c.Spawned.Due.String())
		return
	}
	e.log.Debug("completed task", "id", c.Task.ID)
}

// Undone reopens a completed task. Archived tasks must be unarchived first.
func (e *Engine) Undone(ref domain.Ref) (domain.Task, error) {
	tx := e.store.Begin()
	i, err := tx.Find(ref)
	if err != nil {
		return domain.Task{}, err
	}
	t, err := reopen(tx, i)
	if err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func reopen(tx *store.Tx, i int) (domain.Task, error) {
	t := tx.At(i)
	if t.Archived {
		return domain.Task{}, todoerrors.NewValidationError(todoerrors.ErrCodeInvalidArchive,
			"task %d is archived", t.ID).
			WithSuggestion("Run 'todo unarchive' first")
	}
	if !t.Done {
		return t, nil
	}
	t.Done = false
	tx.Replace(i, t)
	return t, nil
}

// Toggle flips completion. Toggling to done behaves like Done.
func (e *Engine) Toggle(ref domain.Ref) (Completion, error) {
	tx := e.store.Begin()
	i, err := tx.Find(ref)
	if err != nil {
		return Completion{}, err
	}

	var c Completion
	if tx.At(i).Done {
		t, err := reopen(tx, i)
		if err != nil {
			return Completion{}, err
		}
		c = Completion{Task: t, Changed: true}
	} else {
		c = e.complete(tx, i)
	}

	if err := tx.Commit(); err != nil {
		return Completion{}, err
	}
	e.logCompletion(c)
	return c, nil
}

// Edit applies patch to the addressed task. Moving a task to another branch
// under branch id scope renumbers it in the destination.
func (e *Engine) Edit(ref domain.Ref, patch domain.Patch) (domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return domain.Task{}, err
	}

	tx := e.store.Begin()
	i, err := tx.Find(ref)
	if err != nil {
		return domain.Task{}, err
	}

	t := tx.At(i)
	patch.Apply(&t)
	if patch.Branch != nil {
		moveTask(tx, &t, domain.NormalizeBranch(*patch.Branch))
	}
	tx.Replace(i, t)

	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	e.log.Debug("edited task", "id", t.ID, "branch", t.Branch)
	return t, nil
}

// moveTask assigns t to branch to. Under branch scope the task gets the next
// id of the destination and loses its parent link, which pointed into the
// source branch.
func moveTask(tx *store.Tx, t *domain.Task, to string) {
	if t.InBranch(to) {
		t.Branch = to
		return
	}
	if tx.Scope() == domain.ScopeBranch {
		t.ID = tx.NextID(to)
		t.Parent = 0
	}
	t.Branch = to
}

// Delete removes a task permanently.
func (e *Engine) Delete(ref domain.Ref) (domain.Task, error) {
	t, err := e.store.Delete(ref)
	if err != nil {
		return domain.Task{}, err
	}
	e.log.Debug("deleted task", "id", t.ID)
	return t, nil
}

// ClearDone removes the completed, unarchived tasks of branch (every branch
// when branch is empty) and returns them.
func (e *Engine) ClearDone(branch string) ([]domain.Task, error) {
	tx := e.store.Begin()
	positions := tx.Select(func(t domain.Task) bool {
		return t.Done && !t.Archived && (branch == "" || t.InBranch(branch))
	})
	removed := make([]domain.Task, 0, len(positions))
	for _, i := range positions {
		removed = append(removed, tx.At(i))
	}
	tx.Remove(positions...)
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	e.log.Debug("cleared completed tasks", "branch", branch, "count", len(removed))
	return removed, nil
}

// Archive hides a completed task from default views.
func (e *Engine) Archive(ref domain.Ref) (domain.Task, error) {
	return e.store.Update(ref, func(t *domain.Task) error {
		if !t.Done {
			return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidArchive,
				"task %d is not completed", t.ID).
				WithSuggestion("Complete it first with 'todo done'")
		}
		t.Archived = true
		return nil
	})
}

// ArchiveDone archives every completed task of branch (every branch when
// branch is empty) and returns them.
func (e *Engine) ArchiveDone(branch string) ([]domain.Task, error) {
	tx := e.store.Begin()
	positions := tx.Select(func(t domain.Task) bool {
		return t.Done && !t.Archived && (branch == "" || t.InBranch(branch))
	})
	archived := make([]domain.Task, 0, len(positions))
	for _, i := range positions {
		t := tx.At(i)
		t.Archived = true
		tx.Replace(i, t)
		archived = append(archived, t)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	e.log.Debug("archived completed tasks", "branch", branch, "count", len(archived))
	return archived, nil
}

// Unarchive returns a task to the completed list. It stays completed.
func (e *Engine) Unarchive(ref domain.Ref) (domain.Task, error) {
	return e.store.Update(ref, func(t *domain.Task) error {
		t.Archived = false
		return nil
	})
}
