package store

import (
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
)

// Tx is a working copy of the collection. Nothing is visible to the Store
// until Commit succeeds; an abandoned Tx has no effect.
type Tx struct {
	s      *Store
	tasks  []domain.Task
	closed bool
}

// Begin starts a transaction over a copy of the current collection.
func (s *Store) Begin() *Tx {
	return &Tx{s: s, tasks: cloneAll(s.tasks)}
}

// Scope returns the id scope of the underlying store.
func (tx *Tx) Scope() domain.IDScope {
	return tx.s.opts.IDScope
}

// Len returns the number of tasks in the working copy.
func (tx *Tx) Len() int {
	return len(tx.tasks)
}

// At returns a copy of the task at position i.
func (tx *Tx) At(i int) domain.Task {
	return tx.tasks[i].Clone()
}

// Tasks returns a copy of the working collection.
func (tx *Tx) Tasks() []domain.Task {
	return cloneAll(tx.tasks)
}

// Find returns the position of the addressed task.
func (tx *Tx) Find(ref domain.Ref) (int, error) {
	return find(tx.tasks, ref, tx.Scope())
}

// FindUID returns the position of the task with exactly this uid.
func (tx *Tx) FindUID(uid string) (int, bool) {
	if uid == "" {
		return -1, false
	}
	i := slices.IndexFunc(tx.tasks, func(t domain.Task) bool {
		return strings.EqualFold(t.UID, uid)
	})
	return i, i >= 0
}

// Select returns the positions of every task matching pred, in collection order.
func (tx *Tx) Select(pred func(domain.Task) bool) []int {
	var out []int
	for i, t := range tx.tasks {
		if pred(t) {
			out = append(out, i)
		}
	}
	return out
}

// NextID returns max+1 over the ids in the scope of branch.
func (tx *Tx) NextID(branch string) uint64 {
	var max uint64
	for _, t := range tx.tasks {
		if tx.Scope() == domain.ScopeBranch && !t.InBranch(branch) {
			continue
		}
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

// NewUID returns a fresh uid, or "" when uids are disabled.
func (tx *Tx) NewUID() string {
	if !tx.s.opts.UseUUID {
		return ""
	}
	return uuid.NewString()
}

// Insert appends t. A zero id gets the next id of its branch, a missing uid
// is generated when uids are enabled, and a zero creation time is set to now.
func (tx *Tx) Insert(t domain.Task) domain.Task {
	t = t.Clone()
	t.Normalize()
	if t.ID == 0 {
		t.ID = tx.NextID(t.Branch)
	}
	if t.UID == "" {
		t.UID = tx.NewUID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = tx.s.opts.Clock()
	}
	tx.tasks = append(tx.tasks, t)
	return t.Clone()
}

// Replace overwrites the task at position i.
func (tx *Tx) Replace(i int, t domain.Task) {
	t = t.Clone()
	t.Normalize()
	tx.tasks[i] = t
}

// Remove drops the tasks at the given positions.
func (tx *Tx) Remove(positions ...int) {
	drop := make(map[int]bool, len(positions))
	for _, p := range positions {
		drop[p] = true
	}
	kept := make([]domain.Task, 0, len(tx.tasks))
	for i, t := range tx.tasks {
		if !drop[i] {
			kept = append(kept, t)
		}
	}
	tx.tasks = kept
}

// Commit validates the working copy and makes it the store's collection.
func (tx *Tx) Commit() error {
	if tx.closed {
		return errors.New("store: transaction already committed")
	}
	if err := ValidateCollection(tx.tasks, tx.Scope()); err != nil {
		return err
	}
	tx.s.tasks = tx.tasks
	tx.closed = true
	return nil
}

func find(tasks []domain.Task, ref domain.Ref, scope domain.IDScope) (int, error) {
	if ref.UID != "" {
		return findUID(tasks, ref.UID)
	}
	for i, t := range tasks {
		if t.ID != ref.ID {
			continue
		}
		if scope == domain.ScopeBranch && !t.InBranch(domain.NormalizeBranch(ref.Branch)) {
			continue
		}
		return i, nil
	}
	return -1, todoerrors.NewTaskNotFoundError(ref.String())
}

func findUID(tasks []domain.Task, uid string) (int, error) {
	uid = strings.ToLower(uid)
	match := -1
	for i, t := range tasks {
		tu := strings.ToLower(t.UID)
		if tu == "" {
			continue
		}
		if tu == uid {
			return i, nil
		}
		if len(uid) >= domain.MinUIDPrefix && strings.HasPrefix(tu, uid) {
			if match >= 0 {
				return -1, todoerrors.NewValidationError(todoerrors.ErrCodeInvalidReference,
					"uid prefix %q matches more than one task", uid).
					WithSuggestion("Use more characters of the uid")
			}
			match = i
		}
	}
	if match < 0 {
		return -1, todoerrors.NewTaskNotFoundError(uid)
	}
	return match, nil
}
