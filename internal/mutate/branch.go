package mutate

import (
	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
	"github.com/felixgeelhaar/todo/internal/store"
)

func branchPair(from, to string) (string, string, error) {
	from, to = domain.NormalizeBranch(from), domain.NormalizeBranch(to)
	if err := domain.ValidateBranch(to); err != nil {
		return "", "", err
	}
	if domain.SameBranch(from, to) {
		return "", "", todoerrors.NewValidationError(todoerrors.ErrCodeInvalidBranch,
			"source and destination branch are both %q", from)
	}
	return from, to, nil
}

func branchMembers(tx *store.Tx, branch string) ([]int, error) {
	positions := tx.Select(func(t domain.Task) bool { return t.InBranch(branch) })
	if len(positions) == 0 {
		return nil, todoerrors.NewBranchNotFoundError(branch)
	}
	return positions, nil
}

// BranchMove reassigns every task of from to to and returns how many moved.
// Under branch id scope the moved tasks are renumbered after the existing
// tasks of the destination and parent links between them are remapped.
func (e *Engine) BranchMove(from, to string) (int, error) {
	from, to, err := branchPair(from, to)
	if err != nil {
		return 0, err
	}
	tx := e.store.Begin()
	positions, err := branchMembers(tx, from)
	if err != nil {
		return 0, err
	}

	renumber := tx.Scope() == domain.ScopeBranch
	remap := make(map[uint64]uint64, len(positions))
	for _, i := range positions {
		t := tx.At(i)
		if renumber {
			next := tx.NextID(to)
			remap[t.ID] = next
			t.ID = next
		}
		t.Branch = to
		tx.Replace(i, t)
	}
	if renumber {
		remapParents(tx, positions, remap, true)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	e.log.Debug("moved branch", "from", from, "to", to, "count", len(positions))
	return len(positions), nil
}

// BranchMerge folds from into to. Branches are logical names, so once every
// task has moved the source branch no longer exists.
func (e *Engine) BranchMerge(from, to string) (int, error) {
	return e.BranchMove(from, to)
}

// BranchDup copies every task of from into to with fresh ids, uids and
// creation times. Parent links point at the copies when the parent was copied.
func (e *Engine) BranchDup(from, to string) (int, error) {
	from, to, err := branchPair(from, to)
	if err != nil {
		return 0, err
	}
	tx := e.store.Begin()
	positions, err := branchMembers(tx, from)
	if err != nil {
		return 0, err
	}

	now := e.store.Now()
	remap := make(map[uint64]uint64, len(positions))
	copies := make([]int, 0, len(positions))
	for _, i := range positions {
		c := tx.At(i)
		oldID := c.ID
		c.ID = 0
		c.UID = ""
		c.CreatedAt = now
		c.Branch = to
		inserted := tx.Insert(c)
		remap[oldID] = inserted.ID
		copies = append(copies, tx.Len()-1)
	}
	remapParents(tx, copies, remap, tx.Scope() == domain.ScopeBranch)

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	e.log.Debug("duplicated branch", "from", from, "to", to, "count", len(copies))
	return len(copies), nil
}

// remapParents rewrites the parent links of the tasks at positions through
// remap. Links with no mapping are cleared when dropUnmapped is set.
func remapParents(tx *store.Tx, positions []int, remap map[uint64]uint64, dropUnmapped bool) {
	for _, i := range positions {
		t := tx.At(i)
		if t.Parent == 0 {
			continue
		}
		if p, ok := remap[t.Parent]; ok {
			t.Parent = p
		} else if dropUnmapped {
			t.Parent = 0
		} else {
			continue
		}
		tx.Replace(i, t)
	}
}

// BranchDelete removes a branch. A branch that still has tasks is only
// deleted, together with its tasks, when force is set. The default branch
// cannot be deleted. It returns the number of tasks removed.
func (e *Engine) BranchDelete(name string, force bool) (int, error) {
	name = domain.NormalizeBranch(name)
	if domain.SameBranch(name, domain.DefaultBranch) {
		return 0, todoerrors.NewValidationError(todoerrors.ErrCodeInvalidBranch,
			"the %q branch cannot be deleted", domain.DefaultBranch)
	}

	tx := e.store.Begin()
	positions := tx.Select(func(t domain.Task) bool { return t.InBranch(name) })
	if len(positions) > 0 && !force {
		return 0, todoerrors.NewBranchNotEmptyError(name, len(positions))
	}
	tx.Remove(positions...)
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	e.log.Debug("deleted branch", "branch", name, "removed", len(positions))
	return len(positions), nil
}
