package mutate

import (
	"strings"

	"github.com/felixgeelhaar/todo/internal/domain"
	"github.com/felixgeelhaar/todo/internal/exchange"
	"github.com/felixgeelhaar/todo/internal/store"
)

// ImportOptions control how decoded records enter the collection.
type ImportOptions struct {
	// Branch receives records that do not name one.
	Branch string
	// Merge updates the task whose uid matches a record instead of adding a
	// duplicate.
	Merge bool
}

type imported struct {
	position   int
	origBranch string
	origParent uint64
}

// Import adds decoded records to the collection. Every record is validated on
// its own; failing records are reported and skipped while the rest are
// committed together. Ids are always reassigned, and parent links inside the
// payload are remapped to the new ids.
func (e *Engine) Import(records []exchange.Record, opts ImportOptions) (ImportReport, error) {
	tx := e.store.Begin()
	report := ImportReport{Total: len(records)}
	defaultBranch := domain.NormalizeBranch(opts.Branch)

	byBranchID := map[string]uint64{}
	byID := map[uint64][]uint64{}
	var touched []imported

	for _, rec := range records {
		if rec.Err != nil {
			report.Failures = append(report.Failures, Failure{Position: rec.Position, Err: rec.Err})
			e.log.WithError(rec.Err).Warn("skipped import record", "position", rec.Position)
			continue
		}

		t := rec.Task.Clone()
		if strings.TrimSpace(t.Branch) == "" {
			t.Branch = defaultBranch
		}
		t.Normalize()
		origID, origParent := t.ID, t.Parent
		t.Parent = 0
		if err := t.Validate(); err != nil {
			report.Failures = append(report.Failures, Failure{Position: rec.Position, Err: err})
			e.log.WithError(err).Warn("skipped import record", "position", rec.Position)
			continue
		}

		var (
			result domain.Task
			pos    int
		)
		if j, ok := tx.FindUID(t.UID); ok && opts.Merge {
			result, pos = mergeInto(tx, j, t), j
			report.Updated = append(report.Updated, result)
		} else {
			if ok {
				// The uid belongs to another task; the copy gets its own.
				t.UID = ""
			}
			t.ID = 0
			result = tx.Insert(t)
			pos = tx.Len() - 1
			report.Created = append(report.Created, result)
		}

		if origID != 0 {
			byBranchID[domain.ScopeBranch.Key(t.Branch, origID)] = result.ID
			byID[origID] = append(byID[origID], result.ID)
		}
		touched = append(touched, imported{position: pos, origBranch: t.Branch, origParent: origParent})
	}

	for _, it := range touched {
		if it.origParent == 0 {
			continue
		}
		parent, ok := byBranchID[domain.ScopeBranch.Key(it.origBranch, it.origParent)]
		if !ok && len(byID[it.origParent]) == 1 {
			parent, ok = byID[it.origParent][0], true
		}
		if !ok {
			continue
		}
		t := tx.At(it.position)
		t.Parent = parent
		tx.Replace(it.position, t)
	}

	if err := tx.Commit(); err != nil {
		return ImportReport{}, err
	}
	report.Created = refresh(tx, report.Created)
	report.Updated = refresh(tx, report.Updated)

	e.log.Info("imported tasks", "created", len(report.Created), "updated", len(report.Updated), "failed", len(report.Failures))
	return report, nil
}

// mergeInto copies the user-visible fields of src into the task at position j.
func mergeInto(tx *store.Tx, j int, src domain.Task) domain.Task {
	t := tx.At(j)
	t.Title = src.Title
	t.Content = src.Content
	t.Tags = src.Tags
	t.Due = src.Due
	t.Priority = src.Priority
	t.Repeat = src.Repeat
	t.Done = src.Done
	t.Archived = src.Archived
	if !t.InBranch(src.Branch) {
		moveTask(tx, &t, src.Branch)
	}
	tx.Replace(j, t)
	return t
}

// refresh re-reads tasks by uid or id after parent remapping.
func refresh(tx *store.Tx, tasks []domain.Task) []domain.Task {
	all := tx.Tasks()
	out := make([]domain.Task, 0, len(tasks))
	for _, want := range tasks {
		for _, t := range all {
			if t.ID == want.ID && t.Branch == want.Branch && t.UID == want.UID {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
