package mutate

import (
	"fmt"

	"github.com/felixgeelhaar/todo/internal/domain"
)

// Failure records one item a bulk operation or import had to skip.
type Failure struct {
	// Position is the 1-based import record position, or 0 for bulk items.
	Position int
	TaskID   uint64
	Branch   string
	Err      error
}

func (f Failure) String() string {
	switch {
	case f.Position > 0:
		return fmt.Sprintf("record %d: %v", f.Position, f.Err)
	default:
		return fmt.Sprintf("task %d (%s): %v", f.TaskID, f.Branch, f.Err)
	}
}

// PartialError reports that some items of a best-effort operation failed
// while the others were committed.
type PartialError struct {
	Failed int
	Total  int
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%d of %d items failed", e.Failed, e.Total)
}

// Partial marks the error as a partial failure for exit code mapping.
func (e *PartialError) Partial() bool {
	return true
}

// BulkReport is the outcome of a bulk operation.
type BulkReport struct {
	// Matched counts the tasks selected.
	Matched int
	// Affected holds the tasks that changed, after the change.
	Affected []domain.Task
	// Spawned holds occurrences created by completing recurring tasks.
	Spawned  []domain.Task
	Failures []Failure
}

// Err returns a *PartialError when any item failed.
func (r BulkReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &PartialError{Failed: len(r.Failures), Total: r.Matched}
}

// ImportReport is the outcome of an import.
type ImportReport struct {
	Total    int
	Created  []domain.Task
	Updated  []domain.Task
	Failures []Failure
}

// Err returns a *PartialError when any record failed.
func (r ImportReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &PartialError{Failed: len(r.Failures), Total: r.Total}
}
