package store

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
)

// ValidateCollection checks every task invariant plus id uniqueness under
// scope and uid uniqueness across the collection.
func ValidateCollection(tasks []domain.Task, scope domain.IDScope) error {
	ids := make(map[string]bool, len(tasks))
	uids := make(map[string]bool, len(tasks))

	for i, t := range tasks {
		if t.ID == 0 {
			return todoerrors.NewValidationError(todoerrors.ErrCodeDuplicateID,
				"record %d (%q) has no id", i+1, t.Title)
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}

		key := scope.Key(t.Branch, t.ID)
		if ids[key] {
			e := todoerrors.NewValidationError(todoerrors.ErrCodeDuplicateID,
				"duplicate task id %d under %s scope", t.ID, scope)
			if scope == domain.ScopeGlobal {
				e = e.WithSuggestion("Keep id_scope=branch or renumber the tasks before switching")
			}
			return e
		}
		ids[key] = true

		if t.UID != "" {
			uid := strings.ToLower(t.UID)
			if uids[uid] {
				return todoerrors.NewValidationError(todoerrors.ErrCodeDuplicateID,
					"duplicate task uid %s", t.UID)
			}
			uids[uid] = true
		}
	}
	return nil
}
