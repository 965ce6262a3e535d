package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/todo/internal/errors"
)

// IDScope decides whether task ids are unique across all branches or per branch.
type IDScope string

// ID scopes
const (
	ScopeGlobal IDScope = "global"
	ScopeBranch IDScope = "branch"
)

// ParseIDScope parses an id scope name.
func ParseIDScope(s string) (IDScope, error) {
	switch IDScope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeGlobal:
		return ScopeGlobal, nil
	case ScopeBranch:
		return ScopeBranch, nil
	default:
		return "", errors.NewValidationError(errors.ErrCodeInvalidIDScope,
			"invalid id scope %q: must be global or branch", s)
	}
}

// Key returns the identity of a task under the scope.
func (s IDScope) Key(branch string, id uint64) string {
	if s == ScopeBranch {
		return BranchKey(branch) + "/" + strconv.FormatUint(id, 10)
	}
	return strconv.FormatUint(id, 10)
}

// MinUIDPrefix is the shortest uid prefix accepted as a reference.
const MinUIDPrefix = 4

// Ref addresses a single task, either by numeric id within a branch or by uid.
// Under global scope the branch of an id reference is ignored.
type Ref struct {
	Branch string
	ID     uint64
	UID    string
}

// ParseRef interprets a command-line reference: digits (optionally prefixed with
// '#') are an id in branch, anything else is a uid or uid prefix.
func ParseRef(s, branch string) (Ref, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return Ref{}, errors.NewValidationError(errors.ErrCodeInvalidReference, "task reference is required")
	}
	if id, err := strconv.ParseUint(s, 10, 64); err == nil {
		if id == 0 {
			return Ref{}, errors.NewValidationError(errors.ErrCodeInvalidReference, "task ids start at 1")
		}
		return Ref{Branch: branch, ID: id}, nil
	}
	if len(s) < MinUIDPrefix {
		return Ref{}, errors.NewValidationError(errors.ErrCodeInvalidReference,
			"invalid task reference %q: expected an id or at least %d characters of a uid", s, MinUIDPrefix)
	}
	return Ref{UID: strings.ToLower(s)}, nil
}

func (r Ref) String() string {
	if r.UID != "" {
		return r.UID
	}
	if r.Branch != "" {
		return fmt.Sprintf("%d in branch %q", r.ID, r.Branch)
	}
	return strconv.FormatUint(r.ID, 10)
}
