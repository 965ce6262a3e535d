package domain

import (
	"strings"
	"unicode"

	"github.com/felixgeelhaar/todo/internal/errors"
)

// DefaultBranch holds tasks that were never assigned a branch. It cannot be deleted.
const DefaultBranch = "personal"

// NormalizeBranch trims the name and maps the empty name to DefaultBranch.
func NormalizeBranch(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultBranch
	}
	return name
}

// SameBranch compares branch names case-insensitively.
func SameBranch(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// BranchKey is the canonical map key for a branch name.
func BranchKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateBranch rejects empty names, whitespace and names that look like flags.
func ValidateBranch(name string) error {
	if name == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidBranch, "branch name is required")
	}
	if strings.HasPrefix(name, "-") {
		return errors.NewValidationError(errors.ErrCodeInvalidBranch,
			"invalid branch name %q: must not start with '-'", name)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidBranch,
			"invalid branch name %q: must not contain whitespace", name)
	}
	return nil
}
