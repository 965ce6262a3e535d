package domain

import (
	"encoding/json"
	"strings"

	"github.com/felixgeelhaar/todo/internal/errors"
)

// Priority is the importance of a task. The zero value means no priority.
// This is a value object that enforces valid priority values.
type Priority string

// Valid priority levels
const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority parses a priority name case-insensitively. The empty string
// and "none" yield PriorityNone.
func ParsePriority(value string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(value)))
	if p == "none" {
		return PriorityNone, nil
	}
	if err := p.Validate(); err != nil {
		return PriorityNone, err
	}
	return p, nil
}

// Validate checks if the priority is valid
func (p Priority) Validate() error {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	default:
		return errors.NewValidationError(errors.ErrCodeInvalidPriority,
			"invalid priority %q: must be low, medium, or high", string(p))
	}
}

// String returns the string representation
func (p Priority) String() string {
	return string(p)
}

// IsSet reports whether a priority was assigned.
func (p Priority) IsSet() bool {
	return p != PriorityNone
}

// Rank returns the numeric rank of a priority (higher = more important)
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// UnmarshalJSON accepts null and the capitalised names written by older releases.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*p = PriorityNone
		return nil
	}
	parsed, err := ParsePriority(*s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
