package domain

import (
	"encoding/json"
	"strings"

	"github.com/felixgeelhaar/todo/internal/errors"
)

// Recurrence is the repeat rule of a task. The zero value means the task does not repeat.
type Recurrence string

// Recurrence rules
const (
	RepeatNone    Recurrence = ""
	RepeatDaily   Recurrence = "daily"
	RepeatWeekly  Recurrence = "weekly"
	RepeatMonthly Recurrence = "monthly"
)

// ParseRecurrence parses a recurrence rule case-insensitively.
// The empty string and "none" yield RepeatNone.
func ParseRecurrence(value string) (Recurrence, error) {
	r := Recurrence(strings.ToLower(strings.TrimSpace(value)))
	if r == "none" {
		return RepeatNone, nil
	}
	if err := r.Validate(); err != nil {
		return RepeatNone, err
	}
	return r, nil
}

// Validate rejects anything outside the closed set of rules.
func (r Recurrence) Validate() error {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return nil
	default:
		return errors.NewValidationError(errors.ErrCodeInvalidRepeat,
			"invalid repeat rule %q: must be daily, weekly, or monthly", string(r)).
			WithSuggestion("Use --repeat none to remove a repeat rule")
	}
}

func (r Recurrence) String() string {
	return string(r)
}

// IsSet reports whether the task repeats.
func (r Recurrence) IsSet() bool {
	return r != RepeatNone
}

// Next returns the occurrence following base. Monthly recurrence clamps to the
// last day of the target month.
func (r Recurrence) Next(base Date) Date {
	switch r {
	case RepeatDaily:
		return base.AddDays(1)
	case RepeatWeekly:
		return base.AddDays(7)
	case RepeatMonthly:
		return base.AddMonths(1)
	default:
		return base
	}
}

// UnmarshalJSON accepts null and capitalised names.
func (r *Recurrence) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*r = RepeatNone
		return nil
	}
	parsed, err := ParseRecurrence(*s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
