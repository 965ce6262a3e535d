package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/felixgeelhaar/todo/internal/errors"
)

// DateLayout is the persisted and displayed form of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar day without time or zone. The zero value means "no date".
type Date struct {
	t time.Time
}

// NewDate returns the given calendar day. Out-of-range values normalize the
// way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, errors.NewValidationError(errors.ErrCodeInvalidDue,
			"invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// ParseDue parses user input for a due date: today, tomorrow, YYYY-MM-DD or
// DDMMYYYY. Keywords are resolved against today.
func ParseDue(s string, today Date) (Date, error) {
	in := strings.TrimSpace(s)
	switch strings.ToLower(in) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	}

	if t, err := time.Parse(DateLayout, in); err == nil {
		return DateOf(t), nil
	}
	if len(in) == 8 && isDigits(in) {
		if t, err := time.Parse("02012006", in); err == nil {
			return DateOf(t), nil
		}
	}

	return Date{}, errors.NewValidationError(errors.ErrCodeInvalidDue,
		"invalid due date %q", s).
		WithSuggestion("Use today, tomorrow, YYYY-MM-DD or DDMMYYYY (e.g. 18022026)")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// String formats the date as YYYY-MM-DD, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return d.t
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddMonths adds n calendar months, clamping the day to the end of the
// target month (Jan 31 + 1 month = Feb 28 or 29).
func (d Date) AddMonths(n int) Date {
	y, m, day := d.t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := daysIn(first.Year(), first.Month())
	if day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Compare returns -1, 0 or +1. Unset dates compare equal to each other.
func (d Date) Compare(other Date) int {
	return d.t.Compare(other.t)
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports whether both dates name the same day.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// DaysUntil returns the number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// MarshalText implements encoding.TextMarshaler; yaml.v3 uses it as well.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalJSON treats null and "" as unset.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*d = Date{}
		return nil
	}
	return d.UnmarshalText([]byte(*s))
}
