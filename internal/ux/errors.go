package ux

import (
	"errors"
	"io/fs"
	"strings"

	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
)

// HintedError is an error shown together with a next step for the user.
type HintedError struct {
	Err  error
	Hint string
}

func (e *HintedError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\nHint: " + e.Hint
}

func (e *HintedError) Unwrap() error {
	return e.Err
}

// WithHint attaches hint to err. A nil err stays nil.
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return &HintedError{Err: err, Hint: hint}
}

type hintRule struct {
	match func(err error, msg string) bool
	hint  string
}

func contains(subs ...string) func(error, string) bool {
	return func(_ error, msg string) bool {
		for _, s := range subs {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
}

// First matching rule wins.
var hintRules = []hintRule{
	{
		match: func(err error, _ string) bool { return errors.Is(err, fs.ErrPermission) },
		hint:  "Check permissions on the data directory, or point --home / TODO_HOME somewhere writable",
	},
	{match: contains("no space left on device"), hint: "Free some disk space and try again"},
	{match: contains("read-only file system"), hint: "Use --home or TODO_HOME to keep tasks on a writable disk"},
	{
		match: contains("unknown command"),
		hint:  "Run 'todo --help' to see available commands, or 'todo saved list' for saved commands",
	},
	{match: contains("unknown flag", "unknown shorthand flag"), hint: "Run 'todo <command> --help' to see its flags"},
	{match: contains("arg(s)"), hint: "Check the number of arguments with 'todo <command> --help'"},
}

// EnhanceError attaches a hint to well-known failures from cobra and the
// file system. Coded errors with suggestions, hinted errors and anything
// unrecognized are returned as is.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var te *todoerrors.TodoError
	if errors.As(err, &te) && len(te.Suggestions) > 0 {
		return err
	}
	var he *HintedError
	if errors.As(err, &he) {
		return err
	}

	msg := err.Error()
	for _, r := range hintRules {
		if r.match(err, msg) {
			return WithHint(err, r.hint)
		}
	}
	return err
}
