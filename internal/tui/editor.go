package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
)

// ClearValue clears an optional field when entered at a prompt.
const ClearValue = "-"

// Field is one editable task field.
type Field int

// Editable fields in prompt order.
const (
	FieldTitle Field = iota
	FieldBranch
	FieldContent
	FieldTags
	FieldDue
	FieldPriority
	FieldRepeat
)

var fieldNames = [...]string{"title", "branch", "content", "tags", "due", "priority", "repeat"}

func (f Field) String() string {
	return fieldNames[f]
}

type editorState int

const (
	statePrompt editorState = iota
	stateConfirm
	stateDone
)

// Editor walks the user through every field of a task:
//
//	prompt -> validate -> (re-prompt with the error | next field) -> confirm
//
// Empty input keeps a value and ClearValue clears it.
type Editor struct {
	p     Prompter
	w     io.Writer
	today domain.Date

	before domain.Task
	after  domain.Task

	state   editorState
	field   Field
	lastErr error
}

// NewEditor returns an editor for t. Diffs are written to w.
func NewEditor(p Prompter, w io.Writer, t domain.Task, today domain.Date) *Editor {
	return &Editor{
		p:      p,
		w:      w,
		today:  today,
		before: t.Clone(),
		after:  t.Clone(),
	}
}

// Run drives the editor to completion. It returns the changes and whether
// the user confirmed them. An unchanged task is never confirmed.
func (e *Editor) Run(ctx context.Context) (domain.Patch, bool, error) {
	confirmed := false
	for e.state != stateDone {
		switch e.state {
		case statePrompt:
			if err := e.prompt(ctx); err != nil {
				return domain.Patch{}, false, err
			}
		case stateConfirm:
			ok, err := e.confirm(ctx)
			if err != nil {
				return domain.Patch{}, false, err
			}
			confirmed = ok
			e.state = stateDone
		}
	}
	patch := domain.Diff(e.before, e.after)
	return patch, confirmed && !patch.IsEmpty(), nil
}

// Task returns the task with the edits applied so far.
func (e *Editor) Task() domain.Task {
	return e.after.Clone()
}

func (e *Editor) prompt(ctx context.Context) error {
	title := "Edit " + e.field.String()
	if e.lastErr != nil {
		title = fmt.Sprintf("%s (%s)", title, errorMessage(e.lastErr))
	}

	input, err := e.p.Input(ctx, title, e.hint())
	if err != nil {
		return err
	}

	if err := e.apply(strings.TrimSpace(input)); err != nil {
		e.lastErr = err
		return nil
	}
	e.lastErr = nil
	if e.field == FieldRepeat {
		e.state = stateConfirm
		return nil
	}
	e.field++
	return nil
}

func (e *Editor) hint() string {
	current := FieldValue(e.after, e.field)
	if current == "" {
		return "empty; enter keeps it"
	}
	return fmt.Sprintf("current: %s; enter keeps, %s clears", current, ClearValue)
}

// apply validates input for the current field and stores it.
func (e *Editor) apply(input string) error {
	if input == "" {
		return nil
	}
	reset := input == ClearValue
	t := &e.after

	switch e.field {
	case FieldTitle:
		if reset {
			return todoerrors.NewValidationError(todoerrors.ErrCodeMissingTitle, "title cannot be cleared")
		}
		t.Title = input
	case FieldBranch:
		if reset {
			t.Branch = domain.DefaultBranch
			return nil
		}
		if err := domain.ValidateBranch(input); err != nil {
			return err
		}
		t.Branch = input
	case FieldContent:
		if reset {
			input = ""
		}
		t.Content = input
	case FieldTags:
		if reset {
			t.Tags = []string{}
			return nil
		}
		t.Tags = domain.NormalizeTags(domain.SplitTags(input))
	case FieldDue:
		if reset {
			t.Due = domain.Date{}
			return nil
		}
		due, err := domain.ParseDue(input, e.today)
		if err != nil {
			return err
		}
		t.Due = due
	case FieldPriority:
		if reset {
			t.Priority = domain.PriorityNone
			return nil
		}
		p, err := domain.ParsePriority(input)
		if err != nil {
			return err
		}
		t.Priority = p
	case FieldRepeat:
		if reset {
			t.Repeat = domain.RepeatNone
			return nil
		}
		r, err := domain.ParseRecurrence(input)
		if err != nil {
			return err
		}
		t.Repeat = r
	}
	return nil
}

func (e *Editor) confirm(ctx context.Context) (bool, error) {
	if domain.Diff(e.before, e.after).IsEmpty() {
		fmt.Fprintln(e.w, "No changes.")
		return false, nil
	}
	fmt.Fprint(e.w, DiffTasks(e.before, e.after))
	return e.p.Confirm(ctx, "Apply these changes?", true)
}

func errorMessage(err error) string {
	var te *todoerrors.TodoError
	if errors.As(err, &te) {
		return te.Message
	}
	return err.Error()
}

// FieldValue returns the text form of a field.
func FieldValue(t domain.Task, f Field) string {
	switch f {
	case FieldTitle:
		return t.Title
	case FieldBranch:
		return t.Branch
	case FieldContent:
		return t.Content
	case FieldTags:
		return strings.Join(t.Tags, ",")
	case FieldDue:
		if t.Due.IsZero() {
			return ""
		}
		return t.Due.String()
	case FieldPriority:
		return string(t.Priority)
	case FieldRepeat:
		return string(t.Repeat)
	default:
		return ""
	}
}

func describe(t domain.Task) string {
	var b strings.Builder
	for f := FieldTitle; f <= FieldRepeat; f++ {
		fmt.Fprintf(&b, "%s: %s\n", f, FieldValue(t, f))
	}
	return b.String()
}

// DiffTasks returns a line diff of the editable fields of two tasks.
// Unchanged lines are indented, removed lines start with "-", added with "+".
func DiffTasks(before, after domain.Task) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(describe(before), describe(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix + line)
		}
	}
	return out.String()
}
