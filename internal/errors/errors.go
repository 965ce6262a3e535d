package errors

import (
	"fmt"
	"strings"
)

// Kind groups error codes into the failure categories callers branch on.
// A Kind is itself an error so it can be used as an errors.Is target:
//
//	if errors.Is(err, todoerrors.NotFound) { ... }
type Kind string

func (k Kind) Error() string {
	return string(k)
}

// Failure kinds
const (
	NotFound       Kind = "not found"
	CorruptData    Kind = "corrupt data"
	Validation     Kind = "validation failed"
	NonEmptyBranch Kind = "branch not empty"
	IO             Kind = "i/o failure"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Lookup errors (NOTFOUND-001 to NOTFOUND-099)
	ErrCodeTaskNotFound   ErrorCode = "NOTFOUND-001"
	ErrCodeBranchNotFound ErrorCode = "NOTFOUND-002"
	ErrCodeSavedNotFound  ErrorCode = "NOTFOUND-003"

	// Persisted data errors (DATA-001 to DATA-099)
	ErrCodeTasksCorrupt ErrorCode = "DATA-001"
	ErrCodeStateCorrupt ErrorCode = "DATA-002"

	// Validation errors (VALID-001 to VALID-099)
	ErrCodeInvalidDue       ErrorCode = "VALID-001"
	ErrCodeInvalidRepeat    ErrorCode = "VALID-002"
	ErrCodeInvalidPriority  ErrorCode = "VALID-003"
	ErrCodeDuplicateID      ErrorCode = "VALID-004"
	ErrCodeMissingTitle     ErrorCode = "VALID-005"
	ErrCodeInvalidBranch    ErrorCode = "VALID-006"
	ErrCodeInvalidConfig    ErrorCode = "VALID-007"
	ErrCodeInvalidPayload   ErrorCode = "VALID-008"
	ErrCodeInvalidArchive   ErrorCode = "VALID-009"
	ErrCodeInvalidSortKey   ErrorCode = "VALID-010"
	ErrCodeInvalidIDScope   ErrorCode = "VALID-011"
	ErrCodeInvalidReference ErrorCode = "VALID-012"

	// Branch errors (BRANCH-001 to BRANCH-099)
	ErrCodeBranchNotEmpty ErrorCode = "BRANCH-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-001"
	ErrCodeFileWriteFailed ErrorCode = "IO-002"
)

// Kind returns the failure category of the code.
func (c ErrorCode) Kind() Kind {
	prefix, _, _ := strings.Cut(string(c), "-")
	switch prefix {
	case "NOTFOUND":
		return NotFound
	case "DATA":
		return CorruptData
	case "VALID":
		return Validation
	case "BRANCH":
		return NonEmptyBranch
	case "IO":
		return IO
	default:
		return ""
	}
}

// TodoError represents an error with code, suggestions and an optional cause
type TodoError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *TodoError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *TodoError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the Kind of this error.
func (e *TodoError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Code.Kind() == k
}

// Kind returns the failure category of the error.
func (e *TodoError) Kind() Kind {
	return e.Code.Kind()
}

// New creates a new TodoError
func New(code ErrorCode, message string) *TodoError {
	return &TodoError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new TodoError with a formatted message
func Newf(code ErrorCode, format string, args ...any) *TodoError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new TodoError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *TodoError {
	return &TodoError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *TodoError) WithSuggestion(suggestion string) *TodoError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *TodoError) WithSuggestions(suggestions ...string) *TodoError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors for frequently used errors

// NewTaskNotFoundError creates an unknown task reference error
func NewTaskNotFoundError(ref string) *TodoError {
	return New(ErrCodeTaskNotFound, fmt.Sprintf("no task with id %s", ref)).
		WithSuggestion("Run 'todo list --all' to see task ids in the current branch").
		WithSuggestion("Pass --branch when ids are scoped per branch")
}

// NewBranchNotFoundError creates an empty or unknown branch error
func NewBranchNotFoundError(branch string) *TodoError {
	return New(ErrCodeBranchNotFound, fmt.Sprintf("no tasks found in branch %q", branch)).
		WithSuggestion("Run 'todo branch --list' to see known branches")
}

// NewBranchNotEmptyError creates the error for deleting a branch that still has tasks
func NewBranchNotEmptyError(branch string, count int) *TodoError {
	return New(ErrCodeBranchNotEmpty, fmt.Sprintf("branch %q has %d tasks", branch, count)).
		WithSuggestion("Use --force to delete the branch together with its tasks").
		WithSuggestion(fmt.Sprintf("Move the tasks first: todo branch-move %s <target>", branch))
}

// NewCorruptFileError creates an error for a persisted file that cannot be decoded
func NewCorruptFileError(code ErrorCode, path string, cause error) *TodoError {
	return Wrap(code, fmt.Sprintf("failed to parse %s", path), cause).
		WithSuggestion("Fix or restore the file; it has not been modified").
		WithSuggestion("Check the JSON syntax, e.g. with 'jq . " + path + "'")
}

// NewValidationError creates a validation error with the given code
func NewValidationError(code ErrorCode, format string, args ...any) *TodoError {
	return Newf(code, format, args...)
}

// NewFileWriteError creates a persistence error
func NewFileWriteError(path string, cause error) *TodoError {
	return Wrap(ErrCodeFileWriteFailed, fmt.Sprintf("failed to write %s", path), cause).
		WithSuggestion("Check permissions and free space in the data directory")
}

// NewFileReadError creates a read error
func NewFileReadError(path string, cause error) *TodoError {
	return Wrap(ErrCodeFileReadFailed, fmt.Sprintf("failed to read %s", path), cause).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}
