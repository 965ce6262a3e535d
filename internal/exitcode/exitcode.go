package exitcode

import (
	"errors"
	"os"
	"strings"

	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage or invalid input values
	UsageError = 2

	// NotFound indicates an unknown task, branch or saved command
	NotFound = 3

	// CorruptData indicates a persisted file could not be decoded
	CorruptData = 4

	// BranchNotEmpty indicates a branch delete without --force
	BranchNotEmpty = 5

	// IOError indicates a filesystem failure
	IOError = 6

	// PartialFailure indicates a bulk operation where some items failed
	PartialFailure = 7

	// Interrupted indicates the user cancelled the operation
	Interrupted = 130
)

// PartialError is implemented by results that committed some items and failed others.
type PartialError interface {
	error
	Partial() bool
}

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var partial PartialError
	if errors.As(err, &partial) && partial.Partial() {
		return PartialFailure
	}

	switch {
	case errors.Is(err, todoerrors.NotFound):
		return NotFound
	case errors.Is(err, todoerrors.CorruptData):
		return CorruptData
	case errors.Is(err, todoerrors.Validation):
		return UsageError
	case errors.Is(err, todoerrors.NonEmptyBranch):
		return BranchNotEmpty
	case errors.Is(err, todoerrors.IO):
		return IOError
	}

	errMsg := strings.ToLower(err.Error())

	// Usage errors reported by cobra
	if strings.Contains(errMsg, "invalid argument") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown shorthand flag") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts ") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments or values)"
	case NotFound:
		return "Task, branch or saved command not found"
	case CorruptData:
		return "Persisted data could not be read"
	case BranchNotEmpty:
		return "Branch is not empty"
	case IOError:
		return "Filesystem error"
	case PartialFailure:
		return "Some items failed"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
