package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeTaskNotFound, "test error message")

	if err.Code != ErrCodeTaskNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeTaskNotFound, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeFileReadFailed, "failed to read file", cause)

	if err.Code != ErrCodeFileReadFailed {
		t.Errorf("expected code %s, got %s", ErrCodeFileReadFailed, err.Code)
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *TodoError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodeInvalidDue, "invalid due date"),
			wantCode: "VALID-001",
			wantMsg:  "invalid due date",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeFileWriteFailed, "write failed", fmt.Errorf("permission denied")),
			wantCode: "IO-002",
			wantMsg:  "permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()

			if !strings.Contains(errStr, tt.wantCode) {
				t.Errorf("error string should contain code %s, got: %s", tt.wantCode, errStr)
			}

			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error string should contain message '%s', got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestWithSuggestion(t *testing.T) {
	err := New(ErrCodeBranchNotEmpty, "branch has tasks").
		WithSuggestion("first").
		WithSuggestions("second", "third")

	if len(err.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(err.Suggestions))
	}
	if !strings.Contains(err.Error(), "Suggestions:") {
		t.Errorf("error string should list suggestions, got: %s", err.Error())
	}
}

func TestCodeKind(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want Kind
	}{
		{ErrCodeTaskNotFound, NotFound},
		{ErrCodeSavedNotFound, NotFound},
		{ErrCodeTasksCorrupt, CorruptData},
		{ErrCodeStateCorrupt, CorruptData},
		{ErrCodeInvalidRepeat, Validation},
		{ErrCodeInvalidPayload, Validation},
		{ErrCodeBranchNotEmpty, NonEmptyBranch},
		{ErrCodeFileWriteFailed, IO},
		{ErrorCode("UNKNOWN"), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Kind(); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	base := NewTaskNotFoundError("7")
	wrapped := fmt.Errorf("done: %w", base)

	if !errors.Is(wrapped, NotFound) {
		t.Error("wrapped not-found error should match NotFound")
	}
	if errors.Is(wrapped, Validation) {
		t.Error("not-found error should not match Validation")
	}

	var te *TodoError
	if !errors.As(wrapped, &te) {
		t.Fatal("errors.As should find the TodoError")
	}
	if te.Kind() != NotFound {
		t.Errorf("Kind() = %q, want %q", te.Kind(), NotFound)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *TodoError
		kind Kind
		msg  string
	}{
		{"branch not found", NewBranchNotFoundError("work"), NotFound, `"work"`},
		{"branch not empty", NewBranchNotEmptyError("work", 3), NonEmptyBranch, "3 tasks"},
		{"corrupt", NewCorruptFileError(ErrCodeTasksCorrupt, "/tmp/tasks.json", fmt.Errorf("bad")), CorruptData, "tasks.json"},
		{"write", NewFileWriteError("/tmp/x", fmt.Errorf("disk full")), IO, "disk full"},
		{"read", NewFileReadError("/tmp/x", fmt.Errorf("denied")), IO, "denied"},
		{"validation", NewValidationError(ErrCodeMissingTitle, "row %d: title is required", 3), Validation, "row 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("expected kind %q for %v", tt.kind, tt.err)
			}
			if !strings.Contains(tt.err.Error(), tt.msg) {
				t.Errorf("error %q should contain %q", tt.err.Error(), tt.msg)
			}
		})
	}
}
