// Package exchange converts task collections to and from external formats.
package exchange

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
)

// Format is a closed set of export formats.
type Format string

// Export formats
const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
)

// Formats lists every export format.
func Formats() []Format {
	return []Format{FormatJSON, FormatMarkdown, FormatText, FormatYAML, FormatCSV}
}

// ParseFormat parses a format name. "md", "txt" and "yml" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", todoerrors.NewValidationError(todoerrors.ErrCodeInvalidPayload,
			"unknown format %q", s).
			WithSuggestion("Use one of: json, markdown, text, yaml, csv")
	}
}

// Extension returns the conventional file extension of the format.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	case FormatYAML:
		return ".yaml"
	default:
		return "." + string(f)
	}
}

// Export writes tasks in format f.
func Export(w io.Writer, tasks []domain.Task, f Format) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, tasks)
	case FormatMarkdown:
		return writeMarkdown(w, tasks)
	case FormatText:
		return writeText(w, tasks)
	case FormatYAML:
		return writeYAML(w, tasks)
	case FormatCSV:
		return writeCSV(w, tasks)
	default:
		return fmt.Errorf("exchange: unsupported format %q", f)
	}
}

// Record is one decoded import item. Err is set when the item could not be
// decoded; Position is the 1-based array index (JSON) or line number (CSV).
type Record struct {
	Position int
	Task     domain.Task
	Err      error
}
