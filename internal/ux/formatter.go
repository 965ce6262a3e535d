// Package ux holds machine-readable output and user-facing error hints.
package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
)

// Output formats for structured command output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formatter writes a value in one output format.
type Formatter interface {
	// Format writes the given data to the output writer
	Format(data any) error
}

// TextWriter is implemented by values with their own human-readable form.
type TextWriter interface {
	WriteText(w io.Writer) error
}

// NewFormatter creates a formatter for text, json or yaml output.
func NewFormatter(format string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return &JSONFormatter{w: w}, nil
	case FormatYAML, "yml":
		return &YAMLFormatter{w: w}, nil
	case FormatText, "":
		return &TextFormatter{w: w}, nil
	default:
		return nil, todoerrors.NewValidationError(todoerrors.ErrCodeInvalidPayload,
			"unknown output format %q (supported: text, json, yaml)", format)
	}
}

// IsStructured reports whether format is json or yaml.
func IsStructured(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON, FormatYAML, "yml":
		return true
	}
	return false
}

// JSONFormatter formats output as indented JSON
type JSONFormatter struct {
	w io.Writer
}

// Format writes data as JSON
func (f *JSONFormatter) Format(data any) error {
	encoder := json.NewEncoder(f.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	w io.Writer
}

// Format writes data as YAML
func (f *YAMLFormatter) Format(data any) error {
	encoder := yaml.NewEncoder(f.w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(data)
}

// TextFormatter formats output as human-readable text
type TextFormatter struct {
	w io.Writer
}

// Format writes data as text. Data must be a TextWriter, a fmt.Stringer or a
// string.
func (f *TextFormatter) Format(data any) error {
	switch v := data.(type) {
	case TextWriter:
		return v.WriteText(f.w)
	case fmt.Stringer:
		_, err := fmt.Fprintln(f.w, v.String())
		return err
	case string:
		_, err := fmt.Fprintln(f.w, v)
		return err
	default:
		return fmt.Errorf("text output is not supported for %T", data)
	}
}

// Compile-time verification that formatters implement Formatter
var _ Formatter = (*JSONFormatter)(nil)
var _ Formatter = (*YAMLFormatter)(nil)
var _ Formatter = (*TextFormatter)(nil)
