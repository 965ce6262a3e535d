package ux

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
)

type testData struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

type textData struct{ lines []string }

func (d textData) WriteText(w io.Writer) error {
	_, err := fmt.Fprintln(w, strings.Join(d.lines, "\n"))
	return err
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"json format", "json", false},
		{"yaml format", "yaml", false},
		{"yml alias", "yml", false},
		{"text format", "text", false},
		{"empty format defaults to text", "", false},
		{"unknown format", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFormatter(tt.format, &bytes.Buffer{})
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, todoerrors.Validation) {
				t.Errorf("unknown format should be a validation error, got %v", err)
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &buf)
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(testData{Name: "test", Value: 42}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"name": "test"`) {
		t.Errorf("JSON output missing name field: %s", output)
	}
	if !strings.Contains(output, `"value": 42`) {
		t.Errorf("JSON output missing value field: %s", output)
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("yaml", &buf)
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(testData{Name: "test", Value: 42}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if got, want := buf.String(), "name: test\nvalue: 42\n"; got != want {
		t.Errorf("YAML output = %q, want %q", got, want)
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		data    any
		want    string
		wantErr bool
	}{
		{"string", "hello", "hello\n", false},
		{"text writer", textData{lines: []string{"a", "b"}}, "a\nb\n", false},
		{"unsupported", testData{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatter, _ := NewFormatter("text", &buf)
			err := formatter.Format(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Format() error = %v, wantErr %v", err, tt.wantErr)
			}
			if buf.String() != tt.want {
				t.Errorf("Format() output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestIsStructured(t *testing.T) {
	for format, want := range map[string]bool{"json": true, "YAML": true, "text": false, "": false} {
		if got := IsStructured(format); got != want {
			t.Errorf("IsStructured(%q) = %v, want %v", format, got, want)
		}
	}
}
