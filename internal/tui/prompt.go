// Package tui holds the interactive parts of the CLI: prompts and the
// field-by-field task editor.
package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("aborted by user")

// Prompter asks the user for values.
type Prompter interface {
	// Input asks for a line of text. hint describes the current value.
	Input(ctx context.Context, title, hint string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, title string, def bool) (bool, error)
}

// NewPrompter returns huh forms when in is a terminal and a line reader
// otherwise.
func NewPrompter(in io.Reader, out io.Writer) Prompter {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return &HuhPrompter{In: in, Out: out}
	}
	return NewLinePrompter(in, out)
}

// HuhPrompter shows each prompt as a huh form. Esc and ctrl+c abort.
type HuhPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (h *HuhPrompter) keyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "abort"),
	)
	return km
}

func (h *HuhPrompter) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithKeyMap(h.keyMap()).
		WithProgramOptions(tea.WithInput(h.In), tea.WithOutput(h.Out))

	err := form.RunWithContext(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, huh.ErrUserAborted), errors.Is(err, context.Canceled):
		return ErrAborted
	default:
		return fmt.Errorf("prompt failed: %w", err)
	}
}

// Input implements Prompter.
func (h *HuhPrompter) Input(ctx context.Context, title, hint string) (string, error) {
	var value string
	input := huh.NewInput().
		Title(title).
		Description(hint).
		Value(&value)
	if err := h.run(ctx, input); err != nil {
		return "", err
	}
	return value, nil
}

// Confirm implements Prompter.
func (h *HuhPrompter) Confirm(ctx context.Context, title string, def bool) (bool, error) {
	confirmed := def
	confirm := huh.NewConfirm().
		Title(title).
		Value(&confirmed)
	if err := h.run(ctx, confirm); err != nil {
		return false, err
	}
	return confirmed, nil
}

// LinePrompter reads answers line by line, for pipes and scripts.
type LinePrompter struct {
	r *bufio.Reader
	w io.Writer
}

// NewLinePrompter returns a prompter reading from in and writing prompts to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{r: bufio.NewReader(in), w: out}
}

func (l *LinePrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrAborted
	}
	line, err := l.r.ReadString('\n')
	if errors.Is(err, io.EOF) && line == "" {
		return "", ErrAborted
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Input implements Prompter.
func (l *LinePrompter) Input(ctx context.Context, title, hint string) (string, error) {
	if hint != "" {
		fmt.Fprintf(l.w, "%s (%s): ", title, hint)
	} else {
		fmt.Fprintf(l.w, "%s: ", title)
	}
	return l.readLine(ctx)
}

// Confirm implements Prompter.
func (l *LinePrompter) Confirm(ctx context.Context, title string, def bool) (bool, error) {
	choices := "y/N"
	if def {
		choices = "Y/n"
	}
	fmt.Fprintf(l.w, "%s [%s]: ", title, choices)
	line, err := l.readLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return def, nil
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// InCI reports whether a common CI environment variable is set.
func InCI() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return true
		}
	}
	return false
}
