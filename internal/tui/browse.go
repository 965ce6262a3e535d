package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/todo/internal/domain"
)

// BrowseResult is the outcome of a browse session.
type BrowseResult struct {
	// Apply is false when the user quit without saving.
	Apply bool
	// Toggle lists the tasks whose done state should flip, in list order.
	Toggle []domain.Task
}

type browseKeys struct {
	Up     key.Binding
	Down   key.Binding
	Mark   key.Binding
	Detail key.Binding
	Back   key.Binding
	Apply  key.Binding
	Quit   key.Binding
}

func (k browseKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Mark, k.Detail, k.Apply, k.Quit}
}

func (k browseKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Back}}
}

func defaultBrowseKeys() browseKeys {
	return browseKeys{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Mark:   key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle done")),
		Detail: key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("enter", "details")),
		Back:   key.NewBinding(key.WithKeys("left", "h", "esc"), key.WithHelp("esc", "back")),
		Apply:  key.NewBinding(key.WithKeys("a", "w"), key.WithHelp("a", "apply")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

var (
	browseTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("63")).
				MarginLeft(2).
				MarginTop(1)

	browseHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("99")).
				MarginLeft(2)

	browseCursorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true).
				PaddingLeft(2)

	browseItemStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	browseKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	browseMarkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	browseHelpStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)
)

// browseModel lists tasks and collects done toggles until the user applies
// or quits.
type browseModel struct {
	title  string
	tasks  []domain.Task
	marked map[int]bool
	cursor int
	detail bool
	result *BrowseResult

	keys browseKeys
	help help.Model
}

func newBrowseModel(title string, tasks []domain.Task) browseModel {
	return browseModel{
		title:  title,
		tasks:  tasks,
		marked: map[int]bool{},
		keys:   defaultBrowseKeys(),
		help:   help.New(),
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.result = &BrowseResult{}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Apply):
			m.result = &BrowseResult{Apply: true, Toggle: m.toggled()}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.detail = false

		case m.detail:
			// Only back, apply and quit work in the detail view.

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Mark):
			if len(m.tasks) > 0 {
				m.marked[m.cursor] = !m.marked[m.cursor]
			}

		case key.Matches(msg, m.keys.Detail):
			m.detail = len(m.tasks) > 0
		}
	}
	return m, nil
}

func (m browseModel) toggled() []domain.Task {
	var out []domain.Task
	for i, t := range m.tasks {
		if m.marked[i] {
			out = append(out, t)
		}
	}
	return out
}

// doneAfter is the done state a task shows with the pending toggles applied.
func (m browseModel) doneAfter(i int) bool {
	return m.tasks[i].Done != m.marked[i]
}

func (m browseModel) View() string {
	if m.result != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(browseTitleStyle.Render(m.title))
	b.WriteString("\n\n")

	pending := len(m.toggled())
	header := fmt.Sprintf("%d tasks", len(m.tasks))
	if pending > 0 {
		header += fmt.Sprintf(", %d pending changes", pending)
	}
	b.WriteString(browseHeaderStyle.Render(header))
	b.WriteString("\n\n")

	switch {
	case len(m.tasks) == 0:
		b.WriteString(browseItemStyle.Render("No tasks."))
		b.WriteString("\n")
	case m.detail:
		m.renderDetail(&b)
	default:
		for i, t := range m.tasks {
			style, cursor := browseItemStyle, ""
			if i == m.cursor {
				style, cursor = browseCursorStyle, "→ "
			}
			box := "[ ]"
			if m.doneAfter(i) {
				box = "[x]"
			}
			if m.marked[i] {
				box = browseMarkStyle.Render(box)
			}
			b.WriteString(style.Render(fmt.Sprintf("%s%s #%d %s", cursor, box, t.ID, t.Title)))
			b.WriteString("\n")
		}
	}

	b.WriteString(browseHelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m browseModel) renderDetail(b *strings.Builder) {
	t := m.tasks[m.cursor]
	for _, f := range []Field{FieldTitle, FieldBranch, FieldContent, FieldTags, FieldDue, FieldPriority, FieldRepeat} {
		value := FieldValue(t, f)
		if value == "" {
			value = "-"
		}
		b.WriteString("  ")
		b.WriteString(browseKeyStyle.Render(fmt.Sprintf("%-10s", f.String()+":")))
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	status := "open"
	if m.doneAfter(m.cursor) {
		status = "done"
	}
	b.WriteString("  ")
	b.WriteString(browseKeyStyle.Render(fmt.Sprintf("%-10s", "status:")))
	b.WriteString(" " + status + "\n")
}

// RunBrowse shows tasks in a full-screen list on out, reading keys from in.
// Cancelling ctx ends the session without applying anything.
func RunBrowse(ctx context.Context, in io.Reader, out io.Writer, title string, tasks []domain.Task) (BrowseResult, error) {
	if len(tasks) == 0 {
		return BrowseResult{}, nil
	}

	program := tea.NewProgram(newBrowseModel(title, tasks),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	final, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		return BrowseResult{}, ErrAborted
	}
	if err != nil {
		return BrowseResult{}, fmt.Errorf("running task browser: %w", err)
	}

	m, ok := final.(browseModel)
	if !ok {
		return BrowseResult{}, fmt.Errorf("unexpected model type: %T", final)
	}
	if m.result == nil {
		return BrowseResult{}, nil
	}
	return *m.result, nil
}
