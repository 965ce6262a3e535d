package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/todo/internal/domain"
	"github.com/felixgeelhaar/todo/internal/mutate"
	"github.com/felixgeelhaar/todo/internal/query"
)

// Options configure a Printer.
type Options struct {
	Color bool
	// Today decides overdue and due-today highlighting.
	Today domain.Date
	// ShowBranch appends the branch to each task line.
	ShowBranch bool
}

// Printer writes human-readable output.
type Printer struct {
	w    io.Writer
	s    Styles
	opts Options
}

// New returns a printer writing to w.
func New(w io.Writer, opts Options) *Printer {
	return &Printer{w: w, s: NewStyles(newRenderer(w, opts.Color)), opts: opts}
}

// Styles exposes the printer styles.
func (p *Printer) Styles() Styles {
	return p.s
}

func (p *Printer) println(s string) {
	fmt.Fprintln(p.w, s)
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...any) {
	p.println(p.s.Success.Render("✓") + " " + fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	p.println(p.s.Warning.Render("!") + " " + fmt.Sprintf(format, args...))
}

// Line prints text as is.
func (p *Printer) Line(format string, args ...any) {
	p.println(fmt.Sprintf(format, args...))
}

// TaskLine formats a task on one line:
//
//	[ ] #3 Call bank  due 2026-01-03 (overdue)  high  weekly  +money +urgent
func (p *Printer) TaskLine(t domain.Task) string {
	box := "[ ]"
	if t.Done {
		box = "[x]"
	}
	title := t.Title
	if t.Done {
		title = p.s.Done.Render(title)
	}

	parts := []string{box, p.s.ID.Render(fmt.Sprintf("#%d", t.ID)), title}
	if due := p.due(t); due != "" {
		parts = append(parts, due)
	}
	if t.Priority.IsSet() {
		parts = append(parts, p.priority(t.Priority))
	}
	if t.Repeat.IsSet() {
		parts = append(parts, p.s.Muted.Render("↻ "+string(t.Repeat)))
	}
	for _, tag := range t.Tags {
		parts = append(parts, p.s.Tag.Render("+"+tag))
	}
	if p.opts.ShowBranch {
		parts = append(parts, p.s.Branch.Render("@"+t.Branch))
	}
	if t.Archived {
		parts = append(parts, p.s.Archived.Render("(archived)"))
	}
	return strings.Join(parts, " ")
}

func (p *Printer) due(t domain.Task) string {
	if t.Due.IsZero() {
		return ""
	}
	label := "due " + t.Due.String()
	today := p.opts.Today
	switch {
	case today.IsZero() || t.Done:
		return p.s.Muted.Render(label)
	case t.IsOverdue(today):
		return p.s.Overdue.Render(label + " (overdue)")
	case t.IsDueToday(today):
		return p.s.Today.Render(label + " (today)")
	default:
		return p.s.Muted.Render(label)
	}
}

func (p *Printer) priority(pr domain.Priority) string {
	switch pr {
	case domain.PriorityHigh:
		return p.s.High.Render("!" + string(pr))
	case domain.PriorityMedium:
		return p.s.Medium.Render("!" + string(pr))
	default:
		return p.s.Low.Render("!" + string(pr))
	}
}

// Tasks prints tasks one per line, or emptyMsg when there are none.
func (p *Printer) Tasks(tasks []domain.Task, emptyMsg string) {
	if len(tasks) == 0 {
		p.println(p.s.Muted.Render(emptyMsg))
		return
	}
	for _, t := range tasks {
		p.println(p.TaskLine(t))
	}
}

// Groups prints grouped list output. Unlabelled groups print without a header.
func (p *Printer) Groups(groups []query.Group, emptyMsg string) {
	total := 0
	for _, g := range groups {
		total += len(g.Tasks)
	}
	if total == 0 {
		p.println(p.s.Muted.Render(emptyMsg))
		return
	}

	first := true
	for _, g := range groups {
		if len(g.Tasks) == 0 {
			continue
		}
		if g.Label != "" {
			if !first {
				p.println("")
			}
			p.println(p.s.Header.Render(fmt.Sprintf("%s (%d)", g.Label, len(g.Tasks))))
		}
		for _, t := range g.Tasks {
			p.println(p.TaskLine(t))
		}
		first = false
	}
}

// Detail prints every field of a task.
func (p *Printer) Detail(t domain.Task) {
	p.println(p.s.Title.Render(fmt.Sprintf("#%d %s", t.ID, t.Title)))

	field := func(key, value string) {
		if value == "" {
			return
		}
		p.println(fmt.Sprintf("  %s %s", p.s.Key.Render(fmt.Sprintf("%-9s", key+":")), value))
	}

	status := "open"
	switch {
	case t.Archived:
		status = "done, archived"
	case t.Done:
		status = "done"
	}
	field("status", status)
	field("branch", t.Branch)
	if !t.Due.IsZero() {
		field("due", p.due(t))
	}
	if t.Priority.IsSet() {
		field("priority", p.priority(t.Priority))
	}
	field("repeat", string(t.Repeat))
	field("tags", strings.Join(t.Tags, ", "))
	field("uid", t.UID)
	if t.Parent != 0 {
		field("parent", fmt.Sprintf("#%d", t.Parent))
	}
	if !t.CreatedAt.IsZero() {
		field("created", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if t.Content != "" {
		p.println("")
		for _, line := range strings.Split(t.Content, "\n") {
			p.println("  " + line)
		}
	}
}

// Stats prints collection statistics.
func (p *Printer) Stats(st query.Stats) {
	p.println(p.s.Title.Render("Tasks"))
	rows := []struct {
		label string
		value int
	}{
		{"total", st.Total},
		{"open", st.Open},
		{"done", st.Done},
		{"archived", st.Archived},
		{"overdue", st.Overdue},
		{"due today", st.DueToday},
		{"repeating", st.Repeating},
	}
	for _, r := range rows {
		p.println(fmt.Sprintf("  %-10s %d", r.label+":", r.value))
	}

	if len(st.Branches) == 0 {
		return
	}
	p.println("")
	p.println(p.s.Title.Render("Branches"))
	for _, b := range st.Branches {
		p.println(fmt.Sprintf("  %s  %d total, %d open, %d done, %d archived",
			p.s.Branch.Render(b.Name), b.Total, b.Open, b.Done, b.Archived))
	}
}

// Reminders prints overdue, due-today and upcoming tasks.
func (p *Printer) Reminders(r query.Reminders) {
	if len(r.Overdue) == 0 && len(r.Due) == 0 {
		p.println(p.s.Muted.Render("Nothing due. Enjoy the day."))
		return
	}

	section := func(title string, style func(...string) string, tasks []domain.Task, note func(domain.Task) string) {
		if len(tasks) == 0 {
			return
		}
		p.println(style(fmt.Sprintf("%s (%d)", title, len(tasks))))
		for _, t := range tasks {
			line := "  " + p.TaskLine(t)
			if n := note(t); n != "" {
				line += " " + p.s.Muted.Render(n)
			}
			p.println(line)
		}
	}
	none := func(domain.Task) string { return "" }

	section("Overdue", p.s.Overdue.Render, r.Overdue, func(t domain.Task) string {
		return "(" + days(t.Due.DaysUntil(p.opts.Today)) + " late)"
	})
	section("Due today", p.s.Today.Render, r.Today, none)

	var upcoming []domain.Task
	for _, t := range r.Due {
		if !t.Due.Equal(p.opts.Today) {
			upcoming = append(upcoming, t)
		}
	}
	section("Due by "+r.Horizon.String(), p.s.Header.Render, upcoming, func(t domain.Task) string {
		return "(in " + days(p.opts.Today.DaysUntil(t.Due)) + ")"
	})
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// Branches prints known branches, marking the current one.
func (p *Printer) Branches(branches []query.BranchInfo) {
	if len(branches) == 0 {
		p.println(p.s.Muted.Render("No branches yet."))
		return
	}
	for _, b := range branches {
		marker := "  "
		name := b.Name
		if b.Current {
			marker = "* "
			name = p.s.Branch.Bold(true).Render(name)
		}
		p.println(fmt.Sprintf("%s%s %s", marker, name, p.s.Muted.Render(fmt.Sprintf("(%d open / %d total)", b.Open, b.Total))))
	}
}

// BulkReport summarises a bulk operation.
func (p *Printer) BulkReport(verb string, r mutate.BulkReport) {
	if r.Matched == 0 {
		p.println(p.s.Muted.Render("No matching tasks."))
		return
	}
	for _, t := range r.Affected {
		p.println(p.TaskLine(t))
	}
	for _, t := range r.Spawned {
		p.println(p.s.Muted.Render("next: ") + p.TaskLine(t))
	}
	p.Success("%s %d of %d matching tasks", verb, len(r.Affected), r.Matched)
	p.failures(r.Failures)
}

// ImportReport summarises an import.
func (p *Printer) ImportReport(r mutate.ImportReport) {
	p.Success("imported %d tasks (%d new, %d updated) from %d records",
		len(r.Created)+len(r.Updated), len(r.Created), len(r.Updated), r.Total)
	p.failures(r.Failures)
}

func (p *Printer) failures(failures []mutate.Failure) {
	for _, f := range failures {
		p.println(p.s.Error.Render("✗") + " " + f.String())
	}
}
