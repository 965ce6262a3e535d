package exchange

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/felixgeelhaar/todo/internal/domain"
)

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func writeText(w io.Writer, tasks []domain.Task) error {
	for _, t := range tasks {
		parts := []string{fmt.Sprintf("%s #%d %s", checkbox(t.Done), t.ID, t.Title)}
		if !t.Due.IsZero() {
			parts = append(parts, "due: "+t.Due.String())
		}
		if t.Priority.IsSet() {
			parts = append(parts, "priority: "+t.Priority.String())
		}
		if t.Repeat.IsSet() {
			parts = append(parts, "repeat: "+t.Repeat.String())
		}
		if len(t.Tags) > 0 {
			parts = append(parts, "tags: "+strings.Join(t.Tags, ","))
		}
		parts = append(parts, "branch: "+t.Branch)
		if t.Archived {
			parts = append(parts, "archived")
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, " | ")); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdown(w io.Writer, tasks []domain.Task) error {
	var b strings.Builder
	b.WriteString("# Tasks\n")

	for _, branch := range branchSections(tasks) {
		fmt.Fprintf(&b, "\n## %s\n\n", branch.name)
		for _, t := range branch.tasks {
			fmt.Fprintf(&b, "- %s %s (#%d)\n", checkbox(t.Done), t.Title, t.ID)
			if !t.Due.IsZero() {
				fmt.Fprintf(&b, "  - due: %s\n", t.Due)
			}
			if t.Priority.IsSet() {
				fmt.Fprintf(&b, "  - priority: %s\n", t.Priority)
			}
			if t.Repeat.IsSet() {
				fmt.Fprintf(&b, "  - repeat: %s\n", t.Repeat)
			}
			if len(t.Tags) > 0 {
				fmt.Fprintf(&b, "  - tags: %s\n", strings.Join(t.Tags, ", "))
			}
			if t.UID != "" {
				fmt.Fprintf(&b, "  - uid: %s\n", t.UID)
			}
			if t.Archived {
				b.WriteString("  - archived\n")
			}
			if t.Content != "" {
				b.WriteString("  - content:\n")
				for _, line := range strings.Split(t.Content, "\n") {
					fmt.Fprintf(&b, "    %s\n", line)
				}
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type section struct {
	name  string
	tasks []domain.Task
}

// branchSections groups tasks by branch, sections sorted by name.
func branchSections(tasks []domain.Task) []section {
	index := map[string]int{}
	var out []section
	for _, t := range tasks {
		key := domain.BranchKey(t.Branch)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, section{name: t.Branch})
		}
		out[i].tasks = append(out[i].tasks, t)
	}
	slices.SortStableFunc(out, func(a, b section) int {
		return strings.Compare(domain.BranchKey(a.name), domain.BranchKey(b.name))
	})
	return out
}
