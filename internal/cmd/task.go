package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/todo/internal/domain"
	"github.com/felixgeelhaar/todo/internal/mutate"
	"github.com/felixgeelhaar/todo/internal/tui"
	"github.com/felixgeelhaar/todo/internal/ux"
)

var createCmd = &cobra.Command{
	Use:     "create <title>",
	Aliases: []string{"add", "c"},
	Short:   "Create a task",
	Long: `Create a task in the current branch (or --branch).

Examples:
  todo create "Go shopping" --content "milk, eggs" --tag errands
  todo add "Pay rent" --due 2026-03-01 --repeat monthly --priority high`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCreate,
}

var createOpts struct {
	due      string
	priority string
	content  string
	tags     []string
	repeat   string
	branch   string
}

var viewCmd = &cobra.Command{
	Use:     "view <id>",
	Aliases: []string{"v"},
	Short:   "Show every field of a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runView,
}

var viewOpts struct {
	branch string
	format string
}

var editCmd = &cobra.Command{
	Use:     "edit <id>",
	Aliases: []string{"e"},
	Short:   "Edit a task (interactive when no field flags are given)",
	Long: `Edit a task. Field flags set values; "-" clears a field.

Without field flags every field is prompted in turn: press enter to keep a
value, enter "-" to clear it. The changes are shown as a diff and applied
only after confirmation.

Examples:
  todo edit 3 --due tomorrow --tag urgent
  todo edit 3 --priority - --repeat -
  todo edit 3`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var editOpts struct {
	patchOptions
	in string
}

var doneCmd = &cobra.Command{
	Use:     "done <id>",
	Aliases: []string{"d"},
	Short:   "Mark a task as done",
	Long: `Mark a task as done. Completing a repeating task creates its next
occurrence with the following due date.`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

var undoneCmd = &cobra.Command{
	Use:     "undone <id>",
	Aliases: []string{"u"},
	Short:   "Mark a task as not done",
	Args:    cobra.ExactArgs(1),
	RunE:    runUndone,
}

var toggleCmd = &cobra.Command{
	Use:     "toggle <id>",
	Aliases: []string{"t"},
	Short:   "Toggle a task between done and not done",
	Args:    cobra.ExactArgs(1),
	RunE:    runToggle,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm", "x"},
	Short:   "Delete a task permanently",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete completed tasks",
	Long: `Delete the completed tasks of the current branch (or --branch, or every
branch with --all-branches). Archived tasks are kept.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

var clearOpts struct {
	branch      string
	allBranches bool
}

// refBranch is the --branch flag of the single-task commands. It selects the
// branch an id refers to when ids are scoped per branch.
var refBranch string

func init() {
	createCmd.Flags().StringVarP(&createOpts.due, "due", "d", "", "due date: today, tomorrow, YYYY-MM-DD or DDMMYYYY")
	createCmd.Flags().StringVarP(&createOpts.priority, "priority", "p", "", "priority: low, medium, high")
	createCmd.Flags().StringVarP(&createOpts.content, "content", "c", "", "task content")
	createCmd.Flags().StringSliceVar(&createOpts.tags, "tag", nil, "tag(s), repeatable or comma separated")
	createCmd.Flags().StringVar(&createOpts.repeat, "repeat", "", "repeat rule: daily, weekly, monthly")
	createCmd.Flags().StringVarP(&createOpts.branch, "branch", "b", "", "branch (default: current branch)")

	viewCmd.Flags().StringVarP(&viewOpts.branch, "branch", "b", "", "branch of the id (default: current branch)")
	viewCmd.Flags().StringVar(&viewOpts.format, "format", ux.FormatText, "output format: text, json, yaml")

	editOpts.register(editCmd, true)
	editCmd.Flags().StringVar(&editOpts.in, "in", "", "branch of the id (default: current branch)")

	for _, c := range []*cobra.Command{doneCmd, undoneCmd, toggleCmd, deleteCmd} {
		c.Flags().StringVarP(&refBranch, "branch", "b", "", "branch of the id (default: current branch)")
	}

	clearCmd.Flags().StringVarP(&clearOpts.branch, "branch", "b", "", "branch to clear (default: current branch)")
	clearCmd.Flags().BoolVar(&clearOpts.allBranches, "all-branches", false, "clear every branch")

	rootCmd.AddCommand(createCmd, viewCmd, editCmd, doneCmd, undoneCmd, toggleCmd, deleteCmd, clearCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	draft := domain.Draft{
		Title:   strings.Join(args, " "),
		Content: createOpts.content,
		Tags:    domain.NormalizeTags(createOpts.tags),
		Branch:  cc.Branch(createOpts.branch),
	}
	if createOpts.due != "" {
		if draft.Due, err = domain.ParseDue(createOpts.due, cc.Today()); err != nil {
			return err
		}
	}
	if draft.Priority, err = domain.ParsePriority(createOpts.priority); err != nil {
		return err
	}
	if draft.Repeat, err = domain.ParseRecurrence(createOpts.repeat); err != nil {
		return err
	}

	t, err := cc.Store.Create(draft)
	if err != nil {
		return err
	}
	if err := cc.Persist(); err != nil {
		return err
	}

	p := cc.Printer(!domain.SameBranch(t.Branch, cc.State.CurrentBranch))
	p.Success("Created task #%d", t.ID)
	p.Line("%s", p.TaskLine(t))
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ref, err := cc.Ref(args[0], viewOpts.branch)
	if err != nil {
		return err
	}
	t, err := cc.Store.Get(ref)
	if err != nil {
		return err
	}
	return output(cc, viewOpts.format, t, func() {
		cc.Printer(false).Detail(t)
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ref, err := cc.Ref(args[0], editOpts.in)
	if err != nil {
		return err
	}

	patch, err := editOpts.patch(cmd, cc.Today())
	if err != nil {
		return err
	}

	p := cc.Printer(true)
	if patch.IsEmpty() {
		current, err := cc.Store.Get(ref)
		if err != nil {
			return err
		}
		editor := tui.NewEditor(tui.NewPrompter(cc.In, cc.Out), cc.Out, current, cc.Today())
		edited, ok, err := editor.Run(cc.Context())
		if errors.Is(err, tui.ErrAborted) {
			p.Warn("Edit aborted, nothing changed")
			return nil
		}
		if err != nil {
			return err
		}
		if !ok {
			p.Line("Nothing changed.")
			return nil
		}
		patch = edited
	}

	t, err := cc.Mutate.Edit(ref, patch)
	if err != nil {
		return err
	}
	if err := cc.Persist(); err != nil {
		return err
	}
	p.Success("Updated task #%d", t.ID)
	p.Line("%s", p.TaskLine(t))
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ref, err := cc.Ref(args[0], refBranch)
	if err != nil {
		return err
	}
	c, err := cc.Mutate.Done(ref)
	if err != nil {
		return err
	}
	if err := cc.Persist(); err != nil {
		return err
	}
	printCompletion(cc, c)
	return nil
}

func printCompletion(cc *CommandContext, c mutate.Completion) {
	p := cc.Printer(false)
	switch {
	case !c.Changed && c.Task.Done:
		p.Warn("Task #%d is already done", c.Task.ID)
	case c.Task.Done:
		p.Success("Completed task #%d %s", c.Task.ID, c.Task.Title)
	default:
		p.Success("Reopened task #%d %s", c.Task.ID, c.Task.Title)
	}
	if c.Spawned != nil {
		p.Line("next: %s", p.TaskLine(*c.Spawned))
	}
}

func runUndone(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ref, err := cc.Ref(args[0], refBranch)
	if err != nil {
		return err
	}
	t, err := cc.Mutate.Undone(ref)
	if err != nil {
		return err
	}
	if err := cc.Persist(); err != nil {
		return err
	}
	cc.Printer(false).Success("Reopened task #%d %s", t.ID, t.Title)
	return nil
}

func runToggle(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ref, err := cc.Ref(args[0], refBranch)
	if err != nil {
		return err
	}
	c, err := cc.Mutate.Toggle(ref)
	if err != nil {
		return err
	}
	if err := cc.Persist(); err != nil {
		return err
	}
	printCompletion(cc, c)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ref, err := cc.Ref(args[0], refBranch)
	if err != nil {
		return err
	}
	t, err := cc.Mutate.Delete(ref)
	if err != nil {
		return err
	}
	if err := cc.Persist(); err != nil {
		return err
	}
	cc.Printer(false).Success("Deleted task #%d %s", t.ID, t.Title)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	removed, err := cc.Mutate.ClearDone(cc.Scope(clearOpts.branch, clearOpts.allBranches))
	if err != nil {
		return err
	}
	if err := cc.Persist(); err != nil {
		return err
	}
	cc.Printer(false).Success("Cleared %d completed tasks", len(removed))
	return nil
}
