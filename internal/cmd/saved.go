package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
	"github.com/felixgeelhaar/todo/internal/tui"
)

var savedCmd = &cobra.Command{
	Use:     "saved",
	Aliases: []string{"alias", "aliases", "cmd"},
	Short:   "Manage saved commands",
	Long: `A saved command stores command arguments under a name. Running
'todo <name> [more args]' runs the stored arguments followed by the extra
ones. Built-in command names cannot be used.

Examples:
  todo saved save today -- list --group-by due-day
  todo today
  todo saved list
  todo saved remove today`,
	Args: cobra.NoArgs,
}

var savedSaveCmd = &cobra.Command{
	Use:   "save <name> -- <command> [args...]",
	Short: "Save a command under a name",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSavedSave,
}

var savedForce bool

var savedListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved commands",
	Args:    cobra.NoArgs,
	RunE:    runSavedList,
}

var savedShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved command",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedShow,
}

var savedRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a saved command",
	Args:    cobra.ExactArgs(1),
	RunE:    runSavedRemove,
}

var savedRunCmd = &cobra.Command{
	Use:   "run <name> [-- args...]",
	Short: "Run a saved command",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSavedRun,
}

func init() {
	savedSaveCmd.Flags().BoolVarP(&savedForce, "force", "f", false, "overwrite an existing saved command without asking")

	savedCmd.AddCommand(savedSaveCmd, savedListCmd, savedShowCmd, savedRemoveCmd, savedRunCmd)
	rootCmd.AddCommand(savedCmd)
}

func runSavedSave(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	name, stored := args[0], args[1:]

	if existing, prev, ok := cc.State.SavedCommand(name); ok && !savedForce {
		p := tui.NewPrompter(cc.In, cc.Out)
		title := fmt.Sprintf("Replace saved command %q (todo %s)?", existing, shellJoin(prev))
		replace, err := p.Confirm(cc.Context(), title, false)
		if err != nil && !errors.Is(err, tui.ErrAborted) {
			return err
		}
		if !replace {
			cc.Printer(false).Warn("Kept saved command %q", existing)
			return nil
		}
	}

	if err := cc.State.SaveCommand(name, stored, isReserved); err != nil {
		return err
	}
	if err := cc.SaveState(); err != nil {
		return err
	}
	cc.Printer(false).Success("Saved %q: todo %s", name, shellJoin(stored))
	return nil
}

func runSavedList(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	names := cc.State.SavedNames()
	p := cc.Printer(false)
	if len(names) == 0 {
		p.Line("No saved commands. Create one with 'todo saved save <name> -- <command>'.")
		return nil
	}
	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}
	for _, name := range names {
		_, stored, _ := cc.State.SavedCommand(name)
		p.Line("%-*s  todo %s", width, name, shellJoin(stored))
	}
	return nil
}

func runSavedShow(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	_, stored, err := cc.State.LookupCommand(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cc.Out, "todo %s\n", shellJoin(stored))
	return nil
}

func runSavedRemove(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	name, err := cc.State.RemoveCommand(args[0])
	if err != nil {
		return err
	}
	if err := cc.SaveState(); err != nil {
		return err
	}
	cc.Printer(false).Success("Removed saved command %q", name)
	return nil
}

func runSavedRun(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	_, stored, err := cc.State.LookupCommand(args[0])
	if err != nil {
		return err
	}
	argv := append(stored, args[1:]...)
	cc.Log.Debug("running saved command", "name", args[0], "args", strings.Join(argv, " "))

	target, rest, err := rootCmd.Find(argv)
	if err != nil {
		return err
	}
	if target == rootCmd || target == savedCmd || target.Parent() == savedCmd {
		return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig,
			"saved command %q does not name a runnable command", args[0])
	}
	if target.RunE == nil {
		return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig,
			"saved command %q runs %q, which needs a subcommand", args[0], target.Name())
	}

	if err := target.ParseFlags(rest); err != nil {
		return err
	}
	positional := target.Flags().Args()
	if err := target.ValidateArgs(positional); err != nil {
		return err
	}
	target.SetContext(cmd.Context())
	return target.RunE(target, positional)
}

// shellJoin renders args the way they would be typed.
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'\\$") {
			a = strconv.Quote(a)
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}
