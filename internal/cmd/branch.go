package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/todo/internal/domain"
	"github.com/felixgeelhaar/todo/internal/mutate"
	"github.com/felixgeelhaar/todo/internal/ux"
)

var branchCmd = &cobra.Command{
	Use:     "branch [name]",
	Aliases: []string{"b", "switch"},
	Short:   "Show, switch or list branches",
	Long: `Without arguments, print the current branch. With a name, switch to it;
the branch exists as soon as a task is created in it.

Examples:
  todo branch
  todo branch work
  todo branch --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBranch,
}

var branchOpts struct {
	list   bool
	format string
}

var branchDeleteCmd = &cobra.Command{
	Use:     "branch-delete <name>",
	Aliases: []string{"br-del"},
	Short:   "Delete a branch",
	Long: `Delete a branch. A branch that still has tasks is only deleted with
--force, which deletes its tasks too. The personal branch cannot be deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runBranchDelete,
}

var branchForce bool

var branchMoveCmd = &cobra.Command{
	Use:     "branch-move <from> <to>",
	Aliases: []string{"br-mv"},
	Short:   "Move every task of a branch to another branch",
	Args:    cobra.ExactArgs(2),
	RunE:    runBranchMove,
}

var branchMergeCmd = &cobra.Command{
	Use:     "branch-merge <from> <to>",
	Aliases: []string{"br-merge"},
	Short:   "Merge a branch into another",
	Args:    cobra.ExactArgs(2),
	RunE:    runBranchMerge,
}

var branchDupCmd = &cobra.Command{
	Use:     "branch-dup <from> <to>",
	Aliases: []string{"br-cp", "branch-duplicate"},
	Short:   "Copy every task of a branch into another branch",
	Args:    cobra.ExactArgs(2),
	RunE:    runBranchDup,
}

func init() {
	branchCmd.Flags().BoolVarP(&branchOpts.list, "list", "l", false, "list known branches")
	branchCmd.Flags().StringVar(&branchOpts.format, "format", ux.FormatText, "output format for --list: text, json, yaml")

	branchDeleteCmd.Flags().BoolVarP(&branchForce, "force", "f", false, "also delete the tasks of the branch")

	rootCmd.AddCommand(branchCmd, branchDeleteCmd, branchMoveCmd, branchMergeCmd, branchDupCmd)
}

func runBranch(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	if branchOpts.list {
		branches := cc.Query.Branches(cc.State.CurrentBranch)
		return output(cc, branchOpts.format, branches, func() {
			cc.Printer(false).Branches(branches)
		})
	}

	if len(args) == 0 {
		fmt.Fprintln(cc.Out, cc.State.CurrentBranch)
		return nil
	}

	if err := cc.State.SwitchBranch(args[0]); err != nil {
		return err
	}
	if err := cc.SaveState(); err != nil {
		return err
	}
	cc.Printer(false).Success("Switched to branch %q", cc.State.CurrentBranch)
	return nil
}

func runBranchDelete(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	name := domain.NormalizeBranch(args[0])
	removed, err := cc.Mutate.BranchDelete(name, branchForce)
	if err != nil {
		return err
	}
	if err := cc.Persist(); err != nil {
		return err
	}
	cc.Printer(false).Success("Deleted branch %q (%d tasks removed)", name, removed)
	return leaveBranch(cc, name, domain.DefaultBranch)
}

func runBranchMove(cmd *cobra.Command, args []string) error {
	return branchTransfer(cmd, args, "Moved", (*mutate.Engine).BranchMove, true)
}

func runBranchMerge(cmd *cobra.Command, args []string) error {
	return branchTransfer(cmd, args, "Merged", (*mutate.Engine).BranchMerge, true)
}

func runBranchDup(cmd *cobra.Command, args []string) error {
	return branchTransfer(cmd, args, "Copied", (*mutate.Engine).BranchDup, false)
}

// branchTransfer runs a from/to branch operation. When the source branch is
// emptied and was current, the destination becomes current.
func branchTransfer(cmd *cobra.Command, args []string, verb string,
	op func(*mutate.Engine, string, string) (int, error), emptiesSource bool) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	from, to := domain.NormalizeBranch(args[0]), domain.NormalizeBranch(args[1])
	n, err := op(cc.Mutate, from, to)
	if err != nil {
		return err
	}
	if err := cc.Persist(); err != nil {
		return err
	}
	cc.Printer(false).Success("%s %d tasks from %q to %q", verb, n, from, to)
	if !emptiesSource {
		return nil
	}
	return leaveBranch(cc, from, to)
}

// leaveBranch switches to next when gone is the current branch.
func leaveBranch(cc *CommandContext, gone, next string) error {
	if !domain.SameBranch(cc.State.CurrentBranch, gone) {
		return nil
	}
	if err := cc.State.SwitchBranch(next); err != nil {
		return err
	}
	if err := cc.SaveState(); err != nil {
		return err
	}
	cc.Printer(false).Line("Current branch is now %q", cc.State.CurrentBranch)
	return nil
}
