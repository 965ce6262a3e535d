package cmd

import (
	"github.com/spf13/cobra"

	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
)

var archiveCmd = &cobra.Command{
	Use:     "archive [id]",
	Aliases: []string{"arc"},
	Short:   "Archive completed tasks",
	Long: `Archive a completed task by id, or every completed task of the current
branch with --done (every branch with --all-branches). Archived tasks are
hidden from listings unless --archived is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArchive,
}

var archiveOpts struct {
	done        bool
	branch      string
	allBranches bool
}

var unarchiveCmd = &cobra.Command{
	Use:     "unarchive <id>",
	Aliases: []string{"unarc"},
	Short:   "Return an archived task to the completed list",
	Args:    cobra.ExactArgs(1),
	RunE:    runUnarchive,
}

func init() {
	archiveCmd.Flags().BoolVar(&archiveOpts.done, "done", false, "archive every completed task")
	archiveCmd.Flags().StringVarP(&archiveOpts.branch, "branch", "b", "", "branch (default: current branch)")
	archiveCmd.Flags().BoolVar(&archiveOpts.allBranches, "all-branches", false, "with --done, archive in every branch")

	unarchiveCmd.Flags().StringVarP(&refBranch, "branch", "b", "", "branch of the id (default: current branch)")

	rootCmd.AddCommand(archiveCmd, unarchiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !archiveOpts.done {
		return todoerrors.New(todoerrors.ErrCodeInvalidArchive, "nothing to archive").
			WithSuggestion("Pass a task id, or --done to archive every completed task")
	}
	if len(args) == 1 && archiveOpts.done {
		return todoerrors.New(todoerrors.ErrCodeInvalidArchive, "pass either a task id or --done, not both")
	}

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	p := cc.Printer(false)

	if archiveOpts.done {
		archived, err := cc.Mutate.ArchiveDone(cc.Scope(archiveOpts.branch, archiveOpts.allBranches))
		if err != nil {
			return err
		}
		if err := cc.Persist(); err != nil {
			return err
		}
		p.Success("Archived %d completed tasks", len(archived))
		return nil
	}

	ref, err := cc.Ref(args[0], archiveOpts.branch)
	if err != nil {
		return err
	}
	t, err := cc.Mutate.Archive(ref)
	if err != nil {
		return err
	}
	if err := cc.Persist(); err != nil {
		return err
	}
	p.Success("Archived task #%d %s", t.ID, t.Title)
	return nil
}

func runUnarchive(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ref, err := cc.Ref(args[0], refBranch)
	if err != nil {
		return err
	}
	t, err := cc.Mutate.Unarchive(ref)
	if err != nil {
		return err
	}
	if err := cc.Persist(); err != nil {
		return err
	}
	cc.Printer(false).Success("Unarchived task #%d %s", t.ID, t.Title)
	return nil
}
