package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/todo/internal/domain"
	"github.com/felixgeelhaar/todo/internal/mutate"
)

var bulkDoneCmd = &cobra.Command{
	Use:     "bulk-done <text>",
	Aliases: []string{"bd"},
	Short:   "Complete every task matching text",
	Long: `Complete every open task whose title or content contains text. An empty
text ("") matches every task. Archived tasks are never touched.`,
	Args: cobra.ExactArgs(1),
	RunE: runBulkDone,
}

var bulkUndoneCmd = &cobra.Command{
	Use:     "bulk-undone <text>",
	Aliases: []string{"bu"},
	Short:   "Reopen every task matching text",
	Args:    cobra.ExactArgs(1),
	RunE:    runBulkUndone,
}

var bulkDeleteCmd = &cobra.Command{
	Use:     "bulk-delete <text>",
	Aliases: []string{"bx"},
	Short:   "Delete every task matching text",
	Args:    cobra.ExactArgs(1),
	RunE:    runBulkDelete,
}

var bulkMoveCmd = &cobra.Command{
	Use:     "bulk-move <text> <to>",
	Aliases: []string{"bm"},
	Short:   "Move every task matching text to another branch",
	Args:    cobra.ExactArgs(2),
	RunE:    runBulkMove,
}

var bulkEditCmd = &cobra.Command{
	Use:     "bulk-edit <text>",
	Aliases: []string{"be"},
	Short:   "Edit every task matching text",
	Long: `Apply the same change to every task matching text. "-" clears a field.

Examples:
  todo bulk-edit groceries --due tomorrow --tag errands
  todo bulk-edit "" --branch work --priority -`,
	Args: cobra.ExactArgs(1),
	RunE: runBulkEdit,
}

// selectorOptions are the flags narrowing a bulk selection.
type selectorOptions struct {
	branch      string
	allBranches bool
	tags        []string
}

func (o *selectorOptions) register(c *cobra.Command) {
	c.Flags().StringVarP(&o.branch, "branch", "b", "", "branch to select from (default: current branch)")
	c.Flags().BoolVar(&o.allBranches, "all-branches", false, "select from every branch")
	c.Flags().StringSliceVar(&o.tags, "tag", nil, "only tasks with any of these tags (repeatable)")
}

func (o *selectorOptions) selector(cc *CommandContext, text string) mutate.Selector {
	return mutate.Selector{
		Branch: cc.Scope(o.branch, o.allBranches),
		Text:   text,
		Tags:   domain.NormalizeTags(o.tags),
	}
}

var (
	bulkDoneOpts   selectorOptions
	bulkUndoneOpts selectorOptions
	bulkDeleteOpts selectorOptions
	bulkMoveOpts   selectorOptions
	bulkEditOpts   struct {
		patchOptions
		sel selectorOptions
	}
)

func init() {
	bulkDoneOpts.register(bulkDoneCmd)
	bulkUndoneOpts.register(bulkUndoneCmd)
	bulkDeleteOpts.register(bulkDeleteCmd)
	bulkMoveOpts.register(bulkMoveCmd)

	// bulk-edit uses --branch as the move target and --tag for added tags,
	// so its selection flags are named differently.
	bulkEditOpts.register(bulkEditCmd, true)
	bulkEditCmd.Flags().StringVar(&bulkEditOpts.sel.branch, "in", "", "branch to select from (default: current branch)")
	bulkEditCmd.Flags().BoolVar(&bulkEditOpts.sel.allBranches, "all-branches", false, "select from every branch")
	bulkEditCmd.Flags().StringSliceVar(&bulkEditOpts.sel.tags, "with-tag", nil, "only tasks with any of these tags (repeatable)")

	rootCmd.AddCommand(bulkDoneCmd, bulkUndoneCmd, bulkDeleteCmd, bulkMoveCmd, bulkEditCmd)
}

// bulk runs op against the selection and prints the report.
func bulk(cmd *cobra.Command, verb string, op func(cc *CommandContext) (mutate.BulkReport, error)) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	report, err := op(cc)
	if err != nil {
		return err
	}
	if err := cc.Persist(); err != nil {
		return err
	}
	cc.Printer(true).BulkReport(verb, report)
	return report.Err()
}

func runBulkDone(cmd *cobra.Command, args []string) error {
	return bulk(cmd, "completed", func(cc *CommandContext) (mutate.BulkReport, error) {
		return cc.Mutate.BulkDone(bulkDoneOpts.selector(cc, args[0]))
	})
}

func runBulkUndone(cmd *cobra.Command, args []string) error {
	return bulk(cmd, "reopened", func(cc *CommandContext) (mutate.BulkReport, error) {
		return cc.Mutate.BulkUndone(bulkUndoneOpts.selector(cc, args[0]))
	})
}

func runBulkDelete(cmd *cobra.Command, args []string) error {
	return bulk(cmd, "deleted", func(cc *CommandContext) (mutate.BulkReport, error) {
		return cc.Mutate.BulkDelete(bulkDeleteOpts.selector(cc, args[0]))
	})
}

func runBulkMove(cmd *cobra.Command, args []string) error {
	return bulk(cmd, "moved", func(cc *CommandContext) (mutate.BulkReport, error) {
		return cc.Mutate.BulkMove(bulkMoveOpts.selector(cc, args[0]), args[1])
	})
}

func runBulkEdit(cmd *cobra.Command, args []string) error {
	return bulk(cmd, "updated", func(cc *CommandContext) (mutate.BulkReport, error) {
		patch, err := bulkEditOpts.patch(cmd, cc.Today())
		if err != nil {
			return mutate.BulkReport{}, err
		}
		return cc.Mutate.BulkEdit(bulkEditOpts.sel.selector(cc, args[0]), patch)
	})
}
