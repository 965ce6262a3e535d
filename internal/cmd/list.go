package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/todo/internal/domain"
	"github.com/felixgeelhaar/todo/internal/query"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List open tasks",
	Long: `List the open tasks of the current branch.

Examples:
  todo list --tag urgent --sort priority
  todo list --all --group-by due-day
  todo list --all-branches --group-by branch --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var searchCmd = &cobra.Command{
	Use:     "search <text>",
	Aliases: []string{"find", "s"},
	Short:   "Search tasks by title or content",
	Args:    cobra.ExactArgs(1),
	RunE:    runSearch,
}

var listDoneCmd = &cobra.Command{
	Use:     "list-done",
	Aliases: []string{"ld"},
	Short:   "List completed tasks",
	Args:    cobra.NoArgs,
	RunE:    runListDone,
}

var listAllCmd = &cobra.Command{
	Use:     "list-all",
	Aliases: []string{"la"},
	Short:   "List the tasks of every branch, grouped by branch",
	Args:    cobra.NoArgs,
	RunE:    runListAll,
}

var listRepeatCmd = &cobra.Command{
	Use:     "list-repeat",
	Aliases: []string{"lr"},
	Short:   "List repeating tasks",
	Args:    cobra.NoArgs,
	RunE:    runListRepeat,
}

var splitDueCmd = &cobra.Command{
	Use:     "split-due",
	Aliases: []string{"due-split"},
	Short:   "List tasks in two sections: with and without a due date",
	Args:    cobra.NoArgs,
	RunE:    runSplitDue,
}

var (
	listOpts       listOptions
	searchOpts     listOptions
	listDoneOpts   listOptions
	listAllOpts    listOptions
	listRepeatOpts listOptions
	splitDueOpts   listOptions
)

func init() {
	listOpts.register(listCmd, listFlagSet{branch: true, all: true, group: true})
	searchOpts.register(searchCmd, listFlagSet{branch: true, all: true, group: true})
	listDoneOpts.register(listDoneCmd, listFlagSet{branch: true, group: true})
	listAllOpts.register(listAllCmd, listFlagSet{all: true, group: true})
	listRepeatOpts.register(listRepeatCmd, listFlagSet{branch: true, all: true, group: true})
	splitDueOpts.register(splitDueCmd, listFlagSet{branch: true, all: true})

	rootCmd.AddCommand(listCmd, searchCmd, listDoneCmd, listAllCmd, listRepeatCmd, splitDueCmd)
}

// listing runs a filtered listing. adjust narrows the filter built from the
// flags; def is the grouping used when --group-by is not given.
func listing(cmd *cobra.Command, o *listOptions, def query.GroupBy, emptyMsg string, adjust func(*query.Filter)) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	f := o.filter(cc)
	if adjust != nil {
		adjust(&f)
	}
	s, err := o.sortSpec(cc)
	if err != nil {
		return err
	}
	g, err := o.grouping(cc, def)
	if err != nil {
		return err
	}

	groups := cc.Query.List(f, s, g)
	cc.Log.Debug("listed tasks", "branch", f.Branch, "groups", len(groups))

	var data any = groups
	if g.By == query.GroupNone {
		tasks := groups[0].Tasks
		if tasks == nil {
			tasks = []domain.Task{}
		}
		data = tasks
	}
	return output(cc, o.format, data, func() {
		cc.Printer(f.Branch == "" && g.By != query.GroupBranch).Groups(groups, emptyMsg)
	})
}

func runList(cmd *cobra.Command, args []string) error {
	return listing(cmd, &listOpts, query.GroupNone, "No tasks. Add one with 'todo create <title>'.", nil)
}

func runSearch(cmd *cobra.Command, args []string) error {
	return listing(cmd, &searchOpts, query.GroupNone, "No matching tasks.", func(f *query.Filter) {
		f.Text = args[0]
	})
}

func runListDone(cmd *cobra.Command, args []string) error {
	return listing(cmd, &listDoneOpts, query.GroupNone, "No completed tasks.", func(f *query.Filter) {
		f.Status = query.StatusDone
	})
}

func runListAll(cmd *cobra.Command, args []string) error {
	return listing(cmd, &listAllOpts, query.GroupBranch, "No tasks.", func(f *query.Filter) {
		f.Branch = ""
	})
}

func runListRepeat(cmd *cobra.Command, args []string) error {
	return listing(cmd, &listRepeatOpts, query.GroupNone, "No repeating tasks.", func(f *query.Filter) {
		f.RepeatOnly = true
	})
}

func runSplitDue(cmd *cobra.Command, args []string) error {
	return listing(cmd, &splitDueOpts, query.GroupDueSplit, "No tasks.", nil)
}
