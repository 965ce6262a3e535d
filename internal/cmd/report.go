package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/todo/internal/domain"
	"github.com/felixgeelhaar/todo/internal/query"
	"github.com/felixgeelhaar/todo/internal/ux"
)

var remindersCmd = &cobra.Command{
	Use:     "reminders",
	Aliases: []string{"due", "remind", "r"},
	Short:   "Show overdue tasks and tasks due soon",
	Long: `Show open tasks that are overdue, due today, or due within the next
--days days (default: the reminder_days setting).`,
	Args: cobra.NoArgs,
	RunE: runReminders,
}

var remindersOpts struct {
	days        int
	branch      string
	allBranches bool
	tags        []string
	format      string
}

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"st"},
	Short:   "Show task counts per status and branch",
	Args:    cobra.NoArgs,
	RunE:    runStats,
}

var statsFormat string

func init() {
	remindersCmd.Flags().IntVar(&remindersOpts.days, "days", 0, "days ahead to include (default from config)")
	remindersCmd.Flags().StringVarP(&remindersOpts.branch, "branch", "b", "", "branch (default: current branch)")
	remindersCmd.Flags().BoolVar(&remindersOpts.allBranches, "all-branches", false, "every branch")
	remindersCmd.Flags().StringSliceVar(&remindersOpts.tags, "tag", nil, "only tasks with any of these tags (repeatable)")
	remindersCmd.Flags().StringVar(&remindersOpts.format, "format", ux.FormatText, "output format: text, json, yaml")

	statsCmd.Flags().StringVar(&statsFormat, "format", ux.FormatText, "output format: text, json, yaml")

	rootCmd.AddCommand(remindersCmd, statsCmd)
}

// remindersView is the structured form of query.Reminders.
type remindersView struct {
	Overdue  []domain.Task `json:"overdue" yaml:"overdue"`
	DueToday []domain.Task `json:"due_today" yaml:"due_today"`
	Due      []domain.Task `json:"due" yaml:"due"`
	Horizon  domain.Date   `json:"horizon" yaml:"horizon"`
}

func nonNil(tasks []domain.Task) []domain.Task {
	if tasks == nil {
		return []domain.Task{}
	}
	return tasks
}

func runReminders(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	days := cc.State.Config.ReminderDays
	if cmd.Flags().Changed("days") {
		days = remindersOpts.days
	}
	r, err := cc.Query.Reminders(days, query.Filter{
		Branch: cc.Scope(remindersOpts.branch, remindersOpts.allBranches),
		Tags:   domain.NormalizeTags(remindersOpts.tags),
	})
	if err != nil {
		return err
	}

	view := remindersView{
		Overdue:  nonNil(r.Overdue),
		DueToday: nonNil(r.Today),
		Due:      nonNil(r.Due),
		Horizon:  r.Horizon,
	}
	return output(cc, remindersOpts.format, view, func() {
		cc.Printer(remindersOpts.allBranches).Reminders(r)
	})
}

func runStats(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	st := cc.Query.Stats(cc.State.CurrentBranch)
	return output(cc, statsFormat, st, func() {
		cc.Printer(false).Stats(st)
	})
}
