package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
	"github.com/felixgeelhaar/todo/internal/query"
	"github.com/felixgeelhaar/todo/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:     "browse",
	Aliases: []string{"ui"},
	Short:   "Browse tasks in an interactive list",
	Long: `Open a full-screen list of the tasks of the current branch. Move with
the arrow keys or j/k, mark tasks with space to toggle them between done and
open, press enter for details, a to apply the marked changes and q to quit
without changing anything.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

var browseOpts struct {
	branch string
	all    bool
	tags   []string
}

func init() {
	browseCmd.Flags().StringVarP(&browseOpts.branch, "branch", "b", "", "branch to browse (default: current branch)")
	browseCmd.Flags().BoolVarP(&browseOpts.all, "all", "a", false, "include completed tasks")
	browseCmd.Flags().StringSliceVar(&browseOpts.tags, "tag", nil, "only tasks with any of these tags (repeatable)")

	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if tui.InCI() || !tui.IsTerminal(cc.In) || !tui.IsTerminal(cc.Out) {
		return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidPayload, "browse needs an interactive terminal").
			WithSuggestion("Use 'todo list' and 'todo toggle <id>' in scripts")
	}

	branch := cc.Branch(browseOpts.branch)
	f := query.Filter{Branch: branch, Status: query.StatusOpen, Tags: domain.NormalizeTags(browseOpts.tags)}
	if browseOpts.all {
		f.Status = query.StatusAll
	}
	s := query.Sort{Key: cc.State.Config.DefaultSort, Desc: cc.State.Config.DefaultDesc}
	tasks := cc.Query.Select(f, s)

	res, err := tui.RunBrowse(cc.Context(), cc.In, cc.Out, fmt.Sprintf("Tasks in %s", branch), tasks)
	p := cc.Printer(false)
	if errors.Is(err, tui.ErrAborted) || (err == nil && !res.Apply) {
		p.Line("Nothing changed.")
		return nil
	}
	if err != nil {
		return err
	}

	for _, t := range res.Toggle {
		c, err := cc.Mutate.Toggle(domain.Ref{Branch: t.Branch, ID: t.ID})
		if err != nil {
			// Keep the toggles that already succeeded.
			return errors.Join(err, cc.Persist())
		}
		printCompletion(cc, c)
	}
	return cc.Persist()
}
