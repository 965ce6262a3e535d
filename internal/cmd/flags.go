package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/todo/internal/domain"
	"github.com/felixgeelhaar/todo/internal/query"
	"github.com/felixgeelhaar/todo/internal/tui"
	"github.com/felixgeelhaar/todo/internal/ux"
)

// listOptions are the filter, sort and output flags shared by the listing
// commands.
type listOptions struct {
	branch      string
	allBranches bool
	tags        []string
	sort        string
	desc        bool
	asc         bool
	groupBy     string
	all         bool
	archived    bool
	format      string
}

// listFlagSet selects which listing flags a command offers.
type listFlagSet struct {
	branch bool
	all    bool
	group  bool
}

func (o *listOptions) register(c *cobra.Command, set listFlagSet) {
	f := c.Flags()
	if set.branch {
		f.StringVarP(&o.branch, "branch", "b", "", "branch to list (default: current branch)")
		f.BoolVar(&o.allBranches, "all-branches", false, "list every branch")
	}
	if set.all {
		f.BoolVarP(&o.all, "all", "a", false, "include completed tasks")
	}
	if set.group {
		f.StringVar(&o.groupBy, "group-by", "", "group output: none, due-day, branch")
	}
	f.StringSliceVar(&o.tags, "tag", nil, "only tasks with any of these tags (repeatable)")
	f.StringVarP(&o.sort, "sort", "s", "", "sort by: due, priority, created, id (default from config)")
	f.BoolVar(&o.desc, "desc", false, "sort descending")
	f.BoolVar(&o.asc, "asc", false, "sort ascending")
	f.BoolVar(&o.archived, "archived", false, "include archived tasks")
	f.StringVar(&o.format, "format", ux.FormatText, "output format: text, json, yaml")
}

func (o *listOptions) filter(cc *CommandContext) query.Filter {
	f := query.Filter{
		Branch:          cc.Scope(o.branch, o.allBranches),
		Status:          query.StatusOpen,
		IncludeArchived: o.archived,
		Tags:            domain.NormalizeTags(o.tags),
	}
	if o.all {
		f.Status = query.StatusAll
	}
	return f
}

func (o *listOptions) sortSpec(cc *CommandContext) (query.Sort, error) {
	s := query.Sort{Key: cc.State.Config.DefaultSort, Desc: cc.State.Config.DefaultDesc}
	if o.sort != "" {
		key, err := query.ParseSortKey(o.sort)
		if err != nil {
			return query.Sort{}, err
		}
		s.Key = key
	}
	switch {
	case o.desc:
		s.Desc = true
	case o.asc:
		s.Desc = false
	}
	return s, nil
}

func (o *listOptions) grouping(cc *CommandContext, def query.GroupBy) (query.Grouping, error) {
	g := query.Grouping{By: def, CurrentBranch: cc.State.CurrentBranch}
	if o.groupBy != "" {
		by, err := query.ParseGroupBy(o.groupBy)
		if err != nil {
			return query.Grouping{}, err
		}
		g.By = by
	}
	return g, nil
}

// patchOptions are the field flags of edit and bulk-edit. A value of "-"
// clears the field.
type patchOptions struct {
	title      string
	content    string
	tags       []string
	removeTags []string
	clearTags  bool
	due        string
	priority   string
	repeat     string
	branch     string
}

func (o *patchOptions) register(c *cobra.Command, withText bool) {
	f := c.Flags()
	if withText {
		f.StringVar(&o.title, "title", "", "new title")
		f.StringVarP(&o.content, "content", "c", "", `new content ("-" clears)`)
		f.StringVarP(&o.branch, "branch", "b", "", "move to this branch")
	}
	f.StringSliceVar(&o.tags, "tag", nil, "add tag(s)")
	f.StringSliceVar(&o.removeTags, "remove-tag", nil, "remove tag(s)")
	f.BoolVar(&o.clearTags, "clear-tags", false, "remove every tag")
	f.StringVarP(&o.due, "due", "d", "", `new due date: today, tomorrow, YYYY-MM-DD, DDMMYYYY ("-" clears)`)
	f.StringVarP(&o.priority, "priority", "p", "", `new priority: low, medium, high ("-" clears)`)
	f.StringVar(&o.repeat, "repeat", "", `new repeat rule: daily, weekly, monthly ("-" clears)`)
}

// patch builds the edit from the flags that were set on c.
func (o *patchOptions) patch(c *cobra.Command, today domain.Date) (domain.Patch, error) {
	var p domain.Patch
	changed := c.Flags().Changed

	if changed("title") {
		title := o.title
		p.Title = &title
	}
	if changed("content") {
		content := o.content
		if content == tui.ClearValue {
			content = ""
		}
		p.Content = &content
	}
	if changed("branch") {
		branch := o.branch
		if branch == tui.ClearValue {
			branch = domain.DefaultBranch
		}
		p.Branch = &branch
	}
	if o.clearTags {
		p.SetTags = true
		p.Tags = []string{}
	}
	p.AddTags = domain.NormalizeTags(o.tags)
	p.RemoveTags = domain.NormalizeTags(o.removeTags)

	if changed("due") {
		var due domain.Date
		if o.due != tui.ClearValue {
			d, err := domain.ParseDue(o.due, today)
			if err != nil {
				return domain.Patch{}, err
			}
			due = d
		}
		p.Due = &due
	}
	if changed("priority") {
		var pr domain.Priority
		if o.priority != tui.ClearValue {
			parsed, err := domain.ParsePriority(o.priority)
			if err != nil {
				return domain.Patch{}, err
			}
			pr = parsed
		}
		p.Priority = &pr
	}
	if changed("repeat") {
		var r domain.Recurrence
		if o.repeat != tui.ClearValue {
			parsed, err := domain.ParseRecurrence(o.repeat)
			if err != nil {
				return domain.Patch{}, err
			}
			r = parsed
		}
		p.Repeat = &r
	}

	if err := p.Validate(); err != nil {
		return domain.Patch{}, err
	}
	return p, nil
}

// output writes data in json or yaml, or calls text for text output.
func output(cc *CommandContext, format string, data any, text func()) error {
	f, err := ux.NewFormatter(format, cc.Out)
	if err != nil {
		return err
	}
	if !ux.IsStructured(format) {
		text()
		return nil
	}
	return f.Format(data)
}
