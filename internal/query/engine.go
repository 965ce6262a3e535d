// Package query answers read-only questions about a task collection:
// filtered and sorted listings, statistics, reminders and branch summaries.
// Every result is a fresh deep copy.
package query

import (
	"slices"
	"strings"
	"time"

	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
)

// Source provides a snapshot of the collection in insertion order.
type Source interface {
	All() []domain.Task
}

// Engine evaluates queries against a Source.
type Engine struct {
	src   Source
	clock func() time.Time
}

// New returns an engine reading from src. A nil clock uses time.Now.
func New(src Source, clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{src: src, clock: clock}
}

// Today returns the current calendar day.
func (e *Engine) Today() domain.Date {
	return domain.DateOf(e.clock())
}

// Group is one section of a listing.
type Group struct {
	Label string        `json:"label" yaml:"label"`
	Tasks []domain.Task `json:"tasks" yaml:"tasks"`
}

// NoDueLabel names the group of tasks without a due date.
const NoDueLabel = "No due date"

// Select returns the tasks matching f, sorted by s.
func (e *Engine) Select(f Filter, s Sort) []domain.Task {
	var out []domain.Task
	for _, t := range e.src.All() {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	SortTasks(out, s)
	return out
}

// List filters, sorts and groups. GroupNone yields exactly one group with an
// empty label; other groupings omit empty groups.
func (e *Engine) List(f Filter, s Sort, g Grouping) []Group {
	tasks := e.Select(f, s)

	switch g.By {
	case GroupDueDay:
		return groupByDueDay(tasks)
	case GroupBranch:
		return groupByBranch(tasks, g.CurrentBranch)
	case GroupDueSplit:
		return splitByDue(tasks)
	default:
		return []Group{{Tasks: tasks}}
	}
}

func groupByDueDay(tasks []domain.Task) []Group {
	var groups []Group
	index := map[string]int{}
	var undated []domain.Task
	for _, t := range tasks {
		if t.Due.IsZero() {
			undated = append(undated, t)
			continue
		}
		key := t.Due.String()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Label: key})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	if len(undated) > 0 {
		groups = append(groups, Group{Label: NoDueLabel, Tasks: undated})
	}
	return groups
}

func groupByBranch(tasks []domain.Task, current string) []Group {
	byKey := map[string]*Group{}
	var keys []string
	for _, t := range tasks {
		key := domain.BranchKey(t.Branch)
		g, ok := byKey[key]
		if !ok {
			g = &Group{Label: t.Branch}
			byKey[key] = g
			keys = append(keys, key)
		}
		g.Tasks = append(g.Tasks, t)
	}
	orderBranchKeys(keys, domain.BranchKey(current))

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, *byKey[k])
	}
	return groups
}

// orderBranchKeys puts current first and the rest alphabetically.
func orderBranchKeys(keys []string, current string) {
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == current:
			return -1
		case b == current:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
}

func splitByDue(tasks []domain.Task) []Group {
	var dated, undated []domain.Task
	for _, t := range tasks {
		if t.Due.IsZero() {
			undated = append(undated, t)
		} else {
			dated = append(dated, t)
		}
	}
	var groups []Group
	if len(dated) > 0 {
		groups = append(groups, Group{Label: "Due", Tasks: dated})
	}
	if len(undated) > 0 {
		groups = append(groups, Group{Label: NoDueLabel, Tasks: undated})
	}
	return groups
}

// BranchStats counts the tasks of one branch.
type BranchStats struct {
	Name     string `json:"name" yaml:"name"`
	Total    int    `json:"total" yaml:"total"`
	Open     int    `json:"open" yaml:"open"`
	Done     int    `json:"done" yaml:"done"`
	Archived int    `json:"archived" yaml:"archived"`
}

// Stats summarizes the whole collection. Done excludes archived tasks;
// Overdue and DueToday count open, unarchived tasks only.
type Stats struct {
	Total     int           `json:"total" yaml:"total"`
	Open      int           `json:"open" yaml:"open"`
	Done      int           `json:"done" yaml:"done"`
	Archived  int           `json:"archived" yaml:"archived"`
	Overdue   int           `json:"overdue" yaml:"overdue"`
	DueToday  int           `json:"due_today" yaml:"due_today"`
	Repeating int           `json:"repeating" yaml:"repeating"`
	Branches  []BranchStats `json:"branches" yaml:"branches"`
}

// Stats computes collection statistics. Branches are ordered current first.
func (e *Engine) Stats(current string) Stats {
	today := e.Today()
	var st Stats
	perBranch := map[string]*BranchStats{}
	var keys []string

	for _, t := range e.src.All() {
		key := domain.BranchKey(t.Branch)
		bs, ok := perBranch[key]
		if !ok {
			bs = &BranchStats{Name: t.Branch}
			perBranch[key] = bs
			keys = append(keys, key)
		}

		st.Total++
		bs.Total++
		switch {
		case t.Archived:
			st.Archived++
			bs.Archived++
		case t.Done:
			st.Done++
			bs.Done++
		default:
			st.Open++
			bs.Open++
		}
		if t.IsOverdue(today) {
			st.Overdue++
		}
		if t.IsDueToday(today) {
			st.DueToday++
		}
		if t.Repeat.IsSet() && !t.Archived {
			st.Repeating++
		}
	}

	orderBranchKeys(keys, domain.BranchKey(current))
	st.Branches = make([]BranchStats, 0, len(keys))
	for _, k := range keys {
		st.Branches = append(st.Branches, *perBranch[k])
	}
	return st
}

// Reminders partitions the open, unarchived tasks that have a due date.
type Reminders struct {
	Overdue []domain.Task
	Today   []domain.Task
	// Due holds tasks due within [today, today+horizon].
	Due []domain.Task
	// Horizon is the last day covered by Due.
	Horizon domain.Date
}

// Reminders collects overdue and upcoming tasks. f narrows the candidates
// (branch, tags, text); its status and archive settings are ignored.
func (e *Engine) Reminders(days int, f Filter) (Reminders, error) {
	if days < 0 {
		return Reminders{}, todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig,
			"reminder window must not be negative, got %d", days)
	}
	today := e.Today()
	r := Reminders{Horizon: today.AddDays(days)}

	f.Status = StatusOpen
	f.IncludeArchived = false
	f.ArchivedOnly = false
	f.Due = DueSet
	for _, t := range e.Select(f, Sort{Key: SortDue}) {
		switch {
		case t.Due.Before(today):
			r.Overdue = append(r.Overdue, t)
		case t.Due.After(r.Horizon):
			continue
		default:
			if t.Due.Equal(today) {
				r.Today = append(r.Today, t)
			}
			r.Due = append(r.Due, t)
		}
	}
	return r, nil
}

// BranchInfo describes one known branch.
type BranchInfo struct {
	Name    string `json:"name" yaml:"name"`
	Current bool   `json:"current" yaml:"current"`
	Open    int    `json:"open" yaml:"open"`
	Total   int    `json:"total" yaml:"total"`
}

// Branches lists known branch names, current first (even when it has no
// tasks yet), then case-insensitive alphabetical.
func (e *Engine) Branches(current string) []BranchInfo {
	current = domain.NormalizeBranch(current)
	byKey := map[string]*BranchInfo{
		domain.BranchKey(current): {Name: current, Current: true},
	}
	keys := []string{domain.BranchKey(current)}

	for _, t := range e.src.All() {
		key := domain.BranchKey(t.Branch)
		bi, ok := byKey[key]
		if !ok {
			bi = &BranchInfo{Name: t.Branch}
			byKey[key] = bi
			keys = append(keys, key)
		}
		bi.Total++
		if t.IsOpen() {
			bi.Open++
		}
	}

	orderBranchKeys(keys, domain.BranchKey(current))
	out := make([]BranchInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}
