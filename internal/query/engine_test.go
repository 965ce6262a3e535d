package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/felixgeelhaar/todo/internal/domain"
)

type sliceSource []domain.Task

func (s sliceSource) All() []domain.Task {
	out := make([]domain.Task, len(s))
	for i, t := range s {
		out[i] = t.Clone()
	}
	return out
}

func day(m time.Month, d int) domain.Date {
	return domain.NewDate(2026, m, d)
}

func clockAt(d domain.Date) func() time.Time {
	return func() time.Time { return d.Time().Add(10 * time.Hour) }
}

func ids(tasks []domain.Task) []uint64 {
	out := make([]uint64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func fixture() sliceSource {
	return sliceSource{
		{ID: 1, Title: "Write report", Branch: "work", Tags: []string{"urgent"}, Due: day(1, 10), Priority: domain.PriorityHigh},
		{ID: 2, Title: "Buy milk", Branch: "personal", Tags: []string{"home"}, Content: "oat milk"},
		{ID: 3, Title: "Call bank", Branch: "personal", Tags: []string{"urgent", "money"}, Due: day(1, 3), Priority: domain.PriorityLow},
		{ID: 4, Title: "Old review", Branch: "Work", Tags: []string{"urgent"}, Done: true, Archived: true},
		{ID: 5, Title: "Standup", Branch: "work", Tags: []string{}, Repeat: domain.RepeatDaily, Due: day(1, 1), Done: true},
		{ID: 6, Title: "Plan trip", Branch: "travel", Tags: []string{"urgent"}, Priority: domain.PriorityMedium},
	}
}

func TestFilterMatch(t *testing.T) {
	e := New(fixture(), clockAt(day(1, 1)))

	tests := []struct {
		name   string
		filter Filter
		want   []uint64
	}{
		{"default open unarchived", Filter{}, []uint64{1, 2, 3, 6}},
		{"branch case-insensitive", Filter{Branch: "WORK", Status: StatusAll}, []uint64{1, 5}},
		{"done only", Filter{Status: StatusDone}, []uint64{5}},
		{"all including archived", Filter{Status: StatusAll, IncludeArchived: true}, []uint64{1, 2, 3, 4, 5, 6}},
		{"archived only", Filter{Status: StatusAll, ArchivedOnly: true}, []uint64{4}},
		{"any of tags", Filter{Tags: []string{"money", "home"}}, []uint64{2, 3}},
		{"text in content", Filter{Text: "OAT"}, []uint64{2}},
		{"repeat only", Filter{Status: StatusAll, RepeatOnly: true}, []uint64{5}},
		{"has due", Filter{Due: DueSet}, []uint64{1, 3}},
		{"no due", Filter{Due: DueUnset}, []uint64{2, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(e.Select(tt.filter, Sort{Key: SortCreated})))
		})
	}
}

func TestSortMissingLastAndStable(t *testing.T) {
	e := New(fixture(), clockAt(day(1, 1)))

	tests := []struct {
		name string
		sort Sort
		want []uint64
	}{
		{"due asc", Sort{Key: SortDue}, []uint64{3, 1, 2, 6}},
		{"due desc keeps missing last", Sort{Key: SortDue, Desc: true}, []uint64{1, 3, 2, 6}},
		{"priority high first", Sort{Key: SortPriority}, []uint64{1, 6, 3, 2}},
		{"priority desc", Sort{Key: SortPriority, Desc: true}, []uint64{3, 6, 1, 2}},
		{"id desc", Sort{Key: SortID, Desc: true}, []uint64{6, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(e.Select(Filter{}, tt.sort)))
		})
	}
}

func TestSortCreatedUsesTimestamp(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2026, time.January, 1, h, 0, 0, 0, time.UTC) }
	src := sliceSource{
		{ID: 1, Title: "imported later, created early", Branch: "personal", CreatedAt: at(8)},
		{ID: 2, Title: "no timestamp", Branch: "personal"},
		{ID: 3, Title: "first", Branch: "personal", CreatedAt: at(6)},
		{ID: 4, Title: "same time as 1", Branch: "personal", CreatedAt: at(8)},
	}
	e := New(src, clockAt(day(1, 1)))

	assert.Equal(t, []uint64{3, 1, 4, 2}, ids(e.Select(Filter{}, Sort{Key: SortCreated})))
	assert.Equal(t, []uint64{1, 4, 3, 2}, ids(e.Select(Filter{}, Sort{Key: SortCreated, Desc: true})))
}

func TestTagFilterProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 25).Draw(rt, "n")
		var src sliceSource
		for i := 1; i <= n; i++ {
			var due domain.Date
			if rapid.Bool().Draw(rt, "hasDue") {
				due = day(1, rapid.IntRange(1, 5).Draw(rt, "day"))
			}
			src = append(src, domain.Task{
				ID:     uint64(i),
				Title:  "t",
				Branch: "personal",
				Tags:   domain.NormalizeTags(rapid.SliceOfN(rapid.SampledFrom([]string{"urgent", "home", "work"}), 0, 2).Draw(rt, "tags")),
				Due:    due,
			})
		}

		got := New(src, clockAt(day(1, 1))).Select(Filter{Tags: []string{"urgent"}}, Sort{Key: SortDue})

		var want int
		for _, t := range src {
			if t.HasTag("urgent") {
				want++
			}
		}
		if len(got) != want {
			rt.Fatalf("got %d tasks, want %d", len(got), want)
		}
		for i, t := range got {
			if !t.HasTag("urgent") {
				rt.Fatalf("task %d lacks the tag", t.ID)
			}
			if i == 0 {
				continue
			}
			prev := got[i-1]
			if prev.Due.IsZero() && !t.Due.IsZero() {
				rt.Fatalf("undated task %d sorted before dated %d", prev.ID, t.ID)
			}
			if !prev.Due.IsZero() && !t.Due.IsZero() && prev.Due.After(t.Due) {
				rt.Fatalf("tasks %d and %d out of due order", prev.ID, t.ID)
			}
			if prev.Due.Equal(t.Due) && prev.ID > t.ID {
				rt.Fatalf("tie between %d and %d broke insertion order", prev.ID, t.ID)
			}
		}
	})
}

func TestListGrouping(t *testing.T) {
	e := New(fixture(), clockAt(day(1, 1)))

	t.Run("none", func(t *testing.T) {
		groups := e.List(Filter{}, Sort{Key: SortID}, Grouping{})
		require.Len(t, groups, 1)
		assert.Equal(t, []uint64{1, 2, 3, 6}, ids(groups[0].Tasks))
	})

	t.Run("due day", func(t *testing.T) {
		groups := e.List(Filter{}, Sort{Key: SortDue}, Grouping{By: GroupDueDay})
		require.Len(t, groups, 3)
		assert.Equal(t, "2026-01-03", groups[0].Label)
		assert.Equal(t, "2026-01-10", groups[1].Label)
		assert.Equal(t, NoDueLabel, groups[2].Label)
		assert.Equal(t, []uint64{2, 6}, ids(groups[2].Tasks))
	})

	t.Run("branch current first", func(t *testing.T) {
		groups := e.List(Filter{Status: StatusAll, IncludeArchived: true}, Sort{Key: SortID}, Grouping{By: GroupBranch, CurrentBranch: "travel"})
		require.Len(t, groups, 3)
		assert.Equal(t, "travel", groups[0].Label)
		assert.Equal(t, "personal", groups[1].Label)
		assert.Equal(t, "work", groups[2].Label)
		assert.Equal(t, []uint64{1, 4, 5}, ids(groups[2].Tasks))
	})

	t.Run("due split", func(t *testing.T) {
		groups := e.List(Filter{}, Sort{Key: SortID}, Grouping{By: GroupDueSplit})
		require.Len(t, groups, 2)
		assert.Equal(t, []uint64{1, 3}, ids(groups[0].Tasks))
		assert.Equal(t, []uint64{2, 6}, ids(groups[1].Tasks))
	})
}

func TestStats(t *testing.T) {
	e := New(fixture(), clockAt(day(1, 3)))
	st := e.Stats("work")

	assert.Equal(t, 6, st.Total)
	assert.Equal(t, 4, st.Open)
	assert.Equal(t, 1, st.Done)
	assert.Equal(t, 1, st.Archived)
	assert.Equal(t, 0, st.Overdue)
	assert.Equal(t, 1, st.DueToday)
	assert.Equal(t, 1, st.Repeating)

	require.Len(t, st.Branches, 3)
	assert.Equal(t, BranchStats{Name: "work", Total: 3, Open: 1, Done: 1, Archived: 1}, st.Branches[0])
	assert.Equal(t, "personal", st.Branches[1].Name)

	later := New(fixture(), clockAt(day(1, 11))).Stats("")
	assert.Equal(t, 2, later.Overdue)
}

func TestReminders(t *testing.T) {
	src := sliceSource{
		{ID: 1, Title: "prepare slides", Branch: "work", Due: day(1, 5)},
		{ID: 2, Title: "file expenses", Branch: "work", Due: day(1, 20), Done: true},
		{ID: 3, Title: "late", Branch: "work", Due: day(1, 1).AddDays(-2)},
		{ID: 4, Title: "today", Branch: "work", Due: day(1, 1)},
		{ID: 5, Title: "far", Branch: "work", Due: day(1, 12)},
		{ID: 6, Title: "other branch", Branch: "home", Due: day(1, 2)},
	}
	e := New(src, clockAt(day(1, 1)))

	r, err := e.Reminders(10, Filter{Branch: "work"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 1}, ids(r.Due))
	assert.Equal(t, []uint64{4}, ids(r.Today))
	assert.Equal(t, []uint64{3}, ids(r.Overdue))
	assert.Equal(t, "2026-01-11", r.Horizon.String())

	only := sliceSource{src[0], src[1]}
	r, err = New(only, clockAt(day(1, 1))).Reminders(10, Filter{Branch: "work"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids(r.Due))

	_, err = e.Reminders(-1, Filter{})
	assert.Error(t, err)
}

func TestBranches(t *testing.T) {
	e := New(fixture(), clockAt(day(1, 1)))

	got := e.Branches("scratch")
	names := make([]string, 0, len(got))
	for _, b := range got {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"scratch", "personal", "travel", "work"}, names)
	assert.True(t, got[0].Current)
	assert.Equal(t, 0, got[0].Total)
	assert.Equal(t, BranchInfo{Name: "work", Open: 1, Total: 3}, got[3])
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("Priority")
	require.NoError(t, err)
	assert.Equal(t, SortPriority, k)

	_, err = ParseSortKey("title")
	assert.Error(t, err)
}

func TestParseGroupBy(t *testing.T) {
	tests := []struct {
		in   string
		want GroupBy
	}{
		{"", GroupNone},
		{"none", GroupNone},
		{"due-day", GroupDueDay},
		{"Branch", GroupBranch},
	}
	for _, tt := range tests {
		got, err := ParseGroupBy(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseGroupBy("week")
	assert.Error(t, err)
}

func TestResultsAreCopies(t *testing.T) {
	src := fixture()
	e := New(src, clockAt(day(1, 1)))
	got := e.Select(Filter{}, Sort{Key: SortID})
	got[0].Tags[0] = "mutated"
	assert.Equal(t, "urgent", src[0].Tags[0])
}
