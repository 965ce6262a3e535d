package mutate

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
	"github.com/felixgeelhaar/todo/internal/exchange"
	"github.com/felixgeelhaar/todo/internal/exitcode"
	"github.com/felixgeelhaar/todo/internal/log"
	"github.com/felixgeelhaar/todo/internal/store"
)

var now = time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)

func setup(t testing.TB, scope domain.IDScope, useUUID bool) (*store.Store, *Engine) {
	t.Helper()
	s := store.New(store.Options{
		Path:    filepath.Join(t.TempDir(), "tasks.json"),
		IDScope: scope,
		UseUUID: useUUID,
		Clock:   func() time.Time { return now },
		Logger:  log.Discard(),
	})
	return s, New(s)
}

func mustCreate(t testing.TB, s *store.Store, d domain.Draft) domain.Task {
	t.Helper()
	created, err := s.Create(d)
	require.NoError(t, err)
	return created
}

func TestDoneRecurrence(t *testing.T) {
	tests := []struct {
		name   string
		repeat domain.Recurrence
		due    domain.Date
		want   string
	}{
		{"weekly", domain.RepeatWeekly, domain.NewDate(2026, 1, 10), "2026-01-17"},
		{"daily without due starts today", domain.RepeatDaily, domain.Date{}, "2026-01-16"},
		{"monthly clamps", domain.RepeatMonthly, domain.NewDate(2026, 1, 31), "2026-02-28"},
		{"monthly leap year", domain.RepeatMonthly, domain.NewDate(2028, 1, 31), "2028-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e := setup(t, domain.ScopeGlobal, false)
			orig := mustCreate(t, s, domain.Draft{Title: "review", Tags: []string{"team"}, Priority: domain.PriorityMedium,
				Repeat: tt.repeat, Due: tt.due, Branch: "work", Content: "notes"})

			c, err := e.Done(domain.Ref{ID: orig.ID})
			require.NoError(t, err)
			require.True(t, c.Changed)
			require.NotNil(t, c.Spawned)

			all := s.All()
			require.Len(t, all, 2, "exactly one new occurrence")
			next := all[1]
			assert.Equal(t, tt.want, next.Due.String())
			assert.Equal(t, orig.ID, next.Parent)
			assert.NotEqual(t, orig.ID, next.ID)
			assert.False(t, next.Done)
			assert.Equal(t, "work", next.Branch)
			assert.Equal(t, orig.Tags, next.Tags)
			assert.Equal(t, orig.Content, next.Content)
			assert.Equal(t, orig.Priority, next.Priority)
			assert.Equal(t, orig.Repeat, next.Repeat)
			assert.True(t, all[0].Done)

			again, err := e.Done(domain.Ref{ID: orig.ID})
			require.NoError(t, err)
			assert.False(t, again.Changed)
			assert.Len(t, s.All(), 2, "done on a done task is a no-op")
		})
	}
}

func TestUndoneAndToggle(t *testing.T) {
	s, e := setup(t, domain.ScopeGlobal, false)
	task := mustCreate(t, s, domain.Draft{Title: "call mum"})

	c, err := e.Toggle(domain.Ref{ID: task.ID})
	require.NoError(t, err)
	assert.True(t, c.Task.Done)

	c, err = e.Toggle(domain.Ref{ID: task.ID})
	require.NoError(t, err)
	assert.False(t, c.Task.Done)

	_, err = e.Done(domain.Ref{ID: task.ID})
	require.NoError(t, err)
	_, err = e.Archive(domain.Ref{ID: task.ID})
	require.NoError(t, err)

	_, err = e.Undone(domain.Ref{ID: task.ID})
	assert.True(t, errors.Is(err, todoerrors.Validation), "archived tasks cannot be reopened")
	_, err = e.Toggle(domain.Ref{ID: task.ID})
	assert.True(t, errors.Is(err, todoerrors.Validation))

	_, err = e.Undone(domain.Ref{ID: 99})
	assert.True(t, errors.Is(err, todoerrors.NotFound))
}

func TestArchive(t *testing.T) {
	s, e := setup(t, domain.ScopeGlobal, false)
	open := mustCreate(t, s, domain.Draft{Title: "open"})
	done := mustCreate(t, s, domain.Draft{Title: "done", Branch: "work"})
	_, err := e.Done(domain.Ref{ID: done.ID})
	require.NoError(t, err)

	_, err = e.Archive(domain.Ref{ID: open.ID})
	assert.True(t, errors.Is(err, todoerrors.Validation))

	archived, err := e.ArchiveDone("")
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, done.ID, archived[0].ID)

	for _, task := range s.All() {
		if task.Archived {
			assert.True(t, task.Done, "archived tasks are always completed")
		}
	}

	restored, err := e.Unarchive(domain.Ref{ID: done.ID})
	require.NoError(t, err)
	assert.False(t, restored.Archived)
	assert.True(t, restored.Done)
}

func TestArchiveNeverLeavesOpenArchivedTask(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s, e := setup(t, domain.ScopeGlobal, false)
		n := rapid.IntRange(1, 10).Draw(rt, "n")
		for i := 0; i < n; i++ {
			if _, err := s.Create(domain.Draft{Title: "t"}); err != nil {
				rt.Fatal(err)
			}
		}
		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			ref := domain.Ref{ID: uint64(rapid.IntRange(1, n).Draw(rt, "id"))}
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				_, _ = e.Done(ref)
			case 1:
				_, _ = e.Undone(ref)
			case 2:
				_, _ = e.Archive(ref)
			case 3:
				_, _ = e.Unarchive(ref)
			case 4:
				_, _ = e.ArchiveDone("")
			}
			for _, task := range s.All() {
				if task.Archived && !task.Done {
					rt.Fatalf("task %d archived but open", task.ID)
				}
			}
		}
	})
}

func TestEdit(t *testing.T) {
	s, e := setup(t, domain.ScopeBranch, false)
	mustCreate(t, s, domain.Draft{Title: "existing", Branch: "home"})
	task := mustCreate(t, s, domain.Draft{Title: "paint fence", Tags: []string{"diy"}})

	title := "paint the fence"
	home := "home"
	none := domain.RepeatNone
	weekly := domain.RepeatWeekly
	edited, err := e.Edit(domain.Ref{Branch: "personal", ID: task.ID}, domain.Patch{
		Title:   &title,
		AddTags: []string{"Weekend"},
		Repeat:  &weekly,
		Branch:  &home,
	})
	require.NoError(t, err)
	assert.Equal(t, "paint the fence", edited.Title)
	assert.Equal(t, []string{"diy", "weekend"}, edited.Tags)
	assert.Equal(t, "home", edited.Branch)
	assert.Equal(t, uint64(2), edited.ID, "renumbered in the destination branch")

	_, err = e.Edit(domain.Ref{Branch: "personal", ID: task.ID}, domain.Patch{Repeat: &none})
	assert.True(t, errors.Is(err, todoerrors.NotFound))

	bad := domain.Recurrence("yearly")
	_, err = e.Edit(domain.Ref{Branch: "home", ID: 2}, domain.Patch{Repeat: &bad})
	assert.True(t, errors.Is(err, todoerrors.Validation))
}

func TestDeleteAndClearDone(t *testing.T) {
	s, e := setup(t, domain.ScopeGlobal, false)
	a := mustCreate(t, s, domain.Draft{Title: "a", Branch: "work"})
	b := mustCreate(t, s, domain.Draft{Title: "b", Branch: "work"})
	c := mustCreate(t, s, domain.Draft{Title: "c", Branch: "home"})
	for _, id := range []uint64{a.ID, b.ID, c.ID} {
		_, err := e.Done(domain.Ref{ID: id})
		require.NoError(t, err)
	}
	_, err := e.Archive(domain.Ref{ID: b.ID})
	require.NoError(t, err)

	removed, err := e.ClearDone("work")
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, a.ID, removed[0].ID)
	assert.Len(t, s.All(), 2, "archived and other-branch tasks stay")

	_, err = e.Delete(domain.Ref{ID: c.ID})
	require.NoError(t, err)
	_, err = e.Delete(domain.Ref{ID: c.ID})
	assert.True(t, errors.Is(err, todoerrors.NotFound))
}

func TestBulkOperations(t *testing.T) {
	s, e := setup(t, domain.ScopeGlobal, false)
	mustCreate(t, s, domain.Draft{Title: "fix login bug", Tags: []string{"urgent"}, Branch: "work"})
	mustCreate(t, s, domain.Draft{Title: "fix typo", Branch: "work"})
	mustCreate(t, s, domain.Draft{Title: "daily standup", Tags: []string{"urgent"}, Branch: "work", Repeat: domain.RepeatDaily})
	mustCreate(t, s, domain.Draft{Title: "fix bike", Tags: []string{"urgent"}, Branch: "home"})

	report, err := e.BulkDone(Selector{Branch: "work", Tags: []string{"urgent"}})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Matched)
	assert.Len(t, report.Affected, 2)
	assert.Len(t, report.Spawned, 1)
	assert.NoError(t, report.Err())

	report, err = e.BulkUndone(Selector{Text: "FIX"})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Matched)
	assert.Len(t, report.Affected, 1, "only the completed match changes")

	high := domain.PriorityHigh
	report, err = e.BulkEdit(Selector{Text: "fix"}, domain.Patch{Priority: &high, RemoveTags: []string{"urgent"}})
	require.NoError(t, err)
	assert.Len(t, report.Affected, 3)
	for _, task := range report.Affected {
		assert.Equal(t, domain.PriorityHigh, task.Priority)
		assert.Empty(t, task.Tags)
	}

	_, err = e.BulkEdit(Selector{}, domain.Patch{})
	assert.True(t, errors.Is(err, todoerrors.Validation))

	report, err = e.BulkMove(Selector{Branch: "work", Text: "fix"}, "backlog")
	require.NoError(t, err)
	assert.Len(t, report.Affected, 2)

	report, err = e.BulkDelete(Selector{Text: "nothing matches this"})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Matched, "zero matches is not an error")

	report, err = e.BulkDelete(Selector{Branch: "backlog"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Matched)
	assert.Len(t, s.All(), 3)
}

func TestBulkContinuesAfterItemFailure(t *testing.T) {
	var logs bytes.Buffer
	s := store.New(store.Options{
		Path:   filepath.Join(t.TempDir(), "tasks.json"),
		Clock:  func() time.Time { return now },
		Logger: log.New(log.Config{Level: log.LevelDebug, Output: &logs}),
	})
	e := New(s)
	for _, title := range []string{"water plants", "call plumber", "pay rent"} {
		mustCreate(t, s, domain.Draft{Title: title})
	}

	rejected := errors.New("plumber is not reachable")
	report, err := e.bulk(Selector{}, "shout", func(tx *store.Tx, i int, _ *BulkReport) (bool, error) {
		task := tx.At(i)
		if task.ID == 2 {
			return false, rejected
		}
		task.Title = strings.ToUpper(task.Title)
		tx.Replace(i, task)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Matched)
	assert.Len(t, report.Affected, 2)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, uint64(2), report.Failures[0].TaskID)
	assert.ErrorIs(t, report.Failures[0].Err, rejected)

	var partial *PartialError
	require.ErrorAs(t, report.Err(), &partial)
	assert.Equal(t, 1, partial.Failed)
	assert.Equal(t, 3, partial.Total)
	assert.Equal(t, exitcode.PartialFailure, exitcode.DetermineExitCode(report.Err()))

	var got []string
	for _, task := range s.All() {
		got = append(got, task.Title)
	}
	assert.Equal(t, []string{"WATER PLANTS", "call plumber", "PAY RENT"}, got)

	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "skipped task")
	assert.Contains(t, logs.String(), "op=shout")
	assert.Contains(t, logs.String(), "plumber is not reachable")
}

func TestBulkSkipsArchived(t *testing.T) {
	s, e := setup(t, domain.ScopeGlobal, false)
	task := mustCreate(t, s, domain.Draft{Title: "archived one"})
	_, err := e.Done(domain.Ref{ID: task.ID})
	require.NoError(t, err)
	_, err = e.Archive(domain.Ref{ID: task.ID})
	require.NoError(t, err)

	report, err := e.BulkDelete(Selector{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Matched)
	assert.Len(t, s.All(), 1)
}

func TestBranchMoveRenumbersUnderBranchScope(t *testing.T) {
	s, e := setup(t, domain.ScopeBranch, false)
	mustCreate(t, s, domain.Draft{Title: "w1", Branch: "work"})
	mustCreate(t, s, domain.Draft{Title: "w2", Branch: "work"})
	parent := mustCreate(t, s, domain.Draft{Title: "h1", Branch: "home", Repeat: domain.RepeatDaily})
	_, err := e.Done(domain.Ref{Branch: "home", ID: parent.ID})
	require.NoError(t, err)

	moved, err := e.BranchMove("home", "work")
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	var ids []uint64
	var child domain.Task
	for _, task := range s.All() {
		assert.Equal(t, "work", task.Branch)
		ids = append(ids, task.ID)
		if task.Parent != 0 {
			child = task
		}
	}
	assert.ElementsMatch(t, []uint64{1, 2, 3, 4}, ids)
	assert.Equal(t, uint64(3), child.Parent, "parent link follows the renumbered parent")

	_, err = e.BranchMove("home", "work")
	assert.True(t, errors.Is(err, todoerrors.NotFound), "source no longer exists")
	_, err = e.BranchMove("work", "WORK")
	assert.True(t, errors.Is(err, todoerrors.Validation))
}

func TestBranchMergeGlobalKeepsIDs(t *testing.T) {
	s, e := setup(t, domain.ScopeGlobal, false)
	a := mustCreate(t, s, domain.Draft{Title: "a", Branch: "side"})
	mustCreate(t, s, domain.Draft{Title: "b", Branch: "main"})

	n, err := e.BranchMerge("side", "main")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Get(domain.Ref{ID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, "main", got.Branch)
}

func TestBranchDup(t *testing.T) {
	s, e := setup(t, domain.ScopeGlobal, true)
	parent := mustCreate(t, s, domain.Draft{Title: "weekly review", Branch: "work", Repeat: domain.RepeatWeekly})
	_, err := e.Done(domain.Ref{ID: parent.ID})
	require.NoError(t, err)

	n, err := e.BranchDup("work", "work-copy")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all := s.All()
	require.Len(t, all, 4)
	copyParent, copyChild := all[2], all[3]
	assert.Equal(t, "work-copy", copyParent.Branch)
	assert.NotEqual(t, all[0].UID, copyParent.UID)
	assert.Equal(t, copyParent.ID, copyChild.Parent)
	assert.True(t, copyParent.Done)
	assert.NoError(t, store.ValidateCollection(all, domain.ScopeGlobal))

	_, err = e.BranchDup("missing", "x")
	assert.True(t, errors.Is(err, todoerrors.NotFound))
}

func TestBranchDelete(t *testing.T) {
	s, e := setup(t, domain.ScopeGlobal, false)
	mustCreate(t, s, domain.Draft{Title: "a", Branch: "work"})
	mustCreate(t, s, domain.Draft{Title: "b", Branch: "work"})
	mustCreate(t, s, domain.Draft{Title: "c"})

	_, err := e.BranchDelete("work", false)
	assert.True(t, errors.Is(err, todoerrors.NonEmptyBranch))
	assert.Equal(t, exitcode.BranchNotEmpty, exitcode.DetermineExitCode(err))
	assert.Len(t, s.All(), 3)

	n, err := e.BranchDelete("Work", true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, s.All(), 1)

	n, err = e.BranchDelete("empty", false)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = e.BranchDelete("personal", true)
	assert.True(t, errors.Is(err, todoerrors.Validation))
}

func TestImportCSVBestEffort(t *testing.T) {
	s, e := setup(t, domain.ScopeGlobal, false)
	mustCreate(t, s, domain.Draft{Title: "existing"})

	in := "title,tags,due,branch\n" +
		"Plan sprint,work,2026-02-01,work\n" +
		",home,,\n" +
		"Buy stamps,,,\n"
	records, err := exchange.DecodeCSV(strings.NewReader(in))
	require.NoError(t, err)

	report, err := e.Import(records, ImportOptions{Branch: "inbox"})
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 3, report.Failures[0].Position)
	assert.True(t, errors.Is(report.Failures[0].Err, todoerrors.Validation))
	assert.Len(t, report.Created, 2)

	partial := report.Err()
	require.Error(t, partial)
	assert.Equal(t, exitcode.PartialFailure, exitcode.DetermineExitCode(partial))

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, uint64(2), all[1].ID)
	assert.Equal(t, "work", all[1].Branch)
	assert.Equal(t, "inbox", all[2].Branch)
	assert.Equal(t, now, all[2].CreatedAt)
}

func TestImportMergesByUID(t *testing.T) {
	s, e := setup(t, domain.ScopeGlobal, true)
	orig := mustCreate(t, s, domain.Draft{Title: "draft title"})

	records := []exchange.Record{
		{Position: 1, Task: domain.Task{ID: 40, UID: orig.UID, Title: "final title", Done: true}},
		{Position: 2, Task: domain.Task{ID: 41, Title: "child", Parent: 40}},
	}
	report, err := e.Import(records, ImportOptions{Merge: true})
	require.NoError(t, err)
	assert.Len(t, report.Updated, 1)
	assert.Len(t, report.Created, 1)

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, orig.ID, all[0].ID)
	assert.Equal(t, "final title", all[0].Title)
	assert.True(t, all[0].Done)
	assert.Equal(t, orig.ID, all[1].Parent, "parent remapped to the merged task")

	// Without merge the same uid is not duplicated.
	report, err = e.Import(records[:1], ImportOptions{})
	require.NoError(t, err)
	require.Len(t, report.Created, 1)
	assert.NotEqual(t, orig.UID, report.Created[0].UID)
	assert.NoError(t, store.ValidateCollection(s.All(), domain.ScopeGlobal))
}

func TestExportImportRoundTrip(t *testing.T) {
	src, e := setup(t, domain.ScopeBranch, false)
	parent := mustCreate(t, src, domain.Draft{Title: "water plants", Tags: []string{"home"}, Repeat: domain.RepeatWeekly,
		Due: domain.NewDate(2026, 1, 20), Priority: domain.PriorityLow, Branch: "home", Content: "balcony too"})
	_, err := e.Done(domain.Ref{Branch: "home", ID: parent.ID})
	require.NoError(t, err)
	mustCreate(t, src, domain.Draft{Title: "ship release", Branch: "work", Priority: domain.PriorityHigh})
	_, err = e.ArchiveDone("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exchange.Export(&buf, src.All(), exchange.FormatJSON))
	records, err := exchange.DecodeJSON(&buf)
	require.NoError(t, err)

	dst, de := setup(t, domain.ScopeBranch, false)
	report, err := de.Import(records, ImportOptions{})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	want, got := src.All(), dst.All()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i], got[i], "record %d", i)
	}
}
