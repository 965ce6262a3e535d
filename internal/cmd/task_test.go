package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/todo/internal/domain"
	"github.com/felixgeelhaar/todo/internal/exitcode"
)

func TestCreateListAndCompleteRecurring(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("create", "Pay", "rent", "--due", "2026-03-10", "--repeat", "monthly", "-p", "high", "--tag", "Bills,home")
	assert.Contains(t, out, "Created task #1")
	assert.Contains(t, out, "Pay rent")

	tasks := c.tasks("list")
	require.Len(t, tasks, 1)
	assert.Equal(t, "Pay rent", tasks[0].Title)
	assert.Equal(t, []string{"bills", "home"}, tasks[0].Tags)
	assert.Equal(t, domain.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, domain.DefaultBranch, tasks[0].Branch)

	out = c.mustRun("done", "1")
	assert.Contains(t, out, "Completed task #1")
	assert.Contains(t, out, "next:")

	open := c.tasks("list")
	require.Len(t, open, 1)
	assert.Equal(t, uint64(2), open[0].ID)
	assert.Equal(t, uint64(1), open[0].Parent)
	assert.Equal(t, "2026-04-10", open[0].Due.String())

	done := c.tasks("list-done")
	require.Len(t, done, 1)
	assert.Equal(t, uint64(1), done[0].ID)

	out = c.mustRun("done", "1")
	assert.Contains(t, out, "already done")
	assert.Len(t, c.tasks("list", "--all"), 2, "completing twice must not spawn again")
}

func TestCreateRejectsInvalidValues(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("create", "x", "--due", "someday")
	require.Error(t, err)
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))

	_, err = c.run("create", "x", "--priority", "urgent")
	require.Error(t, err)

	_, err = c.run("create", "x", "--repeat", "hourly")
	require.Error(t, err)

	assert.Empty(t, c.tasks("list", "--all"))
}

func TestEditFlagsSetAndClear(t *testing.T) {
	c := newCLI(t)
	c.mustRun("create", "Water plants", "--due", "tomorrow", "-p", "low", "--tag", "garden")

	c.mustRun("edit", "1", "--title", "Water all plants", "--tag", "weekly", "--remove-tag", "garden")
	got := c.tasks("list")[0]
	assert.Equal(t, "Water all plants", got.Title)
	assert.Equal(t, []string{"weekly"}, got.Tags)
	assert.Equal(t, "2026-03-11", got.Due.String())

	c.mustRun("edit", "1", "--due", "-", "--priority", "-")
	got = c.tasks("list")[0]
	assert.True(t, got.Due.IsZero())
	assert.False(t, got.Priority.IsSet())

	c.mustRun("edit", "1", "--branch", "home")
	assert.Empty(t, c.tasks("list"))
	moved := c.tasks("list", "--branch", "home")
	require.Len(t, moved, 1)
	assert.Equal(t, "home", moved[0].Branch)
}

func TestEditInteractive(t *testing.T) {
	c := newCLI(t)
	c.mustRun("create", "Buy milk")

	// title, branch, content, tags, due, priority, repeat, confirm
	out, err := c.runInput("Buy oat milk\n\n\nshop\n\nbogus\nhigh\n\ny\n", "edit", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Updated task #1")

	got := c.tasks("list")[0]
	assert.Equal(t, "Buy oat milk", got.Title)
	assert.Equal(t, []string{"shop"}, got.Tags)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
}

func TestEditInteractiveAbortChangesNothing(t *testing.T) {
	c := newCLI(t)
	c.mustRun("create", "Buy milk")

	out, err := c.runInput("Something else\n", "edit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Edit aborted")
	assert.Equal(t, "Buy milk", c.tasks("list")[0].Title)
}

func TestUndoneToggleDeleteClear(t *testing.T) {
	c := newCLI(t)
	c.mustRun("create", "one")
	c.mustRun("create", "two")
	c.mustRun("create", "three")

	c.mustRun("toggle", "1")
	c.mustRun("done", "2")
	c.mustRun("undone", "2")
	assert.Equal(t, []string{"two", "three"}, titles(c.tasks("list", "--sort", "id")))

	out := c.mustRun("delete", "3")
	assert.Contains(t, out, "Deleted task #3")

	out = c.mustRun("clear")
	assert.Contains(t, out, "Cleared 1 completed tasks")
	assert.Equal(t, []string{"two"}, titles(c.tasks("list", "--all")))

	_, err := c.run("done", "42")
	require.Error(t, err)
	assert.Equal(t, exitcode.NotFound, exitcode.DetermineExitCode(err))
}

func TestArchive(t *testing.T) {
	c := newCLI(t)
	c.mustRun("create", "old")
	c.mustRun("create", "open")

	_, err := c.run("archive", "2")
	require.Error(t, err, "open tasks cannot be archived")

	_, err = c.run("archive")
	require.Error(t, err)

	c.mustRun("done", "1")
	c.mustRun("archive", "--done")
	assert.Empty(t, c.tasks("list-done"))

	archived := c.tasks("list", "--all", "--archived")
	require.Len(t, archived, 2)

	c.mustRun("unarchive", "1")
	assert.Len(t, c.tasks("list-done"), 1)
}

func TestSearchAndViewAndSplitDue(t *testing.T) {
	c := newCLI(t)
	c.mustRun("create", "Call bank", "--content", "about the loan", "--due", "2026-03-12")
	c.mustRun("create", "Write report")

	assert.Equal(t, []string{"Call bank"}, titles(c.tasks("search", "LOAN")))

	out := c.mustRun("view", "1", "--format", "json")
	assert.Contains(t, out, `"title": "Call bank"`)

	out = c.mustRun("split-due", "--format", "json")
	assert.Contains(t, out, `"label"`)
	assert.Contains(t, out, "Write report")
}
