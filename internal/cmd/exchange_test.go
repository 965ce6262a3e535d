package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/todo/internal/exitcode"
)

func TestExportImportRoundTrip(t *testing.T) {
	c := newCLI(t)
	c.mustRun("create", "Pay rent", "--due", "2026-04-01", "--repeat", "monthly", "--tag", "bills")
	c.mustRun("create", "Standup", "-b", "work", "-p", "medium")
	c.mustRun("create", "Old thing")
	c.mustRun("done", "3")

	backup := filepath.Join(t.TempDir(), "backup.json")
	out := c.mustRun("export", "--all", "--all-branches", "--output", backup)
	assert.Contains(t, out, "Exported 3 tasks")

	other := newCLI(t)
	out = other.mustRun("import", backup)
	assert.Contains(t, out, "imported 3 tasks (3 new, 0 updated) from 3 records")

	all := other.tasks("list", "--all", "--all-branches", "--sort", "created")
	assert.ElementsMatch(t, []string{"Pay rent", "Standup", "Old thing"}, titles(all))
	for _, task := range all {
		if task.Title == "Standup" {
			assert.Equal(t, "work", task.Branch)
		}
		if task.Title == "Old thing" {
			assert.True(t, task.Done)
		}
	}
}

func TestExportFormats(t *testing.T) {
	c := newCLI(t)
	c.mustRun("create", "Call bank", "--tag", "money")

	out := c.mustRun("export", "--format", "markdown")
	assert.Contains(t, out, "- [ ] Call bank")

	out = c.mustRun("export", "-f", "csv")
	assert.Contains(t, out, "uid,title,content,tags")
	assert.Contains(t, out, "Call bank")

	out = c.mustRun("export", "-f", "yaml")
	assert.Contains(t, out, "title: Call bank")

	_, err := c.run("export", "-f", "xml")
	require.Error(t, err)
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
}

func TestImportCSVPartialFailure(t *testing.T) {
	c := newCLI(t)
	file := filepath.Join(t.TempDir(), "tasks.csv")
	data := "title,due,priority,tags\n" +
		"Renew passport,2026-06-01,high,\"docs,travel\"\n" +
		",2026-06-02,,\n" +
		"Book flights,,bogus,\n" +
		"Pack bags,,,\n"
	require.NoError(t, os.WriteFile(file, []byte(data), 0o600))

	out, err := c.run("import", file, "--branch", "trip")
	require.Error(t, err)
	assert.Equal(t, exitcode.PartialFailure, exitcode.DetermineExitCode(err))
	assert.Contains(t, out, "imported 2 tasks")
	assert.Contains(t, out, "skipped import record", "skipped rows are logged as warnings")

	imported := c.tasks("list", "-b", "trip", "--sort", "id")
	assert.Equal(t, []string{"Renew passport", "Pack bags"}, titles(imported))
	assert.Equal(t, []string{"docs", "travel"}, imported[0].Tags)
}

func TestImportRejectsUnsupportedFormat(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("import", "tasks.md", "--format", "markdown")
	require.Error(t, err)
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))

	_, err = c.run("import", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, exitcode.IOError, exitcode.DetermineExitCode(err))
}
