package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/todo/internal/domain"
)

var testNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

// cli runs commands against a temporary data directory.
type cli struct {
	t    *testing.T
	home string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TODO_HOME", home)
	t.Setenv("NO_COLOR", "1")

	prev := clock
	clock = func() time.Time { return testNow }
	t.Cleanup(func() {
		clock = prev
		resetFlags(rootCmd)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return &cli{t: t, home: home}
}

// run executes args and returns everything written to stdout and stderr.
func (c *cli) run(args ...string) (string, error) {
	return c.runInput("", args...)
}

func (c *cli) runInput(input string, args ...string) (string, error) {
	c.t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := ExecuteArgs(context.Background(), args)
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "todo %s\n%s", strings.Join(args, " "), out)
	return out
}

// tasks lists with --format json and decodes the result.
func (c *cli) tasks(args ...string) []domain.Task {
	c.t.Helper()
	out := c.mustRun(append(args, "--format", "json")...)
	var tasks []domain.Task
	require.NoError(c.t, json.Unmarshal([]byte(out), &tasks), out)
	return tasks
}

// resetFlags restores every flag to its default. Flag values live in
// package variables and survive between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}
