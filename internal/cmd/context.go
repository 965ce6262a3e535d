package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/todo/internal/config"
	"github.com/felixgeelhaar/todo/internal/domain"
	"github.com/felixgeelhaar/todo/internal/log"
	"github.com/felixgeelhaar/todo/internal/mutate"
	"github.com/felixgeelhaar/todo/internal/query"
	"github.com/felixgeelhaar/todo/internal/render"
	"github.com/felixgeelhaar/todo/internal/store"
	"github.com/felixgeelhaar/todo/internal/tui"
	"github.com/felixgeelhaar/todo/internal/version"
)

// clock is the time source of every command.
var clock = time.Now

// CommandContext holds everything a command needs: the resolved environment,
// the persisted state, the loaded store with its engines and the command's
// streams. Commands build one in RunE:
//
//	cc, err := NewCommandContext(cmd)
//	if err != nil {
//		return err
//	}
type CommandContext struct {
	Env    *config.Environment
	State  *config.State
	Store  *store.Store
	Query  *query.Engine
	Mutate *mutate.Engine
	Log    *log.Logger

	In  io.Reader
	Out io.Writer
	Err io.Writer

	ctx     context.Context
	noColor bool
}

// NewCommandContext resolves the environment, configures logging and loads
// the state and task files.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	env, err := config.LoadEnvironment(config.EnvOptions{
		Home:     globalOpts.home,
		LogLevel: globalOpts.logLevel,
	})
	if err != nil {
		return nil, err
	}

	logCfg := env.LogConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logCfg.ServiceVersion = version.GetInfo().Short()
	logger := log.New(logCfg)
	log.SetDefaultLogger(logger)

	state, err := config.Load(env.StatePath())
	if err != nil {
		return nil, err
	}

	st, err := store.Open(store.Options{
		Path:    env.TasksPath(),
		IDScope: state.Config.IDScope,
		UseUUID: state.Config.UseUUID,
		Clock:   clock,
		Logger:  logger.WithGroup("store"),
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded tasks", "path", st.Path(), "count", len(st.All()), "branch", state.CurrentBranch)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return &CommandContext{
		Env:     env,
		State:   state,
		Store:   st,
		Query:   query.New(st, clock),
		Mutate:  mutate.New(st),
		Log:     logger,
		In:      cmd.InOrStdin(),
		Out:     cmd.OutOrStdout(),
		Err:     cmd.ErrOrStderr(),
		ctx:     ctx,
		noColor: globalOpts.noColor,
	}, nil
}

// Context returns the command's context.
func (c *CommandContext) Context() context.Context {
	return c.ctx
}

// Today returns the current calendar day.
func (c *CommandContext) Today() domain.Date {
	return c.Query.Today()
}

// Color reports whether output may be styled.
func (c *CommandContext) Color() bool {
	if c.noColor || !c.State.Config.Color {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return tui.IsTerminal(c.Out)
}

// Printer returns a printer for the command output.
func (c *CommandContext) Printer(showBranch bool) *render.Printer {
	return render.New(c.Out, render.Options{
		Color:      c.Color(),
		Today:      c.Today(),
		ShowBranch: showBranch,
	})
}

// Branch returns the normalized flag value, or the current branch when the
// flag is empty.
func (c *CommandContext) Branch(flag string) string {
	if flag != "" {
		return domain.NormalizeBranch(flag)
	}
	return c.State.CurrentBranch
}

// Scope returns the branch a multi-branch command covers: every branch when
// all is set, otherwise Branch(flag).
func (c *CommandContext) Scope(flag string, all bool) string {
	if all {
		return ""
	}
	return c.Branch(flag)
}

// Ref parses a task reference in branch.
func (c *CommandContext) Ref(arg, branch string) (domain.Ref, error) {
	return domain.ParseRef(arg, c.Branch(branch))
}

// Persist writes the task file when it changed.
func (c *CommandContext) Persist() error {
	return c.Store.Persist()
}

// SaveState writes state.json.
func (c *CommandContext) SaveState() error {
	if err := c.State.Save(); err != nil {
		return err
	}
	c.Log.Debug("saved state", "path", c.State.Path())
	return nil
}
