package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/todo/internal/config"
	"github.com/felixgeelhaar/todo/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "Local-first task manager with branches",
	Long: `todo keeps your tasks in a JSON file on your machine.

Tasks live in branches (personal, work, ...) and carry tags, due dates,
priorities and repeat rules. Completed tasks can be archived, whole branches
moved, merged or duplicated, and everything exported to JSON, Markdown,
text, YAML or CSV.

Examples:
  todo add "Call bank" --due tomorrow --priority high --tag money
  todo list --group-by due-day
  todo done 3
  todo branch work`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var globalOpts struct {
	noColor  bool
	home     string
	logLevel string
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&globalOpts.noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&globalOpts.home, "home", "", "data directory (default $TODO_HOME or <user config dir>/todo)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the process arguments under ctx.
func ExecuteContext(ctx context.Context) error {
	return ExecuteArgs(ctx, os.Args[1:])
}

// ExecuteArgs runs the root command with args (without the program name).
// A first argument naming a saved command is replaced by its stored
// arguments.
func ExecuteArgs(ctx context.Context, args []string) error {
	expanded := expandSaved(args)
	rootCmd.SetArgs(expanded)
	err := rootCmd.ExecuteContext(ctx)
	log.DefaultLogger().CommandFailed(strings.Join(expanded, " "), err)
	return err
}

// expandSaved resolves a leading saved command. Any failure to read the
// state leaves args unchanged; the command itself reports it.
func expandSaved(args []string) []string {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") || isReserved(strings.ToLower(args[0])) {
		return args
	}
	env, err := config.LoadEnvironment(config.EnvOptions{Home: homeFromArgs(args)})
	if err != nil {
		return args
	}
	state, err := config.Load(env.StatePath())
	if err != nil {
		return args
	}
	return state.Expand(args, isReserved)
}

// homeFromArgs finds a --home value before cobra has parsed the flags.
func homeFromArgs(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if v, ok := strings.CutPrefix(a, "--home="); ok {
			return v
		}
		if a == "--home" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// isReserved reports whether name is a built-in command or alias.
func isReserved(name string) bool {
	switch strings.ToLower(name) {
	case "help", "completion", "version",
		strings.ToLower(cobra.ShellCompRequestCmd), strings.ToLower(cobra.ShellCompNoDescRequestCmd):
		return true
	}
	for _, c := range rootCmd.Commands() {
		if strings.EqualFold(c.Name(), name) {
			return true
		}
		for _, alias := range c.Aliases {
			if strings.EqualFold(alias, name) {
				return true
			}
		}
	}
	return false
}
