package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/todo/internal/config"
	"github.com/felixgeelhaar/todo/internal/domain"
	"github.com/felixgeelhaar/todo/internal/store"
	"github.com/felixgeelhaar/todo/internal/ux"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg"},
	Short:   "View or change settings",
	Long: `Settings are stored in state.json in the data directory.

Keys:
  default_sort    due, priority, created or id
  default_desc    sort descending by default (true/false)
  color           colored output (true/false)
  reminder_days   days ahead covered by 'todo reminders'
  id_scope        global (ids unique across branches) or branch
  use_uuid        give new tasks a uid (true/false)
  current_branch  read-only, change it with 'todo branch <name>'

Examples:
  todo config view
  todo config get default_sort
  todo config set default_sort priority
  todo config path`,
	Args: cobra.NoArgs,
	RunE: runConfigView,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display every setting",
	Args:  cobra.NoArgs,
	RunE:  runConfigView,
}

var configGetCmd = &cobra.Command{
	Use:       "get <key>",
	Short:     "Print one setting",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys(),
	RunE:      runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show where tasks and settings are stored",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configFormat string

func init() {
	configCmd.PersistentFlags().StringVar(&configFormat, "format", ux.FormatText, "output format: text, json, yaml")

	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

// settingsView is the output of config view.
type settingsView struct {
	CurrentBranch string          `json:"current_branch" yaml:"current_branch"`
	Config        config.Settings `json:"config" yaml:"config"`
	state         *config.State
}

func (v settingsView) WriteText(w io.Writer) error {
	for _, key := range config.Keys() {
		value, err := v.state.Get(key)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%-15s %s\n", key, value); err != nil {
			return err
		}
	}
	return nil
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	f, err := ux.NewFormatter(configFormat, cc.Out)
	if err != nil {
		return err
	}
	return f.Format(settingsView{
		CurrentBranch: cc.State.CurrentBranch,
		Config:        cc.State.Config,
		state:         cc.State,
	})
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	value, err := cc.State.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cc.Out, value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	if strings.EqualFold(strings.TrimSpace(key), config.KeyIDScope) {
		scope, err := domain.ParseIDScope(value)
		if err != nil {
			return err
		}
		// Per-branch ids may collide across branches.
		if scope == domain.ScopeGlobal {
			if err := store.ValidateCollection(cc.Store.All(), scope); err != nil {
				return fmt.Errorf("cannot switch to global ids: %w", err)
			}
		}
	}

	if err := cc.State.Set(key, value); err != nil {
		return err
	}
	if err := cc.SaveState(); err != nil {
		return err
	}

	current, _ := cc.State.Get(key)
	cc.Printer(false).Success("Set %s = %s", key, current)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	f, err := ux.NewFormatter(configFormat, cc.Out)
	if err != nil {
		return err
	}
	return f.Format(pathsView{
		Home:     cc.Env.Home,
		Tasks:    cc.Env.TasksPath(),
		State:    cc.Env.StatePath(),
		Settings: cc.Env.SettingsFile,
	})
}

type pathsView struct {
	Home     string `json:"home" yaml:"home"`
	Tasks    string `json:"tasks" yaml:"tasks"`
	State    string `json:"state" yaml:"state"`
	Settings string `json:"settings,omitempty" yaml:"settings,omitempty"`
}

func (v pathsView) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "home:  %s\ntasks: %s\nstate: %s\n", v.Home, v.Tasks, v.State)
	if err == nil && v.Settings != "" {
		_, err = fmt.Fprintf(w, "settings: %s\n", v.Settings)
	}
	return err
}
