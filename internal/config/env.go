package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
	"github.com/felixgeelhaar/todo/internal/log"
)

// File names inside the home directory.
const (
	TasksFile    = "tasks.json"
	StateFile    = "state.json"
	SettingsFile = "settings"
)

// EnvOptions carry command-line overrides. Empty fields are not applied.
type EnvOptions struct {
	Home     string
	LogLevel string
}

// Environment describes where data lives and how the process logs. Values
// come from flags, then TODO_* environment variables, then settings.yaml in
// the home directory, then defaults.
type Environment struct {
	Home      string
	LogLevel  log.Level
	LogFormat log.Format

	// SettingsFile is the settings file that was read, if any.
	SettingsFile string
}

// LoadEnvironment resolves the environment.
func LoadEnvironment(opts EnvOptions) (*Environment, error) {
	v := viper.New()
	v.SetEnvPrefix("TODO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("home", defaultHome())
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	if opts.Home != "" {
		v.Set("home", opts.Home)
	}
	home, err := expandHome(v.GetString("home"))
	if err != nil {
		return nil, err
	}

	v.AddConfigPath(home)
	v.SetConfigName(SettingsFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, todoerrors.NewCorruptFileError(todoerrors.ErrCodeStateCorrupt,
				filepath.Join(home, SettingsFile+".yaml"), err)
		}
	}

	if opts.LogLevel != "" {
		v.Set("log.level", opts.LogLevel)
	}
	levelName := v.GetString("log.level")
	level, ok := log.ParseLevel(levelName)
	if !ok {
		return nil, todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig,
			"invalid log level %q", levelName).
			WithSuggestion("Use one of: debug, info, warn, error")
	}

	return &Environment{
		Home:         home,
		LogLevel:     level,
		LogFormat:    log.ParseFormat(v.GetString("log.format")),
		SettingsFile: v.ConfigFileUsed(),
	}, nil
}

// TasksPath returns the task collection file.
func (e *Environment) TasksPath() string {
	return filepath.Join(e.Home, TasksFile)
}

// StatePath returns the state file.
func (e *Environment) StatePath() string {
	return filepath.Join(e.Home, StateFile)
}

// LogConfig returns the logger configuration for the environment.
func (e *Environment) LogConfig() log.Config {
	cfg := log.DefaultConfig()
	if e.LogLevel == log.LevelDebug {
		cfg = log.DevelopmentConfig()
	}
	cfg.Level = e.LogLevel
	cfg.Format = e.LogFormat
	return cfg
}

func defaultHome() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".todo"
	}
	return filepath.Join(dir, "todo")
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", todoerrors.Wrap(todoerrors.ErrCodeInvalidConfig, "cannot expand ~ in home directory", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
