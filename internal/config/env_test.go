package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
	"github.com/felixgeelhaar/todo/internal/log"
)

func TestLoadEnvironmentFlagHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TODO_HOME", filepath.Join(home, "ignored"))
	t.Setenv("TODO_LOG_LEVEL", "")

	env, err := LoadEnvironment(EnvOptions{Home: home})
	require.NoError(t, err)
	assert.Equal(t, home, env.Home)
	assert.Equal(t, filepath.Join(home, "tasks.json"), env.TasksPath())
	assert.Equal(t, filepath.Join(home, "state.json"), env.StatePath())
	assert.Equal(t, log.LevelWarn, env.LogLevel)
	assert.Equal(t, log.FormatText, env.LogFormat)
	assert.Empty(t, env.SettingsFile)
}

func TestLoadEnvironmentFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TODO_HOME", home)
	t.Setenv("TODO_LOG_LEVEL", "debug")
	t.Setenv("TODO_LOG_FORMAT", "json")

	env, err := LoadEnvironment(EnvOptions{})
	require.NoError(t, err)
	assert.Equal(t, home, env.Home)
	assert.Equal(t, log.LevelDebug, env.LogLevel)
	assert.Equal(t, log.FormatJSON, env.LogFormat)
	assert.Equal(t, log.LevelDebug, env.LogConfig().Level)
	assert.True(t, env.LogConfig().AddSource, "debug logs carry source locations")
}

func TestLoadEnvironmentSettingsFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TODO_LOG_LEVEL", "")
	t.Setenv("TODO_LOG_FORMAT", "")
	require.NoError(t, os.WriteFile(filepath.Join(home, "settings.yaml"), []byte("log:\n  level: info\n  format: json\n"), 0o644))

	env, err := LoadEnvironment(EnvOptions{Home: home})
	require.NoError(t, err)
	assert.Equal(t, log.LevelInfo, env.LogLevel)
	assert.Equal(t, log.FormatJSON, env.LogFormat)
	assert.Equal(t, filepath.Join(home, "settings.yaml"), env.SettingsFile)

	env, err = LoadEnvironment(EnvOptions{Home: home, LogLevel: "error"})
	require.NoError(t, err)
	assert.Equal(t, log.LevelError, env.LogLevel, "flag wins over the settings file")
}

func TestLoadEnvironmentInvalid(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TODO_LOG_LEVEL", "")

	_, err := LoadEnvironment(EnvOptions{Home: home, LogLevel: "loud"})
	assert.True(t, errors.Is(err, todoerrors.Validation))

	require.NoError(t, os.WriteFile(filepath.Join(home, "settings.yaml"), []byte("log: [unclosed\n"), 0o644))
	_, err = LoadEnvironment(EnvOptions{Home: home})
	assert.True(t, errors.Is(err, todoerrors.CorruptData))
}
