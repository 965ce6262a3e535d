package log

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"

	"github.com/felixgeelhaar/todo/internal/errors"
	"github.com/felixgeelhaar/todo/internal/exitcode"
)

// Logger provides structured logging with slog
type Logger struct {
	slog   *slog.Logger
	config Config
}

// New creates a new Logger with the given configuration
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     config.Level.ToSlogLevel(),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(config.Output, opts)
	default:
		handler = slog.NewTextHandler(config.Output, opts)
	}

	logger := slog.New(handler)
	if config.ServiceName != "" {
		logger = logger.With("service", config.ServiceName)
	}
	if config.ServiceVersion != "" {
		logger = logger.With("version", config.ServiceVersion)
	}

	return &Logger{
		slog:   logger,
		config: config,
	}
}

// Default creates a logger with default configuration
func Default() *Logger {
	return New(DefaultConfig())
}

// With returns a new Logger with the given attributes added to all log entries
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:   l.slog.With(args...),
		config: l.config,
	}
}

// WithGroup returns a new Logger with a group name that prefixes all attributes
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{
		slog:   l.slog.WithGroup(name),
		config: l.config,
	}
}

// WithError adds error details to the logger.
// A TodoError anywhere in the chain contributes its code and kind.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.With(errorAttrs(err)...)
}

func errorAttrs(err error) []any {
	var todoErr *errors.TodoError
	if !stderrors.As(err, &todoErr) {
		return []any{"error", err.Error()}
	}

	args := []any{
		"error", todoErr.Message,
		"error_code", string(todoErr.Code),
		"error_kind", string(todoErr.Kind()),
	}
	if todoErr.Cause != nil {
		args = append(args, "cause", todoErr.Cause.Error())
	}
	return args
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// CommandFailed records a failed command. Data and I/O failures are logged at
// error level and partial failures at warn. Mistakes in the command line are
// already shown to the user, so they only appear at debug level.
func (l *Logger) CommandFailed(command string, err error) {
	if err == nil {
		return
	}
	fl := l.WithError(err)
	if stderrors.Is(err, context.Canceled) {
		fl.Debug("command cancelled", "command", command)
		return
	}
	switch exitcode.DetermineExitCode(err) {
	case exitcode.PartialFailure:
		fl.Warn("command partially failed", "command", command)
	case exitcode.UsageError, exitcode.NotFound, exitcode.BranchNotEmpty:
		fl.Debug("command failed", "command", command)
	default:
		fl.Error("command failed", "command", command)
	}
}
