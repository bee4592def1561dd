package logger

import (
	"io"
	"log/slog"
	"os"
)

// StdLogger routes the ports.Logger contract onto a slog text handler.
type StdLogger struct {
	logger *slog.Logger
}

// NewStd creates a StdLogger on stderr. Verbose enables debug output; otherwise
// only warnings and errors are written.
func NewStd(verbose bool) *StdLogger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return New(os.Stderr, level)
}

// NewLevel creates a StdLogger on stderr at an explicit level.
func NewLevel(level slog.Level) *StdLogger {
	return New(os.Stderr, level)
}

// New creates a StdLogger writing to w at the given minimum level.
func New(w io.Writer, level slog.Level) *StdLogger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &StdLogger{logger: slog.New(handler)}
}

// Nop discards everything.
func Nop() *StdLogger {
	return New(io.Discard, slog.LevelError+1)
}

// Slog exposes the underlying logger for adapters that take *slog.Logger.
func (l *StdLogger) Slog() *slog.Logger {
	return l.logger
}

func (l *StdLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, attrs(fields)...)
}

func (l *StdLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, attrs(fields)...)
}

func (l *StdLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, attrs(fields)...)
}

func (l *StdLogger) Error(msg string, err error, fields map[string]interface{}) {
	args := attrs(fields)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	l.logger.Error(msg, args...)
}

func attrs(fields map[string]interface{}) []any {
	if len(fields) == 0 {
		return nil
	}
	args := make([]any, 0, len(fields))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return args
}
