package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with a component name
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
	// Output defaults to stderr so command output on stdout stays clean.
	Output io.Writer
}

func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
	}
}

// New creates a new logger with the given configuration
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		out := config.Output
		if out == nil {
			out = os.Stderr
		}
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{
			Level: config.Level,
		})
	}

	return &Logger{
		Logger:    slog.New(handler).With(FieldComponent, config.Component),
		component: config.Component,
	}
}

// With returns a new logger with the given attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

// WithComponent returns a child logger tagged with a different component.
// The underlying handler and its attributes are shared.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With(FieldComponent, component),
		component: component,
	}
}

// Slog returns the plain *slog.Logger for libraries that accept one.
func (l *Logger) Slog() *slog.Logger {
	return l.Logger
}

func (l *Logger) Component() string {
	return l.component
}

// SetDefault sets the default logger for the application
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger stored by NewContext, falling back to
// slog.Default tagged as "unknown".
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}
