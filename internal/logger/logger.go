// Package logger provides verbose logging for hirescope.
// When verbose mode is enabled via the --verbose flag, debug messages
// are written to stderr through a log/slog text handler so operators can
// follow the indexing and scoring pipeline.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	base              = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = newLogger(w)
}

// Slog returns the underlying structured logger.
func Slog() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func log(level slog.Level, force bool, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose || force {
		base.Log(context.Background(), level, fmt.Sprintf(format, args...))
	}
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	log(slog.LevelDebug, false, format, args...)
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	log(slog.LevelInfo, false, format, args...)
}

// Warn logs a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	log(slog.LevelWarn, false, format, args...)
}

// Error logs an error message regardless of verbose mode.
func Error(format string, args ...any) {
	log(slog.LevelError, true, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// PoolLogger adapts the package logger to worker pool libraries that
// expect a Printf method.
type PoolLogger struct{}

// Printf logs at debug level.
func (PoolLogger) Printf(format string, args ...any) {
	Debug(format, args...)
}
