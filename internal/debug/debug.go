// Package debug provides opt-in development logging for BioExplorer.
//
// Logging is off until Enable is called. Records are written as slog text
// lines so they can be tailed while the TUI owns the terminal.
package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	logger  *slog.Logger
	logFile *os.File
	logPath string
	mu      sync.Mutex
)

// Enable turns on debug logging to the specified file.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	logFile = f
	logPath = path
	logger = newLogger(f)
	logger.Info("debug session started", "time", time.Now().Format(time.RFC3339), "file", path)
	return nil
}

// EnableWriter turns on debug logging to w. Used by tests.
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	logger = newLogger(w)
	logPath = ""
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Disable turns off debug logging and closes the file.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	logger = nil
}

// IsEnabled returns whether debug logging is enabled.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return logger != nil
}

// LogPath returns the path to the log file.
func LogPath() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Log writes a debug message if logging is enabled.
func Log(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		return
	}
	logger.Debug(fmt.Sprintf(format, args...))
}

// Event logs an event with component context.
func Event(component, eventType, details string) {
	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		return
	}
	logger.Debug(eventType, "component", component, "details", details)
}

// Error logs an error with context.
func Error(component string, err error, context string) {
	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		return
	}
	logger.Error(context, "component", component, "err", err)
}
