// Package logging provides structured debug logging for grocer components.
// All components of one run append to a single file under <dataDir>/logs/,
// keyed by a per-run id, so an interactive invocation can be reconstructed
// after the fact without polluting the terminal.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger writes timestamped, component-tagged entries to the run's log file.
// All log methods write unconditionally; there is no level filtering.
type Logger struct {
	runID     string
	component string
	file      *os.File
	mu        sync.Mutex
	logPath   string
	closeOnce sync.Once
}

var (
	// runID identifies this process invocation across all components.
	runID     string
	runIDOnce sync.Once
)

func getRunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

// New creates a logger for a component, writing to
// <dataDir>/logs/<run-id>-grocer.log. The data dir is passed in explicitly;
// this package never consults the environment.
//
// If the log directory or file cannot be created, a fallback logger writing
// to stderr is returned along with the error, so callers keep a usable
// logger either way.
func New(dataDir, component string) (*Logger, error) {
	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return newFallbackLogger(component), fmt.Errorf("failed to create log directory: %w", err)
	}

	id := getRunID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-grocer.log", id))

	// Append mode: multiple components share the run's file.
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return newFallbackLogger(component), fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{
		runID:     id,
		component: component,
		file:      file,
		logPath:   logPath,
	}, nil
}

// newFallbackLogger creates a logger that writes to stderr when file logging
// is unavailable.
func newFallbackLogger(component string) *Logger {
	return &Logger{
		runID:     getRunID(),
		component: component,
	}
}

func (l *Logger) write(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	entry := fmt.Sprintf("[%s] [%s] [%s] %s\n", timestamp, l.component, level, fmt.Sprintf(format, v...))
	if l.file != nil {
		l.file.WriteString(entry)
		return
	}
	os.Stderr.WriteString(entry)
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }

// Infof logs an info-level message.
func (l *Logger) Infof(format string, v ...interface{}) { l.write("INFO", format, v...) }

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) { l.write("WARN", format, v...) }

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// RunID returns the id shared by every logger of this process invocation.
func (l *Logger) RunID() string {
	return l.runID
}

// LogPath returns the path of the log file, or empty in fallback mode.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
