// Package logger provides verbose logging for the ingesta CLI.
// A Logger is constructed once and handed to the services that need
// it, so tests can capture output and libraries never write to a
// global. When verbose mode is off only warnings are printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger writes leveled messages to a single writer.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// New creates a logger writing to w. Debug and Info are emitted only
// when verbose is true; Warn is always emitted.
func New(w io.Writer, verbose bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{out: w, verbose: verbose}
}

// Discard returns a logger that drops everything. Handy default for
// tests and for callers that pass no logger.
func Discard() *Logger {
	return &Logger{out: io.Discard}
}

// IsVerbose returns true if verbose mode is enabled.
func (l *Logger) IsVerbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose
}

// Debug prints a message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.verbose {
		fmt.Fprintf(l.out, "[DEBUG] "+format+"\n", args...)
	}
}

// Info prints an informational message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.verbose {
		fmt.Fprintf(l.out, "[INFO] "+format+"\n", args...)
	}
}

// Warn prints a warning message regardless of verbosity.
func (l *Logger) Warn(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[WARN] "+format+"\n", args...)
}

// Section prints a section header if verbose mode is enabled.
func (l *Logger) Section(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.verbose {
		fmt.Fprintf(l.out, "\n=== %s ===\n", name)
	}
}
