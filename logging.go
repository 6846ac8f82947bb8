// logging.go: Pluggable logging with diagnostic-log fallback
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import (
	"fmt"
	"strings"
	"sync"
)

// Logger defines the pluggable logging interface used by the plugin.
//
// The host hands one of these to SetupLogger; the plugin also builds its own
// from configuration (see structured_log.go). Any implementation may panic,
// so every call site that reaches a Logger runs inside the callback
// boundary in panic_recovery.go.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, args ...any)

	// Info logs an info message with optional key-value pairs
	Info(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs
	Warn(msg string, args ...any)

	// Error logs an error message with optional key-value pairs
	Error(msg string, args ...any)

	// With returns a new logger with persistent context key-value pairs
	With(args ...any) Logger
}

// NewLogger creates a Logger from supported logger types.
//
// Supported types:
//   - Logger interface: Used directly
//   - nil: Returns NoOpLogger for silent operation
//   - Unsupported types: Panic with descriptive message
func NewLogger(logger any) Logger {
	switch l := logger.(type) {
	case Logger:
		return l
	case nil:
		return NewNoOpLogger()
	default:
		panic(fmt.Sprintf("unsupported logger type %T: expected Logger interface or nil", logger))
	}
}

// NoOpLogger discards all log messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-operation logger.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) Debug(msg string, args ...any) {}
func (n *NoOpLogger) Info(msg string, args ...any)  {}
func (n *NoOpLogger) Warn(msg string, args ...any)  {}
func (n *NoOpLogger) Error(msg string, args ...any) {}

// With implements Logger interface (no-op)
func (n *NoOpLogger) With(args ...any) Logger {
	return n
}

// TestLogger captures log messages; used by tests and by hosts that want
// to inspect plugin output.
type TestLogger struct {
	mu       sync.RWMutex
	Messages []TestLogMessage
}

// TestLogMessage represents a captured log message.
type TestLogMessage struct {
	Level   string
	Message string
	Args    []any
}

// NewTestLogger creates a new test logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{
		Messages: make([]TestLogMessage, 0),
	}
}

func (t *TestLogger) record(level, msg string, args []any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Messages = append(t.Messages, TestLogMessage{
		Level:   level,
		Message: msg,
		Args:    args,
	})
}

func (t *TestLogger) Debug(msg string, args ...any) { t.record("DEBUG", msg, args) }
func (t *TestLogger) Info(msg string, args ...any)  { t.record("INFO", msg, args) }
func (t *TestLogger) Warn(msg string, args ...any)  { t.record("WARN", msg, args) }
func (t *TestLogger) Error(msg string, args ...any) { t.record("ERROR", msg, args) }

// With returns the same logger; captured context is not tracked.
func (t *TestLogger) With(args ...any) Logger {
	return t
}

// HasMessage reports whether a message was captured at level.
func (t *TestLogger) HasMessage(level, message string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, msg := range t.Messages {
		if msg.Level == level && msg.Message == message {
			return true
		}
	}
	return false
}

// Count returns the number of captured messages.
func (t *TestLogger) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.Messages)
}

// levelFilteredLogger drops records above the configured verbosity.
type levelFilteredLogger struct {
	next  Logger
	level LevelFilter
}

// withLevelFilter wraps next so only records enabled by level reach it.
func withLevelFilter(next Logger, level LevelFilter) Logger {
	return &levelFilteredLogger{next: next, level: level}
}

func (l *levelFilteredLogger) Debug(msg string, args ...any) {
	if l.level.Enables(LevelDebug) {
		l.next.Debug(msg, args...)
	}
}

func (l *levelFilteredLogger) Info(msg string, args ...any) {
	if l.level.Enables(LevelInfo) {
		l.next.Info(msg, args...)
	}
}

func (l *levelFilteredLogger) Warn(msg string, args ...any) {
	if l.level.Enables(LevelWarn) {
		l.next.Warn(msg, args...)
	}
}

func (l *levelFilteredLogger) Error(msg string, args ...any) {
	if l.level.Enables(LevelError) {
		l.next.Error(msg, args...)
	}
}

func (l *levelFilteredLogger) With(args ...any) Logger {
	return &levelFilteredLogger{next: l.next.With(args...), level: l.level}
}

// diagnosticLogger renders records as diagnostic log lines. It is the
// logger of last resort and never fails.
type diagnosticLogger struct {
	log    *DiagnosticLog
	fields []any
}

func newDiagnosticLogger(log *DiagnosticLog) Logger {
	return &diagnosticLogger{log: log}
}

func (d *diagnosticLogger) Debug(msg string, args ...any) { d.write("DEBUG", msg, args) }
func (d *diagnosticLogger) Info(msg string, args ...any)  { d.write("INFO", msg, args) }
func (d *diagnosticLogger) Warn(msg string, args ...any)  { d.write("WARN", msg, args) }
func (d *diagnosticLogger) Error(msg string, args ...any) { d.write("ERROR", msg, args) }

func (d *diagnosticLogger) With(args ...any) Logger {
	fields := make([]any, 0, len(d.fields)+len(args))
	fields = append(fields, d.fields...)
	fields = append(fields, args...)
	return &diagnosticLogger{log: d.log, fields: fields}
}

func (d *diagnosticLogger) write(level, msg string, args []any) {
	if !d.log.Enabled() {
		return
	}
	d.log.Write(formatRecord(level, msg, append(append([]any{}, d.fields...), args...)))
}

// formatRecord renders "LEVEL msg key=value ..." for line-oriented sinks.
func formatRecord(level, msg string, kv []any) string {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		b.WriteByte(' ')
		if i+1 < len(kv) {
			fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, "%v=<missing>", kv[i])
		}
	}
	return b.String()
}
