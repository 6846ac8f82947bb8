// debug_log.go: Crash-safe diagnostic log
//
// The diagnostic log is the one observability channel that is always
// available, including before configuration has been resolved and after a
// host logger has failed. It is strictly best-effort:
//   - Write never blocks: a writer that finds the file lock held drops its line
//   - Write never fails: I/O errors are absorbed
//   - the first I/O error disables the log for the rest of the process
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/agilira/go-timecache"
)

const debugLogStartupMarker = "LiquidRoute plugin debug log initialized"

// DiagnosticLog is an append-only, self-disabling log file.
type DiagnosticLog struct {
	enabled  atomic.Bool
	path     atomic.Pointer[string] // set once by Initialize, read-only afterwards
	mu       sync.Mutex             // serializes appends; only ever TryLock'ed
	initOnce sync.Once

	getenv   func(string) string
	openFile func(path string) (io.WriteCloser, error)
	nowMilli func() int64
}

// newDiagnosticLog creates an enabled, uninitialized diagnostic log.
func newDiagnosticLog() *DiagnosticLog {
	d := &DiagnosticLog{
		getenv:   os.Getenv,
		openFile: openAppend,
		nowMilli: func() int64 { return timecache.CachedTimeNano() / 1e6 },
	}
	d.enabled.Store(true)
	return d
}

// NewDiagnosticLogAt creates a diagnostic log bound to path instead of
// LIQUIDROUTE_DEBUG_LOG. It starts enabled and opens path on Initialize.
func NewDiagnosticLogAt(path string) *DiagnosticLog {
	d := newDiagnosticLog()
	d.getenv = func(key string) string {
		if key == EnvDebugLogPath {
			return path
		}
		return ""
	}
	return d
}

func openAppend(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

var diagnostics = newDiagnosticLog()

// Diagnostics returns the process-wide diagnostic log.
func Diagnostics() *DiagnosticLog {
	return diagnostics
}

// InitDebugLog initializes the process-wide diagnostic log. Safe to call
// any number of times.
func InitDebugLog() {
	diagnostics.Initialize()
}

// DebugLog appends message to the process-wide diagnostic log.
func DebugLog(message string) {
	diagnostics.Write(message)
}

// DebugLogf formats and appends to the process-wide diagnostic log.
func DebugLogf(format string, args ...any) {
	if !diagnostics.Enabled() {
		return
	}
	diagnostics.Write(fmt.Sprintf(format, args...))
}

// SetDebugLogging enables or disables the process-wide diagnostic log.
// A log disabled by an I/O failure stays disabled until this is called.
func SetDebugLogging(enabled bool) {
	diagnostics.SetEnabled(enabled)
}

// Initialize resolves the log path and emits the startup marker. Only the
// first call has any effect.
func (d *DiagnosticLog) Initialize() {
	d.initOnce.Do(func() {
		path := debugLogPathFromEnv(d.getenv)
		_ = os.MkdirAll(filepath.Dir(path), 0o755)
		d.path.Store(&path)
		d.Write(debugLogStartupMarker)
	})
}

// Path returns the resolved log file path, or the default before Initialize.
func (d *DiagnosticLog) Path() string {
	if p := d.path.Load(); p != nil {
		return *p
	}
	return DefaultDebugLogPath
}

// Enabled reports whether writes are still attempted.
func (d *DiagnosticLog) Enabled() bool {
	return d.enabled.Load()
}

// SetEnabled is the operator toggle. Re-enabling never happens on its own.
func (d *DiagnosticLog) SetEnabled(enabled bool) {
	d.enabled.Store(enabled)
	if enabled {
		d.Write("Debug logging enabled")
	}
}

// Write appends one timestamped line. It returns immediately when the log
// is disabled or another writer holds the file.
func (d *DiagnosticLog) Write(message string) {
	if !d.enabled.Load() {
		return
	}
	if !d.mu.TryLock() {
		return
	}
	defer d.mu.Unlock()

	if err := d.appendLine(message); err != nil {
		d.enabled.Store(false)
	}
}

func (d *DiagnosticLog) appendLine(message string) (err error) {
	// An opener that panics counts as an I/O failure.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("diagnostic log append panicked: %v", r)
		}
	}()

	f, err := d.openFile(d.Path())
	if err != nil {
		return err
	}

	line := fmt.Sprintf("[%d ms] %s\n", d.nowMilli(), message)
	if _, err := io.WriteString(f, line); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

var threadNameCounter atomic.Uint64

// NextThreadName returns a unique worker label, e.g. liquidRouteGeyser07.
func NextThreadName() string {
	id := threadNameCounter.Add(1) - 1
	return fmt.Sprintf("liquidRouteGeyser%02d", id)
}
