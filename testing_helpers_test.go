// testing_helpers_test.go: Shared test utilities
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestEnvironment provides isolated files and a private diagnostic log
type TestEnvironment struct {
	t       *testing.T
	dir     string
	diag    *DiagnosticLog
	cleanup []func()
	mu      sync.Mutex
}

// NewTestEnvironment creates a new test environment with automatic cleanup
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	dir := t.TempDir()
	env := &TestEnvironment{
		t:    t,
		dir:  dir,
		diag: NewDiagnosticLogAt(filepath.Join(dir, "debug.log")),
	}
	env.diag.Initialize()

	t.Cleanup(env.Cleanup)
	return env
}

// Dir returns the environment's private directory
func (te *TestEnvironment) Dir() string {
	return te.dir
}

// Diagnostics returns the environment's diagnostic log
func (te *TestEnvironment) Diagnostics() *DiagnosticLog {
	return te.diag
}

// CreateTempFile creates a file with the given name and content
func (te *TestEnvironment) CreateTempFile(name, content string) string {
	te.t.Helper()

	path := filepath.Join(te.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		te.t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		te.t.Fatalf("Failed to create temp file %s: %v", name, err)
	}
	return path
}

// MissingPath returns a path inside the environment that does not exist
func (te *TestEnvironment) MissingPath(name string) string {
	return filepath.Join(te.dir, "missing", name)
}

// DiagnosticLines returns the diagnostic log content split into lines
func (te *TestEnvironment) DiagnosticLines() []string {
	te.t.Helper()
	return readLogLines(te.t, te.diag.Path())
}

// DiagnosticContains reports whether any diagnostic line contains substr
func (te *TestEnvironment) DiagnosticContains(substr string) bool {
	for _, line := range te.DiagnosticLines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// AddCleanup registers a cleanup function
func (te *TestEnvironment) AddCleanup(fn func()) {
	te.mu.Lock()
	defer te.mu.Unlock()
	te.cleanup = append(te.cleanup, fn)
}

// Cleanup runs registered cleanup functions in reverse order
func (te *TestEnvironment) Cleanup() {
	te.mu.Lock()
	defer te.mu.Unlock()

	for i := len(te.cleanup) - 1; i >= 0; i-- {
		te.cleanup[i]()
	}
	te.cleanup = nil
}

func readLogLines(t *testing.T, path string) []string {
	t.Helper()

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatalf("Failed to read log %s: %v", path, err)
	}

	trimmed := strings.TrimRight(string(content), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// validConfigJSON is a minimal configuration accepted by the strict parser
const validConfigJSON = `{
  "libpath": "/opt/liquidroute/libliquidroute_geyser.so",
  "log": {"level": "debug"},
  "liquidroute": {"track_token_accounts": true, "thread_count": 2}
}`

// newTestConfig returns a normalized configuration for lifecycle tests
func newTestConfig() *Config {
	config := DefaultConfig()
	config.LibPath = "/opt/liquidroute/libliquidroute_geyser.so"
	config.Log.Level = "debug"
	config.LiquidRoute.ThreadCount = 2
	config.Validate()
	return &config
}

// countingOpener records how many times the diagnostic log opened its file
type countingOpener struct {
	calls atomic.Int64
	err   error
	sink  *lockedBuffer
}

func (o *countingOpener) open(string) (io.WriteCloser, error) {
	o.calls.Add(1)
	if o.err != nil {
		return nil, o.err
	}
	return nopWriteCloser{o.sink}, nil
}

// lockedBuffer is a goroutine-safe in-memory sink
type lockedBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// panickingLogger panics on every call, optionally only at one level
type panickingLogger struct {
	level string
	calls atomic.Int64
}

func (p *panickingLogger) maybePanic(level string) {
	p.calls.Add(1)
	if p.level == "" || p.level == level {
		panic("logger exploded at " + level)
	}
}

func (p *panickingLogger) Debug(msg string, args ...any) { p.maybePanic("DEBUG") }
func (p *panickingLogger) Info(msg string, args ...any)  { p.maybePanic("INFO") }
func (p *panickingLogger) Warn(msg string, args ...any)  { p.maybePanic("WARN") }
func (p *panickingLogger) Error(msg string, args ...any) { p.maybePanic("ERROR") }
func (p *panickingLogger) With(args ...any) Logger       { return p }

// waitFor polls cond until it holds or the timeout expires
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
