// executor.go: Bounded execution context for asynchronous plugin work
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Executor runs work off the host's threads on at most Workers goroutines.
// Submission never blocks: when every worker is busy, the task is rejected.
type Executor struct {
	group   errgroup.Group
	workers int
	name    string
	diag    *DiagnosticLog

	mu       sync.RWMutex // guards closed against in-flight submissions
	closed   bool
	rejected atomic.Int64
	panics   atomic.Int64
}

// ExecutorFactory creates the execution context for a plugin instance.
type ExecutorFactory func(workers int, diag *DiagnosticLog) (*Executor, error)

// NewExecutor creates an executor with the given worker bound.
func NewExecutor(workers int, diag *DiagnosticLog) (*Executor, error) {
	if workers < 1 {
		return nil, NewExecutorCreationError(workers)
	}
	if diag == nil {
		diag = Diagnostics()
	}

	e := &Executor{
		workers: workers,
		name:    NextThreadName(),
		diag:    diag,
	}
	e.group.SetLimit(workers)
	return e, nil
}

// Workers returns the concurrency bound.
func (e *Executor) Workers() int {
	return e.workers
}

// Name returns the executor's diagnostic label.
func (e *Executor) Name() string {
	return e.name
}

// TrySubmit schedules fn if a worker is free. It reports false when the
// executor is closed or saturated.
func (e *Executor) TrySubmit(task string, fn func()) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return false
	}

	accepted := e.group.TryGo(func() error {
		defer withCustomRecoveryHandler(
			diagnosticRecoveryHandler(e.diag, fmt.Sprintf("%s/%s", e.name, task), func() { e.panics.Add(1) }),
		)()
		fn()
		return nil
	})
	if !accepted {
		e.rejected.Add(1)
	}
	return accepted
}

// Rejected returns how many submissions were refused because all workers were busy.
func (e *Executor) Rejected() int64 {
	return e.rejected.Load()
}

// Panics returns how many tasks panicked.
func (e *Executor) Panics() int64 {
	return e.panics.Load()
}

// Close stops accepting work and waits for running tasks.
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	_ = e.group.Wait()
}
