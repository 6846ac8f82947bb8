// panic_recovery.go: Panic isolation at the host callback boundary
//
// The host calls into the plugin from its own threads. A panic that escapes
// a callback takes the validator down with it, so every host-invoked handler
// runs its body through guardCallback: the body's result is returned as-is,
// a panic is recorded in the diagnostic log and converted into success.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import (
	"fmt"
	"runtime"
)

// RecoveryHandler defines the signature for panic recovery handlers.
type RecoveryHandler func(recovered interface{}, stack []byte)

// maxStackSize bounds the captured stack trace
const maxStackSize = 64 << 10

func captureStack() []byte {
	buf := make([]byte, maxStackSize)
	n := runtime.Stack(buf, false)
	return buf[:n]
}

// withCustomRecoveryHandler returns a deferred recovery function that hands
// the panic value and stack to handler.
func withCustomRecoveryHandler(handler RecoveryHandler) func() {
	return func() {
		if r := recover(); r != nil {
			handler(r, captureStack())
		}
	}
}

// diagnosticRecoveryHandler records a contained panic in the diagnostic log.
func diagnosticRecoveryHandler(diag *DiagnosticLog, callback string, onPanic func()) RecoveryHandler {
	return func(recovered interface{}, stack []byte) {
		if onPanic != nil {
			onPanic()
		}
		err := NewCallbackPanicError(callback, recovered)
		diag.Write(fmt.Sprintf("%s in %s: %v\n%s", err.Error(), callback, recovered, stack))
	}
}

// guardCallback runs body and contains any panic it raises. The body's
// error is passed through; a panic yields nil.
func guardCallback(diag *DiagnosticLog, callback string, onPanic func(), body func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = nil
			stack := captureStack()
			// Recording must not re-panic across the boundary either.
			func() {
				defer func() { _ = recover() }()
				diagnosticRecoveryHandler(diag, callback, onPanic)(r, stack)
			}()
		}
	}()
	return body()
}
