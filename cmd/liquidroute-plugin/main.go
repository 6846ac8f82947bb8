// main.go: C ABI surface of the LiquidRoute geyser plugin
//
// Build with:
//
//	go build -buildmode=c-shared -o libliquidroute_geyser.so ./cmd/liquidroute-plugin
//
// _create_plugin returns an opaque handle. Ownership passes to the host,
// which must release it with _destroy_plugin. Every export recovers, so no
// Go panic unwinds into the validator.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

/*
#include "liquidroute.h"
*/
import "C"

import (
	"runtime/cgo"

	liquidroute "github.com/liquidroute/liquidroute-geyser-plugin"
)

const (
	rcOK    = C.int(0)
	rcError = C.int(1)
)

func main() {}

//export _create_plugin
func _create_plugin() (handle C.uintptr_t) {
	// The host treats a zero handle as fatal, so a panic still yields the
	// inert fallback.
	defer func() {
		if r := recover(); r != nil {
			liquidroute.DebugLogf("Panic contained at _create_plugin: %v", r)
			handle = C.uintptr_t(cgo.NewHandle(liquidroute.NewDummyPlugin()))
		}
	}()
	return C.uintptr_t(cgo.NewHandle(safeCreate(liquidroute.CreatePlugin)))
}

//export _destroy_plugin
func _destroy_plugin(h C.uintptr_t) {
	defer recoverExport("_destroy_plugin")
	if h == 0 {
		return
	}
	lookup(h).OnUnload()
	cgo.Handle(h).Delete()
}

//export liquidroute_plugin_name
func liquidroute_plugin_name(h C.uintptr_t) (name *C.char) {
	defer recoverExport("liquidroute_plugin_name")
	// Caller frees with free(3).
	return C.CString(lookup(h).Name())
}

//export liquidroute_on_load
func liquidroute_on_load(h C.uintptr_t, configFile *C.char, isReload C.int) (rc C.int) {
	defer recoverExport("liquidroute_on_load")
	return resultCode(lookup(h).OnLoad(C.GoString(configFile), isReload != 0))
}

//export liquidroute_on_unload
func liquidroute_on_unload(h C.uintptr_t) {
	defer recoverExport("liquidroute_on_unload")
	lookup(h).OnUnload()
}

//export liquidroute_update_slot_status
func liquidroute_update_slot_status(h C.uintptr_t, slot C.uint64_t, parent C.uint64_t, hasParent C.int, status C.int) (rc C.int) {
	defer recoverExport("liquidroute_update_slot_status")
	var parentSlot *uint64
	if hasParent != 0 {
		p := uint64(parent)
		parentSlot = &p
	}
	return resultCode(lookup(h).UpdateSlotStatus(uint64(slot), parentSlot, liquidroute.SlotStatus(status)))
}

//export liquidroute_notify_end_of_startup
func liquidroute_notify_end_of_startup(h C.uintptr_t) (rc C.int) {
	defer recoverExport("liquidroute_notify_end_of_startup")
	return resultCode(lookup(h).NotifyEndOfStartup())
}

//export liquidroute_account_data_notifications_enabled
func liquidroute_account_data_notifications_enabled(h C.uintptr_t) (enabled C.int) {
	defer recoverExport("liquidroute_account_data_notifications_enabled")
	return boolCode(lookup(h).AccountDataNotificationsEnabled())
}

//export liquidroute_transaction_notifications_enabled
func liquidroute_transaction_notifications_enabled(h C.uintptr_t) (enabled C.int) {
	defer recoverExport("liquidroute_transaction_notifications_enabled")
	return boolCode(lookup(h).TransactionNotificationsEnabled())
}

//export liquidroute_entry_notifications_enabled
func liquidroute_entry_notifications_enabled(h C.uintptr_t) (enabled C.int) {
	defer recoverExport("liquidroute_entry_notifications_enabled")
	return boolCode(lookup(h).EntryNotificationsEnabled())
}

// lookup resolves a host handle. Unknown or stale handles resolve to the
// inert fallback rather than panicking.
func lookup(h C.uintptr_t) (plugin liquidroute.GeyserPlugin) {
	defer func() {
		if r := recover(); r != nil {
			liquidroute.DebugLogf("Invalid plugin handle %d: %v", uintptr(h), r)
			plugin = liquidroute.NewDummyPlugin()
		}
	}()

	if h == 0 {
		return liquidroute.NewDummyPlugin()
	}
	if p, ok := cgo.Handle(h).Value().(liquidroute.GeyserPlugin); ok {
		return p
	}
	return liquidroute.NewDummyPlugin()
}

// recoverExport must be deferred directly by each export. Named results
// keep their zero value, which the host reads as success/false.
func recoverExport(export string) {
	if r := recover(); r != nil {
		liquidroute.DebugLogf("Panic contained at %s: %v", export, r)
	}
}

func resultCode(err error) C.int {
	if err != nil {
		liquidroute.DebugLogf("Callback returned error: %v", err)
		return rcError
	}
	return rcOK
}

func boolCode(b bool) C.int {
	if b {
		return 1
	}
	return 0
}
