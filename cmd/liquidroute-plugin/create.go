// create.go: plugin construction for the C entrypoint
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	liquidroute "github.com/liquidroute/liquidroute-geyser-plugin"
)

// safeCreate never returns nil: a panicking or empty constructor yields the
// inert fallback.
func safeCreate(create func() liquidroute.GeyserPlugin) (plugin liquidroute.GeyserPlugin) {
	defer func() {
		if r := recover(); r != nil {
			liquidroute.DebugLogf("Panic while creating plugin, using dummy plugin: %v", r)
			plugin = liquidroute.NewDummyPlugin()
		}
	}()

	if plugin = create(); plugin == nil {
		return liquidroute.NewDummyPlugin()
	}
	return plugin
}
