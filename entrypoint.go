// entrypoint.go: Plugin construction as seen by the host
//
// CreatePlugin is what the exported C constructor calls. It never panics
// and never returns nil: every failure ends in the fallback plugin.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import "fmt"

// CreatePlugin initializes the diagnostic log, resolves the configuration
// from the default candidate list and builds the live plugin.
func CreatePlugin() GeyserPlugin {
	InitDebugLog()
	return createPlugin(Diagnostics(), CandidateConfigPaths)
}

// CreatePluginFromPaths is CreatePlugin over an explicit candidate list,
// reporting to diag (nil for the process-wide diagnostic log).
func CreatePluginFromPaths(diag *DiagnosticLog, candidates []string, opts ...LifecycleOption) GeyserPlugin {
	if diag == nil {
		InitDebugLog()
		diag = Diagnostics()
	}
	return createPlugin(diag, func() []string { return candidates }, opts...)
}

func createPlugin(diag *DiagnosticLog, candidates func() []string, opts ...LifecycleOption) (plugin GeyserPlugin) {
	defer func() {
		if r := recover(); r != nil {
			diag.Write(fmt.Sprintf("Panic while creating plugin, using dummy plugin: %v\n%s", r, captureStack()))
			plugin = NewDummyPlugin()
		}
	}()

	diag.Write(fmt.Sprintf("Creating %s %s", pluginName, Version))

	config, err := NewConfigResolver(diag).Resolve(candidates())
	if err != nil {
		diag.Write(fmt.Sprintf("Failed to load config, using dummy plugin: %v", err))
		return NewDummyPlugin()
	}

	opts = append([]LifecycleOption{WithDiagnostics(diag)}, opts...)
	live, err := NewLiquidRoutePlugin(config, opts...)
	if err != nil {
		diag.Write(fmt.Sprintf("Failed to create plugin, using dummy plugin: %v", err))
		return NewDummyPlugin()
	}

	diag.Write(fmt.Sprintf("Created %s", live.Name()))
	return live
}
