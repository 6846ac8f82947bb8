// Package liquidroute implements the LiquidRoute geyser plugin: a shim a
// validator loads as a shared library and calls synchronously on every
// account update, slot transition, block, transaction and entry.
//
// The package is about surviving inside someone else's process:
//   - configuration is resolved from an ordered list of candidate files,
//     strict JSON first with a lenient JSON5 fallback, then normalized
//   - a diagnostic log records every step, never blocks, and switches
//     itself off on the first I/O failure
//   - the live plugin gates every callback on a shutdown flag and contains
//     panics so nothing unwinds into the host
//   - any initialization failure yields an inert DummyPlugin instead
//
// Basic usage from the exported constructor:
//
//	plugin := liquidroute.CreatePlugin() // never nil, never panics
//	_ = plugin.OnLoad(configPath, false)
//	defer plugin.OnUnload()
//
// Environment:
//
//	LIQUIDROUTE_CONFIG     configuration file tried before the fixed fallbacks
//	LIQUIDROUTE_DEBUG_LOG  diagnostic log file (default /tmp/liquidroute_debug.log)
//
// Copyright (c) 2025 AGILira - A. Giordano
// SPDX-License-Identifier: MPL-2.0
package liquidroute
