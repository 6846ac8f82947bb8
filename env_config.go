// env_config.go: Environment overrides and configuration file candidates
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import (
	"os"
	"strings"
)

const (
	// EnvConfigPath overrides the configuration file location
	EnvConfigPath = "LIQUIDROUTE_CONFIG"

	// EnvDebugLogPath overrides the diagnostic log file location
	EnvDebugLogPath = "LIQUIDROUTE_DEBUG_LOG"

	// DefaultDebugLogPath is used when EnvDebugLogPath is unset
	DefaultDebugLogPath = "/tmp/liquidroute_debug.log"
)

// fallbackConfigPaths are tried, in order, after the environment override.
var fallbackConfigPaths = []string{
	"/etc/liquidroute/liquidroute-geyser.json",
	"liquidroute-geyser.json",
	"/tmp/liquidroute-geyser.json",
}

// CandidateConfigPaths returns the ordered configuration locations for this
// process: the EnvConfigPath override when set, then the fixed fallbacks.
// The list is recomputed on every call.
func CandidateConfigPaths() []string {
	return candidateConfigPaths(os.Getenv)
}

func candidateConfigPaths(getenv func(string) string) []string {
	paths := make([]string, 0, len(fallbackConfigPaths)+1)
	if override := strings.TrimSpace(getenv(EnvConfigPath)); override != "" {
		paths = append(paths, override)
	}
	return append(paths, fallbackConfigPaths...)
}

// debugLogPathFromEnv resolves the diagnostic log location.
func debugLogPathFromEnv(getenv func(string) string) string {
	if path := strings.TrimSpace(getenv(EnvDebugLogPath)); path != "" {
		return path
	}
	return DefaultDebugLogPath
}
