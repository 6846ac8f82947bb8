// version.go: Build metadata
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

// Set at build time:
//
//	go build -ldflags "-X github.com/liquidroute/liquidroute-geyser-plugin.Version=v0.3.0"
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// BuildInfo renders the build metadata on one line.
func BuildInfo() string {
	return Version + " (commit: " + Commit + ", built: " + BuildDate + ")"
}
