// config.go: Plugin configuration data model
//
// The configuration is produced once by the resolver in config_loader.go,
// normalized by Validate, and never mutated afterwards.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import (
	"fmt"
	"strings"
)

const (
	// MinThreadCount and MaxThreadCount bound liquidroute.thread_count
	MinThreadCount = 1
	MaxThreadCount = 4

	defaultLogLevel           = "info"
	defaultThreadCount        = 1
	defaultTrackTokenAccounts = true
	defaultLogMaxSizeMB       = 100
)

// LogConfig controls the structured log.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error, off
	Level string `json:"level" yaml:"level"`

	// File is an optional structured log file. When empty, records go to
	// the diagnostic log.
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// MaxSizeMB is the size at which File is rotated
	MaxSizeMB int `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`
}

// LiquidRouteConfig holds the plugin-specific settings.
type LiquidRouteConfig struct {
	// TrackTokenAccounts enables the token account tracker
	TrackTokenAccounts bool `json:"track_token_accounts" yaml:"track_token_accounts"`

	// ThreadCount sizes the execution context, clamped to [1,4]
	ThreadCount int `json:"thread_count" yaml:"thread_count"`
}

// Config is the top-level plugin configuration.
//
// Example:
//
//	{
//	    "libpath": "/opt/liquidroute/libliquidroute.so",
//	    "log": {"level": "info"},
//	    "liquidroute": {"track_token_accounts": true, "thread_count": 2}
//	}
type Config struct {
	// LibPath is the path of the plugin shared library, as the host requires
	LibPath string `json:"libpath" yaml:"libpath"`

	Log         LogConfig         `json:"log" yaml:"log"`
	LiquidRoute LiquidRouteConfig `json:"liquidroute" yaml:"liquidroute"`
}

// DefaultConfig returns a configuration with every optional field at its
// default. Decoders unmarshal on top of it so absent fields keep defaults.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:     defaultLogLevel,
			MaxSizeMB: defaultLogMaxSizeMB,
		},
		LiquidRoute: LiquidRouteConfig{
			TrackTokenAccounts: defaultTrackTokenAccounts,
			ThreadCount:        defaultThreadCount,
		},
	}
}

// Validate clamps out-of-range values. It never fails.
func (c *LiquidRouteConfig) Validate() {
	c.ThreadCount = ClampThreadCount(c.ThreadCount)
}

// ClampThreadCount maps any requested worker count into [MinThreadCount, MaxThreadCount].
func ClampThreadCount(n int) int {
	if n < MinThreadCount {
		return MinThreadCount
	}
	if n > MaxThreadCount {
		return MaxThreadCount
	}
	return n
}

// Validate normalizes the whole configuration.
func (c *Config) Validate() {
	c.LiquidRoute.Validate()

	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.MaxSizeMB < 1 {
		c.Log.MaxSizeMB = defaultLogMaxSizeMB
	}
}

// LevelFilter returns the parsed log level; unknown names yield LevelInfo.
func (c *Config) LevelFilter() LevelFilter {
	level, _ := ParseLevelFilter(c.Log.Level)
	return level
}

// Summary renders the configuration the way config-check prints it.
func (c *Config) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "libpath: %s\n", c.LibPath)
	fmt.Fprintf(&b, "log level: %s\n", c.Log.Level)
	if c.Log.File != "" {
		fmt.Fprintf(&b, "log file: %s\n", c.Log.File)
	}
	b.WriteString("LiquidRoute configuration:\n")
	fmt.Fprintf(&b, "  track_token_accounts: %t\n", c.LiquidRoute.TrackTokenAccounts)
	fmt.Fprintf(&b, "  thread_count: %d\n", c.LiquidRoute.ThreadCount)
	return b.String()
}
