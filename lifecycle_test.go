// lifecycle_test.go: plugin handle lifecycle and callback tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agilira/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlugin(t *testing.T, env *TestEnvironment, opts ...LifecycleOption) (*LiquidRoutePlugin, *TestLogger) {
	t.Helper()

	logger := NewTestLogger()
	opts = append([]LifecycleOption{WithDiagnostics(env.Diagnostics()), WithLogger(logger)}, opts...)
	plugin, err := NewLiquidRoutePlugin(newTestConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(plugin.OnUnload)
	return plugin, logger
}

// exerciseCallbacks drives every host callback once.
func exerciseCallbacks(t *testing.T, plugin GeyserPlugin) {
	t.Helper()

	parent := uint64(99)
	assert.NoError(t, plugin.OnLoad("/etc/solana/geyser.json", false))
	assert.NoError(t, plugin.UpdateAccount(ReplicaAccountInfo{Data: []byte{1, 2, 3}, WriteVersion: 7}, 100, true))
	assert.NoError(t, plugin.UpdateSlotStatus(100, &parent, SlotConfirmed))
	assert.NoError(t, plugin.NotifyBlockMetadata(ReplicaBlockInfo{Slot: 100, Blockhash: "hash"}))
	assert.NoError(t, plugin.NotifyTransaction(ReplicaTransactionInfo{Index: 3}, 100))
	assert.NoError(t, plugin.NotifyEntry(ReplicaEntryInfo{Slot: 100, Index: 1}))
	assert.NoError(t, plugin.NotifyEndOfStartup())
	assert.NoError(t, plugin.SetupLogger(NewTestLogger(), LevelDebug))
	assert.False(t, plugin.AccountDataNotificationsEnabled())
	assert.False(t, plugin.TransactionNotificationsEnabled())
	assert.False(t, plugin.EntryNotificationsEnabled())
}

func TestNewLiquidRoutePlugin_NilConfig(t *testing.T) {
	env := NewTestEnvironment(t)

	plugin, err := NewLiquidRoutePlugin(nil, WithDiagnostics(env.Diagnostics()))

	assert.Nil(t, plugin)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode(ErrCodeLifecycleConstruction), err.(*errors.Error).Code)
}

func TestNewLiquidRoutePlugin_Construction(t *testing.T) {
	env := NewTestEnvironment(t)
	config := newTestConfig()
	config.LiquidRoute.ThreadCount = 0

	plugin, err := NewLiquidRoutePlugin(config, WithDiagnostics(env.Diagnostics()))
	require.NoError(t, err)
	defer plugin.OnUnload()

	assert.Equal(t, "LiquidRoutePlugin", plugin.Name())
	assert.Equal(t, StateActive, plugin.State())
	assert.Equal(t, 1, plugin.Config().LiquidRoute.ThreadCount, "thread count is clamped")
	assert.Equal(t, 1, plugin.executor.Workers())
	assert.True(t, env.DiagnosticContains("LiquidRoutePlugin constructed: thread_count=1 track_token_accounts=true"))

	config.LibPath = "/changed.so"
	assert.Equal(t, "/opt/liquidroute/libliquidroute_geyser.so", plugin.Config().LibPath,
		"the plugin keeps its own copy of the configuration")
}

func TestNewLiquidRoutePlugin_UnknownLevelNoted(t *testing.T) {
	env := NewTestEnvironment(t)
	config := newTestConfig()
	config.Log.Level = "loud"

	plugin, err := NewLiquidRoutePlugin(config, WithDiagnostics(env.Diagnostics()))
	require.NoError(t, err)
	defer plugin.OnUnload()

	assert.True(t, env.DiagnosticContains(`Unknown log level "loud", using info`))
}

func TestNewLiquidRoutePlugin_ExecutorFailure(t *testing.T) {
	env := NewTestEnvironment(t)

	tests := []struct {
		name    string
		factory ExecutorFactory
	}{
		{
			name: "FactoryError",
			factory: func(int, *DiagnosticLog) (*Executor, error) {
				return nil, fmt.Errorf("thread limit reached")
			},
		},
		{
			name:    "NilExecutor",
			factory: func(int, *DiagnosticLog) (*Executor, error) { return nil, nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plugin, err := NewLiquidRoutePlugin(newTestConfig(),
				WithDiagnostics(env.Diagnostics()),
				WithExecutorFactory(tt.factory))

			assert.Nil(t, plugin)
			require.Error(t, err)
			assert.Equal(t, errors.ErrorCode(ErrCodeLifecycleConstruction), err.(*errors.Error).Code)
		})
	}
	assert.True(t, env.DiagnosticContains("Failed to create execution context"))
}

func TestLiquidRoutePlugin_ActiveCallbacks(t *testing.T) {
	env := NewTestEnvironment(t)
	plugin, logger := newTestPlugin(t, env)

	parent := uint64(41)
	require.NoError(t, plugin.OnLoad("/etc/solana/geyser.json", true))
	require.NoError(t, plugin.UpdateSlotStatus(42, &parent, SlotRooted))
	require.NoError(t, plugin.UpdateAccount(ReplicaAccountInfo{WriteVersion: 1}, 42, false))

	assert.Equal(t, "/etc/solana/geyser.json", plugin.HostConfigPath())
	assert.True(t, logger.HasMessage("INFO", "Logger installed"))
	assert.True(t, logger.HasMessage("INFO", "Plugin loaded"))
	assert.True(t, logger.HasMessage("DEBUG", "Slot status"))
	assert.True(t, logger.HasMessage("DEBUG", "Account update"))
	assert.True(t, env.DiagnosticContains("on_load: config_file=/etc/solana/geyser.json is_reload=true"))

	stats := plugin.Stats()
	assert.Equal(t, int64(3), stats.CallbacksServed)
	assert.Equal(t, int64(0), stats.CallbacksRejected)
	assert.Equal(t, int64(0), stats.PanicsContained)
}

func TestLiquidRoutePlugin_TokenTrackingDisabled(t *testing.T) {
	env := NewTestEnvironment(t)
	logger := NewTestLogger()
	config := newTestConfig()
	config.LiquidRoute.TrackTokenAccounts = false

	plugin, err := NewLiquidRoutePlugin(config, WithDiagnostics(env.Diagnostics()), WithLogger(logger))
	require.NoError(t, err)
	defer plugin.OnUnload()

	require.NoError(t, plugin.UpdateAccount(ReplicaAccountInfo{}, 1, true))
	assert.False(t, logger.HasMessage("DEBUG", "Account update"))
}

func TestLiquidRoutePlugin_NotificationPredicates(t *testing.T) {
	env := NewTestEnvironment(t)
	plugin, _ := newTestPlugin(t, env)

	assert.False(t, plugin.AccountDataNotificationsEnabled())
	assert.False(t, plugin.TransactionNotificationsEnabled())
	assert.False(t, plugin.EntryNotificationsEnabled())
}

func TestLiquidRoutePlugin_EndOfStartupRunsAsync(t *testing.T) {
	env := NewTestEnvironment(t)
	plugin, logger := newTestPlugin(t, env)

	require.NoError(t, plugin.NotifyEndOfStartup())

	assert.True(t, waitFor(t, time.Second, func() bool {
		return logger.HasMessage("INFO", "Startup replay complete")
	}))
}

// TestLiquidRoutePlugin_NoProcessingAfterUnload verifies that once unload
// has been observed every callback returns success without side effects,
// including when callbacks race on many host threads.
func TestLiquidRoutePlugin_NoProcessingAfterUnload(t *testing.T) {
	env := NewTestEnvironment(t)
	plugin, logger := newTestPlugin(t, env)

	plugin.OnUnload()
	require.Equal(t, StateShutDown, plugin.State())

	before := logger.Count()
	servedBefore := plugin.Stats().CallbacksServed

	const threads = 8
	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			exerciseCallbacks(t, plugin)
		}()
	}
	wg.Wait()

	assert.Equal(t, before, logger.Count(), "no records after unload")
	assert.Empty(t, plugin.HostConfigPath(), "OnLoad after unload must not record state")

	stats := plugin.Stats()
	assert.Equal(t, servedBefore, stats.CallbacksServed)
	assert.Equal(t, int64(threads*8), stats.CallbacksRejected)
}

func TestLiquidRoutePlugin_UnloadIsIdempotent(t *testing.T) {
	env := NewTestEnvironment(t)
	plugin, logger := newTestPlugin(t, env)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plugin.OnUnload()
		}()
	}
	wg.Wait()
	plugin.OnUnload()

	unloads := 0
	for _, msg := range logger.Messages {
		if msg.Message == "Plugin unloading" {
			unloads++
		}
	}
	assert.Equal(t, 1, unloads)

	shutdownLines := 0
	for _, line := range env.DiagnosticLines() {
		if strings.Contains(line, "on_unload: LiquidRoutePlugin shut down") {
			shutdownLines++
		}
	}
	assert.Equal(t, 1, shutdownLines)
}

func TestLiquidRoutePlugin_UnsupportedLoggerContained(t *testing.T) {
	env := NewTestEnvironment(t)

	plugin, err := NewLiquidRoutePlugin(newTestConfig(),
		WithDiagnostics(env.Diagnostics()),
		WithLogger(42))
	require.NoError(t, err, "a logger setup failure must not fail construction")
	defer plugin.OnUnload()

	assert.Equal(t, int64(1), plugin.Stats().PanicsContained)
	assert.True(t, env.DiagnosticContains("in install_logger: unsupported logger type int"))

	// The handle stays usable on the diagnostic-log logger.
	exerciseCallbacks(t, plugin)
	assert.True(t, env.DiagnosticContains("DEBUG Slot status slot=100 status=confirmed parent=99"))
}

func TestLiquidRoutePlugin_PanickingLoggerInCallback(t *testing.T) {
	env := NewTestEnvironment(t)
	logger := &panickingLogger{level: "DEBUG"}

	plugin, err := NewLiquidRoutePlugin(newTestConfig(),
		WithDiagnostics(env.Diagnostics()),
		WithLogger(logger))
	require.NoError(t, err)
	defer plugin.OnUnload()

	var cbErr error
	require.NotPanics(t, func() {
		cbErr = plugin.UpdateSlotStatus(7, nil, SlotProcessed)
	})

	assert.NoError(t, cbErr)
	assert.Equal(t, int64(1), plugin.Stats().PanicsContained)
	assert.True(t, env.DiagnosticContains("in update_slot_status: logger exploded at DEBUG"))
}

func TestLiquidRoutePlugin_SetupLogger(t *testing.T) {
	t.Run("ReplacesLogger", func(t *testing.T) {
		env := NewTestEnvironment(t)
		plugin, original := newTestPlugin(t, env)
		host := NewTestLogger()

		require.NoError(t, plugin.SetupLogger(host, LevelInfo))
		require.NoError(t, plugin.UpdateSlotStatus(1, nil, SlotCompleted))
		require.NoError(t, plugin.OnLoad("/cfg.json", false))

		assert.True(t, host.HasMessage("INFO", "Host logger installed"))
		assert.True(t, host.HasMessage("INFO", "Plugin loaded"))
		assert.False(t, host.HasMessage("DEBUG", "Slot status"), "host level filter applies")
		assert.False(t, original.HasMessage("INFO", "Plugin loaded"))
	})

	t.Run("PanickingLoggerKeepsPrevious", func(t *testing.T) {
		env := NewTestEnvironment(t)
		plugin, original := newTestPlugin(t, env)

		err := plugin.SetupLogger(&panickingLogger{}, LevelTrace)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), plugin.Stats().PanicsContained)

		require.NoError(t, plugin.UpdateSlotStatus(2, nil, SlotDead))
		assert.True(t, original.HasMessage("DEBUG", "Slot status"))
		assert.Equal(t, int64(1), plugin.Stats().PanicsContained)
	})

	t.Run("NilLoggerSilences", func(t *testing.T) {
		env := NewTestEnvironment(t)
		plugin, original := newTestPlugin(t, env)
		before := original.Count()

		require.NoError(t, plugin.SetupLogger(nil, LevelTrace))
		require.NoError(t, plugin.UpdateSlotStatus(3, nil, SlotRooted))

		assert.Equal(t, before, original.Count())
	})
}

func TestLiquidRoutePlugin_StructuredLogFile(t *testing.T) {
	env := NewTestEnvironment(t)
	logPath := filepath.Join(env.Dir(), "logs", "liquidroute.log")

	config := newTestConfig()
	config.Log.File = logPath
	plugin, err := NewLiquidRoutePlugin(config, WithDiagnostics(env.Diagnostics()))
	require.NoError(t, err)

	require.NoError(t, plugin.OnLoad("/cfg.json", false))
	plugin.OnUnload()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"message":"Logger installed"`)
	assert.Contains(t, string(content), `"message":"Plugin loaded"`)
	assert.Contains(t, string(content), `"message":"Plugin unloading"`)
	assert.Nil(t, plugin.logSink, "the log file is closed on unload")
}

func TestLifecycleState_String(t *testing.T) {
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "shut_down", StateShutDown.String())
	assert.Equal(t, "unknown", LifecycleState(7).String())
}
