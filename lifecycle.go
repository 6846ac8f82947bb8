// lifecycle.go: The live plugin handle and its lifecycle state machine
//
// A LiquidRoutePlugin starts Active and moves exactly once to ShutDown when
// the host unloads it. Every handler checks the state first and returns
// success without doing anything once ShutDown has been observed. Handler
// bodies that reach a Logger run inside the panic boundary.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

const pluginName = "LiquidRoutePlugin"

// LifecycleState is the plugin handle state.
type LifecycleState int32

const (
	StateActive LifecycleState = iota
	StateShutDown
)

// String returns a human-readable representation of the lifecycle state.
func (s LifecycleState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateShutDown:
		return "shut_down"
	default:
		return "unknown"
	}
}

// PluginStats counts callback outcomes.
type PluginStats struct {
	CallbacksServed   int64 `json:"callbacks_served"`
	CallbacksRejected int64 `json:"callbacks_rejected"` // arrived after shutdown
	PanicsContained   int64 `json:"panics_contained"`
}

// loggerBox lets an interface value live behind an atomic.Pointer.
type loggerBox struct {
	Logger
}

// LiquidRoutePlugin is the GeyserPlugin handed to the host on a successful load.
type LiquidRoutePlugin struct {
	config   *Config
	state    atomic.Int32
	diag     *DiagnosticLog
	logger   atomic.Pointer[loggerBox]
	executor *Executor
	logSink  io.Closer
	loadedAt time.Time

	hostConfigPath atomic.Pointer[string]

	served   atomic.Int64
	rejected atomic.Int64
	panics   atomic.Int64
}

var _ GeyserPlugin = (*LiquidRoutePlugin)(nil)

type lifecycleOptions struct {
	logger          any
	diag            *DiagnosticLog
	executorFactory ExecutorFactory
}

// LifecycleOption customizes plugin construction.
type LifecycleOption func(*lifecycleOptions)

// WithLogger installs logger instead of the configured structured log. The
// value goes through NewLogger, so unsupported types are contained, not fatal.
func WithLogger(logger any) LifecycleOption {
	return func(o *lifecycleOptions) {
		o.logger = logger
	}
}

// WithDiagnostics reports to diag instead of the process-wide diagnostic log.
func WithDiagnostics(diag *DiagnosticLog) LifecycleOption {
	return func(o *lifecycleOptions) {
		o.diag = diag
	}
}

// WithExecutorFactory replaces the execution context constructor.
func WithExecutorFactory(factory ExecutorFactory) LifecycleOption {
	return func(o *lifecycleOptions) {
		o.executorFactory = factory
	}
}

// NewLiquidRoutePlugin builds a live plugin around config. The plugin keeps
// its own normalized copy of config.
//
// Logging setup problems never fail construction: the plugin falls back to
// the diagnostic log. Failing to create the execution context does.
func NewLiquidRoutePlugin(config *Config, opts ...LifecycleOption) (*LiquidRoutePlugin, error) {
	options := lifecycleOptions{executorFactory: NewExecutor}
	for _, opt := range opts {
		opt(&options)
	}
	if options.diag == nil {
		options.diag = Diagnostics()
	}
	if options.executorFactory == nil {
		options.executorFactory = NewExecutor
	}

	if config == nil {
		return nil, NewLifecycleConstructionError("no configuration", nil)
	}

	cfg := *config
	cfg.Validate()

	p := &LiquidRoutePlugin{
		config:   &cfg,
		diag:     options.diag,
		loadedAt: timecache.CachedTime(),
	}
	p.state.Store(int32(StateActive))
	p.setLogger(withLevelFilter(newDiagnosticLogger(p.diag), cfg.LevelFilter()))

	if _, known := ParseLevelFilter(cfg.Log.Level); !known {
		p.diag.Write(fmt.Sprintf("Unknown log level %q, using info", cfg.Log.Level))
	}

	p.installLogging(options.logger)

	executor, err := options.executorFactory(cfg.LiquidRoute.ThreadCount, p.diag)
	if err == nil && executor == nil {
		err = fmt.Errorf("executor factory returned no executor")
	}
	if err != nil {
		p.diag.Write(fmt.Sprintf("Failed to create execution context: %v", err))
		p.closeLogSink()
		return nil, NewLifecycleConstructionError("execution context", err)
	}
	p.executor = executor

	p.diag.Write(fmt.Sprintf("%s constructed: thread_count=%d track_token_accounts=%t",
		pluginName, cfg.LiquidRoute.ThreadCount, cfg.LiquidRoute.TrackTokenAccounts))
	return p, nil
}

// installLogging sets up standard logging. Any panic is contained and the
// diagnostic-log-backed logger stays in place.
func (p *LiquidRoutePlugin) installLogging(explicit any) {
	_ = guardCallback(p.diag, "install_logger", p.countPanic, func() error {
		level := p.config.LevelFilter()

		if explicit != nil {
			candidate := withLevelFilter(NewLogger(explicit), level)
			candidate.Info("Logger installed", "plugin", pluginName, "version", Version)
			p.setLogger(candidate)
			return nil
		}

		structured, sink, err := newStructuredLogger(p.config.Log)
		if err != nil {
			p.diag.Write(fmt.Sprintf("Structured logging unavailable, using diagnostic log only: %v", err))
			return nil
		}
		if structured == nil {
			return nil
		}
		p.logSink = sink
		structured.Info("Logger installed", "version", Version, "log_file", p.config.Log.File)
		p.setLogger(structured)
		return nil
	})
}

func (p *LiquidRoutePlugin) setLogger(logger Logger) {
	p.logger.Store(&loggerBox{Logger: logger})
}

func (p *LiquidRoutePlugin) log() Logger {
	return p.logger.Load().Logger
}

func (p *LiquidRoutePlugin) closeLogSink() {
	if p.logSink == nil {
		return
	}
	if err := p.logSink.Close(); err != nil {
		p.diag.Write(fmt.Sprintf("Failed to close structured log: %v", err))
	}
	p.logSink = nil
}

func (p *LiquidRoutePlugin) countPanic() {
	p.panics.Add(1)
}

// isShutDown reads the lifecycle gate.
func (p *LiquidRoutePlugin) isShutDown() bool {
	return LifecycleState(p.state.Load()) == StateShutDown
}

// handle is the common handler prologue: gate on shutdown, then run body
// inside the panic boundary.
func (p *LiquidRoutePlugin) handle(callback string, body func() error) error {
	if p.isShutDown() {
		p.rejected.Add(1)
		return nil
	}
	p.served.Add(1)
	return guardCallback(p.diag, callback, p.countPanic, body)
}

// State returns the current lifecycle state.
func (p *LiquidRoutePlugin) State() LifecycleState {
	return LifecycleState(p.state.Load())
}

// Config returns a copy of the active configuration.
func (p *LiquidRoutePlugin) Config() Config {
	return *p.config
}

// Stats returns a snapshot of the callback counters.
func (p *LiquidRoutePlugin) Stats() PluginStats {
	return PluginStats{
		CallbacksServed:   p.served.Load(),
		CallbacksRejected: p.rejected.Load(),
		PanicsContained:   p.panics.Load(),
	}
}

// HostConfigPath returns the path the host passed to OnLoad, if any.
func (p *LiquidRoutePlugin) HostConfigPath() string {
	if path := p.hostConfigPath.Load(); path != nil {
		return *path
	}
	return ""
}

// Name implements GeyserPlugin.
func (p *LiquidRoutePlugin) Name() string {
	return pluginName
}

// OnLoad implements GeyserPlugin. The configuration is already fixed; the
// host's path and reload flag are only recorded.
func (p *LiquidRoutePlugin) OnLoad(configFile string, isReload bool) error {
	return p.handle("on_load", func() error {
		p.hostConfigPath.Store(&configFile)
		p.diag.Write(fmt.Sprintf("on_load: config_file=%s is_reload=%t", configFile, isReload))
		p.log().Info("Plugin loaded",
			"config_file", configFile,
			"is_reload", isReload,
			"libpath", p.config.LibPath,
			"thread_count", p.config.LiquidRoute.ThreadCount)
		return nil
	})
}

// OnUnload implements GeyserPlugin. Only the first call does anything.
func (p *LiquidRoutePlugin) OnUnload() {
	if !p.state.CompareAndSwap(int32(StateActive), int32(StateShutDown)) {
		return
	}

	stats := p.Stats()
	_ = guardCallback(p.diag, "on_unload", p.countPanic, func() error {
		p.log().Info("Plugin unloading",
			"uptime", time.Since(p.loadedAt).String(),
			"callbacks_served", stats.CallbacksServed,
			"panics_contained", stats.PanicsContained)
		return nil
	})

	_ = guardCallback(p.diag, "on_unload", p.countPanic, func() error {
		p.executor.Close()
		return nil
	})

	// The structured logger may still be referenced by a racing handler
	// that passed the gate; fall back before closing its file.
	p.setLogger(withLevelFilter(newDiagnosticLogger(p.diag), p.config.LevelFilter()))
	p.closeLogSink()

	p.diag.Write(fmt.Sprintf("on_unload: %s shut down (served=%d rejected=%d panics=%d)",
		pluginName, stats.CallbacksServed, stats.CallbacksRejected, stats.PanicsContained))
}

// UpdateAccount implements GeyserPlugin.
func (p *LiquidRoutePlugin) UpdateAccount(account ReplicaAccountInfo, slot uint64, isStartup bool) error {
	return p.handle("update_account", func() error {
		if !p.config.LiquidRoute.TrackTokenAccounts {
			return nil
		}
		p.log().Debug("Account update",
			"slot", slot,
			"is_startup", isStartup,
			"write_version", account.WriteVersion,
			"data_len", len(account.Data))
		return nil
	})
}

// UpdateSlotStatus implements GeyserPlugin.
func (p *LiquidRoutePlugin) UpdateSlotStatus(slot uint64, parent *uint64, status SlotStatus) error {
	return p.handle("update_slot_status", func() error {
		args := []any{"slot", slot, "status", status.String()}
		if parent != nil {
			args = append(args, "parent", *parent)
		}
		p.log().Debug("Slot status", args...)
		return nil
	})
}

// NotifyBlockMetadata implements GeyserPlugin.
func (p *LiquidRoutePlugin) NotifyBlockMetadata(block ReplicaBlockInfo) error {
	return p.handle("notify_block_metadata", func() error {
		p.log().Debug("Block metadata",
			"slot", block.Slot,
			"blockhash", block.Blockhash,
			"executed_transaction_count", block.ExecutedTransactionCount)
		return nil
	})
}

// NotifyTransaction implements GeyserPlugin.
func (p *LiquidRoutePlugin) NotifyTransaction(transaction ReplicaTransactionInfo, slot uint64) error {
	return p.handle("notify_transaction", func() error {
		p.log().Debug("Transaction", "slot", slot, "index", transaction.Index, "is_vote", transaction.IsVote)
		return nil
	})
}

// NotifyEntry implements GeyserPlugin.
func (p *LiquidRoutePlugin) NotifyEntry(entry ReplicaEntryInfo) error {
	return p.handle("notify_entry", func() error {
		p.log().Debug("Entry", "slot", entry.Slot, "index", entry.Index)
		return nil
	})
}

// NotifyEndOfStartup implements GeyserPlugin. The notice is logged from the
// execution context so the host thread returns immediately.
func (p *LiquidRoutePlugin) NotifyEndOfStartup() error {
	return p.handle("notify_end_of_startup", func() error {
		logger := p.log()
		startup := time.Since(p.loadedAt)
		if !p.executor.TrySubmit("end_of_startup", func() {
			logger.Info("Startup replay complete", "elapsed", startup.String())
		}) {
			p.diag.Write("notify_end_of_startup: execution context busy, notice dropped")
		}
		return nil
	})
}

// AccountDataNotificationsEnabled implements GeyserPlugin.
func (p *LiquidRoutePlugin) AccountDataNotificationsEnabled() bool {
	return false
}

// TransactionNotificationsEnabled implements GeyserPlugin.
func (p *LiquidRoutePlugin) TransactionNotificationsEnabled() bool {
	return false
}

// EntryNotificationsEnabled implements GeyserPlugin.
func (p *LiquidRoutePlugin) EntryNotificationsEnabled() bool {
	return false
}

// SetupLogger implements GeyserPlugin. The host logger replaces the current
// one only if it survives a first record; otherwise the panic is contained
// and the previous logger stays.
func (p *LiquidRoutePlugin) SetupLogger(logger Logger, level LevelFilter) error {
	return p.handle("setup_logger", func() error {
		candidate := withLevelFilter(NewLogger(logger), level)
		candidate.Info("Host logger installed", "plugin", pluginName, "level", level.String())
		p.setLogger(candidate)
		p.diag.Write(fmt.Sprintf("setup_logger: host logger installed at level %s", level))
		return nil
	})
}
