// plugin.go: Host callback interface
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

// GeyserPlugin is the capability set the validator drives. Its shape is
// dictated by the host; implementations are called synchronously from
// host-owned threads, possibly concurrently, and must return promptly.
type GeyserPlugin interface {
	// Name identifies the plugin in host logs
	Name() string

	// OnLoad is invoked once the host has adopted the plugin handle
	OnLoad(configFile string, isReload bool) error

	// OnUnload is invoked when the host is about to drop the plugin.
	// No processing may happen after it returns.
	OnUnload()

	// UpdateAccount is invoked for every account write
	UpdateAccount(account ReplicaAccountInfo, slot uint64, isStartup bool) error

	// UpdateSlotStatus is invoked on every slot transition
	UpdateSlotStatus(slot uint64, parent *uint64, status SlotStatus) error

	// NotifyBlockMetadata is invoked when block metadata is available
	NotifyBlockMetadata(block ReplicaBlockInfo) error

	// NotifyTransaction is invoked for every transaction in a slot
	NotifyTransaction(transaction ReplicaTransactionInfo, slot uint64) error

	// NotifyEntry is invoked for every entry
	NotifyEntry(entry ReplicaEntryInfo) error

	// NotifyEndOfStartup is invoked once the startup account snapshot is replayed
	NotifyEndOfStartup() error

	// AccountDataNotificationsEnabled reports whether UpdateAccount should be called
	AccountDataNotificationsEnabled() bool

	// TransactionNotificationsEnabled reports whether NotifyTransaction should be called
	TransactionNotificationsEnabled() bool

	// EntryNotificationsEnabled reports whether NotifyEntry should be called
	EntryNotificationsEnabled() bool

	// SetupLogger hands the plugin the host's logger and maximum level
	SetupLogger(logger Logger, level LevelFilter) error
}
