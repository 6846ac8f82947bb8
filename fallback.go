// fallback.go: Inert plugin substituted when initialization fails
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

const dummyPluginName = "LiquidRouteDummyPlugin"

// DummyPlugin satisfies GeyserPlugin with unconditional success and all
// notifications disabled. The entry point returns it whenever the live
// plugin cannot be built, so the host always receives a usable handle.
type DummyPlugin struct{}

var _ GeyserPlugin = DummyPlugin{}

// NewDummyPlugin returns the fallback plugin.
func NewDummyPlugin() DummyPlugin {
	return DummyPlugin{}
}

func (DummyPlugin) Name() string                                           { return dummyPluginName }
func (DummyPlugin) OnLoad(configFile string, isReload bool) error          { return nil }
func (DummyPlugin) OnUnload()                                              {}
func (DummyPlugin) UpdateAccount(ReplicaAccountInfo, uint64, bool) error   { return nil }
func (DummyPlugin) UpdateSlotStatus(uint64, *uint64, SlotStatus) error     { return nil }
func (DummyPlugin) NotifyBlockMetadata(ReplicaBlockInfo) error             { return nil }
func (DummyPlugin) NotifyTransaction(ReplicaTransactionInfo, uint64) error { return nil }
func (DummyPlugin) NotifyEntry(ReplicaEntryInfo) error                     { return nil }
func (DummyPlugin) NotifyEndOfStartup() error                              { return nil }
func (DummyPlugin) AccountDataNotificationsEnabled() bool                  { return false }
func (DummyPlugin) TransactionNotificationsEnabled() bool                  { return false }
func (DummyPlugin) EntryNotificationsEnabled() bool                        { return false }
func (DummyPlugin) SetupLogger(Logger, LevelFilter) error                  { return nil }

// IsFallback reports whether plugin is the inert fallback.
func IsFallback(plugin GeyserPlugin) bool {
	switch plugin.(type) {
	case DummyPlugin, *DummyPlugin:
		return true
	default:
		return false
	}
}
