// types.go: Host payload types delivered to plugin callbacks
//
// These types mirror what the validator hands to a geyser plugin on every
// account update, slot transition, block, transaction and entry. The plugin
// does not interpret them; they exist so the callback surface is typed.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import "strings"

// SlotStatus is the confirmation status reported for a slot.
type SlotStatus int

const (
	SlotProcessed SlotStatus = iota
	SlotRooted
	SlotConfirmed
	SlotFirstShredReceived
	SlotCompleted
	SlotCreatedBank
	SlotDead
)

// String returns a human-readable representation of the slot status.
func (s SlotStatus) String() string {
	switch s {
	case SlotProcessed:
		return "processed"
	case SlotRooted:
		return "rooted"
	case SlotConfirmed:
		return "confirmed"
	case SlotFirstShredReceived:
		return "first_shred_received"
	case SlotCompleted:
		return "completed"
	case SlotCreatedBank:
		return "created_bank"
	case SlotDead:
		return "dead"
	default:
		return "unknown"
	}
}

// LevelFilter is the maximum verbosity the host asks the plugin to log at.
type LevelFilter int

const (
	LevelOff LevelFilter = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// String returns the lowercase level name.
func (l LevelFilter) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// ParseLevelFilter parses a configured level name. Unknown names report
// false and yield LevelInfo.
func ParseLevelFilter(name string) (LevelFilter, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "off":
		return LevelOff, true
	case "error":
		return LevelError, true
	case "warn", "warning":
		return LevelWarn, true
	case "info":
		return LevelInfo, true
	case "debug":
		return LevelDebug, true
	case "trace":
		return LevelTrace, true
	default:
		return LevelInfo, false
	}
}

// Enables reports whether a record at level passes this filter.
func (l LevelFilter) Enables(level LevelFilter) bool {
	return level != LevelOff && level <= l
}

// ReplicaAccountInfo describes an account write.
type ReplicaAccountInfo struct {
	Pubkey       []byte
	Lamports     uint64
	Owner        []byte
	Executable   bool
	RentEpoch    uint64
	Data         []byte
	WriteVersion uint64
	Txn          []byte // signature of the writing transaction, when known
}

// ReplicaTransactionInfo describes a transaction observed in a slot.
type ReplicaTransactionInfo struct {
	Signature   []byte
	IsVote      bool
	Index       int
	Transaction []byte
	Meta        []byte
}

// ReplicaBlockInfo describes block metadata for a slot.
type ReplicaBlockInfo struct {
	ParentSlot               uint64
	ParentBlockhash          string
	Slot                     uint64
	Blockhash                string
	BlockTime                *int64
	BlockHeight              *uint64
	ExecutedTransactionCount uint64
	EntryCount               uint64
}

// ReplicaEntryInfo describes a PoH entry.
type ReplicaEntryInfo struct {
	Slot                     uint64
	Index                    int
	NumHashes                uint64
	Hash                     []byte
	ExecutedTransactionCount uint64
	StartingTransactionIndex int
}
