// notify.go: data callback exports
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

/*
#include <stdlib.h>
#include "liquidroute.h"
*/
import "C"

import (
	"unsafe"

	liquidroute "github.com/liquidroute/liquidroute-geyser-plugin"
)

//export liquidroute_update_account
func liquidroute_update_account(h C.uintptr_t, info *C.liquidroute_account_info, slot C.uint64_t, isStartup C.int) (rc C.int) {
	defer recoverExport("liquidroute_update_account")
	if info == nil {
		return nullPayload("liquidroute_update_account")
	}
	account := liquidroute.ReplicaAccountInfo{
		Pubkey:       goBytes(info.pubkey, info.pubkey_len),
		Lamports:     uint64(info.lamports),
		Owner:        goBytes(info.owner, info.owner_len),
		Executable:   info.executable != 0,
		RentEpoch:    uint64(info.rent_epoch),
		Data:         goBytes(info.data, info.data_len),
		WriteVersion: uint64(info.write_version),
		Txn:          goBytes(info.txn, info.txn_len),
	}
	return resultCode(lookup(h).UpdateAccount(account, uint64(slot), isStartup != 0))
}

//export liquidroute_notify_block_metadata
func liquidroute_notify_block_metadata(h C.uintptr_t, info *C.liquidroute_block_info) (rc C.int) {
	defer recoverExport("liquidroute_notify_block_metadata")
	if info == nil {
		return nullPayload("liquidroute_notify_block_metadata")
	}
	block := liquidroute.ReplicaBlockInfo{
		ParentSlot:               uint64(info.parent_slot),
		ParentBlockhash:          C.GoString(info.parent_blockhash),
		Slot:                     uint64(info.slot),
		Blockhash:                C.GoString(info.blockhash),
		BlockTime:                optionalInt64(info.has_block_time != 0, int64(info.block_time)),
		BlockHeight:              optionalUint64(info.has_block_height != 0, uint64(info.block_height)),
		ExecutedTransactionCount: uint64(info.executed_transaction_count),
		EntryCount:               uint64(info.entry_count),
	}
	return resultCode(lookup(h).NotifyBlockMetadata(block))
}

//export liquidroute_notify_transaction
func liquidroute_notify_transaction(h C.uintptr_t, info *C.liquidroute_transaction_info, slot C.uint64_t) (rc C.int) {
	defer recoverExport("liquidroute_notify_transaction")
	if info == nil {
		return nullPayload("liquidroute_notify_transaction")
	}
	transaction := liquidroute.ReplicaTransactionInfo{
		Signature:   goBytes(info.signature, info.signature_len),
		IsVote:      info.is_vote != 0,
		Index:       int(info.index),
		Transaction: goBytes(info.transaction, info.transaction_len),
		Meta:        goBytes(info.meta, info.meta_len),
	}
	return resultCode(lookup(h).NotifyTransaction(transaction, uint64(slot)))
}

//export liquidroute_notify_entry
func liquidroute_notify_entry(h C.uintptr_t, info *C.liquidroute_entry_info) (rc C.int) {
	defer recoverExport("liquidroute_notify_entry")
	if info == nil {
		return nullPayload("liquidroute_notify_entry")
	}
	entry := liquidroute.ReplicaEntryInfo{
		Slot:                     uint64(info.slot),
		Index:                    int(info.index),
		NumHashes:                uint64(info.num_hashes),
		Hash:                     goBytes(info.hash, info.hash_len),
		ExecutedTransactionCount: uint64(info.executed_transaction_count),
		StartingTransactionIndex: int(info.starting_transaction_index),
	}
	return resultCode(lookup(h).NotifyEntry(entry))
}

// liquidroute_setup_logger installs fn as the plugin logger. A NULL fn
// silences the plugin. ctx is passed back to fn untouched and must stay
// valid until the next setup_logger call or _destroy_plugin.
//
//export liquidroute_setup_logger
func liquidroute_setup_logger(h C.uintptr_t, fn C.liquidroute_log_fn, ctx unsafe.Pointer, level C.int) (rc C.int) {
	defer recoverExport("liquidroute_setup_logger")
	var logger liquidroute.Logger
	if fn != nil {
		logger = newHostLogger(func(level liquidroute.LevelFilter, line string) {
			message := C.CString(line)
			defer C.free(unsafe.Pointer(message))
			C.liquidroute_call_log(fn, ctx, C.int(level), message)
		})
	}
	return resultCode(lookup(h).SetupLogger(logger, levelFromHost(int(level))))
}

// goBytes copies a host buffer into Go memory.
func goBytes(p *C.uint8_t, n C.size_t) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(p), C.int(n))
}

func nullPayload(export string) C.int {
	liquidroute.DebugLogf("%s called with a NULL payload", export)
	return rcError
}
