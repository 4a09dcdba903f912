// Package handlers implements the swap lifecycle state machine. Each
// handler applies one event occurrence to the open block transaction;
// together with the era table in table.go they define the full mapping
// from on-chain events to the materialized model.
package handlers

import (
	"time"

	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

// chainBlockTime is the average block interval per external chain, used to
// estimate when a deposit channel expires in wall-clock terms.
var chainBlockTime = map[types.Chain]time.Duration{
	types.ChainEthereum: 12 * time.Second,
	types.ChainBitcoin:  10 * time.Minute,
	types.ChainPolkadot: 6 * time.Second,
	types.ChainArbitrum: 250 * time.Millisecond,
	types.ChainSolana:   400 * time.Millisecond,
}

// estimateExpiry projects the wall-clock time at which the chain reaches
// expiryBlock, from the last tracked height. Returns nil without tracking
// data or when the expiry block is already in the past.
func estimateExpiry(tracking *storage.ChainTracking, chain types.Chain, expiryBlock uint64) *time.Time {
	if tracking == nil || expiryBlock <= tracking.Height {
		return nil
	}
	blocksLeft := expiryBlock - tracking.Height
	at := tracking.BlockTrackedAt.Add(time.Duration(blocksLeft) * chainBlockTime[chain])
	return &at
}
