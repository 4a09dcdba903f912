package storage

import (
	"fmt"

	"github.com/swapstream/processor-go/types"
)

// Key prefixes. Numeric segments are zero-padded fixed width so that
// lexicographic iteration order matches numeric order.
const (
	keyCursor = "/meta/cursor"

	prefixSeq = "/meta/seq/"

	prefixSwapChannels  = "/data/swapchannels/"
	prefixChannels      = "/data/channels/"
	prefixSwapRequests  = "/data/swaprequests/"
	prefixSwaps         = "/data/swaps/"
	prefixFees          = "/data/fees/"
	prefixEgresses      = "/data/egresses/"
	prefixBroadcasts    = "/data/broadcasts/"
	prefixFailedSwaps   = "/data/failedswaps/"
	prefixIgnoredEgress = "/data/ignoredegresses/"
	prefixTracking      = "/data/chaintracking/"

	prefixSwapChannelAddr   = "/index/swapchannel_addr/"
	prefixSwapChannelExpiry = "/index/swapchannel_expiry/"
	prefixRequestSwaps      = "/index/request_swaps/"
	prefixRequestFees       = "/index/request_fees/"
	prefixBroadcastEgress   = "/index/broadcast_egresses/"
	prefixBroadcastByID     = "/index/broadcast_id/"
	prefixRequestByChannel  = "/index/channel_requests/"
	prefixPrewitnessReqs    = "/index/prewitness_requests/"
)

// CursorKey returns the key of the singleton cursor record.
func CursorKey() []byte {
	return []byte(keyCursor)
}

// SeqKey returns the key of a named sequence counter.
func SeqKey(entity string) []byte {
	return []byte(prefixSeq + entity)
}

// SwapChannelKey identifies a SwapDepositChannel by its natural key.
func SwapChannelKey(chain types.Chain, issuedBlock, channelID uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d/%020d", prefixSwapChannels, chain, issuedBlock, channelID))
}

// SwapChannelAddrKey indexes swap channels by deposit address; iterating
// the address prefix visits channels in issued-block order.
func SwapChannelAddrKey(chain types.Chain, address string, issuedBlock, channelID uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%s/%020d/%020d", prefixSwapChannelAddr, chain, address, issuedBlock, channelID))
}

// SwapChannelAddrPrefix is the iteration prefix for SwapChannelAddrKey.
func SwapChannelAddrPrefix(chain types.Chain, address string) []byte {
	return []byte(fmt.Sprintf("%s%s/%s/", prefixSwapChannelAddr, chain, address))
}

// SwapChannelExpiryKey indexes unexpired swap channels by source-chain
// expiry block.
func SwapChannelExpiryKey(chain types.Chain, expiryBlock, issuedBlock, channelID uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d/%020d/%020d", prefixSwapChannelExpiry, chain, expiryBlock, issuedBlock, channelID))
}

// SwapChannelExpiryPrefix is the iteration prefix for a chain's expiry index.
func SwapChannelExpiryPrefix(chain types.Chain) []byte {
	return []byte(fmt.Sprintf("%s%s/", prefixSwapChannelExpiry, chain))
}

// ChannelKey identifies a plain DepositChannel.
func ChannelKey(chain types.Chain, issuedBlock, channelID uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d/%020d", prefixChannels, chain, issuedBlock, channelID))
}

// SwapRequestKey identifies a SwapRequest by its native id.
func SwapRequestKey(nativeID uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixSwapRequests, nativeID))
}

// SwapKey identifies a Swap by its native id.
func SwapKey(nativeID uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixSwaps, nativeID))
}

// RequestSwapsKey indexes swaps under their swap request.
func RequestSwapsKey(requestNativeID, swapNativeID uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d/%020d", prefixRequestSwaps, requestNativeID, swapNativeID))
}

// RequestSwapsPrefix is the iteration prefix for a request's swaps.
func RequestSwapsPrefix(requestNativeID uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d/", prefixRequestSwaps, requestNativeID))
}

// FeeKey identifies a fee ledger row.
func FeeKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixFees, id))
}

// RequestFeesKey indexes fees under their swap request.
func RequestFeesKey(requestNativeID, feeID uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d/%020d", prefixRequestFees, requestNativeID, feeID))
}

// RequestFeesPrefix is the iteration prefix for a request's fees.
func RequestFeesPrefix(requestNativeID uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d/", prefixRequestFees, requestNativeID))
}

// EgressKey identifies an egress by (chain, native id).
func EgressKey(chain types.Chain, nativeID uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", prefixEgresses, chain, nativeID))
}

// BroadcastKey identifies a broadcast by (chain, native id).
func BroadcastKey(chain types.Chain, nativeID uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", prefixBroadcasts, chain, nativeID))
}

// BroadcastByIDKey maps a broadcast row id back to its primary key.
func BroadcastByIDKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixBroadcastByID, id))
}

// BroadcastEgressKey indexes egresses under the broadcast carrying them.
func BroadcastEgressKey(broadcastID uint64, chain types.Chain, egressNativeID uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s/%020d", prefixBroadcastEgress, broadcastID, chain, egressNativeID))
}

// BroadcastEgressPrefix is the iteration prefix for a broadcast's egresses.
func BroadcastEgressPrefix(broadcastID uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d/", prefixBroadcastEgress, broadcastID))
}

// ChannelRequestsKey indexes swap requests under their originating channel.
func ChannelRequestsKey(channelID, requestNativeID uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d/%020d", prefixRequestByChannel, channelID, requestNativeID))
}

// PrewitnessRequestKey indexes swap requests by their boosted deposit's
// (source asset, prewitnessed deposit id).
func PrewitnessRequestKey(asset types.Asset, prewitnessedID, requestNativeID uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d/%020d", prefixPrewitnessReqs, asset, prewitnessedID, requestNativeID))
}

// PrewitnessRequestPrefix is the iteration prefix for PrewitnessRequestKey.
func PrewitnessRequestPrefix(asset types.Asset, prewitnessedID uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d/", prefixPrewitnessReqs, asset, prewitnessedID))
}

// FailedSwapKey identifies a failed swap row.
func FailedSwapKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixFailedSwaps, id))
}

// FailedSwapsPrefix is the iteration prefix over all failed swaps.
func FailedSwapsPrefix() []byte {
	return []byte(prefixFailedSwaps)
}

// IgnoredEgressKey identifies an ignored egress row.
func IgnoredEgressKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixIgnoredEgress, id))
}

// IgnoredEgressesPrefix is the iteration prefix over all ignored egresses.
func IgnoredEgressesPrefix() []byte {
	return []byte(prefixIgnoredEgress)
}

// ChainTrackingKey identifies the per-chain tracking record.
func ChainTrackingKey(chain types.Chain) []byte {
	return []byte(fmt.Sprintf("%s%s", prefixTracking, chain))
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, for use as an exclusive iteration upper bound.
func prefixUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
