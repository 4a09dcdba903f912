package handlers

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swapstream/processor-go/decode"
	"github.com/swapstream/processor-go/events"
	"github.com/swapstream/processor-go/schemas"
	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

const (
	depositAddr = "0x41ad2bc63a2059f9b623533d87fe99887d794847"
	destAddr    = "0x6aa69332b63bb5b1d7ca5355387edd5624e181f2"
	brokerID    = "cFJjZKzA5rUTb9qkZMGfec7piCpiAQKr15B4nALzriMGQL8BE"
	affiliateID = "cFLRQDfEdmnv6d2XfHJNRBQHi4fruPMReLSfvB8WWD2ENbqj7"
)

var blockTime = time.Date(2024, 8, 6, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ev(name string, index uint64, args string) types.Event {
	return types.Event{Name: name, IndexInBlock: index, Args: json.RawMessage(args)}
}

// applyBlock dispatches every event of one block through the era table
// inside a single transaction, the way the fetch loop does.
func applyBlock(t *testing.T, s *storage.Store, version string, height uint64, evs ...types.Event) error {
	t.Helper()

	v := decode.ParseSemver(version)
	block := &types.Block{Height: height, Timestamp: blockTime, Events: evs}
	registry := Registry()

	tx := s.Begin()
	for i := range evs {
		handler, ok := registry.Lookup(evs[i].Name, v)
		if !ok {
			continue
		}
		ctx := &events.Context{
			Tx:      tx,
			Block:   block,
			Version: v,
			Event:   &evs[i],
			Decoder: schemas.NewDecoder(types.NetworkMainnet),
			Logger:  zap.NewNop(),
		}
		if err := handler(ctx); err != nil {
			tx.Discard()
			return err
		}
	}
	return tx.Commit()
}

func mustApply(t *testing.T, s *storage.Store, version string, height uint64, evs ...types.Event) {
	t.Helper()
	require.NoError(t, applyBlock(t, s, version, height, evs...))
}

func openChannel(t *testing.T, s *storage.Store, height uint64) {
	t.Helper()
	mustApply(t, s, "1.9.0", height, ev("Swapping.SwapDepositAddressReady", 0, `{
		"depositAddress": {"__kind": "Eth", "value": "`+depositAddr+`"},
		"destinationAddress": {"__kind": "Eth", "value": "`+destAddr+`"},
		"sourceAsset": {"__kind": "Eth"},
		"destinationAsset": {"__kind": "Usdc"},
		"channelId": "100",
		"sourceChainExpiryBlock": "5000",
		"brokerCommissionRate": 30,
		"brokerId": "`+brokerID+`",
		"boostFee": 0,
		"channelOpeningFee": "0",
		"affiliateFees": [{"account": "`+affiliateID+`", "bps": 10}]
	}`))
}

func TestChannelToCompletion(t *testing.T) {
	s := newTestStore(t)

	mustApply(t, s, "1.9.0", 1, ev("Swapping.SwapDepositAddressReady", 0, `{
		"depositAddress": {"__kind": "Eth", "value": "`+depositAddr+`"},
		"destinationAddress": {"__kind": "Eth", "value": "`+destAddr+`"},
		"sourceAsset": {"__kind": "Eth"},
		"destinationAsset": {"__kind": "Usdc"},
		"channelId": "100",
		"sourceChainExpiryBlock": "5000",
		"brokerCommissionRate": 30,
		"brokerId": "`+brokerID+`",
		"boostFee": 0,
		"channelOpeningFee": "0",
		"affiliateFees": [{"account": "`+affiliateID+`", "bps": 10}]
	}`))

	// Request and its leg arrive in one block; the leg must see the
	// request created earlier in the same transaction.
	mustApply(t, s, "1.9.0", 2,
		ev("Swapping.SwapRequested", 0, `{
			"swapRequestId": "1",
			"inputAsset": {"__kind": "Eth"},
			"outputAsset": {"__kind": "Usdc"},
			"inputAmount": "5000000000000000000",
			"origin": {
				"__kind": "DepositChannel",
				"depositAddress": {"__kind": "Eth", "value": "`+depositAddr+`"},
				"channelId": "100",
				"brokerId": "`+brokerID+`"
			},
			"requestType": {
				"__kind": "Regular",
				"outputAddress": {"__kind": "Eth", "value": "`+destAddr+`"}
			},
			"brokerFees": [
				{"account": "`+brokerID+`", "bps": 30},
				{"account": "`+affiliateID+`", "bps": 10}
			]
		}`),
		ev("Swapping.SwapScheduled", 1, `{
			"swapRequestId": "1",
			"swapId": "7",
			"inputAmount": "5000000000000000000",
			"swapType": {"__kind": "Swap"}
		}`),
	)

	mustApply(t, s, "1.9.0", 3, ev("Swapping.SwapExecuted", 0, `{
		"swapId": "7",
		"swapRequestId": "1",
		"inputAmount": "5000000000000000000",
		"outputAmount": "9800000000",
		"networkFee": "1000000",
		"brokerFee": "500000"
	}`))

	mustApply(t, s, "1.9.0", 4,
		ev("Swapping.SwapEgressScheduled", 0, `{
			"swapRequestId": "1",
			"egressId": [{"__kind": "Ethereum"}, "33"],
			"amount": "9790000000",
			"egressFee": ["10000000", {"__kind": "Usdc"}]
		}`),
		ev("Swapping.SwapRequestCompleted", 1, `{"swapRequestId": "1"}`),
	)

	mustApply(t, s, "1.9.0", 5, ev("EthereumIngressEgress.BatchBroadcastRequested", 0, `{
		"broadcastId": "9",
		"egressIds": [[{"__kind": "Ethereum"}, "33"]]
	}`))

	mustApply(t, s, "1.9.0", 6, ev("EthereumBroadcaster.BroadcastSuccess", 0, `{
		"broadcastId": "9",
		"transactionRef": "0xd2ca0fe1b753bab5aaab6c7fcc7bc0e8102fa2b555ba74cbbf3fd1fca0e5da52"
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		req, err := tx.GetSwapRequest(1)
		require.NoError(t, err)
		assert.True(t, req.Completed())
		assert.Equal(t, types.OriginDepositChannel, req.OriginType)
		assert.Equal(t, types.RequestRegular, req.RequestType)
		assert.Equal(t, "9800000000", req.SwapOutputAmount.String())
		require.NotNil(t, req.SwapDepositChannelID)
		require.NotNil(t, req.EgressID)
		assert.Equal(t, uint64(33), *req.EgressID)
		require.Len(t, req.Beneficiaries, 2)
		assert.Equal(t, types.BeneficiarySubmitter, req.Beneficiaries[0].Type)
		assert.Equal(t, types.BeneficiaryAffiliate, req.Beneficiaries[1].Type)
		assert.Equal(t, uint32(40), req.TotalBrokerCommissionBps)

		swap, err := tx.GetSwap(7)
		require.NoError(t, err)
		require.NotNil(t, swap.ExecutedAt)
		assert.Equal(t, "3-0", swap.ExecutedBlockIndex)

		fees, err := tx.ListRequestFees(1)
		require.NoError(t, err)
		feeTypes := make(map[types.FeeType]string)
		for _, f := range fees {
			feeTypes[f.Type] = f.Amount.String()
		}
		assert.Equal(t, "1000000", feeTypes[types.FeeNetwork])
		assert.Equal(t, "500000", feeTypes[types.FeeBroker])
		assert.Equal(t, "10000000", feeTypes[types.FeeEgress])

		broadcast, err := tx.GetBroadcast(types.ChainEthereum, 9)
		require.NoError(t, err)
		require.NotNil(t, broadcast.SucceededAt)
		assert.Equal(t,
			"0xd2ca0fe1b753bab5aaab6c7fcc7bc0e8102fa2b555ba74cbbf3fd1fca0e5da52",
			broadcast.TransactionRef)

		egresses, err := tx.ListBroadcastEgresses(broadcast.ID)
		require.NoError(t, err)
		require.Len(t, egresses, 1)
		assert.Equal(t, "9790000000", egresses[0].Amount.String())
		return nil
	}))
}

func TestChannelUpsertKeepsRowID(t *testing.T) {
	s := newTestStore(t)
	openChannel(t, s, 1)
	openChannel(t, s, 1)

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		channel, err := tx.FindSwapChannelByAddress(types.ChainEthereum, depositAddr)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), channel.ID)
		assert.Equal(t, uint32(40), channel.TotalBrokerCommissionBps)
		return nil
	}))
}

func TestDepositIgnoredBelowMinimum(t *testing.T) {
	s := newTestStore(t)
	openChannel(t, s, 1)

	mustApply(t, s, "1.9.0", 2, ev("EthereumIngressEgress.DepositIgnored", 0, `{
		"asset": {"__kind": "Eth"},
		"amount": "100",
		"depositAddress": "`+depositAddr+`",
		"reason": {"__kind": "BelowMinimumDeposit"}
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		failures, err := tx.ListFailedSwaps()
		require.NoError(t, err)
		require.Len(t, failures, 1)
		f := failures[0]
		assert.Equal(t, types.ReasonBelowMinimumDeposit, f.Reason)
		assert.Equal(t, types.ChainEthereum, f.SrcChain)
		assert.Equal(t, types.ChainEthereum, f.DestChain)
		assert.Equal(t, "100", f.DepositAmount.String())
		require.NotNil(t, f.SwapDepositChannelID)
		assert.Nil(t, f.RequestNativeID)
		return nil
	}))
}

func TestDepositIgnoredUnknownChannelIsSkipped(t *testing.T) {
	s := newTestStore(t)

	// No channel was ever opened for this address: the event is logged and
	// dropped without failing the block.
	mustApply(t, s, "1.9.0", 1, ev("EthereumIngressEgress.DepositIgnored", 0, `{
		"asset": {"__kind": "Eth"},
		"amount": "100",
		"depositAddress": "`+depositAddr+`",
		"reason": {"__kind": "BelowMinimumDeposit"}
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		failures, err := tx.ListFailedSwaps()
		require.NoError(t, err)
		assert.Empty(t, failures)
		return nil
	}))
}

func TestDepositFinalisedStampsRequest(t *testing.T) {
	s := newTestStore(t)
	openChannel(t, s, 1)

	mustApply(t, s, "1.9.0", 2, ev("Swapping.SwapRequested", 0, `{
		"swapRequestId": "1",
		"inputAsset": {"__kind": "Eth"},
		"outputAsset": {"__kind": "Usdc"},
		"inputAmount": "1000000",
		"origin": {
			"__kind": "DepositChannel",
			"depositAddress": {"__kind": "Eth", "value": "`+depositAddr+`"},
			"channelId": "100",
			"brokerId": "`+brokerID+`"
		},
		"requestType": {
			"__kind": "Regular",
			"outputAddress": {"__kind": "Eth", "value": "`+destAddr+`"}
		},
		"brokerFees": []
	}`))

	mustApply(t, s, "1.9.0", 3, ev("EthereumIngressEgress.DepositFinalised", 2, `{
		"asset": {"__kind": "Eth"},
		"amount": "1000000",
		"ingressFee": "4668",
		"channelId": "100",
		"action": {"__kind": "Swap", "swapRequestId": "1"},
		"depositAddress": "`+depositAddr+`",
		"depositDetails": {"txHashes": ["0x5ff8ff5b1a6418bd60970966b6776c0f34aa9e77abe8fd97a29a23e2f73c347e"]},
		"blockHeight": "128",
		"maxBoostFeeBps": 0
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		req, err := tx.GetSwapRequest(1)
		require.NoError(t, err)
		assert.Equal(t, "1000000", req.DepositAmount.String())
		require.NotNil(t, req.DepositReceivedAt)
		assert.Equal(t, "3-2", req.DepositReceivedBlockIndex)
		assert.Equal(t, "0x5ff8ff5b1a6418bd60970966b6776c0f34aa9e77abe8fd97a29a23e2f73c347e", req.DepositTransactionRef)

		fees, err := tx.ListRequestFees(1)
		require.NoError(t, err)
		require.Len(t, fees, 1)
		assert.Equal(t, types.FeeIngress, fees[0].Type)
		assert.Equal(t, types.AssetEth, fees[0].Asset)
		assert.Equal(t, "4668", fees[0].Amount.String())
		return nil
	}))
}

func TestDepositBoostedRecordsFeesAndBoostState(t *testing.T) {
	s := newTestStore(t)
	openChannel(t, s, 1)

	mustApply(t, s, "1.9.0", 2, ev("Swapping.SwapRequested", 0, `{
		"swapRequestId": "4",
		"inputAsset": {"__kind": "Eth"},
		"outputAsset": {"__kind": "Usdc"},
		"inputAmount": "1000000",
		"origin": {
			"__kind": "DepositChannel",
			"depositAddress": {"__kind": "Eth", "value": "`+depositAddr+`"},
			"channelId": "100",
			"brokerId": "`+brokerID+`"
		},
		"requestType": {
			"__kind": "Regular",
			"outputAddress": {"__kind": "Eth", "value": "`+destAddr+`"}
		},
		"brokerFees": []
	}`))

	mustApply(t, s, "1.9.0", 3, ev("EthereumIngressEgress.DepositBoosted", 1, `{
		"asset": {"__kind": "Eth"},
		"amounts": [[5, "600000"], [10, "400000"]],
		"boostFee": "500",
		"ingressFee": "1000",
		"channelId": "100",
		"prewitnessedDepositId": "101",
		"action": {"__kind": "Swap", "swapRequestId": "4"},
		"maxBoostFeeBps": 7
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		req, err := tx.GetSwapRequest(4)
		require.NoError(t, err)
		require.NotNil(t, req.DepositBoostedAt)
		assert.Equal(t, "3-1", req.DepositBoostedBlockIndex)
		assert.Equal(t, uint32(7), req.MaxBoostFeeBps)
		// 500 of 1000000 in basis points.
		assert.Equal(t, uint32(5), req.EffectiveBoostFeeBps)
		require.NotNil(t, req.PrewitnessedDepositID)
		assert.Equal(t, uint64(101), *req.PrewitnessedDepositID)

		fees, err := tx.ListRequestFees(4)
		require.NoError(t, err)
		require.Len(t, fees, 2)
		assert.Equal(t, types.FeeBoost, fees[0].Type)
		assert.Equal(t, "500", fees[0].Amount.String())
		assert.Equal(t, types.FeeIngress, fees[1].Type)
		assert.Equal(t, "1000", fees[1].Amount.String())
		return nil
	}))

	// Finalisation of the boosted deposit backfills the tx ref through the
	// prewitnessed deposit link.
	mustApply(t, s, "1.9.0", 4, ev("EthereumIngressEgress.DepositFinalised", 0, `{
		"asset": {"__kind": "Eth"},
		"amount": "1000000",
		"ingressFee": "0",
		"action": {"__kind": "BoostersCredited", "prewitnessedDepositId": "101"},
		"depositDetails": {"txHashes": ["0x5ff8ff5b1a6418bd60970966b6776c0f34aa9e77abe8fd97a29a23e2f73c347e"]}
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		req, err := tx.GetSwapRequest(4)
		require.NoError(t, err)
		assert.Equal(t, "0x5ff8ff5b1a6418bd60970966b6776c0f34aa9e77abe8fd97a29a23e2f73c347e", req.DepositTransactionRef)
		return nil
	}))
}

func TestBroadcastRetryReplacement(t *testing.T) {
	s := newTestStore(t)
	openChannel(t, s, 1)

	mustApply(t, s, "1.9.0", 2,
		ev("Swapping.SwapRequested", 0, `{
			"swapRequestId": "1",
			"inputAsset": {"__kind": "Eth"},
			"outputAsset": {"__kind": "Usdc"},
			"inputAmount": "1000",
			"origin": {
				"__kind": "DepositChannel",
				"depositAddress": {"__kind": "Eth", "value": "`+depositAddr+`"},
				"channelId": "100",
				"brokerId": "`+brokerID+`"
			},
			"requestType": {
				"__kind": "Regular",
				"outputAddress": {"__kind": "Eth", "value": "`+destAddr+`"}
			},
			"brokerFees": []
		}`),
		ev("Swapping.SwapEgressScheduled", 1, `{
			"swapRequestId": "1",
			"egressId": [{"__kind": "Ethereum"}, "33"],
			"amount": "990",
			"egressFee": "10"
		}`),
		ev("EthereumIngressEgress.BatchBroadcastRequested", 2, `{
			"broadcastId": "9",
			"egressIds": [[{"__kind": "Ethereum"}, "33"]]
		}`),
	)

	mustApply(t, s, "1.9.0", 3, ev("EthereumBroadcaster.ThresholdSignatureInvalid", 0, `{
		"broadcastId": "9",
		"retryBroadcastId": "10"
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		original, err := tx.GetBroadcast(types.ChainEthereum, 9)
		require.NoError(t, err)
		retry, err := tx.GetBroadcast(types.ChainEthereum, 10)
		require.NoError(t, err)

		require.NotNil(t, original.ReplacedByID)
		assert.Equal(t, retry.ID, *original.ReplacedByID)

		moved, err := tx.ListBroadcastEgresses(retry.ID)
		require.NoError(t, err)
		require.Len(t, moved, 1)
		require.NotNil(t, moved[0].BroadcastID)
		assert.Equal(t, retry.ID, *moved[0].BroadcastID)

		left, err := tx.ListBroadcastEgresses(original.ID)
		require.NoError(t, err)
		assert.Empty(t, left)
		return nil
	}))
}

func TestBroadcastEventsSkipUnknownBroadcast(t *testing.T) {
	s := newTestStore(t)

	mustApply(t, s, "1.9.0", 1,
		ev("EthereumBroadcaster.BroadcastSuccess", 0, `{"broadcastId": "77"}`),
		ev("EthereumBroadcaster.BroadcastAborted", 1, `{"broadcastId": "77"}`),
		ev("EthereumBroadcaster.ThresholdSignatureInvalid", 2, `{"broadcastId": "77", "retryBroadcastId": "78"}`),
	)

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		_, err := tx.GetBroadcast(types.ChainEthereum, 77)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = tx.GetBroadcast(types.ChainEthereum, 78)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		return nil
	}))
}

func TestDcaChunks(t *testing.T) {
	s := newTestStore(t)
	openChannel(t, s, 1)

	mustApply(t, s, "1.9.0", 2, ev("Swapping.SwapRequested", 0, `{
		"swapRequestId": "1",
		"inputAsset": {"__kind": "Eth"},
		"outputAsset": {"__kind": "Usdc"},
		"inputAmount": "4000",
		"origin": {
			"__kind": "DepositChannel",
			"depositAddress": {"__kind": "Eth", "value": "`+depositAddr+`"},
			"channelId": "100",
			"brokerId": "`+brokerID+`"
		},
		"requestType": {
			"__kind": "Regular",
			"outputAddress": {"__kind": "Eth", "value": "`+destAddr+`"}
		},
		"brokerFees": [],
		"dcaParameters": {"numberOfChunks": 4, "chunkInterval": 2}
	}`))

	for i := uint64(0); i < 4; i++ {
		height := 3 + i*2
		swapID := 10 + i
		mustApply(t, s, "1.9.0", height, ev("Swapping.SwapScheduled", 0, `{
			"swapRequestId": "1",
			"swapId": "`+jsonUint(swapID)+`",
			"inputAmount": "1000",
			"swapType": {"__kind": "Swap"}
		}`))
		mustApply(t, s, "1.9.0", height+1, ev("Swapping.SwapExecuted", 0, `{
			"swapId": "`+jsonUint(swapID)+`",
			"swapRequestId": "1",
			"inputAmount": "1000",
			"outputAmount": "2500",
			"networkFee": "10",
			"brokerFee": "0"
		}`))
	}

	mustApply(t, s, "1.9.0", 11, ev("Swapping.SwapRequestCompleted", 0, `{"swapRequestId": "1"}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		req, err := tx.GetSwapRequest(1)
		require.NoError(t, err)
		assert.Equal(t, uint32(4), req.DcaNumberOfChunks)
		assert.Equal(t, uint32(2), req.DcaChunkIntervalBlocks)
		assert.Equal(t, "10000", req.SwapOutputAmount.String())

		swaps, err := tx.ListRequestSwaps(1)
		require.NoError(t, err)
		require.Len(t, swaps, 4)
		for _, leg := range swaps {
			require.NotNil(t, leg.ExecutedAt)
		}
		return nil
	}))
}

func TestSwapRescheduledThenExecuted(t *testing.T) {
	s := newTestStore(t)
	openChannel(t, s, 1)

	mustApply(t, s, "1.9.0", 2,
		ev("Swapping.SwapRequested", 0, `{
			"swapRequestId": "1",
			"inputAsset": {"__kind": "Eth"},
			"outputAsset": {"__kind": "Usdc"},
			"inputAmount": "1000",
			"origin": {
				"__kind": "DepositChannel",
				"depositAddress": {"__kind": "Eth", "value": "`+depositAddr+`"},
				"channelId": "100",
				"brokerId": "`+brokerID+`"
			},
			"requestType": {
				"__kind": "Regular",
				"outputAddress": {"__kind": "Eth", "value": "`+destAddr+`"}
			},
			"brokerFees": []
		}`),
		ev("Swapping.SwapScheduled", 1, `{
			"swapRequestId": "1",
			"swapId": "7",
			"inputAmount": "1000",
			"swapType": {"__kind": "Swap"}
		}`),
	)

	mustApply(t, s, "1.9.0", 3, ev("Swapping.SwapRescheduled", 0, `{"swapId": "7", "executeAt": "8"}`))
	mustApply(t, s, "1.9.0", 4, ev("Swapping.SwapRescheduled", 0, `{"swapId": "7", "executeAt": "10"}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		swap, err := tx.GetSwap(7)
		require.NoError(t, err)
		assert.Equal(t, uint32(2), swap.RetryCount)
		require.NotNil(t, swap.LatestRescheduledAt)
		assert.Equal(t, "4-0", swap.LatestRescheduledBlockIndex)
		return nil
	}))

	mustApply(t, s, "1.9.0", 5, ev("Swapping.SwapExecuted", 0, `{
		"swapId": "7",
		"swapRequestId": "1",
		"inputAmount": "1000",
		"outputAmount": "2500",
		"networkFee": "10",
		"brokerFee": "0"
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		swap, err := tx.GetSwap(7)
		require.NoError(t, err)
		require.NotNil(t, swap.ExecutedAt)
		assert.Nil(t, swap.LatestRescheduledAt)
		assert.Empty(t, swap.LatestRescheduledBlockIndex)
		assert.Equal(t, uint32(2), swap.RetryCount)
		return nil
	}))
}

func TestLegacyScheduledAndExecuted(t *testing.T) {
	s := newTestStore(t)

	mustApply(t, s, "1.4.1", 1, ev("Swapping.SwapScheduled", 0, `{
		"swapId": "3",
		"sourceAsset": {"__kind": "Eth"},
		"destinationAsset": {"__kind": "Usdc"},
		"depositAmount": "1000",
		"destinationAddress": {"__kind": "Eth", "value": "`+destAddr+`"},
		"origin": {"__kind": "Vault", "txHash": "0x53fa2ff38efa9f7052aab6d0cb8e42bd0b02856dbbd2b7883687b7e9a0ba1513"}
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		req, err := tx.GetSwapRequest(3)
		require.NoError(t, err)
		assert.Equal(t, types.RequestLegacySwap, req.RequestType)
		assert.Equal(t, types.OriginVault, req.OriginType)
		assert.False(t, req.Completed())
		return nil
	}))

	mustApply(t, s, "1.4.1", 2, ev("Swapping.SwapExecuted", 0, `{
		"swapId": "3",
		"swapInput": "1000",
		"swapOutput": "990"
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		req, err := tx.GetSwapRequest(3)
		require.NoError(t, err)
		assert.True(t, req.Completed())
		assert.Equal(t, "990", req.SwapOutputAmount.String())

		fees, err := tx.ListRequestFees(3)
		require.NoError(t, err)
		assert.Empty(t, fees)
		return nil
	}))
}

func TestLegacyScheduledUnknownChannelIsNoop(t *testing.T) {
	s := newTestStore(t)

	mustApply(t, s, "1.4.1", 1, ev("Swapping.SwapScheduled", 0, `{
		"swapId": "3",
		"sourceAsset": {"__kind": "Eth"},
		"destinationAsset": {"__kind": "Usdc"},
		"depositAmount": "1000",
		"destinationAddress": {"__kind": "Eth", "value": "`+destAddr+`"},
		"origin": {
			"__kind": "DepositChannel",
			"depositAddress": {"__kind": "Eth", "value": "`+depositAddr+`"},
			"channelId": "100"
		}
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		_, err := tx.GetSwapRequest(3)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		return nil
	}))
}

func TestChainStateUpdatedExpiresChannels(t *testing.T) {
	s := newTestStore(t)
	openChannel(t, s, 1) // expires at source chain block 5000

	mustApply(t, s, "1.9.0", 2, ev("EthereumChainTracking.ChainStateUpdated", 0,
		`{"newChainState": {"blockHeight": "4000"}}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		channel, err := tx.FindSwapChannelByAddress(types.ChainEthereum, depositAddr)
		require.NoError(t, err)
		assert.False(t, channel.IsExpired)

		tracking, err := tx.GetChainTracking(types.ChainEthereum)
		require.NoError(t, err)
		assert.Equal(t, uint64(4000), tracking.Height)
		assert.Equal(t, uint64(0), tracking.PreviousHeight)
		return nil
	}))

	mustApply(t, s, "1.9.0", 3, ev("EthereumChainTracking.ChainStateUpdated", 0,
		`{"newChainState": {"blockHeight": "5500"}}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		channel, err := tx.FindSwapChannelByAddress(types.ChainEthereum, depositAddr)
		require.NoError(t, err)
		assert.True(t, channel.IsExpired)

		tracking, err := tx.GetChainTracking(types.ChainEthereum)
		require.NoError(t, err)
		assert.Equal(t, uint64(5500), tracking.Height)
		assert.Equal(t, uint64(4000), tracking.PreviousHeight)
		return nil
	}))
}

func TestChainStateUpdatedSameBlockKeepsPreviousHeight(t *testing.T) {
	s := newTestStore(t)

	mustApply(t, s, "1.9.0", 1, ev("EthereumChainTracking.ChainStateUpdated", 0,
		`{"newChainState": {"blockHeight": "100"}}`))
	mustApply(t, s, "1.9.0", 2,
		ev("EthereumChainTracking.ChainStateUpdated", 0, `{"newChainState": {"blockHeight": "200"}}`),
		ev("EthereumChainTracking.ChainStateUpdated", 1, `{"newChainState": {"blockHeight": "300"}}`),
	)

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		tracking, err := tx.GetChainTracking(types.ChainEthereum)
		require.NoError(t, err)
		assert.Equal(t, uint64(300), tracking.Height)
		// Both updates landed in processor block 2, so the previous height
		// stays at the last height of block 1.
		assert.Equal(t, uint64(100), tracking.PreviousHeight)
		return nil
	}))
}

func TestEgressIgnoredRecordsDrop(t *testing.T) {
	s := newTestStore(t)
	openChannel(t, s, 1)

	mustApply(t, s, "1.9.0", 2, ev("Swapping.SwapRequested", 0, `{
		"swapRequestId": "1",
		"inputAsset": {"__kind": "Eth"},
		"outputAsset": {"__kind": "Usdc"},
		"inputAmount": "1000",
		"origin": {
			"__kind": "DepositChannel",
			"depositAddress": {"__kind": "Eth", "value": "`+depositAddr+`"},
			"channelId": "100",
			"brokerId": "`+brokerID+`"
		},
		"requestType": {
			"__kind": "Regular",
			"outputAddress": {"__kind": "Eth", "value": "`+destAddr+`"}
		},
		"brokerFees": []
	}`))

	mustApply(t, s, "1.9.0", 3, ev("Swapping.SwapEgressIgnored", 0, `{
		"swapRequestId": "1",
		"amount": "0",
		"reason": {"__kind": "BelowEgressDustLimit"}
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		ignored, err := tx.ListIgnoredEgresses()
		require.NoError(t, err)
		require.Len(t, ignored, 1)
		assert.Equal(t, types.IgnoredEgressSwap, ignored[0].Type)
		assert.Equal(t, uint64(1), ignored[0].RequestNativeID)
		assert.Equal(t, "0", ignored[0].Amount.String())
		assert.Equal(t, "3-0", ignored[0].IgnoredBlockIndex)
		return nil
	}))
}

func TestVaultOriginRequest(t *testing.T) {
	s := newTestStore(t)

	mustApply(t, s, "1.9.0", 1, ev("Swapping.SwapRequested", 0, `{
		"swapRequestId": "5",
		"inputAsset": {"__kind": "Btc"},
		"outputAsset": {"__kind": "Eth"},
		"inputAmount": "250000",
		"origin": {
			"__kind": "Vault",
			"txId": {
				"__kind": "Bitcoin",
				"value": "0x53fa2ff38efa9f7052aab6d0cb8e42bd0b02856dbbd2b7883687b7e9a0ba1513"
			},
			"brokerId": "`+brokerID+`"
		},
		"requestType": {
			"__kind": "Regular",
			"outputAddress": {"__kind": "Eth", "value": "`+destAddr+`"}
		},
		"brokerFees": []
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		req, err := tx.GetSwapRequest(5)
		require.NoError(t, err)
		assert.Equal(t, types.OriginVault, req.OriginType)
		// Bitcoin tx refs display byte reversed.
		assert.Equal(t,
			"1315baa0e9b7873688b7d2bb6d85020bbd428ecbd0b6aa52709ffa8ef32ffa53",
			req.DepositTransactionRef)
		require.NotNil(t, req.DepositAmount)
		assert.Equal(t, "250000", req.DepositAmount.String())
		return nil
	}))
}

func TestSwapRequestAborted(t *testing.T) {
	s := newTestStore(t)

	mustApply(t, s, "1.9.0", 1, ev("Swapping.SwapRequested", 0, `{
		"swapRequestId": "5",
		"inputAsset": {"__kind": "Btc"},
		"outputAsset": {"__kind": "Eth"},
		"inputAmount": "250000",
		"origin": {
			"__kind": "Vault",
			"txId": {
				"__kind": "Bitcoin",
				"value": "0x53fa2ff38efa9f7052aab6d0cb8e42bd0b02856dbbd2b7883687b7e9a0ba1513"
			},
			"brokerId": "`+brokerID+`"
		},
		"requestType": {
			"__kind": "Regular",
			"outputAddress": {"__kind": "Eth", "value": "`+destAddr+`"}
		},
		"brokerFees": []
	}`))
	mustApply(t, s, "1.9.0", 2, ev("Swapping.SwapRequestAborted", 0, `{
		"swapRequestId": "5",
		"reason": {"__kind": "RefundFailed"}
	}`))

	require.NoError(t, s.View(func(tx *storage.Tx) error {
		req, err := tx.GetSwapRequest(5)
		require.NoError(t, err)
		assert.True(t, req.Completed())
		assert.Equal(t, "2-0", req.CompletedBlockIndex)

		failures, err := tx.ListFailedSwaps()
		require.NoError(t, err)
		require.Len(t, failures, 1)
		f := failures[0]
		assert.Equal(t, types.FailedSwapReason("RefundFailed"), f.Reason)
		assert.Equal(t, types.ChainBitcoin, f.SrcChain)
		require.NotNil(t, f.RequestNativeID)
		assert.Equal(t, uint64(5), *f.RequestNativeID)
		return nil
	}))
}

func TestUnknownEventNamesAreSkipped(t *testing.T) {
	s := newTestStore(t)
	mustApply(t, s, "1.9.0", 1, ev("Swapping.SomethingNew", 0, `{"whatever": true}`))
}

func TestRegistryEraResolution(t *testing.T) {
	registry := Registry()

	_, ok := registry.Lookup("Swapping.SwapRequested", decode.ParseSemver("1.4.1"))
	assert.False(t, ok, "request split events must not resolve before 1.6.0")

	_, ok = registry.Lookup("Swapping.SwapRequested", decode.ParseSemver("1.6.0"))
	assert.True(t, ok)

	_, ok = registry.Lookup("EthereumIngressEgress.TransactionRejectedByBroker", decode.ParseSemver("1.6.0"))
	assert.False(t, ok)
	_, ok = registry.Lookup("EthereumIngressEgress.TransactionRejectedByBroker", decode.ParseSemver("1.7.0"))
	assert.True(t, ok)

	_, ok = registry.Lookup("Swapping.SwapScheduled", decode.ParseSemver("1.1.0"))
	assert.False(t, ok, "nothing resolves below the first era")

	names := registry.Names()
	assert.Contains(t, names, "Swapping.SwapRequested")
	assert.Contains(t, names, "BitcoinChainTracking.ChainStateUpdated")
	assert.Contains(t, names, "LiquidityProvider.LiquidityDepositAddressReady")
}

func jsonUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
