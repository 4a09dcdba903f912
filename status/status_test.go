package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

var stamp = time.Date(2024, 8, 6, 12, 0, 0, 0, time.UTC)

func request() *storage.SwapRequest {
	return &storage.SwapRequest{
		NativeID:    1,
		SrcAsset:    types.AssetBtc,
		DestAsset:   types.AssetEth,
		RequestedAt: stamp,
	}
}

func TestForSwapRequestPrecedence(t *testing.T) {
	deposited := request()
	deposited.DepositAmount = types.NewBigInt(1000)

	completed := request()
	completed.CompletedAt = &stamp

	scheduled := &storage.Swap{NativeID: 10, ScheduledAt: stamp}
	executed := &storage.Swap{NativeID: 10, ScheduledAt: stamp, ExecutedAt: &stamp}

	egress := &storage.Egress{NativeID: 5, Chain: types.ChainEthereum}
	pending := &storage.Broadcast{ID: 1, NativeID: 3}
	succeeded := &storage.Broadcast{ID: 1, NativeID: 3, SucceededAt: &stamp}
	aborted := &storage.Broadcast{ID: 1, NativeID: 3, AbortedAt: &stamp}
	failure := &storage.FailedSwap{Reason: types.ReasonBelowMinimumDeposit}

	tests := []struct {
		name         string
		req          *storage.SwapRequest
		swaps        []*storage.Swap
		egress       *storage.Egress
		refundEgress *storage.Egress
		broadcast    *storage.Broadcast
		failed       *storage.FailedSwap
		want         State
	}{
		{name: "nothing yet", req: request(), want: AwaitingDeposit},
		{name: "deposit witnessed", req: deposited, want: DepositReceived},
		{name: "leg scheduled", req: deposited, swaps: []*storage.Swap{scheduled}, want: SwapScheduled},
		{name: "one chunk pending", req: deposited, swaps: []*storage.Swap{executed, scheduled}, want: SwapScheduled},
		{name: "all legs executed", req: deposited, swaps: []*storage.Swap{executed}, want: SwapExecuted},
		{name: "egress scheduled", req: deposited, swaps: []*storage.Swap{executed}, egress: egress, want: EgressScheduled},
		{name: "refund egress scheduled", req: deposited, refundEgress: egress, want: EgressScheduled},
		{name: "broadcast pending", req: deposited, egress: egress, broadcast: pending, want: BroadcastRequested},
		{name: "broadcast aborted", req: deposited, egress: egress, broadcast: aborted, want: BroadcastAborted},
		{name: "broadcast succeeded", req: deposited, egress: egress, broadcast: succeeded, want: Complete},
		{name: "completed without egress", req: completed, swaps: []*storage.Swap{executed}, want: Complete},
		{name: "failed wins over everything", req: deposited, egress: egress, broadcast: succeeded, failed: failure, want: Failed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForSwapRequest(tt.req, tt.swaps, tt.egress, tt.refundEgress, tt.broadcast, tt.failed)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFollowsBroadcastReplacement(t *testing.T) {
	store, err := storage.OpenMemory()
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Update(func(tx *storage.Tx) error {
		req := request()
		req.DepositAmount = types.NewBigInt(1000)
		require.NoError(t, tx.CreateSwapRequest(req))

		egress := &storage.Egress{
			Chain:           types.ChainEthereum,
			NativeID:        5,
			Amount:          types.NewBigInt(900),
			ScheduledAt:     stamp,
			RequestNativeID: req.NativeID,
		}
		require.NoError(t, tx.CreateEgress(egress))
		req.EgressID = &egress.NativeID
		require.NoError(t, tx.UpdateSwapRequest(req))

		original := &storage.Broadcast{Chain: types.ChainEthereum, NativeID: 3, RequestedAt: &stamp}
		require.NoError(t, tx.CreateBroadcast(original))
		require.NoError(t, tx.AttachEgressToBroadcast(egress, original.ID))

		retry := &storage.Broadcast{Chain: types.ChainEthereum, NativeID: 4, RequestedAt: &stamp, SucceededAt: &stamp}
		require.NoError(t, tx.CreateBroadcast(retry))
		original.ReplacedByID = &retry.ID
		return tx.UpdateBroadcast(original)
	}))

	require.NoError(t, store.View(func(tx *storage.Tx) error {
		state, err := Resolve(tx, 1)
		require.NoError(t, err)
		// The egress still points at the replaced broadcast; the state
		// comes from the retry that succeeded.
		assert.Equal(t, Complete, state)
		return nil
	}))
}

func TestResolveFailedRequest(t *testing.T) {
	store, err := storage.OpenMemory()
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Update(func(tx *storage.Tx) error {
		req := request()
		require.NoError(t, tx.CreateSwapRequest(req))
		id := req.NativeID
		return tx.CreateFailedSwap(&storage.FailedSwap{
			Reason:           types.ReasonEgressAmountZero,
			SrcChain:         types.ChainBitcoin,
			RequestNativeID:  &id,
			FailedAt:         stamp,
			FailedBlockIndex: "10-2",
		})
	}))

	require.NoError(t, store.View(func(tx *storage.Tx) error {
		state, err := Resolve(tx, 1)
		require.NoError(t, err)
		assert.Equal(t, Failed, state)
		return nil
	}))
}

func TestResolveUnknownRequest(t *testing.T) {
	store, err := storage.OpenMemory()
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.View(func(tx *storage.Tx) error {
		_, err := Resolve(tx, 99)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		return nil
	}))
}
