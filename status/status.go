// Package status derives the externally visible lifecycle state of a swap
// request from its stored rows. The processor never stores a state column;
// consumers project one on read so replayed history and live data always
// agree.
package status

import (
	"errors"
	"fmt"

	"github.com/swapstream/processor-go/storage"
)

// State is the lifecycle state reported for a swap request.
type State string

const (
	AwaitingDeposit    State = "AWAITING_DEPOSIT"
	DepositReceived    State = "DEPOSIT_RECEIVED"
	SwapScheduled      State = "SWAP_SCHEDULED"
	SwapExecuted       State = "SWAP_EXECUTED"
	EgressScheduled    State = "EGRESS_SCHEDULED"
	BroadcastRequested State = "BROADCAST_REQUESTED"
	BroadcastAborted   State = "BROADCAST_ABORTED"
	Complete           State = "COMPLETE"
	Failed             State = "FAILED"
)

// ForSwapRequest projects a request and its related rows onto one State.
// broadcast must be the latest attempt for the request's egress; callers
// holding a replaced broadcast should resolve the replacement chain first
// (Resolve does this). A nil row means the corresponding stage has not been
// reached.
func ForSwapRequest(
	req *storage.SwapRequest,
	swaps []*storage.Swap,
	egress *storage.Egress,
	refundEgress *storage.Egress,
	broadcast *storage.Broadcast,
	failed *storage.FailedSwap,
) State {
	switch {
	case failed != nil:
		return Failed
	case broadcast != nil && broadcast.SucceededAt != nil:
		return Complete
	case broadcast != nil && broadcast.AbortedAt != nil:
		return BroadcastAborted
	case broadcast != nil:
		return BroadcastRequested
	case egress != nil || refundEgress != nil:
		return EgressScheduled
	case req.Completed():
		// Completed with no egress: the output was below the dust limit
		// and the egress was ignored.
		return Complete
	}

	executed := 0
	for _, s := range swaps {
		if s.ExecutedAt != nil {
			executed++
		}
	}
	switch {
	case len(swaps) > 0 && executed == len(swaps):
		return SwapExecuted
	case len(swaps) > 0:
		return SwapScheduled
	case req.DepositReceivedAt != nil || req.DepositBoostedAt != nil ||
		req.DepositAmount != nil || req.SwapInputAmount != nil:
		return DepositReceived
	default:
		return AwaitingDeposit
	}
}

// Resolve loads every row related to the request with the given native id
// and projects its state.
func Resolve(tx *storage.Tx, nativeID uint64) (State, error) {
	req, err := tx.GetSwapRequest(nativeID)
	if err != nil {
		return "", fmt.Errorf("failed to load swap request %d: %w", nativeID, err)
	}

	swaps, err := tx.ListRequestSwaps(nativeID)
	if err != nil {
		return "", err
	}

	var egress, refundEgress *storage.Egress
	if req.EgressID != nil {
		egress, err = tx.GetEgress(req.DestAsset.Chain(), *req.EgressID)
		if err != nil {
			return "", fmt.Errorf("failed to load egress for request %d: %w", nativeID, err)
		}
	}
	if req.RefundEgressID != nil {
		refundEgress, err = tx.GetEgress(req.SrcAsset.Chain(), *req.RefundEgressID)
		if err != nil {
			return "", fmt.Errorf("failed to load refund egress for request %d: %w", nativeID, err)
		}
	}

	broadcast, err := latestBroadcast(tx, egress, refundEgress)
	if err != nil {
		return "", err
	}

	failed, err := failedSwapFor(tx, nativeID)
	if err != nil {
		return "", err
	}

	return ForSwapRequest(req, swaps, egress, refundEgress, broadcast, failed), nil
}

// latestBroadcast follows the replacement chain from the egress's broadcast
// to the attempt currently in flight.
func latestBroadcast(tx *storage.Tx, egress, refundEgress *storage.Egress) (*storage.Broadcast, error) {
	var id *uint64
	switch {
	case egress != nil && egress.BroadcastID != nil:
		id = egress.BroadcastID
	case refundEgress != nil && refundEgress.BroadcastID != nil:
		id = refundEgress.BroadcastID
	default:
		return nil, nil
	}

	broadcast, err := tx.GetBroadcastByID(*id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	for broadcast.ReplacedByID != nil {
		broadcast, err = tx.GetBroadcastByID(*broadcast.ReplacedByID)
		if err != nil {
			return nil, err
		}
	}
	return broadcast, nil
}

func failedSwapFor(tx *storage.Tx, nativeID uint64) (*storage.FailedSwap, error) {
	failures, err := tx.ListFailedSwaps()
	if err != nil {
		return nil, err
	}
	for _, f := range failures {
		if f.RequestNativeID != nil && *f.RequestNativeID == nativeID {
			return f, nil
		}
	}
	return nil, nil
}
