package storage

import (
	"fmt"

	"github.com/swapstream/processor-go/types"
)

const seqSwapRequests = "swap_requests"

// CreateSwapRequest stores a new swap request keyed by its native id. A
// second create with the same native id is rejected.
func (tx *Tx) CreateSwapRequest(r *SwapRequest) error {
	key := SwapRequestKey(r.NativeID)
	exists, err := tx.has(key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("swap request %d already exists", r.NativeID)
	}

	id, err := tx.nextSeq(seqSwapRequests)
	if err != nil {
		return err
	}
	r.ID = id

	if r.SwapDepositChannelID != nil {
		if err := tx.putRef(ChannelRequestsKey(*r.SwapDepositChannelID, r.NativeID), key); err != nil {
			return err
		}
	}
	return tx.put(key, r)
}

// GetSwapRequest loads a swap request by its native id.
func (tx *Tx) GetSwapRequest(nativeID uint64) (*SwapRequest, error) {
	var r SwapRequest
	if err := tx.get(SwapRequestKey(nativeID), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateSwapRequest overwrites an existing swap request.
func (tx *Tx) UpdateSwapRequest(r *SwapRequest) error {
	if r.ID == 0 {
		return fmt.Errorf("swap request %d has no row id", r.NativeID)
	}
	return tx.put(SwapRequestKey(r.NativeID), r)
}

// IndexPrewitnessedRequest links a swap request to the prewitnessed deposit
// that was boosted into it, for lookup when the deposit finalises.
func (tx *Tx) IndexPrewitnessedRequest(asset types.Asset, prewitnessedID, requestNativeID uint64) error {
	key := PrewitnessRequestKey(asset, prewitnessedID, requestNativeID)
	return tx.putRef(key, SwapRequestKey(requestNativeID))
}

// ListPrewitnessedRequests returns the swap requests boosted from the given
// prewitnessed deposit.
func (tx *Tx) ListPrewitnessedRequests(asset types.Asset, prewitnessedID uint64) ([]*SwapRequest, error) {
	var requests []*SwapRequest
	err := tx.iterate(PrewitnessRequestPrefix(asset, prewitnessedID), func(_, value []byte) error {
		var r SwapRequest
		if err := tx.get(value, &r); err != nil {
			return err
		}
		requests = append(requests, &r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}
