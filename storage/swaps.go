package storage

import "fmt"

const seqSwaps = "swaps"

// CreateSwap stores a new swap leg keyed by its native id and indexes it
// under its swap request.
func (tx *Tx) CreateSwap(s *Swap) error {
	key := SwapKey(s.NativeID)
	exists, err := tx.has(key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("swap %d already exists", s.NativeID)
	}

	id, err := tx.nextSeq(seqSwaps)
	if err != nil {
		return err
	}
	s.ID = id

	if err := tx.putRef(RequestSwapsKey(s.RequestNativeID, s.NativeID), key); err != nil {
		return err
	}
	return tx.put(key, s)
}

// GetSwap loads a swap leg by its native id.
func (tx *Tx) GetSwap(nativeID uint64) (*Swap, error) {
	var s Swap
	if err := tx.get(SwapKey(nativeID), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSwap overwrites an existing swap leg.
func (tx *Tx) UpdateSwap(s *Swap) error {
	if s.ID == 0 {
		return fmt.Errorf("swap %d has no row id", s.NativeID)
	}
	return tx.put(SwapKey(s.NativeID), s)
}

// ListRequestSwaps returns all swap legs of a request in native-id order.
func (tx *Tx) ListRequestSwaps(requestNativeID uint64) ([]*Swap, error) {
	var swaps []*Swap
	err := tx.iterate(RequestSwapsPrefix(requestNativeID), func(_, value []byte) error {
		var s Swap
		if err := tx.get(value, &s); err != nil {
			return err
		}
		swaps = append(swaps, &s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return swaps, nil
}
