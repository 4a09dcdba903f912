package storage

import "github.com/swapstream/processor-go/types"

// GetChainTracking loads the per-chain tracking record.
func (tx *Tx) GetChainTracking(chain types.Chain) (*ChainTracking, error) {
	var t ChainTracking
	if err := tx.get(ChainTrackingKey(chain), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// PutChainTracking stores the per-chain tracking record.
func (tx *Tx) PutChainTracking(t *ChainTracking) error {
	return tx.put(ChainTrackingKey(t.Chain), t)
}
