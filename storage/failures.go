package storage

import "fmt"

const (
	seqFailedSwaps     = "failed_swaps"
	seqIgnoredEgresses = "ignored_egresses"
)

// CreateFailedSwap stores a terminal failure record. Exactly one of the two
// parent references must be set.
func (tx *Tx) CreateFailedSwap(f *FailedSwap) error {
	if (f.SwapDepositChannelID == nil) == (f.RequestNativeID == nil) {
		return fmt.Errorf("failed swap needs exactly one parent reference")
	}

	id, err := tx.nextSeq(seqFailedSwaps)
	if err != nil {
		return err
	}
	f.ID = id
	return tx.put(FailedSwapKey(id), f)
}

// ListFailedSwaps returns every failure record in insertion order.
func (tx *Tx) ListFailedSwaps() ([]*FailedSwap, error) {
	var out []*FailedSwap
	err := tx.iterate(FailedSwapsPrefix(), func(_, value []byte) error {
		var f FailedSwap
		if err := decodeValue(value, &f); err != nil {
			return err
		}
		out = append(out, &f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateIgnoredEgress records a dropped swap or refund egress.
func (tx *Tx) CreateIgnoredEgress(e *IgnoredEgress) error {
	id, err := tx.nextSeq(seqIgnoredEgresses)
	if err != nil {
		return err
	}
	e.ID = id
	return tx.put(IgnoredEgressKey(id), e)
}

// ListIgnoredEgresses returns every ignored egress in insertion order.
func (tx *Tx) ListIgnoredEgresses() ([]*IgnoredEgress, error) {
	var out []*IgnoredEgress
	err := tx.iterate(IgnoredEgressesPrefix(), func(_, value []byte) error {
		var e IgnoredEgress
		if err := decodeValue(value, &e); err != nil {
			return err
		}
		out = append(out, &e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
