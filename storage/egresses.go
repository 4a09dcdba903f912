package storage

import (
	"fmt"

	"github.com/swapstream/processor-go/types"
)

const seqEgresses = "egresses"

// CreateEgress stores a new egress keyed by (chain, native id).
func (tx *Tx) CreateEgress(e *Egress) error {
	key := EgressKey(e.Chain, e.NativeID)
	exists, err := tx.has(key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("egress %s/%d already exists", e.Chain, e.NativeID)
	}

	id, err := tx.nextSeq(seqEgresses)
	if err != nil {
		return err
	}
	e.ID = id
	return tx.put(key, e)
}

// GetEgress loads an egress by (chain, native id).
func (tx *Tx) GetEgress(chain types.Chain, nativeID uint64) (*Egress, error) {
	var e Egress
	if err := tx.get(EgressKey(chain, nativeID), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEgress overwrites an existing egress.
func (tx *Tx) UpdateEgress(e *Egress) error {
	if e.ID == 0 {
		return fmt.Errorf("egress %s/%d has no row id", e.Chain, e.NativeID)
	}
	return tx.put(EgressKey(e.Chain, e.NativeID), e)
}

// AttachEgressToBroadcast links an egress to the broadcast carrying it and
// records the link in the broadcast's egress index.
func (tx *Tx) AttachEgressToBroadcast(e *Egress, broadcastID uint64) error {
	e.BroadcastID = &broadcastID
	if err := tx.UpdateEgress(e); err != nil {
		return err
	}
	return tx.putRef(BroadcastEgressKey(broadcastID, e.Chain, e.NativeID), EgressKey(e.Chain, e.NativeID))
}

// MoveBroadcastEgresses relinks every egress of one broadcast to another,
// used when a broadcast is replaced after an invalid signature.
func (tx *Tx) MoveBroadcastEgresses(fromID, toID uint64) error {
	egresses, err := tx.ListBroadcastEgresses(fromID)
	if err != nil {
		return err
	}
	for _, e := range egresses {
		if err := tx.delete(BroadcastEgressKey(fromID, e.Chain, e.NativeID)); err != nil {
			return err
		}
		if err := tx.AttachEgressToBroadcast(e, toID); err != nil {
			return err
		}
	}
	return nil
}

// ListBroadcastEgresses returns every egress carried by a broadcast.
func (tx *Tx) ListBroadcastEgresses(broadcastID uint64) ([]*Egress, error) {
	var egresses []*Egress
	err := tx.iterate(BroadcastEgressPrefix(broadcastID), func(_, value []byte) error {
		var e Egress
		if err := tx.get(value, &e); err != nil {
			return err
		}
		egresses = append(egresses, &e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return egresses, nil
}
