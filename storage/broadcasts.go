package storage

import (
	"fmt"

	"github.com/swapstream/processor-go/types"
)

const seqBroadcasts = "broadcasts"

// CreateBroadcast stores a new broadcast keyed by (chain, native id) and
// records the reverse row-id mapping.
func (tx *Tx) CreateBroadcast(b *Broadcast) error {
	key := BroadcastKey(b.Chain, b.NativeID)
	exists, err := tx.has(key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("broadcast %s/%d already exists", b.Chain, b.NativeID)
	}

	id, err := tx.nextSeq(seqBroadcasts)
	if err != nil {
		return err
	}
	b.ID = id

	if err := tx.putRef(BroadcastByIDKey(id), key); err != nil {
		return err
	}
	return tx.put(key, b)
}

// GetBroadcast loads a broadcast by (chain, native id).
func (tx *Tx) GetBroadcast(chain types.Chain, nativeID uint64) (*Broadcast, error) {
	var b Broadcast
	if err := tx.get(BroadcastKey(chain, nativeID), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBroadcastByID loads a broadcast by its row id.
func (tx *Tx) GetBroadcastByID(id uint64) (*Broadcast, error) {
	var key string
	if err := tx.getRaw(BroadcastByIDKey(id), &key); err != nil {
		return nil, err
	}
	var b Broadcast
	if err := tx.get([]byte(key), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBroadcast overwrites an existing broadcast.
func (tx *Tx) UpdateBroadcast(b *Broadcast) error {
	if b.ID == 0 {
		return fmt.Errorf("broadcast %s/%d has no row id", b.Chain, b.NativeID)
	}
	return tx.put(BroadcastKey(b.Chain, b.NativeID), b)
}
