package storage

import (
	"fmt"

	"github.com/swapstream/processor-go/types"
)

const (
	seqDepositChannels = "deposit_channels"
	seqSwapChannels    = "swap_channels"
)

// CreateDepositChannel stores a plain deposit channel, assigning its row id.
func (tx *Tx) CreateDepositChannel(c *DepositChannel) error {
	id, err := tx.nextSeq(seqDepositChannels)
	if err != nil {
		return err
	}
	c.ID = id
	return tx.put(ChannelKey(c.SrcChain, c.IssuedBlock, c.ChannelID), c)
}

// GetDepositChannel loads a deposit channel by its natural key.
func (tx *Tx) GetDepositChannel(chain types.Chain, issuedBlock, channelID uint64) (*DepositChannel, error) {
	var c DepositChannel
	if err := tx.get(ChannelKey(chain, issuedBlock, channelID), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertSwapChannel stores a swap deposit channel keyed by
// (chain, issuedBlock, channelId). An existing record keeps its row id and
// is overwritten; a new one is assigned the next id and indexed by deposit
// address and expiry block.
func (tx *Tx) UpsertSwapChannel(c *SwapDepositChannel) error {
	key := SwapChannelKey(c.SrcChain, c.IssuedBlock, c.ChannelID)

	var existing SwapDepositChannel
	err := tx.get(key, &existing)
	switch err {
	case nil:
		c.ID = existing.ID
	case ErrNotFound:
		id, serr := tx.nextSeq(seqSwapChannels)
		if serr != nil {
			return serr
		}
		c.ID = id
		addrKey := SwapChannelAddrKey(c.SrcChain, c.DepositAddress, c.IssuedBlock, c.ChannelID)
		if err := tx.putRef(addrKey, key); err != nil {
			return err
		}
		expKey := SwapChannelExpiryKey(c.SrcChain, c.SrcChainExpiryBlock, c.IssuedBlock, c.ChannelID)
		if err := tx.putRef(expKey, key); err != nil {
			return err
		}
	default:
		return err
	}

	return tx.put(key, c)
}

// GetSwapChannel loads a swap deposit channel by its natural key.
func (tx *Tx) GetSwapChannel(chain types.Chain, issuedBlock, channelID uint64) (*SwapDepositChannel, error) {
	var c SwapDepositChannel
	if err := tx.get(SwapChannelKey(chain, issuedBlock, channelID), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateSwapChannel overwrites an existing swap deposit channel.
func (tx *Tx) UpdateSwapChannel(c *SwapDepositChannel) error {
	if c.ID == 0 {
		return fmt.Errorf("swap channel has no row id")
	}
	return tx.put(SwapChannelKey(c.SrcChain, c.IssuedBlock, c.ChannelID), c)
}

// FindSwapChannelByAddress returns the most recently issued swap channel on
// chain with the given deposit address, or ErrNotFound.
func (tx *Tx) FindSwapChannelByAddress(chain types.Chain, address string) (*SwapDepositChannel, error) {
	var latestKey []byte
	err := tx.iterate(SwapChannelAddrPrefix(chain, address), func(_, value []byte) error {
		latestKey = append(latestKey[:0], value...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if latestKey == nil {
		return nil, ErrNotFound
	}

	var c SwapDepositChannel
	if err := tx.get(latestKey, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindSwapChannelForOrigin returns the most recently issued swap channel
// matching the deposit address and channel id of a request origin.
func (tx *Tx) FindSwapChannelForOrigin(chain types.Chain, address string, channelID uint64) (*SwapDepositChannel, error) {
	var latestKey []byte
	suffix := []byte(fmt.Sprintf("/%020d", channelID))
	err := tx.iterate(SwapChannelAddrPrefix(chain, address), func(key, value []byte) error {
		if len(key) >= len(suffix) && string(key[len(key)-len(suffix):]) == string(suffix) {
			latestKey = append(latestKey[:0], value...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if latestKey == nil {
		return nil, ErrNotFound
	}

	var c SwapDepositChannel
	if err := tx.get(latestKey, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ExpireSwapChannels marks every unexpired channel on chain whose source
// chain expiry block is at or below height, and returns how many were
// expired. Visited index entries are removed so each channel expires once.
func (tx *Tx) ExpireSwapChannels(chain types.Chain, height uint64) (int, error) {
	type entry struct {
		indexKey []byte
		dataKey  []byte
	}
	var due []entry

	bound := SwapChannelExpiryKey(chain, height, ^uint64(0), ^uint64(0))
	err := tx.iterate(SwapChannelExpiryPrefix(chain), func(key, value []byte) error {
		if string(key) > string(bound) {
			return errStopIteration
		}
		due = append(due, entry{
			indexKey: append([]byte(nil), key...),
			dataKey:  append([]byte(nil), value...),
		})
		return nil
	})
	if err != nil && err != errStopIteration {
		return 0, err
	}

	for _, e := range due {
		var c SwapDepositChannel
		if err := tx.get(e.dataKey, &c); err != nil {
			return 0, err
		}
		c.IsExpired = true
		if err := tx.put(e.dataKey, &c); err != nil {
			return 0, err
		}
		if err := tx.delete(e.indexKey); err != nil {
			return 0, err
		}
	}
	return len(due), nil
}
