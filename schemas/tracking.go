package schemas

import (
	"encoding/json"
)

// ChainStateUpdated is the canonical per-chain tracking payload.
type ChainStateUpdated struct {
	BlockHeight uint64
}

type chainStateUpdatedRaw struct {
	NewChainState struct {
		BlockHeight u64             `json:"blockHeight"`
		TrackedData json.RawMessage `json:"trackedData,omitempty"`
	} `json:"newChainState"`
}

// ChainStateUpdated decodes the chain-tracking event. Tracked data beyond
// the height differs per chain and is not materialized.
func (d *Decoder) ChainStateUpdated(raw json.RawMessage) (*ChainStateUpdated, error) {
	const event = "ChainStateUpdated"

	var v chainStateUpdatedRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}
	return &ChainStateUpdated{BlockHeight: uint64(v.NewChainState.BlockHeight)}, nil
}
