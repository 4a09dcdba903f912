package schemas

import (
	"encoding/json"
	"fmt"

	"github.com/swapstream/processor-go/decode"
	"github.com/swapstream/processor-go/types"
)

// BatchBroadcastRequested is the canonical payload linking egresses to a
// broadcast.
type BatchBroadcastRequested struct {
	BroadcastID uint64
	EgressIDs   []EgressID
}

type batchBroadcastRequestedRaw struct {
	BroadcastID u64           `json:"broadcastId"`
	EgressIDs   []rawEgressID `json:"egressIds"`
}

// BatchBroadcastRequested decodes the batch-broadcast event.
func (d *Decoder) BatchBroadcastRequested(raw json.RawMessage) (*BatchBroadcastRequested, error) {
	const event = "BatchBroadcastRequested"

	var v batchBroadcastRequestedRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}
	out := &BatchBroadcastRequested{BroadcastID: uint64(v.BroadcastID)}
	for _, id := range v.EgressIDs {
		out.EgressIDs = append(out.EgressIDs, id.egressID())
	}
	return out, nil
}

// TransactionBroadcastRequest is the canonical payload capturing the
// unsigned transaction of a broadcast attempt.
type TransactionBroadcastRequest struct {
	BroadcastID        uint64
	TransactionPayload string
}

type transactionBroadcastRequestV140 struct {
	BroadcastID        u64             `json:"broadcastId"`
	NomineeID          string          `json:"nominee,omitempty"`
	TransactionPayload json.RawMessage `json:"transactionPayload"`
	TransactionOutID   json.RawMessage `json:"transactionOutId,omitempty"`
}

type transactionBroadcastRequestLegacy struct {
	BroadcastAttemptID struct {
		BroadcastID u64 `json:"broadcastId"`
		AttemptID   u64 `json:"attemptCount,omitempty"`
	} `json:"broadcastAttemptId"`
	NomineeID          string          `json:"nominee,omitempty"`
	TransactionPayload json.RawMessage `json:"transactionPayload"`
	TransactionOutID   json.RawMessage `json:"transactionOutId,omitempty"`
}

// TransactionBroadcastRequest decodes the broadcast-attempt event. The
// payload is stored verbatim as compact JSON.
func (d *Decoder) TransactionBroadcastRequest(raw json.RawMessage) (*TransactionBroadcastRequest, error) {
	const event = "TransactionBroadcastRequest"

	var modern transactionBroadcastRequestV140
	if err := strictUnmarshal(raw, &modern); err == nil {
		return &TransactionBroadcastRequest{
			BroadcastID:        uint64(modern.BroadcastID),
			TransactionPayload: string(modern.TransactionPayload),
		}, nil
	}

	var legacy transactionBroadcastRequestLegacy
	if err := strictUnmarshal(raw, &legacy); err != nil {
		return nil, decodeErr(event, err)
	}
	return &TransactionBroadcastRequest{
		BroadcastID:        uint64(legacy.BroadcastAttemptID.BroadcastID),
		TransactionPayload: string(legacy.TransactionPayload),
	}, nil
}

// BroadcastSuccess is the canonical broadcast-completion payload. The
// transaction reference is already formatted for the chain.
type BroadcastSuccess struct {
	BroadcastID    uint64
	TransactionRef string
}

type broadcastSuccessRaw struct {
	BroadcastID      u64             `json:"broadcastId"`
	TransactionRef   json.RawMessage `json:"transactionRef,omitempty"`
	TransactionOutID json.RawMessage `json:"transactionOutId,omitempty"`
}

// BroadcastSuccess decodes the broadcast-success event for the given
// chain. Versions before the transactionRef field yield an empty ref.
func (d *Decoder) BroadcastSuccess(chain types.Chain, raw json.RawMessage) (*BroadcastSuccess, error) {
	const event = "BroadcastSuccess"

	var v broadcastSuccessRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}

	out := &BroadcastSuccess{BroadcastID: uint64(v.BroadcastID)}
	if len(v.TransactionRef) > 0 {
		ref, err := transactionRef(chain, v.TransactionRef)
		if err != nil {
			return nil, decodeErr(event, err)
		}
		out.TransactionRef = ref
	}
	return out, nil
}

// transactionRef normalizes the union of reference shapes: a Polkadot
// {blockNumber, extrinsicIndex} pair or a hex hash.
func transactionRef(chain types.Chain, raw json.RawMessage) (string, error) {
	var pair struct {
		BlockNumber    u64 `json:"blockNumber"`
		ExtrinsicIndex u64 `json:"extrinsicIndex"`
	}
	if err := strictUnmarshal(raw, &pair); err == nil {
		return decode.PolkadotTxRef(uint64(pair.BlockNumber), uint64(pair.ExtrinsicIndex)), nil
	}

	var hexRef string
	if err := json.Unmarshal(raw, &hexRef); err != nil {
		return "", fmt.Errorf("invalid transaction ref: %s", raw)
	}
	return decode.TransactionRef(chain, hexRef)
}

// BroadcastAborted is the canonical broadcast-failure payload.
type BroadcastAborted struct {
	BroadcastID uint64
}

type broadcastAbortedRaw struct {
	BroadcastID u64 `json:"broadcastId"`
}

// BroadcastAborted decodes the broadcast-aborted event.
func (d *Decoder) BroadcastAborted(raw json.RawMessage) (*BroadcastAborted, error) {
	const event = "BroadcastAborted"

	var v broadcastAbortedRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}
	return &BroadcastAborted{BroadcastID: uint64(v.BroadcastID)}, nil
}

// ThresholdSignatureInvalid is the canonical payload replacing a broadcast
// whose signature expired.
type ThresholdSignatureInvalid struct {
	BroadcastID      uint64
	RetryBroadcastID uint64
}

type thresholdSignatureInvalidRaw struct {
	BroadcastID      u64 `json:"broadcastId"`
	RetryBroadcastID u64 `json:"retryBroadcastId"`
}

// ThresholdSignatureInvalid decodes the signature-invalidation event.
func (d *Decoder) ThresholdSignatureInvalid(raw json.RawMessage) (*ThresholdSignatureInvalid, error) {
	const event = "ThresholdSignatureInvalid"

	var v thresholdSignatureInvalidRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}
	return &ThresholdSignatureInvalid{
		BroadcastID:      uint64(v.BroadcastID),
		RetryBroadcastID: uint64(v.RetryBroadcastID),
	}, nil
}
