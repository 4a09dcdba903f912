package schemas

import (
	"encoding/json"
	"fmt"

	"github.com/swapstream/processor-go/types"
)

// EgressScheduled is the canonical payload shared by swap and refund
// egress scheduling. FeeAsset is set only when the version carries the fee
// as an [amount, asset] tuple; Asset is the event's top-level asset when
// present. The handler resolves the fee denomination from the two.
type EgressScheduled struct {
	SwapRequestID uint64
	EgressID      EgressID
	Amount        *types.BigInt
	FeeAmount     *types.BigInt
	FeeAsset      types.Asset
	Asset         types.Asset
	RefundFee     *types.BigInt
}

// rawEgressFee is either a bare amount (older versions) or an
// [amount, asset] tuple.
type rawEgressFee struct {
	Amount *types.BigInt
	Asset  types.Asset
}

func (f *rawEgressFee) UnmarshalJSON(data []byte) error {
	var amount types.BigInt
	if err := json.Unmarshal(data, &amount); err == nil {
		f.Amount = &amount
		return nil
	}

	var parts [2]json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("invalid egress fee: %s", data)
	}
	if err := json.Unmarshal(parts[0], &amount); err != nil {
		return err
	}
	var asset assetRef
	if err := json.Unmarshal(parts[1], &asset); err != nil {
		return err
	}
	f.Amount = &amount
	f.Asset = asset.Asset()
	return nil
}

type swapEgressScheduledV190 struct {
	SwapRequestID u64           `json:"swapRequestId"`
	EgressID      rawEgressID   `json:"egressId"`
	Amount        *types.BigInt `json:"amount"`
	EgressFee     rawEgressFee  `json:"egressFee"`
	Asset         *assetRef     `json:"asset,omitempty"`
}

// swapEgressScheduledLegacy is the pre-split shape, keyed by swapId. Those
// versions materialized requests with the swap's native id, so the swap id
// addresses the request directly.
type swapEgressScheduledLegacy struct {
	SwapID   u64           `json:"swapId"`
	EgressID rawEgressID   `json:"egressId"`
	Amount   *types.BigInt `json:"amount"`
	Fee      *types.BigInt `json:"fee,omitempty"`
	Asset    *assetRef     `json:"asset,omitempty"`
}

// SwapEgressScheduled decodes the swap egress-scheduling event, newest
// shape first. The fee asset falls back to the event's asset when the fee
// is not a tuple.
func (d *Decoder) SwapEgressScheduled(raw json.RawMessage) (*EgressScheduled, error) {
	const event = "SwapEgressScheduled"

	var v swapEgressScheduledV190
	if err := strictUnmarshal(raw, &v); err == nil {
		out := &EgressScheduled{
			SwapRequestID: uint64(v.SwapRequestID),
			EgressID:      v.EgressID.egressID(),
			Amount:        v.Amount,
			FeeAmount:     v.EgressFee.Amount,
			FeeAsset:      v.EgressFee.Asset,
		}
		if v.Asset != nil {
			out.Asset = v.Asset.Asset()
		}
		return out, nil
	}

	var legacy swapEgressScheduledLegacy
	if err := strictUnmarshal(raw, &legacy); err != nil {
		return nil, decodeErr(event, err)
	}
	out := &EgressScheduled{
		SwapRequestID: uint64(legacy.SwapID),
		EgressID:      legacy.EgressID.egressID(),
		Amount:        legacy.Amount,
		FeeAmount:     legacy.Fee,
	}
	if legacy.Asset != nil {
		out.Asset = legacy.Asset.Asset()
	}
	return out, nil
}

type refundEgressScheduledRaw struct {
	SwapRequestID u64           `json:"swapRequestId"`
	EgressID      rawEgressID   `json:"egressId"`
	Amount        *types.BigInt `json:"amount"`
	EgressFee     rawEgressFee  `json:"egressFee"`
	RefundFee     *types.BigInt `json:"refundFee,omitempty"`
}

// RefundEgressScheduled decodes the refund egress-scheduling event.
func (d *Decoder) RefundEgressScheduled(raw json.RawMessage) (*EgressScheduled, error) {
	const event = "RefundEgressScheduled"

	var v refundEgressScheduledRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}
	return &EgressScheduled{
		SwapRequestID: uint64(v.SwapRequestID),
		EgressID:      v.EgressID.egressID(),
		Amount:        v.Amount,
		FeeAmount:     v.EgressFee.Amount,
		FeeAsset:      v.EgressFee.Asset,
		RefundFee:     v.RefundFee,
	}, nil
}

// EgressIgnored is the canonical payload for a dropped swap or refund
// egress.
type EgressIgnored struct {
	SwapRequestID uint64
	Amount        *types.BigInt
	Reason        string
}

type rawIgnoreReason struct {
	Kind  string          `json:"__kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

type egressIgnoredRaw struct {
	SwapRequestID u64             `json:"swapRequestId"`
	Amount        *types.BigInt   `json:"amount"`
	Reason        rawIgnoreReason `json:"reason"`
}

// EgressIgnored decodes a swap or refund egress-ignored event.
func (d *Decoder) EgressIgnored(raw json.RawMessage) (*EgressIgnored, error) {
	const event = "EgressIgnored"

	var v egressIgnoredRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}
	return &EgressIgnored{
		SwapRequestID: uint64(v.SwapRequestID),
		Amount:        v.Amount,
		Reason:        v.Reason.Kind,
	}, nil
}
