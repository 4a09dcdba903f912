package schemas

import (
	"encoding/json"

	"github.com/swapstream/processor-go/types"
)

// SwapScheduled is the canonical post-split leg-scheduling payload.
type SwapScheduled struct {
	SwapRequestID uint64
	SwapID        uint64
	InputAmount   *types.BigInt
	SwapType      types.SwapType
}

type swapScheduledRaw struct {
	SwapRequestID u64           `json:"swapRequestId"`
	SwapID        u64           `json:"swapId"`
	InputAmount   *types.BigInt `json:"inputAmount"`
	SwapType      rawSwapType   `json:"swapType"`
	ExecuteAt     *u64          `json:"executeAt,omitempty"`
}

// SwapScheduled decodes the modern leg-scheduling event.
func (d *Decoder) SwapScheduled(raw json.RawMessage) (*SwapScheduled, error) {
	const event = "SwapScheduled"

	var v swapScheduledRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}
	swapType, err := v.SwapType.swapType()
	if err != nil {
		return nil, decodeErr(event, err)
	}
	return &SwapScheduled{
		SwapRequestID: uint64(v.SwapRequestID),
		SwapID:        uint64(v.SwapID),
		InputAmount:   v.InputAmount,
		SwapType:      swapType,
	}, nil
}

// LegacySwapScheduled is the canonical pre-split scheduling payload, where
// one event carried both the request creation and the leg.
type LegacySwapScheduled struct {
	SwapID        uint64
	SrcAsset      types.Asset
	DestAsset     types.Asset
	DepositAmount *types.BigInt
	DestAddress   string
	Origin        SwapRequestOrigin
	IsCcm         bool
}

type legacySwapScheduledRaw struct {
	SwapID             u64               `json:"swapId"`
	SourceAsset        assetRef          `json:"sourceAsset"`
	DestinationAsset   assetRef          `json:"destinationAsset"`
	DepositAmount      *types.BigInt     `json:"depositAmount"`
	DestinationAddress rawEncodedAddress `json:"destinationAddress"`
	Origin             rawOrigin         `json:"origin"`
	SwapType           *rawSwapType      `json:"swapType,omitempty"`
}

// LegacySwapScheduled decodes the pre-split scheduling event.
func (d *Decoder) LegacySwapScheduled(raw json.RawMessage) (*LegacySwapScheduled, error) {
	const event = "SwapScheduled"

	var v legacySwapScheduledRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}
	destAddr, err := d.decodeAddress(v.DestinationAddress)
	if err != nil {
		return nil, decodeErr(event, err)
	}
	origin, err := d.requestOrigin(v.Origin)
	if err != nil {
		return nil, decodeErr(event, err)
	}

	out := &LegacySwapScheduled{
		SwapID:        uint64(v.SwapID),
		SrcAsset:      v.SourceAsset.Asset(),
		DestAsset:     v.DestinationAsset.Asset(),
		DepositAmount: v.DepositAmount,
		DestAddress:   destAddr.Address,
		Origin:        origin,
	}
	if v.SwapType != nil && v.SwapType.Kind != "Swap" {
		out.IsCcm = true
	}
	return out, nil
}

// SwapExecuted is the canonical execution payload. NetworkFee and BrokerFee
// are set only by versions that carry fees on the event.
type SwapExecuted struct {
	SwapID             uint64
	SwapRequestID      uint64
	InputAmount        *types.BigInt
	IntermediateAmount *types.BigInt
	OutputAmount       *types.BigInt
	NetworkFee         *types.BigInt
	BrokerFee          *types.BigInt
}

type swapExecutedV160 struct {
	SwapID             u64           `json:"swapId"`
	SwapRequestID      u64           `json:"swapRequestId"`
	InputAmount        *types.BigInt `json:"inputAmount"`
	IntermediateAmount *types.BigInt `json:"intermediateAmount,omitempty"`
	OutputAmount       *types.BigInt `json:"outputAmount"`
	NetworkFee         *types.BigInt `json:"networkFee"`
	BrokerFee          *types.BigInt `json:"brokerFee"`
}

type swapExecutedLegacy struct {
	SwapID             u64           `json:"swapId"`
	SwapInput          *types.BigInt `json:"swapInput"`
	SwapOutput         *types.BigInt `json:"swapOutput"`
	IntermediateAmount *types.BigInt `json:"intermediateAmount,omitempty"`
}

// SwapExecuted decodes the execution event, newest shape first.
func (d *Decoder) SwapExecuted(raw json.RawMessage) (*SwapExecuted, error) {
	const event = "SwapExecuted"

	var v160 swapExecutedV160
	if err := strictUnmarshal(raw, &v160); err == nil {
		return &SwapExecuted{
			SwapID:             uint64(v160.SwapID),
			SwapRequestID:      uint64(v160.SwapRequestID),
			InputAmount:        v160.InputAmount,
			IntermediateAmount: v160.IntermediateAmount,
			OutputAmount:       v160.OutputAmount,
			NetworkFee:         v160.NetworkFee,
			BrokerFee:          v160.BrokerFee,
		}, nil
	}

	var legacy swapExecutedLegacy
	if err := strictUnmarshal(raw, &legacy); err != nil {
		return nil, decodeErr(event, err)
	}
	return &SwapExecuted{
		SwapID:             uint64(legacy.SwapID),
		InputAmount:        legacy.SwapInput,
		IntermediateAmount: legacy.IntermediateAmount,
		OutputAmount:       legacy.SwapOutput,
	}, nil
}

// SwapRescheduled is the canonical retry payload.
type SwapRescheduled struct {
	SwapID    uint64
	ExecuteAt uint64
}

type swapRescheduledRaw struct {
	SwapID    u64  `json:"swapId"`
	ExecuteAt *u64 `json:"executeAt,omitempty"`
}

// SwapRescheduled decodes the retry event.
func (d *Decoder) SwapRescheduled(raw json.RawMessage) (*SwapRescheduled, error) {
	const event = "SwapRescheduled"

	var v swapRescheduledRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}
	out := &SwapRescheduled{SwapID: uint64(v.SwapID)}
	if v.ExecuteAt != nil {
		out.ExecuteAt = uint64(*v.ExecuteAt)
	}
	return out, nil
}

// SwapRequestCompleted is the canonical terminal payload for a request.
type SwapRequestCompleted struct {
	SwapRequestID uint64
}

type swapRequestCompletedRaw struct {
	SwapRequestID u64 `json:"swapRequestId"`
}

// SwapRequestCompleted decodes the request-completion event.
func (d *Decoder) SwapRequestCompleted(raw json.RawMessage) (*SwapRequestCompleted, error) {
	const event = "SwapRequestCompleted"

	var v swapRequestCompletedRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}
	return &SwapRequestCompleted{SwapRequestID: uint64(v.SwapRequestID)}, nil
}

// SwapRequestAborted is the canonical payload of an abnormally terminated
// request.
type SwapRequestAborted struct {
	SwapRequestID uint64
	Reason        string
}

type swapRequestAbortedRaw struct {
	SwapRequestID u64 `json:"swapRequestId"`
	Reason        *struct {
		Kind string `json:"__kind"`
	} `json:"reason,omitempty"`
}

// SwapRequestAborted decodes the request-abort event. The reason variant
// set differs per runtime version and is carried through as-is.
func (d *Decoder) SwapRequestAborted(raw json.RawMessage) (*SwapRequestAborted, error) {
	const event = "SwapRequestAborted"

	var v swapRequestAbortedRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}
	out := &SwapRequestAborted{SwapRequestID: uint64(v.SwapRequestID)}
	if v.Reason != nil {
		out.Reason = v.Reason.Kind
	}
	return out, nil
}
