package schemas

import (
	"encoding/json"

	"github.com/swapstream/processor-go/types"
)

// SwapDepositAddressReady is the canonical channel-opening payload.
type SwapDepositAddressReady struct {
	SrcAsset               types.Asset
	DestAsset              types.Asset
	DepositAddress         Address
	DestAddress            Address
	ChannelID              uint64
	SourceChainExpiryBlock uint64
	BrokerID               string
	BrokerCommissionBps    uint32
	BoostFeeBps            uint32
	ChannelOpeningFee      *types.BigInt
	CcmGasBudget           *types.BigInt
	CcmMessage             string
	Affiliates             []AffiliateFee
	RefundParams           *RefundParameters
	DcaParams              *DcaParameters
}

type swapDepositAddressReadyV160 struct {
	DepositAddress         rawEncodedAddress      `json:"depositAddress"`
	DestinationAddress     rawEncodedAddress      `json:"destinationAddress"`
	SourceAsset            assetRef               `json:"sourceAsset"`
	DestinationAsset       assetRef               `json:"destinationAsset"`
	ChannelID              u64                    `json:"channelId"`
	SourceChainExpiryBlock u64                    `json:"sourceChainExpiryBlock"`
	ChannelMetadata        *rawCcmChannelMetadata `json:"channelMetadata,omitempty"`
	BrokerCommissionRate   uint32                 `json:"brokerCommissionRate"`
	BrokerID               string                 `json:"brokerId"`
	BoostFee               uint32                 `json:"boostFee"`
	ChannelOpeningFee      *types.BigInt          `json:"channelOpeningFee"`
	AffiliateFees          []rawAffiliateFee      `json:"affiliateFees"`
	RefundParameters       *rawRefundParameters   `json:"refundParameters,omitempty"`
	DcaParameters          *rawDcaParameters      `json:"dcaParameters,omitempty"`
}

type swapDepositAddressReadyV150 struct {
	DepositAddress         rawEncodedAddress      `json:"depositAddress"`
	DestinationAddress     rawEncodedAddress      `json:"destinationAddress"`
	SourceAsset            assetRef               `json:"sourceAsset"`
	DestinationAsset       assetRef               `json:"destinationAsset"`
	ChannelID              u64                    `json:"channelId"`
	SourceChainExpiryBlock u64                    `json:"sourceChainExpiryBlock"`
	ChannelMetadata        *rawCcmChannelMetadata `json:"channelMetadata,omitempty"`
	BrokerCommissionRate   uint32                 `json:"brokerCommissionRate"`
	BrokerID               string                 `json:"brokerId"`
	BoostFee               uint32                 `json:"boostFee"`
	ChannelOpeningFee      *types.BigInt          `json:"channelOpeningFee"`
	AffiliateFees          []rawAffiliateFee      `json:"affiliateFees"`
}

type swapDepositAddressReadyV141 struct {
	DepositAddress         rawEncodedAddress      `json:"depositAddress"`
	DestinationAddress     rawEncodedAddress      `json:"destinationAddress"`
	SourceAsset            assetRef               `json:"sourceAsset"`
	DestinationAsset       assetRef               `json:"destinationAsset"`
	ChannelID              u64                    `json:"channelId"`
	SourceChainExpiryBlock u64                    `json:"sourceChainExpiryBlock"`
	ChannelMetadata        *rawCcmChannelMetadata `json:"channelMetadata,omitempty"`
	BrokerCommissionRate   uint32                 `json:"brokerCommissionRate"`
	BoostFee               uint32                 `json:"boostFee"`
}

// SwapDepositAddressReady decodes the channel-opening event, trying the
// historical shapes newest to oldest.
func (d *Decoder) SwapDepositAddressReady(raw json.RawMessage) (*SwapDepositAddressReady, error) {
	const event = "SwapDepositAddressReady"

	var v160 swapDepositAddressReadyV160
	if err := strictUnmarshal(raw, &v160); err == nil {
		return d.swapDepositAddressReady(event, v160)
	}

	var v150 swapDepositAddressReadyV150
	if err := strictUnmarshal(raw, &v150); err == nil {
		return d.swapDepositAddressReady(event, swapDepositAddressReadyV160{
			DepositAddress:         v150.DepositAddress,
			DestinationAddress:     v150.DestinationAddress,
			SourceAsset:            v150.SourceAsset,
			DestinationAsset:       v150.DestinationAsset,
			ChannelID:              v150.ChannelID,
			SourceChainExpiryBlock: v150.SourceChainExpiryBlock,
			ChannelMetadata:        v150.ChannelMetadata,
			BrokerCommissionRate:   v150.BrokerCommissionRate,
			BrokerID:               v150.BrokerID,
			BoostFee:               v150.BoostFee,
			ChannelOpeningFee:      v150.ChannelOpeningFee,
			AffiliateFees:          v150.AffiliateFees,
		})
	}

	var v141 swapDepositAddressReadyV141
	if err := strictUnmarshal(raw, &v141); err != nil {
		return nil, decodeErr(event, err)
	}
	return d.swapDepositAddressReady(event, swapDepositAddressReadyV160{
		DepositAddress:         v141.DepositAddress,
		DestinationAddress:     v141.DestinationAddress,
		SourceAsset:            v141.SourceAsset,
		DestinationAsset:       v141.DestinationAsset,
		ChannelID:              v141.ChannelID,
		SourceChainExpiryBlock: v141.SourceChainExpiryBlock,
		ChannelMetadata:        v141.ChannelMetadata,
		BrokerCommissionRate:   v141.BrokerCommissionRate,
		BoostFee:               v141.BoostFee,
	})
}

func (d *Decoder) swapDepositAddressReady(event string, v swapDepositAddressReadyV160) (*SwapDepositAddressReady, error) {
	depositAddr, err := d.decodeAddress(v.DepositAddress)
	if err != nil {
		return nil, decodeErr(event, err)
	}
	destAddr, err := d.decodeAddress(v.DestinationAddress)
	if err != nil {
		return nil, decodeErr(event, err)
	}
	refund, err := d.refundParameters(v.RefundParameters)
	if err != nil {
		return nil, decodeErr(event, err)
	}

	out := &SwapDepositAddressReady{
		SrcAsset:               v.SourceAsset.Asset(),
		DestAsset:              v.DestinationAsset.Asset(),
		DepositAddress:         depositAddr,
		DestAddress:            destAddr,
		ChannelID:              uint64(v.ChannelID),
		SourceChainExpiryBlock: uint64(v.SourceChainExpiryBlock),
		BrokerID:               v.BrokerID,
		BrokerCommissionBps:    v.BrokerCommissionRate,
		BoostFeeBps:            v.BoostFee,
		ChannelOpeningFee:      v.ChannelOpeningFee,
		Affiliates:             affiliateFees(v.AffiliateFees),
		RefundParams:           refund,
		DcaParams:              dcaParameters(v.DcaParameters),
	}
	if v.ChannelMetadata != nil {
		out.CcmGasBudget = v.ChannelMetadata.GasBudget
		out.CcmMessage = v.ChannelMetadata.Message
	}
	return out, nil
}

// LiquidityDepositAddressReady is the canonical liquidity channel payload.
type LiquidityDepositAddressReady struct {
	DepositAddress Address
	ChannelID      uint64
}

type liquidityDepositAddressReadyRaw struct {
	DepositAddress    rawEncodedAddress `json:"depositAddress"`
	ChannelID         u64               `json:"channelId"`
	Asset             *assetRef         `json:"asset,omitempty"`
	BoostFee          *uint32           `json:"boostFee,omitempty"`
	ChannelOpeningFee *types.BigInt     `json:"channelOpeningFee,omitempty"`
	AccountID         string            `json:"accountId,omitempty"`
}

// LiquidityDepositAddressReady decodes the liquidity channel event. Later
// versions add fields the processor does not track, so extras are optional
// rather than unioned.
func (d *Decoder) LiquidityDepositAddressReady(raw json.RawMessage) (*LiquidityDepositAddressReady, error) {
	const event = "LiquidityDepositAddressReady"

	var v liquidityDepositAddressReadyRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}
	addr, err := d.decodeAddress(v.DepositAddress)
	if err != nil {
		return nil, decodeErr(event, err)
	}
	return &LiquidityDepositAddressReady{
		DepositAddress: addr,
		ChannelID:      uint64(v.ChannelID),
	}, nil
}
