package schemas

import (
	"encoding/json"
	"fmt"

	"github.com/swapstream/processor-go/decode"
	"github.com/swapstream/processor-go/types"
)

// SwapRequestOrigin is the canonical origin of a swap request. Fields
// beyond Kind are populated per origin kind only.
type SwapRequestOrigin struct {
	Kind           types.OriginType
	DepositAddress string // DEPOSIT_CHANNEL
	ChannelID      uint64 // DEPOSIT_CHANNEL
	BrokerID       string // DEPOSIT_CHANNEL, VAULT
	TxRef          string // VAULT, when the chain exposes one
	AccountID      string // ON_CHAIN
}

// SwapRequested is the canonical request-creation payload.
type SwapRequested struct {
	SwapRequestID uint64
	InputAsset    types.Asset
	OutputAsset   types.Asset
	InputAmount   *types.BigInt
	Origin        SwapRequestOrigin
	RequestType   types.RequestType
	DestAddress   string
	CcmGasBudget  *types.BigInt
	CcmMessage    string
	BrokerFees    []AffiliateFee
	RefundParams  *RefundParameters
	DcaParams     *DcaParameters
}

type rawVaultTxID struct {
	Kind  string          `json:"__kind"`
	Value json.RawMessage `json:"value"`
}

type rawOrigin struct {
	Kind           string             `json:"__kind"`
	DepositAddress *rawEncodedAddress `json:"depositAddress,omitempty"`
	ChannelID      *u64               `json:"channelId,omitempty"`
	BrokerID       string             `json:"brokerId,omitempty"`
	TxID           *rawVaultTxID      `json:"txId,omitempty"`
	TxHash         string             `json:"txHash,omitempty"`
	Value          string             `json:"value,omitempty"`
}

type rawRequestType struct {
	Kind               string                 `json:"__kind"`
	OutputAddress      *rawEncodedAddress     `json:"outputAddress,omitempty"`
	CcmDepositMetadata *rawCcmDepositMetadata `json:"ccmDepositMetadata,omitempty"`
	AccountID          string                 `json:"accountId,omitempty"`
}

type swapRequestedV180 struct {
	SwapRequestID    u64                  `json:"swapRequestId"`
	InputAsset       assetRef             `json:"inputAsset"`
	OutputAsset      assetRef             `json:"outputAsset"`
	InputAmount      *types.BigInt        `json:"inputAmount"`
	Origin           rawOrigin            `json:"origin"`
	RequestType      rawRequestType       `json:"requestType"`
	BrokerFees       []rawAffiliateFee    `json:"brokerFees"`
	DcaParameters    *rawDcaParameters    `json:"dcaParameters,omitempty"`
	RefundParameters *rawRefundParameters `json:"refundParameters,omitempty"`
}

type swapRequestedV160 struct {
	SwapRequestID u64              `json:"swapRequestId"`
	InputAsset    assetRef         `json:"inputAsset"`
	OutputAsset   assetRef         `json:"outputAsset"`
	InputAmount   *types.BigInt    `json:"inputAmount"`
	Origin        rawOrigin        `json:"origin"`
	RequestType   rawRequestType   `json:"requestType"`
	BrokerFee     *rawAffiliateFee `json:"brokerFee,omitempty"`
}

// SwapRequested decodes the request-creation event, newest shape first.
func (d *Decoder) SwapRequested(raw json.RawMessage) (*SwapRequested, error) {
	const event = "SwapRequested"

	var v180 swapRequestedV180
	if err := strictUnmarshal(raw, &v180); err == nil {
		return d.swapRequested(event, v180)
	}

	var v160 swapRequestedV160
	if err := strictUnmarshal(raw, &v160); err != nil {
		return nil, decodeErr(event, err)
	}
	flat := swapRequestedV180{
		SwapRequestID: v160.SwapRequestID,
		InputAsset:    v160.InputAsset,
		OutputAsset:   v160.OutputAsset,
		InputAmount:   v160.InputAmount,
		Origin:        v160.Origin,
		RequestType:   v160.RequestType,
	}
	if v160.BrokerFee != nil {
		flat.BrokerFees = []rawAffiliateFee{*v160.BrokerFee}
	}
	return d.swapRequested(event, flat)
}

func (d *Decoder) swapRequested(event string, v swapRequestedV180) (*SwapRequested, error) {
	origin, err := d.requestOrigin(v.Origin)
	if err != nil {
		return nil, decodeErr(event, err)
	}
	refund, err := d.refundParameters(v.RefundParameters)
	if err != nil {
		return nil, decodeErr(event, err)
	}

	out := &SwapRequested{
		SwapRequestID: uint64(v.SwapRequestID),
		InputAsset:    v.InputAsset.Asset(),
		OutputAsset:   v.OutputAsset.Asset(),
		InputAmount:   v.InputAmount,
		Origin:        origin,
		BrokerFees:    affiliateFees(v.BrokerFees),
		RefundParams:  refund,
		DcaParams:     dcaParameters(v.DcaParameters),
	}

	switch v.RequestType.Kind {
	case "NetworkFee":
		out.RequestType = types.RequestNetworkFee
	case "IngressEgressFee":
		out.RequestType = types.RequestIngressEgressFee
	case "Regular", "Ccm":
		out.RequestType = types.RequestRegular
		if v.RequestType.OutputAddress != nil {
			addr, err := d.decodeAddress(*v.RequestType.OutputAddress)
			if err != nil {
				return nil, decodeErr(event, err)
			}
			out.DestAddress = addr.Address
		}
		if md := v.RequestType.CcmDepositMetadata; md != nil {
			out.RequestType = types.RequestCcm
			out.CcmGasBudget = md.ChannelMetadata.GasBudget
			out.CcmMessage = md.ChannelMetadata.Message
		}
	case "CreditOnChain":
		out.RequestType = types.RequestOnChain
		out.DestAddress = v.RequestType.AccountID
	default:
		return nil, decodeErr(event, fmt.Errorf("unknown request type %q", v.RequestType.Kind))
	}

	return out, nil
}

func (d *Decoder) requestOrigin(raw rawOrigin) (SwapRequestOrigin, error) {
	switch raw.Kind {
	case "DepositChannel":
		if raw.DepositAddress == nil || raw.ChannelID == nil {
			return SwapRequestOrigin{}, fmt.Errorf("deposit channel origin missing fields")
		}
		addr, err := d.decodeAddress(*raw.DepositAddress)
		if err != nil {
			return SwapRequestOrigin{}, err
		}
		return SwapRequestOrigin{
			Kind:           types.OriginDepositChannel,
			DepositAddress: addr.Address,
			ChannelID:      uint64(*raw.ChannelID),
			BrokerID:       raw.BrokerID,
		}, nil
	case "Vault":
		origin := SwapRequestOrigin{Kind: types.OriginVault, BrokerID: raw.BrokerID}
		switch {
		case raw.TxID != nil:
			ref, err := vaultTxRef(raw.TxID)
			if err != nil {
				return SwapRequestOrigin{}, err
			}
			origin.TxRef = ref
		case raw.TxHash != "":
			// pre-split events carry a bare hash
			origin.TxRef = raw.TxHash
		}
		return origin, nil
	case "Internal":
		return SwapRequestOrigin{Kind: types.OriginInternal}, nil
	case "OnChainAccount":
		return SwapRequestOrigin{Kind: types.OriginOnChain, AccountID: raw.Value}, nil
	default:
		return SwapRequestOrigin{}, fmt.Errorf("unknown origin %q", raw.Kind)
	}
}

// vaultTxRef formats a vault deposit transaction id per source chain.
// Solana exposes no usable reference at request time.
func vaultTxRef(txID *rawVaultTxID) (string, error) {
	switch txID.Kind {
	case "Evm":
		var hash string
		if err := json.Unmarshal(txID.Value, &hash); err != nil {
			return "", fmt.Errorf("invalid evm tx id: %w", err)
		}
		return decode.EvmTxRef(hash)
	case "Bitcoin":
		var hash string
		if err := json.Unmarshal(txID.Value, &hash); err != nil {
			return "", fmt.Errorf("invalid bitcoin tx id: %w", err)
		}
		return decode.BitcoinTxRef(hash)
	case "Polkadot":
		var v struct {
			BlockNumber    u64 `json:"blockNumber"`
			ExtrinsicIndex u64 `json:"extrinsicIndex"`
		}
		if err := json.Unmarshal(txID.Value, &v); err != nil {
			return "", fmt.Errorf("invalid polkadot tx id: %w", err)
		}
		return decode.PolkadotTxRef(uint64(v.BlockNumber), uint64(v.ExtrinsicIndex)), nil
	case "Solana", "None":
		return "", nil
	default:
		return "", fmt.Errorf("unknown vault tx id kind %q", txID.Kind)
	}
}
