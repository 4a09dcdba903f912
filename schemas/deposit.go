package schemas

import (
	"encoding/json"
	"fmt"

	"github.com/swapstream/processor-go/decode"
	"github.com/swapstream/processor-go/types"
)

// DepositIgnored is the canonical payload of a chain's deposit-ignored
// event. The deposit address is already decoded into display form.
type DepositIgnored struct {
	Asset          types.Asset
	Amount         *types.BigInt
	DepositAddress string
	Reason         types.FailedSwapReason
}

type rawDepositIgnoredReason struct {
	Kind string `json:"__kind"`
}

var depositIgnoredReasons = map[string]types.FailedSwapReason{
	"BelowMinimumDeposit": types.ReasonBelowMinimumDeposit,
	"NotEnoughToPayFees":  types.ReasonNotEnoughToPayFees,
}

type depositIgnoredRaw struct {
	Asset          assetRef                `json:"asset"`
	Amount         *types.BigInt           `json:"amount"`
	DepositAddress json.RawMessage         `json:"depositAddress"`
	Reason         rawDepositIgnoredReason `json:"reason"`
	DepositDetails json.RawMessage         `json:"depositDetails,omitempty"`
}

// rawScriptPubKey is the Bitcoin script form of a deposit address.
type rawScriptPubKey struct {
	Kind  string `json:"__kind"`
	Value string `json:"value"`
}

// DepositIgnored decodes a deposit-ignored event for the given chain. The
// deposit address encoding is chain specific: Bitcoin carries a script
// public key, Polkadot a raw public key, Solana raw bytes, EVM chains a
// plain hex address.
func (d *Decoder) DepositIgnored(chain types.Chain, raw json.RawMessage) (*DepositIgnored, error) {
	const event = "DepositIgnored"

	var v depositIgnoredRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}

	reason, ok := depositIgnoredReasons[v.Reason.Kind]
	if !ok {
		return nil, decodeErr(event, fmt.Errorf("unknown reason %q", v.Reason.Kind))
	}

	addr, err := d.depositAddress(chain, v.DepositAddress)
	if err != nil {
		return nil, decodeErr(event, err)
	}

	return &DepositIgnored{
		Asset:          v.Asset.Asset(),
		Amount:         v.Amount,
		DepositAddress: addr,
		Reason:         reason,
	}, nil
}

func (d *Decoder) depositAddress(chain types.Chain, raw json.RawMessage) (string, error) {
	switch chain {
	case types.ChainBitcoin:
		var spk rawScriptPubKey
		if err := json.Unmarshal(raw, &spk); err != nil {
			return "", fmt.Errorf("invalid script pubkey: %w", err)
		}
		return d.bitcoinScriptAddress(spk)
	case types.ChainPolkadot:
		var hexKey string
		if err := json.Unmarshal(raw, &hexKey); err != nil {
			return "", fmt.Errorf("invalid polkadot address: %w", err)
		}
		return decode.PolkadotAddress(hexKey)
	case types.ChainSolana:
		var hexAddr string
		if err := json.Unmarshal(raw, &hexAddr); err != nil {
			return "", fmt.Errorf("invalid solana address: %w", err)
		}
		return decode.SolanaAddress(hexAddr)
	default:
		var hexAddr string
		if err := json.Unmarshal(raw, &hexAddr); err != nil {
			return "", fmt.Errorf("invalid address: %w", err)
		}
		return decode.EthereumAddress(hexAddr)
	}
}

func (d *Decoder) bitcoinScriptAddress(spk rawScriptPubKey) (string, error) {
	program, err := decode.HexBytes(spk.Value)
	if err != nil {
		return "", err
	}
	switch spk.Kind {
	case "Taproot":
		return decode.BitcoinScriptAddress(1, program, d.Network)
	case "P2WPKH", "P2WSH":
		return decode.BitcoinScriptAddress(0, program, d.Network)
	default:
		return "", fmt.Errorf("unsupported script pubkey kind %q", spk.Kind)
	}
}

// Deposit action kinds.
const (
	DepositActionSwap             = "Swap"
	DepositActionCcmTransfer      = "CcmTransfer"
	DepositActionBoostersCredited = "BoostersCredited"
	DepositActionNoAction         = "NoAction"
)

// DepositAction says what the network did with a finalised or boosted
// deposit: which swap request it was credited to, or which prewitnessed
// deposit repaid its boosters.
type DepositAction struct {
	Kind                  string
	SwapRequestID         *uint64
	GasSwapRequestID      *uint64
	PrewitnessedDepositID *uint64
}

type rawDepositAction struct {
	Kind                  string `json:"__kind"`
	SwapRequestID         *u64   `json:"swapRequestId,omitempty"`
	SwapID                *u64   `json:"swapId,omitempty"`
	PrincipalSwapID       *u64   `json:"principalSwapId,omitempty"`
	GasSwapID             *u64   `json:"gasSwapId,omitempty"`
	PrewitnessedDepositID *u64   `json:"prewitnessedDepositId,omitempty"`
}

func u64Ptr(v *u64) *uint64 {
	if v == nil {
		return nil
	}
	u := uint64(*v)
	return &u
}

// action resolves the request link across version families. Pre-split
// payloads carry swapId or principalSwapId/gasSwapId; modern ones carry
// swapRequestId.
func (r rawDepositAction) action() DepositAction {
	a := DepositAction{Kind: r.Kind, PrewitnessedDepositID: u64Ptr(r.PrewitnessedDepositID)}
	switch {
	case r.PrincipalSwapID != nil:
		a.SwapRequestID = u64Ptr(r.PrincipalSwapID)
		a.GasSwapRequestID = u64Ptr(r.GasSwapID)
	case r.GasSwapID != nil:
		a.SwapRequestID = u64Ptr(r.GasSwapID)
	case r.SwapID != nil:
		a.SwapRequestID = u64Ptr(r.SwapID)
	default:
		a.SwapRequestID = u64Ptr(r.SwapRequestID)
	}
	return a
}

// DepositFinalised is the canonical payload of a chain's deposit-finalised
// event. TxRef is the source-chain transaction in display form, empty when
// the chain does not expose one.
type DepositFinalised struct {
	Asset      types.Asset
	Amount     *types.BigInt
	IngressFee *types.BigInt
	Action     DepositAction
	TxRef      string
}

type depositFinalisedRaw struct {
	Asset          assetRef         `json:"asset"`
	Amount         *types.BigInt    `json:"amount"`
	IngressFee     *types.BigInt    `json:"ingressFee"`
	Action         rawDepositAction `json:"action"`
	ChannelID      *u64             `json:"channelId,omitempty"`
	DepositAddress json.RawMessage  `json:"depositAddress,omitempty"`
	DepositDetails json.RawMessage  `json:"depositDetails,omitempty"`
	BlockHeight    *u64             `json:"blockHeight,omitempty"`
	MaxBoostFeeBps uint32           `json:"maxBoostFeeBps,omitempty"`
	OriginType     json.RawMessage  `json:"originType,omitempty"`
}

// DepositFinalised decodes a deposit-finalised event for the given chain.
func (d *Decoder) DepositFinalised(chain types.Chain, raw json.RawMessage) (*DepositFinalised, error) {
	const event = "DepositFinalised"

	var v depositFinalisedRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}

	txRef, err := depositTxRef(chain, v.DepositDetails, v.BlockHeight)
	if err != nil {
		return nil, decodeErr(event, err)
	}

	return &DepositFinalised{
		Asset:      v.Asset.Asset(),
		Amount:     v.Amount,
		IngressFee: v.IngressFee,
		Action:     v.Action.action(),
		TxRef:      txRef,
	}, nil
}

// DepositBoosted is the canonical payload of a chain's deposit-boosted
// event. DepositAmount is the sum over the per-tier boost amounts.
type DepositBoosted struct {
	Asset                 types.Asset
	DepositAmount         *types.BigInt
	BoostFee              *types.BigInt
	IngressFee            *types.BigInt
	Action                DepositAction
	PrewitnessedDepositID uint64
	MaxBoostFeeBps        uint32
	TxRef                 string
}

// rawBoostAmount is the wire tuple [tier, amount].
type rawBoostAmount struct {
	Tier   uint32
	Amount *types.BigInt
}

func (b *rawBoostAmount) UnmarshalJSON(data []byte) error {
	var parts [2]json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("invalid boost amount: %w", err)
	}
	if err := json.Unmarshal(parts[0], &b.Tier); err != nil {
		return fmt.Errorf("invalid boost tier: %w", err)
	}
	return json.Unmarshal(parts[1], &b.Amount)
}

type depositBoostedRaw struct {
	Asset                 assetRef         `json:"asset"`
	Amounts               []rawBoostAmount `json:"amounts"`
	BoostFee              *types.BigInt    `json:"boostFee"`
	IngressFee            *types.BigInt    `json:"ingressFee"`
	Action                rawDepositAction `json:"action"`
	PrewitnessedDepositID u64              `json:"prewitnessedDepositId"`
	ChannelID             *u64             `json:"channelId,omitempty"`
	DepositAddress        json.RawMessage  `json:"depositAddress,omitempty"`
	DepositDetails        json.RawMessage  `json:"depositDetails,omitempty"`
	BlockHeight           *u64             `json:"blockHeight,omitempty"`
	MaxBoostFeeBps        uint32           `json:"maxBoostFeeBps,omitempty"`
	OriginType            json.RawMessage  `json:"originType,omitempty"`
}

// DepositBoosted decodes a deposit-boosted event for the given chain.
func (d *Decoder) DepositBoosted(chain types.Chain, raw json.RawMessage) (*DepositBoosted, error) {
	const event = "DepositBoosted"

	var v depositBoostedRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}

	total := types.NewBigInt(0)
	for _, a := range v.Amounts {
		if a.Amount != nil {
			total.Add(&total.Int, &a.Amount.Int)
		}
	}

	txRef, err := depositTxRef(chain, v.DepositDetails, v.BlockHeight)
	if err != nil {
		return nil, decodeErr(event, err)
	}

	return &DepositBoosted{
		Asset:                 v.Asset.Asset(),
		DepositAmount:         total,
		BoostFee:              v.BoostFee,
		IngressFee:            v.IngressFee,
		Action:                v.Action.action(),
		PrewitnessedDepositID: uint64(v.PrewitnessedDepositID),
		MaxBoostFeeBps:        v.MaxBoostFeeBps,
		TxRef:                 txRef,
	}, nil
}

// depositTxRef derives the source-chain transaction ref from the deposit
// details. EVM chains list witness tx hashes, Bitcoin carries a txid
// (nested under id from 1.7), Polkadot the extrinsic index within
// blockHeight, Solana nothing.
func depositTxRef(chain types.Chain, details json.RawMessage, blockHeight *u64) (string, error) {
	if len(details) == 0 || string(details) == "null" {
		return "", nil
	}

	switch chain {
	case types.ChainEthereum, types.ChainArbitrum:
		var v struct {
			TxHashes []string `json:"txHashes"`
		}
		if err := json.Unmarshal(details, &v); err != nil {
			return "", fmt.Errorf("invalid evm deposit details: %w", err)
		}
		if len(v.TxHashes) == 0 {
			return "", nil
		}
		return decode.EvmTxRef(v.TxHashes[0])
	case types.ChainBitcoin:
		var v struct {
			TxID string `json:"txId"`
			ID   *struct {
				TxID string `json:"txId"`
			} `json:"id"`
		}
		if err := json.Unmarshal(details, &v); err != nil {
			return "", fmt.Errorf("invalid bitcoin deposit details: %w", err)
		}
		txID := v.TxID
		if txID == "" && v.ID != nil {
			txID = v.ID.TxID
		}
		if txID == "" {
			return "", nil
		}
		return decode.BitcoinTxRef(txID)
	case types.ChainPolkadot:
		var extrinsicIndex u64
		if err := json.Unmarshal(details, &extrinsicIndex); err != nil {
			return "", fmt.Errorf("invalid polkadot deposit details: %w", err)
		}
		if blockHeight == nil {
			return "", nil
		}
		return decode.PolkadotTxRef(uint64(*blockHeight), uint64(extrinsicIndex)), nil
	default:
		return "", nil
	}
}

// TransactionRejectedByBroker is the canonical payload of a broker-screened
// deposit rejection.
type TransactionRejectedByBroker struct {
	Asset          types.Asset
	Amount         *types.BigInt
	DepositAddress string
}

type transactionRejectedRaw struct {
	TxID           json.RawMessage `json:"txId,omitempty"`
	BroadcastID    *u64            `json:"broadcastId,omitempty"`
	DepositDetails struct {
		Asset          assetRef        `json:"asset"`
		Amount         *types.BigInt   `json:"amount"`
		DepositAddress json.RawMessage `json:"depositAddress"`
	} `json:"depositDetails"`
}

// TransactionRejectedByBroker decodes a broker rejection for the given
// chain.
func (d *Decoder) TransactionRejectedByBroker(chain types.Chain, raw json.RawMessage) (*TransactionRejectedByBroker, error) {
	const event = "TransactionRejectedByBroker"

	var v transactionRejectedRaw
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, decodeErr(event, err)
	}
	addr, err := d.depositAddress(chain, v.DepositDetails.DepositAddress)
	if err != nil {
		return nil, decodeErr(event, err)
	}
	return &TransactionRejectedByBroker{
		Asset:          v.DepositDetails.Asset.Asset(),
		Amount:         v.DepositDetails.Amount,
		DepositAddress: addr,
	}, nil
}
