package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Network identifies the protocol network the processor runs against.
// It affects address encoding (Bitcoin HRP, in particular).
type Network string

const (
	NetworkMainnet      Network = "mainnet"
	NetworkPerseverance Network = "perseverance"
	NetworkSisyphos     Network = "sisyphos"
	NetworkBackspin     Network = "backspin"
)

// BitcoinHRP returns the bech32 human-readable part for the network.
func (n Network) BitcoinHRP() string {
	switch n {
	case NetworkMainnet:
		return "bc"
	case NetworkBackspin:
		return "bcrt"
	default:
		return "tb"
	}
}

// Valid reports whether the network is a known network identifier.
func (n Network) Valid() bool {
	switch n {
	case NetworkMainnet, NetworkPerseverance, NetworkSisyphos, NetworkBackspin:
		return true
	}
	return false
}

// Chain identifies an external chain tracked by the protocol.
type Chain string

const (
	ChainEthereum Chain = "Ethereum"
	ChainBitcoin  Chain = "Bitcoin"
	ChainPolkadot Chain = "Polkadot"
	ChainArbitrum Chain = "Arbitrum"
	ChainSolana   Chain = "Solana"
)

// Chains lists every supported chain.
var Chains = []Chain{ChainEthereum, ChainBitcoin, ChainPolkadot, ChainArbitrum, ChainSolana}

// Valid reports whether the chain is a known chain identifier.
func (c Chain) Valid() bool {
	switch c {
	case ChainEthereum, ChainBitcoin, ChainPolkadot, ChainArbitrum, ChainSolana:
		return true
	}
	return false
}

// GasAsset returns the native gas asset of the chain.
func (c Chain) GasAsset() Asset {
	switch c {
	case ChainEthereum:
		return AssetEth
	case ChainBitcoin:
		return AssetBtc
	case ChainPolkadot:
		return AssetDot
	case ChainArbitrum:
		return AssetArbEth
	case ChainSolana:
		return AssetSol
	}
	return ""
}

// Asset identifies an asset in the protocol's internal naming.
type Asset string

const (
	AssetEth     Asset = "Eth"
	AssetFlip    Asset = "Flip"
	AssetUsdc    Asset = "Usdc"
	AssetUsdt    Asset = "Usdt"
	AssetDot     Asset = "Dot"
	AssetBtc     Asset = "Btc"
	AssetArbEth  Asset = "ArbEth"
	AssetArbUsdc Asset = "ArbUsdc"
	AssetSol     Asset = "Sol"
	AssetSolUsdc Asset = "SolUsdc"
)

var assetChains = map[Asset]Chain{
	AssetEth:     ChainEthereum,
	AssetFlip:    ChainEthereum,
	AssetUsdc:    ChainEthereum,
	AssetUsdt:    ChainEthereum,
	AssetDot:     ChainPolkadot,
	AssetBtc:     ChainBitcoin,
	AssetArbEth:  ChainArbitrum,
	AssetArbUsdc: ChainArbitrum,
	AssetSol:     ChainSolana,
	AssetSolUsdc: ChainSolana,
}

// Chain returns the chain the asset lives on.
func (a Asset) Chain() Chain {
	return assetChains[a]
}

// Valid reports whether the asset is a known asset identifier.
func (a Asset) Valid() bool {
	_, ok := assetChains[a]
	return ok
}

// OriginType describes where a swap request originated.
type OriginType string

const (
	OriginDepositChannel OriginType = "DEPOSIT_CHANNEL"
	OriginVault          OriginType = "VAULT"
	OriginInternal       OriginType = "INTERNAL"
	OriginOnChain        OriginType = "ON_CHAIN"
)

// RequestType classifies a swap request.
type RequestType string

const (
	RequestRegular          RequestType = "REGULAR"
	RequestCcm              RequestType = "CCM"
	RequestNetworkFee       RequestType = "NETWORK_FEE"
	RequestIngressEgressFee RequestType = "INGRESS_EGRESS_FEE"
	RequestOnChain          RequestType = "ON_CHAIN"

	// Pre-split requests are materialized from legacy SwapScheduled events.
	RequestLegacySwap RequestType = "LEGACY_SWAP"
	RequestLegacyCcm  RequestType = "LEGACY_CCM"
)

// SwapType classifies one executable swap leg.
type SwapType string

const (
	SwapTypeSwap             SwapType = "SWAP"
	SwapTypePrincipal        SwapType = "PRINCIPAL"
	SwapTypeGas              SwapType = "GAS"
	SwapTypeNetworkFee       SwapType = "NETWORK_FEE"
	SwapTypeIngressEgressFee SwapType = "INGRESS_EGRESS_FEE"
)

// FeeType classifies a fee ledger entry.
type FeeType string

const (
	FeeIngress FeeType = "INGRESS"
	FeeEgress  FeeType = "EGRESS"
	FeeNetwork FeeType = "NETWORK"
	FeeBroker  FeeType = "BROKER"
	FeeBoost   FeeType = "BOOST"
	FeeRefund  FeeType = "REFUND"
)

// FailedSwapReason is the closed set of domain failure codes.
type FailedSwapReason string

const (
	ReasonBelowMinimumDeposit         FailedSwapReason = "BelowMinimumDeposit"
	ReasonNotEnoughToPayFees          FailedSwapReason = "NotEnoughToPayFees"
	ReasonEgressAmountZero            FailedSwapReason = "EgressAmountZero"
	ReasonTransactionRejectedByBroker FailedSwapReason = "TransactionRejectedByBroker"
	ReasonSwapAborted                 FailedSwapReason = "SwapAborted"
)

// IgnoredEgressType distinguishes which egress of a request was ignored.
type IgnoredEgressType string

const (
	IgnoredEgressSwap   IgnoredEgressType = "SWAP"
	IgnoredEgressRefund IgnoredEgressType = "REFUND"
)

// BeneficiaryType distinguishes the submitting broker from affiliates.
type BeneficiaryType string

const (
	BeneficiarySubmitter BeneficiaryType = "SUBMITTER"
	BeneficiaryAffiliate BeneficiaryType = "AFFILIATE"
)

// Block is one upstream block with its pre-filtered events.
type Block struct {
	Height    uint64    `json:"height"`
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
	SpecID    string    `json:"specId"`
	Events    []Event   `json:"events"`
}

// Event is one event occurrence within a block.
type Event struct {
	Name         string          `json:"name"`
	IndexInBlock uint64          `json:"indexInBlock"`
	Args         json.RawMessage `json:"args"`
}

// BlockIndex renders the canonical "{height}-{indexInBlock}" position string.
func BlockIndex(height, indexInBlock uint64) string {
	return fmt.Sprintf("%d-%d", height, indexInBlock)
}
