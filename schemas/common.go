package schemas

import (
	"encoding/json"
	"fmt"

	"github.com/swapstream/processor-go/decode"
	"github.com/swapstream/processor-go/types"
)

// u64 accepts JSON numbers, decimal strings and hex strings.
type u64 uint64

func (u *u64) UnmarshalJSON(data []byte) error {
	var b types.BigInt
	if err := b.UnmarshalJSON(data); err != nil {
		return err
	}
	if !b.IsUint64() {
		return fmt.Errorf("value %s out of uint64 range", b.String())
	}
	*u = u64(b.Uint64())
	return nil
}

// assetRef accepts both the bare enum string ("Eth") and the tagged object
// form ({"__kind": "Eth"}) used by newer runtimes.
type assetRef types.Asset

func (a *assetRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = assetRef(s)
	} else {
		var tagged struct {
			Kind string `json:"__kind"`
		}
		if err := json.Unmarshal(data, &tagged); err != nil {
			return fmt.Errorf("invalid asset: %s", data)
		}
		*a = assetRef(tagged.Kind)
	}
	if !types.Asset(*a).Valid() {
		return fmt.Errorf("unknown asset %q", string(*a))
	}
	return nil
}

func (a assetRef) Asset() types.Asset {
	return types.Asset(a)
}

// chainRef accepts both the bare chain name and the tagged object form.
type chainRef types.Chain

func (c *chainRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = chainRef(s)
	} else {
		var tagged struct {
			Kind string `json:"__kind"`
		}
		if err := json.Unmarshal(data, &tagged); err != nil {
			return fmt.Errorf("invalid chain: %s", data)
		}
		*c = chainRef(tagged.Kind)
	}
	if !types.Chain(*c).Valid() {
		return fmt.Errorf("unknown chain %q", string(*c))
	}
	return nil
}

func (c chainRef) Chain() types.Chain {
	return types.Chain(c)
}

// Address is a decoded foreign-chain address in its canonical display form.
type Address struct {
	Chain   types.Chain
	Address string
}

// rawEncodedAddress is the tagged on-chain address form: the kind names the
// address encoding and the value is a hex blob.
type rawEncodedAddress struct {
	Kind  string `json:"__kind"`
	Value string `json:"value"`
}

var encodedAddressChains = map[string]types.Chain{
	"Eth": types.ChainEthereum,
	"Dot": types.ChainPolkadot,
	"Btc": types.ChainBitcoin,
	"Arb": types.ChainArbitrum,
	"Sol": types.ChainSolana,
}

func (d *Decoder) decodeAddress(raw rawEncodedAddress) (Address, error) {
	chain, ok := encodedAddressChains[raw.Kind]
	if !ok {
		return Address{}, fmt.Errorf("unknown address kind %q", raw.Kind)
	}

	var addr string
	var err error
	switch chain {
	case types.ChainEthereum, types.ChainArbitrum:
		addr, err = decode.EthereumAddress(raw.Value)
	case types.ChainPolkadot:
		addr, err = decode.PolkadotAddress(raw.Value)
	case types.ChainBitcoin:
		// Bitcoin channel addresses arrive as hex-encoded text.
		addr, err = decode.BitcoinStringAddress(raw.Value)
	case types.ChainSolana:
		addr, err = decode.SolanaAddress(raw.Value)
	}
	if err != nil {
		return Address{}, err
	}
	return Address{Chain: chain, Address: addr}, nil
}

// EgressID identifies an egress on its chain.
type EgressID struct {
	Chain types.Chain
	ID    uint64
}

// rawEgressID is the wire tuple [chain, id].
type rawEgressID struct {
	Chain chainRef
	ID    u64
}

func (e *rawEgressID) UnmarshalJSON(data []byte) error {
	var parts [2]json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("invalid egress id: %w", err)
	}
	if err := json.Unmarshal(parts[0], &e.Chain); err != nil {
		return err
	}
	return json.Unmarshal(parts[1], &e.ID)
}

func (e rawEgressID) egressID() EgressID {
	return EgressID{Chain: e.Chain.Chain(), ID: uint64(e.ID)}
}

// AffiliateFee is one commission entry (submitting broker or affiliate).
type AffiliateFee struct {
	Account string
	Bps     uint32
}

type rawAffiliateFee struct {
	Account string `json:"account"`
	Bps     uint32 `json:"bps"`
}

func affiliateFees(raw []rawAffiliateFee) []AffiliateFee {
	if len(raw) == 0 {
		return nil
	}
	out := make([]AffiliateFee, len(raw))
	for i, f := range raw {
		out[i] = AffiliateFee{Account: f.Account, Bps: f.Bps}
	}
	return out
}

// RefundParameters are the fill-or-kill settings of a channel or request.
type RefundParameters struct {
	MinPriceX128        *types.BigInt
	RefundAddress       string
	RetryDurationBlocks uint32
}

type rawRefundParameters struct {
	MinPrice      *types.BigInt     `json:"minPrice"`
	RefundAddress rawEncodedAddress `json:"refundAddress"`
	RetryDuration uint32            `json:"retryDuration"`
}

func (d *Decoder) refundParameters(raw *rawRefundParameters) (*RefundParameters, error) {
	if raw == nil {
		return nil, nil
	}
	addr, err := d.decodeAddress(raw.RefundAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid refund address: %w", err)
	}
	return &RefundParameters{
		MinPriceX128:        raw.MinPrice,
		RefundAddress:       addr.Address,
		RetryDurationBlocks: raw.RetryDuration,
	}, nil
}

// DcaParameters split a request into chunks executed at an interval.
type DcaParameters struct {
	NumberOfChunks      uint32
	ChunkIntervalBlocks uint32
}

type rawDcaParameters struct {
	NumberOfChunks uint32 `json:"numberOfChunks"`
	ChunkInterval  uint32 `json:"chunkInterval"`
}

func dcaParameters(raw *rawDcaParameters) *DcaParameters {
	if raw == nil {
		return nil
	}
	return &DcaParameters{
		NumberOfChunks:      raw.NumberOfChunks,
		ChunkIntervalBlocks: raw.ChunkInterval,
	}
}

// rawCcmChannelMetadata is the cross-chain message metadata attached to a
// channel or deposit.
type rawCcmChannelMetadata struct {
	Message           string        `json:"message"`
	GasBudget         *types.BigInt `json:"gasBudget"`
	CcmAdditionalData string        `json:"ccmAdditionalData,omitempty"`
	CfParameters      string        `json:"cfParameters,omitempty"`
}

type rawCcmDepositMetadata struct {
	ChannelMetadata rawCcmChannelMetadata `json:"channelMetadata"`
	SourceChain     *chainRef             `json:"sourceChain,omitempty"`
	SourceAddress   json.RawMessage       `json:"sourceAddress,omitempty"`
}

var swapTypeKinds = map[string]types.SwapType{
	"Swap":             types.SwapTypeSwap,
	"CcmPrincipal":     types.SwapTypePrincipal,
	"CcmGas":           types.SwapTypeGas,
	"NetworkFee":       types.SwapTypeNetworkFee,
	"IngressEgressFee": types.SwapTypeIngressEgressFee,
}

type rawSwapType struct {
	Kind string `json:"__kind"`
}

func (r rawSwapType) swapType() (types.SwapType, error) {
	t, ok := swapTypeKinds[r.Kind]
	if !ok {
		return "", fmt.Errorf("unknown swap type %q", r.Kind)
	}
	return t, nil
}
