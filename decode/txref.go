package decode

import (
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/swapstream/processor-go/types"
)

// PolkadotTxRef renders the canonical "{blockNumber}-{extrinsicIndex}"
// reference used by Polkadot-style chains.
func PolkadotTxRef(blockNumber, extrinsicIndex uint64) string {
	return fmt.Sprintf("%d-%d", blockNumber, extrinsicIndex)
}

// EvmTxRef normalizes a hex transaction hash for display.
func EvmTxRef(hash string) (string, error) {
	b, err := HexBytes(hash)
	if err != nil {
		return "", err
	}
	if len(b) != 32 {
		return "", fmt.Errorf("invalid transaction hash length %d", len(b))
	}
	return hash, nil
}

// BitcoinTxRef renders a hex transaction hash in display byte order, which
// is the reverse of the wire order.
func BitcoinTxRef(hash string) (string, error) {
	return ReverseHex(hash)
}

// SolanaTxRef encodes raw signature bytes (hex encoded upstream) as base58.
func SolanaTxRef(signature string) (string, error) {
	b, err := HexBytes(signature)
	if err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

// TransactionRef normalizes a chain-specific transaction reference carried
// as a hex blob into its canonical display form for the chain.
func TransactionRef(chain types.Chain, hexRef string) (string, error) {
	switch chain {
	case types.ChainBitcoin:
		return BitcoinTxRef(hexRef)
	case types.ChainSolana:
		return SolanaTxRef(hexRef)
	default:
		return hexRef, nil
	}
}
