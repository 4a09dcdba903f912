package decode

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"github.com/swapstream/processor-go/types"
)

// EthereumAddress normalizes a hex-encoded EVM address to its canonical
// lowercase 0x form.
func EthereumAddress(s string) (string, error) {
	b, err := HexBytes(s)
	if err != nil {
		return "", err
	}
	if len(b) != common.AddressLength {
		return "", fmt.Errorf("invalid EVM address length %d", len(b))
	}
	return "0x" + common.Bytes2Hex(b), nil
}

// BitcoinScriptAddress encodes a witness program as a bech32 (v0) or
// bech32m (v1+) address with the network's HRP.
func BitcoinScriptAddress(witnessVersion byte, program []byte, network types.Network) (string, error) {
	if witnessVersion > 16 {
		return "", fmt.Errorf("invalid witness version %d", witnessVersion)
	}
	converted, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("invalid witness program: %w", err)
	}
	data := append([]byte{witnessVersion}, converted...)
	if witnessVersion == 0 {
		return bech32.Encode(network.BitcoinHRP(), data)
	}
	return bech32.EncodeM(network.BitcoinHRP(), data)
}

// BitcoinTaprootAddress encodes a hex-encoded 32-byte taproot output key as
// a bech32m address.
func BitcoinTaprootAddress(hexProgram string, network types.Network) (string, error) {
	program, err := HexBytes(hexProgram)
	if err != nil {
		return "", err
	}
	if len(program) != 32 {
		return "", fmt.Errorf("invalid taproot program length %d", len(program))
	}
	return BitcoinScriptAddress(1, program, network)
}

// BitcoinStringAddress decodes a hex-encoded UTF-8 Bitcoin address string.
// Channel events carry Bitcoin addresses as hex-encoded text rather than a
// script payload.
func BitcoinStringAddress(hexAddr string) (string, error) {
	b, err := HexBytes(hexAddr)
	if err != nil {
		return "", err
	}
	addr := string(b)
	if addr == "" {
		return "", fmt.Errorf("empty bitcoin address")
	}
	return addr, nil
}

const (
	// PolkadotSS58Prefix is the network format used for canonical Polkadot
	// addresses.
	PolkadotSS58Prefix = 0

	ss58ChecksumLen = 2
)

var ss58Preamble = []byte("SS58PRE")

// SS58Encode encodes a 32-byte public key with the given SS58 network
// prefix.
func SS58Encode(pubkey []byte, prefix uint16) (string, error) {
	if len(pubkey) != 32 {
		return "", fmt.Errorf("invalid public key length %d", len(pubkey))
	}

	var data []byte
	switch {
	case prefix < 64:
		data = []byte{byte(prefix)}
	case prefix < 16384:
		// two-byte form per the SS58 registry encoding
		data = []byte{
			byte((prefix&0x00fc)>>2) | 0x40,
			byte(prefix>>8) | byte((prefix&0x03)<<6),
		}
	default:
		return "", fmt.Errorf("invalid ss58 prefix %d", prefix)
	}

	data = append(data, pubkey...)
	sum := ss58Checksum(data)
	data = append(data, sum[:ss58ChecksumLen]...)
	return base58.Encode(data), nil
}

// SS58Decode decodes an SS58 address, returning the network prefix and the
// 32-byte public key. The checksum is verified.
func SS58Decode(addr string) (uint16, []byte, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid ss58 address %q: %w", addr, err)
	}

	var prefix uint16
	var prefixLen int
	switch {
	case len(raw) >= 1 && raw[0] < 64:
		prefix = uint16(raw[0])
		prefixLen = 1
	case len(raw) >= 2 && raw[0] >= 64 && raw[0] < 128:
		prefix = (uint16(raw[0]&0x3f) << 2) | uint16(raw[1]>>6) | (uint16(raw[1]&0x3f) << 8)
		prefixLen = 2
	default:
		return 0, nil, fmt.Errorf("invalid ss58 address %q", addr)
	}

	if len(raw) != prefixLen+32+ss58ChecksumLen {
		return 0, nil, fmt.Errorf("invalid ss58 payload length %d", len(raw))
	}

	body := raw[:len(raw)-ss58ChecksumLen]
	sum := ss58Checksum(body)
	if sum[0] != raw[len(raw)-2] || sum[1] != raw[len(raw)-1] {
		return 0, nil, fmt.Errorf("ss58 checksum mismatch for %q", addr)
	}
	return prefix, body[prefixLen:], nil
}

func ss58Checksum(data []byte) [2]byte {
	h, _ := blake2b.New512(nil)
	h.Write(ss58Preamble)
	h.Write(data)
	var sum [2]byte
	copy(sum[:], h.Sum(nil)[:2])
	return sum
}

// PolkadotAddress normalizes a Polkadot address. Hex input is taken as the
// raw public key; SS58 input is decoded and re-encoded with the canonical
// Polkadot prefix.
func PolkadotAddress(s string) (string, error) {
	if strings.HasPrefix(s, "0x") {
		pubkey, err := HexBytes(s)
		if err != nil {
			return "", err
		}
		return SS58Encode(pubkey, PolkadotSS58Prefix)
	}
	_, pubkey, err := SS58Decode(s)
	if err != nil {
		return "", err
	}
	return SS58Encode(pubkey, PolkadotSS58Prefix)
}

// SolanaAddress encodes hex-encoded raw Solana address bytes as base58.
// Input already in base58 form is passed through.
func SolanaAddress(s string) (string, error) {
	if strings.HasPrefix(s, "0x") {
		b, err := HexBytes(s)
		if err != nil {
			return "", err
		}
		if len(b) != 32 {
			return "", fmt.Errorf("invalid solana address length %d", len(b))
		}
		return base58.Encode(b), nil
	}
	if _, err := base58.Decode(s); err != nil {
		return "", fmt.Errorf("invalid solana address %q: %w", s, err)
	}
	return s, nil
}
