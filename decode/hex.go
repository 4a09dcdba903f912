package decode

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HexBytes decodes a 0x-prefixed hex string into raw bytes. The string must
// be even length with hex digits only; anything else is a decode failure
// rather than a silently truncated or zeroed value.
func HexBytes(s string) ([]byte, error) {
	body, found := strings.CutPrefix(s, "0x")
	if !found {
		return nil, fmt.Errorf("hex string %q missing 0x prefix", s)
	}
	if len(body)%2 != 0 {
		return nil, fmt.Errorf("hex string %q has odd length", s)
	}
	b, err := hex.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string %q: %w", s, err)
	}
	return b, nil
}

// ReverseHex re-encodes a 0x-prefixed hex string with its byte order
// reversed and no prefix. Bitcoin transaction hashes are displayed in
// reverse byte order relative to their wire encoding.
func ReverseHex(s string) (string, error) {
	b, err := HexBytes(s)
	if err != nil {
		return "", err
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return hex.EncodeToString(b), nil
}
