package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var (
	decimalRe = regexp.MustCompile(`^[0-9]+$`)
	hexRe     = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)
)

// BigInt is an arbitrary-precision unsigned integer as it appears in event
// payloads. Upstream encodes amounts as decimal strings, hex strings or raw
// JSON numbers depending on the spec version; all three decode to the same
// value. Malformed input is an error, never a zero value.
type BigInt struct {
	big.Int
}

// NewBigInt returns a BigInt holding the given uint64.
func NewBigInt(v uint64) *BigInt {
	b := new(BigInt)
	b.SetUint64(v)
	return b
}

// NewBigIntFromString parses a decimal string into a BigInt.
func NewBigIntFromString(s string) (*BigInt, error) {
	b := new(BigInt)
	if err := b.setString(s); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *BigInt) setString(s string) error {
	switch {
	case decimalRe.MatchString(s):
		b.Int.SetString(s, 10)
		return nil
	case hexRe.MatchString(s):
		b.Int.SetString(strings.TrimPrefix(s, "0x"), 16)
		return nil
	default:
		return fmt.Errorf("invalid integer literal %q", s)
	}
}

// UnmarshalJSON accepts decimal strings, 0x-prefixed hex strings and JSON
// numbers.
func (b *BigInt) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty integer value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return b.setString(s)
	}
	// JSON number: must be a plain non-negative integer
	s := string(data)
	if !decimalRe.MatchString(s) {
		return fmt.Errorf("invalid integer literal %s", s)
	}
	b.Int.SetString(s, 10)
	return nil
}

// MarshalJSON renders the value as a decimal string.
func (b *BigInt) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	return json.Marshal(b.Int.String())
}

// BigIntOrZero returns the wrapped big.Int, or zero when b is nil.
func BigIntOrZero(b *BigInt) *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return &b.Int
}
