// Package schemas decodes raw event payloads into canonical values. Event
// names that changed shape across protocol upgrades are modeled as unions
// of the historical shapes, attempted newest to oldest with strict field
// checking; whichever variant matches, the caller always receives the same
// canonical struct. A payload matching no variant is a fatal decode
// failure.
package schemas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/swapstream/processor-go/types"
)

// ErrDecodeFailure wraps every decode error so callers can classify the
// failure as fatal without inspecting the message.
var ErrDecodeFailure = errors.New("schemas: decode failure")

// Decoder decodes event payloads. The network determines address encoding
// for chains whose display format is network dependent.
type Decoder struct {
	Network types.Network
}

// NewDecoder returns a Decoder for the given network.
func NewDecoder(network types.Network) *Decoder {
	return &Decoder{Network: network}
}

func decodeErr(event string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDecodeFailure, event, err)
}

// strictUnmarshal decodes raw into out, rejecting unknown fields. Unknown
// field rejection is what discriminates structurally between historical
// payload shapes.
func strictUnmarshal(raw json.RawMessage, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}
