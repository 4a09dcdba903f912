// Package events routes event occurrences to their handlers. Handlers are
// registered per event name inside ordered version eras; for a block at a
// given spec version, the active handler for an event name is the one in
// the highest era whose minimum version does not exceed the block's
// version. Unmatched events are skipped, not failed, so blocks containing
// events the processor does not track still apply cleanly.
package events

import (
	"time"

	"go.uber.org/zap"

	"github.com/swapstream/processor-go/decode"
	"github.com/swapstream/processor-go/schemas"
	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

// Handler applies one event occurrence to the store.
type Handler func(*Context) error

// Context carries everything a handler needs: the open block transaction,
// block metadata, the event occurrence and the payload decoder.
type Context struct {
	Tx      *storage.Tx
	Block   *types.Block
	Version decode.Semver
	Event   *types.Event
	Decoder *schemas.Decoder
	Logger  *zap.Logger
}

// BlockIndex renders the event's canonical "{height}-{indexInBlock}"
// position.
func (c *Context) BlockIndex() string {
	return types.BlockIndex(c.Block.Height, c.Event.IndexInBlock)
}

// Timestamp returns the block timestamp in UTC.
func (c *Context) Timestamp() time.Time {
	return c.Block.Timestamp.UTC()
}
