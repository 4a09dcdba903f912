package handlers

import (
	"errors"

	"go.uber.org/zap"

	"github.com/swapstream/processor-go/events"
	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

// chainStateUpdated advances the tracked external height for a chain and
// expires every swap channel whose expiry block has passed. Multiple
// updates witnessed in one processor block keep the original previous
// height so confirmation timing stays monotonic.
func chainStateUpdated(chain types.Chain) events.Handler {
	return func(ctx *events.Context) error {
		args, err := ctx.Decoder.ChainStateUpdated(ctx.Event.Args)
		if err != nil {
			return err
		}

		tracking, err := ctx.Tx.GetChainTracking(chain)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			tracking = &storage.ChainTracking{Chain: chain}
		case err != nil:
			return err
		default:
			if tracking.EventWitnessedBlock != ctx.Block.Height {
				tracking.PreviousHeight = tracking.Height
			}
		}

		tracking.Height = args.BlockHeight
		tracking.BlockTrackedAt = ctx.Timestamp()
		tracking.EventWitnessedBlock = ctx.Block.Height
		if err := ctx.Tx.PutChainTracking(tracking); err != nil {
			return err
		}

		expired, err := ctx.Tx.ExpireSwapChannels(chain, args.BlockHeight)
		if err != nil {
			return err
		}
		if expired > 0 {
			ctx.Logger.Debug("expired swap channels",
				zap.String("chain", string(chain)),
				zap.Uint64("height", args.BlockHeight),
				zap.Int("count", expired))
		}
		return nil
	}
}
