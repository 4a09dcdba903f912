package handlers

import (
	"errors"

	"go.uber.org/zap"

	"github.com/swapstream/processor-go/events"
	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

// batchBroadcastRequested creates a broadcast for the chain and attaches
// every known egress in the batch. A batch that references no known egress
// is a no-op, since batches also carry non-swap transfers.
func batchBroadcastRequested(chain types.Chain) events.Handler {
	return func(ctx *events.Context) error {
		args, err := ctx.Decoder.BatchBroadcastRequested(ctx.Event.Args)
		if err != nil {
			return err
		}
		if len(args.EgressIDs) == 0 {
			return nil
		}

		var egresses []*storage.Egress
		for _, id := range args.EgressIDs {
			e, err := ctx.Tx.GetEgress(id.Chain, id.ID)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			egresses = append(egresses, e)
		}
		if len(egresses) == 0 {
			return nil
		}

		now := ctx.Timestamp()
		broadcast := &storage.Broadcast{
			Chain:               chain,
			NativeID:            args.BroadcastID,
			RequestedAt:         &now,
			RequestedBlockIndex: ctx.BlockIndex(),
		}
		if err := ctx.Tx.CreateBroadcast(broadcast); err != nil {
			return err
		}
		for _, e := range egresses {
			if err := ctx.Tx.AttachEgressToBroadcast(e, broadcast.ID); err != nil {
				return err
			}
		}

		ctx.Logger.Debug("broadcast requested",
			zap.String("chain", string(chain)),
			zap.Uint64("broadcastId", args.BroadcastID),
			zap.Int("egresses", len(egresses)))
		return nil
	}
}

// transactionBroadcastRequest stores the unsigned transaction payload on a
// known broadcast. Broadcasts for non-swap traffic are skipped.
func transactionBroadcastRequest(chain types.Chain) events.Handler {
	return func(ctx *events.Context) error {
		args, err := ctx.Decoder.TransactionBroadcastRequest(ctx.Event.Args)
		if err != nil {
			return err
		}

		broadcast, err := ctx.Tx.GetBroadcast(chain, args.BroadcastID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		broadcast.TransactionPayload = args.TransactionPayload
		return ctx.Tx.UpdateBroadcast(broadcast)
	}
}

// broadcastSuccess stamps a known broadcast as succeeded and records the
// chain transaction reference.
func broadcastSuccess(chain types.Chain) events.Handler {
	return func(ctx *events.Context) error {
		args, err := ctx.Decoder.BroadcastSuccess(chain, ctx.Event.Args)
		if err != nil {
			return err
		}

		broadcast, err := ctx.Tx.GetBroadcast(chain, args.BroadcastID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		now := ctx.Timestamp()
		broadcast.SucceededAt = &now
		broadcast.SucceededBlockIndex = ctx.BlockIndex()
		broadcast.TransactionRef = args.TransactionRef
		return ctx.Tx.UpdateBroadcast(broadcast)
	}
}

// broadcastAborted stamps a known broadcast as aborted.
func broadcastAborted(chain types.Chain) events.Handler {
	return func(ctx *events.Context) error {
		args, err := ctx.Decoder.BroadcastAborted(ctx.Event.Args)
		if err != nil {
			return err
		}

		broadcast, err := ctx.Tx.GetBroadcast(chain, args.BroadcastID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		now := ctx.Timestamp()
		broadcast.AbortedAt = &now
		broadcast.AbortedBlockIndex = ctx.BlockIndex()
		return ctx.Tx.UpdateBroadcast(broadcast)
	}
}

// thresholdSignatureInvalid replaces a known broadcast with its retry: the
// retry broadcast is created if unseen, the original points at it, and the
// original's egresses move over.
func thresholdSignatureInvalid(chain types.Chain) events.Handler {
	return func(ctx *events.Context) error {
		args, err := ctx.Decoder.ThresholdSignatureInvalid(ctx.Event.Args)
		if err != nil {
			return err
		}

		original, err := ctx.Tx.GetBroadcast(chain, args.BroadcastID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		retry, err := ctx.Tx.GetBroadcast(chain, args.RetryBroadcastID)
		if errors.Is(err, storage.ErrNotFound) {
			now := ctx.Timestamp()
			retry = &storage.Broadcast{
				Chain:               chain,
				NativeID:            args.RetryBroadcastID,
				RequestedAt:         &now,
				RequestedBlockIndex: ctx.BlockIndex(),
			}
			if err := ctx.Tx.CreateBroadcast(retry); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		original.ReplacedByID = &retry.ID
		if err := ctx.Tx.UpdateBroadcast(original); err != nil {
			return err
		}

		ctx.Logger.Info("broadcast replaced after invalid signature",
			zap.String("chain", string(chain)),
			zap.Uint64("broadcastId", args.BroadcastID),
			zap.Uint64("retryBroadcastId", args.RetryBroadcastID))
		return ctx.Tx.MoveBroadcastEgresses(original.ID, retry.ID)
	}
}
