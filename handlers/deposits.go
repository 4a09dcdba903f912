package handlers

import (
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/swapstream/processor-go/events"
	"github.com/swapstream/processor-go/schemas"
	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

// depositIgnored records a failed deposit against its channel. A deposit
// ignored on an unknown channel is logged and skipped: not every deposit
// address belongs to a tracked swap channel.
func depositIgnored(chain types.Chain) events.Handler {
	return func(ctx *events.Context) error {
		args, err := ctx.Decoder.DepositIgnored(chain, ctx.Event.Args)
		if err != nil {
			return err
		}

		channel, err := ctx.Tx.FindSwapChannelByAddress(chain, args.DepositAddress)
		if errors.Is(err, storage.ErrNotFound) {
			ctx.Logger.Warn("deposit ignored for unknown channel",
				zap.String("chain", string(chain)),
				zap.String("depositAddress", args.DepositAddress))
			return nil
		}
		if err != nil {
			return err
		}

		return ctx.Tx.CreateFailedSwap(&storage.FailedSwap{
			Reason:               args.Reason,
			SrcChain:             chain,
			SrcAsset:             args.Asset,
			DestChain:            channel.DestAsset.Chain(),
			DestAddress:          channel.DestAddress,
			DepositAmount:        args.Amount,
			SwapDepositChannelID: &channel.ID,
			FailedAt:             ctx.Timestamp(),
			FailedBlockIndex:     ctx.BlockIndex(),
		})
	}
}

// depositFinalised stamps the witnessed deposit on the swap request the
// network credited it to and records the ingress fee. A CCM deposit split
// into principal and gas requests stamps both.
func depositFinalised(chain types.Chain) events.Handler {
	return func(ctx *events.Context) error {
		args, err := ctx.Decoder.DepositFinalised(chain, ctx.Event.Args)
		if err != nil {
			return err
		}

		switch args.Action.Kind {
		case schemas.DepositActionSwap, schemas.DepositActionCcmTransfer:
			if args.Action.SwapRequestID == nil {
				ctx.Logger.Warn("deposit finalised without a swap request id",
					zap.String("chain", string(chain)))
				return nil
			}
			req, err := ctx.Tx.GetSwapRequest(*args.Action.SwapRequestID)
			if err != nil {
				return fmt.Errorf("failed to load swap request %d for finalised deposit: %w",
					*args.Action.SwapRequestID, err)
			}

			now := ctx.Timestamp()
			req.DepositAmount = args.Amount
			req.DepositReceivedAt = &now
			req.DepositReceivedBlockIndex = ctx.BlockIndex()
			if args.TxRef != "" {
				req.DepositTransactionRef = args.TxRef
			}
			if err := ctx.Tx.UpdateSwapRequest(req); err != nil {
				return err
			}
			if err := ctx.Tx.AddFee(&storage.Fee{
				RequestNativeID: req.NativeID,
				Type:            types.FeeIngress,
				Asset:           args.Asset,
				Amount:          args.IngressFee,
			}); err != nil {
				return err
			}

			if args.Action.GasSwapRequestID == nil {
				return nil
			}
			gasReq, err := ctx.Tx.GetSwapRequest(*args.Action.GasSwapRequestID)
			if err != nil {
				return fmt.Errorf("failed to load gas swap request %d for finalised deposit: %w",
					*args.Action.GasSwapRequestID, err)
			}
			gasReq.DepositReceivedAt = &now
			gasReq.DepositReceivedBlockIndex = ctx.BlockIndex()
			return ctx.Tx.UpdateSwapRequest(gasReq)

		case schemas.DepositActionBoostersCredited:
			// The boosted request already carries the deposit; finalisation
			// only backfills the source transaction ref.
			if args.Action.PrewitnessedDepositID == nil || args.TxRef == "" {
				return nil
			}
			requests, err := ctx.Tx.ListPrewitnessedRequests(args.Asset, *args.Action.PrewitnessedDepositID)
			if err != nil {
				return err
			}
			for _, req := range requests {
				req.DepositTransactionRef = args.TxRef
				if err := ctx.Tx.UpdateSwapRequest(req); err != nil {
					return err
				}
			}
			return nil

		default:
			return nil
		}
	}
}

// depositBoosted is emitted instead of a finalised deposit when boosters
// front the funds early. It stamps the boost state and records both the
// boost and ingress fees.
func depositBoosted(chain types.Chain) events.Handler {
	return func(ctx *events.Context) error {
		args, err := ctx.Decoder.DepositBoosted(chain, ctx.Event.Args)
		if err != nil {
			return err
		}
		if args.Action.Kind != schemas.DepositActionSwap && args.Action.Kind != schemas.DepositActionCcmTransfer {
			return nil
		}
		if args.Action.SwapRequestID == nil {
			ctx.Logger.Warn("deposit boosted without a swap request id",
				zap.String("chain", string(chain)))
			return nil
		}

		req, err := ctx.Tx.GetSwapRequest(*args.Action.SwapRequestID)
		if err != nil {
			return fmt.Errorf("failed to load swap request %d for boosted deposit: %w",
				*args.Action.SwapRequestID, err)
		}

		now := ctx.Timestamp()
		req.DepositBoostedAt = &now
		req.DepositBoostedBlockIndex = ctx.BlockIndex()
		req.MaxBoostFeeBps = args.MaxBoostFeeBps
		req.EffectiveBoostFeeBps = effectiveBoostFeeBps(args.BoostFee, args.DepositAmount)
		pid := args.PrewitnessedDepositID
		req.PrewitnessedDepositID = &pid
		if args.TxRef != "" {
			req.DepositTransactionRef = args.TxRef
		}
		if err := ctx.Tx.UpdateSwapRequest(req); err != nil {
			return err
		}
		if err := ctx.Tx.IndexPrewitnessedRequest(req.SrcAsset, pid, req.NativeID); err != nil {
			return err
		}

		if err := ctx.Tx.AddFee(&storage.Fee{
			RequestNativeID: req.NativeID,
			Type:            types.FeeBoost,
			Asset:           args.Asset,
			Amount:          args.BoostFee,
		}); err != nil {
			return err
		}
		return ctx.Tx.AddFee(&storage.Fee{
			RequestNativeID: req.NativeID,
			Type:            types.FeeIngress,
			Asset:           args.Asset,
			Amount:          args.IngressFee,
		})
	}
}

// effectiveBoostFeeBps is boostFee relative to the deposit in basis points.
func effectiveBoostFeeBps(boostFee, depositAmount *types.BigInt) uint32 {
	amount := types.BigIntOrZero(depositAmount)
	if amount.Sign() == 0 {
		return 0
	}
	bps := new(big.Int).Mul(types.BigIntOrZero(boostFee), big.NewInt(10000))
	bps.Quo(bps, amount)
	return uint32(bps.Uint64())
}

// transactionRejectedByBroker records a broker-screened deposit rejection.
// Unlike depositIgnored, an unknown channel is skipped: rejections can
// reference vault deposits with no channel at all.
func transactionRejectedByBroker(chain types.Chain) events.Handler {
	return func(ctx *events.Context) error {
		args, err := ctx.Decoder.TransactionRejectedByBroker(chain, ctx.Event.Args)
		if err != nil {
			return err
		}

		channel, err := ctx.Tx.FindSwapChannelByAddress(chain, args.DepositAddress)
		if errors.Is(err, storage.ErrNotFound) {
			ctx.Logger.Info("broker rejection for unknown channel",
				zap.String("chain", string(chain)),
				zap.String("depositAddress", args.DepositAddress))
			return nil
		}
		if err != nil {
			return err
		}

		return ctx.Tx.CreateFailedSwap(&storage.FailedSwap{
			Reason:               types.ReasonTransactionRejectedByBroker,
			SrcChain:             chain,
			SrcAsset:             args.Asset,
			DestChain:            channel.DestAsset.Chain(),
			DestAddress:          channel.DestAddress,
			DepositAmount:        args.Amount,
			SwapDepositChannelID: &channel.ID,
			FailedAt:             ctx.Timestamp(),
			FailedBlockIndex:     ctx.BlockIndex(),
		})
	}
}
