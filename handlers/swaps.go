package handlers

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/swapstream/processor-go/events"
	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

// swapScheduled creates one leg under an existing SwapRequest.
func swapScheduled(ctx *events.Context) error {
	args, err := ctx.Decoder.SwapScheduled(ctx.Event.Args)
	if err != nil {
		return err
	}

	req, err := ctx.Tx.GetSwapRequest(args.SwapRequestID)
	if err != nil {
		return fmt.Errorf("failed to load swap request %d for swap %d: %w",
			args.SwapRequestID, args.SwapID, err)
	}

	return ctx.Tx.CreateSwap(&storage.Swap{
		NativeID:            args.SwapID,
		RequestNativeID:     req.NativeID,
		Type:                args.SwapType,
		SrcAsset:            req.SrcAsset,
		DestAsset:           req.DestAsset,
		InputAmount:         args.InputAmount,
		ScheduledAt:         ctx.Timestamp(),
		ScheduledBlockIndex: ctx.BlockIndex(),
	})
}

// legacySwapScheduled handles the pre-split event that created the request
// and its single leg in one step. A channel-origin event whose channel is
// unknown is a logged no-op, matching historical behavior.
func legacySwapScheduled(ctx *events.Context) error {
	args, err := ctx.Decoder.LegacySwapScheduled(ctx.Event.Args)
	if err != nil {
		return err
	}

	requestType := types.RequestLegacySwap
	if args.IsCcm {
		requestType = types.RequestLegacyCcm
	}

	req := &storage.SwapRequest{
		NativeID:            args.SwapID,
		OriginType:          args.Origin.Kind,
		RequestType:         requestType,
		SrcAsset:            args.SrcAsset,
		DestAsset:           args.DestAsset,
		DepositAmount:       args.DepositAmount,
		SwapInputAmount:     args.DepositAmount,
		DestAddress:         args.DestAddress,
		RequestedAt:         ctx.Timestamp(),
		RequestedBlockIndex: ctx.BlockIndex(),
	}

	switch args.Origin.Kind {
	case types.OriginDepositChannel:
		channel, err := ctx.Tx.FindSwapChannelByAddress(args.SrcAsset.Chain(), args.Origin.DepositAddress)
		if errors.Is(err, storage.ErrNotFound) {
			ctx.Logger.Info("swap scheduled for unknown deposit channel",
				zap.Uint64("swapId", args.SwapID),
				zap.String("depositAddress", args.Origin.DepositAddress))
			return nil
		}
		if err != nil {
			return err
		}
		req.SwapDepositChannelID = &channel.ID
	case types.OriginVault:
		req.DepositTransactionRef = args.Origin.TxRef
	}

	if err := ctx.Tx.CreateSwapRequest(req); err != nil {
		return err
	}

	return ctx.Tx.CreateSwap(&storage.Swap{
		NativeID:            args.SwapID,
		RequestNativeID:     req.NativeID,
		Type:                types.SwapTypeSwap,
		SrcAsset:            args.SrcAsset,
		DestAsset:           args.DestAsset,
		InputAmount:         args.DepositAmount,
		ScheduledAt:         ctx.Timestamp(),
		ScheduledBlockIndex: ctx.BlockIndex(),
	})
}

// swapExecuted stamps execution on the leg, records fees carried on the
// event and clears any reschedule state. Requests materialized from the
// pre-split path complete here, since no completion event exists for them.
func swapExecuted(ctx *events.Context) error {
	args, err := ctx.Decoder.SwapExecuted(ctx.Event.Args)
	if err != nil {
		return err
	}

	swap, err := ctx.Tx.GetSwap(args.SwapID)
	if err != nil {
		return fmt.Errorf("failed to load swap %d: %w", args.SwapID, err)
	}

	now := ctx.Timestamp()
	swap.InputAmount = args.InputAmount
	swap.IntermediateAmount = args.IntermediateAmount
	swap.OutputAmount = args.OutputAmount
	swap.ExecutedAt = &now
	swap.ExecutedBlockIndex = ctx.BlockIndex()
	swap.LatestRescheduledAt = nil
	swap.LatestRescheduledBlockIndex = ""
	if err := ctx.Tx.UpdateSwap(swap); err != nil {
		return err
	}

	// Network and broker fees are always denominated in Usdc.
	if args.NetworkFee != nil {
		if err := ctx.Tx.AddFee(&storage.Fee{
			RequestNativeID: swap.RequestNativeID,
			SwapNativeID:    &swap.NativeID,
			Type:            types.FeeNetwork,
			Asset:           types.AssetUsdc,
			Amount:          args.NetworkFee,
		}); err != nil {
			return err
		}
	}
	if args.BrokerFee != nil {
		if err := ctx.Tx.AddFee(&storage.Fee{
			RequestNativeID: swap.RequestNativeID,
			SwapNativeID:    &swap.NativeID,
			Type:            types.FeeBroker,
			Asset:           types.AssetUsdc,
			Amount:          args.BrokerFee,
		}); err != nil {
			return err
		}
	}

	req, err := ctx.Tx.GetSwapRequest(swap.RequestNativeID)
	if err != nil {
		return err
	}
	if req.RequestType == types.RequestLegacySwap || req.RequestType == types.RequestLegacyCcm {
		req.CompletedAt = &now
		req.CompletedBlockIndex = ctx.BlockIndex()
		req.SwapOutputAmount = args.OutputAmount
		return ctx.Tx.UpdateSwapRequest(req)
	}
	return nil
}

// swapRescheduled bumps the retry counter and stamps the latest attempt.
func swapRescheduled(ctx *events.Context) error {
	args, err := ctx.Decoder.SwapRescheduled(ctx.Event.Args)
	if err != nil {
		return err
	}

	swap, err := ctx.Tx.GetSwap(args.SwapID)
	if err != nil {
		return fmt.Errorf("failed to load swap %d: %w", args.SwapID, err)
	}

	now := ctx.Timestamp()
	swap.LatestRescheduledAt = &now
	swap.LatestRescheduledBlockIndex = ctx.BlockIndex()
	swap.RetryCount++
	return ctx.Tx.UpdateSwap(swap)
}
