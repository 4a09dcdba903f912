package handlers

import (
	"fmt"

	"github.com/swapstream/processor-go/events"
	"github.com/swapstream/processor-go/schemas"
	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

// egressFeeAsset resolves the denomination of an egress fee. Versions that
// carry an [amount, asset] tuple are authoritative; otherwise legacy CCM
// requests paid the fee in the destination chain's gas asset, and everyone
// else in the event's asset.
func egressFeeAsset(args *schemas.EgressScheduled, req *storage.SwapRequest) types.Asset {
	if args.FeeAsset != "" {
		return args.FeeAsset
	}
	if req.RequestType == types.RequestLegacyCcm {
		return args.EgressID.Chain.GasAsset()
	}
	if args.Asset != "" {
		return args.Asset
	}
	return req.DestAsset
}

// swapEgressScheduled creates the outbound egress for a request and records
// the egress fee.
func swapEgressScheduled(ctx *events.Context) error {
	args, err := ctx.Decoder.SwapEgressScheduled(ctx.Event.Args)
	if err != nil {
		return err
	}

	req, err := ctx.Tx.GetSwapRequest(args.SwapRequestID)
	if err != nil {
		return fmt.Errorf("failed to load swap request %d: %w", args.SwapRequestID, err)
	}

	egress := &storage.Egress{
		Chain:               args.EgressID.Chain,
		NativeID:            args.EgressID.ID,
		Amount:              args.Amount,
		ScheduledAt:         ctx.Timestamp(),
		ScheduledBlockIndex: ctx.BlockIndex(),
		RequestNativeID:     req.NativeID,
	}
	if err := ctx.Tx.CreateEgress(egress); err != nil {
		return err
	}

	req.EgressID = &egress.NativeID
	if err := ctx.Tx.UpdateSwapRequest(req); err != nil {
		return err
	}

	if args.FeeAmount == nil {
		return nil
	}
	return ctx.Tx.AddFee(&storage.Fee{
		RequestNativeID: req.NativeID,
		Type:            types.FeeEgress,
		Asset:           egressFeeAsset(args, req),
		Amount:          args.FeeAmount,
	})
}

// refundEgressScheduled creates the refund egress for a request; a refund
// fee greater than zero is recorded as a separate ledger row.
func refundEgressScheduled(ctx *events.Context) error {
	args, err := ctx.Decoder.RefundEgressScheduled(ctx.Event.Args)
	if err != nil {
		return err
	}

	req, err := ctx.Tx.GetSwapRequest(args.SwapRequestID)
	if err != nil {
		return fmt.Errorf("failed to load swap request %d: %w", args.SwapRequestID, err)
	}

	egress := &storage.Egress{
		Chain:               args.EgressID.Chain,
		NativeID:            args.EgressID.ID,
		Amount:              args.Amount,
		ScheduledAt:         ctx.Timestamp(),
		ScheduledBlockIndex: ctx.BlockIndex(),
		RequestNativeID:     req.NativeID,
	}
	if err := ctx.Tx.CreateEgress(egress); err != nil {
		return err
	}

	req.RefundEgressID = &egress.NativeID
	if err := ctx.Tx.UpdateSwapRequest(req); err != nil {
		return err
	}

	feeAsset := egressFeeAsset(args, req)
	if args.FeeAmount != nil {
		if err := ctx.Tx.AddFee(&storage.Fee{
			RequestNativeID: req.NativeID,
			Type:            types.FeeEgress,
			Asset:           feeAsset,
			Amount:          args.FeeAmount,
		}); err != nil {
			return err
		}
	}
	if args.RefundFee != nil && args.RefundFee.Sign() > 0 {
		if err := ctx.Tx.AddFee(&storage.Fee{
			RequestNativeID: req.NativeID,
			Type:            types.FeeRefund,
			Asset:           feeAsset,
			Amount:          args.RefundFee,
		}); err != nil {
			return err
		}
	}
	return nil
}

func egressIgnored(ignoredType types.IgnoredEgressType) events.Handler {
	return func(ctx *events.Context) error {
		args, err := ctx.Decoder.EgressIgnored(ctx.Event.Args)
		if err != nil {
			return err
		}

		if _, err := ctx.Tx.GetSwapRequest(args.SwapRequestID); err != nil {
			return fmt.Errorf("failed to load swap request %d: %w", args.SwapRequestID, err)
		}

		return ctx.Tx.CreateIgnoredEgress(&storage.IgnoredEgress{
			Type:              ignoredType,
			RequestNativeID:   args.SwapRequestID,
			Amount:            args.Amount,
			IgnoredAt:         ctx.Timestamp(),
			IgnoredBlockIndex: ctx.BlockIndex(),
		})
	}
}
