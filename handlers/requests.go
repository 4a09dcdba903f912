package handlers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/swapstream/processor-go/events"
	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

// swapRequested creates a SwapRequest, resolving the origin channel and
// classifying beneficiaries. The deposit amount is recorded only for
// origins that deposited from outside the protocol.
func swapRequested(ctx *events.Context) error {
	args, err := ctx.Decoder.SwapRequested(ctx.Event.Args)
	if err != nil {
		return err
	}

	req := &storage.SwapRequest{
		NativeID:            args.SwapRequestID,
		OriginType:          args.Origin.Kind,
		RequestType:         args.RequestType,
		SrcAsset:            args.InputAsset,
		DestAsset:           args.OutputAsset,
		SwapInputAmount:     args.InputAmount,
		DestAddress:         args.DestAddress,
		CcmGasBudget:        args.CcmGasBudget,
		CcmMessage:          args.CcmMessage,
		RequestedAt:         ctx.Timestamp(),
		RequestedBlockIndex: ctx.BlockIndex(),
	}

	switch args.Origin.Kind {
	case types.OriginDepositChannel:
		channel, err := ctx.Tx.FindSwapChannelForOrigin(
			args.InputAsset.Chain(), args.Origin.DepositAddress, args.Origin.ChannelID)
		if err != nil {
			return fmt.Errorf("failed to resolve origin channel %d at %s: %w",
				args.Origin.ChannelID, args.Origin.DepositAddress, err)
		}
		req.SwapDepositChannelID = &channel.ID
		req.DepositAmount = args.InputAmount
	case types.OriginVault:
		req.DepositTransactionRef = args.Origin.TxRef
		req.DepositAmount = args.InputAmount
	case types.OriginOnChain:
		req.OnChainAccountID = args.Origin.AccountID
		req.SrcAddress = args.Origin.AccountID
	}

	var totalBps uint32
	for _, fee := range args.BrokerFees {
		if fee.Bps == 0 {
			continue
		}
		t := types.BeneficiaryAffiliate
		if fee.Account == args.Origin.BrokerID {
			t = types.BeneficiarySubmitter
		}
		req.Beneficiaries = append(req.Beneficiaries, storage.Beneficiary{
			Type:          t,
			Account:       fee.Account,
			CommissionBps: fee.Bps,
		})
		totalBps += fee.Bps
	}
	req.TotalBrokerCommissionBps = totalBps

	if args.RefundParams != nil {
		req.FokMinPriceX128 = args.RefundParams.MinPriceX128
		req.FokRefundAddress = args.RefundParams.RefundAddress
		req.FokRetryDurationBlocks = args.RefundParams.RetryDurationBlocks
	}
	if args.DcaParams != nil {
		req.DcaNumberOfChunks = args.DcaParams.NumberOfChunks
		req.DcaChunkIntervalBlocks = args.DcaParams.ChunkIntervalBlocks
	}

	if err := ctx.Tx.CreateSwapRequest(req); err != nil {
		return err
	}

	ctx.Logger.Debug("swap requested",
		zap.Uint64("swapRequestId", args.SwapRequestID),
		zap.String("origin", string(args.Origin.Kind)),
		zap.String("requestType", string(args.RequestType)))
	return nil
}

// swapRequestCompleted stamps the terminal state and aggregates the output
// over all executed legs.
func swapRequestCompleted(ctx *events.Context) error {
	args, err := ctx.Decoder.SwapRequestCompleted(ctx.Event.Args)
	if err != nil {
		return err
	}

	req, err := ctx.Tx.GetSwapRequest(args.SwapRequestID)
	if err != nil {
		return fmt.Errorf("failed to load swap request %d: %w", args.SwapRequestID, err)
	}

	swaps, err := ctx.Tx.ListRequestSwaps(args.SwapRequestID)
	if err != nil {
		return err
	}
	total := types.NewBigInt(0)
	for _, s := range swaps {
		if s.OutputAmount != nil {
			total.Add(&total.Int, &s.OutputAmount.Int)
		}
	}

	now := ctx.Timestamp()
	req.CompletedAt = &now
	req.CompletedBlockIndex = ctx.BlockIndex()
	req.SwapOutputAmount = total
	return ctx.Tx.UpdateSwapRequest(req)
}

// swapRequestAborted stamps the terminal state and records the failure so
// the request projects as FAILED rather than stuck mid-flight.
func swapRequestAborted(ctx *events.Context) error {
	args, err := ctx.Decoder.SwapRequestAborted(ctx.Event.Args)
	if err != nil {
		return err
	}

	req, err := ctx.Tx.GetSwapRequest(args.SwapRequestID)
	if err != nil {
		return fmt.Errorf("failed to load swap request %d: %w", args.SwapRequestID, err)
	}

	now := ctx.Timestamp()
	req.CompletedAt = &now
	req.CompletedBlockIndex = ctx.BlockIndex()
	if err := ctx.Tx.UpdateSwapRequest(req); err != nil {
		return err
	}

	reason := types.ReasonSwapAborted
	if args.Reason != "" {
		reason = types.FailedSwapReason(args.Reason)
	}
	ctx.Logger.Info("swap request aborted",
		zap.Uint64("swapRequestId", args.SwapRequestID),
		zap.String("reason", string(reason)))
	return ctx.Tx.CreateFailedSwap(&storage.FailedSwap{
		Reason:           reason,
		SrcChain:         req.SrcAsset.Chain(),
		SrcAsset:         req.SrcAsset,
		DestChain:        req.DestAsset.Chain(),
		DestAddress:      req.DestAddress,
		DepositAmount:    req.DepositAmount,
		RequestNativeID:  &req.NativeID,
		FailedAt:         ctx.Timestamp(),
		FailedBlockIndex: ctx.BlockIndex(),
	})
}
