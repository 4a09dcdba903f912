package handlers

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/swapstream/processor-go/events"
	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

// swapDepositAddressReady opens a swap deposit channel. Re-emission for the
// same (chain, issuedBlock, channelId) is an idempotent upsert.
func swapDepositAddressReady(ctx *events.Context) error {
	args, err := ctx.Decoder.SwapDepositAddressReady(ctx.Event.Args)
	if err != nil {
		return err
	}

	srcChain := args.DepositAddress.Chain

	tracking, err := ctx.Tx.GetChainTracking(srcChain)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	beneficiaries := make([]storage.Beneficiary, 0, len(args.Affiliates)+1)
	if args.BrokerCommissionBps > 0 {
		beneficiaries = append(beneficiaries, storage.Beneficiary{
			Type:          types.BeneficiarySubmitter,
			Account:       args.BrokerID,
			CommissionBps: args.BrokerCommissionBps,
		})
	}
	for _, a := range args.Affiliates {
		if a.Bps == 0 {
			continue
		}
		beneficiaries = append(beneficiaries, storage.Beneficiary{
			Type:          types.BeneficiaryAffiliate,
			Account:       a.Account,
			CommissionBps: a.Bps,
		})
	}
	var totalBps uint32
	for _, b := range beneficiaries {
		totalBps += b.CommissionBps
	}

	if err := ctx.Tx.CreateDepositChannel(&storage.DepositChannel{
		SrcChain:       srcChain,
		DepositAddress: args.DepositAddress.Address,
		ChannelID:      args.ChannelID,
		IssuedBlock:    ctx.Block.Height,
		IsSwapping:     true,
	}); err != nil {
		return err
	}

	channel := &storage.SwapDepositChannel{
		SrcChain:                 srcChain,
		SrcAsset:                 args.SrcAsset,
		DestAsset:                args.DestAsset,
		DepositAddress:           args.DepositAddress.Address,
		DestAddress:              args.DestAddress.Address,
		ChannelID:                args.ChannelID,
		IssuedBlock:              ctx.Block.Height,
		SrcChainExpiryBlock:      args.SourceChainExpiryBlock,
		TotalBrokerCommissionBps: totalBps,
		MaxBoostFeeBps:           args.BoostFeeBps,
		OpeningFeePaid:           args.ChannelOpeningFee,
		CcmGasBudget:             args.CcmGasBudget,
		CcmMessage:               args.CcmMessage,
		Beneficiaries:            beneficiaries,
		EstimatedExpiryAt:        estimateExpiry(tracking, srcChain, args.SourceChainExpiryBlock),
		OpenedAt:                 ctx.Timestamp(),
		OpenedBlockIndex:         ctx.BlockIndex(),
	}
	if args.RefundParams != nil {
		channel.FokMinPriceX128 = args.RefundParams.MinPriceX128
		channel.FokRefundAddress = args.RefundParams.RefundAddress
		channel.FokRetryDurationBlocks = args.RefundParams.RetryDurationBlocks
	}
	if args.DcaParams != nil {
		channel.DcaNumberOfChunks = args.DcaParams.NumberOfChunks
		channel.DcaChunkIntervalBlocks = args.DcaParams.ChunkIntervalBlocks
	}

	if err := ctx.Tx.UpsertSwapChannel(channel); err != nil {
		return fmt.Errorf("failed to upsert swap channel %d: %w", args.ChannelID, err)
	}

	ctx.Logger.Debug("swap deposit channel ready",
		zap.String("chain", string(srcChain)),
		zap.Uint64("channelId", args.ChannelID),
		zap.String("depositAddress", args.DepositAddress.Address))
	return nil
}

// liquidityDepositAddressReady records a non-swapping deposit channel.
func liquidityDepositAddressReady(ctx *events.Context) error {
	args, err := ctx.Decoder.LiquidityDepositAddressReady(ctx.Event.Args)
	if err != nil {
		return err
	}

	return ctx.Tx.CreateDepositChannel(&storage.DepositChannel{
		SrcChain:       args.DepositAddress.Chain,
		DepositAddress: args.DepositAddress.Address,
		ChannelID:      args.ChannelID,
		IssuedBlock:    ctx.Block.Height,
		IsSwapping:     false,
	})
}
