package handlers

import (
	"fmt"

	"github.com/swapstream/processor-go/decode"
	"github.com/swapstream/processor-go/events"
	"github.com/swapstream/processor-go/types"
)

// perChain expands a pallet-suffixed registration for every chain, e.g.
// ("IngressEgress.DepositIgnored", depositIgnored) becomes
// EthereumIngressEgress.DepositIgnored and so on.
func perChain(suffix string, factory func(types.Chain) events.Handler) []events.Registration {
	regs := make([]events.Registration, 0, len(types.Chains))
	for _, chain := range types.Chains {
		regs = append(regs, events.Registration{
			Name:    fmt.Sprintf("%s%s", chain, suffix),
			Handler: factory(chain),
		})
	}
	return regs
}

// Registry builds the full handler table. The 1.2.0 era covers the
// pre-split protocol where SwapScheduled both created and scheduled a
// swap; 1.6.0 re-registers the swapping events for the request/leg split
// and adds boosted deposits; 1.7.0 adds broker deposit screening.
func Registry() *events.Registry {
	legacy := []events.Registration{
		{Name: "Swapping.SwapDepositAddressReady", Handler: swapDepositAddressReady},
		{Name: "Swapping.SwapScheduled", Handler: legacySwapScheduled},
		{Name: "Swapping.SwapExecuted", Handler: swapExecuted},
		{Name: "Swapping.SwapRescheduled", Handler: swapRescheduled},
		{Name: "Swapping.SwapEgressScheduled", Handler: swapEgressScheduled},
		{Name: "Swapping.SwapEgressIgnored", Handler: egressIgnored(types.IgnoredEgressSwap)},
		{Name: "LiquidityProvider.LiquidityDepositAddressReady", Handler: liquidityDepositAddressReady},
	}
	legacy = append(legacy, perChain("IngressEgress.DepositIgnored", depositIgnored)...)
	legacy = append(legacy, perChain("IngressEgress.DepositFinalised", depositFinalised)...)
	legacy = append(legacy, perChain("IngressEgress.BatchBroadcastRequested", batchBroadcastRequested)...)
	legacy = append(legacy, perChain("Broadcaster.TransactionBroadcastRequest", transactionBroadcastRequest)...)
	legacy = append(legacy, perChain("Broadcaster.BroadcastSuccess", broadcastSuccess)...)
	legacy = append(legacy, perChain("Broadcaster.BroadcastAborted", broadcastAborted)...)
	legacy = append(legacy, perChain("Broadcaster.ThresholdSignatureInvalid", thresholdSignatureInvalid)...)
	legacy = append(legacy, perChain("ChainTracking.ChainStateUpdated", chainStateUpdated)...)

	requestSplit := []events.Registration{
		{Name: "Swapping.SwapRequested", Handler: swapRequested},
		{Name: "Swapping.SwapRequestCompleted", Handler: swapRequestCompleted},
		{Name: "Swapping.SwapRequestAborted", Handler: swapRequestAborted},
		{Name: "Swapping.SwapScheduled", Handler: swapScheduled},
		{Name: "Swapping.RefundEgressScheduled", Handler: refundEgressScheduled},
		{Name: "Swapping.RefundEgressIgnored", Handler: egressIgnored(types.IgnoredEgressRefund)},
	}
	requestSplit = append(requestSplit, perChain("IngressEgress.DepositBoosted", depositBoosted)...)

	brokerScreening := perChain("IngressEgress.TransactionRejectedByBroker", transactionRejectedByBroker)

	return events.MustNewRegistry([]events.Era{
		{MinVersion: decode.ParseSemver("1.2.0"), Registrations: legacy},
		{MinVersion: decode.ParseSemver("1.6.0"), Registrations: requestSplit},
		{MinVersion: decode.ParseSemver("1.7.0"), Registrations: brokerScreening},
	})
}
