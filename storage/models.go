package storage

import (
	"time"

	"github.com/swapstream/processor-go/types"
)

// DepositChannel is a source-chain address temporarily owned by the system
// to receive funds. Created when a channel-opening event is observed and
// never mutated afterwards except for the expiry flag.
type DepositChannel struct {
	ID             uint64        `json:"id"`
	SrcChain       types.Chain   `json:"srcChain"`
	DepositAddress string        `json:"depositAddress"`
	ChannelID      uint64        `json:"channelId"`
	IssuedBlock    uint64        `json:"issuedBlock"`
	IsSwapping     bool          `json:"isSwapping"`
	IsExpired      bool          `json:"isExpired"`
}

// SwapDepositChannel is the swap-specific superset of a DepositChannel.
// One channel may spawn any number of swap requests over its lifetime.
type SwapDepositChannel struct {
	ID                       uint64        `json:"id"`
	SrcChain                 types.Chain   `json:"srcChain"`
	SrcAsset                 types.Asset   `json:"srcAsset"`
	DestAsset                types.Asset   `json:"destAsset"`
	DepositAddress           string        `json:"depositAddress"`
	DestAddress              string        `json:"destAddress"`
	ChannelID                uint64        `json:"channelId"`
	IssuedBlock              uint64        `json:"issuedBlock"`
	SrcChainExpiryBlock      uint64        `json:"srcChainExpiryBlock"`
	TotalBrokerCommissionBps uint32        `json:"totalBrokerCommissionBps"`
	MaxBoostFeeBps           uint32        `json:"maxBoostFeeBps"`
	OpeningFeePaid           *types.BigInt `json:"openingFeePaid,omitempty"`
	CcmGasBudget             *types.BigInt `json:"ccmGasBudget,omitempty"`
	CcmMessage               string        `json:"ccmMessage,omitempty"`
	FokMinPriceX128          *types.BigInt `json:"fokMinPriceX128,omitempty"`
	FokRefundAddress         string        `json:"fokRefundAddress,omitempty"`
	FokRetryDurationBlocks   uint32        `json:"fokRetryDurationBlocks,omitempty"`
	DcaNumberOfChunks        uint32        `json:"dcaNumberOfChunks,omitempty"`
	DcaChunkIntervalBlocks   uint32        `json:"dcaChunkIntervalBlocks,omitempty"`
	Beneficiaries            []Beneficiary `json:"beneficiaries,omitempty"`
	EstimatedExpiryAt        *time.Time    `json:"estimatedExpiryAt,omitempty"`
	IsExpired                bool          `json:"isExpired"`
	OpenedAt                 time.Time     `json:"openedAt"`
	OpenedBlockIndex         string        `json:"openedBlockIndex"`
}

// Beneficiary is one commission recipient of a swap request. The submitter
// is the broker that opened the channel or submitted the vault swap;
// everyone else is an affiliate.
type Beneficiary struct {
	Type          types.BeneficiaryType `json:"type"`
	Account       string                `json:"account"`
	CommissionBps uint32                `json:"commissionBps"`
}

// SwapRequest is the unit of a user's swap intent. It is created by the
// swap-requested event and updated by every downstream event referencing
// its native id.
type SwapRequest struct {
	ID                        uint64            `json:"id"`
	NativeID                  uint64            `json:"nativeId"`
	OriginType                types.OriginType  `json:"originType"`
	RequestType               types.RequestType `json:"requestType"`
	SrcAsset                  types.Asset       `json:"srcAsset"`
	DestAsset                 types.Asset       `json:"destAsset"`
	DepositAmount             *types.BigInt     `json:"depositAmount,omitempty"`
	SwapInputAmount           *types.BigInt     `json:"swapInputAmount,omitempty"`
	SwapOutputAmount          *types.BigInt     `json:"swapOutputAmount,omitempty"`
	SrcAddress                string            `json:"srcAddress,omitempty"`
	DestAddress               string            `json:"destAddress,omitempty"`
	DepositTransactionRef     string            `json:"depositTransactionRef,omitempty"`
	DepositReceivedAt         *time.Time        `json:"depositReceivedAt,omitempty"`
	DepositReceivedBlockIndex string            `json:"depositReceivedBlockIndex,omitempty"`
	DepositBoostedAt          *time.Time        `json:"depositBoostedAt,omitempty"`
	DepositBoostedBlockIndex  string            `json:"depositBoostedBlockIndex,omitempty"`
	MaxBoostFeeBps            uint32            `json:"maxBoostFeeBps,omitempty"`
	EffectiveBoostFeeBps      uint32            `json:"effectiveBoostFeeBps,omitempty"`
	PrewitnessedDepositID     *uint64           `json:"prewitnessedDepositId,omitempty"`
	SwapDepositChannelID      *uint64           `json:"swapDepositChannelId,omitempty"`
	OnChainAccountID          string            `json:"onChainAccountId,omitempty"`
	CcmGasBudget              *types.BigInt     `json:"ccmGasBudget,omitempty"`
	CcmMessage                string            `json:"ccmMessage,omitempty"`
	DcaNumberOfChunks         uint32            `json:"dcaNumberOfChunks,omitempty"`
	DcaChunkIntervalBlocks    uint32            `json:"dcaChunkIntervalBlocks,omitempty"`
	FokMinPriceX128           *types.BigInt     `json:"fokMinPriceX128,omitempty"`
	FokRefundAddress          string            `json:"fokRefundAddress,omitempty"`
	FokRetryDurationBlocks    uint32            `json:"fokRetryDurationBlocks,omitempty"`
	TotalBrokerCommissionBps  uint32            `json:"totalBrokerCommissionBps,omitempty"`
	Beneficiaries             []Beneficiary     `json:"beneficiaries,omitempty"`
	EgressID                  *uint64           `json:"egressId,omitempty"`
	RefundEgressID            *uint64           `json:"refundEgressId,omitempty"`
	RequestedAt               time.Time         `json:"requestedAt"`
	RequestedBlockIndex       string            `json:"requestedBlockIndex"`
	CompletedAt               *time.Time        `json:"completedAt,omitempty"`
	CompletedBlockIndex       string            `json:"completedBlockIndex,omitempty"`
}

// Completed reports whether the request reached its terminal state.
func (r *SwapRequest) Completed() bool {
	return r.CompletedAt != nil
}

// Swap is one executable leg of a SwapRequest: the principal swap, a gas
// swap, or one DCA chunk.
type Swap struct {
	ID                          uint64         `json:"id"`
	NativeID                    uint64         `json:"nativeId"`
	RequestNativeID             uint64         `json:"requestNativeId"`
	Type                        types.SwapType `json:"type"`
	SrcAsset                    types.Asset    `json:"srcAsset"`
	DestAsset                   types.Asset    `json:"destAsset"`
	InputAmount                 *types.BigInt  `json:"inputAmount,omitempty"`
	IntermediateAmount          *types.BigInt  `json:"intermediateAmount,omitempty"`
	OutputAmount                *types.BigInt  `json:"outputAmount,omitempty"`
	ScheduledAt                 time.Time      `json:"scheduledAt"`
	ScheduledBlockIndex         string         `json:"scheduledBlockIndex"`
	ExecutedAt                  *time.Time     `json:"executedAt,omitempty"`
	ExecutedBlockIndex          string         `json:"executedBlockIndex,omitempty"`
	LatestRescheduledAt         *time.Time     `json:"latestRescheduledAt,omitempty"`
	LatestRescheduledBlockIndex string         `json:"latestRescheduledBlockIndex,omitempty"`
	RetryCount                  uint32         `json:"retryCount"`
}

// Fee is one append-only fee ledger row attached to a swap request, and
// optionally to one of its legs.
type Fee struct {
	ID              uint64        `json:"id"`
	RequestNativeID uint64        `json:"requestNativeId"`
	SwapNativeID    *uint64       `json:"swapNativeId,omitempty"`
	Type            types.FeeType `json:"type"`
	Asset           types.Asset   `json:"asset"`
	Amount          *types.BigInt `json:"amount"`
}

// Egress is an outbound transfer instruction for swap output or a refund.
type Egress struct {
	ID                  uint64        `json:"id"`
	Chain               types.Chain   `json:"chain"`
	NativeID            uint64        `json:"nativeId"`
	Amount              *types.BigInt `json:"amount"`
	ScheduledAt         time.Time     `json:"scheduledAt"`
	ScheduledBlockIndex string        `json:"scheduledBlockIndex"`
	BroadcastID         *uint64       `json:"broadcastId,omitempty"`
	RequestNativeID     uint64        `json:"requestNativeId,omitempty"`
}

// Broadcast is one attempt to submit egresses as a transaction on a
// destination chain.
type Broadcast struct {
	ID                  uint64      `json:"id"`
	Chain               types.Chain `json:"chain"`
	NativeID            uint64      `json:"nativeId"`
	TransactionPayload  string      `json:"transactionPayload,omitempty"`
	TransactionRef      string      `json:"transactionRef,omitempty"`
	RequestedAt         *time.Time  `json:"requestedAt,omitempty"`
	RequestedBlockIndex string      `json:"requestedBlockIndex,omitempty"`
	SucceededAt         *time.Time  `json:"succeededAt,omitempty"`
	SucceededBlockIndex string      `json:"succeededBlockIndex,omitempty"`
	AbortedAt           *time.Time  `json:"abortedAt,omitempty"`
	AbortedBlockIndex   string      `json:"abortedBlockIndex,omitempty"`
	ReplacedByID        *uint64     `json:"replacedById,omitempty"`
}

// FailedSwap is a terminal failure record for a deposit or swap that never
// produced output. Exactly one of SwapDepositChannelID and RequestNativeID
// is set.
type FailedSwap struct {
	ID                   uint64                 `json:"id"`
	Reason               types.FailedSwapReason `json:"reason"`
	SrcChain             types.Chain            `json:"srcChain"`
	SrcAsset             types.Asset            `json:"srcAsset,omitempty"`
	DestChain            types.Chain            `json:"destChain,omitempty"`
	DestAddress          string                 `json:"destAddress,omitempty"`
	DepositAmount        *types.BigInt          `json:"depositAmount,omitempty"`
	SwapDepositChannelID *uint64                `json:"swapDepositChannelId,omitempty"`
	RequestNativeID      *uint64                `json:"requestNativeId,omitempty"`
	FailedAt             time.Time              `json:"failedAt"`
	FailedBlockIndex     string                 `json:"failedBlockIndex"`
}

// IgnoredEgress records a swap or refund egress that was dropped because
// its amount was zero or below the chain's dust limit.
type IgnoredEgress struct {
	ID                uint64                  `json:"id"`
	Type              types.IgnoredEgressType `json:"type"`
	RequestNativeID   uint64                  `json:"requestNativeId"`
	Amount            *types.BigInt           `json:"amount"`
	IgnoredAt         time.Time               `json:"ignoredAt"`
	IgnoredBlockIndex string                  `json:"ignoredBlockIndex"`
}

// ChainTracking is the per-chain latest observed external height plus the
// height observed in the previous processor block, used to compute expiry
// and confirmation timing.
type ChainTracking struct {
	Chain               types.Chain `json:"chain"`
	Height              uint64      `json:"height"`
	PreviousHeight      uint64      `json:"previousHeight"`
	BlockTrackedAt      time.Time   `json:"blockTrackedAt"`
	EventWitnessedBlock uint64      `json:"eventWitnessedBlock"`
}
