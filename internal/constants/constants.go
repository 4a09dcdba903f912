package constants

import "time"

// Ops server constants
const (
	// DefaultOpsHost is the default ops server host
	DefaultOpsHost = "localhost"

	// DefaultOpsPort is the default ops server port
	DefaultOpsPort = 8080

	// MinPort is the minimum valid port number
	MinPort = 1

	// MaxPort is the maximum valid port number
	MaxPort = 65535

	// DefaultReadTimeout is the default HTTP read timeout
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the default HTTP write timeout
	DefaultWriteTimeout = 15 * time.Second

	// DefaultIdleTimeout is the default HTTP idle timeout
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the default graceful shutdown timeout
	DefaultShutdownTimeout = 30 * time.Second
)

// Processing loop constants
const (
	// DefaultBatchSize is the default number of blocks fetched per batch
	DefaultBatchSize = 50

	// DefaultEmptyBatchDelay is the default wait when the gateway has no
	// new blocks
	DefaultEmptyBatchDelay = 5 * time.Second

	// DefaultRetryDelay is the default delay between fetch retries
	DefaultRetryDelay = 2 * time.Second

	// DefaultMaxFetchRetries is the default number of consecutive fetch
	// failures tolerated
	DefaultMaxFetchRetries = 5

	// DefaultUpstreamTimeout is the default timeout for one gateway request
	DefaultUpstreamTimeout = 30 * time.Second
)
