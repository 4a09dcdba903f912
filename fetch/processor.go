package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/swapstream/processor-go/decode"
	"github.com/swapstream/processor-go/events"
	"github.com/swapstream/processor-go/schemas"
	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

// ProcessorConfig holds processing loop configuration.
type ProcessorConfig struct {
	// StartHeight is the height the cursor is initialized to on first run.
	StartHeight uint64

	// BatchSize is the number of blocks requested per batch.
	BatchSize int

	// EmptyBatchDelay is how long to wait when the gateway has no new
	// blocks.
	EmptyBatchDelay time.Duration

	// RetryDelay is the delay before retrying a failed batch fetch.
	RetryDelay time.Duration

	// MaxFetchRetries is the number of consecutive fetch failures
	// tolerated before the run fails.
	MaxFetchRetries int
}

// Validate validates the processor configuration.
func (c *ProcessorConfig) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.EmptyBatchDelay <= 0 {
		return fmt.Errorf("empty batch delay must be positive")
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("retry delay must be positive")
	}
	if c.MaxFetchRetries <= 0 {
		return fmt.Errorf("max fetch retries must be positive")
	}
	return nil
}

// DefaultProcessorConfig returns a ProcessorConfig with the defaults used
// in production.
func DefaultProcessorConfig() *ProcessorConfig {
	return &ProcessorConfig{
		BatchSize:       50,
		EmptyBatchDelay: 5 * time.Second,
		RetryDelay:      2 * time.Second,
		MaxFetchRetries: 5,
	}
}

// Processor drives the fetch-decode-apply loop. Each block is applied in
// one storage transaction guarded by the cursor compare-and-set, so a
// crash or handler failure leaves the store at the last fully applied
// block.
type Processor struct {
	client   Client
	store    *storage.Store
	registry *events.Registry
	decoder  *schemas.Decoder
	metrics  *events.Metrics
	config   *ProcessorConfig
	logger   *zap.Logger

	names []string
}

// NewProcessor creates a Processor.
func NewProcessor(
	client Client,
	store *storage.Store,
	registry *events.Registry,
	decoder *schemas.Decoder,
	metrics *events.Metrics,
	config *ProcessorConfig,
	logger *zap.Logger,
) (*Processor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid processor config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		client:   client,
		store:    store,
		registry: registry,
		decoder:  decoder,
		metrics:  metrics,
		config:   config,
		logger:   logger,
		names:    registry.Names(),
	}, nil
}

// Run processes blocks until the context is cancelled or a block fails to
// apply. A failed block is never partially applied; the process is
// expected to exit and resume from the cursor on restart.
func (p *Processor) Run(ctx context.Context) error {
	last, err := p.loadCursor()
	if err != nil {
		return err
	}
	p.logger.Info("resuming block processing",
		zap.Uint64("last_block", last),
		zap.Int("event_names", len(p.names)))
	if p.metrics != nil {
		p.metrics.CursorHeight.Set(float64(last))
	}

	fetchFailures := 0
	for {
		if err := ctx.Err(); err != nil {
			p.logger.Info("stopping block processing")
			return err
		}

		blocks, err := p.client.GetBatch(ctx, last+1, p.config.BatchSize, p.names)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fetchFailures++
			if fetchFailures > p.config.MaxFetchRetries {
				return fmt.Errorf("upstream fetch failed %d times in a row: %w", fetchFailures, err)
			}
			p.logger.Warn("batch fetch failed",
				zap.Int("attempt", fetchFailures),
				zap.Error(err))
			if err := sleep(ctx, p.config.RetryDelay); err != nil {
				return err
			}
			continue
		}
		fetchFailures = 0

		if len(blocks) == 0 {
			if err := sleep(ctx, p.config.EmptyBatchDelay); err != nil {
				return err
			}
			continue
		}

		start := time.Now()
		for i := range blocks {
			if err := ctx.Err(); err != nil {
				p.logger.Info("stopping block processing", zap.Uint64("last_block", last))
				return err
			}
			if blocks[i].Height <= last {
				return fmt.Errorf("block height is not increasing: got %d after %d", blocks[i].Height, last)
			}
			if err := p.applyBlock(&blocks[i], last); err != nil {
				return fmt.Errorf("failed to apply block %d: %w", blocks[i].Height, err)
			}
			last = blocks[i].Height
			if p.metrics != nil {
				p.metrics.CursorHeight.Set(float64(last))
				p.metrics.BlocksProcessedTotal.Inc()
			}
		}
		p.logger.Info("processed batch",
			zap.Int("blocks", len(blocks)),
			zap.Uint64("last_block", last),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// loadCursor reads (or initializes) the cursor in its own transaction.
func (p *Processor) loadCursor() (uint64, error) {
	var last uint64
	err := p.store.Update(func(tx *storage.Tx) error {
		var err error
		last, err = tx.LoadCursor(p.config.StartHeight)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load cursor: %w", err)
	}
	return last, nil
}

// applyBlock applies every event of one block inside a single transaction
// and advances the cursor, all or nothing.
func (p *Processor) applyBlock(block *types.Block, last uint64) error {
	version, err := decode.ParseSpecID(block.SpecID)
	if err != nil {
		return err
	}

	start := time.Now()
	tx := p.store.Begin()
	defer tx.Discard()

	// A cursor that moved since the last commit means a second writer is
	// running against this store.
	current, err := tx.LoadCursor(p.config.StartHeight)
	if err != nil {
		return err
	}
	if current != last {
		return fmt.Errorf("%w: cursor moved to %d while processing %d",
			storage.ErrCursorConflict, current, last)
	}

	for i := range block.Events {
		event := &block.Events[i]
		handler, ok := p.registry.Lookup(event.Name, version)
		if !ok {
			p.logger.Debug("no handler for event",
				zap.String("event", event.Name),
				zap.String("version", version.String()),
				zap.Uint64("height", block.Height))
			if p.metrics != nil {
				p.metrics.EventsSkippedTotal.WithLabelValues(event.Name).Inc()
			}
			continue
		}

		err := handler(&events.Context{
			Tx:      tx,
			Block:   block,
			Version: version,
			Event:   event,
			Decoder: p.decoder,
			Logger:  p.logger,
		})
		if err != nil {
			if p.metrics != nil {
				if errors.Is(err, schemas.ErrDecodeFailure) {
					p.metrics.DecodeFailuresTotal.WithLabelValues(event.Name).Inc()
				} else {
					p.metrics.HandlerErrorsTotal.WithLabelValues(event.Name).Inc()
				}
			}
			return fmt.Errorf("event %s at %s: %w",
				event.Name, types.BlockIndex(block.Height, event.IndexInBlock), err)
		}
		if p.metrics != nil {
			p.metrics.EventsProcessedTotal.WithLabelValues(event.Name).Inc()
		}
	}

	if err := tx.AdvanceCursor(last, block.Height); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	if p.metrics != nil {
		p.metrics.BlockApplyDuration.Observe(time.Since(start).Seconds())
	}
	return nil
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
