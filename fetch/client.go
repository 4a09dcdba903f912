// Package fetch pulls pre-indexed blocks from the upstream ingest gateway
// and applies them to the store, one transaction per block.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/swapstream/processor-go/types"
)

// Client fetches batches of blocks at or above a height, pre-filtered to
// the given event names, in ascending height order.
type Client interface {
	GetBatch(ctx context.Context, fromHeight uint64, limit int, eventNames []string) ([]types.Block, error)
}

// batchQuery is the fixed upstream query. The gateway indexes raw chain
// data; the processor only ever asks for blocks and their filtered events.
const batchQuery = `query GetBatch($height: Int!, $limit: Int!, $swapEvents: [String!]!) {
  blocks: allBlocks(
    filter: { height: { greaterThanOrEqualTo: $height } }
    first: $limit
    orderBy: HEIGHT_ASC
  ) {
    nodes {
      height
      hash
      timestamp
      specId
      events: eventsByBlockId(filter: { name: { in: $swapEvents } }) {
        nodes {
          args
          name
          indexInBlock
        }
      }
    }
  }
}`

// ClientConfig holds upstream client configuration.
type ClientConfig struct {
	// URL is the ingest gateway GraphQL endpoint.
	URL string

	// Timeout bounds one batch request.
	Timeout time.Duration

	// RateLimit is the maximum request rate per second. Zero disables
	// limiting.
	RateLimit float64
}

// Validate validates the client configuration.
func (c *ClientConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("upstream url must be set")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	return nil
}

// GraphQLClient is the HTTP implementation of Client.
type GraphQLClient struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewGraphQLClient creates a client for the ingest gateway.
func NewGraphQLClient(cfg *ClientConfig, logger *zap.Logger) (*GraphQLClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &GraphQLClient{
		url:     cfg.URL,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		logger:  logger,
	}, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type batchResponse struct {
	Data struct {
		Blocks *struct {
			Nodes []blockNode `json:"nodes"`
		} `json:"blocks"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type blockNode struct {
	Height    uint64    `json:"height"`
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
	SpecID    string    `json:"specId"`
	Events    struct {
		Nodes []eventNode `json:"nodes"`
	} `json:"events"`
}

type eventNode struct {
	Name         string          `json:"name"`
	IndexInBlock uint64          `json:"indexInBlock"`
	Args         json.RawMessage `json:"args"`
}

// GetBatch fetches up to limit blocks at or above fromHeight.
func (c *GraphQLClient) GetBatch(ctx context.Context, fromHeight uint64, limit int, eventNames []string) ([]types.Block, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(graphqlRequest{
		Query: batchQuery,
		Variables: map[string]any{
			"height":     fromHeight,
			"limit":      limit,
			"swapEvents": eventNames,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("batch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("batch request returned status %d", resp.StatusCode)
	}

	var decoded batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode batch response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("batch query failed: %s", decoded.Errors[0].Message)
	}
	if decoded.Data.Blocks == nil {
		return nil, fmt.Errorf("batch response missing blocks")
	}

	blocks := make([]types.Block, 0, len(decoded.Data.Blocks.Nodes))
	for _, node := range decoded.Data.Blocks.Nodes {
		block := types.Block{
			Height:    node.Height,
			Hash:      node.Hash,
			Timestamp: node.Timestamp,
			SpecID:    node.SpecID,
			Events:    make([]types.Event, 0, len(node.Events.Nodes)),
		}
		for _, e := range node.Events.Nodes {
			block.Events = append(block.Events, types.Event{
				Name:         e.Name,
				IndexInBlock: e.IndexInBlock,
				Args:         e.Args,
			})
		}
		// Events apply in emission order within the block.
		sort.SliceStable(block.Events, func(i, j int) bool {
			return block.Events[i].IndexInBlock < block.Events[j].IndexInBlock
		})
		blocks = append(blocks, block)
	}
	return blocks, nil
}
