// Package config loads processor configuration from YAML files and
// environment variables. Environment variables take precedence over the
// file; defaults fill whatever is left.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/swapstream/processor-go/internal/constants"
	"github.com/swapstream/processor-go/types"
)

// Config holds all configuration for the processor.
type Config struct {
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Processor ProcessorConfig `yaml:"processor"`
	Ops       OpsConfig       `yaml:"ops"`
}

// UpstreamConfig holds ingest gateway client configuration.
type UpstreamConfig struct {
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
}

// DatabaseConfig holds pebble database configuration.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ProcessorConfig holds processing loop configuration.
type ProcessorConfig struct {
	Network         types.Network `yaml:"network"`
	StartHeight     uint64        `yaml:"start_height"`
	BatchSize       int           `yaml:"batch_size"`
	EmptyBatchDelay time.Duration `yaml:"empty_batch_delay"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	MaxFetchRetries int           `yaml:"max_fetch_retries"`
}

// OpsConfig holds ops HTTP server configuration.
type OpsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills in default values for anything unset.
func (c *Config) SetDefaults() {
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = constants.DefaultUpstreamTimeout
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	if c.Processor.Network == "" {
		c.Processor.Network = types.NetworkMainnet
	}
	if c.Processor.BatchSize == 0 {
		c.Processor.BatchSize = constants.DefaultBatchSize
	}
	if c.Processor.EmptyBatchDelay == 0 {
		c.Processor.EmptyBatchDelay = constants.DefaultEmptyBatchDelay
	}
	if c.Processor.RetryDelay == 0 {
		c.Processor.RetryDelay = constants.DefaultRetryDelay
	}
	if c.Processor.MaxFetchRetries == 0 {
		c.Processor.MaxFetchRetries = constants.DefaultMaxFetchRetries
	}

	if c.Ops.Host == "" {
		c.Ops.Host = constants.DefaultOpsHost
	}
	if c.Ops.Port == 0 {
		c.Ops.Port = constants.DefaultOpsPort
	}
}

// LoadFromEnv overrides configuration from environment variables.
func (c *Config) LoadFromEnv() error {
	if url := os.Getenv("PROCESSOR_UPSTREAM_URL"); url != "" {
		c.Upstream.URL = url
	}
	if timeout := os.Getenv("PROCESSOR_UPSTREAM_TIMEOUT"); timeout != "" {
		duration, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid PROCESSOR_UPSTREAM_TIMEOUT: %w", err)
		}
		c.Upstream.Timeout = duration
	}
	if limit := os.Getenv("PROCESSOR_UPSTREAM_RATE_LIMIT"); limit != "" {
		val, err := strconv.ParseFloat(limit, 64)
		if err != nil {
			return fmt.Errorf("invalid PROCESSOR_UPSTREAM_RATE_LIMIT: %w", err)
		}
		c.Upstream.RateLimit = val
	}

	if path := os.Getenv("PROCESSOR_DB_PATH"); path != "" {
		c.Database.Path = path
	}

	if level := os.Getenv("PROCESSOR_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("PROCESSOR_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}

	if network := os.Getenv("PROCESSOR_NETWORK"); network != "" {
		c.Processor.Network = types.Network(network)
	}
	if startHeight := os.Getenv("PROCESSOR_START_HEIGHT"); startHeight != "" {
		val, err := strconv.ParseUint(startHeight, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid PROCESSOR_START_HEIGHT: %w", err)
		}
		c.Processor.StartHeight = val
	}
	if batchSize := os.Getenv("PROCESSOR_BATCH_SIZE"); batchSize != "" {
		val, err := strconv.Atoi(batchSize)
		if err != nil {
			return fmt.Errorf("invalid PROCESSOR_BATCH_SIZE: %w", err)
		}
		c.Processor.BatchSize = val
	}
	if delay := os.Getenv("PROCESSOR_EMPTY_BATCH_DELAY"); delay != "" {
		duration, err := time.ParseDuration(delay)
		if err != nil {
			return fmt.Errorf("invalid PROCESSOR_EMPTY_BATCH_DELAY: %w", err)
		}
		c.Processor.EmptyBatchDelay = duration
	}

	if enabled := os.Getenv("PROCESSOR_OPS_ENABLED"); enabled != "" {
		val, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid PROCESSOR_OPS_ENABLED: %w", err)
		}
		c.Ops.Enabled = val
	}
	if host := os.Getenv("PROCESSOR_OPS_HOST"); host != "" {
		c.Ops.Host = host
	}
	if port := os.Getenv("PROCESSOR_OPS_PORT"); port != "" {
		val, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PROCESSOR_OPS_PORT: %w", err)
		}
		c.Ops.Port = val
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file.
func (c *Config) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Upstream.URL == "" {
		return fmt.Errorf("upstream url is required")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}
	if c.Upstream.RateLimit < 0 {
		return fmt.Errorf("upstream rate limit cannot be negative")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Log.Level)
	}
	validLogFormats := map[string]bool{
		"json":    true,
		"console": true,
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format %q, must be one of: json, console", c.Log.Format)
	}

	if !c.Processor.Network.Valid() {
		return fmt.Errorf("invalid network %q", c.Processor.Network)
	}
	if c.Processor.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.Processor.EmptyBatchDelay <= 0 {
		return fmt.Errorf("empty batch delay must be positive")
	}
	if c.Processor.RetryDelay <= 0 {
		return fmt.Errorf("retry delay must be positive")
	}
	if c.Processor.MaxFetchRetries <= 0 {
		return fmt.Errorf("max fetch retries must be positive")
	}

	if c.Ops.Enabled {
		if c.Ops.Host == "" {
			return fmt.Errorf("ops host cannot be empty")
		}
		if c.Ops.Port < constants.MinPort || c.Ops.Port > constants.MaxPort {
			return fmt.Errorf("ops port must be between %d and %d", constants.MinPort, constants.MaxPort)
		}
	}

	return nil
}

// Load loads configuration in order: defaults, file (if given), environment
// overrides, then validation.
func Load(configFile string) (*Config, error) {
	cfg := &Config{}

	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
