package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/swapstream/processor-go/api"
	"github.com/swapstream/processor-go/events"
	"github.com/swapstream/processor-go/fetch"
	"github.com/swapstream/processor-go/handlers"
	"github.com/swapstream/processor-go/internal/config"
	"github.com/swapstream/processor-go/internal/logger"
	"github.com/swapstream/processor-go/schemas"
	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

var (
	// Version information (injected at build time)
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to configuration file (YAML)")
		showVersion = flag.Bool("version", false, "Show version information and exit")
		upstreamURL = flag.String("upstream", "", "Ingest gateway GraphQL URL")
		dbPath      = flag.String("db", "", "Database path")
		network     = flag.String("network", "", "Protocol network (mainnet, perseverance, sisyphos, backspin)")
		startHeight = flag.Uint64("start-height", 0, "Block height to start processing from")
		batchSize   = flag.Int("batch-size", 0, "Number of blocks per batch")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
		logFormat   = flag.String("log-format", "", "Log format (json, console)")
		enableOps   = flag.Bool("ops", false, "Enable ops HTTP server")
		opsHost     = flag.String("ops-host", "", "Ops server host")
		opsPort     = flag.Int("ops-port", 0, "Ops server port")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("swapstream-processor version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", buildTime)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configFile, func(c *config.Config) {
		applyFlags(c, *upstreamURL, *dbPath, *network, *startHeight, *batchSize, *logLevel, *logFormat)
		applyOpsFlags(c, *enableOps, *opsHost, *opsPort)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := initLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting swap processor",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("upstream", cfg.Upstream.URL),
		zap.String("db_path", cfg.Database.Path),
		zap.String("network", string(cfg.Processor.Network)),
		zap.Uint64("start_height", cfg.Processor.StartHeight),
		zap.Int("batch_size", cfg.Processor.BatchSize),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	store, err := storage.Open(storage.DefaultConfig(cfg.Database.Path), logger.WithComponent(log, "storage"))
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close storage", zap.Error(err))
		}
	}()

	client, err := fetch.NewGraphQLClient(&fetch.ClientConfig{
		URL:       cfg.Upstream.URL,
		Timeout:   cfg.Upstream.Timeout,
		RateLimit: cfg.Upstream.RateLimit,
	}, logger.WithComponent(log, "fetch"))
	if err != nil {
		log.Fatal("failed to create upstream client", zap.Error(err))
	}

	metrics := events.NewMetrics("")
	processor, err := fetch.NewProcessor(
		client,
		store,
		handlers.Registry(),
		schemas.NewDecoder(cfg.Processor.Network),
		metrics,
		&fetch.ProcessorConfig{
			StartHeight:     cfg.Processor.StartHeight,
			BatchSize:       cfg.Processor.BatchSize,
			EmptyBatchDelay: cfg.Processor.EmptyBatchDelay,
			RetryDelay:      cfg.Processor.RetryDelay,
			MaxFetchRetries: cfg.Processor.MaxFetchRetries,
		},
		logger.WithComponent(log, "processor"),
	)
	if err != nil {
		log.Fatal("failed to create processor", zap.Error(err))
	}

	var opsServer *api.Server
	if cfg.Ops.Enabled {
		opsConfig := api.DefaultConfig()
		opsConfig.Host = cfg.Ops.Host
		opsConfig.Port = cfg.Ops.Port

		opsServer, err = api.NewServer(opsConfig, logger.WithComponent(log, "ops"), store)
		if err != nil {
			log.Fatal("failed to create ops server", zap.Error(err))
		}
		go func() {
			if err := opsServer.Start(); err != nil {
				log.Error("ops server failed", zap.Error(err))
			}
		}()
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- processor.Run(ctx)
	}()

	exitCode := 0
	select {
	case sig := <-sigChan:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
		if err := <-errChan; err != nil && !errors.Is(err, context.Canceled) {
			log.Error("processor stopped with error", zap.Error(err))
			exitCode = 1
		}
	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			// A failed block is never partially applied; restart resumes
			// from the last committed height.
			log.Error("processor stopped with error", zap.Error(err))
			exitCode = 1
		}
	}

	if opsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := opsServer.Stop(shutdownCtx); err != nil {
			log.Error("failed to stop ops server gracefully", zap.Error(err))
		}
	}

	log.Info("processor stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// loadConfig loads configuration from .env, file, environment and flags.
func loadConfig(configFile string, applyCLI func(*config.Config)) (*config.Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &config.Config{}
	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	applyCLI(cfg)
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads environment variables from a .env file if it exists.
func loadDotEnv() error {
	info, err := os.Stat(".env")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat .env: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf(".env exists but is a directory")
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// applyFlags applies command-line flags to configuration.
func applyFlags(cfg *config.Config, upstreamURL, dbPath, network string, startHeight uint64, batchSize int, logLevel, logFormat string) {
	if upstreamURL != "" {
		cfg.Upstream.URL = upstreamURL
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if network != "" {
		cfg.Processor.Network = types.Network(network)
	}
	if startHeight > 0 {
		cfg.Processor.StartHeight = startHeight
	}
	if batchSize > 0 {
		cfg.Processor.BatchSize = batchSize
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
}

// applyOpsFlags applies ops-server command-line flags to configuration.
func applyOpsFlags(cfg *config.Config, enableOps bool, opsHost string, opsPort int) {
	if enableOps {
		cfg.Ops.Enabled = true
	}
	if opsHost != "" {
		cfg.Ops.Host = opsHost
	}
	if opsPort > 0 {
		cfg.Ops.Port = opsPort
	}
}

// initLogger initializes the logger based on configuration.
func initLogger(level, format string) (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:       level,
		Format:      format,
		Development: format == "console",
	})
}
