// Package logger builds the zap loggers used across the processor.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum enabled logging level: "debug", "info",
	// "warn" or "error". Default: "info".
	Level string

	// Format sets the output encoding: "json" or "console".
	// Default: "json".
	Format string

	// Development enables human-readable output and stack traces on
	// warnings.
	Development bool
}

// NewDevelopment creates a console logger at debug level.
func NewDevelopment() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

// NewProduction creates a sampled JSON logger at info level.
func NewProduction() (*zap.Logger, error) {
	return zap.NewProductionConfig().Build()
}

// New creates a logger from the given configuration.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	level := zap.NewAtomicLevel()
	levelText := cfg.Level
	if levelText == "" {
		levelText = "info"
	}
	if err := level.UnmarshalText([]byte(levelText)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoding := cfg.Format
	if encoding == "" {
		encoding = "json"
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
	}

	zapConfig := zap.Config{
		Level:             level,
		Development:       cfg.Development,
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !cfg.Development,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// WithComponent returns a logger tagged with a "component" field.
func WithComponent(logger *zap.Logger, component string) *zap.Logger {
	return logger.With(zap.String("component", component))
}
