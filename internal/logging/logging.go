// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects the level, format and destinations of the logger.
type Config struct {
	Level       string   `koanf:"level"`
	Format      string   `koanf:"format"`
	OutputPaths []string `koanf:"output_paths"`
}

// DefaultConfig logs info and above to stderr in console format.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Format:      FormatConsole,
		OutputPaths: []string{"stderr"},
	}
}

// New builds a logger for cfg. The console format uses zap's development
// encoder, the json format its production encoder.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var zc zap.Config
	switch cfg.Format {
	case FormatConsole, "":
		zc = zap.NewDevelopmentConfig()
	case FormatJSON:
		zc = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	zc.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}
	zc.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
