// File: internal/platform/logger/zap.go
package logger

import (
	"strings"

	"flipradar_backend/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New initializes a new Zap logger based on the application configuration.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	// Set log level
	logLevel := strings.ToLower(cfg.LogLevel)
	level := zapcore.InfoLevel // Default level
	switch logLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	case "dpanic":
		level = zapcore.DPanicLevel
	case "panic":
		level = zapcore.PanicLevel
	case "fatal":
		level = zapcore.FatalLevel
	}

	if cfg.GinMode == "release" {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else { // "debug" or "test"
		zapConfig = zap.NewDevelopmentConfig()
		// More human-readable output for development
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	// Override level from config
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	// Output format from config
	if strings.ToLower(cfg.LogFormat) == "json" {
		zapConfig.Encoding = "json"
	} else {
		zapConfig.Encoding = "console"
	}

	logger, err := zapConfig.Build(zap.AddCallerSkip(1)) // AddCallerSkip to show correct caller
	if err != nil {
		return nil, err
	}

	return logger, nil
}

// NewSugaredLogger provides a SugaredLogger for convenience.
func NewSugaredLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	logger, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// NewDefaultLogger is for testing or simple scenarios where config might not be fully loaded.
func NewDefaultLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}
