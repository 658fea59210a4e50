package node

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var zapLevels = map[string]zapcore.Level{
	"debug": zap.DebugLevel,
	"info":  zap.InfoLevel,
	"warn":  zap.WarnLevel,
	"error": zap.ErrorLevel,
}

// NewLogger builds the subsystem's structured logger per cfg.LogLevel
// and cfg.LogFormat ("console" for human-oriented development output,
// "json" for machine-parsed production output).
func NewLogger(cfg Config) (*zap.Logger, error) {
	level, ok := zapLevels[cfg.LogLevel]
	if !ok {
		return nil, fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}

	var zcfg zap.Config
	switch cfg.LogFormat {
	case "json":
		zcfg = zap.NewProductionConfig()
	default:
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
