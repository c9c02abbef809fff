package logger

import (
	"context"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Additional-Code/orderdesk/internal/config"
)

// Module exposes a configured Zap logger to the Fx container.
var Module = fx.Provide(New)

// New builds the process logger, tagged with the service name and
// environment, and syncs it when the Fx app stops.
func New(lc fx.Lifecycle, cfg config.Config) (*zap.Logger, error) {
	obs := cfg.Observability
	logger, err := buildConfig(obs).Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, err
	}
	logger = logger.With(
		zap.String("service", obs.ServiceName),
		zap.String("environment", obs.Environment),
	)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// stderr and stdout reject fsync on most terminals.
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}

// buildConfig maps observability settings onto a zap config. "console" gives
// a colored development layout; anything else is json with RFC 3339 stamps.
func buildConfig(obs config.Observability) zap.Config {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(strings.TrimSpace(obs.LogLevel))); err != nil {
		level = zapcore.InfoLevel
	}

	if strings.EqualFold(strings.TrimSpace(obs.LogEncoding), "console") {
		zc := zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		zc.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zc
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "json"
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339Nano)
	zc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	zc.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zc
}
