// Package logging builds the service logger: ectologger for context-aware
// structured fields, zap as the output sink.
package logging

import (
	"strings"

	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction
type Config struct {
	Level  string
	Pretty bool
}

// New creates the service logger and the underlying zap logger. The zap
// logger is returned so main can flush it on shutdown.
func New(cfg Config) (ectologger.Logger, *zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Pretty {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zl, err := zapCfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, nil, err
	}

	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		fields := make([]zap.Field, 0, len(msg.Fields)+1)
		for k, v := range msg.Fields {
			fields = append(fields, zap.Any(k, v))
		}
		if msg.Err != nil {
			fields = append(fields, zap.Error(msg.Err))
		}

		switch strings.ToLower(msg.Level) {
		case "debug":
			zl.Debug(msg.Message, fields...)
		case "warn", "warning":
			zl.Warn(msg.Message, fields...)
		case "error":
			zl.Error(msg.Message, fields...)
		case "fatal":
			zl.Fatal(msg.Message, fields...)
		default:
			zl.Info(msg.Message, fields...)
		}
	})

	return logger, zl, nil
}
