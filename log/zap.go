package log

import (
	"fmt"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bronystylecrazy/decorice/build"
)

// Config selects the log level. An empty level means debug in development
// builds and info otherwise.
type Config struct {
	Level string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error fatal"`
}

func (c Config) level() (zapcore.Level, error) {
	if c.Level == "" {
		if build.IsDevelopment() {
			return zapcore.DebugLevel, nil
		}
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return lvl, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

// New builds a console logger in development builds and a JSON production
// logger otherwise.
func New(cfg Config) (*zap.Logger, error) {
	lvl, err := cfg.level()
	if err != nil {
		return nil, err
	}
	zapConfig := zap.NewProductionConfig()
	if build.IsDevelopment() {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	return zapConfig.Build()
}

func NewEventLogger(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log}
}
