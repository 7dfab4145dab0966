package di

import (
	"strings"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Diagnostics logs the first fx error through zap, with a hint when a
// decorator's wrapped layer is missing.
func Diagnostics() Node {
	return diagnosticsNode{}
}

type diagnosticsNode struct{}

func (n diagnosticsNode) Build() (fx.Option, error) {
	return fx.WithLogger(func(in struct {
		fx.In
		Logger *zap.Logger `optional:"true"`
	}) fxevent.Logger {
		logger := in.Logger
		if logger == nil {
			logger = newDiagnosticsFallbackLogger()
		}
		logger = logger.WithOptions(zap.AddStacktrace(zapcore.FatalLevel))
		return &diagnosticsLogger{logger: logger}
	}), nil
}

func newDiagnosticsFallbackLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

type diagnosticsLogger struct {
	logger *zap.Logger
	once   sync.Once
}

func (l *diagnosticsLogger) LogEvent(event fxevent.Event) {
	var err error
	// Extract error from any Fx event type that carries one.
	switch e := event.(type) {
	case *fxevent.Started:
		err = e.Err
	case *fxevent.Stopped:
		err = e.Err
	case *fxevent.Invoked:
		err = e.Err
	case *fxevent.Provided:
		err = e.Err
	case *fxevent.Decorated:
		err = e.Err
	case *fxevent.Supplied:
		err = e.Err
	case *fxevent.Run:
		err = e.Err
	case *fxevent.OnStartExecuted:
		err = e.Err
	case *fxevent.OnStopExecuted:
		err = e.Err
	case *fxevent.RollingBack:
		err = e.StartErr
	case *fxevent.RolledBack:
		err = e.Err
	}
	if err == nil {
		return
	}
	l.once.Do(func() {
		fields := []zap.Field{zap.Error(err)}
		if hint := diagnosticHint(err.Error()); hint != "" {
			fields = append(fields, zap.String("hint", hint))
		}
		l.logger.Error("fx error", fields...)
	})
}

func diagnosticHint(msg string) string {
	if !strings.Contains(msg, "missing type") {
		return ""
	}
	for _, missing := range extractMissingTypes(msg) {
		if strings.Contains(missing, "@DecoratedBy(") {
			return "a decorator asks for " + missing +
				"; its Decorated parameter must name the decorator's own type and the decorator must be in the chain"
		}
	}
	return ""
}

func extractMissingTypes(msg string) []string {
	var out []string
	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimSpace(line)
		if idx := strings.Index(line, "missing type:"); idx >= 0 {
			if val := strings.TrimSpace(line[idx+len("missing type:"):]); val != "" {
				out = append(out, val)
			}
			continue
		}
		if strings.HasPrefix(line, "- ") {
			out = append(out, strings.TrimSpace(strings.TrimPrefix(line, "- ")))
		}
	}
	return out
}
