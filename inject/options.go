package inject

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/bronystylecrazy/decorice/inject"

// Option configures an Injector.
type Option interface {
	apply(*options)
}

type options struct {
	logger         *zap.Logger
	tracerProvider trace.TracerProvider
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithLogger logs bindings and eager construction to logger.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	})
}

// WithTracerProvider records a span per resolved key. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return optionFunc(func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	})
}

func defaultOptions() options {
	return options{
		logger:         zap.NewNop(),
		tracerProvider: otel.GetTracerProvider(),
	}
}
