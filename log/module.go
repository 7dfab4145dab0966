package log

import (
	"go.uber.org/fx"

	"github.com/bronystylecrazy/decorice/di"
)

var ModuleName = "decorice/log"

// Module provides a *zap.Logger built from cfg and routes fx events to it.
func Module(cfg Config, extends ...any) di.Node {
	return di.Module(ModuleName,
		di.Supply(cfg),
		di.Provide(New),
		fx.WithLogger(NewEventLogger),
		di.Options(extends...),
	)
}
