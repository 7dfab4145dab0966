package di

import "go.uber.org/fx"

// Invoke declares an invoke node.
func Invoke(function any, opts ...Option) Node {
	return invokeNode{function: function, opts: opts}
}

type invokeNode struct {
	function any
	opts     []Option
}

func (n invokeNode) Build() (fx.Option, error) {
	var cfg paramConfig
	if err := applyParamOptions(n.opts, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.tags) == 0 {
		return fx.Invoke(n.function), nil
	}
	return fx.Invoke(fx.Annotate(n.function, fx.ParamTags(cfg.tags...))), nil
}
