package di

import (
	"fmt"
	"reflect"

	"go.uber.org/fx"
)

// Populate declares a populate node.
func Populate(args ...any) Node {
	var targets []any
	var opts []Option
	for _, arg := range args {
		if arg == nil {
			continue
		}
		if opt, ok := arg.(Option); ok {
			// Collect param options separately from targets.
			opts = append(opts, opt)
			continue
		}
		targets = append(targets, arg)
	}
	return populateNode{targets: targets, opts: opts}
}

type populateNode struct {
	targets []any
	opts    []Option
}

func (n populateNode) Build() (fx.Option, error) {
	var cfg paramConfig
	if err := applyParamOptions(n.opts, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.tags) == 0 {
		return fx.Populate(n.targets...), nil
	}
	if len(n.targets) != 1 {
		// Fx only supports tags when a single target is provided.
		return nil, fmt.Errorf(errParamTagsSingleTarget)
	}
	// fx.Populate does not take tags, so assign through a tagged invoke.
	target := reflect.ValueOf(n.targets[0])
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return nil, fmt.Errorf("populate target must be a non-nil pointer, got %T", n.targets[0])
	}
	elem := target.Type().Elem()
	setter := reflect.MakeFunc(reflect.FuncOf([]reflect.Type{elem}, nil, false), func(args []reflect.Value) []reflect.Value {
		target.Elem().Set(args[0])
		return nil
	})
	return fx.Invoke(fx.Annotate(setter.Interface(), fx.ParamTags(cfg.tags...))), nil
}
