package di

import (
	"fmt"
	"reflect"

	"go.uber.org/fx"

	"github.com/bronystylecrazy/decorice/inject"
)

// Provide declares a constructor and options; use App(...).Build() to compile.
func Provide(constructor any, opts ...any) Node {
	return provideNode{constructor: constructor, opts: opts}
}

// Supply declares a value and options; use App(...).Build() to compile.
func Supply(value any, opts ...any) Node {
	return supplyNode{value: value, opts: opts}
}

type provideSpec struct {
	exports     []exportSpec
	includeSelf bool
	private     bool
}

func buildProvideSpec(cfg bindConfig, baseType reflect.Type) provideSpec {
	spec := provideSpec{
		exports:     cfg.exports,
		includeSelf: cfg.includeSelf,
		private:     cfg.private,
	}
	if cfg.pendingName != "" {
		spec.exports = append([]exportSpec{{typ: baseType, name: cfg.pendingName, named: true}}, spec.exports...)
	}
	return spec
}

type provideNode struct {
	constructor any
	opts        []any
}

func (n provideNode) Build() (fx.Option, error) {
	if n.constructor == nil {
		return nil, fmt.Errorf(errConstructorNil)
	}
	fn, err := inject.ConstructorType(n.constructor)
	if err != nil {
		return nil, err
	}
	var cfg bindConfig
	if err := applyBindOptions(n.opts, &cfg); err != nil {
		return nil, err
	}
	return buildProvideConstructorOption(buildProvideSpec(cfg, fn.Out(0)), n.constructor)
}

type supplyNode struct {
	value any
	opts  []any
}

func (n supplyNode) Build() (fx.Option, error) {
	if n.value == nil {
		return nil, fmt.Errorf(errSupplyValueNil)
	}
	if _, ok := n.value.(error); ok {
		return nil, fmt.Errorf(errSupplyValueNotError)
	}
	var cfg bindConfig
	if err := applyBindOptions(n.opts, &cfg); err != nil {
		return nil, err
	}
	return buildProvideSupplyOption(buildProvideSpec(cfg, reflect.TypeOf(n.value)), n.value)
}

func (n provideNode) describe() string {
	fn, err := inject.ConstructorType(n.constructor)
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}
	return describeExports(fn.Out(0), n.opts)
}

func (n supplyNode) describe() string {
	if n.value == nil {
		return "<error: " + errSupplyValueNil + ">"
	}
	return describeExports(reflect.TypeOf(n.value), n.opts)
}

func describeExports(base reflect.Type, opts []any) string {
	var cfg bindConfig
	if err := applyBindOptions(opts, &cfg); err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}
	spec := buildProvideSpec(cfg, base)
	if len(spec.exports) == 0 {
		return base.String()
	}
	out := base.String() + " as"
	if spec.includeSelf {
		out += " " + base.String() + ","
	}
	for i, exp := range spec.exports {
		if i > 0 {
			out += ","
		}
		out += " " + exp.typ.String()
		if exp.named {
			out += " " + nameTag(exp.name)
		}
	}
	return out
}
