package di

import (
	"fmt"
	"reflect"

	"go.uber.org/fx"

	"github.com/bronystylecrazy/decorice/decor"
	"github.com/bronystylecrazy/decorice/inject"
)

var injectorType = reflect.TypeOf((*inject.Injector)(nil))

// Chain renders a decor chain as fx providers, one per compiled binding.
// Unqualified keys are provided as the bare contract type; qualified keys
// are provided under a name tag (see QualifierName). Private is the only
// option that applies.
//
// Fx builds every value once per app, so the entry point may only be
// unscoped, eager or singleton. An eager chain is constructed by fx.New.
func Chain(c decor.Chain, opts ...any) Node {
	return chainNode{chain: c, opts: opts}
}

// QualifierName returns the fx name tag used for a qualifier.
// inject.Name qualifiers use the bare name, so Named("x") matches di.Name("x").
// Other qualifiers are named by the full import path of their type, so
// same-named types from different packages get different tags.
func QualifierName(q any) string {
	switch v := q.(type) {
	case nil:
		return ""
	case inject.Name:
		return string(v)
	case decor.DecoratedBy:
		return "@DecoratedBy(" + typeIdentity(v.Subject()) + ")"
	}
	t := reflect.TypeOf(q)
	if t.Kind() == reflect.Struct && t.NumField() == 0 {
		return "@" + typeIdentity(t)
	}
	return fmt.Sprintf("@%s(%v)", typeIdentity(t), q)
}

func typeIdentity(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + typeIdentity(t.Elem())
	case reflect.Slice:
		return "[]" + typeIdentity(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), typeIdentity(t.Elem()))
	case reflect.Map:
		return "map[" + typeIdentity(t.Key()) + "]" + typeIdentity(t.Elem())
	case reflect.Chan:
		return "chan " + typeIdentity(t.Elem())
	}
	return t.String()
}

type chainNode struct {
	chain decor.Chain
	opts  []any
}

func (n chainNode) bindings() ([]bindingNode, error) {
	if n.chain == nil {
		return nil, fmt.Errorf(errChainNil)
	}
	var cfg bindConfig
	if err := applyBindOptions(n.opts, &cfg); err != nil {
		return nil, err
	}
	req, err := n.chain.Request()
	if err != nil {
		return nil, err
	}
	if !fxScope(req.Scope) {
		return nil, fmt.Errorf(errChainUnsupportedScope, req.Key(), req.Scope)
	}
	compiled, err := decor.Compile(req)
	if err != nil {
		return nil, err
	}
	out := make([]bindingNode, len(compiled))
	for i, b := range compiled {
		out[i] = bindingNode{binding: b, private: cfg.private}
	}
	return out, nil
}

func (n chainNode) Build() (fx.Option, error) {
	nodes, err := n.bindings()
	if err != nil {
		return nil, err
	}
	opts := make([]fx.Option, 0, len(nodes))
	for _, node := range nodes {
		opt, err := node.Build()
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return packOptions(opts), nil
}

func fxScope(s decor.ScopeDescriptor) bool {
	switch s.Kind {
	case decor.ScopeNone, decor.ScopeEager:
		return true
	case decor.ScopeNamed:
		return s.Name == inject.SingletonScope
	case decor.ScopeInstance:
		return s.Instance != nil && reflect.TypeOf(s.Instance).Comparable() && s.Instance == inject.Singleton
	default:
		return false
	}
}

type bindingNode struct {
	binding decor.Binding
	private bool
}

func (n bindingNode) Build() (fx.Option, error) {
	b := n.binding
	var (
		ctor any
		err  error
	)
	switch {
	case b.Target.Existing != nil:
		ctor = buildAliasConstructor(*b.Target.Existing, b.Key)
	case b.Target.Impl != nil:
		ctor, err = buildKeyedConstructor(b.Target.Impl.Constructor, b.Key)
	default:
		err = fmt.Errorf(errChainBindingTarget, b)
	}
	if err != nil {
		return nil, err
	}
	opt := provideOption(ctor, n.private)
	if b.Scope.Kind == decor.ScopeEager {
		opt = fx.Options(opt, fx.Invoke(buildEagerInvoke(b.Key)))
	}
	return opt, nil
}

func keyField(name string, key inject.Key) reflect.StructField {
	field := reflect.StructField{Name: name, Type: key.Type}
	if key.Qualifier != nil {
		field.Tag = reflect.StructTag(nameTag(QualifierName(key.Qualifier)))
	}
	return field
}

func keyIn(keys ...inject.Key) reflect.Type {
	fields := []reflect.StructField{{Name: "In", Type: fxInType, Anonymous: true}}
	for i, k := range keys {
		fields = append(fields, keyField(fmt.Sprintf("Field%d", i), k))
	}
	return reflect.StructOf(fields)
}

func keyOut(key inject.Key) reflect.Type {
	return reflect.StructOf([]reflect.StructField{
		{Name: "Out", Type: fxOutType, Anonymous: true},
		keyField("Value", key),
	})
}

// buildKeyedConstructor adapts a constructor to fx: inject.Dependency
// parameters become name-tagged fields and the result is exported at key.
func buildKeyedConstructor(constructor any, key inject.Key) (any, error) {
	fn, err := inject.ConstructorType(constructor)
	if err != nil {
		return nil, err
	}
	params := make([]inject.Key, fn.NumIn())
	deps := make([]inject.Dependency, fn.NumIn())
	for i := range params {
		p := fn.In(i)
		if p == injectorType {
			return nil, fmt.Errorf(errChainInjectorParameter, key)
		}
		params[i] = inject.Key{Type: p}
		if dep, ok := inject.DependencyOf(p); ok {
			deps[i] = dep
			params[i] = dep.DependencyKey()
		}
	}
	hasErr := fn.NumOut() == 2
	inType, outType := keyIn(params...), keyOut(key)
	outTypes := []reflect.Type{outType}
	if hasErr {
		outTypes = append(outTypes, errorType)
	}
	orig := reflect.ValueOf(constructor)
	wrapperType := reflect.FuncOf([]reflect.Type{inType}, outTypes, false)
	wrapper := reflect.MakeFunc(wrapperType, func(args []reflect.Value) []reflect.Value {
		in := args[0]
		callArgs := make([]reflect.Value, len(params))
		for i := range params {
			v := in.Field(i + 1)
			if deps[i] != nil {
				v = reflect.ValueOf(deps[i].With(v.Interface()))
			}
			callArgs[i] = v
		}
		results := orig.Call(callArgs)
		if hasErr && !results[1].IsNil() {
			return []reflect.Value{reflect.Zero(outType), results[1]}
		}
		out := reflect.New(outType).Elem()
		out.Field(1).Set(results[0])
		if hasErr {
			return []reflect.Value{out, reflect.Zero(errorType)}
		}
		return []reflect.Value{out}
	})
	return wrapper.Interface(), nil
}

func buildAliasConstructor(target, key inject.Key) any {
	inType, outType := keyIn(target), keyOut(key)
	fnType := reflect.FuncOf([]reflect.Type{inType}, []reflect.Type{outType}, false)
	return reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		out := reflect.New(outType).Elem()
		out.Field(1).Set(args[0].Field(1))
		return []reflect.Value{out}
	}).Interface()
}

func buildEagerInvoke(key inject.Key) any {
	fnType := reflect.FuncOf([]reflect.Type{keyIn(key)}, nil, false)
	return reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		return nil
	}).Interface()
}
