package di

import (
	"fmt"
	"reflect"

	"go.uber.org/fx"
)

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	fxInType  = reflect.TypeOf(fx.In{})
	fxOutType = reflect.TypeOf(fx.Out{})
)

// packOptions returns a single fx.Option with the same semantics as the slice.
func packOptions(opts []fx.Option) fx.Option {
	switch len(opts) {
	case 0:
		return fx.Options()
	case 1:
		return opts[0]
	default:
		return fx.Options(opts...)
	}
}

func provideOption(constructor any, private bool) fx.Option {
	if private {
		return fx.Provide(constructor, fx.Private)
	}
	return fx.Provide(constructor)
}

func buildProvideConstructorOption(spec provideSpec, constructor any) (fx.Option, error) {
	if len(spec.exports) == 0 && !spec.includeSelf {
		// No export rewriting needed; provide directly.
		return provideOption(constructor, spec.private), nil
	}
	wrapped, err := buildExportedConstructor(constructor, spec.exports, spec.includeSelf)
	if err != nil {
		return nil, err
	}
	return provideOption(wrapped, spec.private), nil
}

func buildProvideSupplyOption(spec provideSpec, value any) (fx.Option, error) {
	if len(spec.exports) == 0 && !spec.includeSelf {
		if spec.private {
			return fx.Supply(value, fx.Private), nil
		}
		return fx.Supply(value), nil
	}
	valueType := reflect.TypeOf(value)
	val := reflect.ValueOf(value)
	supplier := reflect.MakeFunc(reflect.FuncOf(nil, []reflect.Type{valueType}, false),
		func([]reflect.Value) []reflect.Value { return []reflect.Value{val} },
	)
	return buildProvideConstructorOption(spec, supplier.Interface())
}

// outStruct builds an fx.Out struct with one field per export.
func outStruct(valueType reflect.Type, exports []exportSpec, includeSelf bool) reflect.Type {
	fields := []reflect.StructField{{
		Name:      "Out",
		Type:      fxOutType,
		Anonymous: true,
	}}
	if includeSelf {
		fields = append(fields, reflect.StructField{Name: "Self", Type: valueType})
	}
	for i, exp := range exports {
		var tag reflect.StructTag
		if exp.named {
			tag = reflect.StructTag(nameTag(exp.name))
		}
		fields = append(fields, reflect.StructField{
			Name: fmt.Sprintf("Field%d", i),
			Type: exp.typ,
			Tag:  tag,
		})
	}
	return reflect.StructOf(fields)
}

func buildExportedConstructor(constructor any, exports []exportSpec, includeSelf bool) (any, error) {
	if constructor == nil {
		return nil, fmt.Errorf(errConstructorNil)
	}
	fn := reflect.TypeOf(constructor)
	hasErr := fn.NumOut() == 2
	valueType := fn.Out(0)
	if err := validateExports(valueType, exports); err != nil {
		return nil, err
	}
	outType := outStruct(valueType, exports, includeSelf)

	inTypes := make([]reflect.Type, fn.NumIn())
	for i := range inTypes {
		inTypes[i] = fn.In(i)
	}
	outTypes := []reflect.Type{outType}
	if hasErr {
		outTypes = append(outTypes, errorType)
	}
	orig := reflect.ValueOf(constructor)
	wrapperType := reflect.FuncOf(inTypes, outTypes, fn.IsVariadic())
	wrapper := reflect.MakeFunc(wrapperType, func(args []reflect.Value) []reflect.Value {
		var results []reflect.Value
		if fn.IsVariadic() {
			results = orig.CallSlice(args)
		} else {
			results = orig.Call(args)
		}
		if hasErr && !results[1].IsNil() {
			return []reflect.Value{reflect.Zero(outType), results[1]}
		}
		out := reflect.New(outType).Elem()
		for i := 1; i < outType.NumField(); i++ {
			out.Field(i).Set(results[0])
		}
		if hasErr {
			return []reflect.Value{out, reflect.Zero(errorType)}
		}
		return []reflect.Value{out}
	})
	return wrapper.Interface(), nil
}

func validateExports(valueType reflect.Type, exports []exportSpec) error {
	for _, exp := range exports {
		if exp.typ == nil {
			return fmt.Errorf(errExportTypeNil)
		}
		if exp.named && exp.name == "" {
			return fmt.Errorf(errNameEmpty)
		}
		if !valueType.AssignableTo(exp.typ) {
			return fmt.Errorf(errNotAssignableToType, valueType, exp.typ)
		}
	}
	return nil
}
