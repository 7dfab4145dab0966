package inject

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Injector resolves keys against the bindings collected from its modules.
// It is safe for concurrent use once New returns.
type Injector struct {
	id      string
	entries map[Key]*entry
	order   []Key
	logger  *zap.Logger
	tracer  trace.Tracer
}

type entry struct {
	binding  *binding
	provider Provider
}

var injectorType = reflect.TypeOf((*Injector)(nil))

// New configures the given modules and returns an injector.
// Items may be Modules or Options. Configuration errors are aggregated;
// eager singletons are constructed before New returns.
func New(items ...any) (*Injector, error) {
	opts := defaultOptions()
	var modules []Module
	for _, item := range items {
		switch v := item.(type) {
		case nil:
			continue
		case Option:
			v.apply(&opts)
		case Module:
			modules = append(modules, v)
		default:
			return nil, fmt.Errorf(errUnsupportedItem, item)
		}
	}

	inj := &Injector{
		id:      uuid.NewString(),
		entries: map[Key]*entry{},
		tracer:  opts.tracerProvider.Tracer(instrumentationName),
	}
	inj.logger = opts.logger.With(zap.String("injector", inj.id))

	b := newBinder()
	for _, m := range modules {
		b.Install(m)
	}
	if err := inj.configure(b); err != nil {
		inj.logger.Error("injector configuration failed", zap.Error(err))
		return nil, err
	}
	if err := inj.instantiateEager(context.Background()); err != nil {
		inj.logger.Error("eager singleton construction failed", zap.Error(err))
		return nil, err
	}
	return inj, nil
}

func (inj *Injector) configure(b *Binder) error {
	err := b.err
	for _, bd := range b.bindings {
		if bd.failed {
			continue
		}
		if bd.kind == targetUnset {
			err = multierr.Append(err, fmt.Errorf("bind %s: %w", bd.key, ErrUnlinkedBinding))
			continue
		}
		if bd.scopeName != "" {
			scope, ok := b.scopes[bd.scopeName]
			if !ok {
				err = multierr.Append(err, fmt.Errorf("bind %s: %w: %q", bd.key, ErrUnknownScope, bd.scopeName))
				continue
			}
			bd.scope = scope
		}
		if _, ok := inj.entries[bd.key]; ok {
			err = multierr.Append(err, &DuplicateBindingError{Key: bd.key})
			continue
		}
		inj.entries[bd.key] = &entry{binding: bd}
		inj.order = append(inj.order, bd.key)
	}
	for _, key := range inj.order {
		bd := inj.entries[key].binding
		if bd.kind != targetKey {
			continue
		}
		if _, ok := inj.entries[bd.alias]; !ok {
			err = multierr.Append(err, &UnresolvedError{Key: bd.alias, Requester: bd.key})
		}
	}
	if err != nil {
		return err
	}
	for _, key := range inj.order {
		e := inj.entries[key]
		e.provider = inj.provider(e.binding)
		inj.logger.Debug("binding",
			zap.Stringer("key", key),
			zap.String("target", e.binding.target()),
			zap.String("scope", e.binding.scopeLabel()),
		)
	}
	return nil
}

func (inj *Injector) provider(bd *binding) Provider {
	var unscoped Provider
	switch bd.kind {
	case targetConstructor:
		unscoped = func(ctx context.Context) (any, error) {
			return inj.construct(ctx, bd)
		}
	case targetKey:
		unscoped = func(ctx context.Context) (any, error) {
			return inj.resolve(ctx, bd.alias, bd.key)
		}
	case targetInstance:
		value := bd.instance
		unscoped = func(context.Context) (any, error) {
			return value, nil
		}
	}
	if bd.scope == nil {
		return unscoped
	}
	return bd.scope.Scope(bd.key, unscoped)
}

func (inj *Injector) instantiateEager(ctx context.Context) error {
	for _, key := range inj.order {
		if !inj.entries[key].binding.eager {
			continue
		}
		if _, err := inj.Get(ctx, key); err != nil {
			return err
		}
		inj.logger.Info("eager singleton constructed", zap.Stringer("key", key))
	}
	return nil
}

// ID identifies this injector in logs and spans.
func (inj *Injector) ID() string { return inj.id }

// Keys returns the bound keys in registration order.
func (inj *Injector) Keys() []Key {
	out := make([]Key, len(inj.order))
	copy(out, inj.order)
	return out
}

// Has reports whether key is bound.
func (inj *Injector) Has(key Key) bool {
	if validQualifier(key.Qualifier) != nil {
		return false
	}
	_, ok := inj.entries[key]
	return ok
}

// Get resolves key.
func (inj *Injector) Get(ctx context.Context, key Key) (any, error) {
	return inj.resolve(ctx, key, Key{})
}

// Get resolves T with an optional qualifier.
func Get[T any](ctx context.Context, inj *Injector, qualifier ...any) (T, error) {
	var zero T
	v, err := inj.Get(ctx, KeyOf[T](qualifier...))
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T to %s", ErrNotAssignable, v, TypeOf[T]())
	}
	return out, nil
}

// MustGet is Get that panics on error.
func MustGet[T any](ctx context.Context, inj *Injector, qualifier ...any) T {
	v, err := Get[T](ctx, inj, qualifier...)
	if err != nil {
		panic(err)
	}
	return v
}

type pathKey struct{}

type resolutionPath struct {
	key    Key
	parent *resolutionPath
}

func (p *resolutionPath) contains(key Key) bool {
	for n := p; n != nil; n = n.parent {
		if n.key == key {
			return true
		}
	}
	return false
}

func (p *resolutionPath) keys() []Key {
	var out []Key
	for n := p; n != nil; n = n.parent {
		out = append([]Key{n.key}, out...)
	}
	return out
}

func (inj *Injector) resolve(ctx context.Context, key Key, requester Key) (any, error) {
	if err := validQualifier(key.Qualifier); err != nil {
		return nil, err
	}
	e, ok := inj.entries[key]
	if !ok {
		return nil, &UnresolvedError{Key: key, Requester: requester}
	}
	path, _ := ctx.Value(pathKey{}).(*resolutionPath)
	if path.contains(key) {
		return nil, &CircularDependencyError{Path: append(path.keys(), key)}
	}
	ctx = context.WithValue(ctx, pathKey{}, &resolutionPath{key: key, parent: path})

	ctx, span := inj.tracer.Start(ctx, "inject.resolve", trace.WithAttributes(
		attribute.String("inject.key", key.String()),
		attribute.String("inject.injector", inj.id),
	))
	defer span.End()

	v, err := e.provider(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return v, nil
}

func (inj *Injector) construct(ctx context.Context, bd *binding) (any, error) {
	fn := bd.ctorType
	args := make([]reflect.Value, fn.NumIn())
	for i := range args {
		arg, err := inj.argument(ctx, fn.In(i), bd.key)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	out := reflect.ValueOf(bd.ctor).Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, fmt.Errorf("construct %s: %w", bd.key, out[1].Interface().(error))
	}
	return out[0].Interface(), nil
}

func (inj *Injector) argument(ctx context.Context, param reflect.Type, requester Key) (reflect.Value, error) {
	if param == injectorType {
		return reflect.ValueOf(inj), nil
	}
	if dep, ok := DependencyOf(param); ok {
		key := dep.DependencyKey()
		v, err := inj.resolve(ctx, key, requester)
		if err != nil {
			return reflect.Value{}, err
		}
		if v != nil && !reflect.TypeOf(v).AssignableTo(key.Type) {
			return reflect.Value{}, fmt.Errorf("%w: %T to %s", ErrNotAssignable, v, key.Type)
		}
		return reflect.ValueOf(dep.With(v)), nil
	}
	v, err := inj.resolve(ctx, Key{Type: param}, requester)
	if err != nil {
		return reflect.Value{}, err
	}
	if v == nil {
		return reflect.Zero(param), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(param) {
		return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrNotAssignable, rv.Type(), param)
	}
	return rv, nil
}
