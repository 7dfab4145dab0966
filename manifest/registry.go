// Package manifest builds decorator chains from config by name.
package manifest

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"go.uber.org/multierr"

	"github.com/bronystylecrazy/decorice/config"
	"github.com/bronystylecrazy/decorice/decor"
	"github.com/bronystylecrazy/decorice/inject"
)

var (
	ErrUnknownContract    = errors.New("manifest: unknown contract")
	ErrUnknownConstructor = errors.New("manifest: unknown constructor")
	ErrAlreadyRegistered  = errors.New("manifest: name already registered")
)

// Registry maps manifest names to contracts, constructors, qualifiers and
// scopes.
type Registry struct {
	contracts    map[string]reflect.Type
	constructors map[string]any
	qualifiers   map[string]any
	scopes       map[string]inject.Scope
	err          error
}

func NewRegistry() *Registry {
	return &Registry{
		contracts:    map[string]reflect.Type{},
		constructors: map[string]any{},
		qualifiers:   map[string]any{},
		scopes:       map[string]inject.Scope{},
	}
}

func register[V any](r *Registry, kind string, m map[string]V, name string, v V) *Registry {
	if name == "" {
		r.err = multierr.Append(r.err, fmt.Errorf("manifest: empty %s name", kind))
		return r
	}
	if _, ok := m[name]; ok {
		r.err = multierr.Append(r.err, fmt.Errorf("%w: %s %q", ErrAlreadyRegistered, kind, name))
		return r
	}
	m[name] = v
	return r
}

// Contract registers T under name.
func Contract[T any](r *Registry, name string) *Registry {
	return register(r, "contract", r.contracts, name, inject.TypeOf[T]())
}

// Constructor registers an implementation or decorator constructor.
func (r *Registry) Constructor(name string, ctor any) *Registry {
	if _, err := inject.ConstructorType(ctor); err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("manifest: constructor %q: %w", name, err))
		return r
	}
	return register(r, "constructor", r.constructors, name, ctor)
}

// Qualifier registers a qualifier value. Unregistered qualifier names in a
// manifest are used as inject.Named.
func (r *Registry) Qualifier(name string, q any) *Registry {
	if q == nil || !reflect.TypeOf(q).Comparable() {
		r.err = multierr.Append(r.err, fmt.Errorf("manifest: qualifier %q: %w", name, inject.ErrQualifierNotComparable))
		return r
	}
	return register(r, "qualifier", r.qualifiers, name, q)
}

// Scope registers a scope bound by Module under name.
func (r *Registry) Scope(name string, scope inject.Scope) *Registry {
	if scope == nil {
		r.err = multierr.Append(r.err, fmt.Errorf("manifest: scope %q: %w", name, inject.ErrNilScope))
		return r
	}
	return register(r, "scope", r.scopes, name, scope)
}

// Err returns registration errors.
func (r *Registry) Err() error {
	return r.err
}

// Names returns the registered constructor names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) qualifier(name string) any {
	if name == "" {
		return nil
	}
	if q, ok := r.qualifiers[name]; ok {
		return q
	}
	return inject.Named(name)
}

func (r *Registry) constructor(name string) (any, error) {
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConstructor, name)
	}
	return ctor, nil
}

func (r *Registry) contract(name string) (reflect.Type, error) {
	t, ok := r.contracts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContract, name)
	}
	return t, nil
}

// Key returns the binding key for a registered contract and an optional
// qualifier name.
func (r *Registry) Key(contract, qualifier string) (inject.Key, error) {
	t, err := r.contract(contract)
	if err != nil {
		return inject.Key{}, err
	}
	return inject.Key{Type: t, Qualifier: r.qualifier(qualifier)}, nil
}

// Chain declares the chain described by spec.
func (r *Registry) Chain(spec config.ChainSpec) (decor.Chain, error) {
	contract, err := r.contract(spec.Contract)
	if err != nil {
		return nil, err
	}
	items := make([]any, 0, len(spec.Decorators)+1)
	for _, name := range spec.Decorators {
		ctor, err := r.constructor(name)
		if err != nil {
			return nil, err
		}
		items = append(items, ctor)
	}
	if spec.Existing != nil {
		key := inject.Key{Type: contract, Qualifier: r.qualifier(spec.Existing.Qualifier)}
		if spec.Existing.Contract != "" {
			if key.Type, err = r.contract(spec.Existing.Contract); err != nil {
				return nil, err
			}
		}
		items = append(items, key)
	} else {
		ctor, err := r.constructor(spec.Implementation)
		if err != nil {
			return nil, err
		}
		items = append(items, ctor)
	}

	b := decor.DeclareType(contract)
	linked := &b.Linked
	if q := r.qualifier(spec.Qualifier); q != nil {
		linked = b.QualifiedBy(q)
	}
	scoped := linked.To(items...)

	var chain decor.Chain = scoped
	switch spec.Scope {
	case "":
	case config.ScopeEager:
		chain = scoped.AsEagerSingleton()
	default:
		chain = scoped.In(inject.ScopeName(spec.Scope))
	}
	if _, err := chain.Request(); err != nil {
		return nil, err
	}
	return chain, nil
}

// Chains declares every chain in specs. Errors from all specs are combined.
func (r *Registry) Chains(specs []config.ChainSpec) ([]decor.Chain, error) {
	if r.err != nil {
		return nil, r.err
	}
	var (
		out []decor.Chain
		err error
	)
	for i, spec := range specs {
		c, cerr := r.Chain(spec)
		if cerr != nil {
			err = multierr.Append(err, fmt.Errorf("chains[%d]: %w", i, cerr))
			continue
		}
		out = append(out, c)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Module binds the registered scopes and installs chains.
func (r *Registry) Module(chains ...decor.Chain) inject.Module {
	return inject.ModuleFunc(func(b *inject.Binder) error {
		names := make([]string, 0, len(r.scopes))
		for name := range r.scopes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.BindScope(inject.ScopeName(name), r.scopes[name])
		}
		return decor.Install(chains...).Configure(b)
	})
}
