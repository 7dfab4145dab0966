package decor

import (
	"fmt"

	"github.com/bronystylecrazy/decorice/inject"
	"go.uber.org/multierr"
)

// Target is what a compiled binding resolves to.
type Target struct {
	Impl     *Impl
	Existing *inject.Key
}

func (t Target) String() string {
	if t.Existing != nil {
		return "alias " + t.Existing.String()
	}
	if t.Impl != nil {
		return t.Impl.String()
	}
	return "<unset>"
}

// Binding is one (key -> target) entry for the container.
type Binding struct {
	Key    inject.Key
	Target Target
	Scope  ScopeDescriptor
}

func (b Binding) String() string {
	s := b.Key.String() + " -> " + b.Target.String()
	if b.Scope.Kind != ScopeNone {
		s += " [" + b.Scope.String() + "]"
	}
	return s
}

// Apply adds the binding to binder.
func (b Binding) Apply(binder *inject.Binder) {
	annotated := binder.Bind(b.Key.Type)
	linked := &annotated.LinkedBindingBuilder
	if b.Key.Qualifier != nil {
		linked = annotated.QualifiedBy(b.Key.Qualifier)
	}
	var scoped *inject.ScopedBindingBuilder
	switch {
	case b.Target.Existing != nil:
		scoped = linked.ToKey(*b.Target.Existing)
	case b.Target.Impl != nil:
		scoped = linked.To(b.Target.Impl.Constructor)
	default:
		// The binder records ErrInvalidConstructor for a missing target.
		scoped = linked.To(nil)
	}
	b.Scope.apply(scoped)
}

// Compile expands req into len(req.Chain)+1 bindings, outermost first.
// Only the first binding carries req.Scope.
func Compile(req Request) ([]Binding, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("compile %s: %w", req.Key(), err)
	}

	n := len(req.Chain)
	out := make([]Binding, 0, n+1)
	layer := func(i int) *Impl {
		impl := req.Chain[i]
		return &impl
	}

	out = append(out, Binding{
		Key:    req.Key(),
		Target: Target{Impl: layer(0)},
		Scope:  req.Scope,
	})
	for i := 0; i < n-1; i++ {
		out = append(out, Binding{
			Key:    inject.Key{Type: req.Contract, Qualifier: By(req.Chain[i].Type)},
			Target: Target{Impl: layer(i + 1)},
		})
	}

	terminal := Binding{Key: inject.Key{Type: req.Contract, Qualifier: By(req.Chain[n-1].Type)}}
	if req.Terminal.Existing != nil {
		key := *req.Terminal.Existing
		terminal.Target.Existing = &key
	} else {
		impl := *req.Terminal.Fresh
		terminal.Target.Impl = &impl
	}
	return append(out, terminal), nil
}

// CompileAll compiles every chain. Errors from all chains are combined and
// no bindings are returned if any chain fails.
func CompileAll(chains ...Chain) ([]Binding, error) {
	var (
		out []Binding
		err error
	)
	for i, c := range chains {
		if c == nil {
			err = multierr.Append(err, fmt.Errorf("chain %d: %w", i, ErrNilChain))
			continue
		}
		req, rerr := c.Request()
		if rerr != nil {
			err = multierr.Append(err, rerr)
			continue
		}
		bindings, cerr := Compile(req)
		if cerr != nil {
			err = multierr.Append(err, cerr)
			continue
		}
		out = append(out, bindings...)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Install returns a module contributing the bindings of chains. All chains
// are compiled before any binding is added.
func Install(chains ...Chain) inject.Module {
	return inject.ModuleFunc(func(b *inject.Binder) error {
		bindings, err := CompileAll(chains...)
		if err != nil {
			return err
		}
		for _, bd := range bindings {
			bd.Apply(b)
		}
		return nil
	})
}
