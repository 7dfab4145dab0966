package decor

import (
	"fmt"
	"reflect"

	"github.com/bronystylecrazy/decorice/inject"
)

// Impl refers to an implementation by its constructor. Type is the
// constructor's first result.
type Impl struct {
	Type        reflect.Type
	Constructor any
}

// ImplOf validates constructor and returns its Impl.
func ImplOf(constructor any) (Impl, error) {
	fn, err := inject.ConstructorType(constructor)
	if err != nil {
		return Impl{}, err
	}
	return Impl{Type: fn.Out(0), Constructor: constructor}, nil
}

func (i Impl) String() string {
	if i.Type == nil {
		return "<nil>"
	}
	return i.Type.String()
}

func (i Impl) validate(contract reflect.Type) error {
	impl, err := ImplOf(i.Constructor)
	if err != nil {
		return err
	}
	if i.Type != impl.Type {
		return fmt.Errorf("%w: constructor returns %s, not %s", ErrInvalidConstructor, impl.Type, i.Type)
	}
	if !i.Type.AssignableTo(contract) {
		return fmt.Errorf("%w: %s to %s", ErrNotAssignable, i.Type, contract)
	}
	return nil
}

// Terminal is the innermost target of a chain: a fresh implementation or an
// alias to a key bound elsewhere. Exactly one field is set.
type Terminal struct {
	Fresh    *Impl
	Existing *inject.Key
}

func (t Terminal) String() string {
	switch {
	case t.Fresh != nil && t.Existing != nil:
		return "<conflicting>"
	case t.Fresh != nil:
		return t.Fresh.String()
	case t.Existing != nil:
		return "alias " + t.Existing.String()
	default:
		return "<unset>"
	}
}

// ScopeKind selects how the outermost binding of a chain is scoped.
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeNamed
	ScopeEager
	ScopeInstance
)

// ScopeDescriptor is attached to the entry-point binding only.
type ScopeDescriptor struct {
	Kind     ScopeKind
	Name     inject.ScopeName
	Instance inject.Scope
}

func (s ScopeDescriptor) String() string {
	switch s.Kind {
	case ScopeNamed:
		return "in " + string(s.Name)
	case ScopeEager:
		return "eager singleton"
	case ScopeInstance:
		return fmt.Sprint("in ", s.Instance)
	default:
		return "unscoped"
	}
}

func (s ScopeDescriptor) validate() error {
	switch s.Kind {
	case ScopeNone, ScopeEager:
	case ScopeNamed:
		if s.Name == "" {
			return fmt.Errorf("%w: empty scope name", inject.ErrUnknownScope)
		}
	case ScopeInstance:
		if s.Instance == nil {
			return ErrNilScope
		}
	default:
		return fmt.Errorf("decor: unknown scope kind %d", s.Kind)
	}
	return nil
}

func (s ScopeDescriptor) apply(sb *inject.ScopedBindingBuilder) {
	switch s.Kind {
	case ScopeNamed:
		sb.In(s.Name)
	case ScopeEager:
		sb.AsEagerSingleton()
	case ScopeInstance:
		sb.InScope(s.Instance)
	}
}

// Request describes one decorator chain. Chain[0] is bound at
// (Contract, Qualifier); Chain[i] wraps Chain[i+1], and the last element
// wraps Terminal.
type Request struct {
	Contract  reflect.Type
	Qualifier any
	Chain     []Impl
	Terminal  Terminal
	Scope     ScopeDescriptor
}

// Key is the entry point of the chain.
func (r Request) Key() inject.Key {
	return inject.Key{Type: r.Contract, Qualifier: r.Qualifier}
}

// Validate reports the first reason r cannot be compiled.
func (r Request) Validate() error {
	if r.Contract == nil {
		return ErrMissingContract
	}
	if r.Qualifier != nil {
		if !reflect.TypeOf(r.Qualifier).Comparable() {
			return fmt.Errorf("%w: %T is not comparable", ErrInvalidQualifier, r.Qualifier)
		}
		if _, ok := r.Qualifier.(DecoratedBy); ok {
			return fmt.Errorf("%w: %s is reserved for chain layers", ErrInvalidQualifier, r.Qualifier)
		}
	}
	if len(r.Chain) == 0 {
		return ErrEmptyChain
	}
	seen := make(map[reflect.Type]int, len(r.Chain))
	for i, impl := range r.Chain {
		if err := impl.validate(r.Contract); err != nil {
			return fmt.Errorf("decorator %d: %w", i, err)
		}
		if j, ok := seen[impl.Type]; ok {
			return fmt.Errorf("%w: %s at positions %d and %d", ErrDuplicateDecorator, impl.Type, j, i)
		}
		seen[impl.Type] = i
	}
	switch t := r.Terminal; {
	case t.Fresh == nil && t.Existing == nil:
		return ErrMissingTerminal
	case t.Fresh != nil && t.Existing != nil:
		return ErrConflictingTerminal
	case t.Fresh != nil:
		if err := t.Fresh.validate(r.Contract); err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
	default:
		if t.Existing.Type == nil {
			return fmt.Errorf("terminal: %w", inject.ErrNilType)
		}
		if !t.Existing.Type.AssignableTo(r.Contract) {
			return fmt.Errorf("terminal: %w: %s to %s", ErrNotAssignable, t.Existing.Type, r.Contract)
		}
		if q := t.Existing.Qualifier; q != nil && !reflect.TypeOf(q).Comparable() {
			return fmt.Errorf("terminal: %w: %T is not comparable", ErrInvalidQualifier, q)
		}
	}
	return r.Scope.validate()
}

func (r Request) clone() Request {
	out := r
	out.Chain = append([]Impl(nil), r.Chain...)
	if r.Terminal.Fresh != nil {
		fresh := *r.Terminal.Fresh
		out.Terminal.Fresh = &fresh
	}
	if r.Terminal.Existing != nil {
		existing := *r.Terminal.Existing
		out.Terminal.Existing = &existing
	}
	return out
}
