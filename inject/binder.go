package inject

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"
)

// Module contributes bindings to a Binder.
type Module interface {
	Configure(b *Binder) error
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(b *Binder) error

func (f ModuleFunc) Configure(b *Binder) error { return f(b) }

type targetKind int

const (
	targetUnset targetKind = iota
	targetConstructor
	targetKey
	targetInstance
)

type binding struct {
	key        Key
	kind       targetKind
	ctor       any
	ctorType   reflect.Type
	alias      Key
	instance   any
	scopeName  ScopeName
	scope      Scope
	scopeCalls int
	eager      bool
	failed     bool
}

func (b *binding) target() string {
	switch b.kind {
	case targetConstructor:
		return "constructor " + b.ctorType.Out(0).String()
	case targetKey:
		return "key " + b.alias.String()
	case targetInstance:
		return fmt.Sprintf("instance %T", b.instance)
	default:
		return "<unset>"
	}
}

func (b *binding) scopeLabel() string {
	switch {
	case b.eager:
		return "eager singleton"
	case b.scopeName != "":
		return "in " + string(b.scopeName)
	case b.scope != nil:
		return "in " + fmt.Sprint(b.scope)
	default:
		return "unscoped"
	}
}

// Binder collects bindings while modules are configured.
type Binder struct {
	bindings []*binding
	scopes   map[ScopeName]Scope
	err      error
}

func newBinder() *Binder {
	return &Binder{scopes: map[ScopeName]Scope{SingletonScope: Singleton}}
}

func (b *Binder) fail(bd *binding, err error) {
	if bd != nil {
		bd.failed = true
		err = fmt.Errorf("bind %s: %w", bd.key, err)
	}
	b.err = multierr.Append(b.err, err)
}

// Install configures a module into this binder.
func (b *Binder) Install(m Module) {
	if m == nil {
		return
	}
	if err := m.Configure(b); err != nil {
		b.fail(nil, err)
	}
}

// BindScope registers a scope under a name usable with In.
func (b *Binder) BindScope(name ScopeName, scope Scope) {
	switch {
	case scope == nil:
		b.fail(nil, fmt.Errorf("%w: %q", ErrNilScope, name))
	case name == "":
		b.fail(nil, fmt.Errorf("%w: empty scope name", ErrUnknownScope))
	default:
		if _, ok := b.scopes[name]; ok {
			b.fail(nil, fmt.Errorf("%w: %q", ErrScopeAlreadyBound, name))
			return
		}
		b.scopes[name] = scope
	}
}

// Bind starts a binding for the given type.
func (b *Binder) Bind(typ reflect.Type) *AnnotatedBindingBuilder {
	bd := &binding{key: Key{Type: typ}}
	b.bindings = append(b.bindings, bd)
	if typ == nil {
		b.fail(bd, ErrNilType)
	}
	return &AnnotatedBindingBuilder{LinkedBindingBuilder{binder: b, binding: bd}}
}

// Bind starts a binding for T.
func Bind[T any](b *Binder) *AnnotatedBindingBuilder {
	return b.Bind(TypeOf[T]())
}

// AnnotatedBindingBuilder may qualify the binding before linking it.
type AnnotatedBindingBuilder struct {
	LinkedBindingBuilder
}

// QualifiedBy sets the binding's qualifier.
func (a *AnnotatedBindingBuilder) QualifiedBy(q any) *LinkedBindingBuilder {
	bd := a.binding
	switch {
	case bd.key.Qualifier != nil:
		a.binder.fail(bd, ErrQualifierAlreadySet)
	case q == nil:
		a.binder.fail(bd, fmt.Errorf("%w: nil", ErrQualifierNotComparable))
	default:
		if err := validQualifier(q); err != nil {
			a.binder.fail(bd, err)
			break
		}
		bd.key.Qualifier = q
	}
	return &a.LinkedBindingBuilder
}

// LinkedBindingBuilder selects the binding target.
type LinkedBindingBuilder struct {
	binder  *Binder
	binding *binding
}

func (l *LinkedBindingBuilder) scoped() *ScopedBindingBuilder {
	return &ScopedBindingBuilder{binder: l.binder, binding: l.binding}
}

func (l *LinkedBindingBuilder) linked() bool {
	if l.binding.kind != targetUnset {
		l.binder.fail(l.binding, ErrAlreadyLinked)
		return true
	}
	return false
}

// To binds to a constructor. Its parameters are resolved at construction.
func (l *LinkedBindingBuilder) To(constructor any) *ScopedBindingBuilder {
	bd := l.binding
	if l.linked() {
		return l.scoped()
	}
	fn, err := ConstructorType(constructor)
	if err != nil {
		l.binder.fail(bd, err)
		return l.scoped()
	}
	if bd.key.Type != nil && !fn.Out(0).AssignableTo(bd.key.Type) {
		l.binder.fail(bd, fmt.Errorf("%w: %s to %s", ErrNotAssignable, fn.Out(0), bd.key.Type))
		return l.scoped()
	}
	bd.kind = targetConstructor
	bd.ctor = constructor
	bd.ctorType = fn
	return l.scoped()
}

// ToKey aliases the binding to another key bound elsewhere.
func (l *LinkedBindingBuilder) ToKey(target Key) *ScopedBindingBuilder {
	bd := l.binding
	if l.linked() {
		return l.scoped()
	}
	switch {
	case target.Type == nil:
		l.binder.fail(bd, ErrNilType)
	case bd.key.Type != nil && !target.Type.AssignableTo(bd.key.Type):
		l.binder.fail(bd, fmt.Errorf("%w: %s to %s", ErrNotAssignable, target.Type, bd.key.Type))
	default:
		if err := validQualifier(target.Qualifier); err != nil {
			l.binder.fail(bd, err)
			break
		}
		if target == bd.key {
			l.binder.fail(bd, ErrSelfAlias)
			break
		}
		bd.kind = targetKey
		bd.alias = target
	}
	return l.scoped()
}

// ToInstance binds to an existing value.
func (l *LinkedBindingBuilder) ToInstance(value any) {
	bd := l.binding
	if l.linked() {
		return
	}
	if value == nil {
		l.binder.fail(bd, ErrNilInstance)
		return
	}
	if bd.key.Type != nil && !reflect.TypeOf(value).AssignableTo(bd.key.Type) {
		l.binder.fail(bd, fmt.Errorf("%w: %T to %s", ErrNotAssignable, value, bd.key.Type))
		return
	}
	bd.kind = targetInstance
	bd.instance = value
}

// ScopedBindingBuilder sets the lifecycle of a linked binding.
type ScopedBindingBuilder struct {
	binder  *Binder
	binding *binding
}

func (s *ScopedBindingBuilder) setScope(apply func(*binding)) {
	bd := s.binding
	bd.scopeCalls++
	if bd.scopeCalls > 1 {
		s.binder.fail(bd, ErrScopeAlreadySet)
		return
	}
	apply(bd)
}

// In scopes the binding to a named scope.
func (s *ScopedBindingBuilder) In(name ScopeName) {
	s.setScope(func(bd *binding) { bd.scopeName = name })
}

// InScope scopes the binding to a scope instance.
func (s *ScopedBindingBuilder) InScope(scope Scope) {
	if scope == nil {
		s.binder.fail(s.binding, ErrNilScope)
		return
	}
	s.setScope(func(bd *binding) { bd.scope = scope })
}

// AsEagerSingleton makes the binding a singleton constructed by New.
func (s *ScopedBindingBuilder) AsEagerSingleton() {
	s.setScope(func(bd *binding) {
		bd.scope = Singleton
		bd.eager = true
	})
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ConstructorType validates a constructor: a non-variadic func returning T or
// (T, error). It returns the function type.
func ConstructorType(constructor any) (reflect.Type, error) {
	if constructor == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidConstructor)
	}
	fn := reflect.TypeOf(constructor)
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s is not a function", ErrInvalidConstructor, fn)
	}
	if fn.IsVariadic() {
		return nil, fmt.Errorf("%w: %s is variadic", ErrInvalidConstructor, fn)
	}
	switch fn.NumOut() {
	case 1:
	case 2:
		if fn.Out(1) != errorType {
			return nil, fmt.Errorf("%w: %s second result must be error", ErrInvalidConstructor, fn)
		}
	default:
		return nil, fmt.Errorf("%w: %s must return 1 value (and optional error)", ErrInvalidConstructor, fn)
	}
	return fn, nil
}
