package inject

import (
	"fmt"
	"reflect"
)

// Key identifies a binding. Qualifier must be comparable; nil means unqualified.
type Key struct {
	Type      reflect.Type
	Qualifier any
}

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// KeyOf returns the key for T with an optional qualifier.
func KeyOf[T any](qualifier ...any) Key {
	key := Key{Type: TypeOf[T]()}
	if len(qualifier) > 0 {
		key.Qualifier = qualifier[0]
	}
	return key
}

func (k Key) String() string {
	typ := "<nil>"
	if k.Type != nil {
		typ = k.Type.String()
	}
	if k.Qualifier == nil {
		return typ
	}
	return typ + " " + FormatQualifier(k.Qualifier)
}

// Name is a string qualifier.
type Name string

// Named returns a string qualifier.
func Named(name string) Name {
	return Name(name)
}

func (n Name) String() string {
	return fmt.Sprintf("@Named(%q)", string(n))
}

// FormatQualifier renders a qualifier for diagnostics.
func FormatQualifier(q any) string {
	switch v := q.(type) {
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	}
	t := reflect.TypeOf(q)
	if t.Kind() == reflect.Struct && t.NumField() == 0 {
		return "@" + t.String()
	}
	return fmt.Sprintf("@%s(%v)", t, q)
}

func validQualifier(q any) error {
	if q == nil {
		return nil
	}
	if !reflect.TypeOf(q).Comparable() {
		return fmt.Errorf("%w: %T", ErrQualifierNotComparable, q)
	}
	return nil
}

// Dependency is implemented by constructor parameter types that ask for a
// qualified key. The injector resolves DependencyKey and passes With(value)
// to the constructor.
type Dependency interface {
	DependencyKey() Key
	With(value any) Dependency
}

var dependencyType = TypeOf[Dependency]()

// DependencyOf returns the zero Dependency for a parameter type, if it is one.
func DependencyOf(t reflect.Type) (Dependency, bool) {
	if t == nil || t.Kind() != reflect.Struct || !t.Implements(dependencyType) {
		return nil, false
	}
	dep, ok := reflect.Zero(t).Interface().(Dependency)
	return dep, ok
}

// Qualified asks for T bound under the zero value of Q, e.g.
// Qualified[Foo, Primary] for a binding QualifiedBy(Primary{}).
type Qualified[T any, Q comparable] struct {
	Value T
}

func (Qualified[T, Q]) DependencyKey() Key {
	var q Q
	return Key{Type: TypeOf[T](), Qualifier: q}
}

func (d Qualified[T, Q]) With(value any) Dependency {
	d.Value, _ = value.(T)
	return d
}
