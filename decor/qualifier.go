package decor

import (
	"reflect"

	"github.com/bronystylecrazy/decorice/inject"
)

// DecoratedBy qualifies the binding that a decorator wraps. Two values are
// equal exactly when they wrap the same type, so it can be used as an
// inject.Key qualifier and as a map key.
type DecoratedBy struct {
	subject reflect.Type
}

// By returns the qualifier for the layer decorated by subject.
func By(subject reflect.Type) DecoratedBy {
	return DecoratedBy{subject: subject}
}

// ByType is By for a static type.
func ByType[T any]() DecoratedBy {
	return By(inject.TypeOf[T]())
}

// Subject returns the wrapped decorator type.
func (q DecoratedBy) Subject() reflect.Type {
	return q.subject
}

func (q DecoratedBy) String() string {
	if q.subject == nil {
		return "@DecoratedBy(<nil>)"
	}
	return "@DecoratedBy(" + q.subject.String() + ")"
}

// Decorated is the constructor parameter a decorator uses to receive the
// layer it wraps. Self is the decorator's own type, the first result of its
// constructor:
//
//	func NewAudit(next decor.Decorated[Store, *Audit]) *Audit
//
// resolves Store at (Store, ByType[*Audit]()).
type Decorated[T any, Self any] struct {
	Value T
}

func (Decorated[T, Self]) DependencyKey() inject.Key {
	return inject.Key{Type: inject.TypeOf[T](), Qualifier: ByType[Self]()}
}

func (d Decorated[T, Self]) With(value any) inject.Dependency {
	d.Value, _ = value.(T)
	return d
}
