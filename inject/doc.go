// Package inject is a small constructor-injection container.
//
// Configuration happens through a Binder in staged calls:
//
//	inject.Bind[Foo](b).QualifiedBy(inject.Named("primary")).To(NewFooImpl).In(inject.SingletonScope)
//
// Bindings are keyed by (type, qualifier). Constructors declare their
// dependencies as parameters; a parameter whose type implements Dependency
// asks for a qualified key instead of its own type.
//
// Scopes:
//   - unscoped (default): a fresh instance per resolution
//   - In(name): a scope registered with Binder.BindScope (SingletonScope is built in)
//   - InScope(scope): a Scope instance, e.g. Singleton or a *SimpleScope
//   - AsEagerSingleton(): a singleton constructed by New
package inject
