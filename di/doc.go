// Package di provides a small declarative layer on top of Fx for building apps.
//
// Apps are modelled as nodes (Provide, Supply, Invoke, Populate, Module,
// Chain) that can be composed, planned and built into Fx options. Chain
// renders a decor chain as name-tagged providers, so
//
//	di.App(
//		di.Chain(decor.Declare[Foo]().To(NewD2, NewD1, NewFooImpl)),
//		di.Invoke(func(f Foo) { ... }),
//	)
//
// hands the fully decorated Foo to the invoke.
package di
