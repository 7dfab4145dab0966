// Package decor declares decorator chains and compiles them into plain
// bindings for the inject container.
//
// A chain binds a contract to an ordered stack of decorators around a
// terminal implementation:
//
//	decor.Declare[Store]().
//		BoundTo(NewDiskStore).
//		DecoratedBy(NewMetrics, NewCache).
//		AsEagerSingleton()
//
// compiles to three bindings:
//
//	Store                               -> *Metrics [eager singleton]
//	Store @DecoratedBy(*Metrics)        -> *Cache
//	Store @DecoratedBy(*Cache)          -> *DiskStore
//
// Each decorator receives the layer below through a Decorated parameter
// naming its own type:
//
//	func NewCache(next decor.Decorated[Store, *Cache]) *Cache
//
// The decorators may also come first (DecoratedBy(...).BoundTo(...)) or be
// folded into To(NewMetrics, NewCache, NewDiskStore). All forms build the
// same Request.
package decor
