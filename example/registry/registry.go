// Package registry exposes the example Foo chain to manifests.
package registry

import (
	"github.com/bronystylecrazy/decorice/example"
	"github.com/bronystylecrazy/decorice/manifest"
)

// Register adds the Foo contract, its constructors and the "primary"
// qualifier to r.
func Register(r *manifest.Registry) *manifest.Registry {
	return manifest.Contract[example.Foo](r, "foo").
		Constructor("fooimpl", example.NewFooImpl).
		Constructor("d1", example.NewD1).
		Constructor("d2", example.NewD2).
		Constructor("d3", example.NewD3).
		Qualifier("primary", example.Primary{})
}
