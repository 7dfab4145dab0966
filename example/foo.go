// Package example is the Foo chain used by the CLI and the end-to-end tests.
package example

import (
	"github.com/bronystylecrazy/decorice/decor"
)

type Foo interface {
	Bar() string
}

type FooImpl struct{}

func NewFooImpl() *FooImpl { return &FooImpl{} }

func (*FooImpl) Bar() string { return "FooImpl" }

// D1 prefixes the decorated result with "D1:".
type D1 struct {
	decorated Foo
}

func NewD1(next decor.Decorated[Foo, *D1]) *D1 {
	return &D1{decorated: next.Value}
}

func (d *D1) Bar() string { return "D1:" + d.decorated.Bar() }

// D2 prefixes the decorated result with "D2:".
type D2 struct {
	decorated Foo
}

func NewD2(next decor.Decorated[Foo, *D2]) *D2 {
	return &D2{decorated: next.Value}
}

func (d *D2) Bar() string { return "D2:" + d.decorated.Bar() }

// D3 prefixes the decorated result with "D3:".
type D3 struct {
	decorated Foo
}

func NewD3(next decor.Decorated[Foo, *D3]) *D3 {
	return &D3{decorated: next.Value}
}

func (d *D3) Bar() string { return "D3:" + d.decorated.Bar() }

// Primary qualifies an alternate Foo entry point.
type Primary struct{}
