// Package dup declares a decorator whose type name clashes with
// right/dup.D.
package dup

import (
	"github.com/bronystylecrazy/decorice/decor"
	"github.com/bronystylecrazy/decorice/example"
)

type D struct {
	next example.Foo
}

func New(next decor.Decorated[example.Foo, *D]) *D {
	return &D{next: next.Value}
}

func (d *D) Bar() string { return "left:" + d.next.Bar() }
