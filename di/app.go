package di

import (
	"fmt"

	"go.uber.org/fx"

	"github.com/bronystylecrazy/decorice/decor"
)

// Node is a declarative DI node that can be built into fx.Options.
type Node interface {
	Build() (fx.Option, error)
}

type appNode struct {
	nodes []Node
}

// App collects declarative nodes and builds them into an fx.Option.
func App(nodes ...any) *appNode {
	return &appNode{nodes: collectNodes(nodes)}
}

func (a *appNode) Build() fx.Option {
	// Extract diagnostics options so they can be appended on error paths.
	diagOpts, nodes := extractDiagnostics(a.nodes)
	var opts []fx.Option
	if len(diagOpts) > 0 {
		// Match fx.App defaults when diagnostics is enabled.
		opts = append(opts, fx.RecoverFromPanics())
	}
	for _, n := range nodes {
		opt, err := n.Build()
		if err != nil {
			return fx.Options(append(append(opts, diagOpts...), fx.Error(err))...)
		}
		opts = append(opts, opt)
	}
	// Append diagnostics options last so they win logger selection.
	opts = append(opts, diagOpts...)
	return packOptions(opts)
}

func extractDiagnostics(nodes []Node) ([]fx.Option, []Node) {
	var diagOpts []fx.Option
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := n.(diagnosticsNode); ok {
			opt, err := n.Build()
			if err != nil {
				diagOpts = append(diagOpts, fx.Error(err))
			} else {
				diagOpts = append(diagOpts, opt)
			}
			continue
		}
		out = append(out, n)
	}
	return diagOpts, out
}

func collectNodes(items []any) []Node {
	var out []Node
	for _, it := range items {
		switch v := it.(type) {
		case nil:
			continue
		case []Node:
			out = append(out, v...)
		case []any:
			out = append(out, collectNodes(v)...)
		case Node:
			out = append(out, v)
		case decor.Chain:
			out = append(out, Chain(v))
		case fx.Option:
			// Accept raw fx.Options inside di.App.
			out = append(out, fxOptionNode{opt: v})
		default:
			out = append(out, errorNode{err: fmt.Errorf(errUnsupportedNodeType, it)})
		}
	}
	return out
}

type fxOptionNode struct {
	opt fx.Option
}

func (n fxOptionNode) Build() (fx.Option, error) { return n.opt, nil }

type errorNode struct {
	err error
}

func (n errorNode) Build() (fx.Option, error) { return nil, n.err }
