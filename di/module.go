package di

import (
	"fmt"

	"go.uber.org/fx"
)

// Module declares a named module of nodes.
func Module(name string, nodes ...any) Node {
	return moduleNode{name: name, nodes: collectNodes(nodes)}
}

// Options groups nodes without a name.
func Options(nodes ...any) Node {
	return optionsNode{nodes: collectNodes(nodes)}
}

type moduleNode struct {
	name  string
	nodes []Node
}

func (n moduleNode) Build() (fx.Option, error) {
	if n.name == "" {
		return nil, fmt.Errorf(errModuleNameEmpty)
	}
	opts, err := buildNodes(n.nodes)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", n.name, err)
	}
	return fx.Module(n.name, opts...), nil
}

type optionsNode struct {
	nodes []Node
}

func (n optionsNode) Build() (fx.Option, error) {
	opts, err := buildNodes(n.nodes)
	if err != nil {
		return nil, err
	}
	return packOptions(opts), nil
}

func buildNodes(nodes []Node) ([]fx.Option, error) {
	opts := make([]fx.Option, 0, len(nodes))
	for _, node := range nodes {
		opt, err := node.Build()
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return opts, nil
}
