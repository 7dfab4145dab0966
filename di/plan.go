package di

import (
	"fmt"
	"reflect"
	"strings"
)

// Plan builds the app graph and returns a readable plan.
func Plan(nodes ...any) (string, error) {
	return App(nodes...).Plan()
}

// Plan returns a tree of the app's nodes. Chains are expanded into their
// compiled bindings; the first error found is returned with the tree.
func (a *appNode) Plan() (string, error) {
	var (
		b        strings.Builder
		firstErr error
	)
	for i, n := range a.nodes {
		writePlanNode(&b, n, "", i == len(a.nodes)-1, &firstErr)
	}
	return b.String(), firstErr
}

func writePlanNode(b *strings.Builder, n Node, prefix string, isLast bool, firstErr *error) {
	branch := "|-- "
	nextPrefix := prefix + "|   "
	if isLast {
		branch = "`-- "
		nextPrefix = prefix + "    "
	}

	label, children, err := planNodeLabel(n)
	if err != nil && *firstErr == nil {
		*firstErr = err
	}
	fmt.Fprintf(b, "%s%s%s\n", prefix, branch, label)
	for i, child := range children {
		writePlanNode(b, child, nextPrefix, i == len(children)-1, firstErr)
	}
}

func planNodeLabel(n Node) (string, []Node, error) {
	switch v := n.(type) {
	case moduleNode:
		return fmt.Sprintf("Module %q", v.name), v.nodes, nil
	case optionsNode:
		return "Options", v.nodes, nil
	case provideNode:
		return "Provide " + v.describe(), nil, nil
	case supplyNode:
		return "Supply " + v.describe(), nil, nil
	case invokeNode:
		return "Invoke " + describeFunc(v.function), nil, nil
	case populateNode:
		targets := make([]string, len(v.targets))
		for i, t := range v.targets {
			targets[i] = reflect.TypeOf(t).String()
		}
		return "Populate " + strings.Join(targets, ", "), nil, nil
	case chainNode:
		bindings, err := v.bindings()
		if err != nil {
			return fmt.Sprintf("Chain <error: %v>", err), nil, err
		}
		children := make([]Node, len(bindings))
		for i, b := range bindings {
			children[i] = b
		}
		return "Chain " + bindings[0].binding.Key.String(), children, nil
	case bindingNode:
		label := v.binding.String()
		if v.private {
			label += " (private)"
		}
		return label, nil, nil
	case diagnosticsNode:
		return "Diagnostics", nil, nil
	case fxOptionNode:
		return "FxOption", nil, nil
	case errorNode:
		return fmt.Sprintf("Error %v", v.err), nil, v.err
	default:
		return fmt.Sprintf("%T", n), nil, nil
	}
}

func describeFunc(fn any) string {
	if fn == nil {
		return "<nil>"
	}
	return reflect.TypeOf(fn).String()
}
