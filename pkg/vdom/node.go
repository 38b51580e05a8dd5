package vdom

import "github.com/vango-dev/tablenode/pkg/view"

// Node is the immutable description of one desired view.
type Node struct {
	Type     view.TypeID     // Concrete view type
	Key      string          // Reconciliation key (unique among siblings)
	Props    any             // Snapshot of the inputs Config reads; compared by Diff
	Config   view.ConfigFunc // Configuration closure
	Children []*Node         // Child nodes
}

// Key is a builder argument that sets a node's key.
type Key string

// Config is a builder argument that sets a node's configuration closure.
type Config view.ConfigFunc

type propsArg struct{ value any }

// Props is a builder argument that sets a node's props snapshot.
// Nodes whose props differ between renders receive an Update op.
func Props(value any) any {
	return propsArg{value: value}
}

// New creates a node of the given type.
// Arguments can be: nil, Key, Config, view.ConfigFunc, Props(...), *Node, []*Node.
// Nil arguments and nil children are skipped, which allows conditional children.
func New(typ view.TypeID, args ...any) *Node {
	n := &Node{Type: typ}
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Key:
			n.Key = string(v)
		case Config:
			n.Config = view.ConfigFunc(v)
		case view.ConfigFunc:
			n.Config = v
		case func(view.View, view.Size):
			n.Config = v
		case propsArg:
			n.Props = v.value
		case *Node:
			if v != nil {
				n.Children = append(n.Children, v)
			}
		case []*Node:
			for _, c := range v {
				if c != nil {
					n.Children = append(n.Children, c)
				}
			}
		}
	}
	return n
}

// Box creates a container node.
func Box(args ...any) *Node { return New(view.TypeBox, args...) }

// Table creates a table node.
func Table(args ...any) *Node { return New(view.TypeTable, args...) }

// Button creates a button node.
func Button(args ...any) *Node { return New(view.TypeButton, args...) }

// Label creates a label node.
func Label(args ...any) *Node { return New(view.TypeLabel, args...) }

// Card creates a card node.
func Card(args ...any) *Node { return New(view.TypeCard, args...) }

// Add returns a copy of n with children appended. n is not modified.
func (n *Node) Add(children ...*Node) *Node {
	c := *n
	c.Children = make([]*Node, 0, len(n.Children)+len(children))
	c.Children = append(c.Children, n.Children...)
	for _, child := range children {
		if child != nil {
			c.Children = append(c.Children, child)
		}
	}
	return &c
}

// WithProps returns a copy of n with its props snapshot replaced.
func (n *Node) WithProps(props any) *Node {
	c := *n
	c.Props = props
	return &c
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}
