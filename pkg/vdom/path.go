package vdom

import "strconv"

// Segments returns the identity segment of each child:
// "k:<key>" for keyed children, "i:<n>" for the n-th keyless child.
func Segments(children []*Node) []string {
	segs := make([]string, len(children))
	keyless := 0
	for i, c := range children {
		if c != nil && c.Key != "" {
			segs[i] = "k:" + c.Key
			continue
		}
		segs[i] = "i:" + strconv.Itoa(keyless)
		keyless++
	}
	return segs
}

// RootPath returns the path of a tree's root node.
func RootPath(root *Node) string {
	return JoinPath("", Segments([]*Node{root})[0])
}

// JoinPath appends a segment to a parent path.
func JoinPath(parent, seg string) string {
	return parent + "/" + seg
}

// Walk visits every node of the tree in pre-order with its path, its parent's
// path, and its index among its siblings. Returning false skips the subtree.
func Walk(root *Node, fn func(path, parentPath string, index int, n *Node) bool) {
	if root == nil {
		return
	}
	walk(root, RootPath(root), "", 0, fn)
}

func walk(n *Node, path, parentPath string, index int, fn func(string, string, int, *Node) bool) {
	if !fn(path, parentPath, index, n) {
		return
	}
	segs := Segments(n.Children)
	for i, c := range n.Children {
		if c == nil {
			continue
		}
		walk(c, JoinPath(path, segs[i]), path, i, fn)
	}
}
