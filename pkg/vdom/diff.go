package vdom

import (
	"reflect"
)

// Diff compares two node trees and returns the ops that transform the
// concrete tree realized for prev into one matching next.
//
// Either tree may be nil. Both trees are validated first; a duplicate
// sibling key in either one fails the diff with no ops.
func Diff(prev, next *Node) ([]PatchOp, error) {
	if err := Validate(prev); err != nil {
		return nil, err
	}
	if err := Validate(next); err != nil {
		return nil, err
	}

	var ops []PatchOp
	diffRoot(prev, next, &ops)
	return ops, nil
}

func diffRoot(prev, next *Node, ops *[]PatchOp) {
	switch {
	case prev == nil && next == nil:
		return
	case prev == nil:
		insertSubtree(next, "", RootPath(next), 0, ops)
	case next == nil:
		*ops = append(*ops, PatchOp{Op: OpRemove, Path: RootPath(prev), Key: prev.Key})
	case sameIdentity(prev, next):
		diffNode(RootPath(next), prev, next, ops)
	default:
		// No in-place type change: replace the whole tree.
		*ops = append(*ops, PatchOp{Op: OpRemove, Path: RootPath(prev), Key: prev.Key})
		insertSubtree(next, "", RootPath(next), 0, ops)
	}
}

// sameIdentity reports whether two root nodes can be reconciled in place.
func sameIdentity(prev, next *Node) bool {
	return prev.Type == next.Type && prev.Key == next.Key
}

// insertSubtree emits an Insert for n followed by its descendants in pre-order.
func insertSubtree(n *Node, parentPath, path string, index int, ops *[]PatchOp) {
	*ops = append(*ops, PatchOp{
		Op:         OpInsert,
		Path:       path,
		ParentPath: parentPath,
		Key:        n.Key,
		Index:      index,
		Node:       n,
	})
	segs := Segments(n.Children)
	for i, c := range n.Children {
		insertSubtree(c, path, JoinPath(path, segs[i]), i, ops)
	}
}

// diffNode compares two nodes with the same identity.
func diffNode(path string, prev, next *Node, ops *[]PatchOp) {
	if !propsEqual(prev.Props, next.Props) {
		*ops = append(*ops, PatchOp{
			Op:   OpUpdate,
			Path: path,
			Key:  next.Key,
			Node: next,
		})
	}
	diffChildren(path, prev.Children, next.Children, ops)
}

// diffChildren reconciles two sibling lists.
//
// Ops are emitted in four phases: removals, moves, insertions, then the
// recursive diff of every retained child. Moves are chosen by walking the
// retained children in their new order while tracking the largest old index
// seen; a child whose old index falls below it has been overtaken and moves.
// Emitting moves from the last retained position to the first means each
// move's Index is exact at the moment it is applied.
func diffChildren(parentPath string, prev, next []*Node, ops *[]PatchOp) {
	if len(prev) == 0 && len(next) == 0 {
		return
	}

	prevSegs := Segments(prev)
	nextSegs := Segments(next)

	prevIndex := make(map[string]int, len(prev))
	for i, seg := range prevSegs {
		prevIndex[seg] = i
	}

	// matched[j] is the old index of next[j], or -1 when next[j] is new.
	matched := make([]int, len(next))
	retainedPrev := make([]bool, len(prev))
	for j, c := range next {
		matched[j] = -1
		if i, ok := prevIndex[nextSegs[j]]; ok && prev[i].Type == c.Type {
			matched[j] = i
			retainedPrev[i] = true
		}
	}

	for i, c := range prev {
		if !retainedPrev[i] {
			*ops = append(*ops, PatchOp{
				Op:         OpRemove,
				Path:       JoinPath(parentPath, prevSegs[i]),
				ParentPath: parentPath,
				Key:        c.Key,
				Index:      i,
			})
		}
	}

	retained := make([]int, 0, len(next))
	for j := range next {
		if matched[j] >= 0 {
			retained = append(retained, j)
		}
	}
	moved := make([]bool, len(retained))
	lastPlaced := -1
	for r, j := range retained {
		if matched[j] < lastPlaced {
			moved[r] = true
		} else {
			lastPlaced = matched[j]
		}
	}
	for r := len(retained) - 1; r >= 0; r-- {
		if !moved[r] {
			continue
		}
		j := retained[r]
		*ops = append(*ops, PatchOp{
			Op:         OpMove,
			Path:       JoinPath(parentPath, nextSegs[j]),
			ParentPath: parentPath,
			Key:        next[j].Key,
			Index:      r,
		})
	}

	for j, c := range next {
		if matched[j] < 0 {
			insertSubtree(c, parentPath, JoinPath(parentPath, nextSegs[j]), j, ops)
		}
	}

	for j, c := range next {
		if i := matched[j]; i >= 0 {
			diffNode(JoinPath(parentPath, nextSegs[j]), prev[i], c, ops)
		}
	}
}

// propsEqual compares two props snapshots for equality.
func propsEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	}
	// Fallback to reflect for structs and composites
	return reflect.DeepEqual(a, b)
}
