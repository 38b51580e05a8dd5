package vdom

import "fmt"

// Op is the type of patch operation.
type Op uint8

const (
	OpInsert Op = iota + 1 // Acquire and attach a new view
	OpRemove               // Detach and release a subtree
	OpMove                 // Reposition an existing view among its siblings
	OpUpdate               // Rebind a view to a node with new props
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	case OpMove:
		return "Move"
	case OpUpdate:
		return "Update"
	default:
		return "Unknown"
	}
}

// PatchOp is a single reconciliation step.
type PatchOp struct {
	Op         Op     // Operation type
	Path       string // Target node's path
	ParentPath string // Parent's path ("" for the root)
	Key        string // Target node's key, if any
	Index      int    // Insert: final sibling index. Move: index among retained siblings. Remove: old index
	Node       *Node  // For Insert/Update
}

// String returns a compact, human-readable form of the op.
func (p PatchOp) String() string {
	switch p.Op {
	case OpInsert:
		return fmt.Sprintf("Insert %s @%d (%s)", p.Path, p.Index, p.Node.Type)
	case OpMove:
		return fmt.Sprintf("Move %s @%d", p.Path, p.Index)
	default:
		return fmt.Sprintf("%s %s", p.Op, p.Path)
	}
}

// CountOps returns how many ops of each kind a patch list contains.
func CountOps(ops []PatchOp) map[Op]int {
	counts := make(map[Op]int, 4)
	for _, op := range ops {
		counts[op.Op]++
	}
	return counts
}
