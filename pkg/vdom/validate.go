package vdom

import (
	tnerrors "github.com/vango-dev/tablenode/internal/errors"
)

var (
	// ErrDuplicateKey is returned when two siblings share a key.
	ErrDuplicateKey = tnerrors.New("E101")

	// ErrNilChild is returned when a node holds a nil child.
	ErrNilChild = tnerrors.New("E102")
)

// Validate checks that every sibling list has unique keys and no nil entries.
func Validate(root *Node) error {
	if root == nil {
		return nil
	}
	return validate(root, RootPath(root))
}

func validate(n *Node, path string) error {
	seen := make(map[string]struct{}, len(n.Children))
	for i, c := range n.Children {
		if c == nil {
			return ErrNilChild.WithOp("vdom.Validate").WithDetailf("child %d of %s is nil", i, path)
		}
		if c.Key == "" {
			continue
		}
		if _, dup := seen[c.Key]; dup {
			return ErrDuplicateKey.WithOp("vdom.Validate").WithDetailf("key %q appears twice under %s", c.Key, path)
		}
		seen[c.Key] = struct{}{}
	}
	segs := Segments(n.Children)
	for i, c := range n.Children {
		if err := validate(c, JoinPath(path, segs[i])); err != nil {
			return err
		}
	}
	return nil
}
