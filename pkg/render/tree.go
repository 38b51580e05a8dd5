package render

import (
	"github.com/vango-dev/tablenode/pkg/vdom"
	"github.com/vango-dev/tablenode/pkg/view"
)

// Mounted is a node bound to its realized view.
type Mounted struct {
	Path       string
	ParentPath string
	Node       *vdom.Node
	View       view.View

	// Children are the paths of the logical children, in order.
	// Views of removed children may still linger in View.Subviews
	// while their exit animation runs.
	Children []string
}

// Tree holds the mounted views of one component.
type Tree struct {
	host   view.View
	root   string
	mounts map[string]*Mounted
}

// NewTree creates an empty tree whose root view will be attached to host.
func NewTree(host view.View) *Tree {
	return &Tree{
		host:   host,
		mounts: make(map[string]*Mounted),
	}
}

// Host returns the view the root is attached to.
func (t *Tree) Host() view.View {
	return t.host
}

// Root returns the root mount, or nil when the tree is empty.
func (t *Tree) Root() *Mounted {
	if t.root == "" {
		return nil
	}
	return t.mounts[t.root]
}

// Lookup returns the mount at path.
func (t *Tree) Lookup(path string) (*Mounted, bool) {
	m, ok := t.mounts[path]
	return m, ok
}

// View returns the view mounted at path, or nil.
func (t *Tree) View(path string) view.View {
	if m, ok := t.mounts[path]; ok {
		return m.View
	}
	return nil
}

// Len returns the number of mounted nodes.
func (t *Tree) Len() int {
	return len(t.mounts)
}

// Walk visits the logical tree in pre-order.
func (t *Tree) Walk(fn func(m *Mounted) bool) {
	if root := t.Root(); root != nil {
		t.walk(root, fn)
	}
}

func (t *Tree) walk(m *Mounted, fn func(*Mounted) bool) {
	if !fn(m) {
		return
	}
	for _, p := range m.Children {
		if c, ok := t.mounts[p]; ok {
			t.walk(c, fn)
		}
	}
}

// detachSubtree removes m and its descendants from the tree and returns
// their views, deepest first.
func (t *Tree) detachSubtree(m *Mounted) []view.View {
	var views []view.View
	var collect func(*Mounted)
	collect = func(m *Mounted) {
		for _, p := range m.Children {
			if c, ok := t.mounts[p]; ok {
				collect(c)
			}
		}
		delete(t.mounts, m.Path)
		views = append(views, m.View)
	}
	collect(m)
	if m.Path == t.root {
		t.root = ""
	}
	return views
}

// parentView returns the view children of parentPath attach to.
func (t *Tree) parentView(parentPath string) view.View {
	if parentPath == "" {
		return t.host
	}
	return t.mounts[parentPath].View
}

// viewIndex returns where the view of the logical child at position pos
// belongs among the parent's subviews: just before the next logical sibling
// that is attached, or at the end.
func (t *Tree) viewIndex(parent view.View, siblings []string, pos int) int {
	for _, p := range siblings[pos+1:] {
		c, ok := t.mounts[p]
		if !ok || c.View.Parent() != parent {
			continue
		}
		if i := view.IndexOf(parent, c.View); i >= 0 {
			return i
		}
	}
	return len(parent.Subviews())
}

func removePath(paths []string, path string) ([]string, int) {
	for i, p := range paths {
		if p == path {
			return append(paths[:i], paths[i+1:]...), i
		}
	}
	return paths, -1
}

func insertPath(paths []string, path string, index int) []string {
	paths = append(paths, "")
	copy(paths[index+1:], paths[index:])
	paths[index] = path
	return paths
}
