package render

import "github.com/vango-dev/tablenode/pkg/view"

// Snapshot is a serializable picture of a mounted subtree.
type Snapshot struct {
	Path     string      `json:"path"`
	Type     view.TypeID `json:"type"`
	Key      string      `json:"key,omitempty"`
	Frame    view.Size   `json:"frame"`
	Hidden   bool        `json:"hidden,omitempty"`
	Alpha    float64     `json:"alpha"`
	Children []Snapshot  `json:"children,omitempty"`
}

// Snapshot returns the logical tree, or nil when nothing is mounted.
func (t *Tree) Snapshot() *Snapshot {
	root := t.Root()
	if root == nil {
		return nil
	}
	s := t.snapshot(root)
	return &s
}

func (t *Tree) snapshot(m *Mounted) Snapshot {
	b := view.BaseOf(m.View)
	s := Snapshot{
		Path:   m.Path,
		Type:   m.View.Type(),
		Key:    m.Node.Key,
		Frame:  b.Frame,
		Hidden: b.Hidden,
		Alpha:  b.Alpha,
	}
	for _, p := range m.Children {
		if c, ok := t.mounts[p]; ok {
			s.Children = append(s.Children, t.snapshot(c))
		}
	}
	return s
}

// Count returns the number of nodes in the snapshot.
func (s *Snapshot) Count() int {
	if s == nil {
		return 0
	}
	n := 1
	for i := range s.Children {
		n += s.Children[i].Count()
	}
	return n
}
