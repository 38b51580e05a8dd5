package render

import "github.com/vango-dev/tablenode/pkg/view"

// Layout sizes every mounted view within bounds and runs its configuration
// closure. Closures run on every pass, whether or not the node changed.
//
// The first walk configures views top-down; the second assigns frames, so
// sizes that depend on configured children are settled.
func (a *Applier) Layout(tree *Tree, bounds view.Size) {
	root := tree.Root()
	if root == nil {
		return
	}
	a.configure(tree, root, bounds)
	a.place(tree, root, bounds)
}

// configure clears the layout props before measuring, so the closure sees a
// size proposed by the current bounds rather than what it wrote last pass.
func (a *Applier) configure(tree *Tree, m *Mounted, available view.Size) {
	view.BaseOf(m.View).Layout = view.Layout{}
	size := m.View.Measure(available)
	m.View.Configure(m.Node.Config, size)
	inner := m.View.ContentSize(m.View.Measure(available))
	for _, p := range m.Children {
		if c, ok := tree.mounts[p]; ok {
			a.configure(tree, c, inner)
		}
	}
}

func (a *Applier) place(tree *Tree, m *Mounted, available view.Size) {
	size := m.View.Measure(available)
	view.BaseOf(m.View).Frame = size
	inner := m.View.ContentSize(size)
	for _, p := range m.Children {
		if c, ok := tree.mounts[p]; ok {
			a.place(tree, c, inner)
		}
	}
}
