// Package render realizes node trees as concrete views.
//
// An Applier executes the patch ops produced by vdom.Diff against a Tree of
// mounted views. Views come from a pool.Pool on Insert and go back to it on
// Remove. After the ops, every mount is rebound to the new node tree and a
// layout pass runs each node's configuration closure with its final size.
//
// # Basic Usage
//
//	host := view.NewBox()
//	tree := render.NewTree(host)
//	applier := render.NewApplier(pool.New())
//
//	ops, err := vdom.Diff(prev, next)
//	if err != nil {
//	    return err
//	}
//	if err := applier.Apply(ops, tree, next); err != nil {
//	    return err // tree and nodes disagree; stop rendering
//	}
//	applier.Layout(tree, bounds)
//
// # Exit Animations
//
// With an ExitAnimation installed, a removed subtree leaves the logical tree
// immediately but its root view stays attached until the animation calls
// done. Only then are its views detached and returned to the pool. Later
// inserts and moves are placed relative to logical siblings, so a lingering
// view never shifts them.
//
// # Threading
//
// Apply, Layout and Snapshot must run on the render loop. Use WithDispatch to
// marshal an animation's done callback back onto that loop.
package render
