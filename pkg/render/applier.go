package render

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	tnerrors "github.com/vango-dev/tablenode/internal/errors"
	"github.com/vango-dev/tablenode/pkg/metrics"
	"github.com/vango-dev/tablenode/pkg/pool"
	"github.com/vango-dev/tablenode/pkg/vdom"
	"github.com/vango-dev/tablenode/pkg/view"
)

// ErrInconsistent is returned when an op or the rebinding pass finds the
// mounted tree disagreeing with the node tree. It is not recoverable.
var ErrInconsistent = tnerrors.New("E301")

// ExitAnimation runs when a subtree's root view leaves the logical tree.
// It must call done exactly once when the view may be detached.
type ExitAnimation func(v view.View, done func())

// ApplierOption configures an Applier.
type ApplierOption func(*Applier)

// WithExitAnimation installs an exit animation for removed subtrees.
func WithExitAnimation(fn ExitAnimation) ApplierOption {
	return func(a *Applier) {
		a.exit = fn
	}
}

// WithDispatch sets the function used to run an exit animation's completion.
// Animations that finish off the render loop need it to post back onto the loop.
func WithDispatch(fn func(func())) ApplierOption {
	return func(a *Applier) {
		a.dispatch = fn
	}
}

// WithApplierMetrics sets the metrics collector.
func WithApplierMetrics(m *metrics.Collector) ApplierOption {
	return func(a *Applier) {
		a.metrics = m
	}
}

// WithApplierLogger sets the logger.
func WithApplierLogger(l *slog.Logger) ApplierOption {
	return func(a *Applier) {
		a.logger = l
	}
}

// Applier executes patch ops against a Tree.
type Applier struct {
	pool     *pool.Pool
	exit     ExitAnimation
	dispatch func(func())
	metrics  *metrics.Collector
	logger   *slog.Logger

	mu      sync.Mutex
	exiting map[view.View]func()
	pending atomic.Int64
}

// NewApplier creates an Applier that draws views from p.
func NewApplier(p *pool.Pool, opts ...ApplierOption) *Applier {
	a := &Applier{
		pool:    p,
		logger:  slog.Default(),
		exiting: make(map[view.View]func()),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Pool returns the pool views are drawn from.
func (a *Applier) Pool() *pool.Pool {
	return a.pool
}

// Apply executes ops in order, then rebinds every mount to its node in next.
// Any disagreement between the ops, the tree and next fails with
// ErrInconsistent; the tree is then in an undefined state.
func (a *Applier) Apply(ops []vdom.PatchOp, tree *Tree, next *vdom.Node) error {
	for _, op := range ops {
		var err error
		switch op.Op {
		case vdom.OpInsert:
			err = a.insert(tree, op)
		case vdom.OpRemove:
			err = a.remove(tree, op)
		case vdom.OpMove:
			err = a.move(tree, op)
		case vdom.OpUpdate:
			err = a.update(tree, op)
		default:
			err = ErrInconsistent.WithDetailf("unknown op %d at %s", op.Op, op.Path)
		}
		if err != nil {
			return err
		}
	}
	for op, n := range vdom.CountOps(ops) {
		a.metrics.AddPatchOps(strings.ToLower(op.String()), n)
	}
	return a.rebind(tree, next)
}

func (a *Applier) insert(tree *Tree, op vdom.PatchOp) error {
	if op.Node == nil {
		return ErrInconsistent.WithOp("render.Insert").WithDetailf("no node for %s", op.Path)
	}
	if _, ok := tree.mounts[op.Path]; ok {
		return ErrInconsistent.WithOp("render.Insert").WithDetailf("%s already mounted", op.Path)
	}

	siblings := []string{op.Path}
	var parent *Mounted
	if op.ParentPath == "" {
		if tree.root != "" {
			return ErrInconsistent.WithOp("render.Insert").WithDetailf("root %s already mounted", tree.root)
		}
	} else {
		var ok bool
		parent, ok = tree.mounts[op.ParentPath]
		if !ok {
			return ErrInconsistent.WithOp("render.Insert").WithDetailf("parent %s not mounted", op.ParentPath)
		}
		if op.Index < 0 || op.Index > len(parent.Children) {
			return ErrInconsistent.WithOp("render.Insert").
				WithDetailf("index %d out of range for %s", op.Index, op.ParentPath)
		}
		parent.Children = insertPath(parent.Children, op.Path, op.Index)
		siblings = parent.Children
	}

	v := a.pool.Acquire(op.Node.Type)
	m := &Mounted{
		Path:       op.Path,
		ParentPath: op.ParentPath,
		Node:       op.Node,
		View:       v,
	}
	tree.mounts[op.Path] = m
	if parent == nil {
		tree.root = op.Path
	}

	pv := tree.parentView(op.ParentPath)
	v.Attach(pv, tree.viewIndex(pv, siblings, op.Index))
	return nil
}

func (a *Applier) remove(tree *Tree, op vdom.PatchOp) error {
	m, ok := tree.mounts[op.Path]
	if !ok {
		return ErrInconsistent.WithOp("render.Remove").WithDetailf("%s not mounted", op.Path)
	}
	if m.ParentPath != "" {
		parent := tree.mounts[m.ParentPath]
		parent.Children, _ = removePath(parent.Children, m.Path)
	}
	views := tree.detachSubtree(m)

	if a.exit == nil {
		a.finish(views)
		return nil
	}

	root := m.View
	view.BaseOf(root).Leaving = true
	var once sync.Once
	finish := func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.exiting, root)
			a.mu.Unlock()
			a.metrics.SetPendingExits(int(a.pending.Add(-1)))
			a.finish(views)
		})
	}
	a.mu.Lock()
	a.exiting[root] = finish
	a.mu.Unlock()
	a.metrics.SetPendingExits(int(a.pending.Add(1)))

	a.exit(root, func() {
		if a.dispatch != nil {
			a.dispatch(finish)
			return
		}
		finish()
	})
	return nil
}

// finish detaches and releases views, which are ordered deepest first.
func (a *Applier) finish(views []view.View) {
	root := views[len(views)-1]
	root.Detach()
	for _, v := range views {
		if err := a.pool.Release(v); err != nil {
			a.logger.Warn("release failed", "type", v.Type(), "error", err)
		}
	}
}

func (a *Applier) move(tree *Tree, op vdom.PatchOp) error {
	m, ok := tree.mounts[op.Path]
	if !ok || m.ParentPath == "" {
		return ErrInconsistent.WithOp("render.Move").WithDetailf("%s not mounted under a parent", op.Path)
	}
	parent := tree.mounts[m.ParentPath]
	children, from := removePath(parent.Children, m.Path)
	if from < 0 || op.Index < 0 || op.Index > len(children) {
		return ErrInconsistent.WithOp("render.Move").
			WithDetailf("cannot move %s to %d", op.Path, op.Index)
	}
	parent.Children = insertPath(children, m.Path, op.Index)

	m.View.Detach()
	m.View.Attach(parent.View, tree.viewIndex(parent.View, parent.Children, op.Index))
	return nil
}

func (a *Applier) update(tree *Tree, op vdom.PatchOp) error {
	m, ok := tree.mounts[op.Path]
	if !ok {
		return ErrInconsistent.WithOp("render.Update").WithDetailf("%s not mounted", op.Path)
	}
	if op.Node == nil || op.Node.Type != m.View.Type() {
		return ErrInconsistent.WithOp("render.Update").WithDetailf("type changed at %s", op.Path)
	}
	m.Node = op.Node
	return nil
}

// rebind points every mount at its node in next and checks that the tree
// has exactly the shape of next.
func (a *Applier) rebind(tree *Tree, next *vdom.Node) error {
	if next == nil {
		if len(tree.mounts) != 0 {
			return ErrInconsistent.WithOp("render.Rebind").WithDetailf("%d views mounted for an empty tree", len(tree.mounts))
		}
		return nil
	}

	var err error
	seen := 0
	vdom.Walk(next, func(path, parentPath string, _ int, n *vdom.Node) bool {
		m, ok := tree.mounts[path]
		if !ok || m.View.Type() != n.Type {
			err = ErrInconsistent.WithOp("render.Rebind").WithDetailf("%s not mounted as %s", path, n.Type)
			return false
		}
		if len(m.Children) != len(n.Children) {
			err = ErrInconsistent.WithOp("render.Rebind").
				WithDetailf("%s has %d children, want %d", path, len(m.Children), len(n.Children))
			return false
		}
		for i, seg := range vdom.Segments(n.Children) {
			if m.Children[i] != vdom.JoinPath(path, seg) {
				err = ErrInconsistent.WithOp("render.Rebind").
					WithDetailf("%s child %d is %s", path, i, m.Children[i])
				return false
			}
		}
		m.Node = n
		seen++
		return err == nil
	})
	if err != nil {
		return err
	}
	if tree.root != vdom.RootPath(next) || seen != len(tree.mounts) {
		return ErrInconsistent.WithOp("render.Rebind").
			WithDetailf("%d views mounted for %d nodes", len(tree.mounts), seen)
	}
	return nil
}

// PendingExits returns the number of exit animations still running.
func (a *Applier) PendingExits() int {
	return int(a.pending.Load())
}

// CompleteExits finishes every running exit animation immediately.
func (a *Applier) CompleteExits() {
	a.mu.Lock()
	finishers := make([]func(), 0, len(a.exiting))
	for _, f := range a.exiting {
		finishers = append(finishers, f)
	}
	a.mu.Unlock()

	for _, f := range finishers {
		f()
	}
}
