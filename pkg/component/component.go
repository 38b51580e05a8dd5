package component

import (
	"context"
	stderrors "errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	tnerrors "github.com/vango-dev/tablenode/internal/errors"
	"github.com/vango-dev/tablenode/pkg/metrics"
	"github.com/vango-dev/tablenode/pkg/pool"
	"github.com/vango-dev/tablenode/pkg/render"
	"github.com/vango-dev/tablenode/pkg/vdom"
	"github.com/vango-dev/tablenode/pkg/view"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vango-dev/tablenode/pkg/component"

var (
	// ErrMutationFailed wraps an error returned by a mutation.
	ErrMutationFailed = tnerrors.New("E401")

	// ErrMutationPanicked is reported for a mutation that panicked.
	ErrMutationPanicked = tnerrors.New("E402")

	// ErrDetached is reported for mutations staged on a detached or halted component.
	ErrDetached = tnerrors.New("E403")

	// ErrRenderRejected is reported when a batch produced an invalid tree.
	ErrRenderRejected = tnerrors.New("E404")
)

// Mutation derives the next state from the current one. On error the current
// state is kept, so a mutation must not modify its input in place.
type Mutation[S any] func(S) (S, error)

// RenderFunc builds the node tree for a state. It must be pure.
type RenderFunc[S any] func(state S, bounds view.Size) *vdom.Node

// RenderInfo describes one completed render.
type RenderInfo struct {
	Component Handle
	Ops       []vdom.PatchOp
	Mutations int
	Duration  time.Duration
	Err       error
}

type options struct {
	applier   *render.Applier
	registry  *Registry
	metrics   *metrics.Collector
	logger    *slog.Logger
	tracer    trace.Tracer
	observers []func(RenderInfo)
}

// Option configures a Component.
type Option func(*options)

// WithApplier sets the applier. By default each component gets its own
// applier over a fresh pool.
func WithApplier(a *render.Applier) Option {
	return func(o *options) {
		o.applier = a
	}
}

// WithRegistry sets the registry the component's handle lives in.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTracer sets the tracer. Default: the global provider's tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithObserver registers fn to run on the loop after every render.
func WithObserver(fn func(RenderInfo)) Option {
	return func(o *options) {
		o.observers = append(o.observers, fn)
	}
}

type staged[S any] struct {
	fn     Mutation[S]
	commit *Commit
}

// Component holds a state value and keeps a view hierarchy in sync with it.
type Component[S any] struct {
	loop     *Loop
	renderFn RenderFunc[S]
	applier  *render.Applier
	registry *Registry
	handle   Handle
	metrics  *metrics.Collector
	logger   *slog.Logger
	tracer   trace.Tracer

	mu        sync.Mutex
	state     S
	pending   []staged[S]
	scheduled bool
	halted    error
	observers []func(RenderInfo)

	// Owned by the loop goroutine.
	tree     *render.Tree
	prev     *vdom.Node
	bounds   view.Size
	attached bool
}

// New creates a component with an initial state. It renders nothing until Attach.
func New[S any](loop *Loop, initial S, fn RenderFunc[S], opts ...Option) *Component[S] {
	o := options{
		registry: DefaultRegistry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	if o.applier == nil {
		o.applier = render.NewApplier(
			pool.New(pool.WithMetrics(o.metrics), pool.WithLogger(o.logger)),
			render.WithDispatch(func(fn func()) { loop.Post(fn) }),
			render.WithApplierMetrics(o.metrics),
			render.WithApplierLogger(o.logger),
		)
	}

	c := &Component[S]{
		loop:      loop,
		renderFn:  fn,
		applier:   o.applier,
		registry:  o.registry,
		metrics:   o.metrics,
		tracer:    o.tracer,
		state:     initial,
		observers: o.observers,
	}
	c.handle = o.registry.Register(c)
	c.logger = o.logger.With("component_id", c.handle.String())
	return c
}

// Handle returns a non-owning reference to the component.
func (c *Component[S]) Handle() Handle { return c.handle }

// Loop returns the loop the component renders on.
func (c *Component[S]) Loop() *Loop { return c.loop }

// Applier returns the component's applier.
func (c *Component[S]) Applier() *render.Applier { return c.applier }

// State returns the last committed state.
func (c *Component[S]) State() S {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error that halted the component, or nil.
func (c *Component[S]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.halted
}

// Observe registers fn to run on the loop after every render.
func (c *Component[S]) Observe(fn func(RenderInfo)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// SetState stages fn and schedules a render tick if none is pending.
// It is safe to call from any goroutine. Mutations staged while a tick is
// running are applied on the next tick.
func (c *Component[S]) SetState(fn Mutation[S]) *Commit {
	commit := newCommit()

	c.mu.Lock()
	if c.halted != nil {
		c.mu.Unlock()
		commit.resolve(ErrDetached.WithOp("component.SetState"))
		return commit
	}
	c.pending = append(c.pending, staged[S]{fn: fn, commit: commit})
	post := !c.scheduled
	c.scheduled = true
	c.mu.Unlock()

	if post && !c.loop.Post(c.RunScheduledRender) {
		c.halt(ErrDetached.WithDetail("loop closed"))
	}
	return commit
}

// RunScheduledRender applies every staged mutation in order and renders the
// result once. It runs on the loop.
func (c *Component[S]) RunScheduledRender() {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	committed := c.state
	state := committed
	halted := c.halted
	c.mu.Unlock()

	if halted != nil {
		for _, m := range batch {
			m.commit.resolve(ErrDetached.WithOp("component.SetState"))
		}
		c.mu.Lock()
		c.scheduled = false
		c.mu.Unlock()
		return
	}

	errs := make([]error, len(batch))
	for i, m := range batch {
		next, err := c.mutate(m.fn, state)
		if err != nil {
			errs[i] = err
			continue
		}
		state = next
	}

	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	if c.attached {
		if err := c.render(len(batch)); err != nil {
			err = c.rejectBatch(committed, err)
			for i := range errs {
				if errs[i] == nil {
					errs[i] = err
				}
			}
		}
	}
	for i, m := range batch {
		m.commit.resolve(errs[i])
	}

	c.mu.Lock()
	c.scheduled = false
	again := len(c.pending) > 0
	if again {
		c.scheduled = true
	}
	c.mu.Unlock()

	if again && !c.loop.Post(c.RunScheduledRender) {
		c.halt(ErrDetached.WithDetail("loop closed"))
	}
}

// rejectBatch handles a failed render of a batch and returns the error its
// commits resolve with. A rejected tree rolls the state back to committed so
// it keeps matching the mounted views.
func (c *Component[S]) rejectBatch(committed S, err error) error {
	if halted := c.Err(); halted != nil {
		return ErrDetached.WithOp("component.SetState").Wrap(err)
	}
	c.mu.Lock()
	c.state = committed
	c.mu.Unlock()
	return ErrRenderRejected.WithOp("component.SetState").Wrap(err)
}

// mutate runs fn against state, turning errors and panics into coded errors.
func (c *Component[S]) mutate(fn Mutation[S], state S) (next S, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("mutation panic",
				"panic", r,
				"stack", string(debug.Stack()))
			c.metrics.ObserveMutation("panic")
			next, err = state, ErrMutationPanicked.WithOp("component.SetState").WithDetailf("%v", r)
		}
	}()

	next, err = fn(state)
	if err != nil {
		c.logger.Warn("mutation failed", "error", err)
		c.metrics.ObserveMutation("error")
		return state, ErrMutationFailed.WithOp("component.SetState").Wrap(err)
	}
	c.metrics.ObserveMutation("ok")
	return next, nil
}

// Attach realizes the current state under host. It runs on the loop.
func (c *Component[S]) Attach(host view.View, bounds view.Size) error {
	if err := c.Err(); err != nil {
		return err
	}
	if c.attached {
		return c.TriggerRender(bounds)
	}
	c.tree = render.NewTree(host)
	c.bounds = bounds
	c.attached = true
	return c.render(0)
}

// TriggerRender re-renders with new bounds. It runs on the loop.
func (c *Component[S]) TriggerRender(bounds view.Size) error {
	if !c.attached {
		return nil
	}
	if err := c.Err(); err != nil {
		return err
	}
	c.bounds = bounds
	return c.render(0)
}

// Attached reports whether the component has a view hierarchy.
func (c *Component[S]) Attached() bool { return c.attached }

// Tree returns the mounted tree, or nil before Attach.
func (c *Component[S]) Tree() *render.Tree { return c.tree }

// Bounds returns the bounds of the last render.
func (c *Component[S]) Bounds() view.Size { return c.bounds }

// Detach releases every view, unregisters the handle and rejects further
// mutations with ErrDetached. It runs on the loop.
func (c *Component[S]) Detach() {
	if c.attached && c.Err() == nil && c.prev != nil {
		ops, err := vdom.Diff(c.prev, nil)
		if err == nil {
			err = c.applier.Apply(ops, c.tree, nil)
		}
		if err != nil {
			c.logger.Error("detach failed", "error", err)
		}
	}
	c.applier.CompleteExits()
	c.attached = false
	c.tree = nil
	c.prev = nil

	c.registry.Unregister(c.handle)
	c.halt(ErrDetached.WithOp("component.Detach"))
}

// render diffs the state's tree against the last one and applies the ops.
// A diff error keeps the current views; an apply error halts the component.
func (c *Component[S]) render(mutations int) error {
	_, span := c.tracer.Start(context.Background(), "component.render",
		trace.WithAttributes(
			attribute.String("component.id", c.handle.String()),
			attribute.Int("component.mutations", mutations),
		),
	)
	defer span.End()

	start := time.Now()
	next := c.renderFn(c.State(), c.bounds)
	info := RenderInfo{Component: c.handle, Mutations: mutations}

	ops, err := vdom.Diff(c.prev, next)
	if err != nil {
		c.logger.Error("render rejected", "error", err)
		c.finishRender(span, &info, "invalid", start, err)
		return err
	}
	info.Ops = ops

	if err := c.applier.Apply(ops, c.tree, next); err != nil {
		c.halt(err)
		c.finishRender(span, &info, "inconsistent", start, err)
		return err
	}
	c.prev = next
	c.applier.Layout(c.tree, c.bounds)

	span.SetAttributes(attribute.Int("component.ops", len(ops)))
	c.logger.Debug("render", "ops", len(ops), "mutations", mutations)
	c.finishRender(span, &info, "ok", start, nil)
	return nil
}

func (c *Component[S]) finishRender(span trace.Span, info *RenderInfo, status string, start time.Time, err error) {
	info.Duration = time.Since(start)
	info.Err = err
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	c.metrics.ObserveRender(status, info.Duration)

	c.mu.Lock()
	observers := append([]func(RenderInfo){}, c.observers...)
	c.mu.Unlock()
	for _, fn := range observers {
		fn(*info)
	}
}

// halt stops the component and rejects every staged mutation.
func (c *Component[S]) halt(err error) {
	c.mu.Lock()
	if c.halted != nil {
		c.mu.Unlock()
		return
	}
	c.halted = err
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	rejected := err
	if !stderrors.Is(err, ErrDetached) {
		c.logger.Error("component halted", "error", err)
		rejected = ErrDetached.WithOp("component.SetState").Wrap(err)
	}
	for _, m := range batch {
		m.commit.resolve(rejected)
	}
}
