// Package demo is the table screen: a list of cards, each with a DEL button
// that marks the row, waits, then removes it with a fade.
package demo

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vango-dev/tablenode/internal/config"
	"github.com/vango-dev/tablenode/pkg/component"
	"github.com/vango-dev/tablenode/pkg/metrics"
	"github.com/vango-dev/tablenode/pkg/pool"
	"github.com/vango-dev/tablenode/pkg/render"
	"github.com/vango-dev/tablenode/pkg/vdom"
	"github.com/vango-dev/tablenode/pkg/view"
)

const (
	tableKey   = "cards"
	paddingTop = 64
	buttonSize = 32
	fadeSteps  = 5
)

// CellKey returns the key of row idx.
func CellKey(idx int) string { return fmt.Sprintf("cell_%d", idx) }

// CardKey returns the key of the card in row idx.
func CardKey(idx int) string { return fmt.Sprintf("card_%d", idx) }

// CellPath returns the tree path of row idx.
func CellPath(idx int) string {
	return vdom.JoinPath(vdom.JoinPath("", "k:"+tableKey), "k:"+CellKey(idx))
}

// ButtonPath returns the tree path of the DEL button in row idx.
func ButtonPath(idx int) string {
	return vdom.JoinPath(CellPath(idx), "i:0")
}

type cardProps struct {
	Index        int
	BeingDeleted bool
}

// Option configures a Screen.
type Option func(*Screen)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Screen) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Screen) {
		s.logger = l
	}
}

// WithRegistry sets the handle registry.
func WithRegistry(r *component.Registry) Option {
	return func(s *Screen) {
		s.registry = r
	}
}

// WithObserver registers fn to run after every render.
func WithObserver(fn func(component.RenderInfo)) Option {
	return func(s *Screen) {
		s.observers = append(s.observers, fn)
	}
}

// Screen owns the table component and the window it is attached to.
type Screen struct {
	loop         *component.Loop
	comp         *component.Component[State]
	window       *view.Box
	handle       component.Handle
	deleteDelay  time.Duration
	exitDuration time.Duration

	registry  *component.Registry
	metrics   *metrics.Collector
	logger    *slog.Logger
	observers []func(component.RenderInfo)
}

// NewScreen creates the screen. Nothing is rendered until Load.
func NewScreen(loop *component.Loop, cfg *config.Config, opts ...Option) *Screen {
	s := &Screen{
		loop:         loop,
		window:       view.NewBox(),
		deleteDelay:  cfg.Demo.DeleteDelay.Std(),
		exitDuration: cfg.Demo.ExitDuration.Std(),
		registry:     component.DefaultRegistry,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	poolOpts := []pool.Option{pool.WithMetrics(s.metrics), pool.WithLogger(s.logger)}
	for typ, n := range cfg.Pool.Caps {
		poolOpts = append(poolOpts, pool.WithCap(view.TypeID(typ), n))
	}
	applierOpts := []render.ApplierOption{
		render.WithDispatch(func(fn func()) { loop.Post(fn) }),
		render.WithApplierMetrics(s.metrics),
		render.WithApplierLogger(s.logger),
	}
	if s.exitDuration > 0 {
		applierOpts = append(applierOpts, render.WithExitAnimation(s.fadeOut))
	}

	compOpts := []component.Option{
		component.WithApplier(render.NewApplier(pool.New(poolOpts...), applierOpts...)),
		component.WithRegistry(s.registry),
		component.WithMetrics(s.metrics),
		component.WithLogger(s.logger),
	}
	for _, fn := range s.observers {
		compOpts = append(compOpts, component.WithObserver(fn))
	}

	s.handle = s.registry.Register(s)
	s.comp = component.New(loop, NewState(cfg.Demo.Items), s.render, compOpts...)
	return s
}

// Load attaches the component to the window. It runs on the loop.
func (s *Screen) Load(bounds view.Size) error {
	s.window.Layout = view.Layout{Width: bounds.Width, Height: bounds.Height}
	return s.comp.Attach(s.window, bounds)
}

// LayoutSubviews re-renders for new bounds. It runs on the loop.
func (s *Screen) LayoutSubviews(bounds view.Size) error {
	s.window.Layout = view.Layout{Width: bounds.Width, Height: bounds.Height}
	return s.comp.TriggerRender(bounds)
}

// Unload detaches the component and releases every view. It runs on the loop.
func (s *Screen) Unload() {
	s.comp.Detach()
	s.registry.Unregister(s.handle)
}

// Component returns the table component.
func (s *Screen) Component() *component.Component[State] { return s.comp }

// Window returns the view the table is attached to.
func (s *Screen) Window() view.View { return s.window }

// State returns the last committed state.
func (s *Screen) State() State { return s.comp.State() }

// Remove marks row idx for deletion, then drops it once the delete delay
// has passed. The returned commit reports the marking step.
func (s *Screen) Remove(idx int) *component.Commit {
	commit := s.comp.SetState(func(st State) (State, error) {
		return st.markPending(idx), nil
	})
	s.loop.After(s.deleteDelay, func() {
		s.comp.SetState(func(st State) (State, error) {
			return st.drop(idx), nil
		})
	})
	s.logger.Debug("row marked for removal", "row", idx, "delay", s.deleteDelay)
	return commit
}

// Tap taps the DEL button of row idx and reports whether it responded.
// It runs on the loop.
func (s *Screen) Tap(idx int) bool {
	tree := s.comp.Tree()
	if tree == nil {
		return false
	}
	btn, ok := tree.View(ButtonPath(idx)).(*view.Button)
	return ok && btn.Tap()
}

func (s *Screen) render(st State, bounds view.Size) *vdom.Node {
	table := vdom.Table(vdom.Key(tableKey), func(v view.View, size view.Size) {
		b := view.BaseOf(v)
		b.Layout.Width = size.Width
		b.Layout.Height = size.Height
		b.Layout.PaddingTop = paddingTop
	})
	for _, idx := range st.Items {
		table.Children = append(table.Children, s.cell(idx, st.Pending(idx)))
	}
	return table
}

func (s *Screen) cell(idx int, pending bool) *vdom.Node {
	h := s.handle
	return vdom.Box(vdom.Key(CellKey(idx)),
		func(v view.View, size view.Size) {
			view.BaseOf(v).Layout.Width = size.Width
		},
		vdom.Card(vdom.Key(CardKey(idx)), vdom.Props(cardProps{Index: idx, BeingDeleted: pending}),
			func(v view.View, _ view.Size) {
				card := v.(*view.Card)
				card.Title = fmt.Sprintf("Card %d", idx)
				card.Expanded = false
				card.BeingDeleted = pending
			},
		),
		vdom.Button(vdom.Props(pending), func(v view.View, _ view.Size) {
			btn := v.(*view.Button)
			btn.Title = "DEL"
			btn.Hidden = pending
			btn.Layout = view.Layout{Width: buttonSize, Height: buttonSize, Padding: 2, Absolute: true}
			btn.OnTap(func() {
				if screen, ok := component.Resolve[*Screen](h); ok {
					screen.Remove(idx)
				}
			})
		}),
	)
}

// fadeOut steps the leaving row's card alpha to zero, then lets the row go.
func (s *Screen) fadeOut(v view.View, done func()) {
	step := s.exitDuration / fadeSteps
	b := view.BaseOf(rowCard(v))
	var tick func(n int)
	tick = func(n int) {
		b.Alpha = 1 - float64(n)/fadeSteps
		if n == fadeSteps {
			done()
			return
		}
		s.loop.After(step, func() { tick(n + 1) })
	}
	tick(0)
}

// rowCard returns the card inside row, or row itself when it holds none.
func rowCard(row view.View) view.View {
	for _, sv := range row.Subviews() {
		if card, ok := sv.(*view.Card); ok {
			return card
		}
	}
	return row
}
