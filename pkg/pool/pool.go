// Package pool recycles concrete views by type.
//
// Views leave the pool through Acquire and come back through Release, which
// resets them. A view is handed to at most one holder at a time. Retired
// views are reused most-recently-released first; when a type has a cap, the
// oldest retired view is destroyed instead of being kept.
package pool

import (
	"container/list"
	"log/slog"
	"sync"

	tnerrors "github.com/vango-dev/tablenode/internal/errors"
	"github.com/vango-dev/tablenode/pkg/metrics"
	"github.com/vango-dev/tablenode/pkg/view"
)

// ErrNotInUse is returned when releasing a view the pool has not handed out.
var ErrNotInUse = tnerrors.New("E201")

// Option configures a Pool.
type Option func(*Pool)

// WithFactory registers the constructor for a type.
func WithFactory(typ view.TypeID, f view.Factory) Option {
	return func(p *Pool) {
		p.factories[typ] = f
	}
}

// WithCap limits the number of retired views kept for a type.
// A cap <= 0 leaves the type unlimited.
func WithCap(typ view.TypeID, n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.caps[typ] = n
		}
	}
}

// WithFallback sets the constructor used for types without a factory.
// Default: view.NewDefault.
func WithFallback(f func(view.TypeID) view.View) Option {
	return func(p *Pool) {
		p.fallback = f
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(p *Pool) {
		p.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		p.logger = l
	}
}

// Stats is a per-type snapshot of pool activity.
type Stats struct {
	InUse   int `json:"inUse"`
	Retired int `json:"retired"`
	Created int `json:"created"`
	Reused  int `json:"reused"`
	Evicted int `json:"evicted"`
}

// typePool holds the retired views of one type.
// Front is the oldest released, back the most recent.
type typePool struct {
	retired *list.List
	stats   Stats
}

// Pool hands out and takes back views, keyed by type.
// It is safe for concurrent use.
type Pool struct {
	mu        sync.Mutex
	types     map[view.TypeID]*typePool
	inUse     map[view.View]struct{}
	factories map[view.TypeID]view.Factory
	caps      map[view.TypeID]int
	fallback  func(view.TypeID) view.View
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// New creates a Pool.
func New(opts ...Option) *Pool {
	p := &Pool{
		types:     make(map[view.TypeID]*typePool),
		inUse:     make(map[view.View]struct{}),
		factories: make(map[view.TypeID]view.Factory),
		caps:      make(map[view.TypeID]int),
		fallback:  view.NewDefault,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register sets the constructor for a type.
func (p *Pool) Register(typ view.TypeID, f view.Factory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factories[typ] = f
}

// SetCap limits the retired views kept for a type. A cap <= 0 removes the limit.
// Excess retired views are evicted immediately.
func (p *Pool) SetCap(typ view.TypeID, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n <= 0 {
		delete(p.caps, typ)
		return
	}
	p.caps[typ] = n
	p.enforceCap(typ, p.typePool(typ))
}

// Acquire returns a view of the given type that no one else holds.
// Unknown types are constructed on demand.
func (p *Pool) Acquire(typ view.TypeID) view.View {
	p.mu.Lock()
	defer p.mu.Unlock()

	tp := p.typePool(typ)
	var v view.View
	reused := false
	if back := tp.retired.Back(); back != nil {
		v = tp.retired.Remove(back).(view.View)
		tp.stats.Reused++
		reused = true
	} else {
		v = p.construct(typ)
		tp.stats.Created++
	}
	tp.stats.InUse++
	p.inUse[v] = struct{}{}

	p.metrics.ObservePoolAcquire(string(typ), reused)
	p.metrics.SetPoolRetired(string(typ), tp.retired.Len())
	return v
}

// Release detaches v if it is still attached, resets it, and retires it for reuse.
func (p *Pool) Release(v view.View) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.inUse[v]; !ok {
		return ErrNotInUse.WithOp("pool.Release").WithDetailf("%s view %p", v.Type(), v)
	}
	delete(p.inUse, v)

	if v.Parent() != nil {
		v.Detach()
	}
	v.Reset()

	typ := v.Type()
	tp := p.typePool(typ)
	tp.stats.InUse--
	tp.retired.PushBack(v)
	p.enforceCap(typ, tp)

	p.metrics.SetPoolRetired(string(typ), tp.retired.Len())
	return nil
}

// InUse reports whether v is currently handed out.
func (p *Pool) InUse(v view.View) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.inUse[v]
	return ok
}

// Stats returns a snapshot of pool activity per type.
func (p *Pool) Stats() map[view.TypeID]Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[view.TypeID]Stats, len(p.types))
	for typ, tp := range p.types {
		s := tp.stats
		s.Retired = tp.retired.Len()
		out[typ] = s
	}
	return out
}

// Drain destroys every retired view.
func (p *Pool) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for typ, tp := range p.types {
		for tp.retired.Len() > 0 {
			p.destroy(typ, tp, tp.retired.Front())
		}
		p.metrics.SetPoolRetired(string(typ), 0)
	}
}

func (p *Pool) typePool(typ view.TypeID) *typePool {
	tp, ok := p.types[typ]
	if !ok {
		tp = &typePool{retired: list.New()}
		p.types[typ] = tp
	}
	return tp
}

func (p *Pool) construct(typ view.TypeID) view.View {
	if f, ok := p.factories[typ]; ok {
		return f()
	}
	return p.fallback(typ)
}

// enforceCap evicts oldest-released views until the type is within its cap.
func (p *Pool) enforceCap(typ view.TypeID, tp *typePool) {
	limit, ok := p.caps[typ]
	if !ok {
		return
	}
	for tp.retired.Len() > limit {
		p.destroy(typ, tp, tp.retired.Front())
		p.metrics.ObservePoolEviction(string(typ))
	}
}

func (p *Pool) destroy(typ view.TypeID, tp *typePool, e *list.Element) {
	v := tp.retired.Remove(e).(view.View)
	tp.stats.Evicted++
	if d, ok := v.(view.Destroyer); ok {
		d.Destroy()
	}
	p.logger.Debug("pool evicted view", "type", typ)
}
