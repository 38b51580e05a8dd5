package component

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithClock sets the clock used by After. Default: RealClock().
func WithClock(c Clock) LoopOption {
	return func(l *Loop) {
		l.clock = c
	}
}

// WithLoopLogger sets the logger.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// Loop runs queued functions one at a time on a single goroutine.
// Posting never blocks and never drops work while the loop is open.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{} // Signal for queued work
	done chan struct{}

	clock  Clock
	logger *slog.Logger
}

// NewLoop creates a Loop. It does nothing until Run, Tick or Drain is called.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		clock:  RealClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues fn to run on the loop. It is safe to call from any goroutine,
// including the loop itself. It reports false if the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
		// Already signaled
	}
	return true
}

// After posts fn onto the loop once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	return l.clock.AfterFunc(d, func() {
		if !l.Post(fn) {
			l.logger.Debug("timer fired after loop closed")
		}
	})
}

// Clock returns the loop's clock.
func (l *Loop) Clock() Clock {
	return l.clock
}

// Run processes queued work until ctx is done or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
			l.Tick()
		}
	}
}

// Tick runs the functions queued when it was called and returns how many ran.
// Work they post runs on a later tick.
func (l *Loop) Tick() int {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range batch {
		l.execute(fn)
	}
	return len(batch)
}

// Drain runs ticks until the queue is empty and returns how many functions ran.
func (l *Loop) Drain() int {
	total := 0
	for {
		n := l.Tick()
		if n == 0 {
			return total
		}
		total += n
	}
}

// Len returns the number of queued functions.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Close stops Run and rejects further posts. Queued work is discarded.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.queue = nil
	close(l.done)
}

// execute runs fn, recovering from panics so one bad callback cannot stop the loop.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
