package component

import (
	"context"
	"sync"
)

// Commit reports the outcome of one staged mutation.
type Commit struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newCommit() *Commit {
	return &Commit{done: make(chan struct{})}
}

func (c *Commit) resolve(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// Done is closed once the mutation has been applied or rejected.
func (c *Commit) Done() <-chan struct{} {
	return c.done
}

// Err returns the mutation's error. It is only meaningful after Done is closed.
func (c *Commit) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the mutation has been applied or ctx is done.
// Waiting on the loop goroutine deadlocks; use Done from there.
func (c *Commit) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
