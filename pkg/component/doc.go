// Package component owns component state and schedules renders.
//
// All state changes go through SetState, which stages a mutation and posts
// a render tick onto the Loop unless one is already pending. The tick applies
// every staged mutation in order, renders the resulting state once, diffs it
// against the last rendered tree and applies the ops. Mutations staged while
// a tick runs are picked up by the next tick.
//
// # Loop
//
// A Loop is the single goroutine that touches state and views. Work reaches
// it through Post from any goroutine; timers use After so their callbacks
// also run on the loop:
//
//	loop := component.NewLoop()
//	go loop.Run(ctx)
//
//	c := component.New(loop, State{}, renderFn)
//	loop.Post(func() { c.Attach(host, bounds) })
//	c.SetState(func(s State) (State, error) { s.Count++; return s, nil })
//
// Tests use Drain with a ManualClock to run everything inline.
//
// # Handles
//
// Configuration closures outlive a render and must not keep a component
// alive. They capture a Handle instead and resolve it when they fire:
//
//	h := c.Handle()
//	btn.OnTap(func() {
//	    if c, ok := component.Resolve[*Screen](h); ok {
//	        c.Remove(idx)
//	    }
//	})
package component
