package transport

import (
	"context"
	"sync"
)

// Call is an in-flight request. Done is closed exactly once, after the
// outcome is recorded.
type Call struct {
	ID      string
	Request Request

	once    sync.Once
	done    chan struct{}
	outcome Outcome
	cancel  context.CancelFunc
}

// NewCall returns a call that completes only through Complete or Cancel. It
// lets other executors, such as recorded replies in tests, satisfy the same
// contract as Client.Send.
func NewCall(id string, req Request) *Call {
	c := &Call{ID: id, Request: req, done: make(chan struct{})}
	c.cancel = func() { c.finish(Outcome{Err: context.Canceled}) }
	return c
}

// Complete records o as the call's outcome. Only the first completion wins.
func (c *Call) Complete(o Outcome) {
	c.finish(o)
}

// Done is closed when the call reaches its terminal state.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Outcome blocks until the call completes and returns its result.
func (c *Call) Outcome() Outcome {
	<-c.done
	return c.outcome
}

// Cancel aborts the call. A cancelled call still completes, with Status 0
// and a context error.
func (c *Call) Cancel() {
	c.cancel()
}

func (c *Call) finish(o Outcome) {
	c.once.Do(func() {
		c.outcome = o
		close(c.done)
	})
}
