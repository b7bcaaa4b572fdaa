package dispatch

import (
	"github.com/colonyops/flypanel/internal/core/router"
	"github.com/colonyops/flypanel/internal/core/transport"
)

// Task follows a dispatched call until its result has been reflected.
type Task struct {
	Call     *transport.Call
	AnchorID string

	done   chan struct{}
	result router.Result
}

func newTask(call *transport.Call, anchorID string) *Task {
	return &Task{Call: call, AnchorID: anchorID, done: make(chan struct{})}
}

// Done is closed after the result has been applied to the page.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result blocks until Done and returns what was reflected.
func (t *Task) Result() router.Result {
	<-t.done
	return t.result
}

// Outcome blocks until Done and returns the raw transport outcome.
func (t *Task) Outcome() transport.Outcome {
	<-t.done
	return t.Call.Outcome()
}

// Cancel aborts the underlying call.
func (t *Task) Cancel() {
	t.Call.Cancel()
}

func (t *Task) finish(res router.Result) {
	t.result = res
	close(t.done)
}
