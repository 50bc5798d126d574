package watch

import (
	"context"
	"sync"
)

// Worker serializes calls to fn. At most one call runs at a time and at most
// one more is pending.
type Worker struct {
	fn   func(context.Context)
	reqs chan struct{}
	wg   sync.WaitGroup
}

// NewWorker returns a worker running fn.
func NewWorker(fn func(context.Context)) *Worker {
	return &Worker{fn: fn, reqs: make(chan struct{}, 1)}
}

// Trigger requests a run without blocking.
func (w *Worker) Trigger() {
	select {
	case w.reqs <- struct{}{}:
	default:
	}
}

// Start runs the worker loop until ctx is cancelled. Wait blocks until the
// loop, including an in-flight run, has returned.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.reqs:
				w.fn(ctx)
			}
		}
	}()
}

// Wait blocks until the loop started by Start has exited.
func (w *Worker) Wait() { w.wg.Wait() }
