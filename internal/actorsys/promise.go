package actor

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// promiseImpl is the concrete implementation of Promise backed by a
// closed-once channel. Completing the promise stores the result and closes
// the channel, waking every goroutine blocked in Future.Await.
type promiseImpl[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	completed bool
	result    fn.Result[T]
}

// NewPromise creates a new, uncompleted Promise. The associated Future can be
// obtained via Future() and will block until Complete is called.
func NewPromise[T any]() Promise[T] {
	return &promiseImpl[T]{
		done: make(chan struct{}),
	}
}

// Complete implements the Promise interface. Only the first call stores the
// result; subsequent calls are no-ops and return false.
func (p *promiseImpl[T]) Complete(result fn.Result[T]) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.completed {
		return false
	}

	p.result = result
	p.completed = true
	close(p.done)

	return true
}

// Future implements the Promise interface.
func (p *promiseImpl[T]) Future() Future[T] {
	return &futureImpl[T]{promise: p}
}

// futureImpl is the read side of a promiseImpl.
type futureImpl[T any] struct {
	promise *promiseImpl[T]
}

// Await implements the Future interface. It blocks until the promise is
// completed or the context is cancelled, whichever happens first.
func (f *futureImpl[T]) Await(ctx context.Context) fn.Result[T] {
	select {
	case <-f.promise.done:
		f.promise.mu.Lock()
		defer f.promise.mu.Unlock()

		return f.promise.result

	case <-ctx.Done():
		return fn.Err[T](ctx.Err())
	}
}

// ThenApply implements the Future interface. The transform only runs once the
// original future completes; a new, independent future carries the result.
func (f *futureImpl[T]) ThenApply(ctx context.Context, apply func(T) T) Future[T] {
	next := NewPromise[T]()

	go func() {
		res := f.Await(ctx)

		val, err := res.Unpack()
		if err != nil {
			next.Complete(fn.Err[T](err))
			return
		}

		next.Complete(fn.Ok(apply(val)))
	}()

	return next.Future()
}

// OnComplete implements the Future interface.
func (f *futureImpl[T]) OnComplete(ctx context.Context, cb func(fn.Result[T])) {
	go func() {
		cb(f.Await(ctx))
	}()
}
