package quire

import "context"

// Future is a pending builder execution. Await blocks until the round trip
// finishes and may be called any number of times; the result belongs to
// this future only.
type Future[R any] struct {
	done chan struct{}
	res  R
}

func start[R any](ctx context.Context, run func(context.Context) R) *Future[R] {
	f := &Future[R]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.res = run(ctx)
	}()
	return f
}

// Await waits for the execution and returns its result.
func (f *Future[R]) Await() R {
	<-f.done
	return f.res
}

// Done is closed once the result is available.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Awaitable is implemented by every builder terminal that can run in the
// background.
type Awaitable[R any] interface {
	Execute(ctx context.Context) R
	Start(ctx context.Context) *Future[R]
}
