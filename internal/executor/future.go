package executor

import (
	"context"
	"sync"

	"github.com/casualjim/conduit/pkg/stdx"
)

// CompletableFuture is both ends of an asynchronous result: the pool holds the
// Promise side and the submitter reads through the Future side.
type CompletableFuture[T any] interface {
	Future[T]
	Promise[T]
}

// Promise resolves a future. Only the first call to Complete or Error has an
// effect.
type Promise[T any] interface {
	Complete(T)
	Error(error)
}

// Future is a handle to a result that becomes available later.
type Future[T any] interface {
	// Get blocks until the result is available.
	Get() (T, error)
	// GetContext is Get that gives up with ctx.Err() when ctx is done first.
	GetContext(ctx context.Context) (T, error)
	// Done is closed once the result is available.
	Done() <-chan struct{}
}

type future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func NewFuture[T any]() CompletableFuture[T] {
	return &future[T]{done: make(chan struct{})}
}

func (f *future[T]) Get() (T, error) {
	<-f.done
	return f.value, f.err
}

func (f *future[T]) GetContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return stdx.Zero[T](), ctx.Err()
	}
}

func (f *future[T]) Done() <-chan struct{} {
	return f.done
}

func (f *future[T]) Complete(value T) {
	f.once.Do(func() {
		f.value = value
		close(f.done)
	})
}

func (f *future[T]) Error(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}
