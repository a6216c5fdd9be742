package queue

import (
	"context"
	"sync"

	"github.com/casualjim/conduit/pkg/stdx"
)

var _ Queue[int] = (*WritePriority[int])(nil)

// WritePriority is a readers-writers queue with writer preference.
//
// A writer registers itself in waitingWriters before waiting for in-flight
// readers to leave. A reader is admitted only while waitingWriters is zero, so
// once a writer queues up no new reader gets in ahead of it. Writers mutate the
// buffer while holding mu with no reader inside; readers hold only their
// admission and read without mu.
type WritePriority[T any] struct {
	mu             sync.Mutex
	readable       *sync.Cond // waitingWriters reached zero
	drained        *sync.Cond // readers reached zero
	nonEmpty       *sync.Cond
	readers        int
	waitingWriters int
	items          buffer[T]
}

// NewWritePriority creates an empty writer-preferring queue.
func NewWritePriority[T any]() *WritePriority[T] {
	q := &WritePriority[T]{}
	q.readable = sync.NewCond(&q.mu)
	q.drained = sync.NewCond(&q.mu)
	q.nonEmpty = sync.NewCond(&q.mu)
	return q
}

func (q *WritePriority[T]) rlock() {
	q.mu.Lock()
	for q.waitingWriters > 0 {
		q.readable.Wait()
	}
	q.readers++
	q.mu.Unlock()
}

func (q *WritePriority[T]) runlock() {
	q.mu.Lock()
	q.readers--
	if q.readers == 0 {
		q.drained.Broadcast()
	}
	q.mu.Unlock()
}

// acquireLocked must be called with mu held. It returns with mu held and no
// reader admitted.
func (q *WritePriority[T]) acquireLocked() {
	q.waitingWriters++
	for q.readers > 0 {
		q.drained.Wait()
	}
	q.waitingWriters--
}

func (q *WritePriority[T]) releaseLocked() {
	if q.waitingWriters == 0 {
		q.readable.Broadcast()
	}
}

func (q *WritePriority[T]) Push(v T) {
	q.mu.Lock()
	q.acquireLocked()
	q.items.push(v)
	q.releaseLocked()
	q.mu.Unlock()
	q.nonEmpty.Signal()
}

func (q *WritePriority[T]) Pop() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acquireLocked()
	defer q.releaseLocked()
	if q.items.len() == 0 {
		return stdx.Zero[T](), ErrEmpty
	}
	return q.items.pop(), nil
}

func (q *WritePriority[T]) WaitAndPop() T {
	v, _ := q.WaitAndPopContext(context.Background())
	return v
}

func (q *WritePriority[T]) WaitAndPopContext(ctx context.Context) (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	stop := wakeOnDone(ctx, &q.mu, q.nonEmpty)
	defer stop()

	for {
		q.acquireLocked()
		if q.items.len() > 0 {
			v := q.items.pop()
			q.releaseLocked()
			return v, nil
		}
		// give readers their turn while this waiter sleeps
		q.releaseLocked()
		if err := ctx.Err(); err != nil {
			return stdx.Zero[T](), err
		}
		q.nonEmpty.Wait()
	}
}

// waitReadableLocked parks the caller until no writer is waiting and the
// buffer holds an element. Called with mu held.
func (q *WritePriority[T]) waitReadableLocked() {
	for q.waitingWriters > 0 || q.items.len() == 0 {
		if q.waitingWriters > 0 {
			q.readable.Wait()
		} else {
			q.nonEmpty.Wait()
		}
	}
}

func (q *WritePriority[T]) Front() (T, error) {
	q.rlock()
	defer q.runlock()
	if q.items.len() == 0 {
		return stdx.Zero[T](), ErrEmpty
	}
	return q.items.front(), nil
}

func (q *WritePriority[T]) WaitAndFront() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.waitReadableLocked()
	q.nonEmpty.Signal()
	return q.items.front()
}

func (q *WritePriority[T]) Back() (T, error) {
	q.rlock()
	defer q.runlock()
	if q.items.len() == 0 {
		return stdx.Zero[T](), ErrEmpty
	}
	return q.items.back(), nil
}

func (q *WritePriority[T]) WaitAndBack() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.waitReadableLocked()
	q.nonEmpty.Signal()
	return q.items.back()
}

func (q *WritePriority[T]) Empty() bool {
	q.rlock()
	defer q.runlock()
	return q.items.len() == 0
}

func (q *WritePriority[T]) Size() int {
	q.rlock()
	defer q.runlock()
	return q.items.len()
}

func (q *WritePriority[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acquireLocked()
	q.items.reset()
	q.releaseLocked()
}
