package queue

import (
	"context"
	"sync"

	"github.com/casualjim/conduit/pkg/stdx"
)

var _ Queue[int] = (*ConcurrentRead[int])(nil)

// ConcurrentRead lets read-only operations share a read/write lock while
// mutations take it exclusively. It suits many peeking readers and few writers.
//
// Waiters are parked on a condition bound to the exclusive side of the lock.
type ConcurrentRead[T any] struct {
	mu       sync.RWMutex
	nonEmpty *sync.Cond
	items    buffer[T]
}

// NewConcurrentRead creates an empty queue that admits concurrent readers.
func NewConcurrentRead[T any]() *ConcurrentRead[T] {
	q := &ConcurrentRead[T]{}
	q.nonEmpty = sync.NewCond(&q.mu)
	return q
}

func (q *ConcurrentRead[T]) Push(v T) {
	q.mu.Lock()
	q.items.push(v)
	q.mu.Unlock()
	q.nonEmpty.Signal()
}

func (q *ConcurrentRead[T]) Pop() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.len() == 0 {
		return stdx.Zero[T](), ErrEmpty
	}
	return q.items.pop(), nil
}

func (q *ConcurrentRead[T]) WaitAndPop() T {
	v, _ := q.WaitAndPopContext(context.Background())
	return v
}

func (q *ConcurrentRead[T]) WaitAndPopContext(ctx context.Context) (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	stop := wakeOnDone(ctx, &q.mu, q.nonEmpty)
	defer stop()

	for q.items.len() == 0 {
		if err := ctx.Err(); err != nil {
			return stdx.Zero[T](), err
		}
		q.nonEmpty.Wait()
	}
	return q.items.pop(), nil
}

func (q *ConcurrentRead[T]) Front() (T, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.items.len() == 0 {
		return stdx.Zero[T](), ErrEmpty
	}
	return q.items.front(), nil
}

func (q *ConcurrentRead[T]) WaitAndFront() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.items.len() == 0 {
		q.nonEmpty.Wait()
	}
	q.nonEmpty.Signal()
	return q.items.front()
}

func (q *ConcurrentRead[T]) Back() (T, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.items.len() == 0 {
		return stdx.Zero[T](), ErrEmpty
	}
	return q.items.back(), nil
}

func (q *ConcurrentRead[T]) WaitAndBack() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.items.len() == 0 {
		q.nonEmpty.Wait()
	}
	q.nonEmpty.Signal()
	return q.items.back()
}

func (q *ConcurrentRead[T]) Empty() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.items.len() == 0
}

func (q *ConcurrentRead[T]) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.items.len()
}

func (q *ConcurrentRead[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items.reset()
}
