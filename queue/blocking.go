package queue

import (
	"context"
	"sync"

	"github.com/casualjim/conduit/pkg/stdx"
)

var _ Queue[int] = (*Blocking[int])(nil)

// Blocking guards all operations with a single mutex.
type Blocking[T any] struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	items    buffer[T]
}

// NewBlocking creates an empty single-lock queue.
func NewBlocking[T any]() *Blocking[T] {
	q := &Blocking[T]{}
	q.nonEmpty = sync.NewCond(&q.mu)
	return q
}

func (q *Blocking[T]) Push(v T) {
	q.mu.Lock()
	q.items.push(v)
	q.mu.Unlock()
	q.nonEmpty.Signal()
}

func (q *Blocking[T]) Pop() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.len() == 0 {
		return stdx.Zero[T](), ErrEmpty
	}
	return q.items.pop(), nil
}

func (q *Blocking[T]) WaitAndPop() T {
	v, _ := q.WaitAndPopContext(context.Background())
	return v
}

func (q *Blocking[T]) WaitAndPopContext(ctx context.Context) (T, error) {
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

func (q *Blocking[T]) Front() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.len() == 0 {
		return stdx.Zero[T](), ErrEmpty
	}
	return q.items.front(), nil
}

func (q *Blocking[T]) WaitAndFront() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.items.len() == 0 {
		q.nonEmpty.Wait()
	}
	// peeking leaves the element in place, pass the wake up on
	q.nonEmpty.Signal()
	return q.items.front()
}

func (q *Blocking[T]) Back() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.len() == 0 {
		return stdx.Zero[T](), ErrEmpty
	}
	return q.items.back(), nil
}

func (q *Blocking[T]) WaitAndBack() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.items.len() == 0 {
		q.nonEmpty.Wait()
	}
	q.nonEmpty.Signal()
	return q.items.back()
}

func (q *Blocking[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.len() == 0
}

func (q *Blocking[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.len()
}

func (q *Blocking[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items.reset()
}
