package queue

import (
	"context"
	"sync"
)

// buffer is an unbounded FIFO over a slice. The head index avoids shifting on
// every pop; the backing array is compacted once more than half of it is dead.
type buffer[T any] struct {
	items []T
	head  int
}

func (b *buffer[T]) len() int { return len(b.items) - b.head }

func (b *buffer[T]) push(v T) { b.items = append(b.items, v) }

func (b *buffer[T]) pop() T {
	var zero T
	v := b.items[b.head]
	b.items[b.head] = zero
	b.head++
	switch {
	case b.head == len(b.items):
		b.items = b.items[:0]
		b.head = 0
	case b.head > 32 && b.head*2 >= len(b.items):
		n := copy(b.items, b.items[b.head:])
		clear(b.items[n:])
		b.items = b.items[:n]
		b.head = 0
	}
	return v
}

func (b *buffer[T]) front() T { return b.items[b.head] }

func (b *buffer[T]) back() T { return b.items[len(b.items)-1] }

func (b *buffer[T]) reset() {
	b.items = nil
	b.head = 0
}

// wakeOnDone broadcasts c once ctx is done so waiters can observe ctx.Err().
// The returned func releases the registration and never blocks.
func wakeOnDone(ctx context.Context, l sync.Locker, c *sync.Cond) func() bool {
	if ctx.Done() == nil {
		return func() bool { return true }
	}
	return context.AfterFunc(ctx, func() {
		l.Lock()
		c.Broadcast()
		l.Unlock()
	})
}
