package conduit

import (
	"context"

	"github.com/casualjim/conduit/queue"
)

// Channel is a named FIFO carrying values of one type between goroutines.
// Channels are obtained from a Broker and shared by every holder of the name.
type Channel[T any] struct {
	name  string
	items queue.Queue[T]
}

func newChannel[T any](name string, kind queue.Kind) *Channel[T] {
	return &Channel[T]{
		name:  name,
		items: queue.New[T](kind),
	}
}

func (c *Channel[T]) Name() string {
	return c.name
}

// Send appends data. It never blocks.
func (c *Channel[T]) Send(data T) {
	c.items.Push(data)
}

// Receive blocks until a value is available and removes it.
func (c *Channel[T]) Receive() T {
	return c.items.WaitAndPop()
}

// ReceiveContext is Receive that returns ctx.Err() when ctx is done first.
func (c *Channel[T]) ReceiveContext(ctx context.Context) (T, error) {
	return c.items.WaitAndPopContext(ctx)
}

// TryReceive removes the oldest value or returns ErrEmptyQueue.
func (c *Channel[T]) TryReceive() (T, error) {
	return c.items.Pop()
}

// Len is the number of values waiting to be received.
func (c *Channel[T]) Len() int {
	return c.items.Size()
}

// Listen starts a goroutine calling fn with every value received from c until
// ctx is done.
func (c *Channel[T]) Listen(ctx context.Context, fn func(T)) *Receiver {
	r := &Receiver{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		for {
			if ctx.Err() != nil {
				return
			}
			v, err := c.items.WaitAndPopContext(ctx)
			if err != nil {
				return
			}
			fn(v)
		}
	}()
	return r
}

// Receiver is the handle of a goroutine started by Channel.Listen.
type Receiver struct {
	done chan struct{}
}

// Wait blocks until the receiving goroutine has returned.
func (r *Receiver) Wait() {
	<-r.done
}

// Done is closed once the receiving goroutine has returned.
func (r *Receiver) Done() <-chan struct{} {
	return r.done
}
