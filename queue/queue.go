package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty is returned by the non-blocking operations when the queue holds no element.
var ErrEmpty = errors.New("queue is empty")

// Queue is the contract shared by all variants.
type Queue[T any] interface {
	// Push appends v. It always succeeds.
	Push(v T)
	// Pop removes and returns the oldest element, or ErrEmpty.
	Pop() (T, error)
	// WaitAndPop blocks until an element is available, then removes and returns it.
	WaitAndPop() T
	// WaitAndPopContext is WaitAndPop that gives up with ctx.Err() when ctx is done.
	WaitAndPopContext(ctx context.Context) (T, error)
	// Front returns the oldest element without removing it, or ErrEmpty.
	Front() (T, error)
	// WaitAndFront blocks until an element is available and returns the oldest one.
	WaitAndFront() T
	// Back returns the newest element without removing it, or ErrEmpty.
	Back() (T, error)
	// WaitAndBack blocks until an element is available and returns the newest one.
	WaitAndBack() T
	Empty() bool
	Size() int
	// Clear discards all elements.
	Clear()
}

// Kind selects a queue variant.
type Kind int

const (
	KindBlocking Kind = iota
	KindConcurrentRead
	KindWritePriority
)

func (k Kind) String() string {
	switch k {
	case KindBlocking:
		return "blocking"
	case KindConcurrentRead:
		return "concurrent-read"
	case KindWritePriority:
		return "write-priority"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps the textual form used by flags and config files onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blocking", "":
		return KindBlocking, nil
	case "concurrent-read", "concurrentread", "read":
		return KindConcurrentRead, nil
	case "write-priority", "writepriority", "write":
		return KindWritePriority, nil
	default:
		return KindBlocking, fmt.Errorf("unknown queue kind %q", s)
	}
}

// New creates an empty queue of the requested kind. Unknown kinds fall back to Blocking.
func New[T any](kind Kind) Queue[T] {
	switch kind {
	case KindConcurrentRead:
		return NewConcurrentRead[T]()
	case KindWritePriority:
		return NewWritePriority[T]()
	default:
		return NewBlocking[T]()
	}
}
