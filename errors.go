package conduit

import (
	"errors"

	"github.com/casualjim/conduit/internal/executor"
	"github.com/casualjim/conduit/queue"
)

var (
	// ErrEmptyQueue is returned by non-blocking receives on an empty channel.
	ErrEmptyQueue = queue.ErrEmpty
	// ErrTypeMismatch is returned when a channel name is requested with a type
	// other than the one it was created with.
	ErrTypeMismatch = errors.New("channel type mismatch")
	// ErrPoolStopped is returned by publishes after the broker was closed.
	ErrPoolStopped = executor.ErrPoolStopped
	// ErrTaskFailed matches the error of a listener delivery that failed.
	ErrTaskFailed = executor.ErrTaskFailed
	// ErrLoopState is returned by Run when the broker is not idle.
	ErrLoopState = errors.New("event loop is not idle")
)
