package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/casualjim/conduit/pkg/slogx"
	"github.com/casualjim/conduit/pkg/uuidx"
	"github.com/casualjim/conduit/queue"
)

var (
	// ErrPoolStopped is returned by Submit once Shutdown has been called.
	ErrPoolStopped = errors.New("worker pool stopped")
	// ErrTaskFailed matches every *TaskError through errors.Is.
	ErrTaskFailed = errors.New("task failed")
)

// TaskError resolves the future of a task that returned an error or panicked.
type TaskError struct {
	TaskID string
	Err    error
	Panic  any
}

func (e *TaskError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("task %s panicked: %v", e.TaskID, e.Panic)
	}
	return fmt.Sprintf("task %s failed: %v", e.TaskID, e.Err)
}

func (e *TaskError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTaskFailed}
	}
	return []error{ErrTaskFailed, e.Err}
}

type task struct {
	id  string
	run func()
}

// Pool runs submitted tasks on a fixed number of goroutines.
//
// Tasks are dequeued in submission order by whichever worker is free first, so
// completion order is not guaranteed. Shutdown rejects new work, lets the
// workers drain everything already queued and then joins them.
type Pool struct {
	tasks   queue.Queue[task]
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  *slog.Logger
	workers int

	mu      sync.Mutex
	stopped bool
}

// NewPool starts workers goroutines. Values below one are raised to one. A nil
// logger uses slog.Default().
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		tasks:   queue.NewBlocking[task](),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.With(slogx.LoggerName("executor")),
		workers: workers,
	}
	for i := range workers {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

// Submit queues fn and returns a future for its result. An error returned by
// fn, or a panic inside it, resolves the future with a *TaskError.
func Submit[T any](p *Pool, fn func() (T, error)) (Future[T], error) {
	fut := NewFuture[T]()
	id := uuidx.NewString()
	t := task{
		id: id,
		run: func() {
			defer func() {
				if r := recover(); r != nil {
					fut.Error(&TaskError{TaskID: id, Panic: r})
				}
			}()
			v, err := fn()
			if err != nil {
				fut.Error(&TaskError{TaskID: id, Err: err})
				return
			}
			fut.Complete(v)
		},
	}
	if err := p.enqueue(t); err != nil {
		return nil, err
	}
	return fut, nil
}

// Go queues fn without a result handle.
func (p *Pool) Go(fn func()) error {
	_, err := Submit(p, func() (struct{}, error) {
		fn()
		return struct{}{}, nil
	})
	return err
}

func (p *Pool) enqueue(t task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrPoolStopped
	}
	p.tasks.Push(t)
	return nil
}

func (p *Pool) worker(n int) {
	defer p.wg.Done()
	for {
		// pops keep succeeding after cancel until the queue is empty
		t, err := p.tasks.WaitAndPopContext(p.ctx)
		if err != nil {
			p.logger.Debug("worker exiting", slog.Int("worker", n))
			return
		}
		t.run()
	}
}

// Shutdown stops accepting tasks, waits for every queued task to finish and
// joins the workers. It is safe to call more than once.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	already := p.stopped
	p.stopped = true
	p.mu.Unlock()

	if !already {
		p.logger.Debug("shutting down", slog.Int("pending", p.tasks.Size()))
		p.cancel()
	}
	p.wg.Wait()
}

// Stopped reports whether Shutdown has been called.
func (p *Pool) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// Workers is the fixed number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Pending is the number of queued tasks not yet picked up by a worker.
func (p *Pool) Pending() int {
	return p.tasks.Size()
}
