// Package executor provides the fixed-size worker pool the broker uses to fan
// channel deliveries out concurrently, together with the Future/Promise pair
// that carries each task's result back to the submitter.
//
// Design decisions:
//   - Fixed size: the number of worker goroutines is chosen at construction
//   - FIFO dequeue: tasks wait in a queue.Blocking and are picked up in
//     submission order by the first free worker
//   - Isolated failures: an error or panic in one task resolves that task's
//     future with a *TaskError and never reaches the pool or other tasks
//   - Deterministic shutdown: Shutdown rejects new work with ErrPoolStopped,
//     runs everything already queued and joins every worker
//
// Key components:
//
//   - Pool: the worker goroutines and their task queue
//     ├── Submit: queue a func() (T, error) and get a Future[T]
//     ├── Go: queue a func() without a result handle
//     └── Shutdown: drain and join
//
//   - Future/Promise pattern:
//     ├── CompletableFuture: combined interface held by the pool
//     ├── Promise: write side, first resolution wins
//     └── Future: read side, Get blocks and GetContext can give up
//
// Example usage:
//
//	pool := executor.NewPool(4, logger)
//	defer pool.Shutdown()
//
//	fut, err := executor.Submit(pool, func() (int, error) {
//	    return compute(), nil
//	})
//	if err != nil {
//	    return err // ErrPoolStopped
//	}
//	v, err := fut.Get()
//	if errors.Is(err, executor.ErrTaskFailed) {
//	    // the task returned an error or panicked
//	}
package executor
