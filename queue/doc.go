// Package queue implements a family of thread-safe FIFO queues that share one
// contract and differ only in how they synchronize readers and writers.
//
// Variants:
//   - Blocking: a single mutex guards every operation. Readers block each other.
//   - ConcurrentRead: a read/write lock lets Front, Back, Empty and Size run
//     concurrently. Mutations take the lock exclusively.
//   - WritePriority: a readers-writers gate with a waiting-writers counter. New
//     readers are held back while any writer is waiting, so a steady stream of
//     readers cannot starve a writer.
//
// Every variant removes elements in the order they were pushed. The Wait*
// operations block until an element is available and re-check the predicate
// after every wake up.
//
// Example usage:
//
//	q := queue.New[string](queue.KindWritePriority)
//	q.Push("hello")
//
//	v, err := q.Pop()
//	if errors.Is(err, queue.ErrEmpty) {
//	    // nothing queued
//	}
//
//	// block until a value shows up or ctx is done
//	v, err = q.WaitAndPopContext(ctx)
//
// Empty and Size are snapshots. Under concurrent writers they may be stale by
// the time they return, so use them for heuristics only.
package queue
