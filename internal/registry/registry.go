// Package registry provides a lock-free name keyed store. The broker keeps one
// registry per concern (channels, event handlers, channel listeners) so traffic
// on one never contends with another.
package registry

import "github.com/alphadose/haxmap"

type Registry[T any] interface {
	Get(name string) (T, bool)
	// GetOrAdd returns the stored value for name, creating it with valueFn when
	// absent. The bool reports whether the value already existed. Concurrent
	// callers for the same name all observe the single stored value.
	GetOrAdd(name string, valueFn func() T) (T, bool)
	Len() int
	// Range calls fn for every entry until fn returns false. Entries added
	// during the walk may or may not be visited.
	Range(fn func(name string, value T) bool)
}

type registry[T any] struct {
	values *haxmap.Map[string, T]
}

func New[T any]() Registry[T] {
	return &registry[T]{
		values: haxmap.New[string, T](),
	}
}

func (r *registry[T]) Get(name string) (T, bool) {
	return r.values.Get(name)
}

func (r *registry[T]) GetOrAdd(name string, valueFn func() T) (T, bool) {
	return r.values.GetOrCompute(name, valueFn)
}

func (r *registry[T]) Len() int {
	return int(r.values.Len())
}

func (r *registry[T]) Range(fn func(name string, value T) bool) {
	r.values.ForEach(fn)
}
