package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type queueFactory func() Queue[int]

var variants = []struct {
	name    string
	factory queueFactory
}{
	{"Blocking", func() Queue[int] { return NewBlocking[int]() }},
	{"ConcurrentRead", func() Queue[int] { return NewConcurrentRead[int]() }},
	{"WritePriority", func() Queue[int] { return NewWritePriority[int]() }},
}

type acceptanceTest struct {
	name string
	test func(t *testing.T, newQueue queueFactory)
}

func TestQueueImplementations(t *testing.T) {
	tests := []acceptanceTest{
		{"keeps fifo order", testFIFO},
		{"reports empty queue", testEmptyErrors},
		{"peeks front and back", testPeek},
		{"clears all elements", testClear},
		{"wait and pop blocks until push", testWaitAndPopBlocks},
		{"wait and pop honours context", testWaitAndPopContext},
		{"peek waiter does not swallow wake up", testPeekWaiterForwardsSignal},
		{"wait and back sees newest element", testWaitAndBack},
		{"delivers each element exactly once", testConcurrentConsumers},
	}

	for _, v := range variants {
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s/%s", v.name, tt.name), func(t *testing.T) {
				tt.test(t, v.factory)
			})
		}
	}
}

func testFIFO(t *testing.T, newQueue queueFactory) {
	q := newQueue()
	for i := range 100 {
		q.Push(i)
	}
	require.Equal(t, 100, q.Size())
	for i := range 100 {
		assert.Equal(t, i, q.WaitAndPop())
	}
	assert.True(t, q.Empty())
}

func testEmptyErrors(t *testing.T, newQueue queueFactory) {
	q := newQueue()
	_, err := q.Pop()
	require.ErrorIs(t, err, ErrEmpty)
	_, err = q.Front()
	require.ErrorIs(t, err, ErrEmpty)
	_, err = q.Back()
	require.ErrorIs(t, err, ErrEmpty)
	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Size())
}

func testPeek(t *testing.T, newQueue queueFactory) {
	q := newQueue()
	q.Push(1)
	q.Push(2)
	q.Push(3)

	front, err := q.Front()
	require.NoError(t, err)
	assert.Equal(t, 1, front)

	back, err := q.Back()
	require.NoError(t, err)
	assert.Equal(t, 3, back)

	assert.Equal(t, 3, q.Size(), "peeking must not remove")
	assert.Equal(t, 1, q.WaitAndFront())
}

func testClear(t *testing.T, newQueue queueFactory) {
	q := newQueue()
	for i := range 10 {
		q.Push(i)
	}
	q.Clear()
	assert.True(t, q.Empty())

	q.Push(42)
	v, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func testWaitAndPopBlocks(t *testing.T, newQueue queueFactory) {
	q := newQueue()
	got := make(chan int, 1)
	go func() { got <- q.WaitAndPop() }()

	select {
	case v := <-got:
		t.Fatalf("WaitAndPop returned %d before any push", v)
	case <-time.After(50 * time.Millisecond):
	}

	q.Push(7)
	select {
	case v := <-got:
		assert.Equal(t, 7, v)
	case <-time.After(time.Second):
		t.Fatal("WaitAndPop did not return after push")
	}
}

func testWaitAndPopContext(t *testing.T, newQueue queueFactory) {
	q := newQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := q.WaitAndPopContext(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	q.Push(3)
	v, err := q.WaitAndPopContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func testPeekWaiterForwardsSignal(t *testing.T, newQueue queueFactory) {
	q := newQueue()
	var wg sync.WaitGroup
	wg.Add(2)
	peeked := make(chan int, 1)
	popped := make(chan int, 1)
	// the peeker parks first so it is the one woken by the push
	go func() {
		defer wg.Done()
		peeked <- q.WaitAndFront()
	}()
	time.Sleep(20 * time.Millisecond)
	go func() {
		defer wg.Done()
		popped <- q.WaitAndPop()
	}()
	time.Sleep(20 * time.Millisecond)

	q.Push(9)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a waiter was left asleep after a single push")
	}
	assert.Equal(t, 9, <-peeked)
	assert.Equal(t, 9, <-popped)
}

func testWaitAndBack(t *testing.T, newQueue queueFactory) {
	q := newQueue()
	got := make(chan int, 1)
	go func() { got <- q.WaitAndBack() }()
	time.Sleep(10 * time.Millisecond)
	q.Push(5)

	select {
	case v := <-got:
		assert.Equal(t, 5, v)
	case <-time.After(time.Second):
		t.Fatal("WaitAndBack did not return after push")
	}
}

func testConcurrentConsumers(t *testing.T, newQueue queueFactory) {
	const (
		producers = 4
		perProd   = 250
		consumers = 4
	)
	q := newQueue()
	var seen sync.Map
	var count atomic.Int64

	var cwg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for range consumers {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				v, err := q.WaitAndPopContext(ctx)
				if err != nil {
					return
				}
				_, dup := seen.LoadOrStore(v, struct{}{})
				assert.False(t, dup, "value %d delivered twice", v)
				count.Add(1)
			}
		}()
	}

	var pwg sync.WaitGroup
	for p := range producers {
		pwg.Add(1)
		go func() {
			defer pwg.Done()
			for i := range perProd {
				q.Push(p*perProd + i)
			}
		}()
	}
	pwg.Wait()

	require.Eventually(t, func() bool {
		return count.Load() == producers*perProd
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	cwg.Wait()
}

func TestQueue_FIFOProperty(t *testing.T) {
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				values := rapid.SliceOf(rapid.Int()).Draw(rt, "values")
				q := v.factory()
				for _, x := range values {
					q.Push(x)
				}
				if q.Size() != len(values) {
					rt.Fatalf("size %d, want %d", q.Size(), len(values))
				}
				for i, want := range values {
					if got := q.WaitAndPop(); got != want {
						rt.Fatalf("pop %d: got %d, want %d", i, got, want)
					}
				}
				if !q.Empty() {
					rt.Fatalf("queue not empty after draining")
				}
			})
		})
	}
}

func TestQueue_InterleavedProperty(t *testing.T) {
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				q := v.factory()
				var model []int
				ops := rapid.SliceOfN(rapid.IntRange(-1, 100), 1, 200).Draw(rt, "ops")
				for _, op := range ops {
					if op < 0 {
						got, err := q.Pop()
						if len(model) == 0 {
							if err == nil {
								rt.Fatalf("pop on empty queue returned %d", got)
							}
							continue
						}
						if err != nil || got != model[0] {
							rt.Fatalf("pop got (%d, %v), want %d", got, err, model[0])
						}
						model = model[1:]
						continue
					}
					q.Push(op)
					model = append(model, op)
				}
				if q.Size() != len(model) {
					rt.Fatalf("size %d, want %d", q.Size(), len(model))
				}
			})
		})
	}
}

// readersHammer runs tight Front/Empty loops until stop is closed.
func readersHammer(q Queue[int], readers int, stop <-chan struct{}) *sync.WaitGroup {
	var wg sync.WaitGroup
	for range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_, _ = q.Front()
				_ = q.Empty()
			}
		}()
	}
	return &wg
}

func TestWritePriority_NoWriterStarvation(t *testing.T) {
	q := NewWritePriority[int]()
	q.Push(0)

	stop := make(chan struct{})
	wg := readersHammer(q, 16, stop)
	defer func() {
		close(stop)
		wg.Wait()
	}()
	time.Sleep(20 * time.Millisecond)

	pushed := make(chan struct{})
	go func() {
		for i := 1; i <= 100; i++ {
			q.Push(i)
		}
		close(pushed)
	}()

	select {
	case <-pushed:
	case <-time.After(2 * time.Second):
		t.Fatal("writer starved by concurrent readers")
	}
	back, err := q.Back()
	require.NoError(t, err)
	assert.Equal(t, 100, back)
}

// The concurrent-read variant gives no starvation guarantee of its own; it
// inherits whatever sync.RWMutex does, which blocks new readers once a writer
// waits. This test records the writer latency under the same workload and
// asserts nothing.
func TestConcurrentRead_ReportsWriterLatencyUnderReadLoad(t *testing.T) {
	q := NewConcurrentRead[int]()
	stop := make(chan struct{})
	wg := readersHammer(q, 16, stop)
	defer func() {
		close(stop)
		wg.Wait()
	}()

	start := time.Now()
	pushed := make(chan struct{})
	go func() {
		for i := range 100 {
			q.Push(i)
		}
		close(pushed)
	}()
	select {
	case <-pushed:
		t.Logf("concurrent-read writer finished in %s", time.Since(start))
	case <-time.After(2 * time.Second):
		t.Log("concurrent-read writer still waiting after 2s; no starvation guarantee for this variant")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"blocking", KindBlocking, false},
		{"", KindBlocking, false},
		{"concurrent-read", KindConcurrentRead, false},
		{"Write-Priority", KindWritePriority, false},
		{"write", KindWritePriority, false},
		{"lifo", KindBlocking, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, func() Kind { k, _ := ParseKind(got.String()); return k }())
		})
	}
}

func TestNew_SelectsVariant(t *testing.T) {
	assert.IsType(t, &Blocking[int]{}, New[int](KindBlocking))
	assert.IsType(t, &ConcurrentRead[int]{}, New[int](KindConcurrentRead))
	assert.IsType(t, &WritePriority[int]{}, New[int](KindWritePriority))
	assert.IsType(t, &Blocking[int]{}, New[int](Kind(99)))
}

func TestBuffer_Compacts(t *testing.T) {
	var b buffer[int]
	for i := range 1000 {
		b.push(i)
	}
	for i := range 900 {
		require.Equal(t, i, b.pop())
	}
	assert.Equal(t, 100, b.len())
	assert.LessOrEqual(t, b.head, 32+1)
	assert.Equal(t, 900, b.front())
	assert.Equal(t, 999, b.back())
}
