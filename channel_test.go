package conduit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/casualjim/conduit/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel(t *testing.T) {
	kinds := []queue.Kind{queue.KindBlocking, queue.KindConcurrentRead, queue.KindWritePriority}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			t.Run("send and receive in order", func(t *testing.T) {
				ch := newChannel[int]("c", kind)
				assert.Equal(t, "c", ch.Name())
				for i := range 5 {
					ch.Send(i)
				}
				assert.Equal(t, 5, ch.Len())
				for i := range 5 {
					assert.Equal(t, i, ch.Receive())
				}
			})

			t.Run("try receive on empty", func(t *testing.T) {
				ch := newChannel[int]("c", kind)
				_, err := ch.TryReceive()
				require.ErrorIs(t, err, ErrEmptyQueue)
			})

			t.Run("receive context", func(t *testing.T) {
				ch := newChannel[int]("c", kind)
				ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
				defer cancel()
				_, err := ch.ReceiveContext(ctx)
				require.ErrorIs(t, err, context.DeadlineExceeded)
			})
		})
	}
}

func TestChannel_Listen(t *testing.T) {
	t.Run("delivers every value", func(t *testing.T) {
		ch := newChannel[string]("c", queue.KindBlocking)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var mu sync.Mutex
		var got []string
		r := ch.Listen(ctx, func(v string) {
			mu.Lock()
			got = append(got, v)
			mu.Unlock()
		})

		for _, v := range []string{"a", "b", "c"} {
			ch.Send(v)
		}
		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(got) == 3
		}, time.Second, 5*time.Millisecond)

		cancel()
		r.Wait()
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})

	t.Run("stops when blocked", func(t *testing.T) {
		ch := newChannel[int]("c", queue.KindWritePriority)
		ctx, cancel := context.WithCancel(context.Background())
		r := ch.Listen(ctx, func(int) {})
		time.Sleep(10 * time.Millisecond)
		cancel()
		select {
		case <-r.Done():
		case <-time.After(time.Second):
			t.Fatal("receiver did not stop")
		}
	})
}
