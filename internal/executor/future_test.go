package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_Complete(t *testing.T) {
	fut := NewFuture[string]()
	go fut.Complete("done")

	v, err := fut.Get()
	require.NoError(t, err)
	assert.Equal(t, "done", v)

	select {
	case <-fut.Done():
	default:
		t.Fatal("Done should be closed after completion")
	}
}

func TestFuture_FirstResolutionWins(t *testing.T) {
	fut := NewFuture[int]()
	fut.Error(errors.New("first"))
	fut.Complete(5)
	fut.Error(errors.New("second"))

	v, err := fut.Get()
	require.EqualError(t, err, "first")
	assert.Zero(t, v)
}

func TestFuture_ConcurrentGetters(t *testing.T) {
	fut := NewFuture[int]()
	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := fut.Get()
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	fut.Complete(42)
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}

func TestFuture_GetContext(t *testing.T) {
	fut := NewFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := fut.GetContext(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	fut.Complete(1)
	v, err := fut.GetContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
