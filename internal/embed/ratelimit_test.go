package embed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_AcquireWithinCapacitySucceedsImmediately(t *testing.T) {
	b := NewTokenBucket(600, 5) // capacity 50
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, b.Acquire(ctx, 5))
}

func TestTokenBucket_AcquireBlocksUntilRefill(t *testing.T) {
	b := NewTokenBucket(600, 1) // capacity 10, refill 10/s
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	require.NoError(t, b.Acquire(ctx, 10))

	start := time.Now()
	require.NoError(t, b.Acquire(ctx, 5))
	assert.Greater(t, time.Since(start), 200*time.Millisecond)
}

func TestTokenBucket_RespectsFIFOOrder(t *testing.T) {
	b := NewTokenBucket(600, 1)
	ctx := context.Background()
	require.NoError(t, b.Acquire(ctx, 10)) // drain

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 1; i <= 3; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(time.Duration(i) * 5 * time.Millisecond)
			_ = b.Acquire(ctx, 2)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestTokenBucket_AcquireReturnsOnCancel(t *testing.T) {
	b := NewTokenBucket(60, 1) // capacity 1, refill 1/s
	require.NoError(t, b.Acquire(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := b.Acquire(ctx, 100)
	require.Error(t, err)
}
