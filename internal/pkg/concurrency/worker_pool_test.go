package concurrency

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, q *Queue, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, q.Push(context.Background(), strconv.Itoa(i)))
	}
}

func TestWorkerPool_DrainsQueue(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		t.Run(strconv.Itoa(workers), func(t *testing.T) {
			q := NewQueue(0)
			fill(t, q, 1000)
			q.Close()

			var handled sync.Map
			var count atomic.Int64

			pool := NewWorkerPool(workers)
			pool.Start(context.Background(), q, func() bool { return true }, func(_ int, item string) {
				_, dup := handled.LoadOrStore(item, true)
				assert.False(t, dup)
				count.Add(1)
			})
			pool.Wait()

			assert.Equal(t, int64(1000), count.Load())
			assert.Equal(t, workers, pool.Size())

			var total int64
			for _, n := range pool.WorkerCompleted() {
				total += n
			}
			assert.Equal(t, int64(1000), total)

			m := pool.GetMetrics()
			assert.Equal(t, int64(1000), m.TotalAttempts)
			assert.Zero(t, m.ActiveThreads)
		})
	}
}

func TestWorkerPool_StopsWhenInactive(t *testing.T) {
	q := NewQueue(0)
	fill(t, q, 10000)

	var active atomic.Bool
	active.Store(true)
	var count atomic.Int64

	pool := NewWorkerPool(4)
	pool.Start(context.Background(), q, active.Load, func(_ int, _ string) {
		if count.Add(1) == 100 {
			active.Store(false)
		}
	})

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop")
	}

	// Each worker may finish the item it already popped.
	assert.LessOrEqual(t, count.Load(), int64(100+4))
	assert.Positive(t, q.Len())
}

func TestWorkerPool_WaitsOnOpenEmptyQueue(t *testing.T) {
	q := NewQueue(0)
	ctx, cancel := context.WithCancel(context.Background())

	pool := NewWorkerPool(2)
	pool.SetIdleWait(time.Millisecond)
	var count atomic.Int64
	pool.Start(ctx, q, func() bool { return true }, func(int, string) { count.Add(1) })

	require.NoError(t, q.Push(ctx, "late"))
	assert.Eventually(t, func() bool { return count.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	pool.Wait()
}

func TestWorkerPool_LiveMetrics(t *testing.T) {
	q := NewQueue(0)
	fill(t, q, 2)
	q.Close()

	pool := NewWorkerPool(2)
	assert.Zero(t, pool.GetMetrics().AttemptsPerSec, "no rate before Start")

	release := make(chan struct{})
	pool.Start(context.Background(), q, func() bool { return true }, func(int, string) { <-release })

	require.Eventually(t, func() bool { return pool.GetMetrics().ActiveThreads == 2 }, time.Second, time.Millisecond)
	assert.Zero(t, pool.GetMetrics().TotalAttempts)

	close(release)
	pool.Wait()

	m := pool.GetMetrics()
	assert.Zero(t, m.ActiveThreads)
	assert.Equal(t, int64(2), m.TotalAttempts)
	assert.False(t, m.LastUpdated.IsZero())
}
