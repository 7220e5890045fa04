package concurrency

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
)

const DefaultIdleWait = time.Millisecond

// Handler processes one candidate popped from the queue.
type Handler func(workerID int, item string)

// WorkerPool runs a fixed number of workers that drain a Queue until the
// active check fails, the context ends, or the queue is closed and empty.
type WorkerPool struct {
	workers    []*Worker
	numWorkers int
	idleWait   time.Duration
	wg         sync.WaitGroup
	// startedAt is the Start time in Unix nanoseconds, read by GetMetrics
	// from other goroutines.
	startedAt atomic.Int64
}

type Worker struct {
	id        int
	metrics   *WorkerMetrics
	isWorking atomic.Bool
}

type WorkerMetrics struct {
	TasksCompleted atomic.Int64
}

func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	pool := &WorkerPool{
		workers:    make([]*Worker, numWorkers),
		numWorkers: numWorkers,
		idleWait:   DefaultIdleWait,
	}

	for i := 0; i < numWorkers; i++ {
		pool.workers[i] = &Worker{
			id:      i,
			metrics: &WorkerMetrics{},
		}
	}

	return pool
}

// SetIdleWait changes how long a worker waits on an empty queue before
// re-checking its stop conditions.
func (p *WorkerPool) SetIdleWait(d time.Duration) {
	if d > 0 {
		p.idleWait = d
	}
}

// Start launches the workers. active is polled before every pop.
func (p *WorkerPool) Start(ctx context.Context, queue *Queue, active func() bool, handle Handler) {
	p.startedAt.Store(time.Now().UnixNano())
	for _, worker := range p.workers {
		p.wg.Add(1)
		go worker.start(ctx, &p.wg, queue, active, handle, p.idleWait)
	}
}

// Wait blocks until every worker has exited.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

func (p *WorkerPool) Size() int {
	return p.numWorkers
}

// GetMetrics reads the live pool counters: workers currently hashing a
// candidate, candidates handled so far and the average rate since Start.
func (p *WorkerPool) GetMetrics() domain.ResourceMetrics {
	busy := 0
	var completed int64
	for _, worker := range p.workers {
		completed += worker.metrics.TasksCompleted.Load()
		if worker.isWorking.Load() {
			busy++
		}
	}

	m := domain.ResourceMetrics{
		ActiveThreads: busy,
		TotalAttempts: completed,
		LastUpdated:   time.Now(),
	}
	if started := p.startedAt.Load(); started != 0 {
		if elapsed := time.Since(time.Unix(0, started)).Seconds(); elapsed > 0 {
			m.AttemptsPerSec = int64(float64(completed) / elapsed)
		}
	}
	return m
}

// WorkerCompleted returns the number of candidates each worker handled.
func (p *WorkerPool) WorkerCompleted() []int64 {
	out := make([]int64, len(p.workers))
	for i, w := range p.workers {
		out[i] = w.metrics.TasksCompleted.Load()
	}
	return out
}

func (w *Worker) start(ctx context.Context, wg *sync.WaitGroup, queue *Queue, active func() bool, handle Handler, idleWait time.Duration) {
	defer wg.Done()

	for active() && ctx.Err() == nil {
		item, ok := queue.TryPop()
		if !ok {
			if queue.Drained() {
				return
			}
			queue.Wait(idleWait)
			continue
		}

		w.isWorking.Store(true)
		handle(w.id, item)
		w.metrics.TasksCompleted.Add(1)
		w.isWorking.Store(false)
	}
}
