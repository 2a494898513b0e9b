package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// taskTimeout bounds a single task. Collectors talking to slow cloud
// APIs are cut off rather than blocking the whole cycle.
const taskTimeout = 60 * time.Second

// Task represents a unit of work to be executed
type Task func(ctx context.Context) error

// PoolMetrics provides metrics about the worker pool's performance
type PoolMetrics struct {
	TotalTasks       int64
	CompletedTasks   int64
	FailedTasks      int64
	TotalExecutionMs int64
}

// Pool manages a pool of workers for executing tasks concurrently
type Pool struct {
	maxWorkers int
	tasks      chan Task
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc

	totalTasks       int64
	completedTasks   int64
	failedTasks      int64
	totalExecutionMs int64
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(maxWorkers int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		maxWorkers: maxWorkers,
		tasks:      make(chan Task, maxWorkers*2),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop stops the worker pool and waits for in-flight tasks to finish
func (p *Pool) Stop() {
	p.cancel()
	close(p.tasks)
	p.wg.Wait()
}

// Metrics returns a snapshot of the pool's counters
func (p *Pool) Metrics() PoolMetrics {
	return PoolMetrics{
		TotalTasks:       atomic.LoadInt64(&p.totalTasks),
		CompletedTasks:   atomic.LoadInt64(&p.completedTasks),
		FailedTasks:      atomic.LoadInt64(&p.failedTasks),
		TotalExecutionMs: atomic.LoadInt64(&p.totalExecutionMs),
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for task := range p.tasks {
		start := time.Now()

		taskCtx, cancel := context.WithTimeout(p.ctx, taskTimeout)
		err := task(taskCtx)
		cancel()

		atomic.AddInt64(&p.totalExecutionMs, time.Since(start).Milliseconds())
		if err != nil {
			atomic.AddInt64(&p.failedTasks, 1)
		} else {
			atomic.AddInt64(&p.completedTasks, 1)
		}
	}
}

// ExecuteTasks runs a slice of tasks concurrently and waits for all of
// them to complete. Task errors are counted, not returned; callers log
// failures inside the task itself.
func (p *Pool) ExecuteTasks(tasks []Task) {
	var wg sync.WaitGroup
	wg.Add(len(tasks))

	atomic.AddInt64(&p.totalTasks, int64(len(tasks)))

	for _, t := range tasks {
		task := t
		p.tasks <- func(ctx context.Context) error {
			defer wg.Done()
			return task(ctx)
		}
	}

	wg.Wait()
}

// Run is a convenience wrapper: start a pool, execute the tasks, stop.
func Run(maxWorkers int, tasks []Task) PoolMetrics {
	pool := NewPool(maxWorkers)
	pool.Start()
	pool.ExecuteTasks(tasks)
	pool.Stop()
	return pool.Metrics()
}
