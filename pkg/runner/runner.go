// Package runner provides the fixed-size worker pool that processes
// installations concurrently. Jobs are independent: the pool never cancels
// remaining jobs when one fails, it always joins all of them.
package runner

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// parallelismFactor scales the pool beyond the available parallelism. The
// jobs are dominated by network and disk I/O.
const parallelismFactor = 2

// Job is one unit of work.
type Job func(ctx context.Context)

// PoolSize computes the number of workers. A non-positive override selects
// the automatic maximum; any override is clamped to [1, parallelism*factor].
func PoolSize(override int) int {
	maxWorkers := runtime.NumCPU() * parallelismFactor
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if override <= 0 {
		return maxWorkers
	}
	if override > maxWorkers {
		return maxWorkers
	}
	return override
}

// Pool is a fixed-size worker pool.
type Pool struct {
	size      int
	processed atomic.Uint64

	// OnProgress, when set, is called after every finished job with the
	// number of processed jobs and the total.
	OnProgress func(processed, total int)
}

// New creates a pool with the given number of workers. Sizes below one are
// raised to one.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{size: size}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Processed returns the number of jobs finished so far.
func (p *Pool) Processed() uint64 {
	return p.processed.Load()
}

// Run executes all jobs on the pool and blocks until every job has finished.
func (p *Pool) Run(ctx context.Context, jobs []Job) {
	if len(jobs) == 0 {
		return
	}

	queue := make(chan Job)
	var wg sync.WaitGroup

	for i := 0; i < p.size; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				job(ctx)
				done := p.processed.Add(1)
				if p.OnProgress != nil {
					p.OnProgress(int(done), len(jobs))
				}
			}
		}()
	}

	for _, job := range jobs {
		queue <- job
	}
	close(queue)
	wg.Wait()
}
