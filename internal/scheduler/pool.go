// Package scheduler runs the article extraction jobs on a bounded goroutine
// pool.
//
// Jobs are values and results are values: nothing mutable is shared between
// workers, and a panicking job becomes a result instead of taking the run
// down.
package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/magazine-corpus/internal/metrics"
)

// DefaultWorkers leaves two cores to the orchestrating goroutines.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()-2)
}

// Pool fans jobs out to Workers goroutines through a queue of QueueSize
// slots. Work must be safe to call concurrently. Recover converts a panic
// value raised by Work into a result.
type Pool[J, R any] struct {
	Workers   int
	QueueSize int
	Work      func(J) R
	Recover   func(job J, panicValue any) R
	Logger    *zap.Logger
}

type task[J any] struct {
	index int
	job   J
}

// Run executes every job and returns the results in job order. It waits
// for every submitted job. If submission fails because ctx ended, the
// failure is logged with a stack trace and Run returns no results.
func (p Pool[J, R]) Run(ctx context.Context, jobs []J) []R {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	workers = min(workers, max(1, len(jobs)))
	size := p.QueueSize
	if size <= 0 {
		size = workers * 2
	}

	q := newQueue[task[J]](size)
	results := make([]R, len(jobs))
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				t, err := q.Dequeue(context.Background())
				if err != nil {
					return
				}
				results[t.index] = p.invoke(t.job)
			}
		}()
	}

	var submitErr error
	for i, job := range jobs {
		if err := q.Enqueue(ctx, task[J]{index: i, job: job}); err != nil {
			submitErr = fmt.Errorf("submit job %d of %d: %w", i+1, len(jobs), err)
			break
		}
	}
	q.Close()
	wg.Wait()

	if submitErr != nil {
		logger.Error("extraction batch aborted",
			zap.Error(submitErr),
			zap.Int("jobs", len(jobs)),
			zap.Stack("stack"))
		return nil
	}
	logger.Debug("extraction batch finished",
		zap.Int("jobs", len(jobs)),
		zap.Int("workers", workers))
	return results
}

func (p Pool[J, R]) invoke(job J) (result R) {
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()
	defer func() {
		if v := recover(); v != nil {
			metrics.ObserveExtractJob("recovered")
			if p.Recover != nil {
				result = p.Recover(job, v)
			}
		}
	}()
	result = p.Work(job)
	metrics.ObserveExtractJob("done")
	return result
}
