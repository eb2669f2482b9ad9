package worker

import (
	"context"
	"sync"
)

// Job is a unit of work producing a T
type Job[T any] interface {
	Execute(ctx context.Context) T
}

// JobFunc adapts a function to Job
type JobFunc[T any] func(ctx context.Context) T

// Execute calls f
func (f JobFunc[T]) Execute(ctx context.Context) T {
	return f(ctx)
}

type indexedJob[T any] struct {
	index int
	job   Job[T]
}

type indexedResult[T any] struct {
	index  int
	result T
}

// Pool runs jobs on a fixed number of workers and returns results in
// submission order
type Pool[T any] struct {
	workers int
}

// NewPool creates a pool; non-positive worker counts become 1
func NewPool[T any](workers int) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}
	return &Pool[T]{workers: workers}
}

// Workers returns the configured worker count
func (p *Pool[T]) Workers() int {
	return p.workers
}

// Run executes every job and blocks until all finish or ctx is done.
// results[i] belongs to jobs[i]; jobs never started because ctx ended keep
// the zero value and ok[i] is false.
func (p *Pool[T]) Run(ctx context.Context, jobs []Job[T]) (results []T, ok []bool) {
	results = make([]T, len(jobs))
	ok = make([]bool, len(jobs))
	if len(jobs) == 0 {
		return results, ok
	}

	queue := make(chan indexedJob[T], p.workers*2)
	out := make(chan indexedResult[T], p.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ij := range queue {
				if ctx.Err() != nil {
					continue
				}
				out <- indexedResult[T]{index: ij.index, result: ij.job.Execute(ctx)}
			}
		}()
	}

	go func() {
		defer close(queue)
		for i, job := range jobs {
			select {
			case <-ctx.Done():
				return
			case queue <- indexedJob[T]{index: i, job: job}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	for r := range out {
		results[r.index] = r.result
		ok[r.index] = true
	}

	return results, ok
}
