// Package worker runs independent documents through the pipeline on a
// bounded set of goroutines.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work producing a result of type R.
type Job[R any] interface {
	Execute(ctx context.Context) R
}

// JobFunc adapts a function to Job.
type JobFunc[R any] func(ctx context.Context) R

// Execute calls f.
func (f JobFunc[R]) Execute(ctx context.Context) R { return f(ctx) }

// Pool runs jobs on a fixed number of goroutines and streams their
// results. Results arrive in completion order.
type Pool[R any] struct {
	workers   int
	queue     chan Job[R]
	results   chan R
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool whose jobs run under a context derived from
// parent; cancelling parent stops the workers. Fewer than one worker
// means one.
func NewPool[R any](parent context.Context, workers int) *Pool[R] {
	workers = max(workers, 1)
	ctx, cancel := context.WithCancel(parent)
	return &Pool[R]{
		workers: workers,
		queue:   make(chan Job[R], workers*2),
		results: make(chan R, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (p *Pool[R]) Start() {
	for range p.workers {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool[R]) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			res := job.Execute(p.ctx)
			select {
			case p.results <- res:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It returns false once the pool is shut down or
// its parent context is done.
func (p *Pool[R]) Submit(job Job[R]) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.queue <- job:
		return true
	}
}

// Results is the result stream. It is closed after CloseQueue once the
// workers drain, or on Shutdown.
func (p *Pool[R]) Results() <-chan R {
	return p.results
}

// CloseQueue marks the end of submissions.
func (p *Pool[R]) CloseQueue() {
	close(p.queue)
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()
}

// Wait closes the queue and collects every remaining result.
func (p *Pool[R]) Wait() []R {
	p.CloseQueue()
	var out []R
	for res := range p.results {
		out = append(out, res)
	}
	return out
}

// Shutdown cancels running jobs and stops the workers.
func (p *Pool[R]) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool[R]) closeResults() {
	p.closeOnce.Do(func() { close(p.results) })
}
