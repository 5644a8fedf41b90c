package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrWorkerClosed is returned for jobs submitted after Close.
var ErrWorkerClosed = errors.New("fetcher: worker closed")

type result struct {
	body []byte
	err  error
}

type job struct {
	ctx context.Context
	fn  func(context.Context) ([]byte, error)
	out chan result
}

// Worker runs jobs one at a time on a single goroutine, so no two fetches
// ever overlap.
type Worker struct {
	jobs chan job
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// NewWorker starts the worker goroutine.
func NewWorker() *Worker {
	w := &Worker{
		jobs: make(chan job),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		select {
		case j := <-w.jobs:
			j.out <- run(j)
		case <-w.quit:
			return
		}
	}
}

func run(j job) (r result) {
	defer func() {
		if p := recover(); p != nil {
			r = result{err: fmt.Errorf("fetcher: job panic: %v", p)}
		}
	}()
	body, err := j.fn(j.ctx)
	return result{body: body, err: err}
}

// Do queues fn and waits for its result. When ctx ends first, Do returns
// ctx.Err() at once; a job already running finishes on its own and its
// result is discarded.
func (w *Worker) Do(ctx context.Context, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	out := make(chan result, 1)
	select {
	case w.jobs <- job{ctx: ctx, fn: fn, out: out}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.quit:
		return nil, ErrWorkerClosed
	}

	select {
	case r := <-out:
		return r.body, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting jobs and waits for the running one, if any.
func (w *Worker) Close() {
	w.once.Do(func() { close(w.quit) })
	<-w.done
}
