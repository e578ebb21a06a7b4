package engine

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// task is one indexed call of a batch.
type task struct {
	ctx  context.Context
	i    int
	fn   func(ctx context.Context, i int) error
	errs []error
	wg   *sync.WaitGroup
}

// WorkerPool keeps a fixed set of goroutines for partition batches so
// repeated runs of a Kernel do not respawn them.
type WorkerPool struct {
	size  int
	tasks chan task

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewWorkerPool starts size goroutines; size <= 0 means GOMAXPROCS.
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	p := &WorkerPool{
		size:  size,
		tasks: make(chan task, size),
	}
	p.wg.Add(size)
	for range size {
		go p.loop()
	}
	return p
}

// Size returns the number of pool goroutines.
func (p *WorkerPool) Size() int {
	return p.size
}

func (p *WorkerPool) loop() {
	defer p.wg.Done()
	for t := range p.tasks {
		if err := t.ctx.Err(); err != nil {
			t.errs[t.i] = err
		} else {
			t.errs[t.i] = t.fn(t.ctx, t.i)
		}
		t.wg.Done()
	}
}

// Do calls fn(ctx, i) for i in [0, n) on the pool and returns once every
// call has finished. Errors are joined in index order. Calls that were
// never queued, because ctx ended or the pool closed, report that error.
func (p *WorkerPool) Do(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		select {
		case p.tasks <- task{ctx: ctx, i: i, fn: fn, errs: errs, wg: &wg}:
		case <-ctx.Done():
			errs[i] = ctx.Err()
			wg.Done()
		}
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Close waits for queued calls and stops the goroutines. It is idempotent.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
