package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation does not fit the
// memory budget.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// LimitError describes a rejected memory reservation.
type LimitError struct {
	Requested int64
	InUse     int64
	Limit     int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%v: requested %d bytes with %d of %d in use", ErrMemoryLimitExceeded, e.Requested, e.InUse, e.Limit)
}

func (e *LimitError) Unwrap() error {
	return ErrMemoryLimitExceeded
}

// Config holds resource limits. Zero values mean unlimited, except
// MaxWorkers which defaults to 1.
type Config struct {
	MemoryLimitBytes   int64
	MaxWorkers         int64
	IOLimitBytesPerSec int64
}

// Usage is a point-in-time view of a Controller.
type Usage struct {
	MemoryInUse int64
	MemoryPeak  int64
	MemoryLimit int64
	IOBytes     int64
}

// Controller hands out memory, worker slot and IO budgets.
// A nil *Controller grants everything.
type Controller struct {
	cfg Config

	mem     *semaphore.Weighted // nil when unlimited
	memUsed atomic.Int64
	memPeak atomic.Int64

	workers *semaphore.Weighted

	io      *rate.Limiter // nil when unlimited
	ioBytes atomic.Int64
}

// NewController creates a controller for cfg.
func NewController(cfg Config) *Controller {
	cfg.MaxWorkers = max(cfg.MaxWorkers, 1)
	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.MaxWorkers),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.mem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.io = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// AcquireMemory reserves bytes without blocking. A reservation that does
// not fit returns a *LimitError.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.mem != nil && !c.mem.TryAcquire(bytes) {
		return &LimitError{Requested: bytes, InUse: c.memUsed.Load(), Limit: c.cfg.MemoryLimitBytes}
	}

	used := c.memUsed.Add(bytes)
	for {
		peak := c.memPeak.Load()
		if used <= peak || c.memPeak.CompareAndSwap(peak, used) {
			return nil
		}
	}
}

// ReleaseMemory returns a reservation made by AcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.mem != nil {
		c.mem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// AcquireWorker blocks until a worker slot is free or ctx ends.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.workers.Acquire(ctx, 1)
}

// ReleaseWorker frees a slot taken by AcquireWorker.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workers.Release(1)
}

// AcquireIO blocks until the IO budget covers bytes or ctx ends.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil {
		return nil
	}
	c.ioBytes.Add(int64(bytes))
	if c.io == nil {
		return nil
	}
	// WaitN rejects requests above the burst size.
	burst := c.io.Burst()
	for bytes > burst {
		if err := c.io.WaitN(ctx, burst); err != nil {
			return err
		}
		bytes -= burst
	}
	return c.io.WaitN(ctx, bytes)
}

// Usage reports current and peak memory and the bytes charged to IO.
func (c *Controller) Usage() Usage {
	if c == nil {
		return Usage{}
	}
	return Usage{
		MemoryInUse: c.memUsed.Load(),
		MemoryPeak:  c.memPeak.Load(),
		MemoryLimit: c.cfg.MemoryLimitBytes,
		IOBytes:     c.ioBytes.Load(),
	}
}
