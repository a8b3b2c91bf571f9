// Package workerpool runs bounded concurrent jobs on an ants goroutine pool.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/hirescope/internal/logger"
)

// Task is a unit of work. Returning an error does not stop sibling tasks.
type Task func(ctx context.Context) error

// Pool wraps an ants pool with context-aware batch execution.
type Pool struct {
	pool *ants.Pool
}

// DefaultSize returns half the CPUs, at least one.
func DefaultSize() int {
	size := runtime.NumCPU() / 2
	if size < 1 {
		size = 1
	}
	return size
}

// New creates a pool with size workers. Size <= 0 uses DefaultSize.
func New(size int) (*Pool, error) {
	if size <= 0 {
		size = DefaultSize()
	}

	p, err := ants.NewPool(size, ants.WithLogger(logger.PoolLogger{}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Pool{pool: p}, nil
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return p.pool.Cap()
}

// Run executes every task and waits for all of them.
// Tasks not yet started when ctx is cancelled are skipped.
// The returned error joins every task failure.
func (p *Pool) Run(ctx context.Context, tasks []Task) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			record(err)
			break
		}

		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				record(err)
				return
			}
			if err := task(ctx); err != nil {
				record(err)
			}
		}); err != nil {
			wg.Done()
			record(fmt.Errorf("submit task: %w", err))
		}
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Release stops the pool. Running tasks finish; no new tasks are accepted.
func (p *Pool) Release() {
	p.pool.Release()
}
