// Package workerpool bounds the number of documents processed concurrently.
// Incoming updates are handled on the dispatch goroutine; only the heavy
// download-and-upload work is handed to the pool.
package workerpool

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// New returns a pool that runs at most size tasks at a time.
func New(size int64) *Pool {
	return &Pool{sem: semaphore.NewWeighted(size)}
}

// Go runs task on its own goroutine once a pool slot is available. It blocks
// until the slot is acquired or ctx is cancelled, so callers get natural
// backpressure instead of an unbounded goroutine pileup.
func (p *Pool) Go(ctx context.Context, task func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire worker slot: %w", err)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		task()
	}()

	return nil
}

// Wait blocks until every started task has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
