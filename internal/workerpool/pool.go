// Package workerpool bounds CPU-heavy work to a fixed number of slots.
package workerpool

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/JakeFAU/newsverdict/internal/metrics"
)

const defaultSize = 4

// Pool is a fixed-size set of execution slots.
type Pool struct {
	size int64
	sem  *semaphore.Weighted
}

// New creates a pool with size slots. Non-positive sizes use the default of 4.
func New(size int) *Pool {
	if size <= 0 {
		size = defaultSize
	}
	return &Pool{size: int64(size), sem: semaphore.NewWeighted(int64(size))}
}

// Size returns the number of slots.
func (p *Pool) Size() int { return int(p.size) }

// Submit waits for a free slot, runs fn in it and returns fn's result.
// Once a slot is held fn runs to completion even if ctx is canceled.
func Submit[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var zero T
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, fmt.Errorf("acquire worker slot: %w", err)
	}
	defer p.sem.Release(1)

	metrics.IncPoolInFlight()
	defer metrics.DecPoolInFlight()
	return fn()
}
