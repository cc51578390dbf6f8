package media

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the number of downloads allowed in flight at once.
const DefaultConcurrency = 4

// Limiter bounds how many downloads run at the same time. One limiter is
// meant to be shared by every prefetch call of a process.
type Limiter struct {
	sem  *semaphore.Weighted
	size int64
}

// NewLimiter returns a limiter admitting n concurrent holders, or
// DefaultConcurrency when n <= 0.
func NewLimiter(n int) *Limiter {
	if n <= 0 {
		n = DefaultConcurrency
	}
	return &Limiter{
		sem:  semaphore.NewWeighted(int64(n)),
		size: int64(n),
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release frees a slot obtained with Acquire.
func (l *Limiter) Release() {
	l.sem.Release(1)
}

// Size returns the limiter capacity.
func (l *Limiter) Size() int {
	return int(l.size)
}
