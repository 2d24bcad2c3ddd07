package executor

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds how many unit operations run simultaneously across the
// whole run, independent of batch boundaries. At most the configured number
// of permits are outstanding at any instant.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter creates a limiter allowing n concurrent permits.
func NewLimiter(n int) *Limiter {
	return &Limiter{sem: semaphore.NewWeighted(int64(n))}
}

// Admit blocks until a permit is free or the context is cancelled. It never
// fails under backpressure; the only error it returns is the context's.
func (l *Limiter) Admit(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release returns a permit obtained by Admit.
func (l *Limiter) Release() {
	l.sem.Release(1)
}
