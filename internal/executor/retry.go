package executor

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/rshade/cardforge/internal/executor/backoff"
)

// unitRunner wraps a single item's operation call with bounded retry and
// exponential backoff. A runner result is always terminal: operation errors
// are converted into failure outcomes, never propagated.
//
// The loop is an iterative state machine (attempt -> backoff -> attempt)
// rather than a recursive call, so large retry ceilings cannot grow the
// stack.
type unitRunner[T, R any] struct {
	op         Operation[T, R]
	maxRetries int
	strategy   backoff.Strategy
	rate       *rate.Limiter // nil when no rate limit is configured
	events     Events
}

// run executes the item until success, exhaustion, or cancellation.
func (r *unitRunner[T, R]) run(ctx context.Context, index int, item T) Outcome[R] {
	attempts := 0

	for {
		if r.rate != nil {
			if err := r.rate.Wait(ctx); err != nil {
				return Outcome[R]{
					Index:    index,
					Err:      fmt.Errorf("%w before attempt %d: %w", ErrRunCancelled, attempts+1, err),
					Attempts: attempts,
				}
			}
		}

		value, err := r.op(ctx, item)
		attempts++

		if err == nil {
			return Outcome[R]{Index: index, Value: value, Attempts: attempts}
		}

		r.events.UnitRetry(ctx, index, attempts, err)

		if attempts > r.maxRetries {
			r.events.UnitExhausted(ctx, index, attempts, err)
			return Outcome[R]{Index: index, Err: err, Attempts: attempts}
		}

		// Retry k (0-indexed) waits BackoffBase * 2^k; the strategy is
		// 1-indexed, and attempts equals the upcoming retry number here.
		delay := r.strategy.Delay(attempts)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			// Cancellation stops further retries; the current attempt's
			// error is preserved as context.
			return Outcome[R]{
				Index:    index,
				Err:      fmt.Errorf("%w after %d attempts: %w", ErrRunCancelled, attempts, err),
				Attempts: attempts,
			}
		}
	}
}
