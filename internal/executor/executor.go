package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rshade/cardforge/internal/executor/backoff"
)

// Operation is the opaque external call made once per work item. It may fail
// with any error; failures are retried up to the configured ceiling. The
// operation should honor ctx for its own internal deadlines, but the
// executor never kills an in-flight attempt: cancellation takes effect
// between attempts and between batches.
type Operation[T, R any] func(ctx context.Context, item T) (R, error)

// Executor drives a full run: it partitions the input into fixed-size
// batches, dispatches each batch's items concurrently through the limiter
// and the retrying unit runner, isolates batch-level failures, and hands
// back a RunResult accounting for every input item.
type Executor[T, R any] struct {
	cfg     Config
	events  Events
	limiter *Limiter
	rate    *rate.Limiter
}

// New creates an Executor from the given config. Zero-valued config fields
// take their documented defaults; see Config.
func New[T, R any](cfg Config) (*Executor[T, R], error) {
	cfg = cfg.normalized()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Executor[T, R]{
		cfg:     cfg,
		events:  NopEvents{},
		limiter: NewLimiter(cfg.MaxConcurrency),
	}
	if cfg.RatePerSecond > 0 {
		e.rate = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)
	}
	return e, nil
}

// WithEvents sets the observability sink for subsequent runs.
func (e *Executor[T, R]) WithEvents(events Events) *Executor[T, R] {
	e.events = events
	return e
}

// Config returns the executor's resolved configuration.
func (e *Executor[T, R]) Config() Config {
	return e.cfg
}

// Execute processes every item and returns one outcome per item, in original
// input order. Item-level failures never surface as an error: callers
// inspect the RunResult. The returned error is non-nil only for invalid
// input or an internal consistency violation.
//
// On cancellation, in-flight attempts are allowed to finish, no new retries
// or batches start, and every unresolved item receives a synthesized failure
// tagged ErrRunCancelled, so the partial result still covers all items.
func (e *Executor[T, R]) Execute(ctx context.Context, items []T, op Operation[T, R]) (*RunResult[R], error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if op == nil {
		return nil, ErrNilOperation
	}

	agg := newAggregator[R](len(items))
	runner := &unitRunner[T, R]{
		op:         op,
		maxRetries: e.cfg.MaxRetries,
		strategy:   backoff.NewExponential(e.cfg.BackoffBase, 0),
		rate:       e.rate,
		events:     e.events,
	}

	totalBatches := (len(items) + e.cfg.BatchSize - 1) / e.cfg.BatchSize
	batchesFailed := 0

	for batchIndex := range totalBatches {
		if ctx.Err() != nil {
			break
		}

		start := batchIndex * e.cfg.BatchSize
		end := start + e.cfg.BatchSize
		if end > len(items) {
			end = len(items)
		}

		if err := e.runBatch(ctx, items, start, end, runner, agg); err != nil {
			// Batch-level failure isolation: the run must not abort. Every
			// item in this batch without an outcome gets a synthesized
			// failure, and the run proceeds to the next batch.
			filled := agg.fillMissing(start, end, fmt.Errorf("%w: %w", ErrBatchAborted, err))
			batchesFailed++
			e.events.BatchFailed(ctx, batchIndex, filled, err)
		}

		// The delay applies after failed batches too: the upstream service
		// was still called, so the pacing contract still holds.
		if e.cfg.InterBatchDelay > 0 && batchIndex < totalBatches-1 {
			e.pause(ctx)
		}
	}

	// Cancellation sweep: items in batches never started, or left unresolved
	// by an interrupted batch, still need outcomes.
	if ctx.Err() != nil {
		agg.fillMissing(0, len(items), fmt.Errorf("%w: %w", ErrRunCancelled, ctx.Err()))
	}

	result, err := agg.finalize()
	if err != nil {
		return nil, err
	}
	result.Stats.BatchesFailed = batchesFailed

	e.events.RunComplete(ctx, result.Stats)
	return result, nil
}

// runBatch dispatches items[start:end] concurrently and waits for all of
// them to settle. It returns an error only for infrastructure-level
// failures that escaped the per-item retry boundary: a panic in the
// operation, or cancellation while acquiring permits.
func (e *Executor[T, R]) runBatch(
	ctx context.Context,
	items []T,
	start, end int,
	runner *unitRunner[T, R],
	agg *aggregator[R],
) error {
	var (
		wg       sync.WaitGroup
		panicked panicBox
		admitErr error
	)

	for i := start; i < end; i++ {
		if err := e.limiter.Admit(ctx); err != nil {
			admitErr = fmt.Errorf("acquiring concurrency permit: %w", err)
			break
		}

		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			defer e.limiter.Release()
			defer panicked.recover(index)

			agg.record(runner.run(ctx, index, items[index]))
		}(i)
	}

	// Every dispatched unit must settle before the batch is accounted for,
	// even when admission was interrupted.
	wg.Wait()

	if err := panicked.err(); err != nil {
		return err
	}
	return admitErr
}

// pause sleeps for the inter-batch delay, returning early on cancellation.
func (e *Executor[T, R]) pause(ctx context.Context) {
	timer := time.NewTimer(e.cfg.InterBatchDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
