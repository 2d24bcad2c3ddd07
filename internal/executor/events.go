package executor

import (
	"context"

	"github.com/rs/zerolog"
)

// Events receives observability callbacks during a run. Implementations must
// be safe for concurrent use; callbacks may arrive from multiple goroutines.
// The executor emits events, it does not format them.
type Events interface {
	// UnitRetry is called after every failed operation attempt.
	UnitRetry(ctx context.Context, index, attempt int, err error)

	// UnitExhausted is called when an item's retries are exhausted.
	UnitExhausted(ctx context.Context, index, attempts int, err error)

	// BatchFailed is called when a batch is aborted by an infrastructure
	// error. indexes lists the items that received synthesized failures.
	BatchFailed(ctx context.Context, batchIndex int, indexes []int, err error)

	// RunComplete is called once, after every item has an outcome.
	RunComplete(ctx context.Context, stats Stats)
}

// NopEvents discards all events.
type NopEvents struct{}

func (NopEvents) UnitRetry(context.Context, int, int, error)     {}
func (NopEvents) UnitExhausted(context.Context, int, int, error) {}
func (NopEvents) BatchFailed(context.Context, int, []int, error) {}
func (NopEvents) RunComplete(context.Context, Stats)             {}

// LogEvents writes events to a zerolog logger.
type LogEvents struct {
	logger zerolog.Logger
}

// NewLogEvents creates an Events implementation backed by the given logger.
func NewLogEvents(logger zerolog.Logger) *LogEvents {
	return &LogEvents{logger: logger}
}

// UnitRetry logs a failed attempt at warn level.
func (l *LogEvents) UnitRetry(_ context.Context, index, attempt int, err error) {
	l.logger.Warn().
		Int("item", index).
		Int("attempt", attempt).
		Err(err).
		Msg("unit attempt failed, will retry")
}

// UnitExhausted logs a terminal per-item failure at error level.
func (l *LogEvents) UnitExhausted(_ context.Context, index, attempts int, err error) {
	l.logger.Error().
		Int("item", index).
		Int("attempts", attempts).
		Err(err).
		Msg("unit retries exhausted")
}

// BatchFailed logs an aborted batch at error level.
func (l *LogEvents) BatchFailed(_ context.Context, batchIndex int, indexes []int, err error) {
	l.logger.Error().
		Int("batch", batchIndex).
		Ints("items", indexes).
		Err(err).
		Msg("batch aborted, failures synthesized")
}

// RunComplete logs run-level summary statistics at info level.
func (l *LogEvents) RunComplete(_ context.Context, stats Stats) {
	l.logger.Info().
		Int("total", stats.Total).
		Int("succeeded", stats.Succeeded).
		Int("retried", stats.Retried).
		Int("failed", stats.Failed).
		Int("batches_failed", stats.BatchesFailed).
		Msg("run complete")
}
