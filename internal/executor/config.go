package executor

import (
	"fmt"
	"time"
)

// Default executor configuration.
const (
	// DefaultBatchSize is the default number of items per batch.
	DefaultBatchSize = 10

	// DefaultMaxRetries is the default per-item retry ceiling.
	DefaultMaxRetries = 3

	// DefaultBackoffBase is the default initial retry delay.
	DefaultBackoffBase = time.Second

	// MaxBatchSize is the maximum allowed batch size.
	MaxBatchSize = 1000
)

// Config controls a run. The zero value is not usable directly; start from
// DefaultConfig and override fields, or rely on the CLI flag defaults.
type Config struct {
	// BatchSize is the number of items dispatched per batch. Batches run
	// sequentially relative to each other.
	BatchSize int

	// MaxConcurrency bounds simultaneous in-flight operations across the
	// whole run. Zero means "same as BatchSize".
	MaxConcurrency int

	// MaxRetries is the per-item retry ceiling. Zero disables retries.
	MaxRetries int

	// BackoffBase is the delay before the first retry; retry k (0-indexed)
	// waits BackoffBase * 2^k.
	BackoffBase time.Duration

	// InterBatchDelay is an optional pause between batches, for rate-limit
	// friendliness. It is applied after failed batches as well: the upstream
	// service was still called, so the pacing still applies.
	InterBatchDelay time.Duration

	// RatePerSecond, when positive, paces every operation attempt through a
	// token-bucket rate limiter in addition to the concurrency bound.
	RatePerSecond float64

	// RateBurst is the rate limiter burst size. Defaults to 1 when a rate
	// is configured.
	RateBurst int
}

// DefaultConfig returns the documented defaults: batch size 10, concurrency
// equal to batch size, 3 retries, 1s backoff base, no inter-batch delay.
func DefaultConfig() Config {
	return Config{
		BatchSize:   DefaultBatchSize,
		MaxRetries:  DefaultMaxRetries,
		BackoffBase: DefaultBackoffBase,
	}
}

// normalized returns a copy with unset fields resolved to their defaults.
func (c Config) normalized() Config {
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = c.BatchSize
	}
	if c.RatePerSecond > 0 && c.RateBurst == 0 {
		c.RateBurst = 1
	}
	return c
}

// validate checks a normalized config.
func (c Config) validate() error {
	if c.BatchSize < 1 || c.BatchSize > MaxBatchSize {
		return fmt.Errorf("%w: batch size must be between 1 and %d, got %d",
			ErrInvalidConfig, MaxBatchSize, c.BatchSize)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("%w: max concurrency must be positive, got %d",
			ErrInvalidConfig, c.MaxConcurrency)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries must be >= 0, got %d",
			ErrInvalidConfig, c.MaxRetries)
	}
	if c.BackoffBase < 0 {
		return fmt.Errorf("%w: backoff base must be >= 0, got %v",
			ErrInvalidConfig, c.BackoffBase)
	}
	if c.InterBatchDelay < 0 {
		return fmt.Errorf("%w: inter-batch delay must be >= 0, got %v",
			ErrInvalidConfig, c.InterBatchDelay)
	}
	if c.RatePerSecond < 0 {
		return fmt.Errorf("%w: rate per second must be >= 0, got %v",
			ErrInvalidConfig, c.RatePerSecond)
	}
	return nil
}
