// Package executor runs a large ordered collection of independent work items
// against a slow, rate-limited, occasionally-failing operation, with bounded
// concurrency and automatic recovery from transient failures.
//
// Work is partitioned into fixed-size batches; items within a batch run
// concurrently up to a configured limit, failed items are retried with
// exponential backoff, and failures are isolated at the batch level so the
// loss of some items never prevents the rest from completing. The result of
// a run accounts for every input item, in original input order: success,
// retried-then-success, or a recorded failure.
//
// The operation itself is a capability injected by the caller; the executor
// knows nothing about what it calls. Observability is an injected Events
// sink; the executor emits events, it does not format them.
package executor
