package executor

// Outcome is the terminal result of a single work item. Exactly one Outcome
// is produced per input item, after the item succeeds, exhausts its retries,
// or is swept up by batch-level failure handling.
type Outcome[R any] struct {
	// Index is the item's original position in the input sequence.
	Index int

	// Value holds the operation's result. Meaningful only when Err is nil.
	Value R

	// Err is the final error for failed items, nil for successes.
	Err error

	// Attempts is the number of operation calls made for this item.
	// Zero for items that were never dispatched (cancellation, batch abort).
	Attempts int
}

// Success reports whether the item produced a result.
func (o Outcome[R]) Success() bool {
	return o.Err == nil
}

// Retried reports whether the item succeeded after at least one retry.
func (o Outcome[R]) Retried() bool {
	return o.Err == nil && o.Attempts > 1
}

// Stats summarizes a completed run.
type Stats struct {
	// Total is the number of input items.
	Total int

	// Succeeded is the number of items that produced a result.
	Succeeded int

	// Retried is the number of succeeded items that needed more than one attempt.
	Retried int

	// Failed is the number of items with a Failure outcome.
	Failed int

	// BatchesFailed is the number of batches aborted by an
	// infrastructure-level error.
	BatchesFailed int
}

// RunResult is the complete result of an executor run: one outcome per input
// item, in original input order, plus aggregate counts. A run that returns a
// RunResult always accounts for every input item; callers inspect failed
// outcomes to learn what did not succeed.
type RunResult[R any] struct {
	Outcomes []Outcome[R]
	Stats    Stats
}

// Failures returns the outcomes that did not succeed, in input order.
func (r *RunResult[R]) Failures() []Outcome[R] {
	var failed []Outcome[R]
	for _, o := range r.Outcomes {
		if !o.Success() {
			failed = append(failed, o)
		}
	}
	return failed
}
