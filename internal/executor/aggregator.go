package executor

import (
	"fmt"
	"sync"
)

// aggregator accumulates per-item outcomes, preserving input order. Outcomes
// may arrive in any order; each is written into a pre-sized slot array by the
// item index it carries. The slot array is the only shared mutable state
// between unit goroutines besides the limiter's permit pool.
type aggregator[R any] struct {
	mu    sync.Mutex
	slots []*Outcome[R]
}

func newAggregator[R any](n int) *aggregator[R] {
	return &aggregator[R]{slots: make([]*Outcome[R], n)}
}

// record stores the outcome for its item. The first outcome recorded for an
// index wins; an item receives exactly one outcome per run.
func (a *aggregator[R]) record(o Outcome[R]) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.slots[o.Index] == nil {
		a.slots[o.Index] = &o
	}
}

// fillMissing synthesizes a failure outcome for every unresolved item in
// [start, end) and returns the indexes it filled.
func (a *aggregator[R]) fillMissing(start, end int, err error) []int {
	a.mu.Lock()
	defer a.mu.Unlock()

	var filled []int
	for i := start; i < end; i++ {
		if a.slots[i] == nil {
			a.slots[i] = &Outcome[R]{Index: i, Err: err}
			filled = append(filled, i)
		}
	}
	return filled
}

// finalize assembles the ordered RunResult. It fails with ErrIncompleteRun
// if any item has no recorded outcome; that indicates a defect in the
// executor, not in user data.
func (a *aggregator[R]) finalize() (*RunResult[R], error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := &RunResult[R]{
		Outcomes: make([]Outcome[R], 0, len(a.slots)),
		Stats:    Stats{Total: len(a.slots)},
	}

	for i, slot := range a.slots {
		if slot == nil {
			return nil, fmt.Errorf("%w: item %d of %d", ErrIncompleteRun, i, len(a.slots))
		}
		result.Outcomes = append(result.Outcomes, *slot)

		if slot.Success() {
			result.Stats.Succeeded++
			if slot.Retried() {
				result.Stats.Retried++
			}
		} else {
			result.Stats.Failed++
		}
	}

	return result, nil
}
