package executor

import (
	"fmt"
	"sync"
)

// panicBox captures the first panic recovered from a unit goroutine so the
// batch can convert it into an infrastructure-level failure instead of
// crashing the run.
type panicBox struct {
	mu    sync.Mutex
	first error
}

// recover is intended as a deferred call inside a unit goroutine.
func (p *panicBox) recover(index int) {
	r := recover()
	if r == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.first == nil {
		p.first = fmt.Errorf("panic in unit operation for item %d: %v", index, r)
	}
}

// err returns the first captured panic, or nil.
func (p *panicBox) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.first
}
