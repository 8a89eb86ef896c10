// Package block tracks chain heads: the live tip observed by an indexer and
// cached heads served to readers.
package block

import (
	"context"
	"sync/atomic"
)

// Tracker holds the highest block number observed for one chain.
// The tip never decreases. Publish may be called from any goroutine.
type Tracker struct {
	tip    atomic.Uint64
	notify chan struct{}
}

// NewTracker creates a tracker with a zero tip
func NewTracker() *Tracker {
	return &Tracker{notify: make(chan struct{}, 1)}
}

// Publish records an observed head. Lower or equal numbers are ignored.
// It reports whether the tip advanced.
func (t *Tracker) Publish(number uint64) bool {
	for {
		current := t.tip.Load()
		if number <= current {
			return false
		}
		if t.tip.CompareAndSwap(current, number) {
			break
		}
	}

	select {
	case t.notify <- struct{}{}:
	default:
	}
	return true
}

// Tip returns the highest observed block number
func (t *Tracker) Tip() uint64 {
	return t.tip.Load()
}

// WaitFor blocks until the tip reaches number or ctx is done, returning the tip
func (t *Tracker) WaitFor(ctx context.Context, number uint64) (uint64, error) {
	for {
		if tip := t.tip.Load(); tip >= number {
			return tip, nil
		}
		select {
		case <-ctx.Done():
			return t.tip.Load(), ctx.Err()
		case <-t.notify:
		}
	}
}
