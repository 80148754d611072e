package wager

import "sync"

// marketLocks provides per-market mutual exclusion for mutating operations:
// staking, cancellation, and settlement on the same market serialize against
// each other, while operations on different markets never contend. Locks are
// in-process (single-instance); for horizontal scaling, replace with
// distributed locking or database-level optimistic concurrency.
type marketLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMarketLocks() *marketLocks {
	return &marketLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for marketID and returns its unlock function.
func (l *marketLocks) acquire(marketID string) func() {
	l.mu.Lock()
	m, ok := l.locks[marketID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[marketID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
