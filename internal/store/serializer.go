package store

import "sync"

// fifoLock is the write serializer: a mutual-exclusion lock that releases
// waiters in strict arrival order. Each Update holds the lock across its
// whole load-modify-persist cycle, so the order in which concurrent callers
// reach acquire is the total order of their mutations.
type fifoLock struct {
	mu      sync.Mutex
	locked  bool
	waiters []chan struct{}
}

// acquire blocks until the lock is held by the caller.
func (l *fifoLock) acquire() {
	l.mu.Lock()
	if !l.locked {
		l.locked = true
		l.mu.Unlock()
		return
	}
	ch := make(chan struct{})
	l.waiters = append(l.waiters, ch)
	l.mu.Unlock()
	<-ch
}

// release hands the lock to the oldest waiter, or unlocks if none wait.
// Ownership transfers directly, so no later arrival can jump the queue.
func (l *fifoLock) release() {
	l.mu.Lock()
	if len(l.waiters) > 0 {
		ch := l.waiters[0]
		l.waiters = l.waiters[1:]
		l.mu.Unlock()
		close(ch)
		return
	}
	l.locked = false
	l.mu.Unlock()
}
