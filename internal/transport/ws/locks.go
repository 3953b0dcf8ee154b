package ws

import "sync"

// SessionLocks serializes turn processing per session. Two connections to
// the same session must not interleave history reads and writes; different
// sessions proceed fully in parallel.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[uint]*sync.Mutex)}
}

// Acquire blocks until the session's lock is held and returns the release
// func. Locks are kept for the process lifetime; the per-session footprint
// is one mutex.
func (l *SessionLocks) Acquire(sessionID uint) func() {
	l.mu.Lock()
	lock, ok := l.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[sessionID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
