package concurrency

import (
	"sync"
)

// LockManager handles named locks. Commands against the same group or player
// key must serialize their load-mutate-save cycle; locks are never released
// from the map, which is acceptable for the bounded set of group/player keys.
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
