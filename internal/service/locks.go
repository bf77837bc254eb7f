package service

import "sync"

// recordLocks serializes mutations per ledger record within this process.
// Combined with the repository's version check, read-modify-persist cycles
// on the same record are linearizable; different records proceed in
// parallel. Locks are never evicted: one mutex per touched record is a few
// dozen bytes and the record population is bounded.
type recordLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRecordLocks() *recordLocks {
	return &recordLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for the given record ID, creating it on first use.
// The caller must call the returned unlock function.
func (r *recordLocks) lock(recordID string) (unlock func()) {
	r.mu.Lock()
	m, ok := r.locks[recordID]
	if !ok {
		m = &sync.Mutex{}
		r.locks[recordID] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}
