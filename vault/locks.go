// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vault

import "sync"

// lockTable hands out one mutex per transaction id so that every
// read-modify-write sequence on a record executes alone.  Without this,
// two concurrent submissions could both pass the duplicate and
// threshold checks before either persists.  Mutexes live for the
// process lifetime; transaction records are never deleted, so there is
// nothing to evict.
type lockTable struct {
	locks sync.Map // txID string -> *sync.Mutex
}

// lock acquires the mutex for id and returns its unlock function.
func (t *lockTable) lock(id string) func() {
	entry, _ := t.locks.LoadOrStore(id, new(sync.Mutex))
	mu := entry.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
