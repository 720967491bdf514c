package engine

import (
	"sync"

	"github.com/google/uuid"
)

// dealLocks serializes turn processing per deal. Concurrent turns on
// the same deal would corrupt round and refusal counters; different
// deals proceed in parallel.
type dealLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newDealLocks() *dealLocks {
	return &dealLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (d *dealLocks) lock(id uuid.UUID) func() {
	d.mu.Lock()
	l, ok := d.locks[id]
	if !ok {
		l = &sync.Mutex{}
		d.locks[id] = l
	}
	d.mu.Unlock()

	l.Lock()
	return l.Unlock
}
