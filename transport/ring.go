package transport

import (
	"fmt"
	"sync"
)

// ringEntry is a single queued outbound buffer: a pointer to the caller's
// bytes and its length. The ring never copies the payload; it only ever
// moves the entry.
type ringEntry struct {
	buf []byte
}

// ring is a fixed-depth single-producer/single-consumer queue of
// ringEntry, matching spec.md §4.6's no-copy ring: the writer blocks
// while full, the reader blocks while empty, and both sides guard the
// head/tail indices with one mutex and wait on condition variables.
// Depth must be a power of two.
type ring struct {
	entries []ringEntry
	mask    uint64

	mu         sync.Mutex
	notFull    *sync.Cond
	notEmpty   *sync.Cond
	head, tail uint64 // head = next write slot, tail = next read slot
}

func newRing(depth int) *ring {
	if depth <= 0 || depth&(depth-1) != 0 {
		panic(fmt.Errorf("transport: ring depth must be a power of two, got %d", depth))
	}
	r := &ring{entries: make([]ringEntry, depth), mask: uint64(depth - 1)}
	r.notFull = sync.NewCond(&r.mu)
	r.notEmpty = sync.NewCond(&r.mu)
	return r
}

// push enqueues buf, blocking while the ring is full. It returns the
// index the entry was written to, so the caller can later confirm the
// ring has drained past it.
func (r *ring) push(buf []byte) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.head-r.tail == uint64(len(r.entries)) {
		r.notFull.Wait()
	}
	idx := r.head
	r.entries[idx&r.mask] = ringEntry{buf: buf}
	r.head++
	r.notEmpty.Signal()
	return idx
}

// pop blocks while the ring is empty, then removes and returns the oldest
// entry. expectIdx, if non-negative, asserts the popped entry's index
// matches the caller's expectation — a best-effort identity check on the
// ring-pop, since the entry itself carries no independent identity once
// written.
func (r *ring) pop(expectIdx int64) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.head == r.tail {
		r.notEmpty.Wait()
	}
	idx := r.tail
	if expectIdx >= 0 && uint64(expectIdx) != idx {
		panic(fmt.Errorf("transport: ring pop identity mismatch: expected %d, got %d", expectIdx, idx))
	}
	e := r.entries[idx&r.mask]
	r.entries[idx&r.mask] = ringEntry{}
	r.tail++
	r.notFull.Signal()
	return e.buf
}

// waitDrainedPast blocks until the ring's tail has advanced past idx,
// i.e. the entry at idx has been popped by the consumer. send_shares
// uses this to know its buffer is safe to reuse/release.
func (r *ring) waitDrainedPast(idx uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.tail <= idx {
		r.notFull.Wait()
	}
}

// empty reports whether the ring currently has no pending entries.
func (r *ring) empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.head == r.tail
}
