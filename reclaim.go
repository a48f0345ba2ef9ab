// reclaim.go: epoch/grace-period reclamation engine (spec.md §4.3)
//
// Grounded on the access-barrier pattern used by lock-free skiplist
// implementations in this corpus: readers join the current "epoch" on
// enter, leave it on exit, and a retire closes the current epoch and
// opens a new one. Entries retired while an epoch E was current are only
// safe to finalize once every reader that joined E has left — by which
// point no reader can still be observing them, because any reader that
// entered after the unlink joined a later epoch.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package uastore

import (
	"math"
	"sync"
	"sync/atomic"
)

// flushOffset is added to an epoch's liveCount when it is closed, the
// same trick the pack's access-barrier implementation uses: a reader
// that races the close and increments the closed epoch's counter sees a
// count above flushOffset and knows to retry against the new current
// epoch, rather than treating an already-closing epoch as open.
const flushOffset = math.MaxInt32 / 2

// readEpoch tracks the live readers that joined it and the entries
// retired while it was current.
type readEpoch struct {
	liveCount atomic.Int32
	closed    atomic.Bool
	pending   []*entry // entries retired while this epoch was current
	seq       uint64
}

// reclaimEngine is the store's grace-period mechanism (spec.md §4.3). It
// is independent of the per-entry refcount in entry.rc: the refcount
// covers a borrow that outlives a single read critical section (a
// visitor callback, a response being formatted); the engine covers the
// window between "unlinked from the index" and "no concurrent reader
// can still be dereferencing it".
type reclaimEngine struct {
	current atomic.Pointer[readEpoch]

	mu          sync.Mutex // serializes epoch closing and the pending-epoch queue
	nextSeq     uint64
	closedQueue []*readEpoch // closed epochs awaiting drain, in seq order

	metrics MetricsCollector
}

func newReclaimEngine(metrics MetricsCollector) *reclaimEngine {
	eng := &reclaimEngine{metrics: metrics}
	eng.current.Store(&readEpoch{seq: 0})
	return eng
}

// enterRead brackets the start of a read critical section (spec.md
// §4.2/§4.3 enter_read). The returned epoch must be passed to exitRead
// exactly once.
func (eng *reclaimEngine) enterRead() *readEpoch {
	for {
		ep := eng.current.Load()
		count := ep.liveCount.Add(1)
		if count > flushOffset {
			// Raced a close: step back off this epoch and retry against
			// whatever is current now.
			eng.exitRead(ep)
			continue
		}
		return ep
	}
}

// exitRead brackets the end of a read critical section (spec.md
// §4.2/§4.3 exit_read).
func (eng *reclaimEngine) exitRead(ep *readEpoch) {
	count := ep.liveCount.Add(-1)
	if count == flushOffset {
		// We are the reader that drained a closed epoch to zero: drain
		// every contiguous, now-safe epoch at the head of the queue.
		eng.drain()
	} else if count < 0 || count == flushOffset-1 {
		panic("uastore: reclamation engine underflow: unbalanced exitRead")
	}
}

// retire closes the current epoch (so every reader already inside it is
// tracked to completion), attaches e to that closed epoch's pending
// list, and installs a fresh current epoch for new readers. Matches
// spec.md §4.1's retire(entry): called from inside a read critical
// section, returns immediately, and defers the actual finalize call.
func (eng *reclaimEngine) retire(e *entry) {
	eng.mu.Lock()
	closing := eng.current.Load()
	eng.nextSeq++
	next := &readEpoch{seq: eng.nextSeq}
	eng.current.Store(next)

	closing.pending = append(closing.pending, e)
	if closing.closed.CompareAndSwap(false, true) {
		eng.closedQueue = append(eng.closedQueue, closing)
	}
	eng.mu.Unlock()

	// Readers that were already inside `closing` hold a reference to it
	// directly (enterRead returned that *readEpoch), so they do not need
	// to observe eng.current changing. Nudge the flush offset onto the
	// counter so draining only happens once every such reader has left.
	if closing.liveCount.Add(flushOffset) == flushOffset {
		// No reader was inside `closing` at all: it is immediately safe.
		eng.drain()
	}
}

// drain processes the closed-epoch queue strictly in sequence order,
// stopping at the first epoch that has not yet reached zero live
// readers — later epochs cannot be safe before earlier ones, since a
// reader of an earlier epoch may still be active.
func (eng *reclaimEngine) drain() {
	eng.mu.Lock()
	q := eng.closedQueue
	var i int
	for i = 0; i < len(q); i++ {
		if q[i].liveCount.Load() != flushOffset {
			break
		}
	}
	ready := q[:i]
	eng.closedQueue = q[i:]
	eng.mu.Unlock()

	for _, ep := range ready {
		for _, e := range ep.pending {
			e.finalize()
			eng.metrics.RecordReclaim()
		}
	}
}

