// entry.go: the reclamation-aware storage record (spec.md §4.1)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package uastore

import "sync/atomic"

// refcount packs the alive bit and the outstanding-borrow count into a
// single word so one atomic read-modify-write covers both, the way the
// teacher's entry.valid flag covered empty/valid/deleted/pending in one
// CAS. Bit 15 is ALIVE; bits 0-14 are the borrow count (spec.md §4.1: a
// 16-bit refcount, high bit ALIVE, low 15 bits outstanding references).
type refcount struct {
	bits atomic.Uint32
}

const (
	rcAliveBit  uint32 = 1 << 15
	rcBorrowMax uint32 = rcAliveBit - 1 // 2^15 - 1, the maximum representable borrow count
)

// newRefcount returns a refcount in the ALIVE state with the given
// initial borrow count (0 or 1 — Store.Insert/Replace only ever start an
// entry with zero or one borrow, for getManaged).
func newRefcount(initialBorrows uint32) refcount {
	var rc refcount
	rc.bits.Store(rcAliveBit | (initialBorrows & rcBorrowMax))
	return rc
}

func (r *refcount) alive() bool {
	return r.bits.Load()&rcAliveBit != 0
}

func (r *refcount) borrows() uint32 {
	return r.bits.Load() & rcBorrowMax
}

// acquire adds one outstanding borrow (Store.Get / Store.Iterate). It
// never fails in practice; a borrow count saturating at rcBorrowMax is
// the caller-bug case spec.md §8 calls out ("one more is a detectable
// error") and is surfaced by the refcount-overflow panic below rather than
// silently wrapping.
func (r *refcount) acquire() {
	for {
		old := r.bits.Load()
		count := old & rcBorrowMax
		if count == rcBorrowMax {
			panic("uastore: entry refcount overflow: more than 2^15-1 concurrent borrows")
		}
		if r.bits.CompareAndSwap(old, old+1) {
			return
		}
	}
}

// release removes one outstanding borrow and reports whether, after the
// decrement, the entry is both unlinked (not alive) and unborrowed —
// i.e. whether the caller must now run the variant deleter and drop the
// envelope (spec.md §4.4 "release").
func (r *refcount) release() (shouldDestroy bool) {
	for {
		old := r.bits.Load()
		count := old & rcBorrowMax
		if count == 0 {
			// Corrupted refcount: an unbalanced release. Spec.md §7 calls
			// this out as a fatal, unrecoverable condition.
			panic("uastore: unbalanced release: refcount already zero")
		}
		next := (old &^ rcBorrowMax) | (count - 1)
		if r.bits.CompareAndSwap(old, next) {
			return next&rcAliveBit == 0 && next&rcBorrowMax == 0
		}
	}
}

// clearAlive clears the ALIVE bit and reports whether the entry is now
// also unborrowed (spec.md §4.1 "finalize").
func (r *refcount) clearAlive() (shouldDestroy bool) {
	for {
		old := r.bits.Load()
		next := old &^ rcAliveBit
		if r.bits.CompareAndSwap(old, next) {
			return next&rcBorrowMax == 0
		}
	}
}

// entry is the storage record: one node plus reclamation bookkeeping.
// Entries are allocated once, never moved, and never reused across
// identities — their address is their identity for the lifetime of the
// reclamation engine's grace period.
type entry struct {
	// slot records this entry's last known bucket index in the hash
	// index, the generalization of spec.md's opaque "membership" field:
	// set when the entry is linked (index.insertUnique, index.replace) and
	// updated when a resize rehashes it. It is not cleared on removal;
	// index.deleteEntry reports "gone" by checking that this bucket is
	// still occupied and still points at this entry.
	slot int

	// reclaimNext links this entry into the reclamation engine's
	// pending-finalize queue (spec.md's "reclaim_link"). Only the
	// engine touches it, and only after the entry has already been
	// unlinked from the index.
	reclaimNext *entry

	rc refcount

	node NodeId // cached for index bookkeeping without re-deriving it from node.Header
	data Node
}

// retire unlinks entry from observation (the caller has already removed
// it from the index) and hands it to the reclamation engine for deferred
// finalization. Called from inside a read critical section, per
// spec.md §4.1.
func (e *entry) retire(eng *reclaimEngine) {
	eng.retire(e)
}

// finalize is the reclamation engine's deferred callback: clear ALIVE,
// and if that was the last reference, run the variant deleter. Otherwise
// destruction is left to the last Store.Release.
func (e *entry) finalize() {
	if e.rc.clearAlive() {
		deleteNodeVariant(&e.data)
	}
}

// deleteNodeVariant frees the node's owned inline attributes (strings,
// reference arrays, variant payloads) but not the entry envelope itself,
// dispatched on NodeClass exactly as spec.md §4.4 describes the
// "Variant deleter". An unknown class here is a fatal invariant
// violation — nodeSize already rejected unknown classes at Insert time,
// so reaching the default arm means the entry was corrupted in place.
func deleteNodeVariant(n *Node) {
	n.References = nil
	switch n.NodeClass {
	case ClassObject:
		n.Object = nil
	case ClassVariable:
		n.Variable = nil
	case ClassMethod:
		n.Method = nil
	case ClassObjectType:
		n.ObjectType = nil
	case ClassVariableType:
		n.VariableType = nil
	case ClassReferenceType:
		n.ReferenceType = nil
	case ClassDataType:
		n.DataType = nil
	case ClassView:
		n.View = nil
	default:
		panic("uastore: deleteNodeVariant: unknown NodeClass, entry corrupted")
	}
}
