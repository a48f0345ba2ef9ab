// index_test.go: tests for the concurrent, resizable hash index
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package uastore

import (
	"sync"
	"testing"
)

func newTestIndex(capacity int) *index {
	return newIndex(capacity, NoOpMetricsCollector{})
}

func newTestEntry(id NodeId) *entry {
	return &entry{node: id, data: Node{Header: Header{NodeId: id}}, rc: newRefcount(0)}
}

func TestIndex_InsertUniqueAndLookup(t *testing.T) {
	ix := newTestIndex(32)
	id := NewNumericNodeId(1, 1)
	e := newTestEntry(id)

	if !ix.insertUnique(id, e) {
		t.Fatal("insertUnique on fresh id should succeed")
	}
	got := ix.lookup(id)
	if got != e {
		t.Fatalf("lookup returned %v, want %v", got, e)
	}
}

func TestIndex_InsertUniqueRejectsDuplicate(t *testing.T) {
	ix := newTestIndex(32)
	id := NewNumericNodeId(1, 1)
	ix.insertUnique(id, newTestEntry(id))

	if ix.insertUnique(id, newTestEntry(id)) {
		t.Fatal("insertUnique should reject a duplicate id")
	}
}

func TestIndex_LookupMiss(t *testing.T) {
	ix := newTestIndex(32)
	if ix.lookup(NewNumericNodeId(1, 1)) != nil {
		t.Fatal("lookup on empty index should return nil")
	}
}

func TestIndex_DeleteThenLookupMisses(t *testing.T) {
	ix := newTestIndex(32)
	id := NewNumericNodeId(1, 1)
	e := newTestEntry(id)
	ix.insertUnique(id, e)

	removed, ok := ix.delete(id)
	if !ok || removed != e {
		t.Fatalf("delete: got (%v, %v)", removed, ok)
	}
	if ix.lookup(id) != nil {
		t.Fatal("lookup after delete should return nil")
	}
}

func TestIndex_DeleteTwiceFailsSecondTime(t *testing.T) {
	ix := newTestIndex(32)
	id := NewNumericNodeId(1, 1)
	ix.insertUnique(id, newTestEntry(id))

	if _, ok := ix.delete(id); !ok {
		t.Fatal("first delete should succeed")
	}
	if _, ok := ix.delete(id); ok {
		t.Fatal("second delete of the same id should fail")
	}
}

func TestIndex_DeleteEntryTargetsSpecificEntry(t *testing.T) {
	ix := newTestIndex(32)
	id := NewNumericNodeId(1, 1)
	e := newTestEntry(id)
	ix.insertUnique(id, e)

	if !ix.deleteEntry(e) {
		t.Fatal("deleteEntry should succeed for the linked entry")
	}
	if ix.lookup(id) != nil {
		t.Fatal("lookup after deleteEntry should return nil")
	}
}

func TestIndex_DeleteEntryTwiceFailsSecondTime(t *testing.T) {
	ix := newTestIndex(32)
	id := NewNumericNodeId(1, 1)
	e := newTestEntry(id)
	ix.insertUnique(id, e)

	if !ix.deleteEntry(e) {
		t.Fatal("first deleteEntry should succeed")
	}
	if ix.deleteEntry(e) {
		t.Fatal("second deleteEntry of the same entry should fail")
	}
}

func TestIndex_DeleteEntryAfterReplaceDoesNotRemoveNewEntry(t *testing.T) {
	ix := newTestIndex(32)
	id := NewNumericNodeId(1, 1)
	oldE := newTestEntry(id)
	ix.insertUnique(id, oldE)

	newE := newTestEntry(id)
	if !ix.replace(id, newE) {
		t.Fatal("replace should succeed")
	}

	// oldE is no longer linked at its original slot identity once replaced.
	if ix.deleteEntry(oldE) {
		t.Fatal("deleteEntry should fail for an entry a replace has superseded")
	}
	if ix.lookup(id) != newE {
		t.Fatal("lookup should still resolve to the replacement entry")
	}
}

func TestIndex_ReplaceUnknownIdFails(t *testing.T) {
	ix := newTestIndex(32)
	if ix.replace(NewNumericNodeId(1, 1), newTestEntry(NewNumericNodeId(1, 1))) {
		t.Fatal("replace of an unknown id should fail")
	}
}

func TestIndex_SizeTracksAliveCount(t *testing.T) {
	ix := newTestIndex(32)
	if ix.size() != 0 {
		t.Fatalf("size on empty index = %d, want 0", ix.size())
	}
	for i := uint32(0); i < 5; i++ {
		id := NewNumericNodeId(1, i)
		ix.insertUnique(id, newTestEntry(id))
	}
	if ix.size() != 5 {
		t.Fatalf("size after 5 inserts = %d, want 5", ix.size())
	}
	ix.delete(NewNumericNodeId(1, 0))
	if ix.size() != 4 {
		t.Fatalf("size after 1 delete = %d, want 4", ix.size())
	}
}

func TestIndex_MaybeGrowPreservesAllEntries(t *testing.T) {
	ix := newTestIndex(4) // rounds up to the table minimum (32)
	const n = 200
	for i := uint32(0); i < n; i++ {
		id := NewNumericNodeId(1, i)
		if !ix.insertUnique(id, newTestEntry(id)) {
			t.Fatalf("insertUnique failed at i=%d", i)
		}
	}
	for i := uint32(0); i < n; i++ {
		if ix.lookup(NewNumericNodeId(1, i)) == nil {
			t.Fatalf("lookup failed after growth for i=%d", i)
		}
	}
	if ix.size() != n {
		t.Fatalf("size = %d, want %d", ix.size(), n)
	}
}

func TestIndex_FirstSnapshotsAliveEntriesWithElevatedRefcount(t *testing.T) {
	ix := newTestIndex(32)
	ids := []NodeId{NewNumericNodeId(1, 1), NewNumericNodeId(1, 2), NewNumericNodeId(1, 3)}
	for _, id := range ids {
		ix.insertUnique(id, newTestEntry(id))
	}

	cur := ix.first()
	count := 0
	for {
		e := cur.next()
		if e == nil {
			break
		}
		count++
		if e.rc.borrows() != 1 {
			t.Errorf("snapshot entry borrow count = %d, want 1", e.rc.borrows())
		}
	}
	if count != len(ids) {
		t.Fatalf("cursor visited %d entries, want %d", count, len(ids))
	}
}

func TestIndex_FirstSkipsDeadEntries(t *testing.T) {
	ix := newTestIndex(32)
	id := NewNumericNodeId(1, 1)
	e := newTestEntry(id)
	ix.insertUnique(id, e)
	e.rc.clearAlive()

	cur := ix.first()
	if cur.next() != nil {
		t.Fatal("first should skip entries whose ALIVE bit is cleared")
	}
}

func TestIndex_AllReturnsEveryAliveEntry(t *testing.T) {
	ix := newTestIndex(32)
	for i := uint32(0); i < 10; i++ {
		id := NewNumericNodeId(1, i)
		ix.insertUnique(id, newTestEntry(id))
	}
	all := ix.all()
	if len(all) != 10 {
		t.Fatalf("all() returned %d entries, want 10", len(all))
	}
}

func TestIndex_ConcurrentInsertLookupDelete(t *testing.T) {
	ix := newTestIndex(8)
	const n = 500
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i uint32) {
			defer wg.Done()
			id := NewNumericNodeId(1, i)
			ix.insertUnique(id, newTestEntry(id))
		}(uint32(i))
	}
	wg.Wait()

	if ix.size() != n {
		t.Fatalf("size after concurrent inserts = %d, want %d", ix.size(), n)
	}

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i uint32) {
			defer wg.Done()
			ix.lookup(NewNumericNodeId(1, i))
			ix.delete(NewNumericNodeId(1, i))
		}(uint32(i))
	}
	wg.Wait()

	if ix.size() != 0 {
		t.Fatalf("size after concurrent deletes = %d, want 0", ix.size())
	}
}

func TestNextPow2(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 32: 32, 33: 64, 1000: 1024}
	for in, want := range cases {
		if got := nextPow2(in); got != want {
			t.Errorf("nextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}
