// store.go: the public store façade (spec.md §4.4)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package uastore

// autoIdMultiplier is the Knuth multiplicative constant used to perturb a
// colliding candidate during auto-id synthesis (spec.md §4.4 step 5, §9).
const autoIdMultiplier uint32 = 2654435761

// autoIdMaxRetries bounds the synthesis retry loop. The id space per
// namespace is 2^32 and termination is only probabilistic in theory;
// spec.md §9 asks that pathological fill escalate to a status rather than
// loop forever.
const autoIdMaxRetries = 1 << 20

// Store is a concurrent, in-memory address-space store mapping NodeId to
// Node (spec.md §1-§4). The zero value is not usable; construct with New.
type Store struct {
	idx *index
	rec *reclaimEngine
	cfg Config
}

// New allocates the index with its initial capacity and returns an empty
// store (spec.md §4.4 "new").
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{
		idx: newIndex(cfg.InitialCapacity, cfg.MetricsCollector),
		rec: newReclaimEngine(cfg.MetricsCollector),
		cfg: cfg,
	}, nil
}

// Delete tears down store: every entry is unlinked and retired for
// reclamation, then the index itself is destroyed (spec.md §4.4 "delete").
// Outstanding borrows obtained before Delete remain valid reads until their
// matching Release; the store handle itself must not be used afterward.
func Delete(store *Store) {
	ep := store.rec.enterRead()
	all := store.idx.all()
	for _, e := range all {
		if store.idx.deleteEntry(e) {
			e.retire(store.rec)
		}
	}
	store.rec.exitRead(ep)
	store.idx = nil
}

// Insert copies node into a new store-owned entry and links it under
// node.NodeId, synthesizing an id when node.NodeId is null (spec.md §4.4
// "insert"). Consumes node: by convention the caller must not use node
// after this call. If getManaged, the returned *Node is a borrow the
// caller owes exactly one Release; otherwise the returned *Node is nil.
func (s *Store) Insert(node *Node, getManaged bool) (*Node, Status) {
	start := s.cfg.TimeProvider.Now()
	managed, status := s.insert(node, getManaged)
	s.cfg.MetricsCollector.RecordInsert(s.cfg.TimeProvider.Now()-start, status)
	if status != StatusGood {
		s.cfg.Logger.Warn("uastore: insert failed", "status", status.String())
	}
	return managed, status
}

func (s *Store) insert(node *Node, getManaged bool) (*Node, Status) {
	if !nodeSize(node.NodeClass) {
		return nil, StatusBadInternalError
	}

	borrows := uint32(0)
	if getManaged {
		borrows = 1
	}

	ep := s.rec.enterRead()
	defer s.rec.exitRead(ep)

	if !node.NodeId.IsNull() {
		data := node.clone()
		e := &entry{node: node.NodeId, data: data, rc: newRefcount(borrows)}
		e.data.owner = e
		if !s.idx.insertUnique(node.NodeId, e) {
			return nil, StatusBadNodeIdExists
		}
		if getManaged {
			return &e.data, StatusGood
		}
		return nil, StatusGood
	}

	n := uint32(s.idx.size()) + 1
	base := n
	for attempt := 0; attempt < autoIdMaxRetries; attempt++ {
		id := NewNumericNodeId(AutoNamespace, n)
		data := node.clone()
		data.NodeId = id
		e := &entry{node: id, data: data, rc: newRefcount(borrows)}
		e.data.owner = e
		if s.idx.insertUnique(id, e) {
			if getManaged {
				return &e.data, StatusGood
			}
			return nil, StatusGood
		}
		// Knuth multiplicative perturbation (spec.md §4.4 step 5, §9):
		// n += base*multiplier, wrapping mod 2^32 via uint32 overflow.
		n += base * autoIdMultiplier
	}
	return nil, StatusBadOutOfMemory
}

// Replace atomically swaps the entry currently linked under node.NodeId for
// a fresh copy of node (spec.md §4.4 "replace"). The old entry is retired,
// not mutated in place, so any borrow obtained before Replace keeps
// observing the pre-replace attributes until its own Release.
func (s *Store) Replace(node *Node, getManaged bool) (*Node, Status) {
	start := s.cfg.TimeProvider.Now()
	managed, status := s.replace(node, getManaged)
	s.cfg.MetricsCollector.RecordReplace(s.cfg.TimeProvider.Now()-start, status)
	if status != StatusGood {
		s.cfg.Logger.Warn("uastore: replace failed", "status", status.String())
	}
	return managed, status
}

func (s *Store) replace(node *Node, getManaged bool) (*Node, Status) {
	if !nodeSize(node.NodeClass) {
		return nil, StatusBadInternalError
	}

	borrows := uint32(0)
	if getManaged {
		borrows = 1
	}

	data := node.clone()
	newEntry := &entry{node: node.NodeId, data: data, rc: newRefcount(borrows)}
	newEntry.data.owner = newEntry

	ep := s.rec.enterRead()
	old := s.idx.lookup(node.NodeId)
	if old == nil || !s.idx.replace(node.NodeId, newEntry) {
		s.rec.exitRead(ep)
		return nil, StatusBadNodeIdUnknown
	}
	old.retire(s.rec)
	s.rec.exitRead(ep)

	if getManaged {
		return &newEntry.data, StatusGood
	}
	return nil, StatusGood
}

// Remove unlinks the alive entry for id and retires it for reclamation
// (spec.md §4.4 "remove"). Per spec.md §9's flagged ambiguity about
// remove's lookup-by-reference, this implementation always looks up by id
// value (never by a pointer-to-pointer indirection) and then unlinks the
// specific entry found by identity (index.deleteEntry), so a second
// concurrent Remove for the same id deterministically observes
// BadNodeIdUnknown rather than racing on a second id re-search.
func (s *Store) Remove(id NodeId) Status {
	start := s.cfg.TimeProvider.Now()
	status := s.remove(id)
	s.cfg.MetricsCollector.RecordRemove(s.cfg.TimeProvider.Now()-start, status)
	if status != StatusGood {
		s.cfg.Logger.Warn("uastore: remove failed", "status", status.String())
	}
	return status
}

func (s *Store) remove(id NodeId) Status {
	ep := s.rec.enterRead()
	e := s.idx.lookup(id)
	if e == nil || !s.idx.deleteEntry(e) {
		s.rec.exitRead(ep)
		return StatusBadNodeIdUnknown
	}
	e.retire(s.rec)
	s.rec.exitRead(ep)
	return StatusGood
}

// Get looks up id and, if an alive entry exists, returns a borrow of its
// node with one outstanding reference the caller owes a matching Release
// (spec.md §4.4 "get"). Returns nil if no alive entry has this id.
func (s *Store) Get(id NodeId) *Node {
	start := s.cfg.TimeProvider.Now()
	ep := s.rec.enterRead()
	e := s.idx.lookup(id)
	if e == nil {
		s.rec.exitRead(ep)
		s.cfg.MetricsCollector.RecordGet(s.cfg.TimeProvider.Now()-start, false)
		return nil
	}
	e.rc.acquire()
	s.rec.exitRead(ep)
	s.cfg.MetricsCollector.RecordGet(s.cfg.TimeProvider.Now()-start, true)
	return &e.data
}

// Iterate visits every entry alive at the time Iterate is called (and not
// removed before the cursor reaches it) by calling visitor with a borrow of
// its node, releasing that borrow immediately after visitor returns
// (spec.md §4.4 "iterate"). The snapshot of borrowed entries is captured
// inside one read critical section; the visitor calls run outside it, per
// spec.md §9's resolved open question about cursor validity, so visitor may
// safely call back into the store or block.
func (s *Store) Iterate(visitor func(*Node)) {
	start := s.cfg.TimeProvider.Now()
	ep := s.rec.enterRead()
	cur := s.idx.first()
	s.rec.exitRead(ep)
	visited := 0
	for {
		e := cur.next()
		if e == nil {
			break
		}
		visited++
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.Release(&e.data)
					s.cfg.Logger.Error("uastore: panic recovered in iterate visitor", "panic", r)
				}
			}()
			visitor(&e.data)
			s.Release(&e.data)
		}()
	}
	s.cfg.MetricsCollector.RecordIterate(s.cfg.TimeProvider.Now()-start, visited)
}

// Release matches exactly one Get or one per-visit Iterate borrow. Once the
// matching release count reaches zero and the entry is no longer alive, the
// variant deleter runs and the envelope becomes eligible for garbage
// collection (spec.md §4.4 "release").
func (s *Store) Release(node *Node) {
	e := node.owner
	if e == nil {
		panic("uastore: release: node was not obtained from this store")
	}
	if e.rc.release() {
		deleteNodeVariant(&e.data)
	}
}
