// Package uastore provides a concurrent, in-memory address-space store for
// an OPC UA information model.
//
// A Store maps NodeId to a typed Node with lock-free lookup, reference-
// counted borrows, and epoch-based reclamation: a Get or Iterate never
// blocks on, or is blocked by, a concurrent Insert/Replace/Remove — the
// index has no lock on its read or write path, only per-bucket
// compare-and-swap — and an entry's memory is only reclaimed once every
// in-flight borrow and every concurrent read section that could have
// observed it has completed.
//
// Example usage:
//
//	store, err := uastore.New(uastore.DefaultConfig())
//	if err != nil {
//		// ...
//	}
//	defer uastore.Delete(store)
//
//	managed, status := store.Insert(&uastore.Node{
//		Header: uastore.Header{NodeClass: uastore.ClassVariable},
//	}, true)
//	if status != uastore.StatusGood {
//		// ...
//	}
//	defer store.Release(managed)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package uastore

const (
	// Version of the uastore library.
	Version = "v0.1.0-dev"

	// DefaultInitialCapacity is the default number of buckets the hash
	// index starts with.
	DefaultInitialCapacity = 32
)
