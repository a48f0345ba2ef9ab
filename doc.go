// Package uastore provides a concurrent, in-memory address-space store for
// an OPC UA information model.
//
// # Overview
//
// uastore is designed for server cores that service many concurrent client
// requests against a shared node tree, with focus on:
//   - Concurrency: readers never block on, or block, concurrent writers
//   - Safety: borrowed nodes stay valid past removal/replacement until released
//   - Reclamation: entry memory is freed only after every possible observer is done
//   - Observability: OpenTelemetry integration (optional separate package)
//
// # Features
//
//   - Lock-free lookup: Get/Iterate read through an atomic table pointer and
//     atomic bucket loads, with no mutex on the read or write path
//   - Reference-counted borrows: Get/Iterate hand out a view that survives a
//     concurrent Remove/Replace until the caller calls Release
//   - Epoch-based reclamation: retired entries are finalized only once every
//     reader that could have observed them has exited its read section
//   - Automatic resize: the hash index grows under load without losing entries
//   - Auto-id synthesis: Insert with a null NodeId gets a store-generated id
//   - Structured Errors: Status.Err enriches a Status with error codes and context
//   - Metrics Collection: MetricsCollector interface for observability
//
// # Quick Start
//
//	import "github.com/agilira/uastore"
//
//	func main() {
//	    store, err := uastore.New(uastore.DefaultConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer uastore.Delete(store)
//
//	    managed, status := store.Insert(&uastore.Node{
//	        Header: uastore.Header{
//	            NodeId:    uastore.NewNumericNodeId(0, 42),
//	            NodeClass: uastore.ClassVariable,
//	        },
//	        Variable: &uastore.VariableAttributes{Value: 7},
//	    }, true)
//	    if status != uastore.StatusGood {
//	        log.Fatal(status.Err(uastore.NodeId{}, uastore.ClassVariable))
//	    }
//	    defer store.Release(managed)
//
//	    fmt.Println(managed.Variable.Value) // 7
//	}
//
// # Borrows and Release
//
// Get and each Iterate visit hand out a *Node with one outstanding borrow.
// The caller owes exactly one Release per borrow:
//
//	node := store.Get(id)
//	if node == nil {
//	    return // no alive entry with this id
//	}
//	defer store.Release(node)
//	// read node's attributes; they are a stable snapshot even if a
//	// concurrent Replace or Remove races ahead.
//
// Iterate manages the borrow/release pairing for each visit itself:
//
//	store.Iterate(func(n *uastore.Node) {
//	    // n is released automatically once this function returns
//	    fmt.Println(n.BrowseName)
//	})
//
// # Concurrency Model
//
// No operation takes a lock over the whole index:
//
//   - Get/Iterate/lookup: read through an atomic table pointer and a
//     handful of atomic bucket loads; never blocked by a concurrent
//     Insert/Replace/Remove, on this id or any other
//   - Insert/Replace/Remove: claim or update a single bucket with a
//     compare-and-swap and retry the probe on contention, the same
//     per-entry atomic discipline the teacher's cache used, generalized
//     across a resizable bucket array
//   - Resize: triggered automatically by load factor; only one goroutine
//     performs a given resize (a single atomic flag, not a lock any read
//     or write waits on), and rehashes bucket pointers only — entries are
//     never moved, so addresses stay stable across a resize
//   - Reclamation: retirement closes an epoch and opens a new one; entries
//     retired while an epoch was current are finalized only once every
//     reader that joined that epoch has exited
//
// # Error Handling
//
// Mutating operations return a Status, not an error, matching the
// specification's status-code style:
//
//	_, status := store.Insert(node, false)
//	if status != uastore.StatusGood {
//	    err := status.Err(node.NodeId, node.NodeClass)
//	    if uastore.IsRetryable(err) {
//	        // back off and retry
//	    }
//	}
//
// Status.Err wraps the status in a structured error carrying an error code,
// retryability, and severity, for callers that want an idiomatic Go error
// rather than a bare enum comparison.
//
// # Observability
//
// Enterprise observability with OpenTelemetry (optional):
//
//	import uastoreotel "github.com/agilira/uastore/otel"
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	collector, _ := uastoreotel.NewOTelMetricsCollector(provider)
//
//	store, _ := uastore.New(uastore.Config{
//	    MetricsCollector: collector, // optional, zero overhead if nil
//	})
//
// The core uastore package has zero OTEL dependencies. uastore/otel is a
// separate module.
//
// # Thread Safety
//
// All Store operations are safe for concurrent use from any number of
// goroutines:
//
//	go func() { store.Insert(nodeA, false) }()
//	go func() { store.Get(idB) }()
//	go func() { store.Remove(idC) }()
//	go func() { store.Iterate(visit) }()
//
// # Packages
//
//   - github.com/agilira/uastore: core store implementation
//   - github.com/agilira/uastore/otel: OpenTelemetry integration (separate module)
//
// # License
//
// Mozilla Public License 2.0 (SPDX-License-Identifier: MPL-2.0).
package uastore
