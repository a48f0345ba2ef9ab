// example_test.go: godoc examples for the address-space store
//
// These examples appear in the generated documentation on pkg.go.dev
// and are executed as part of the test suite to ensure they remain valid.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package uastore_test

import (
	"fmt"

	"github.com/agilira/uastore"
)

// ExampleNew demonstrates basic store creation, insertion, and lookup.
func ExampleNew() {
	store, err := uastore.New(uastore.DefaultConfig())
	if err != nil {
		panic(err)
	}
	defer uastore.Delete(store)

	id := uastore.NewStringNodeId(1, "Temperature")
	_, status := store.Insert(&uastore.Node{
		Header: uastore.Header{
			NodeId:      id,
			NodeClass:   uastore.ClassVariable,
			DisplayName: "Temperature",
		},
		Variable: &uastore.VariableAttributes{},
	}, false)
	if status != uastore.StatusGood {
		panic(status)
	}

	node := store.Get(id)
	if node != nil {
		fmt.Println(node.DisplayName)
		store.Release(node)
	}

	// Output: Temperature
}

// ExampleStore_Insert demonstrates auto-id synthesis when NodeId is null.
func ExampleStore_Insert() {
	store, _ := uastore.New(uastore.DefaultConfig())
	defer uastore.Delete(store)

	managed, status := store.Insert(&uastore.Node{
		Header:   uastore.Header{NodeClass: uastore.ClassObject},
		Object:   &uastore.ObjectAttributes{},
	}, true)
	if status != uastore.StatusGood {
		panic(status)
	}
	defer store.Release(managed)

	fmt.Println(managed.NodeId.NamespaceIndex == uastore.AutoNamespace)

	// Output: true
}

// ExampleStore_Replace demonstrates atomically swapping an entry's
// attributes while an outstanding borrow keeps observing the old data.
func ExampleStore_Replace() {
	store, _ := uastore.New(uastore.DefaultConfig())
	defer uastore.Delete(store)

	id := uastore.NewNumericNodeId(1, 7)
	store.Insert(&uastore.Node{
		Header:   uastore.Header{NodeId: id, NodeClass: uastore.ClassObject, DisplayName: "Old"},
		Object:   &uastore.ObjectAttributes{},
	}, false)

	old := store.Get(id)

	store.Replace(&uastore.Node{
		Header:   uastore.Header{NodeId: id, NodeClass: uastore.ClassObject, DisplayName: "New"},
		Object:   &uastore.ObjectAttributes{},
	}, false)

	fmt.Println(old.DisplayName)
	store.Release(old)

	fresh := store.Get(id)
	fmt.Println(fresh.DisplayName)
	store.Release(fresh)

	// Output: Old
	// New
}

// ExampleStore_Remove demonstrates unlinking an entry.
func ExampleStore_Remove() {
	store, _ := uastore.New(uastore.DefaultConfig())
	defer uastore.Delete(store)

	id := uastore.NewNumericNodeId(1, 1)
	store.Insert(&uastore.Node{
		Header:   uastore.Header{NodeId: id, NodeClass: uastore.ClassObject},
		Object:   &uastore.ObjectAttributes{},
	}, false)

	status := store.Remove(id)
	fmt.Println(status)

	found := store.Get(id)
	fmt.Println(found == nil)

	// Output: Good
	// true
}

// ExampleStore_Iterate demonstrates visiting every alive entry.
func ExampleStore_Iterate() {
	store, _ := uastore.New(uastore.DefaultConfig())
	defer uastore.Delete(store)

	for i := uint32(1); i <= 3; i++ {
		store.Insert(&uastore.Node{
			Header:   uastore.Header{NodeId: uastore.NewNumericNodeId(1, i), NodeClass: uastore.ClassObject},
			Object:   &uastore.ObjectAttributes{},
		}, false)
	}

	count := 0
	store.Iterate(func(n *uastore.Node) {
		count++
	})
	fmt.Println(count)

	// Output: 3
}

// ExampleConfig demonstrates advanced store configuration.
func ExampleConfig() {
	store, err := uastore.New(uastore.Config{
		InitialCapacity: 4096,
		Logger:          uastore.NoOpLogger{},
	})
	if err != nil {
		panic(err)
	}
	defer uastore.Delete(store)

	fmt.Println("store ready")

	// Output: store ready
}
