// node.go: OPC UA information-model node types and identifiers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package uastore

import (
	"github.com/google/uuid"
)

// NodeIdKind identifies the payload shape of a NodeId.
type NodeIdKind uint8

const (
	NodeIdNumeric NodeIdKind = iota
	NodeIdString
	NodeIdGUID
	NodeIdOpaque
)

// AutoNamespace is the namespace index reserved for store-generated ids.
// Synthesis (see Store.Insert) always writes this namespace with kind
// NodeIdNumeric.
const AutoNamespace uint16 = 1

// NodeId is a tagged identifier (namespaceIndex, kind, payload). Equality
// and hash are defined over the full tuple.
type NodeId struct {
	NamespaceIndex uint16
	Kind           NodeIdKind

	Numeric uint32 // valid when Kind == NodeIdNumeric
	GUID    [16]byte
	Bytes   []byte // valid when Kind == NodeIdString or NodeIdOpaque
}

// NewNumericNodeId builds a numeric NodeId.
func NewNumericNodeId(ns uint16, id uint32) NodeId {
	return NodeId{NamespaceIndex: ns, Kind: NodeIdNumeric, Numeric: id}
}

// NewStringNodeId builds a string-kind NodeId. The string is copied so the
// NodeId does not alias the caller's buffer.
func NewStringNodeId(ns uint16, s string) NodeId {
	return NodeId{NamespaceIndex: ns, Kind: NodeIdString, Bytes: []byte(s)}
}

// NewOpaqueNodeId builds an opaque-kind NodeId from raw bytes.
func NewOpaqueNodeId(ns uint16, b []byte) NodeId {
	cp := make([]byte, len(b))
	copy(cp, b)
	return NodeId{NamespaceIndex: ns, Kind: NodeIdOpaque, Bytes: cp}
}

// NewGUIDNodeId builds a guid-kind NodeId from a 16-byte identifier.
func NewGUIDNodeId(ns uint16, g [16]byte) NodeId {
	return NodeId{NamespaceIndex: ns, Kind: NodeIdGUID, GUID: g}
}

// NewRandomGUIDNodeId generates a guid-kind NodeId using a random UUID.
// OPC UA Guid identifiers are 16-byte values; google/uuid's random (v4)
// generator supplies them directly.
func NewRandomGUIDNodeId(ns uint16) NodeId {
	u := uuid.New()
	var g [16]byte
	copy(g[:], u[:])
	return NewGUIDNodeId(ns, g)
}

// IsNull reports whether id is the zero-value NodeId, meaning the caller
// wants Store.Insert to synthesize an identifier.
func (id NodeId) IsNull() bool {
	return id.NamespaceIndex == 0 && id.Kind == NodeIdNumeric && id.Numeric == 0 && len(id.Bytes) == 0
}

// Equal reports whether id and other denote the same identifier.
func (id NodeId) Equal(other NodeId) bool {
	if id.NamespaceIndex != other.NamespaceIndex || id.Kind != other.Kind {
		return false
	}
	switch id.Kind {
	case NodeIdNumeric:
		return id.Numeric == other.Numeric
	case NodeIdGUID:
		return id.GUID == other.GUID
	case NodeIdString, NodeIdOpaque:
		return string(id.Bytes) == string(other.Bytes)
	default:
		return false
	}
}

// hash computes a 64-bit hash of the full (namespaceIndex, kind, payload)
// tuple, using the same FNV-1a construction the teacher's string hashing
// used for cache keys.
func (id NodeId) hash() uint64 {
	const (
		fnvOffset = 14695981039346656037
		fnvPrime  = 1099511628211
	)
	h := uint64(fnvOffset)
	mix := func(b byte) {
		h ^= uint64(b)
		h *= fnvPrime
	}
	mix(byte(id.NamespaceIndex))
	mix(byte(id.NamespaceIndex >> 8))
	mix(byte(id.Kind))
	switch id.Kind {
	case NodeIdNumeric:
		v := id.Numeric
		for i := 0; i < 4; i++ {
			mix(byte(v))
			v >>= 8
		}
	case NodeIdGUID:
		for _, b := range id.GUID {
			mix(b)
		}
	case NodeIdString, NodeIdOpaque:
		for _, b := range id.Bytes {
			mix(b)
		}
	}
	return h
}

// NodeClass is one of the eight closed OPC UA node variants.
type NodeClass uint8

const (
	ClassObject NodeClass = iota
	ClassVariable
	ClassMethod
	ClassObjectType
	ClassVariableType
	ClassReferenceType
	ClassDataType
	ClassView
)

// String returns a human-readable name, used in log fields and fatal
// error messages.
func (c NodeClass) String() string {
	switch c {
	case ClassObject:
		return "Object"
	case ClassVariable:
		return "Variable"
	case ClassMethod:
		return "Method"
	case ClassObjectType:
		return "ObjectType"
	case ClassVariableType:
		return "VariableType"
	case ClassReferenceType:
		return "ReferenceType"
	case ClassDataType:
		return "DataType"
	case ClassView:
		return "View"
	default:
		return "Unknown"
	}
}

// ReferenceDescription is one outgoing or incoming reference held by a
// node's common header.
type ReferenceDescription struct {
	ReferenceTypeId NodeId
	IsInverse       bool
	TargetId        NodeId
}

// Header is the common attribute block every NodeClass variant begins
// with. The store treats node attributes beyond the header as opaque.
type Header struct {
	NodeId         NodeId
	NodeClass      NodeClass
	BrowseName     string
	DisplayName    string
	Description    string
	WriteMask      uint32
	UserWriteMask  uint32
	References     []ReferenceDescription
}

// ObjectAttributes holds Object-variant attributes.
type ObjectAttributes struct {
	EventNotifier uint8
}

// VariableAttributes holds Variable-variant attributes.
type VariableAttributes struct {
	Value            interface{}
	DataType         NodeId
	ValueRank        int32
	ArrayDimensions  []uint32
	AccessLevel      uint8
	UserAccessLevel  uint8
	MinimumSamplingInterval float64
	Historizing      bool
}

// MethodAttributes holds Method-variant attributes.
type MethodAttributes struct {
	Executable     bool
	UserExecutable bool
}

// ObjectTypeAttributes holds ObjectType-variant attributes.
type ObjectTypeAttributes struct {
	IsAbstract bool
}

// VariableTypeAttributes holds VariableType-variant attributes.
type VariableTypeAttributes struct {
	Value           interface{}
	DataType        NodeId
	ValueRank       int32
	ArrayDimensions []uint32
	IsAbstract      bool
}

// ReferenceTypeAttributes holds ReferenceType-variant attributes.
type ReferenceTypeAttributes struct {
	IsAbstract      bool
	Symmetric       bool
	InverseName     string
}

// DataTypeAttributes holds DataType-variant attributes.
type DataTypeAttributes struct {
	IsAbstract bool
}

// ViewAttributes holds View-variant attributes.
type ViewAttributes struct {
	ContainsNoLoops bool
	EventNotifier   uint8
}

// Node is a tagged sum of the eight OPC UA node variants. Exactly one of
// the variant fields is meaningful, selected by Header.NodeClass; unknown
// classes are a BadInternalError at the store boundary and a fatal,
// unreachable case inside the variant deleter.
type Node struct {
	Header

	Object        *ObjectAttributes
	Variable      *VariableAttributes
	Method        *MethodAttributes
	ObjectType    *ObjectTypeAttributes
	VariableType  *VariableTypeAttributes
	ReferenceType *ReferenceTypeAttributes
	DataType      *DataTypeAttributes
	View          *ViewAttributes

	// owner is the zero-cost back-link spec.md §9 asks for in place of
	// the original's offset-based envelope recovery: Store.Release reads
	// it directly off the borrowed pointer instead of computing an
	// envelope address from a fixed struct offset. Never set on a node a
	// caller constructs themselves — only on the store's canonical copy,
	// by Store.Insert/Replace.
	owner *entry
}

// clone performs the "copy the caller's node into the entry" step of
// Store.Insert / Store.Replace (spec.md §4.4): a deep-enough copy that the
// store's canonical copy does not alias caller-owned slices.
func (n *Node) clone() Node {
	cp := *n
	cp.owner = nil
	if len(n.References) > 0 {
		cp.References = append([]ReferenceDescription(nil), n.References...)
	}
	switch n.NodeClass {
	case ClassObject:
		if n.Object != nil {
			v := *n.Object
			cp.Object = &v
		}
	case ClassVariable:
		if n.Variable != nil {
			v := *n.Variable
			if len(n.Variable.ArrayDimensions) > 0 {
				v.ArrayDimensions = append([]uint32(nil), n.Variable.ArrayDimensions...)
			}
			cp.Variable = &v
		}
	case ClassMethod:
		if n.Method != nil {
			v := *n.Method
			cp.Method = &v
		}
	case ClassObjectType:
		if n.ObjectType != nil {
			v := *n.ObjectType
			cp.ObjectType = &v
		}
	case ClassVariableType:
		if n.VariableType != nil {
			v := *n.VariableType
			if len(n.VariableType.ArrayDimensions) > 0 {
				v.ArrayDimensions = append([]uint32(nil), n.VariableType.ArrayDimensions...)
			}
			cp.VariableType = &v
		}
	case ClassReferenceType:
		if n.ReferenceType != nil {
			v := *n.ReferenceType
			cp.ReferenceType = &v
		}
	case ClassDataType:
		if n.DataType != nil {
			v := *n.DataType
			cp.DataType = &v
		}
	case ClassView:
		if n.View != nil {
			v := *n.View
			cp.View = &v
		}
	}
	return cp
}

// nodeSize is a stand-in for the original's variable-sized allocation
// step (spec.md §4.1): it never actually sizes a Go allocation, but it is
// the single place that recognizes "unknown NodeClass" and therefore the
// single place BadInternalError can originate from on the insert/replace
// path (spec.md §4.4 step 1).
func nodeSize(class NodeClass) (ok bool) {
	switch class {
	case ClassObject, ClassVariable, ClassMethod, ClassObjectType,
		ClassVariableType, ClassReferenceType, ClassDataType, ClassView:
		return true
	default:
		return false
	}
}
