// errors.go: Status codes and structured errors for store operations
//
// Status is the five-way outcome spec.md §6/§7 defines for the mutating
// entry points. Alongside it, this file exposes go-errors-backed
// constructors (the teacher's pattern in errors.go) for callers that want
// an idiomatic Go error with retryability, severity, and context rather
// than a bare enum comparison.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package uastore

import (
	goerrors "errors"

	"github.com/agilira/go-errors"
)

// Status is the outcome of a mutating store operation (spec.md §6).
type Status int

const (
	StatusGood Status = iota
	StatusBadOutOfMemory
	StatusBadInternalError
	StatusBadNodeIdExists
	StatusBadNodeIdUnknown
)

func (s Status) String() string {
	switch s {
	case StatusGood:
		return "Good"
	case StatusBadOutOfMemory:
		return "BadOutOfMemory"
	case StatusBadInternalError:
		return "BadInternalError"
	case StatusBadNodeIdExists:
		return "BadNodeIdExists"
	case StatusBadNodeIdUnknown:
		return "BadNodeIdUnknown"
	default:
		return "Unknown"
	}
}

// Error codes for store operations.
const (
	ErrCodeOutOfMemory    errors.ErrorCode = "UASTORE_OUT_OF_MEMORY"
	ErrCodeInternalError  errors.ErrorCode = "UASTORE_INTERNAL_ERROR"
	ErrCodeNodeIdExists   errors.ErrorCode = "UASTORE_NODE_ID_EXISTS"
	ErrCodeNodeIdUnknown  errors.ErrorCode = "UASTORE_NODE_ID_UNKNOWN"
	ErrCodePanicRecovered errors.ErrorCode = "UASTORE_PANIC_RECOVERED"
)

const (
	msgOutOfMemory   = "out of memory allocating a store entry"
	msgInternalError = "unknown NodeClass"
	msgNodeIdExists  = "an alive entry with this NodeId already exists"
	msgNodeIdUnknown = "no alive entry with this NodeId"
)

// NewErrOutOfMemory builds the error for Status.BadOutOfMemory. Retryable:
// spec.md §7 classifies OOM as "local, recoverable by caller retry/backoff".
func NewErrOutOfMemory(class NodeClass) error {
	return errors.NewWithField(ErrCodeOutOfMemory, msgOutOfMemory, "node_class", class.String()).
		AsRetryable()
}

// NewErrInternal builds the error for Status.BadInternalError (unknown
// NodeClass on the insert/replace path). Not retryable: spec.md §7 calls
// this a programmer error in the caller.
func NewErrInternal(class NodeClass) error {
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "node_class", int(class)).
		WithSeverity("critical")
}

// NewErrNodeIdExists builds the error for Status.BadNodeIdExists.
func NewErrNodeIdExists(id NodeId) error {
	return errors.NewWithContext(ErrCodeNodeIdExists, msgNodeIdExists, map[string]interface{}{
		"namespace_index": id.NamespaceIndex,
		"kind":            int(id.Kind),
	})
}

// NewErrNodeIdUnknown builds the error for Status.BadNodeIdUnknown.
func NewErrNodeIdUnknown(id NodeId) error {
	return errors.NewWithContext(ErrCodeNodeIdUnknown, msgNodeIdUnknown, map[string]interface{}{
		"namespace_index": id.NamespaceIndex,
		"kind":            int(id.Kind),
	}).AsRetryable()
}

// NewErrPanicRecovered wraps a recovered panic from a visitor callback
// invoked by Store.Iterate.
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, "panic recovered in store operation", map[string]interface{}{
		"operation":   operation,
		"panic_value": panicValue,
	}).WithSeverity("critical")
}

// Err converts a Status to an idiomatic error, or nil for StatusGood. id
// and class are used to enrich the NodeIdExists/NodeIdUnknown/Internal
// cases; either may be the zero value when not applicable.
func (s Status) Err(id NodeId, class NodeClass) error {
	switch s {
	case StatusGood:
		return nil
	case StatusBadOutOfMemory:
		return NewErrOutOfMemory(class)
	case StatusBadInternalError:
		return NewErrInternal(class)
	case StatusBadNodeIdExists:
		return NewErrNodeIdExists(id)
	case StatusBadNodeIdUnknown:
		return NewErrNodeIdUnknown(id)
	default:
		return NewErrInternal(class)
	}
}

// IsRetryable reports whether err is a store error that the caller may
// retry (e.g. after backing off or freeing memory elsewhere).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the store error code from err, or "" if err is
// not a store error.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts the structured context attached to a store
// error (e.g. node_class, namespace_index, operation), or nil if err is not
// a store error or carries none.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var storeErr *errors.Error
	if goerrors.As(err, &storeErr) {
		return storeErr.Context
	}
	return nil
}
