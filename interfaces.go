// interfaces.go: ambient Logger, TimeProvider, and MetricsCollector
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package uastore

// Logger defines a minimal logging interface with zero overhead when
// unused. Implementations should use structured logging and be
// allocation-free on the hot path.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as the default so
// callers never have to nil-check s.cfg.Logger.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}
func (NoOpLogger) Info(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Warn(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider supplies the current time the store uses to measure the
// operation latencies it reports to MetricsCollector. The store has no TTL, so TimeProvider never gates a lookup's
// outcome — it is purely observational.
type TimeProvider interface {
	// Now returns the current time in nanoseconds since epoch.
	Now() int64
}

// MetricsCollector observes store operation latencies and reclamation
// events. Implementations must be safe for concurrent use; a nil-safe
// NoOpMetricsCollector is the default.
type MetricsCollector interface {
	// RecordInsert records an Insert call's latency and outcome.
	RecordInsert(latencyNs int64, status Status)
	// RecordReplace records a Replace call's latency and outcome.
	RecordReplace(latencyNs int64, status Status)
	// RecordRemove records a Remove call's latency and outcome.
	RecordRemove(latencyNs int64, status Status)
	// RecordGet records a Get call's latency and whether it found an entry.
	RecordGet(latencyNs int64, found bool)
	// RecordIterate records one full Iterate call's latency and the
	// number of entries visited.
	RecordIterate(latencyNs int64, visited int)
	// RecordReclaim records one entry's finalize() running, i.e. the
	// grace period for that retirement has fully elapsed.
	RecordReclaim()
	// RecordResize records the hash index doubling its bucket count.
	RecordResize(newCapacity int)
}

// NoOpMetricsCollector discards everything. Used as the default so the
// store never has to nil-check s.cfg.MetricsCollector.
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordInsert(latencyNs int64, status Status)  {}
func (NoOpMetricsCollector) RecordReplace(latencyNs int64, status Status) {}
func (NoOpMetricsCollector) RecordRemove(latencyNs int64, status Status)  {}
func (NoOpMetricsCollector) RecordGet(latencyNs int64, found bool)        {}
func (NoOpMetricsCollector) RecordIterate(latencyNs int64, visited int)   {}
func (NoOpMetricsCollector) RecordReclaim()                               {}
func (NoOpMetricsCollector) RecordResize(newCapacity int)                 {}
